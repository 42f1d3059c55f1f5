package task

import (
	"slices"
	"strings"
	"time"

	"github.com/fastygo/tasktracker/domain"
)

// Criteria narrows a task list. Zero-valued fields do not constrain the result.
type Criteria struct {
	Keyword  string
	Category domain.Category
	Priority domain.Priority
	Status   domain.Status
	// OverdueOnly keeps only overdue tasks when set. Unset does not exclude
	// overdue tasks.
	OverdueOnly bool
}

type predicate func(*domain.Task) bool

func (c Criteria) predicates(now time.Time) []predicate {
	var preds []predicate
	if c.Keyword != "" {
		needle := strings.ToLower(c.Keyword)
		preds = append(preds, func(t *domain.Task) bool {
			if strings.Contains(strings.ToLower(t.Title), needle) {
				return true
			}
			return t.Description != "" && strings.Contains(strings.ToLower(t.Description), needle)
		})
	}
	if c.Category != "" {
		preds = append(preds, func(t *domain.Task) bool { return t.Category == c.Category })
	}
	if c.Priority != "" {
		preds = append(preds, func(t *domain.Task) bool { return t.Priority == c.Priority })
	}
	if c.Status != "" {
		preds = append(preds, func(t *domain.Task) bool { return t.Status == c.Status })
	}
	if c.OverdueOnly {
		preds = append(preds, func(t *domain.Task) bool { return t.IsOverdue(now) })
	}
	return preds
}

// Filter returns the tasks matching every criterion, in input order.
func Filter(tasks []domain.Task, c Criteria, now time.Time) []domain.Task {
	preds := c.predicates(now)
	out := make([]domain.Task, 0, len(tasks))
next:
	for i := range tasks {
		for _, keep := range preds {
			if !keep(&tasks[i]) {
				continue next
			}
		}
		out = append(out, tasks[i])
	}
	return out
}

// SortKey selects the comparator used by Sort.
type SortKey int

const (
	SortByPriority SortKey = iota
	SortByDueDate
	SortByStatus
)

func (k SortKey) String() string {
	switch k {
	case SortByDueDate:
		return "dueDate"
	case SortByStatus:
		return "status"
	default:
		return "priority"
	}
}

// ParseSortKey maps a query value to a SortKey. Unknown values sort by priority.
func ParseSortKey(s string) SortKey {
	switch s {
	case "dueDate":
		return SortByDueDate
	case "status":
		return SortByStatus
	default:
		return SortByPriority
	}
}

// Sort orders tasks in place and keeps equal elements in input order. Tasks
// without a due date go last under SortByDueDate in both directions.
func Sort(tasks []domain.Task, key SortKey, ascending bool) {
	dir := 1
	if !ascending {
		dir = -1
	}

	var cmp func(a, b domain.Task) int
	switch key {
	case SortByDueDate:
		cmp = func(a, b domain.Task) int {
			switch {
			case a.DueDate == nil && b.DueDate == nil:
				return 0
			case a.DueDate == nil:
				return 1
			case b.DueDate == nil:
				return -1
			}
			return dir * a.DueDate.Compare(*b.DueDate)
		}
	case SortByStatus:
		cmp = func(a, b domain.Task) int {
			return dir * (a.Status.Ordinal() - b.Status.Ordinal())
		}
	default:
		cmp = func(a, b domain.Task) int {
			return dir * (a.Priority.Ordinal() - b.Priority.Ordinal())
		}
	}

	slices.SortStableFunc(tasks, cmp)
}
