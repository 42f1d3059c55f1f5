package domain

import (
	"strings"
	"time"
	"unicode/utf8"
)

const (
	MaxTitleLength       = 100
	MaxDescriptionLength = 500
)

// Priority ranks a task. Declaration order defines sort order.
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
)

var priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

// Ordinal returns the declaration index of p, or -1 when p is not a known priority.
func (p Priority) Ordinal() int {
	for i, v := range priorities {
		if v == p {
			return i
		}
	}
	return -1
}

// ParsePriority accepts any letter case.
func ParsePriority(s string) (Priority, error) {
	p := Priority(strings.ToUpper(strings.TrimSpace(s)))
	if p.Ordinal() < 0 {
		return "", Invalidf("unknown priority %q", s)
	}
	return p, nil
}

// Category groups tasks by life area.
type Category string

const (
	CategoryWork     Category = "WORK"
	CategoryPersonal Category = "PERSONAL"
	CategoryStudy    Category = "STUDY"
	CategoryHealth   Category = "HEALTH"
	CategoryOther    Category = "OTHER"
)

var categories = []Category{CategoryWork, CategoryPersonal, CategoryStudy, CategoryHealth, CategoryOther}

func (c Category) Valid() bool {
	for _, v := range categories {
		if v == c {
			return true
		}
	}
	return false
}

func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToUpper(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", Invalidf("unknown category %q", s)
	}
	return c, nil
}

// Status is the workflow state of a task. Declaration order defines sort order.
type Status string

const (
	StatusCreated    Status = "CREATED"
	StatusInProgress Status = "IN_PROGRESS"
	StatusDone       Status = "DONE"
)

var statuses = []Status{StatusCreated, StatusInProgress, StatusDone}

// Ordinal returns the declaration index of s, or -1 when s is not a known status.
func (s Status) Ordinal() int {
	for i, v := range statuses {
		if v == s {
			return i
		}
	}
	return -1
}

func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToUpper(strings.TrimSpace(s)))
	if st.Ordinal() < 0 {
		return "", Invalidf("unknown status %q", s)
	}
	return st, nil
}

// Task represents a user-owned activity item.
type Task struct {
	ID          string     `json:"id"`
	OwnerID     string     `json:"owner_id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Priority    Priority   `json:"priority"`
	Category    Category   `json:"category"`
	Status      Status     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// IsOverdue is true when the task has a due date strictly before now and is not done.
func (t *Task) IsOverdue(now time.Time) bool {
	if t == nil || t.DueDate == nil {
		return false
	}
	return t.DueDate.Before(now) && t.Status != StatusDone
}

// Touch stamps UpdatedAt, and CreatedAt on first write.
func (t *Task) Touch(now time.Time) {
	if t == nil {
		return
	}
	t.UpdatedAt = now
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
}

// TaskInput carries the user-editable fields of a task. An update replaces all of them.
type TaskInput struct {
	Title       string
	Description string
	DueDate     *time.Time
	Priority    Priority
	Category    Category
}

// Apply overwrites the editable fields of t with in.
func (in TaskInput) Apply(t *Task) {
	t.Title = in.Title
	t.Description = in.Description
	t.DueDate = in.DueDate
	t.Priority = in.Priority
	t.Category = in.Category
}

// Validate enforces field constraints of a task about to be written.
func (t *Task) Validate() error {
	if t == nil {
		return ErrInvalidPayload
	}
	title := strings.TrimSpace(t.Title)
	if title == "" {
		return Invalidf("title is required")
	}
	if utf8.RuneCountInString(t.Title) > MaxTitleLength {
		return Invalidf("title must be at most %d characters", MaxTitleLength)
	}
	if utf8.RuneCountInString(t.Description) > MaxDescriptionLength {
		return Invalidf("description must be at most %d characters", MaxDescriptionLength)
	}
	if t.Priority.Ordinal() < 0 {
		return Invalidf("priority must be one of LOW, MEDIUM, HIGH")
	}
	if !t.Category.Valid() {
		return Invalidf("unknown category %q", t.Category)
	}
	if t.Status.Ordinal() < 0 {
		return Invalidf("unknown status %q", t.Status)
	}
	return nil
}
