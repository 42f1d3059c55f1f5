package task

import (
	"reflect"
	"testing"
	"time"

	"github.com/fastygo/tasktracker/domain"
)

var now = time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)

func at(d time.Duration) *time.Time {
	t := now.Add(d)
	return &t
}

func titles(tasks []domain.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.Title)
	}
	return out
}

func sampleTasks() []domain.Task {
	return []domain.Task{
		{ID: "1", Title: "Buy milk", Priority: domain.PriorityLow, Category: domain.CategoryPersonal, Status: domain.StatusCreated, DueDate: at(-time.Hour)},
		{ID: "2", Title: "Write report", Description: "quarterly numbers", Priority: domain.PriorityHigh, Category: domain.CategoryWork, Status: domain.StatusInProgress, DueDate: at(48 * time.Hour)},
		{ID: "3", Title: "Gym", Priority: domain.PriorityMedium, Category: domain.CategoryHealth, Status: domain.StatusDone, DueDate: at(-24 * time.Hour)},
		{ID: "4", Title: "Read book", Description: "Write a review after", Priority: domain.PriorityMedium, Category: domain.CategoryPersonal, Status: domain.StatusCreated},
		{ID: "5", Title: "Tax return", Priority: domain.PriorityHigh, Category: domain.CategoryWork, Status: domain.StatusInProgress, DueDate: at(-2 * time.Hour)},
	}
}

func TestFilter_NoCriteriaIsIdentity(t *testing.T) {
	tasks := sampleTasks()
	got := Filter(tasks, Criteria{}, now)
	if !reflect.DeepEqual(got, tasks) {
		t.Fatalf("expected identity, got %v", titles(got))
	}
}

func TestFilter_KeywordIsCaseInsensitive(t *testing.T) {
	tasks := []domain.Task{{Title: "Buy milk"}, {Title: "Write report"}}
	got := Filter(tasks, Criteria{Keyword: "write"}, now)
	if want := []string{"Write report"}; !reflect.DeepEqual(titles(got), want) {
		t.Fatalf("expected %v, got %v", want, titles(got))
	}
}

func TestFilter_KeywordMatchesDescription(t *testing.T) {
	got := Filter(sampleTasks(), Criteria{Keyword: "WRITE"}, now)
	if want := []string{"Write report", "Read book"}; !reflect.DeepEqual(titles(got), want) {
		t.Fatalf("expected %v, got %v", want, titles(got))
	}

	got = Filter(sampleTasks(), Criteria{Keyword: "numbers"}, now)
	if want := []string{"Write report"}; !reflect.DeepEqual(titles(got), want) {
		t.Fatalf("expected %v, got %v", want, titles(got))
	}
}

func TestFilter_WhitespaceKeywordIsASubstring(t *testing.T) {
	got := Filter(sampleTasks(), Criteria{Keyword: " "}, now)
	if want := []string{"Buy milk", "Write report", "Read book", "Tax return"}; !reflect.DeepEqual(titles(got), want) {
		t.Fatalf("expected %v, got %v", want, titles(got))
	}
}

func TestFilter_OverdueOnlyMatchesDerivedProperty(t *testing.T) {
	tasks := sampleTasks()
	got := Filter(tasks, Criteria{OverdueOnly: true}, now)

	var want []string
	for _, tk := range tasks {
		if tk.DueDate != nil && tk.DueDate.Before(now) && tk.Status != domain.StatusDone {
			want = append(want, tk.Title)
		}
	}
	if !reflect.DeepEqual(titles(got), want) {
		t.Fatalf("expected %v, got %v", want, titles(got))
	}
	if !reflect.DeepEqual(want, []string{"Buy milk", "Tax return"}) {
		t.Fatalf("fixture drifted: %v", want)
	}
}

func TestFilter_OverdueFalseDoesNotExclude(t *testing.T) {
	tasks := sampleTasks()
	got := Filter(tasks, Criteria{OverdueOnly: false}, now)
	if len(got) != len(tasks) {
		t.Fatalf("expected all %d tasks, got %d", len(tasks), len(got))
	}
}

func TestFilter_CriteriaAreConjunctive(t *testing.T) {
	got := Filter(sampleTasks(), Criteria{
		Category: domain.CategoryWork,
		Priority: domain.PriorityHigh,
		Status:   domain.StatusInProgress,
	}, now)
	if want := []string{"Write report", "Tax return"}; !reflect.DeepEqual(titles(got), want) {
		t.Fatalf("expected %v, got %v", want, titles(got))
	}

	got = Filter(sampleTasks(), Criteria{Category: domain.CategoryWork, OverdueOnly: true}, now)
	if want := []string{"Tax return"}; !reflect.DeepEqual(titles(got), want) {
		t.Fatalf("expected %v, got %v", want, titles(got))
	}

	got = Filter(sampleTasks(), Criteria{Category: domain.CategoryStudy}, now)
	if len(got) != 0 {
		t.Fatalf("expected no tasks, got %v", titles(got))
	}
}

func TestParseSortKey(t *testing.T) {
	cases := map[string]SortKey{
		"dueDate":  SortByDueDate,
		"status":   SortByStatus,
		"priority": SortByPriority,
		"":         SortByPriority,
		"title":    SortByPriority,
		"DUEDATE":  SortByPriority,
	}
	for in, want := range cases {
		if got := ParseSortKey(in); got != want {
			t.Fatalf("ParseSortKey(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestSort_PriorityDescending(t *testing.T) {
	tasks := []domain.Task{
		{Title: "a", Priority: domain.PriorityHigh},
		{Title: "b", Priority: domain.PriorityLow},
		{Title: "c", Priority: domain.PriorityMedium},
	}
	Sort(tasks, ParseSortKey("priority"), false)

	got := []domain.Priority{tasks[0].Priority, tasks[1].Priority, tasks[2].Priority}
	want := []domain.Priority{domain.PriorityHigh, domain.PriorityMedium, domain.PriorityLow}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestSort_DueDateNullsLastInBothDirections(t *testing.T) {
	tasks := []domain.Task{
		{Title: "none-1"},
		{Title: "late", DueDate: at(3 * time.Hour)},
		{Title: "early", DueDate: at(time.Hour)},
		{Title: "none-2"},
		{Title: "mid", DueDate: at(2 * time.Hour)},
	}

	asc := append([]domain.Task(nil), tasks...)
	Sort(asc, SortByDueDate, true)
	if want := []string{"early", "mid", "late", "none-1", "none-2"}; !reflect.DeepEqual(titles(asc), want) {
		t.Fatalf("ascending: expected %v, got %v", want, titles(asc))
	}

	desc := append([]domain.Task(nil), tasks...)
	Sort(desc, SortByDueDate, false)
	if want := []string{"late", "mid", "early", "none-1", "none-2"}; !reflect.DeepEqual(titles(desc), want) {
		t.Fatalf("descending: expected %v, got %v", want, titles(desc))
	}
}

func TestSort_StatusOrder(t *testing.T) {
	tasks := []domain.Task{
		{Title: "done", Status: domain.StatusDone},
		{Title: "created", Status: domain.StatusCreated},
		{Title: "progress", Status: domain.StatusInProgress},
	}
	Sort(tasks, SortByStatus, true)
	if want := []string{"created", "progress", "done"}; !reflect.DeepEqual(titles(tasks), want) {
		t.Fatalf("expected %v, got %v", want, titles(tasks))
	}
	Sort(tasks, SortByStatus, false)
	if want := []string{"done", "progress", "created"}; !reflect.DeepEqual(titles(tasks), want) {
		t.Fatalf("expected %v, got %v", want, titles(tasks))
	}
}

func TestSort_IsStable(t *testing.T) {
	tasks := []domain.Task{
		{Title: "h1", Priority: domain.PriorityHigh},
		{Title: "l1", Priority: domain.PriorityLow},
		{Title: "h2", Priority: domain.PriorityHigh},
		{Title: "l2", Priority: domain.PriorityLow},
		{Title: "h3", Priority: domain.PriorityHigh},
	}

	Sort(tasks, SortByPriority, true)
	if want := []string{"l1", "l2", "h1", "h2", "h3"}; !reflect.DeepEqual(titles(tasks), want) {
		t.Fatalf("ascending: expected %v, got %v", want, titles(tasks))
	}

	Sort(tasks, SortByPriority, false)
	if want := []string{"h1", "h2", "h3", "l1", "l2"}; !reflect.DeepEqual(titles(tasks), want) {
		t.Fatalf("descending: expected %v, got %v", want, titles(tasks))
	}
}
