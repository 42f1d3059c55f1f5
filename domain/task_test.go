package domain

import (
	"strings"
	"testing"
	"time"
)

func TestTaskIsOverdue(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)

	cases := []struct {
		name string
		task Task
		want bool
	}{
		{"no due date", Task{Status: StatusCreated}, false},
		{"past and open", Task{DueDate: &past, Status: StatusInProgress}, true},
		{"past but done", Task{DueDate: &past, Status: StatusDone}, false},
		{"future", Task{DueDate: &future, Status: StatusCreated}, false},
		{"due exactly now", Task{DueDate: &now, Status: StatusCreated}, false},
	}
	for _, tc := range cases {
		if got := tc.task.IsOverdue(now); got != tc.want {
			t.Fatalf("%s: IsOverdue = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestParseEnums(t *testing.T) {
	if p, err := ParsePriority(" high "); err != nil || p != PriorityHigh {
		t.Fatalf("ParsePriority: %v, %v", p, err)
	}
	if c, err := ParseCategory("study"); err != nil || c != CategoryStudy {
		t.Fatalf("ParseCategory: %v, %v", c, err)
	}
	if s, err := ParseStatus("in_progress"); err != nil || s != StatusInProgress {
		t.Fatalf("ParseStatus: %v, %v", s, err)
	}
	if _, err := ParsePriority("urgent"); !IsDomainError(err, ErrCodeInvalid) {
		t.Fatalf("expected INVALID, got %v", err)
	}
	if _, err := ParseStatus("archived"); !IsDomainError(err, ErrCodeInvalid) {
		t.Fatalf("expected INVALID, got %v", err)
	}
}

func TestOrdinalsFollowDeclarationOrder(t *testing.T) {
	if !(PriorityLow.Ordinal() < PriorityMedium.Ordinal() && PriorityMedium.Ordinal() < PriorityHigh.Ordinal()) {
		t.Fatalf("priority ordinals out of order")
	}
	if !(StatusCreated.Ordinal() < StatusInProgress.Ordinal() && StatusInProgress.Ordinal() < StatusDone.Ordinal()) {
		t.Fatalf("status ordinals out of order")
	}
	if Priority("NONE").Ordinal() != -1 {
		t.Fatalf("unknown priority should have ordinal -1")
	}
}

func TestTaskValidate(t *testing.T) {
	valid := Task{Title: "ok", Priority: PriorityLow, Category: CategoryOther, Status: StatusCreated}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid task rejected: %v", err)
	}

	long := valid
	long.Title = strings.Repeat("é", MaxTitleLength)
	if err := long.Validate(); err != nil {
		t.Fatalf("title of exactly %d runes rejected: %v", MaxTitleLength, err)
	}

	mutations := map[string]func(*Task){
		"blank title":      func(t *Task) { t.Title = "   " },
		"title too long":   func(t *Task) { t.Title = strings.Repeat("x", MaxTitleLength+1) },
		"description long": func(t *Task) { t.Description = strings.Repeat("x", MaxDescriptionLength+1) },
		"no priority":      func(t *Task) { t.Priority = "" },
		"bad category":     func(t *Task) { t.Category = "HOBBY" },
		"bad status":       func(t *Task) { t.Status = "ARCHIVED" },
	}
	for name, mutate := range mutations {
		task := valid
		mutate(&task)
		if err := task.Validate(); !IsDomainError(err, ErrCodeInvalid) {
			t.Fatalf("%s: expected INVALID, got %v", name, err)
		}
	}
}

func TestValidateCredentials(t *testing.T) {
	if err := ValidateCredentials("a@x.com", "pw1234567"); err != nil {
		t.Fatalf("valid credentials rejected: %v", err)
	}
	for _, email := range []string{"", "plain", "Name <a@x.com>"} {
		if err := ValidateCredentials(email, "pw1234567"); !IsDomainError(err, ErrCodeInvalid) {
			t.Fatalf("email %q: expected INVALID, got %v", email, err)
		}
	}
	if err := ValidateCredentials("a@x.com", "short"); !IsDomainError(err, ErrCodeInvalid) {
		t.Fatalf("short password: expected INVALID, got %v", err)
	}
}
