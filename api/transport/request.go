package transport

import (
	"strings"
	"time"

	"github.com/fastygo/tasktracker/domain"
)

type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TaskRequest is the body of create and full-replace update calls. DueDate is
// RFC 3339; empty means no due date.
type TaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	DueDate     string `json:"due_date"`
	Priority    string `json:"priority"`
	Category    string `json:"category"`
}

// Input validates enum and date fields and converts the request for the use case.
func (r TaskRequest) Input() (domain.TaskInput, error) {
	in := domain.TaskInput{
		Title:       strings.TrimSpace(r.Title),
		Description: r.Description,
	}

	if r.DueDate != "" {
		due, err := time.Parse(time.RFC3339, r.DueDate)
		if err != nil {
			return in, domain.Invalidf("due_date must be an RFC 3339 timestamp")
		}
		due = due.UTC()
		in.DueDate = &due
	}

	if r.Priority == "" {
		return in, domain.Invalidf("priority is required")
	}
	priority, err := domain.ParsePriority(r.Priority)
	if err != nil {
		return in, err
	}
	in.Priority = priority

	if r.Category == "" {
		return in, domain.Invalidf("category is required")
	}
	category, err := domain.ParseCategory(r.Category)
	if err != nil {
		return in, err
	}
	in.Category = category

	return in, nil
}

type StatusRequest struct {
	Status string `json:"status"`
}
