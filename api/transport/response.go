package transport

import (
	"encoding/json"
	"time"

	"github.com/fastygo/tasktracker/domain"
)

// Envelope is the standard API response wrapper used for both success and error payloads.
type Envelope struct {
	Status string      `json:"status"`
	Code   string      `json:"code,omitempty"`
	Data   interface{} `json:"data,omitempty"`
	Error  interface{} `json:"error,omitempty"`
	Meta   interface{} `json:"meta,omitempty"`
}

func NewSuccess(data interface{}, meta interface{}) Envelope {
	return Envelope{
		Status: "success",
		Data:   data,
		Meta:   meta,
	}
}

func NewError(code string, err interface{}, meta interface{}) Envelope {
	return Envelope{
		Status: "error",
		Code:   code,
		Error:  err,
		Meta:   meta,
	}
}

// String returns the JSON representation (best-effort) for logging purposes.
func (e Envelope) String() string {
	out, err := json.Marshal(e)
	if err != nil {
		return "{}"
	}
	return string(out)
}

// TaskResponse is a task as clients see it, including the derived overdue flag.
type TaskResponse struct {
	domain.Task
	Overdue bool `json:"overdue"`
}

func NewTaskResponse(task domain.Task, now time.Time) TaskResponse {
	return TaskResponse{Task: task, Overdue: task.IsOverdue(now)}
}

func NewTaskList(tasks []domain.Task, now time.Time) []TaskResponse {
	out := make([]TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, NewTaskResponse(t, now))
	}
	return out
}

// ListMeta accompanies list responses.
type ListMeta struct {
	Count int `json:"count"`
}
