package services

import (
	"context"
	"encoding/json"

	"github.com/fastygo/tasktracker/domain"
	"github.com/fastygo/tasktracker/internal/infrastructure/buffer"
	"github.com/fastygo/tasktracker/usecase"
)

// BufferBridge adapts the Bolt-backed processor to the use-case port.
type BufferBridge struct {
	processor *BufferProcessor
}

func NewBufferBridge(processor *BufferProcessor) *BufferBridge {
	return &BufferBridge{processor: processor}
}

func (b *BufferBridge) BufferTask(ctx context.Context, operation string, task *domain.Task) error {
	if b == nil || b.processor == nil || task == nil {
		return domain.ErrInvalidPayload
	}
	payload, err := json.Marshal(task)
	if err != nil {
		return err
	}
	entry := buffer.Entry{
		OwnerID:   task.OwnerID,
		TaskID:    task.ID,
		Operation: operation,
		Task:      payload,
	}
	return b.processor.Enqueue(ctx, entry)
}

var _ usecase.OperationBuffer = (*BufferBridge)(nil)
