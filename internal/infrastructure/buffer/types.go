package buffer

import (
	"encoding/binary"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	OperationCreate = "create"
	OperationUpdate = "update"
	OperationDelete = "delete"
)

// Entry is a task write that could not reach primary storage and waits for replay.
type Entry struct {
	ID        string          `json:"id"`
	OwnerID   string          `json:"owner_id"`
	TaskID    string          `json:"task_id"`
	Operation string          `json:"operation"`
	Task      json.RawMessage `json:"task"`
	Attempts  int             `json:"attempts"`
	LastError string          `json:"last_error,omitempty"`
	QueuedAt  time.Time       `json:"queued_at"`

	seq uint64
}

// Seq is the position of the entry in the replay queue. Zero until stored.
func (e Entry) Seq() uint64 { return e.seq }

func (e *Entry) normalize(now time.Time) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.QueuedAt.IsZero() {
		e.QueuedAt = now
	}
}

func seqKey(seq uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, seq)
	return key
}

func keySeq(key []byte) uint64 {
	if len(key) != 8 {
		return 0
	}
	return binary.BigEndian.Uint64(key)
}
