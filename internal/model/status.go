package model

import (
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a submission
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// IsTerminal reports whether no further transition is allowed
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// ProcessingStatus represents the job record of one submission
type ProcessingStatus struct {
	ID        uuid.UUID `json:"id"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	EmailHash *string   `json:"email_hash"`
	Error     *string   `json:"error"`
}
