package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	JobStatusPending   = "pending"
	JobStatusRunning   = "running"
	JobStatusSucceeded = "succeeded"
	JobStatusDead      = "dead"
)

// Job kinds handled by the worker.
const (
	JobKindHighlightSync   = "project_highlight.sync"
	JobKindHighlightDelete = "project_highlight.delete"
	JobKindDeployHook      = "deploy_hook.trigger"
)

// Job is a durable unit of background work. A running job whose LockedUntil
// has passed is claimable again.
type Job struct {
	Base
	Kind        string         `json:"kind" db:"kind" gorm:"type:text;not null;index"`
	Payload     datatypes.JSON `json:"payload" db:"payload" gorm:"type:jsonb"`
	Status      string         `json:"status" db:"status" gorm:"type:text;not null;default:'pending';index:idx_jobs_claim,priority:1"`
	Attempts    int            `json:"attempts" db:"attempts" gorm:"not null;default:0"`
	MaxAttempts int            `json:"maxAttempts" db:"max_attempts" gorm:"not null;default:8"`
	RunAfter    time.Time      `json:"runAfter" db:"run_after" gorm:"not null;index:idx_jobs_claim,priority:2"`
	LockedUntil *time.Time     `json:"lockedUntil,omitempty" db:"locked_until"`
	LastError   string         `json:"lastError" db:"last_error" gorm:"type:text;not null;default:''"`
	DedupeKey   *string        `json:"dedupeKey,omitempty" db:"dedupe_key" gorm:"type:text;index"`
}
