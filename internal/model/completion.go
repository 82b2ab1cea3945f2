package model

import "time"

// TaskCompletion logs a single completion event for a task.
type TaskCompletion struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	TaskID      uint      `gorm:"index" json:"task_id"`
	Quality     int       `gorm:"default:3" json:"quality"`
	Notes       string    `json:"notes"`
	WasLate     bool      `json:"was_late"`
	CompletedAt time.Time `json:"completed_at"`
}
