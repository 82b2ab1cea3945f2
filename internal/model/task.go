package model

import "time"

// Categories enumerates the fixed task areas.
var Categories = []string{"mental", "physical", "social", "financial"}

// ValidCategory reports whether c is one of the known categories.
func ValidCategory(c string) bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Task represents a single tracked item.
type Task struct {
	ID                uint       `gorm:"primaryKey" json:"id"`
	Title             string     `json:"title"`
	Description       string     `json:"description"`
	Category          string     `gorm:"index" json:"category"`
	Priority          int        `gorm:"default:3" json:"priority"`
	DueDate           *time.Time `json:"due_date"`
	IsRecurring       bool       `gorm:"default:false" json:"is_recurring"`
	RecurrencePattern string     `json:"recurrence_pattern"`
	IsActive          bool       `gorm:"default:true" json:"is_active"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"-"`
	Tags              []Tag      `gorm:"many2many:task_tags" json:"-"`
}
