package model

import "time"

// Tag is a node in the per-category tag forest. A nil ParentTagID marks a root.
type Tag struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"index" json:"name"`
	Category    string    `gorm:"index" json:"category"`
	ParentTagID *uint     `gorm:"index" json:"parent_tag_id"`
	CreatedAt   time.Time `json:"created_at"`
}
