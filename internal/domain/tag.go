package domain

import "time"

// Tag is a free-form label attached to products via ProductTag.
// Name uniqueness (trimmed, case-insensitive) is enforced by the tag service.
type Tag struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"size:100;index" json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns table name
func (Tag) TableName() string {
	return "tags"
}
