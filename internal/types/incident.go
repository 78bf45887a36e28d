package types

import "time"

// Incident is a free-form incident report with an open/closed lifecycle.
type Incident struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"column:title;not null" json:"title"`
	Description string    `gorm:"column:description" json:"description"`
	Category    string    `gorm:"column:category" json:"category"`
	Priority    string    `gorm:"column:priority" json:"priority"`
	Status      string    `gorm:"column:status;not null" json:"status"`
	CreatedAt   time.Time `gorm:"column:created_at;not null" json:"created_at"`
}

func (Incident) TableName() string { return "incident" }
