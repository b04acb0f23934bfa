package models

import "time"

// Workshop is the tenant root: an automotive repair business ("oficina").
// Workshops are provisioned by operators, never through the API.
type Workshop struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"not null" json:"name"`
	Responsible string    `gorm:"not null" json:"responsible"`
	Phone       string    `json:"phone"`
	Address     string    `json:"address"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName specifies the table name for the Workshop model
func (Workshop) TableName() string {
	return "workshops"
}

// WorkshopSummary is the public projection used by the workshop picker.
type WorkshopSummary struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Responsible string `json:"responsible"`
}
