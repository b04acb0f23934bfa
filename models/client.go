package models

import "time"

// Client is a workshop customer owning zero or more vehicles.
type Client struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Name       string    `gorm:"not null" json:"name"`
	Phone      *string   `json:"phone"`
	WorkshopID uint      `gorm:"not null;index" json:"workshop_id"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TableName specifies the table name for the Client model
func (Client) TableName() string {
	return "clients"
}
