package models

import "time"

// Vehicle belongs to a client of the same workshop.
type Vehicle struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Plate      string    `gorm:"not null" json:"plate"`
	Model      string    `gorm:"not null" json:"model"`
	Year       *string   `json:"year"`
	Engine     *string   `json:"engine"`
	FuelSystem *string   `json:"fuel_system"` // e.g. carbureted, injection, turbo
	ClientID   uint      `gorm:"not null;index" json:"client_id"`
	Client     *Client   `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	WorkshopID uint      `gorm:"not null;index" json:"workshop_id"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TableName specifies the table name for the Vehicle model
func (Vehicle) TableName() string {
	return "vehicles"
}
