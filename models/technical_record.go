package models

import "time"

// TechnicalRecord is a service or diagnostic note attached to a vehicle.
type TechnicalRecord struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Category    string    `gorm:"not null;index" json:"category"`
	Description string    `gorm:"type:text;not null" json:"description"`
	Pressure    *string   `json:"pressure"`
	JetSize     *string   `json:"jet_size"`
	FuelType    *string   `json:"fuel_type"`
	Notes       *string   `gorm:"type:text" json:"notes"`
	VehicleID   uint      `gorm:"not null;index" json:"vehicle_id"`
	Vehicle     *Vehicle  `gorm:"foreignKey:VehicleID" json:"vehicle,omitempty"`
	WorkshopID  uint      `gorm:"not null;index" json:"workshop_id"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName specifies the table name for the TechnicalRecord model
func (TechnicalRecord) TableName() string {
	return "technical_records"
}
