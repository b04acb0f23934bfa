package models

import "time"

// Quote is a priced proposal for work on one vehicle. Number is sequential
// per workshop starting at 0; Total always equals Subtotal, the sum of the
// items' line values.
type Quote struct {
	ID         uint        `gorm:"primaryKey" json:"id"`
	Number     int         `gorm:"not null;uniqueIndex:idx_quotes_workshop_number" json:"number"`
	Subtotal   float64     `gorm:"not null" json:"subtotal"`
	Total      float64     `gorm:"not null" json:"total"`
	VehicleID  uint        `gorm:"not null;index" json:"vehicle_id"`
	Vehicle    *Vehicle    `gorm:"foreignKey:VehicleID" json:"vehicle,omitempty"`
	WorkshopID uint        `gorm:"not null;uniqueIndex:idx_quotes_workshop_number" json:"workshop_id"`
	Items      []QuoteItem `gorm:"foreignKey:QuoteID" json:"items"`
	CreatedAt  time.Time   `gorm:"index" json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

// TableName specifies the table name for the Quote model
func (Quote) TableName() string {
	return "quotes"
}

// QuoteItem is one priced line of a quote. LineValue = Quantity * UnitPrice.
type QuoteItem struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	Description string  `gorm:"not null" json:"description"`
	Quantity    float64 `gorm:"not null;check:quantity > 0" json:"quantity"`
	UnitPrice   float64 `gorm:"not null" json:"unit_price"`
	LineValue   float64 `gorm:"not null" json:"line_value"`
	QuoteID     uint    `gorm:"not null;index" json:"quote_id"`
}

// TableName specifies the table name for the QuoteItem model
func (QuoteItem) TableName() string {
	return "quote_items"
}
