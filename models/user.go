package models

import (
	"time"
)

const (
	RoleAdmin = "ADMIN"
	RoleStaff = "STAFF"
)

// User is a staff account of one workshop. Email is unique per workshop.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"not null" json:"name"`
	Email        string    `gorm:"not null;uniqueIndex:idx_users_workshop_email" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	Role         string    `gorm:"not null" json:"role"` // "ADMIN" or "STAFF"
	Active       bool      `gorm:"not null" json:"active"`
	WorkshopID   uint      `gorm:"not null;uniqueIndex:idx_users_workshop_email" json:"workshop_id"`
	Workshop     *Workshop `gorm:"foreignKey:WorkshopID" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName specifies the table name for the User model
func (User) TableName() string {
	return "users"
}

// IsAdmin reports whether the user holds the ADMIN role.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
