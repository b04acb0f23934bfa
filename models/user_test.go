package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTableNames(t *testing.T) {
	tests := []struct {
		name  string
		model interface{ TableName() string }
		want  string
	}{
		{"workshop", Workshop{}, "workshops"},
		{"user", User{}, "users"},
		{"client", Client{}, "clients"},
		{"vehicle", Vehicle{}, "vehicles"},
		{"technical record", TechnicalRecord{}, "technical_records"},
		{"quote", Quote{}, "quotes"},
		{"quote item", QuoteItem{}, "quote_items"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.model.TableName())
		})
	}
}

func TestUserIsAdmin(t *testing.T) {
	tests := []struct {
		name string
		role string
		want bool
	}{
		{"admin role", RoleAdmin, true},
		{"staff role", RoleStaff, false},
		{"empty role", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user := User{Email: "test@example.com", Role: tt.role}
			assert.Equal(t, tt.want, user.IsAdmin())
		})
	}
}

func TestUserDefaultValues(t *testing.T) {
	user := User{Email: "new@example.com"}

	assert.Equal(t, "new@example.com", user.Email)
	assert.Equal(t, "", user.Role, "Role should be empty string by default in Go struct")
	assert.False(t, user.Active, "accounts are inactive until explicitly activated")
}
