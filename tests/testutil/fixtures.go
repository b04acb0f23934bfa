package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/carbuapp/oficina-api/config"
	"github.com/carbuapp/oficina-api/models"
)

const (
	TestJWTSecret = "test-secret"
	TestPassword  = "admin123"
)

var dbCounter int64

// NewTestDB opens a private in-memory sqlite database with every model
// migrated. It is closed when the test ends.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	RequireTestEnvironment(t)

	// a named shared-cache database keeps its schema for the lifetime of
	// the single pooled connection
	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", atomic.AddInt64(&dbCounter, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get database instance: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	return db
}

// TestConfig returns a configuration suitable for handlers and token issuance.
func TestConfig() *config.Config {
	return &config.Config{
		Port:               "3333",
		GoEnv:              "test",
		JWTSecret:          TestJWTSecret,
		JWTIssuer:          "oficina-api",
		JWTAudience:        "oficina-app",
		TokenTTL:           time.Hour,
		CORSAllowedOrigins: []string{"*"},
		AWSRegion:          "us-east-1",
	}
}

func SeedWorkshop(t *testing.T, db *gorm.DB, name string) models.Workshop {
	t.Helper()
	workshop := models.Workshop{
		Name:        name,
		Responsible: "Responsible of " + name,
		Phone:       "11900000000",
		Address:     "Rua Teste 1",
	}
	if err := db.Create(&workshop).Error; err != nil {
		t.Fatalf("Failed to seed workshop: %v", err)
	}
	return workshop
}

// SeedUser creates a user whose password is TestPassword.
func SeedUser(t *testing.T, db *gorm.DB, workshopID uint, email, role string, active bool) models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}
	user := models.User{
		Name:         "User " + email,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		Active:       active,
		WorkshopID:   workshopID,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("Failed to seed user: %v", err)
	}
	return user
}

func SeedClient(t *testing.T, db *gorm.DB, workshopID uint, name string) models.Client {
	t.Helper()
	client := models.Client{Name: name, WorkshopID: workshopID}
	if err := db.Create(&client).Error; err != nil {
		t.Fatalf("Failed to seed client: %v", err)
	}
	return client
}

func SeedVehicle(t *testing.T, db *gorm.DB, workshopID, clientID uint, plate string) models.Vehicle {
	t.Helper()
	vehicle := models.Vehicle{
		Plate:      plate,
		Model:      "Fusca",
		ClientID:   clientID,
		WorkshopID: workshopID,
	}
	if err := db.Create(&vehicle).Error; err != nil {
		t.Fatalf("Failed to seed vehicle: %v", err)
	}
	return vehicle
}
