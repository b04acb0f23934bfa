package services

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/carbuapp/oficina-api/logger"
	"github.com/carbuapp/oficina-api/models"
)

// ProvisionInput describes a workshop and its first ADMIN account.
type ProvisionInput struct {
	WorkshopName  string
	Responsible   string
	Phone         string
	Address       string
	AdminName     string
	AdminEmail    string
	AdminPassword string
}

type WorkshopService struct {
	store *Store
}

func NewWorkshopService(store *Store) *WorkshopService {
	return &WorkshopService{store: store}
}

// ListPublic returns the workshop picker entries ordered by id.
func (s *WorkshopService) ListPublic(ctx context.Context) ([]models.WorkshopSummary, error) {
	summaries := []models.WorkshopSummary{}
	if err := s.store.DB(ctx).
		Model(&models.Workshop{}).
		Select("id", "name", "responsible").
		Order("id ASC").
		Find(&summaries).Error; err != nil {
		return nil, storeError("list workshops", err)
	}
	return summaries, nil
}

// Provision creates the workshop and its ADMIN user unless they already
// exist. Workshops are matched by name, users by email within the workshop.
// Existing rows are left untouched.
func (s *WorkshopService) Provision(ctx context.Context, in ProvisionInput) (*models.Workshop, *models.User, error) {
	name := strings.TrimSpace(in.WorkshopName)
	email := normalizeEmail(in.AdminEmail)
	switch {
	case name == "":
		return nil, nil, validationError("workshop name is required")
	case strings.TrimSpace(in.Responsible) == "":
		return nil, nil, validationError("responsible is required")
	case email == "":
		return nil, nil, validationError("admin email is required")
	case in.AdminPassword == "":
		return nil, nil, validationError("admin password is required")
	}

	hash, err := HashPassword(in.AdminPassword)
	if err != nil {
		return nil, nil, err
	}

	var (
		workshop models.Workshop
		user     models.User
	)
	err = s.store.UnitOfWork(ctx, func(tx *gorm.DB) error {
		err := tx.Where(models.Workshop{Name: name}).
			Attrs(models.Workshop{
				Responsible: strings.TrimSpace(in.Responsible),
				Phone:       in.Phone,
				Address:     in.Address,
			}).
			FirstOrCreate(&workshop).Error
		if err != nil {
			return storeError("provision workshop", err)
		}

		adminName := strings.TrimSpace(in.AdminName)
		if adminName == "" {
			adminName = "Admin"
		}
		err = tx.Where(models.User{WorkshopID: workshop.ID, Email: email}).
			Attrs(models.User{
				Name:         adminName,
				PasswordHash: hash,
				Role:         models.RoleAdmin,
				Active:       true,
			}).
			FirstOrCreate(&user).Error
		if err != nil {
			return storeError("provision admin user", err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	logger.L().Info("workshop provisioned",
		zap.Uint("workshop_id", workshop.ID),
		zap.String("workshop", workshop.Name),
		zap.String("admin_email", user.Email))
	return &workshop, &user, nil
}
