package services

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/carbuapp/oficina-api/models"
)

// ClientInput carries the fields of a new client.
type ClientInput struct {
	Name  string
	Phone *string
}

// ClientUpdate carries a partial update; nil fields are left unchanged.
type ClientUpdate struct {
	Name  *string
	Phone *string
}

type ClientService struct {
	store *Store
}

func NewClientService(store *Store) *ClientService {
	return &ClientService{store: store}
}

func (s *ClientService) Create(ctx context.Context, scope Scope, in ClientInput) (*models.Client, error) {
	if err := scope.validate(); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, validationError("name is required")
	}

	client := models.Client{
		Name:       name,
		Phone:      in.Phone,
		WorkshopID: scope.WorkshopID,
	}
	if err := s.store.DB(ctx).Create(&client).Error; err != nil {
		return nil, storeError("create client", err)
	}
	return &client, nil
}

// List returns the workshop's clients, newest first.
func (s *ClientService) List(ctx context.Context, scope Scope) ([]models.Client, error) {
	if err := scope.validate(); err != nil {
		return nil, err
	}
	clients := []models.Client{}
	if err := scoped(s.store.DB(ctx), scope).
		Order("created_at DESC, id DESC").
		Find(&clients).Error; err != nil {
		return nil, storeError("list clients", err)
	}
	return clients, nil
}

func (s *ClientService) Update(ctx context.Context, scope Scope, id uint, in ClientUpdate) (*models.Client, error) {
	if err := scope.validate(); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, validationError("name cannot be empty")
		}
		updates["name"] = name
	}
	if in.Phone != nil {
		updates["phone"] = *in.Phone
	}

	var client *models.Client
	err := s.store.UnitOfWork(ctx, func(tx *gorm.DB) error {
		var err error
		client, err = findScoped[models.Client](tx, scope, id, "client")
		if err != nil {
			return err
		}
		if len(updates) == 0 {
			return nil
		}
		if err := scoped(tx.Model(client), scope).Updates(updates).Error; err != nil {
			return storeError("update client", err)
		}
		client, err = findScoped[models.Client](tx, scope, id, "client")
		return err
	})
	if err != nil {
		return nil, err
	}
	return client, nil
}

// Delete removes a client that owns no vehicles.
func (s *ClientService) Delete(ctx context.Context, scope Scope, id uint) error {
	if err := scope.validate(); err != nil {
		return err
	}
	return s.store.UnitOfWork(ctx, func(tx *gorm.DB) error {
		client, err := findScoped[models.Client](forUpdate(tx), scope, id, "client")
		if err != nil {
			return err
		}

		vehicles, err := countScoped(tx, scope, &models.Vehicle{}, "client_id", client.ID)
		if err != nil {
			return storeError("count client vehicles", err)
		}
		if vehicles > 0 {
			return conflictError("cannot delete client: it has %d dependent vehicle(s), remove them first", vehicles)
		}

		if err := scoped(tx, scope).Delete(&models.Client{}, client.ID).Error; err != nil {
			return storeError("delete client", err)
		}
		return nil
	})
}
