package services

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/carbuapp/oficina-api/models"
)

// VehicleInput carries the fields of a new vehicle.
type VehicleInput struct {
	ClientID   uint
	Plate      string
	Model      string
	Year       *string
	Engine     *string
	FuelSystem *string
}

// VehicleUpdate carries a partial update; nil fields are left unchanged.
type VehicleUpdate struct {
	ClientID   *uint
	Plate      *string
	Model      *string
	Year       *string
	Engine     *string
	FuelSystem *string
}

type VehicleService struct {
	store *Store
}

func NewVehicleService(store *Store) *VehicleService {
	return &VehicleService{store: store}
}

func (s *VehicleService) Create(ctx context.Context, scope Scope, in VehicleInput) (*models.Vehicle, error) {
	if err := scope.validate(); err != nil {
		return nil, err
	}
	plate := strings.TrimSpace(in.Plate)
	model := strings.TrimSpace(in.Model)
	switch {
	case in.ClientID == 0:
		return nil, validationError("client_id is required")
	case plate == "":
		return nil, validationError("plate is required")
	case model == "":
		return nil, validationError("model is required")
	}

	vehicle := models.Vehicle{
		Plate:      plate,
		Model:      model,
		Year:       in.Year,
		Engine:     in.Engine,
		FuelSystem: in.FuelSystem,
		ClientID:   in.ClientID,
		WorkshopID: scope.WorkshopID,
	}
	err := s.store.UnitOfWork(ctx, func(tx *gorm.DB) error {
		if _, err := findScoped[models.Client](tx, scope, in.ClientID, "client"); err != nil {
			return err
		}
		if err := tx.Create(&vehicle).Error; err != nil {
			return storeError("create vehicle", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &vehicle, nil
}

// List returns the workshop's vehicles with their client, newest first,
// optionally narrowed to one client.
func (s *VehicleService) List(ctx context.Context, scope Scope, clientID *uint) ([]models.Vehicle, error) {
	if err := scope.validate(); err != nil {
		return nil, err
	}
	query := scoped(s.store.DB(ctx), scope).Preload("Client")
	if clientID != nil {
		query = query.Where("client_id = ?", *clientID)
	}

	vehicles := []models.Vehicle{}
	if err := query.Order("created_at DESC, id DESC").Find(&vehicles).Error; err != nil {
		return nil, storeError("list vehicles", err)
	}
	return vehicles, nil
}

func (s *VehicleService) Update(ctx context.Context, scope Scope, id uint, in VehicleUpdate) (*models.Vehicle, error) {
	if err := scope.validate(); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if in.Plate != nil {
		plate := strings.TrimSpace(*in.Plate)
		if plate == "" {
			return nil, validationError("plate cannot be empty")
		}
		updates["plate"] = plate
	}
	if in.Model != nil {
		model := strings.TrimSpace(*in.Model)
		if model == "" {
			return nil, validationError("model cannot be empty")
		}
		updates["model"] = model
	}
	if in.Year != nil {
		updates["year"] = *in.Year
	}
	if in.Engine != nil {
		updates["engine"] = *in.Engine
	}
	if in.FuelSystem != nil {
		updates["fuel_system"] = *in.FuelSystem
	}

	var vehicle *models.Vehicle
	err := s.store.UnitOfWork(ctx, func(tx *gorm.DB) error {
		var err error
		vehicle, err = findScoped[models.Vehicle](tx, scope, id, "vehicle")
		if err != nil {
			return err
		}
		if in.ClientID != nil {
			if _, err := findScoped[models.Client](tx, scope, *in.ClientID, "client"); err != nil {
				return err
			}
			updates["client_id"] = *in.ClientID
		}
		if len(updates) == 0 {
			return nil
		}
		if err := scoped(tx.Model(vehicle), scope).Updates(updates).Error; err != nil {
			return storeError("update vehicle", err)
		}
		vehicle, err = findScoped[models.Vehicle](tx, scope, id, "vehicle")
		return err
	})
	if err != nil {
		return nil, err
	}
	return vehicle, nil
}

// Delete removes a vehicle that has no technical records and no quotes.
// Technical records are checked first.
func (s *VehicleService) Delete(ctx context.Context, scope Scope, id uint) error {
	if err := scope.validate(); err != nil {
		return err
	}
	return s.store.UnitOfWork(ctx, func(tx *gorm.DB) error {
		vehicle, err := findScoped[models.Vehicle](forUpdate(tx), scope, id, "vehicle")
		if err != nil {
			return err
		}

		records, err := countScoped(tx, scope, &models.TechnicalRecord{}, "vehicle_id", vehicle.ID)
		if err != nil {
			return storeError("count technical records", err)
		}
		if records > 0 {
			return conflictError("cannot delete vehicle: it has %d technical record(s), remove them first", records)
		}

		quotes, err := countScoped(tx, scope, &models.Quote{}, "vehicle_id", vehicle.ID)
		if err != nil {
			return storeError("count quotes", err)
		}
		if quotes > 0 {
			return conflictError("cannot delete vehicle: it has %d quote(s), remove them first", quotes)
		}

		if err := scoped(tx, scope).Delete(&models.Vehicle{}, vehicle.ID).Error; err != nil {
			return storeError("delete vehicle", err)
		}
		return nil
	})
}
