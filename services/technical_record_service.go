package services

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/carbuapp/oficina-api/models"
)

// TechnicalRecordInput carries the fields of a new technical record.
type TechnicalRecordInput struct {
	VehicleID   uint
	Category    string
	Description string
	Pressure    *string
	JetSize     *string
	FuelType    *string
	Notes       *string
}

// TechnicalRecordUpdate carries a partial update; nil fields are left unchanged.
type TechnicalRecordUpdate struct {
	VehicleID   *uint
	Category    *string
	Description *string
	Pressure    *string
	JetSize     *string
	FuelType    *string
	Notes       *string
}

// TechnicalRecordFilter narrows List; zero values mean no filter.
type TechnicalRecordFilter struct {
	VehicleID *uint
	Category  string
}

type TechnicalRecordService struct {
	store *Store
}

func NewTechnicalRecordService(store *Store) *TechnicalRecordService {
	return &TechnicalRecordService{store: store}
}

func (s *TechnicalRecordService) Create(ctx context.Context, scope Scope, in TechnicalRecordInput) (*models.TechnicalRecord, error) {
	if err := scope.validate(); err != nil {
		return nil, err
	}
	category := strings.TrimSpace(in.Category)
	description := strings.TrimSpace(in.Description)
	switch {
	case in.VehicleID == 0:
		return nil, validationError("vehicle_id is required")
	case category == "":
		return nil, validationError("category is required")
	case description == "":
		return nil, validationError("description is required")
	}

	record := models.TechnicalRecord{
		Category:    category,
		Description: description,
		Pressure:    in.Pressure,
		JetSize:     in.JetSize,
		FuelType:    in.FuelType,
		Notes:       in.Notes,
		VehicleID:   in.VehicleID,
		WorkshopID:  scope.WorkshopID,
	}
	err := s.store.UnitOfWork(ctx, func(tx *gorm.DB) error {
		if _, err := findScoped[models.Vehicle](tx, scope, in.VehicleID, "vehicle"); err != nil {
			return err
		}
		if err := tx.Create(&record).Error; err != nil {
			return storeError("create technical record", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// List returns the workshop's records with vehicle and client, newest first.
func (s *TechnicalRecordService) List(ctx context.Context, scope Scope, filter TechnicalRecordFilter) ([]models.TechnicalRecord, error) {
	if err := scope.validate(); err != nil {
		return nil, err
	}
	query := scoped(s.store.DB(ctx), scope).Preload("Vehicle.Client")
	if filter.VehicleID != nil {
		query = query.Where("vehicle_id = ?", *filter.VehicleID)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}

	records := []models.TechnicalRecord{}
	if err := query.Order("created_at DESC, id DESC").Find(&records).Error; err != nil {
		return nil, storeError("list technical records", err)
	}
	return records, nil
}

func (s *TechnicalRecordService) Update(ctx context.Context, scope Scope, id uint, in TechnicalRecordUpdate) (*models.TechnicalRecord, error) {
	if err := scope.validate(); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if in.Category != nil {
		category := strings.TrimSpace(*in.Category)
		if category == "" {
			return nil, validationError("category cannot be empty")
		}
		updates["category"] = category
	}
	if in.Description != nil {
		description := strings.TrimSpace(*in.Description)
		if description == "" {
			return nil, validationError("description cannot be empty")
		}
		updates["description"] = description
	}
	optional := map[string]*string{
		"pressure":  in.Pressure,
		"jet_size":  in.JetSize,
		"fuel_type": in.FuelType,
		"notes":     in.Notes,
	}
	for column, value := range optional {
		if value != nil {
			updates[column] = *value
		}
	}

	var record *models.TechnicalRecord
	err := s.store.UnitOfWork(ctx, func(tx *gorm.DB) error {
		var err error
		record, err = findScoped[models.TechnicalRecord](tx, scope, id, "technical record")
		if err != nil {
			return err
		}
		if in.VehicleID != nil {
			if _, err := findScoped[models.Vehicle](tx, scope, *in.VehicleID, "vehicle"); err != nil {
				return err
			}
			updates["vehicle_id"] = *in.VehicleID
		}
		if len(updates) == 0 {
			return nil
		}
		if err := scoped(tx.Model(record), scope).Updates(updates).Error; err != nil {
			return storeError("update technical record", err)
		}
		record, err = findScoped[models.TechnicalRecord](tx, scope, id, "technical record")
		return err
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (s *TechnicalRecordService) Delete(ctx context.Context, scope Scope, id uint) error {
	if err := scope.validate(); err != nil {
		return err
	}
	return s.store.UnitOfWork(ctx, func(tx *gorm.DB) error {
		record, err := findScoped[models.TechnicalRecord](tx, scope, id, "technical record")
		if err != nil {
			return err
		}
		if err := scoped(tx, scope).Delete(&models.TechnicalRecord{}, record.ID).Error; err != nil {
			return storeError("delete technical record", err)
		}
		return nil
	})
}
