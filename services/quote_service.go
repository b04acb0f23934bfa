package services

import (
	"context"
	"errors"
	"math"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/carbuapp/oficina-api/logger"
	"github.com/carbuapp/oficina-api/models"
)

// maxNumberingAttempts bounds the retries when a concurrent creation took the
// number this attempt computed.
const maxNumberingAttempts = 5

var errNumberTaken = errors.New("quote number already taken")

// QuoteItemInput is one line of a quote. UnitPrice defaults to 0 when nil.
type QuoteItemInput struct {
	Description string
	Quantity    float64
	UnitPrice   *float64
}

// QuoteInput carries the fields of a new quote.
type QuoteInput struct {
	VehicleID uint
	Items     []QuoteItemInput
}

// QuoteUpdate is a partial replace: a nil Items leaves items and totals
// untouched, a non-nil Items replaces the whole item set.
type QuoteUpdate struct {
	VehicleID *uint
	Items     *[]QuoteItemInput
}

// QuoteSnapshot holds everything needed to render a quote without further
// lookups.
type QuoteSnapshot struct {
	Quote    models.Quote
	Items    []models.QuoteItem
	Vehicle  models.Vehicle
	Client   models.Client
	Workshop models.Workshop
}

type QuoteService struct {
	store *Store
}

func NewQuoteService(store *Store) *QuoteService {
	return &QuoteService{store: store}
}

// BuildItems validates the inputs and computes each line value and the
// subtotal.
func BuildItems(inputs []QuoteItemInput) ([]models.QuoteItem, float64, error) {
	if len(inputs) == 0 {
		return nil, 0, validationError("items must contain at least one item")
	}

	items := make([]models.QuoteItem, 0, len(inputs))
	var subtotal float64
	for i, in := range inputs {
		description := strings.TrimSpace(in.Description)
		if description == "" {
			return nil, 0, validationError("item %d: description is required", i+1)
		}
		if !isFinite(in.Quantity) || in.Quantity <= 0 {
			return nil, 0, validationError("item %d: quantity must be greater than 0", i+1)
		}
		var unitPrice float64
		if in.UnitPrice != nil {
			unitPrice = *in.UnitPrice
		}
		if !isFinite(unitPrice) || unitPrice < 0 {
			return nil, 0, validationError("item %d: unit_price must be zero or greater", i+1)
		}

		lineValue := in.Quantity * unitPrice
		if !isFinite(lineValue) {
			return nil, 0, validationError("item %d: line value is out of range", i+1)
		}
		subtotal += lineValue
		if !isFinite(subtotal) {
			return nil, 0, validationError("subtotal is out of range")
		}
		items = append(items, models.QuoteItem{
			Description: description,
			Quantity:    in.Quantity,
			UnitPrice:   unitPrice,
			LineValue:   lineValue,
		})
	}
	return items, subtotal, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func withQuoteDetails(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("quote_items.id ASC")
		}).
		Preload("Vehicle.Client")
}

// Create numbers the quote max+1 within the workshop (0 for the first) and
// persists header and items in one unit of work.
func (s *QuoteService) Create(ctx context.Context, scope Scope, in QuoteInput) (*models.Quote, error) {
	if err := scope.validate(); err != nil {
		return nil, err
	}

	var (
		quote models.Quote
		err   error
	)
	for attempt := 1; attempt <= maxNumberingAttempts; attempt++ {
		err = s.store.UnitOfWork(ctx, func(tx *gorm.DB) error {
			if err := lockWorkshop(tx, scope); err != nil {
				return err
			}
			if _, err := findScoped[models.Vehicle](tx, scope, in.VehicleID, "vehicle"); err != nil {
				return err
			}
			items, subtotal, err := BuildItems(in.Items)
			if err != nil {
				return err
			}
			number, err := nextQuoteNumber(tx, scope)
			if err != nil {
				return err
			}

			quote = models.Quote{
				Number:     number,
				Subtotal:   subtotal,
				Total:      subtotal,
				VehicleID:  in.VehicleID,
				WorkshopID: scope.WorkshopID,
				Items:      items,
			}
			if err := tx.Create(&quote).Error; err != nil {
				if IsUniqueViolation(err) {
					return errNumberTaken
				}
				return storeError("create quote", err)
			}
			return nil
		})
		if !errors.Is(err, errNumberTaken) {
			break
		}
		logger.L().Warn("quote number taken, retrying",
			zap.Uint("workshop_id", scope.WorkshopID),
			zap.Int("attempt", attempt))
	}
	if errors.Is(err, errNumberTaken) {
		return nil, conflictError("could not assign a quote number, please retry")
	}
	if err != nil {
		return nil, err
	}

	logger.L().Info("quote created",
		zap.Uint("workshop_id", scope.WorkshopID),
		zap.Uint("quote_id", quote.ID),
		zap.Int("number", quote.Number))
	return s.Get(ctx, scope, quote.ID)
}

// lockWorkshop serializes numbering per workshop. Dialects without row
// locks (sqlite) drop the FOR UPDATE clause; their single writer already
// serializes transactions.
func lockWorkshop(tx *gorm.DB, scope Scope) error {
	var workshop models.Workshop
	err := forUpdate(tx).Select("id").Where("id = ?", scope.WorkshopID).Take(&workshop).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound("workshop")
	}
	if err != nil {
		return storeError("lock workshop", err)
	}
	return nil
}

func nextQuoteNumber(tx *gorm.DB, scope Scope) (int, error) {
	var last models.Quote
	err := scoped(tx, scope).Select("number").Order("number DESC").Take(&last).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, storeError("read last quote number", err)
	}
	return last.Number + 1, nil
}

// Get returns one quote with its items and the vehicle/client view.
func (s *QuoteService) Get(ctx context.Context, scope Scope, id uint) (*models.Quote, error) {
	if err := scope.validate(); err != nil {
		return nil, err
	}
	return findScoped[models.Quote](withQuoteDetails(s.store.DB(ctx)), scope, id, "quote")
}

// List returns the workshop's quotes newest first, optionally narrowed to
// one vehicle.
func (s *QuoteService) List(ctx context.Context, scope Scope, vehicleID *uint) ([]models.Quote, error) {
	if err := scope.validate(); err != nil {
		return nil, err
	}
	query := scoped(withQuoteDetails(s.store.DB(ctx)), scope)
	if vehicleID != nil {
		query = query.Where("vehicle_id = ?", *vehicleID)
	}

	quotes := []models.Quote{}
	if err := query.Order("created_at DESC, id DESC").Find(&quotes).Error; err != nil {
		return nil, storeError("list quotes", err)
	}
	return quotes, nil
}

// Update re-targets the vehicle and/or replaces the item set. Item deletion,
// insertion and the header update commit together or not at all.
func (s *QuoteService) Update(ctx context.Context, scope Scope, id uint, in QuoteUpdate) (*models.Quote, error) {
	if err := scope.validate(); err != nil {
		return nil, err
	}

	err := s.store.UnitOfWork(ctx, func(tx *gorm.DB) error {
		quote, err := findScoped[models.Quote](forUpdate(tx), scope, id, "quote")
		if err != nil {
			return err
		}

		updates := map[string]interface{}{}
		if in.VehicleID != nil {
			if _, err := findScoped[models.Vehicle](tx, scope, *in.VehicleID, "vehicle"); err != nil {
				return err
			}
			updates["vehicle_id"] = *in.VehicleID
		}

		if in.Items != nil {
			items, subtotal, err := BuildItems(*in.Items)
			if err != nil {
				return err
			}
			if err := tx.Where("quote_id = ?", quote.ID).Delete(&models.QuoteItem{}).Error; err != nil {
				return storeError("delete quote items", err)
			}
			for i := range items {
				items[i].QuoteID = quote.ID
			}
			if err := tx.Create(&items).Error; err != nil {
				return storeError("create quote items", err)
			}
			updates["subtotal"] = subtotal
			updates["total"] = subtotal
		}

		if len(updates) == 0 {
			return nil
		}
		if err := scoped(tx.Model(&models.Quote{}), scope).Where("id = ?", quote.ID).Updates(updates).Error; err != nil {
			return storeError("update quote", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, scope, id)
}

// Delete removes the quote and its items in one unit of work.
func (s *QuoteService) Delete(ctx context.Context, scope Scope, id uint) error {
	if err := scope.validate(); err != nil {
		return err
	}
	return s.store.UnitOfWork(ctx, func(tx *gorm.DB) error {
		quote, err := findScoped[models.Quote](forUpdate(tx), scope, id, "quote")
		if err != nil {
			return err
		}
		if err := tx.Where("quote_id = ?", quote.ID).Delete(&models.QuoteItem{}).Error; err != nil {
			return storeError("delete quote items", err)
		}
		if err := scoped(tx, scope).Delete(&models.Quote{}, quote.ID).Error; err != nil {
			return storeError("delete quote", err)
		}
		return nil
	})
}

// Snapshot resolves a quote with its items, vehicle, client and workshop.
func (s *QuoteService) Snapshot(ctx context.Context, scope Scope, id uint) (*QuoteSnapshot, error) {
	quote, err := s.Get(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	if quote.Vehicle == nil || quote.Vehicle.Client == nil {
		return nil, storeError("load quote vehicle", errors.New("vehicle or client missing"))
	}

	var workshop models.Workshop
	if err := s.store.DB(ctx).Where("id = ?", scope.WorkshopID).Take(&workshop).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("workshop")
		}
		return nil, storeError("load workshop", err)
	}

	return &QuoteSnapshot{
		Quote:    *quote,
		Items:    quote.Items,
		Vehicle:  *quote.Vehicle,
		Client:   *quote.Vehicle.Client,
		Workshop: workshop,
	}, nil
}
