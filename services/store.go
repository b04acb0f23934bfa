package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store is the persistence handle shared by the services.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DB returns a session bound to ctx for single-statement work.
func (s *Store) DB(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

// UnitOfWork runs fn inside one transaction. The transaction commits when fn
// returns nil and rolls back on error or panic. fn must only use tx.
func (s *Store) UnitOfWork(ctx context.Context, fn func(tx *gorm.DB) error) (err error) {
	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return storeError("begin transaction", tx.Error)
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err = fn(tx); err != nil {
		if rbErr := tx.Rollback().Error; rbErr != nil && !errors.Is(rbErr, gorm.ErrInvalidTransaction) {
			return fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		return err
	}

	if err = tx.Commit().Error; err != nil {
		return storeError("commit transaction", err)
	}
	return nil
}

func scoped(db *gorm.DB, scope Scope) *gorm.DB {
	return db.Where("workshop_id = ?", scope.WorkshopID)
}

func forUpdate(db *gorm.DB) *gorm.DB {
	return db.Clauses(clause.Locking{Strength: "UPDATE"})
}

// findScoped loads the row with the given id inside the scope's workshop.
func findScoped[T any](db *gorm.DB, scope Scope, id uint, entity string) (*T, error) {
	var row T
	err := scoped(db, scope).Where("id = ?", id).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound(entity)
	}
	if err != nil {
		return nil, storeError("load "+entity, err)
	}
	return &row, nil
}

func countScoped(db *gorm.DB, scope Scope, model interface{}, column string, id uint) (int64, error) {
	var n int64
	err := scoped(db.Model(model), scope).Where(column+" = ?", id).Count(&n).Error
	return n, err
}
