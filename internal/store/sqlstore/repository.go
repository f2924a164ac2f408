package sqlstore

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/zhouzirui/marketplace/backend/internal/model/market"
)

type repository[T market.Record] struct {
	db         *gorm.DB
	collection string
}

func (r *repository[T]) Create(ctx context.Context, rec T) error {
	id := rec.RecordID()
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(new(T)).Where("id = ?", id).Count(&count).Error; err != nil {
			return fmt.Errorf("check %s %d: %w", r.collection, id, err)
		}
		if count > 0 {
			return &market.ConflictError{Collection: r.collection, ID: id}
		}

		if err := tx.Create(&rec).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return &market.ConflictError{Collection: r.collection, ID: id}
			}
			return fmt.Errorf("insert %s %d: %w", r.collection, id, err)
		}
		return nil
	})
}

func (r *repository[T]) Get(ctx context.Context, id int64) (T, error) {
	var rec T
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&rec).Error
	if err != nil {
		var zero T
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return zero, &market.NotFoundError{Collection: r.collection, ID: id}
		}
		return zero, fmt.Errorf("select %s %d: %w", r.collection, id, err)
	}
	return rec, nil
}

func (r *repository[T]) List(ctx context.Context) ([]T, error) {
	out := make([]T, 0)
	if err := r.db.WithContext(ctx).Order("id").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list %s: %w", r.collection, err)
	}
	return out, nil
}

// Replace overwrites every non-id column in a single UPDATE, so a row
// deleted concurrently is never recreated.
func (r *repository[T]) Replace(ctx context.Context, rec T) error {
	id := rec.RecordID()
	res := r.db.WithContext(ctx).Model(new(T)).Where("id = ?", id).Select("*").Omit("id").Updates(&rec)
	if res.Error != nil {
		return fmt.Errorf("update %s %d: %w", r.collection, id, res.Error)
	}
	if res.RowsAffected == 0 {
		return &market.NotFoundError{Collection: r.collection, ID: id}
	}
	return nil
}

func (r *repository[T]) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(new(T))
	if res.Error != nil {
		return fmt.Errorf("delete %s %d: %w", r.collection, id, res.Error)
	}
	if res.RowsAffected == 0 {
		return &market.NotFoundError{Collection: r.collection, ID: id}
	}
	return nil
}
