package availability

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/playerhire-backend/pkg/db/models"
	"github.com/angelmondragon/playerhire-backend/pkg/enums"
)

// Checker finds orders blocking a window on a listing.
type Checker interface {
	HasConflict(ctx context.Context, tx *gorm.DB, listingID uuid.UUID, window Window) (bool, error)
	Conflicts(ctx context.Context, tx *gorm.DB, listingID uuid.UUID, window Window) ([]models.Order, error)
}

type checker struct {
	db *gorm.DB
}

// NewChecker returns a Checker reading through db unless a tx is supplied.
func NewChecker(db *gorm.DB) Checker {
	return &checker{db: db}
}

// HasConflict is meant to run after the listing row has been locked so two
// concurrent creates for the same listing observe each other.
func (c *checker) HasConflict(ctx context.Context, tx *gorm.DB, listingID uuid.UUID, window Window) (bool, error) {
	var count int64
	err := c.scope(ctx, tx, listingID, window).Model(&models.Order{}).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("count overlapping orders: %w", err)
	}
	return count > 0, nil
}

func (c *checker) Conflicts(ctx context.Context, tx *gorm.DB, listingID uuid.UUID, window Window) ([]models.Order, error) {
	var orders []models.Order
	if err := c.scope(ctx, tx, listingID, window).Order("window_start ASC").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("list overlapping orders: %w", err)
	}
	return orders, nil
}

func (c *checker) scope(ctx context.Context, tx *gorm.DB, listingID uuid.UUID, window Window) *gorm.DB {
	db := c.db
	if tx != nil {
		db = tx
	}
	w := window.UTC()
	return db.WithContext(ctx).
		Where("listing_id = ?", listingID).
		Where("status IN ?", []enums.OrderStatus{enums.OrderStatusPending, enums.OrderStatusConfirmed}).
		Where("window_start < ? AND window_end > ?", w.End, w.Start)
}
