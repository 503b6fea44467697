package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/playerhire-backend/pkg/db/models"
	"github.com/angelmondragon/playerhire-backend/pkg/enums"
	"github.com/angelmondragon/playerhire-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository returns an orders repository bound to db.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *repository) FindByID(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).Where("id = ?", orderID).First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) LockByID(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", orderID).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) FindListing(ctx context.Context, listingID uuid.UUID) (*models.Listing, error) {
	var listing models.Listing
	if err := r.db.WithContext(ctx).Where("id = ?", listingID).First(&listing).Error; err != nil {
		return nil, err
	}
	return &listing, nil
}

func (r *repository) LockListing(ctx context.Context, listingID uuid.UUID) (*models.Listing, error) {
	var listing models.Listing
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", listingID).
		First(&listing).Error
	if err != nil {
		return nil, err
	}
	return &listing, nil
}

func (r *repository) TransitionStatus(ctx context.Context, orderID uuid.UUID, from, to enums.OrderStatus, updates map[string]any) (bool, error) {
	values := map[string]any{"status": to, "updated_at": time.Now().UTC()}
	for k, v := range updates {
		values[k] = v
	}
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND status = ?", orderID, from).
		Updates(values)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repository) UpdateListing(ctx context.Context, listingID uuid.UUID, updates map[string]any) error {
	values := map[string]any{"updated_at": time.Now().UTC()}
	for k, v := range updates {
		values[k] = v
	}
	return r.db.WithContext(ctx).
		Model(&models.Listing{}).
		Where("id = ?", listingID).
		Updates(values).Error
}

// LockLiveForListing locks every PENDING or CONFIRMED order on the listing.
func (r *repository) LockLiveForListing(ctx context.Context, listingID uuid.UUID) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("listing_id = ? AND status IN ?", listingID, enums.NonTerminalOrderStatuses).
		Order("id ASC").
		Find(&orders).Error
	return orders, err
}

func (r *repository) ListForRenter(ctx context.Context, renterID uuid.UUID, statuses []enums.OrderStatus, cursor *pagination.Cursor, limit int) ([]models.Order, error) {
	q := r.db.WithContext(ctx).Where("renter_account_id = ?", renterID)
	if len(statuses) > 0 {
		q = q.Where("status IN ?", statuses)
	}
	var orders []models.Order
	err := pagination.Apply(q, "", cursor, limit).Find(&orders).Error
	return orders, err
}

func (r *repository) ListForListing(ctx context.Context, listingID uuid.UUID, statuses []enums.OrderStatus, cursor *pagination.Cursor, limit int) ([]models.Order, error) {
	q := r.db.WithContext(ctx).Where("listing_id = ?", listingID)
	if len(statuses) > 0 {
		q = q.Where("status IN ?", statuses)
	}
	var orders []models.Order
	err := pagination.Apply(q, "", cursor, limit).Find(&orders).Error
	return orders, err
}

// ListConfirmedEndedBefore returns CONFIRMED orders whose window closed before
// cutoff, oldest first.
func (r *repository) ListConfirmedEndedBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.Order, error) {
	q := r.db.WithContext(ctx).
		Where("status = ? AND window_end < ?", enums.OrderStatusConfirmed, cutoff.UTC()).
		Order("window_end ASC").
		Order("id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var orders []models.Order
	err := q.Find(&orders).Error
	return orders, err
}

func (r *repository) ListConfirmedStartingBetween(ctx context.Context, from, to time.Time) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Where("status = ? AND window_start > ? AND window_start <= ?", enums.OrderStatusConfirmed, from.UTC(), to.UTC()).
		Order("window_start ASC").
		Find(&orders).Error
	return orders, err
}

func (r *repository) ListConfirmedEndingBetween(ctx context.Context, from, to time.Time) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Where("status = ? AND window_end > ? AND window_end <= ?", enums.OrderStatusConfirmed, from.UTC(), to.UTC()).
		Order("window_end ASC").
		Find(&orders).Error
	return orders, err
}
