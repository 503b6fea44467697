package bans

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/playerhire-backend/pkg/db/models"
)

// Repository stores ban audit rows and the owner lock flag.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindAccount(ctx context.Context, accountID uuid.UUID) (*models.Account, error)
	SetAccountLocked(ctx context.Context, accountID uuid.UUID, locked bool) error
	Create(ctx context.Context, ban *models.ListingBan) error
	FindActive(ctx context.Context, listingID uuid.UUID) (*models.ListingBan, error)
	Lift(ctx context.Context, banID, adminID uuid.UUID, at time.Time) error
	ListForListing(ctx context.Context, listingID uuid.UUID) ([]models.ListingBan, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindAccount(ctx context.Context, accountID uuid.UUID) (*models.Account, error) {
	var acct models.Account
	if err := r.db.WithContext(ctx).Where("id = ?", accountID).First(&acct).Error; err != nil {
		return nil, err
	}
	return &acct, nil
}

func (r *repository) SetAccountLocked(ctx context.Context, accountID uuid.UUID, locked bool) error {
	return r.db.WithContext(ctx).
		Model(&models.Account{}).
		Where("id = ?", accountID).
		Updates(map[string]any{"locked": locked, "updated_at": time.Now().UTC()}).Error
}

func (r *repository) Create(ctx context.Context, ban *models.ListingBan) error {
	return r.db.WithContext(ctx).Create(ban).Error
}

// FindActive returns the most recent ban on the listing that has not been lifted.
func (r *repository) FindActive(ctx context.Context, listingID uuid.UUID) (*models.ListingBan, error) {
	var ban models.ListingBan
	err := r.db.WithContext(ctx).
		Where("listing_id = ? AND lifted_at IS NULL", listingID).
		Order("created_at DESC").
		First(&ban).Error
	if err != nil {
		return nil, err
	}
	return &ban, nil
}

func (r *repository) Lift(ctx context.Context, banID, adminID uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.ListingBan{}).
		Where("id = ? AND lifted_at IS NULL", banID).
		Updates(map[string]any{"lifted_at": at, "lifted_by_account_id": adminID}).Error
}

func (r *repository) ListForListing(ctx context.Context, listingID uuid.UUID) ([]models.ListingBan, error) {
	var bans []models.ListingBan
	err := r.db.WithContext(ctx).
		Where("listing_id = ?", listingID).
		Order("created_at DESC").
		Find(&bans).Error
	return bans, err
}
