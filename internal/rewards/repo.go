package rewards

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/playerhire-backend/pkg/db/models"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindListing(ctx context.Context, listingID uuid.UUID) (*models.Listing, error)
	LockListing(ctx context.Context, listingID uuid.UUID) (*models.Listing, error)
	UpdateProgress(ctx context.Context, listingID uuid.UUID, totalMinutes int64, lastIndex int) error
	InsertRecord(ctx context.Context, record *models.RewardRecord) (bool, error)
	ListRecords(ctx context.Context, listingID uuid.UUID) ([]models.RewardRecord, error)
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

func (r *repository) UpdateProgress(ctx context.Context, listingID uuid.UUID, totalMinutes int64, lastIndex int) error {
	return r.db.WithContext(ctx).
		Model(&models.Listing{}).
		Where("id = ?", listingID).
		Updates(map[string]any{
			"cumulative_minutes_hired":    totalMinutes,
			"last_reward_milestone_index": lastIndex,
		}).Error
}

// InsertRecord reports false when the (listing, milestone) pair already exists.
// ON CONFLICT keeps the surrounding Postgres transaction usable.
func (r *repository) InsertRecord(ctx context.Context, record *models.RewardRecord) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "listing_id"}, {Name: "milestone_index"}},
			DoNothing: true,
		}).
		Create(record)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repository) ListRecords(ctx context.Context, listingID uuid.UUID) ([]models.RewardRecord, error) {
	var records []models.RewardRecord
	err := r.db.WithContext(ctx).
		Where("listing_id = ?", listingID).
		Order("milestone_index ASC").
		Find(&records).Error
	return records, err
}
