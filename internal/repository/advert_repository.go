package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"foodshare/internal/model"
)

// AdvertRepository defines advert persistence operations.
type AdvertRepository interface {
	Create(ctx context.Context, advert *model.Advert) error
	FindByID(ctx context.Context, id uint) (*model.Advert, error)
	ListAvailable(ctx context.Context) ([]model.Advert, error)
	ListUnavailable(ctx context.Context) ([]model.Advert, error)
	ListByOwner(ctx context.Context, ownerID uint) ([]model.Advert, error)
	SweepExpired(ctx context.Context, now time.Time) (int64, error)
	MarkUnavailable(ctx context.Context, id uint) (int64, error)
	// Transaction methods
	WithTransaction(ctx context.Context, fn func(ctx context.Context, tx interface{}) error) error
	FindByIDForUpdateTx(ctx context.Context, tx interface{}, id uint) (*model.Advert, error)
	MarkUnavailableTx(ctx context.Context, tx interface{}, id uint) (int64, error)
}

type advertRepository struct {
	db *gorm.DB
}

// NewAdvertRepository creates a new advert repository.
func NewAdvertRepository(db *gorm.DB) AdvertRepository {
	return &advertRepository{db: db}
}

// Create creates a new advert.
func (r *advertRepository) Create(ctx context.Context, advert *model.Advert) error {
	return r.db.WithContext(ctx).Create(advert).Error
}

// FindByID finds an advert by ID.
func (r *advertRepository) FindByID(ctx context.Context, id uint) (*model.Advert, error) {
	var advert model.Advert
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&advert).Error; err != nil {
		return nil, err
	}
	return &advert, nil
}

// ListAvailable lists all adverts still flagged available. Callers must run
// SweepExpired first or stale expired rows leak through.
func (r *advertRepository) ListAvailable(ctx context.Context) ([]model.Advert, error) {
	var adverts []model.Advert
	if err := r.db.WithContext(ctx).Where("available = ?", true).
		Order("expiry ASC").Find(&adverts).Error; err != nil {
		return nil, err
	}
	return adverts, nil
}

// ListUnavailable lists all adverts no longer available (collected, expired
// or deleted).
func (r *advertRepository) ListUnavailable(ctx context.Context) ([]model.Advert, error) {
	var adverts []model.Advert
	if err := r.db.WithContext(ctx).Where("available = ?", false).Find(&adverts).Error; err != nil {
		return nil, err
	}
	return adverts, nil
}

// ListByOwner lists all adverts posted by a user.
func (r *advertRepository) ListByOwner(ctx context.Context, ownerID uint) ([]model.Advert, error) {
	var adverts []model.Advert
	if err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).
		Order("created_at DESC").Find(&adverts).Error; err != nil {
		return nil, err
	}
	return adverts, nil
}

// SweepExpired flips every available advert whose expiry has passed to
// unavailable in one bulk update. Idempotent: a second call matches no rows.
func (r *advertRepository) SweepExpired(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.Advert{}).
		Where("available = ? AND expiry < ?", true, now).
		Update("available", false)
	return res.RowsAffected, res.Error
}

// MarkUnavailable conditionally flips an advert to unavailable. The affected
// row count tells the caller whether this call won the flag: zero means the
// advert was already unavailable.
func (r *advertRepository) MarkUnavailable(ctx context.Context, id uint) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.Advert{}).
		Where("id = ? AND available = ?", id, true).
		Update("available", false)
	return res.RowsAffected, res.Error
}

// WithTransaction executes a function within a database transaction.
func (r *advertRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context, tx interface{}) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, tx)
	})
}

// FindByIDForUpdateTx finds an advert by ID with a row-level lock within a
// transaction.
func (r *advertRepository) FindByIDForUpdateTx(ctx context.Context, tx interface{}, id uint) (*model.Advert, error) {
	txDB := tx.(*gorm.DB)
	var advert model.Advert
	if err := txDB.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).First(&advert).Error; err != nil {
		return nil, err
	}
	return &advert, nil
}

// MarkUnavailableTx is MarkUnavailable within a transaction.
func (r *advertRepository) MarkUnavailableTx(ctx context.Context, tx interface{}, id uint) (int64, error) {
	txDB := tx.(*gorm.DB)
	res := txDB.WithContext(ctx).Model(&model.Advert{}).
		Where("id = ? AND available = ?", id, true).
		Update("available", false)
	return res.RowsAffected, res.Error
}
