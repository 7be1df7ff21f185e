package repository

import (
	"context"

	"gorm.io/gorm"

	"foodshare/internal/model"
)

// CollectionRepository defines collection (food order) persistence operations.
type CollectionRepository interface {
	Create(ctx context.Context, collection *model.Collection) error
	CreateTx(ctx context.Context, tx interface{}, collection *model.Collection) error
	FindByAdvertID(ctx context.Context, advertID uint) (*model.Collection, error)
	ListByBuyer(ctx context.Context, buyerID uint) ([]model.Collection, error)
	ListBySeller(ctx context.Context, sellerID uint) ([]model.Collection, error)
	CollectedAdvertIDs(ctx context.Context) ([]uint, error)
}

type collectionRepository struct {
	db *gorm.DB
}

// NewCollectionRepository creates a new collection repository.
func NewCollectionRepository(db *gorm.DB) CollectionRepository {
	return &collectionRepository{db: db}
}

// Create creates a new collection record.
func (r *collectionRepository) Create(ctx context.Context, collection *model.Collection) error {
	return r.db.WithContext(ctx).Create(collection).Error
}

// CreateTx creates a new collection record within a transaction. Used by the
// collect flow so the advert flag flip and the order row commit together.
func (r *collectionRepository) CreateTx(ctx context.Context, tx interface{}, collection *model.Collection) error {
	txDB := tx.(*gorm.DB)
	return txDB.WithContext(ctx).Create(collection).Error
}

// FindByAdvertID finds the collection for an advert, if any.
func (r *collectionRepository) FindByAdvertID(ctx context.Context, advertID uint) (*model.Collection, error) {
	var collection model.Collection
	if err := r.db.WithContext(ctx).Where("advert_id = ?", advertID).First(&collection).Error; err != nil {
		return nil, err
	}
	return &collection, nil
}

// ListByBuyer lists all orders collected by a user.
func (r *collectionRepository) ListByBuyer(ctx context.Context, buyerID uint) ([]model.Collection, error) {
	var collections []model.Collection
	if err := r.db.WithContext(ctx).Where("buyer_id = ?", buyerID).
		Order("date DESC").Find(&collections).Error; err != nil {
		return nil, err
	}
	return collections, nil
}

// ListBySeller lists all orders collected from a user's adverts.
func (r *collectionRepository) ListBySeller(ctx context.Context, sellerID uint) ([]model.Collection, error) {
	var collections []model.Collection
	if err := r.db.WithContext(ctx).Where("seller_id = ?", sellerID).
		Order("date DESC").Find(&collections).Error; err != nil {
		return nil, err
	}
	return collections, nil
}

// CollectedAdvertIDs returns the IDs of every advert that has been collected.
// The admin dashboard uses it to split unavailable adverts into collected and
// deleted.
func (r *collectionRepository) CollectedAdvertIDs(ctx context.Context) ([]uint, error) {
	var ids []uint
	if err := r.db.WithContext(ctx).Model(&model.Collection{}).
		Pluck("advert_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}
