package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"foodshare/internal/cache"
	apperrors "foodshare/internal/errors"
	"foodshare/internal/metrics"
	"foodshare/internal/model"
	"foodshare/internal/queue"
	"foodshare/internal/repository"
)

const advertCacheTTL = 5 * time.Minute

// CreateAdvertInput carries the validated create-advert form fields.
type CreateAdvertInput struct {
	Title     string
	Contents  string
	Address   string
	Latitude  *decimal.Decimal
	Longitude *decimal.Decimal
	OwnerID   uint
	Expiry    time.Time
}

// AdvertService handles the advert lifecycle: creation, listing behind the
// expiry sweep, the collect transaction, and soft deletion.
type AdvertService interface {
	Create(ctx context.Context, input CreateAdvertInput) (*model.Advert, error)
	Get(ctx context.Context, id uint) (*model.Advert, error)
	ListAvailable(ctx context.Context) ([]model.Advert, error)
	ListByOwner(ctx context.Context, ownerID uint) ([]model.Advert, error)
	ListCollected(ctx context.Context, buyerID uint) ([]model.Collection, error)
	SweepExpired(ctx context.Context) (int64, error)
	Collect(ctx context.Context, advertID, collectorID uint) (*model.Collection, error)
	Delete(ctx context.Context, advertID, requesterID uint, requesterRole model.Role) error
}

type advertService struct {
	advertRepo     repository.AdvertRepository
	collectionRepo repository.CollectionRepository
	cache          *cache.Client
	events         *queue.Publisher
}

// NewAdvertService creates a new advert service.
func NewAdvertService(
	advertRepo repository.AdvertRepository,
	collectionRepo repository.CollectionRepository,
	cache *cache.Client,
	events *queue.Publisher,
) AdvertService {
	return &advertService{
		advertRepo:     advertRepo,
		collectionRepo: collectionRepo,
		cache:          cache,
		events:         events,
	}
}

func (s *advertService) cacheKey(id uint) string {
	return fmt.Sprintf("advert:%d", id)
}

// Create inserts a new advert flagged available.
func (s *advertService) Create(ctx context.Context, input CreateAdvertInput) (*model.Advert, error) {
	advert := &model.Advert{
		Title:     input.Title,
		Contents:  input.Contents,
		Address:   input.Address,
		Latitude:  input.Latitude,
		Longitude: input.Longitude,
		OwnerID:   input.OwnerID,
		Expiry:    input.Expiry,
		Available: true,
	}
	if err := s.advertRepo.Create(ctx, advert); err != nil {
		return nil, fmt.Errorf("create advert: %w", err)
	}
	return advert, nil
}

// Get retrieves an advert by ID with caching.
func (s *advertService) Get(ctx context.Context, id uint) (*model.Advert, error) {
	if data, _ := s.cache.Get(ctx, s.cacheKey(id)); data != nil {
		var cached model.Advert
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	}

	advert, err := s.advertRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrAdvertNotFound
		}
		return nil, err
	}

	if payload, err := json.Marshal(advert); err == nil {
		_ = s.cache.Set(ctx, s.cacheKey(id), payload, advertCacheTTL)
	}

	return advert, nil
}

// ListAvailable returns all currently available adverts. The expiry sweep
// always runs first; reading the available flag without it would leak rows
// whose expiry passed since the last write.
func (s *advertService) ListAvailable(ctx context.Context) ([]model.Advert, error) {
	if _, err := s.SweepExpired(ctx); err != nil {
		return nil, fmt.Errorf("sweep expired: %w", err)
	}
	return s.advertRepo.ListAvailable(ctx)
}

// ListByOwner returns the adverts posted by a user.
func (s *advertService) ListByOwner(ctx context.Context, ownerID uint) ([]model.Advert, error) {
	return s.advertRepo.ListByOwner(ctx, ownerID)
}

// ListCollected returns the orders a user has collected.
func (s *advertService) ListCollected(ctx context.Context, buyerID uint) ([]model.Collection, error) {
	return s.collectionRepo.ListByBuyer(ctx, buyerID)
}

// SweepExpired flips expired-but-flagged-available adverts to unavailable in
// one bulk update.
func (s *advertService) SweepExpired(ctx context.Context) (int64, error) {
	swept, err := s.advertRepo.SweepExpired(ctx, time.Now())
	if err != nil {
		return 0, err
	}
	if swept > 0 {
		metrics.ObserveSweep(swept)
	}
	return swept, nil
}

// Collect reserves an advert for the collector. The availability flip and the
// order insert run in one transaction: the conditional update on the flag is
// the guard that lets at most one concurrent collector through, and any later
// failure rolls the flip back.
func (s *advertService) Collect(ctx context.Context, advertID, collectorID uint) (*model.Collection, error) {
	var (
		collection *model.Collection
		advert     *model.Advert
	)

	err := s.advertRepo.WithTransaction(ctx, func(ctx context.Context, tx interface{}) error {
		var err error
		advert, err = s.advertRepo.FindByIDForUpdateTx(ctx, tx, advertID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrAdvertNotFound
			}
			return err
		}

		if advert.OwnerID == collectorID {
			return apperrors.ErrOwnAdvert
		}
		if !advert.Collectable(time.Now()) {
			return apperrors.ErrAdvertUnavailable
		}

		rows, err := s.advertRepo.MarkUnavailableTx(ctx, tx, advertID)
		if err != nil {
			return err
		}
		if rows == 0 {
			// lost the race to another collector
			return apperrors.ErrAdvertUnavailable
		}

		collection = &model.Collection{
			AdvertID: advertID,
			SellerID: advert.OwnerID,
			BuyerID:  collectorID,
			Date:     time.Now(),
		}
		return s.collectionRepo.CreateTx(ctx, tx, collection)
	})
	if err != nil {
		return nil, err
	}

	// Post-commit side effects. A rolled-back collection must never be
	// announced downstream.
	_ = s.cache.Delete(ctx, s.cacheKey(advertID))
	metrics.ObserveCollection()

	_ = s.events.Publish(ctx, queue.AdvertCollectedQueue, queue.AdvertCollectedEvent{
		AdvertID:    advertID,
		Title:       advert.Title,
		SellerID:    advert.OwnerID,
		BuyerID:     collectorID,
		CollectedAt: collection.Date.UTC().Format(time.RFC3339),
	})

	return collection, nil
}

// Delete soft-deletes an advert. Only the owner or an admin may delete; the
// row stays so historical collections keep their reference.
func (s *advertService) Delete(ctx context.Context, advertID, requesterID uint, requesterRole model.Role) error {
	advert, err := s.advertRepo.FindByID(ctx, advertID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrAdvertNotFound
		}
		return err
	}

	if advert.OwnerID != requesterID && requesterRole != model.RoleAdmin {
		return apperrors.ErrForbidden
	}

	if _, err := s.advertRepo.MarkUnavailable(ctx, advertID); err != nil {
		return err
	}

	_ = s.cache.Delete(ctx, s.cacheKey(advertID))
	return nil
}
