package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"foodshare/internal/cache"
	apperrors "foodshare/internal/errors"
	"foodshare/internal/metrics"
	"foodshare/internal/model"
	"foodshare/internal/queue"
	"foodshare/internal/repository"
)

const userCacheTTL = 5 * time.Minute

// UpdateDetailsInput carries the change-details form. Role is the proposed
// role: self-service changes always pass the target's current role, so only
// privileged flows can carry anything else.
type UpdateDetailsInput struct {
	Email     string
	FirstName string
	Surname   string
	DOB       time.Time
	Address   string
	Phone     string
	Role      model.Role
}

// AccountOverview is the account page: the user, their adverts and the
// orders they collected.
type AccountOverview struct {
	User    model.User         `json:"user"`
	Adverts []model.Advert     `json:"adverts"`
	Orders  []model.Collection `json:"orders"`
}

// AdminDashboard is the admin landing page data. Unavailable adverts are
// split by whether a collection exists for them: collected versus deleted or
// expired.
type AdminDashboard struct {
	CurrentAdverts   []model.Advert `json:"current_adverts"`
	CollectedAdverts []model.Advert `json:"collected_adverts"`
	DeletedAdverts   []model.Advert `json:"deleted_adverts"`
	CurrentUsers     []model.User   `json:"current_users"`
	CurrentAdmins    []model.User   `json:"current_admins"`
}

// UserService handles account management for users and admins.
type UserService interface {
	Get(ctx context.Context, id uint) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	UpdateDetails(ctx context.Context, targetID uint, input UpdateDetailsInput) (*model.User, error)
	Deactivate(ctx context.Context, targetID uint) error
	SetNewsletter(ctx context.Context, userID uint, subscribed bool) (*model.User, error)
	CreateAdmin(ctx context.Context, input SignupInput) (*model.User, error)
	Overview(ctx context.Context, userID uint) (*AccountOverview, error)
	Dashboard(ctx context.Context) (*AdminDashboard, error)
}

type userService struct {
	userRepo       repository.UserRepository
	advertRepo     repository.AdvertRepository
	collectionRepo repository.CollectionRepository
	cache          *cache.Client
	events         *queue.Publisher
}

// NewUserService creates a new user service.
func NewUserService(
	userRepo repository.UserRepository,
	advertRepo repository.AdvertRepository,
	collectionRepo repository.CollectionRepository,
	cache *cache.Client,
	events *queue.Publisher,
) UserService {
	return &userService{
		userRepo:       userRepo,
		advertRepo:     advertRepo,
		collectionRepo: collectionRepo,
		cache:          cache,
		events:         events,
	}
}

func (s *userService) cacheKey(id uint) string {
	return fmt.Sprintf("user:%d", id)
}

// Get retrieves a user by ID with caching.
func (s *userService) Get(ctx context.Context, id uint) (*model.User, error) {
	if data, _ := s.cache.Get(ctx, s.cacheKey(id)); data != nil {
		var cached model.User
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	}

	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, err
	}

	if payload, err := json.Marshal(user); err == nil {
		_ = s.cache.Set(ctx, s.cacheKey(id), payload, userCacheTTL)
	}
	return user, nil
}

// GetByEmail retrieves a user by email.
func (s *userService) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// UpdateDetails applies a detail change to the target account. A proposed
// admin role on a non-admin target is refused outright, and an email change
// that collides with a different identity surfaces the duplicate error.
func (s *userService) UpdateDetails(ctx context.Context, targetID uint, input UpdateDetailsInput) (*model.User, error) {
	target, err := s.userRepo.FindByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, err
	}

	if input.Role == model.RoleAdmin && target.Role != model.RoleAdmin {
		return nil, apperrors.ErrRoleEscalation
	}

	if input.Email != target.Email {
		existing, err := s.userRepo.FindByEmail(ctx, input.Email)
		if err == nil && existing != nil && existing.ID != targetID {
			return nil, apperrors.ErrDuplicateEmail
		}
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("check email collision: %w", err)
		}
	}

	target.Email = input.Email
	target.FirstName = input.FirstName
	target.Surname = input.Surname
	target.DOB = input.DOB
	target.Address = input.Address
	target.Phone = input.Phone
	if input.Role.Valid() {
		target.Role = input.Role
	}

	if err := s.userRepo.Update(ctx, target); err != nil {
		return nil, err
	}

	_ = s.cache.Delete(ctx, s.cacheKey(targetID))
	return target, nil
}

// Deactivate soft-deletes an account by flipping its role to off. The
// transition is terminal; a second deactivation is a state conflict.
func (s *userService) Deactivate(ctx context.Context, targetID uint) error {
	target, err := s.userRepo.FindByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrUserNotFound
		}
		return err
	}

	if target.Role == model.RoleOff {
		return apperrors.ErrAlreadyDeactivated
	}

	if err := s.userRepo.UpdateRole(ctx, targetID, model.RoleOff); err != nil {
		return err
	}

	_ = s.cache.Delete(ctx, s.cacheKey(targetID))
	return nil
}

// SetNewsletter toggles the newsletter flag and publishes the change.
func (s *userService) SetNewsletter(ctx context.Context, userID uint, subscribed bool) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, err
	}

	user.Newsletter = subscribed
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	_ = s.cache.Delete(ctx, s.cacheKey(userID))

	_ = s.events.Publish(ctx, queue.NewsletterQueue, queue.NewsletterEvent{
		UserID:     user.ID,
		Email:      user.Email,
		Subscribed: subscribed,
		ChangedAt:  time.Now().UTC().Format(time.RFC3339),
	})

	return user, nil
}

// CreateAdmin creates an admin-role account. Admin creation is privileged;
// the handler gates this behind the admin role.
func (s *userService) CreateAdmin(ctx context.Context, input SignupInput) (*model.User, error) {
	existing, err := s.userRepo.FindByEmail(ctx, input.Email)
	if err == nil && existing != nil {
		return nil, apperrors.ErrDuplicateEmail
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("check user existence: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	admin := &model.User{
		Email:        input.Email,
		PasswordHash: string(hashedPassword),
		FirstName:    input.FirstName,
		Surname:      input.Surname,
		DOB:          input.DOB,
		Address:      input.Address,
		Phone:        input.Phone,
		Role:         model.RoleAdmin,
	}

	if err := s.userRepo.Create(ctx, admin); err != nil {
		return nil, err
	}
	return admin, nil
}

// Overview assembles the account page for a user: profile, own adverts and
// collected orders.
func (s *userService) Overview(ctx context.Context, userID uint) (*AccountOverview, error) {
	user, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	adverts, err := s.advertRepo.ListByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}

	orders, err := s.collectionRepo.ListByBuyer(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &AccountOverview{User: *user, Adverts: adverts, Orders: orders}, nil
}

// Dashboard assembles the admin landing page. The expiry sweep runs before
// either advert read: the available flag is only trustworthy straight after a
// sweep, and an unswept expired advert would show up as current here while
// landing in neither unavailable bucket.
func (s *userService) Dashboard(ctx context.Context) (*AdminDashboard, error) {
	swept, err := s.advertRepo.SweepExpired(ctx, time.Now())
	if err != nil {
		return nil, fmt.Errorf("sweep expired: %w", err)
	}
	if swept > 0 {
		metrics.ObserveSweep(swept)
	}

	currentAdverts, err := s.advertRepo.ListAvailable(ctx)
	if err != nil {
		return nil, err
	}
	unavailable, err := s.advertRepo.ListUnavailable(ctx)
	if err != nil {
		return nil, err
	}
	collectedIDs, err := s.collectionRepo.CollectedAdvertIDs(ctx)
	if err != nil {
		return nil, err
	}
	users, err := s.userRepo.ListByRole(ctx, model.RoleUser)
	if err != nil {
		return nil, err
	}
	admins, err := s.userRepo.ListByRole(ctx, model.RoleAdmin)
	if err != nil {
		return nil, err
	}

	collected := make(map[uint]bool, len(collectedIDs))
	for _, id := range collectedIDs {
		collected[id] = true
	}

	dashboard := &AdminDashboard{
		CurrentAdverts: currentAdverts,
		CurrentUsers:   users,
		CurrentAdmins:  admins,
	}
	for _, advert := range unavailable {
		if collected[advert.ID] {
			dashboard.CollectedAdverts = append(dashboard.CollectedAdverts, advert)
		} else {
			dashboard.DeletedAdverts = append(dashboard.DeletedAdverts, advert)
		}
	}
	return dashboard, nil
}
