package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	apperrors "foodshare/internal/errors"
	"foodshare/internal/model"
	"foodshare/internal/queue"
)

func newUserService(users *MockUserRepository, adverts *MockAdvertRepository, collections *MockCollectionRepository) UserService {
	return NewUserService(users, adverts, collections, nil, queue.NewPublisher(""))
}

func TestUserService_UpdateDetails(t *testing.T) {
	dob := time.Date(1992, 7, 4, 0, 0, 0, 0, time.UTC)

	baseInput := UpdateDetailsInput{
		Email:     "grace@example.com",
		FirstName: "Grace",
		Surname:   "Hollis",
		DOB:       dob,
		Address:   "14 Quayside",
		Phone:     "07700900002",
		Role:      model.RoleUser,
	}

	tests := []struct {
		name          string
		input         UpdateDetailsInput
		setupMock     func(*MockUserRepository)
		expectedError error
	}{
		{
			name:  "successful update",
			input: baseInput,
			setupMock: func(m *MockUserRepository) {
				m.On("FindByID", mock.Anything, uint(1)).Return(&model.User{
					ID: 1, Email: "grace@example.com", Role: model.RoleUser,
				}, nil)
				m.On("Update", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
			},
			expectedError: nil,
		},
		{
			name: "self escalation to admin refused",
			input: func() UpdateDetailsInput {
				in := baseInput
				in.Role = model.RoleAdmin
				return in
			}(),
			setupMock: func(m *MockUserRepository) {
				m.On("FindByID", mock.Anything, uint(1)).Return(&model.User{
					ID: 1, Email: "grace@example.com", Role: model.RoleUser,
				}, nil)
			},
			expectedError: apperrors.ErrRoleEscalation,
		},
		{
			name: "email collision with another account",
			input: func() UpdateDetailsInput {
				in := baseInput
				in.Email = "taken@example.com"
				return in
			}(),
			setupMock: func(m *MockUserRepository) {
				m.On("FindByID", mock.Anything, uint(1)).Return(&model.User{
					ID: 1, Email: "grace@example.com", Role: model.RoleUser,
				}, nil)
				m.On("FindByEmail", mock.Anything, "taken@example.com").Return(&model.User{
					ID: 2, Email: "taken@example.com",
				}, nil)
			},
			expectedError: apperrors.ErrDuplicateEmail,
		},
		{
			name: "email change to a free address",
			input: func() UpdateDetailsInput {
				in := baseInput
				in.Email = "fresh@example.com"
				return in
			}(),
			setupMock: func(m *MockUserRepository) {
				m.On("FindByID", mock.Anything, uint(1)).Return(&model.User{
					ID: 1, Email: "grace@example.com", Role: model.RoleUser,
				}, nil)
				m.On("FindByEmail", mock.Anything, "fresh@example.com").Return(nil, gorm.ErrRecordNotFound)
				m.On("Update", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
			},
			expectedError: nil,
		},
		{
			name:  "unknown target",
			input: baseInput,
			setupMock: func(m *MockUserRepository) {
				m.On("FindByID", mock.Anything, uint(1)).Return(nil, gorm.ErrRecordNotFound)
			},
			expectedError: apperrors.ErrUserNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockUsers := new(MockUserRepository)
			tt.setupMock(mockUsers)

			service := newUserService(mockUsers, new(MockAdvertRepository), new(MockCollectionRepository))
			user, err := service.UpdateDetails(context.Background(), 1, tt.input)

			if tt.expectedError != nil {
				assert.Equal(t, tt.expectedError, err)
				assert.Nil(t, user)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, user)
				assert.Equal(t, tt.input.Email, user.Email)
			}
			mockUsers.AssertExpectations(t)
		})
	}
}

func TestUserService_Deactivate(t *testing.T) {
	tests := []struct {
		name          string
		setupMock     func(*MockUserRepository)
		expectedError error
	}{
		{
			name: "successful deactivation",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByID", mock.Anything, uint(1)).Return(&model.User{ID: 1, Role: model.RoleUser}, nil)
				m.On("UpdateRole", mock.Anything, uint(1), model.RoleOff).Return(nil)
			},
			expectedError: nil,
		},
		{
			name: "already deactivated is terminal",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByID", mock.Anything, uint(1)).Return(&model.User{ID: 1, Role: model.RoleOff}, nil)
			},
			expectedError: apperrors.ErrAlreadyDeactivated,
		},
		{
			name: "unknown target",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByID", mock.Anything, uint(1)).Return(nil, gorm.ErrRecordNotFound)
			},
			expectedError: apperrors.ErrUserNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockUsers := new(MockUserRepository)
			tt.setupMock(mockUsers)

			service := newUserService(mockUsers, new(MockAdvertRepository), new(MockCollectionRepository))
			err := service.Deactivate(context.Background(), 1)

			if tt.expectedError != nil {
				assert.Equal(t, tt.expectedError, err)
			} else {
				assert.NoError(t, err)
			}
			mockUsers.AssertExpectations(t)
		})
	}
}

func TestUserService_CreateAdmin(t *testing.T) {
	mockUsers := new(MockUserRepository)
	mockUsers.On("FindByEmail", mock.Anything, "ops@example.com").Return(nil, gorm.ErrRecordNotFound)
	mockUsers.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)

	service := newUserService(mockUsers, new(MockAdvertRepository), new(MockCollectionRepository))
	admin, err := service.CreateAdmin(context.Background(), SignupInput{
		Email:    "ops@example.com",
		Password: "password123",
	})

	assert.NoError(t, err)
	assert.NotNil(t, admin)
	assert.Equal(t, model.RoleAdmin, admin.Role)
	assert.NotEmpty(t, admin.PasswordHash)
	mockUsers.AssertExpectations(t)
}

func TestUserService_Dashboard(t *testing.T) {
	mockUsers := new(MockUserRepository)
	mockAdverts := new(MockAdvertRepository)
	mockCollections := new(MockCollectionRepository)

	var sweepDone bool
	mockAdverts.On("SweepExpired", mock.Anything, mock.AnythingOfType("time.Time")).
		Run(func(args mock.Arguments) { sweepDone = true }).
		Return(int64(1), nil)
	mockAdverts.On("ListAvailable", mock.Anything).
		Run(func(args mock.Arguments) {
			assert.True(t, sweepDone, "dashboard must not read the available flag before the sweep")
		}).
		Return([]model.Advert{{ID: 1}}, nil)
	mockAdverts.On("ListUnavailable", mock.Anything).
		Run(func(args mock.Arguments) {
			assert.True(t, sweepDone, "the collected versus deleted split also depends on the sweep")
		}).
		Return([]model.Advert{{ID: 2}, {ID: 3}, {ID: 4}}, nil)
	mockCollections.On("CollectedAdvertIDs", mock.Anything).Return([]uint{3}, nil)
	mockUsers.On("ListByRole", mock.Anything, model.RoleUser).Return([]model.User{{ID: 10}}, nil)
	mockUsers.On("ListByRole", mock.Anything, model.RoleAdmin).Return([]model.User{{ID: 11}}, nil)

	service := newUserService(mockUsers, mockAdverts, mockCollections)
	dashboard, err := service.Dashboard(context.Background())

	assert.NoError(t, err)
	assert.Len(t, dashboard.CurrentAdverts, 1)

	// Unavailable adverts split on whether an order exists for them.
	assert.Len(t, dashboard.CollectedAdverts, 1)
	assert.Equal(t, uint(3), dashboard.CollectedAdverts[0].ID)
	assert.Len(t, dashboard.DeletedAdverts, 2)

	assert.Len(t, dashboard.CurrentUsers, 1)
	assert.Len(t, dashboard.CurrentAdmins, 1)
	mockAdverts.AssertExpectations(t)
}

func TestUserService_Overview(t *testing.T) {
	mockUsers := new(MockUserRepository)
	mockAdverts := new(MockAdvertRepository)
	mockCollections := new(MockCollectionRepository)

	mockUsers.On("FindByID", mock.Anything, uint(1)).Return(&model.User{ID: 1, FirstName: "Grace"}, nil)
	mockAdverts.On("ListByOwner", mock.Anything, uint(1)).Return([]model.Advert{{ID: 5, OwnerID: 1}}, nil)
	mockCollections.On("ListByBuyer", mock.Anything, uint(1)).Return([]model.Collection{{ID: 9, BuyerID: 1}}, nil)

	service := newUserService(mockUsers, mockAdverts, mockCollections)
	overview, err := service.Overview(context.Background(), 1)

	assert.NoError(t, err)
	assert.Equal(t, uint(1), overview.User.ID)
	assert.Len(t, overview.Adverts, 1)
	assert.Len(t, overview.Orders, 1)
}
