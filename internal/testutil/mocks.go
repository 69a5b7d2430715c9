package testutil

import (
	"context"

	"djbot/internal/domain"

	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a mock for UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) IsAuthorized(userID int64) (bool, error) {
	args := m.Called(userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) AuthorizeUser(userID int64) error {
	args := m.Called(userID)
	return args.Error(0)
}

func (m *MockUserRepository) EnsureUserExists(userID int64) error {
	args := m.Called(userID)
	return args.Error(0)
}

func (m *MockUserRepository) GetUser(userID int64) (*domain.User, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) SetDJUserID(userID int64, djUserID string) error {
	args := m.Called(userID, djUserID)
	return args.Error(0)
}

func (m *MockUserRepository) SetTone(userID int64, tone string) error {
	args := m.Called(userID, tone)
	return args.Error(0)
}

func (m *MockUserRepository) SetVoiceSpeed(userID int64, speed float64) error {
	args := m.Called(userID, speed)
	return args.Error(0)
}

// MockInteractionRepository is a mock for InteractionRepository
type MockInteractionRepository struct {
	mock.Mock
}

func (m *MockInteractionRepository) LogInteraction(entry domain.Interaction) error {
	args := m.Called(entry)
	return args.Error(0)
}

func (m *MockInteractionRepository) RecentInteractions(userID int64, limit int) ([]domain.Interaction, error) {
	args := m.Called(userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Interaction), args.Error(1)
}

func (m *MockInteractionRepository) CleanOldInteractions(days int) error {
	args := m.Called(days)
	return args.Error(0)
}

// MockBackend is a mock for the DJ backend API
type MockBackend struct {
	mock.Mock
}

func (m *MockBackend) UserStatus(ctx context.Context, userID string) (domain.UserStatus, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(domain.UserStatus), args.Error(1)
}

func (m *MockBackend) SendRequest(ctx context.Context, req domain.DJRequest) (*domain.DJResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DJResponse), args.Error(1)
}

func (m *MockBackend) NowPlaying(ctx context.Context) (*domain.Song, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Song), args.Error(1)
}

func (m *MockBackend) ActiveProfile(ctx context.Context, userID string) (*domain.DJProfile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DJProfile), args.Error(1)
}
