package service

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"

	"djbot/internal/domain"
	"djbot/internal/repository"

	"go.uber.org/zap"
)

var ErrWrongPassword = errors.New("wrong password")

// AuthService gates the bot behind the shared password and provisions the
// DJ identity of a user once they are let in
type AuthService struct {
	userRepo    repository.UserRepository
	prefs       *PreferenceService
	botPassword string
	logger      *zap.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo repository.UserRepository, prefs *PreferenceService, botPassword string, logger *zap.Logger) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		prefs:       prefs,
		botPassword: botPassword,
		logger:      logger,
	}
}

// CheckPassword reports whether the trimmed input matches the bot password
func (s *AuthService) CheckPassword(password string) bool {
	password = strings.TrimSpace(password)
	if password == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(password), []byte(s.botPassword)) == 1
}

// IsAuthorized records first contact and reports whether the user got in
func (s *AuthService) IsAuthorized(userID int64) (bool, error) {
	if err := s.userRepo.EnsureUserExists(userID); err != nil {
		return false, fmt.Errorf("failed to ensure user: %w", err)
	}
	authorized, err := s.userRepo.IsAuthorized(userID)
	if err != nil {
		return false, fmt.Errorf("failed to check authorization: %w", err)
	}
	return authorized, nil
}

// Login authorizes the user when password matches and returns the user with
// a DJ user id assigned. A mismatch returns ErrWrongPassword.
func (s *AuthService) Login(userID int64, password string) (*domain.User, error) {
	if !s.CheckPassword(password) {
		s.logger.Info("Wrong password", zap.Int64("user_id", userID))
		return nil, ErrWrongPassword
	}

	if err := s.userRepo.AuthorizeUser(userID); err != nil {
		return nil, fmt.Errorf("failed to authorize user: %w", err)
	}

	user, err := s.prefs.LoadUser(userID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("User authorized",
		zap.Int64("user_id", userID),
		zap.String("dj_user_id", user.DJUserID),
	)
	return user, nil
}
