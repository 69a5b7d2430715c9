package service

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"djbot/internal/domain"
	"djbot/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrInvalidTone  = errors.New("invalid tone")
	ErrInvalidSpeed = errors.New("voice speed must be between 0.5 and 2.0")
)

// Tones lists the personalities the DJ backend understands
var Tones = []string{"default", "friendly", "professional", "enthusiastic", "humorous"}

const (
	MinVoiceSpeed = 0.5
	MaxVoiceSpeed = 2.0
)

// PreferenceService manages per-user DJ identity and request preferences
type PreferenceService struct {
	userRepo repository.UserRepository
	logger   *zap.Logger
}

// NewPreferenceService creates a new preference service
func NewPreferenceService(userRepo repository.UserRepository, logger *zap.Logger) *PreferenceService {
	return &PreferenceService{
		userRepo: userRepo,
		logger:   logger,
	}
}

// NewDJUserID generates an identifier in the backend's user_<13 chars> format
func NewDJUserID() string {
	return "user_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:13]
}

// LoadUser returns the user, assigning a DJ user id on first use
func (s *PreferenceService) LoadUser(userID int64) (*domain.User, error) {
	if err := s.userRepo.EnsureUserExists(userID); err != nil {
		return nil, fmt.Errorf("failed to ensure user: %w", err)
	}

	user, err := s.userRepo.GetUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("user %d not found", userID)
	}
	if user.DJUserID != "" {
		return user, nil
	}

	djUserID := NewDJUserID()
	if err := s.userRepo.SetDJUserID(userID, djUserID); err != nil {
		return nil, fmt.Errorf("failed to assign dj user id: %w", err)
	}

	// Another update may have won; re-read the stored id
	user, err = s.userRepo.GetUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil || user.DJUserID == "" {
		return nil, fmt.Errorf("dj user id for %d was not stored", userID)
	}

	s.logger.Info("Assigned DJ user id", zap.Int64("user_id", userID), zap.String("dj_user_id", user.DJUserID))
	return user, nil
}

// SetTone validates and stores the tone, returning the normalized value
func (s *PreferenceService) SetTone(userID int64, tone string) (string, error) {
	tone = strings.ToLower(strings.TrimSpace(tone))
	if !validTone(tone) {
		return "", ErrInvalidTone
	}
	if err := s.userRepo.SetTone(userID, tone); err != nil {
		return "", fmt.Errorf("failed to save tone: %w", err)
	}
	return tone, nil
}

// SetVoiceSpeed validates and stores the voice speed
func (s *PreferenceService) SetVoiceSpeed(userID int64, speed float64) error {
	if math.IsNaN(speed) || speed < MinVoiceSpeed || speed > MaxVoiceSpeed {
		return ErrInvalidSpeed
	}
	if err := s.userRepo.SetVoiceSpeed(userID, speed); err != nil {
		return fmt.Errorf("failed to save voice speed: %w", err)
	}
	return nil
}

func validTone(tone string) bool {
	for _, t := range Tones {
		if t == tone {
			return true
		}
	}
	return false
}
