package testutil

import (
	"time"

	"djbot/internal/domain"

	"go.uber.org/zap"
)

// NewTestLogger creates a no-op logger for tests
func NewTestLogger() *zap.Logger {
	return zap.NewNop()
}

// NewTestUser creates a test user
func NewTestUser(userID int64, djUserID string, authorized bool) *domain.User {
	return &domain.User{
		UserID:     userID,
		DJUserID:   djUserID,
		Authorized: authorized,
		Tone:       domain.DefaultTone,
		VoiceSpeed: domain.DefaultVoiceSpeed,
		CreatedAt:  time.Now(),
	}
}

// NewTestInteraction creates a test log entry
func NewTestInteraction(userID int64, sender domain.Sender, text string, createdAt time.Time) domain.Interaction {
	return domain.Interaction{
		UserID:    userID,
		Sender:    sender,
		Kind:      domain.KindNormal,
		Text:      text,
		CreatedAt: createdAt,
	}
}

// TimePtr returns a pointer to t
func TimePtr(t time.Time) *time.Time {
	return &t
}

// IntPtr returns a pointer to n
func IntPtr(n int) *int {
	return &n
}
