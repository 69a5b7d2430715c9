package repository

import (
	"djbot/internal/domain"
)

// UserRepository defines user data operations
type UserRepository interface {
	IsAuthorized(userID int64) (bool, error)
	AuthorizeUser(userID int64) error
	EnsureUserExists(userID int64) error
	GetUser(userID int64) (*domain.User, error)
	SetDJUserID(userID int64, djUserID string) error
	SetTone(userID int64, tone string) error
	SetVoiceSpeed(userID int64, speed float64) error
}

// InteractionRepository defines chat log operations
type InteractionRepository interface {
	LogInteraction(entry domain.Interaction) error
	RecentInteractions(userID int64, limit int) ([]domain.Interaction, error)
	CleanOldInteractions(days int) error
}
