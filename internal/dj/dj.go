// Package dj holds the interaction core of the bot: the per-user session
// state, the moderation status monitor and the request queue drainer.
package dj

import (
	"context"
	"errors"

	"djbot/internal/domain"
)

var (
	// ErrEmptyRequest is returned for blank submissions
	ErrEmptyRequest = errors.New("request is empty")
	// ErrBlocked is returned while the user is muted or suspended
	ErrBlocked = errors.New("user is muted or suspended")
)

// StatusSource reads the moderation status of a backend user
type StatusSource interface {
	UserStatus(ctx context.Context, userID string) (domain.UserStatus, error)
}

// Backend receives DJ requests
type Backend interface {
	SendRequest(ctx context.Context, req domain.DJRequest) (*domain.DJResponse, error)
	NowPlaying(ctx context.Context) (*domain.Song, error)
}

// Presenter shows session state to the user
type Presenter interface {
	ShowStatus(s *Session, view domain.StatusView) error
	// ShowQueue shows the session's current queue, read via Session.Entries
	ShowQueue(s *Session) error
	// ShowProcessing displays a transient indicator that the returned func removes
	ShowProcessing(s *Session) (func(), error)
	AppendLog(s *Session, entry domain.Interaction) error
}

// Journal persists the interaction log
type Journal interface {
	LogInteraction(entry domain.Interaction) error
}
