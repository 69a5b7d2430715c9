package domain

import "time"

// RequestState is the lifecycle of a single DJ request
type RequestState string

const (
	RequestQueued    RequestState = "queued"
	RequestInFlight  RequestState = "in_flight"
	RequestDelivered RequestState = "delivered"
	RequestFailed    RequestState = "failed"
)

// Terminal reports whether no further transition exists
func (s RequestState) Terminal() bool {
	return s == RequestDelivered || s == RequestFailed
}

// Song is the currently playing track
type Song struct {
	Title  string `json:"title"`
	Artist string `json:"artist"`
	Album  string `json:"album,omitempty"`
}

// DJProfile pairs a synthesized voice with a personality
type DJProfile struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	VoiceID     string `json:"voice_id"`
	Personality string `json:"personality"`
}

// DJRequest is one request dispatched to the backend
type DJRequest struct {
	Text       string
	UserID     string
	Tone       string
	VoiceSpeed float64
	NowPlaying *Song
	ProfileID  *int
}

// DJResponse is the backend reply to a DJRequest
type DJResponse struct {
	Success        bool
	Response       string
	AudioPath      string
	Error          string
	Warnings       *int
	MutedUntil     *time.Time
	SuspendedUntil *time.Time
}

// Moderated reports whether the reply carries a moderation action
func (r DJResponse) Moderated() bool {
	return !r.Success && (r.Warnings != nil || r.MutedUntil != nil || r.SuspendedUntil != nil)
}

// ModerationSettings are the backend's moderation rules
type ModerationSettings struct {
	WarningThreshold   int `json:"warning_threshold"`
	MuteDuration       int `json:"mute_duration"`
	MuteThreshold      int `json:"mute_threshold"`
	SuspensionDuration int `json:"suspension_duration"`
}
