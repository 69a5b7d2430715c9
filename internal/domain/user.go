package domain

import "time"

// User represents a bot user
type User struct {
	UserID     int64
	DJUserID   string
	Authorized bool
	Tone       string
	VoiceSpeed float64
	CreatedAt  time.Time
}

// Preferences returns the request context preferences of the user
func (u User) Preferences() Preferences {
	p := Preferences{Tone: u.Tone, VoiceSpeed: u.VoiceSpeed}
	if p.Tone == "" {
		p.Tone = DefaultTone
	}
	if p.VoiceSpeed <= 0 {
		p.VoiceSpeed = DefaultVoiceSpeed
	}
	return p
}

const (
	DefaultTone       = "default"
	DefaultVoiceSpeed = 1.0
)

// Preferences shape every request a user sends to the DJ
type Preferences struct {
	Tone       string
	VoiceSpeed float64
}

// Sender identifies who authored an interaction
type Sender string

const (
	SenderUser Sender = "user"
	SenderDJ   Sender = "dj"
)

// MessageKind styles an interaction log entry
type MessageKind string

const (
	KindNormal  MessageKind = "normal"
	KindWarning MessageKind = "warning"
	KindError   MessageKind = "error"
)

// Interaction is one entry of the chat log
type Interaction struct {
	ID        int
	UserID    int64
	Sender    Sender
	Kind      MessageKind
	Text      string
	AudioPath string
	CreatedAt time.Time
}
