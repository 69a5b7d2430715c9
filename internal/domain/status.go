package domain

import (
	"fmt"
	"time"
)

// ModerationState is the server-assigned behavioral state of a user
type ModerationState string

const (
	StateActive    ModerationState = "active"
	StateMuted     ModerationState = "muted"
	StateSuspended ModerationState = "suspended"
)

// ParseModerationState maps the backend status string, unknown values count as active
func ParseModerationState(s string) ModerationState {
	switch ModerationState(s) {
	case StateMuted:
		return StateMuted
	case StateSuspended:
		return StateSuspended
	default:
		return StateActive
	}
}

// UserStatus is the last known moderation snapshot for a user.
// It is replaced as a whole, never patched field by field.
type UserStatus struct {
	State          ModerationState
	Warnings       int
	MutedUntil     *time.Time
	SuspendedUntil *time.Time
}

// ActiveStatus returns the snapshot used before the first poll
func ActiveStatus() UserStatus {
	return UserStatus{State: StateActive}
}

// WithWarnings returns a copy carrying a new warning count
func (s UserStatus) WithWarnings(n int) UserStatus {
	if n < 0 {
		n = 0
	}
	s.Warnings = n
	return s
}

// SuspendedAt reports whether a suspension is in force at now.
// A missing expiry keeps the server state; a past expiry means active.
// Comparisons use the wall-clock second, so a view is stable within it.
func (s UserStatus) SuspendedAt(now time.Time) bool {
	if s.State != StateSuspended {
		return false
	}
	return s.SuspendedUntil == nil || s.SuspendedUntil.After(now.Truncate(time.Second))
}

// MutedAt reports whether a mute is in force at now
func (s UserStatus) MutedAt(now time.Time) bool {
	if s.State != StateMuted {
		return false
	}
	return s.MutedUntil == nil || s.MutedUntil.After(now.Truncate(time.Second))
}

// BlockedAt reports whether the user may not send requests at now
func (s UserStatus) BlockedAt(now time.Time) bool {
	return s.SuspendedAt(now) || s.MutedAt(now)
}

// ViewKind is the banner shown for a status
type ViewKind string

const (
	ViewNone      ViewKind = "none"
	ViewWarning   ViewKind = "warning"
	ViewMuted     ViewKind = "muted"
	ViewSuspended ViewKind = "suspended"
)

// StatusView is what the user sees for a status at a given instant
type StatusView struct {
	Kind         ViewKind
	InputEnabled bool
	Remaining    time.Duration
	Banner       string
}

// SameAffordance reports whether two views gate input the same way
func (v StatusView) SameAffordance(o StatusView) bool {
	return v.Kind == o.Kind && v.InputEnabled == o.InputEnabled
}

// DeriveView computes the status view from a snapshot and the wall clock.
// warningThreshold is only used for the "n/threshold" banner text.
func DeriveView(s UserStatus, now time.Time, warningThreshold int) StatusView {
	now = now.Truncate(time.Second)

	switch {
	case s.SuspendedAt(now):
		v := StatusView{Kind: ViewSuspended}
		if s.SuspendedUntil != nil {
			v.Remaining = wholeSeconds(s.SuspendedUntil.Sub(now))
			v.Banner = fmt.Sprintf("🚫 Your account is suspended. Please try again in %s.", FormatMinutesSeconds(v.Remaining))
		} else {
			v.Banner = "🚫 Your account is suspended."
		}
		return v

	case s.MutedAt(now):
		v := StatusView{Kind: ViewMuted}
		if s.MutedUntil != nil {
			v.Remaining = wholeSeconds(s.MutedUntil.Sub(now))
			v.Banner = fmt.Sprintf("🔇 You've been muted for non-music content. You can try again in %ds.", int64(v.Remaining/time.Second))
		} else {
			v.Banner = "🔇 You've been muted for non-music content."
		}
		return v

	case s.Warnings > 0:
		return StatusView{
			Kind:         ViewWarning,
			InputEnabled: true,
			Banner:       fmt.Sprintf("⚠️ Warning: Please keep requests music-related (%d/%d warnings).", s.Warnings, warningThreshold),
		}
	}

	return StatusView{Kind: ViewNone, InputEnabled: true}
}

// FormatMinutesSeconds renders a duration as "Mm Ss", rounded down
func FormatMinutesSeconds(d time.Duration) string {
	secs := int64(wholeSeconds(d) / time.Second)
	return fmt.Sprintf("%dm %ds", secs/60, secs%60)
}

func wholeSeconds(d time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	return d.Truncate(time.Second)
}
