package dj

import (
	"sort"
	"sync"
	"time"

	"djbot/internal/domain"
)

// Session is the owned interaction state of one user: moderation snapshot,
// pending request queue and the in-flight marker.
type Session struct {
	mu sync.Mutex

	userID   int64
	chatID   int64
	djUserID string

	status    domain.UserStatus
	queue     []QueuedRequest
	seq       int64
	pending   bool
	presented *domain.StatusView

	prefs   domain.Preferences
	profile *domain.DJProfile
}

// QueuedRequest is a pending request. ID is unique within the session and
// never reused, so it still names the same request after the queue shifts.
type QueuedRequest struct {
	ID   int64
	Text string
}

// NewSession creates a session for an active user with an empty queue
func NewSession(userID, chatID int64, djUserID string, prefs domain.Preferences) *Session {
	return &Session{
		userID:   userID,
		chatID:   chatID,
		djUserID: djUserID,
		status:   domain.ActiveStatus(),
		prefs:    prefs,
	}
}

func (s *Session) UserID() int64    { return s.userID }
func (s *Session) ChatID() int64    { return s.chatID }
func (s *Session) DJUserID() string { return s.djUserID }

// Status returns the current moderation snapshot
func (s *Session) Status() domain.UserStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Queue returns the texts of the pending requests in submission order
func (s *Session) Queue() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, len(s.queue))
	for i, q := range s.queue {
		out[i] = q.Text
	}
	return out
}

// Entries returns a copy of the pending requests with their ids
func (s *Session) Entries() []QueuedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]QueuedRequest(nil), s.queue...)
}

// Pending reports whether a request is in flight
func (s *Session) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// Preferences returns the tone and voice speed sent with each request
func (s *Session) Preferences() domain.Preferences {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prefs
}

// SetPreferences replaces the request preferences
func (s *Session) SetPreferences(p domain.Preferences) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prefs = p
}

// Profile returns the active DJ profile, nil if none
func (s *Session) Profile() *domain.DJProfile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile
}

// SetProfile replaces the active DJ profile
func (s *Session) SetProfile(p *domain.DJProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile = p
}

func (s *Session) setStatus(st domain.UserStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = st
}

// replaceStatus swaps in a snapshot derived from the current one
func (s *Session) replaceStatus(fn func(domain.UserStatus) domain.UserStatus) domain.UserStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = fn(s.status)
	return s.status
}

// enqueue appends text unless the user is blocked at now
func (s *Session) enqueue(text string, now time.Time) (QueuedRequest, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status.BlockedAt(now) {
		return QueuedRequest{}, false
	}
	s.seq++
	q := QueuedRequest{ID: s.seq, Text: text}
	s.queue = append(s.queue, q)
	return q, true
}

func (s *Session) removeAt(index int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.queue) {
		return false
	}
	s.queue = append(s.queue[:index], s.queue[index+1:]...)
	return true
}

func (s *Session) removeByID(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, q := range s.queue {
		if q.ID == id {
			s.queue = append(s.queue[:i], s.queue[i+1:]...)
			return true
		}
	}
	return false
}

type beginResult int

const (
	beginIdle beginResult = iota
	beginBlocked
	beginStarted
)

// begin pops the head of the queue and marks it in flight
func (s *Session) begin(now time.Time) (string, beginResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending || len(s.queue) == 0 {
		return "", beginIdle
	}
	if s.status.BlockedAt(now) {
		return "", beginBlocked
	}

	s.pending = true
	head := s.queue[0]
	s.queue = append([]QueuedRequest(nil), s.queue[1:]...)
	return head.Text, beginStarted
}

func (s *Session) finish() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = false
}

// swapPresented records v as shown and reports whether its affordance changed
func (s *Session) swapPresented(v domain.StatusView) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := s.presented == nil || !s.presented.SameAffordance(v)
	s.presented = &v
	return changed
}

// Registry holds the sessions of all users seen since startup
type Registry struct {
	mu       sync.RWMutex
	sessions map[int64]*Session
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[int64]*Session)}
}

// Get returns the session of a user
func (r *Registry) Get(userID int64) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[userID]
	return s, ok
}

// GetOrCreate returns the existing session or stores the one built by create
func (r *Registry) GetOrCreate(userID int64, create func() (*Session, error)) (*Session, error) {
	if s, ok := r.Get(userID); ok {
		return s, nil
	}

	s, err := create()
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.sessions[userID]; ok {
		return existing, nil
	}
	r.sessions[userID] = s
	return s, nil
}

// Remove forgets a session
func (r *Registry) Remove(userID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, userID)
}

// Len returns the number of sessions
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Snapshot returns all sessions ordered by user id
func (r *Registry) Snapshot() []*Session {
	r.mu.RLock()
	out := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].userID < out[j].userID })
	return out
}
