package testutil

import (
	"sync"

	"djbot/internal/dj"
	"djbot/internal/domain"
)

// PresenterEvent is one call recorded by RecordingPresenter
type PresenterEvent struct {
	Kind   string
	UserID int64
	View   domain.StatusView
	Queue  []string
	Entry  domain.Interaction
}

// RecordingPresenter is a dj.Presenter that remembers what it was asked to show
type RecordingPresenter struct {
	mu         sync.Mutex
	events     []PresenterEvent
	processing map[int64]int
	Err        error
}

// NewRecordingPresenter creates an empty recorder
func NewRecordingPresenter() *RecordingPresenter {
	return &RecordingPresenter{processing: make(map[int64]int)}
}

func (p *RecordingPresenter) ShowStatus(s *dj.Session, view domain.StatusView) error {
	p.add(PresenterEvent{Kind: "status", UserID: s.UserID(), View: view})
	return p.Err
}

func (p *RecordingPresenter) ShowQueue(s *dj.Session) error {
	p.add(PresenterEvent{Kind: "queue", UserID: s.UserID(), Queue: s.Queue()})
	return p.Err
}

func (p *RecordingPresenter) ShowProcessing(s *dj.Session) (func(), error) {
	p.add(PresenterEvent{Kind: "processing", UserID: s.UserID()})

	p.mu.Lock()
	p.processing[s.UserID()]++
	p.mu.Unlock()

	return func() {
		p.add(PresenterEvent{Kind: "processing_cleared", UserID: s.UserID()})
		p.mu.Lock()
		p.processing[s.UserID()]--
		p.mu.Unlock()
	}, p.Err
}

func (p *RecordingPresenter) AppendLog(s *dj.Session, entry domain.Interaction) error {
	p.add(PresenterEvent{Kind: "log", UserID: s.UserID(), Entry: entry})
	return p.Err
}

// Events returns all recorded events of the given kind, or all when kind is empty
func (p *RecordingPresenter) Events(kind string) []PresenterEvent {
	p.mu.Lock()
	defer p.mu.Unlock()

	var out []PresenterEvent
	for _, e := range p.events {
		if kind == "" || e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

// Log returns the interaction log entries in order
func (p *RecordingPresenter) Log() []domain.Interaction {
	var out []domain.Interaction
	for _, e := range p.Events("log") {
		out = append(out, e.Entry)
	}
	return out
}

// LastStatus returns the last status view shown, false if none
func (p *RecordingPresenter) LastStatus() (domain.StatusView, bool) {
	events := p.Events("status")
	if len(events) == 0 {
		return domain.StatusView{}, false
	}
	return events[len(events)-1].View, true
}

// LastQueue returns the last queue shown
func (p *RecordingPresenter) LastQueue() []string {
	events := p.Events("queue")
	if len(events) == 0 {
		return nil
	}
	return events[len(events)-1].Queue
}

// Processing returns how many indicators are still visible for a user
func (p *RecordingPresenter) Processing(userID int64) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.processing[userID]
}

// Reset forgets recorded events
func (p *RecordingPresenter) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = nil
}

func (p *RecordingPresenter) add(e PresenterEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}
