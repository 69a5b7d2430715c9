package dj

import (
	"context"
	"sync"
	"time"

	"djbot/internal/domain"
	"djbot/internal/scheduler"

	"go.uber.org/zap"
)

// Monitor keeps each session's moderation snapshot in sync with the backend
type Monitor struct {
	registry         *Registry
	source           StatusSource
	presenter        Presenter
	clock            scheduler.Clock
	warningThreshold int
	logger           *zap.Logger
}

// NewMonitor creates a status monitor
func NewMonitor(
	registry *Registry,
	source StatusSource,
	presenter Presenter,
	clock scheduler.Clock,
	warningThreshold int,
	logger *zap.Logger,
) *Monitor {
	if registry == nil || source == nil || presenter == nil || clock == nil || logger == nil {
		panic("dj: NewMonitor called with nil dependency")
	}
	return &Monitor{
		registry:         registry,
		source:           source,
		presenter:        presenter,
		clock:            clock,
		warningThreshold: warningThreshold,
		logger:           logger,
	}
}

// RefreshStatus replaces the session snapshot with the backend's view.
// On failure the previous snapshot is kept.
func (m *Monitor) RefreshStatus(ctx context.Context, s *Session) error {
	status, err := m.source.UserStatus(ctx, s.DJUserID())
	if err != nil {
		m.logger.Warn("Failed to refresh user status",
			zap.Error(err),
			zap.Int64("user_id", s.UserID()),
			zap.String("dj_user_id", s.DJUserID()),
		)
		return err
	}

	s.setStatus(status)
	return nil
}

// View derives what the session should show right now
func (m *Monitor) View(s *Session) domain.StatusView {
	return domain.DeriveView(s.Status(), m.clock.Now(), m.warningThreshold)
}

// Render presents the current status view unconditionally
func (m *Monitor) Render(s *Session) domain.StatusView {
	view := m.View(s)
	s.swapPresented(view)
	m.present(s, view)
	return view
}

// renderChanged presents the view only if its affordance differs from the last one shown
func (m *Monitor) renderChanged(s *Session) {
	view := m.View(s)
	if s.swapPresented(view) {
		m.present(s, view)
	}
}

func (m *Monitor) present(s *Session, view domain.StatusView) {
	if err := m.presenter.ShowStatus(s, view); err != nil {
		m.logger.Warn("Failed to show status",
			zap.Error(err),
			zap.Int64("user_id", s.UserID()),
			zap.String("view", string(view.Kind)),
		)
	}
}

// Tick polls every session once
func (m *Monitor) Tick(ctx context.Context) {
	var wg sync.WaitGroup
	for _, s := range m.registry.Snapshot() {
		wg.Add(1)
		go func(s *Session) {
			defer wg.Done()
			_ = m.RefreshStatus(ctx, s)
			m.renderChanged(s)
		}(s)
	}
	wg.Wait()
}

// Run polls at a fixed rate until ctx is cancelled
func (m *Monitor) Run(ctx context.Context, interval time.Duration) {
	m.logger.Info("Status monitor started", zap.Duration("interval", interval))
	scheduler.Every(ctx, m.clock, interval, m.Tick)
	m.logger.Info("Status monitor stopped")
}
