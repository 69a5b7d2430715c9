package dj

import (
	"context"
	"strings"
	"sync"
	"time"

	"djbot/internal/domain"
	"djbot/internal/scheduler"

	"go.uber.org/zap"
)

// GenericFailure is logged when a request could not be processed
const GenericFailure = "Sorry, I encountered an error processing your request. Please try again."

// Drainer serializes each user's requests to the backend, one in flight at a time
type Drainer struct {
	registry  *Registry
	backend   Backend
	presenter Presenter
	journal   Journal
	monitor   *Monitor
	clock     scheduler.Clock
	logger    *zap.Logger

	inflight sync.WaitGroup
}

// NewDrainer creates a queue drainer. journal may be nil.
func NewDrainer(
	registry *Registry,
	backend Backend,
	presenter Presenter,
	journal Journal,
	monitor *Monitor,
	clock scheduler.Clock,
	logger *zap.Logger,
) *Drainer {
	if registry == nil || backend == nil || presenter == nil || monitor == nil || clock == nil || logger == nil {
		panic("dj: NewDrainer called with nil dependency")
	}
	return &Drainer{
		registry:  registry,
		backend:   backend,
		presenter: presenter,
		journal:   journal,
		monitor:   monitor,
		clock:     clock,
		logger:    logger,
	}
}

// Submit appends a request to the session queue
func (d *Drainer) Submit(s *Session, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyRequest
	}

	queued, ok := s.enqueue(text, d.clock.Now())
	if !ok {
		d.monitor.Render(s)
		return ErrBlocked
	}

	d.record(s, domain.Interaction{Sender: domain.SenderUser, Kind: domain.KindNormal, Text: text})
	d.showQueue(s)

	d.logger.Info("Request queued",
		zap.Int64("user_id", s.UserID()),
		zap.Int64("request_id", queued.ID),
	)
	return nil
}

// RemoveAt drops the queued request at index, reporting whether one existed
func (d *Drainer) RemoveAt(s *Session, index int) bool {
	if !s.removeAt(index) {
		return false
	}
	d.showQueue(s)
	return true
}

// RemoveByID drops the queued request with the given id. It reports false
// when the request was already dispatched or removed.
func (d *Drainer) RemoveByID(s *Session, id int64) bool {
	if !s.removeByID(id) {
		return false
	}
	d.showQueue(s)
	return true
}

// Tick runs one drain step for every session
func (d *Drainer) Tick(ctx context.Context) {
	for _, s := range d.registry.Snapshot() {
		d.DrainSession(ctx, s)
	}
}

// DrainSession dispatches the head of the session queue if nothing is in
// flight and the user is not blocked. It reports whether a dispatch started.
func (d *Drainer) DrainSession(ctx context.Context, s *Session) bool {
	text, res := s.begin(d.clock.Now())
	switch res {
	case beginIdle:
		return false
	case beginBlocked:
		d.monitor.renderChanged(s)
		return false
	}

	d.showQueue(s)

	clearIndicator, err := d.presenter.ShowProcessing(s)
	if err != nil {
		d.logger.Warn("Failed to show processing indicator", zap.Error(err), zap.Int64("user_id", s.UserID()))
	}

	// Shutdown cancels ctx; a dispatch already started still runs to completion,
	// bounded by the client timeout.
	d.inflight.Add(1)
	go d.dispatch(context.WithoutCancel(ctx), s, text, clearIndicator)
	return true
}

// Wait blocks until every dispatch started so far has finished
func (d *Drainer) Wait() {
	d.inflight.Wait()
}

// Run drains at a fixed rate until ctx is cancelled, then waits for in-flight requests
func (d *Drainer) Run(ctx context.Context, interval time.Duration) {
	d.logger.Info("Queue drainer started", zap.Duration("interval", interval))
	scheduler.Every(ctx, d.clock, interval, d.Tick)
	d.Wait()
	d.logger.Info("Queue drainer stopped")
}

func (d *Drainer) dispatch(ctx context.Context, s *Session, text string, clearIndicator func()) {
	defer d.inflight.Done()
	defer s.finish()

	req := d.buildRequest(ctx, s, text)
	started := d.clock.Now()
	resp, err := d.backend.SendRequest(ctx, req)

	if clearIndicator != nil {
		clearIndicator()
	}

	if err != nil {
		d.logger.Error("Error processing DJ request",
			zap.Error(err),
			zap.Int64("user_id", s.UserID()),
			zap.String("dj_user_id", s.DJUserID()),
		)
		d.record(s, domain.Interaction{Sender: domain.SenderDJ, Kind: domain.KindError, Text: GenericFailure})
		return
	}

	d.logger.Info("DJ request answered",
		zap.Int64("user_id", s.UserID()),
		zap.Bool("success", resp.Success),
		zap.Duration("took", d.clock.Now().Sub(started)),
	)

	switch {
	case resp.Success:
		d.record(s, domain.Interaction{
			Sender:    domain.SenderDJ,
			Kind:      domain.KindNormal,
			Text:      resp.Response,
			AudioPath: resp.AudioPath,
		})

	case resp.Warnings != nil:
		warnings := *resp.Warnings
		s.replaceStatus(func(st domain.UserStatus) domain.UserStatus { return st.WithWarnings(warnings) })
		d.record(s, domain.Interaction{Sender: domain.SenderDJ, Kind: domain.KindWarning, Text: resp.Response})
		d.monitor.Render(s)

	case resp.MutedUntil != nil || resp.SuspendedUntil != nil:
		updated := s.replaceStatus(func(st domain.UserStatus) domain.UserStatus {
			next := domain.UserStatus{
				State:          domain.StateSuspended,
				Warnings:       st.Warnings,
				MutedUntil:     resp.MutedUntil,
				SuspendedUntil: resp.SuspendedUntil,
			}
			if resp.MutedUntil != nil {
				next.State = domain.StateMuted
			}
			return next
		})
		d.logger.Info("User moderated by backend",
			zap.Int64("user_id", s.UserID()),
			zap.String("state", string(updated.State)),
		)
		d.record(s, domain.Interaction{Sender: domain.SenderDJ, Kind: domain.KindError, Text: resp.Response})
		d.monitor.Render(s)

	default:
		msg := resp.Error
		if msg == "" {
			msg = GenericFailure
		}
		d.record(s, domain.Interaction{Sender: domain.SenderDJ, Kind: domain.KindError, Text: msg})
	}
}

func (d *Drainer) buildRequest(ctx context.Context, s *Session, text string) domain.DJRequest {
	prefs := s.Preferences()
	req := domain.DJRequest{
		Text:       text,
		UserID:     s.DJUserID(),
		Tone:       prefs.Tone,
		VoiceSpeed: prefs.VoiceSpeed,
	}

	if p := s.Profile(); p != nil {
		id := p.ID
		req.ProfileID = &id
	}

	song, err := d.backend.NowPlaying(ctx)
	if err != nil {
		d.logger.Debug("Now playing unavailable", zap.Error(err))
	} else {
		req.NowPlaying = song
	}
	return req
}

func (d *Drainer) record(s *Session, entry domain.Interaction) {
	entry.UserID = s.UserID()
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = d.clock.Now()
	}

	if d.journal != nil {
		if err := d.journal.LogInteraction(entry); err != nil {
			d.logger.Warn("Failed to persist interaction", zap.Error(err), zap.Int64("user_id", s.UserID()))
		}
	}
	if err := d.presenter.AppendLog(s, entry); err != nil {
		d.logger.Warn("Failed to append to chat log", zap.Error(err), zap.Int64("user_id", s.UserID()))
	}
}

func (d *Drainer) showQueue(s *Session) {
	if err := d.presenter.ShowQueue(s); err != nil {
		d.logger.Warn("Failed to show queue", zap.Error(err), zap.Int64("user_id", s.UserID()))
	}
}
