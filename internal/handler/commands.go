package handler

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"djbot/internal/domain"
	"djbot/internal/service"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// respond acknowledges a callback, or does nothing for a command
func respond(c tele.Context) {
	if c.Callback() != nil {
		_ = c.Respond()
	}
}

// handleQueue lists pending requests with remove buttons
func (h *Handler) handleQueue(c tele.Context) error {
	respond(c)

	s, err := h.session(c)
	if err != nil {
		h.logger.Error("Failed to open session", zap.Error(err), zap.Int64("user_id", c.Sender().ID))
		return c.Send(msgInternalError)
	}

	queue := s.Entries()
	if len(queue) == 0 {
		text := formatQueue(queue)
		if s.Pending() {
			text += "\n🎧 One request is being answered."
		}
		return c.Send(text)
	}
	return c.Send(formatQueue(queue), queueMarkup(queue))
}

// handleStatus polls the backend and shows the moderation banner
func (h *Handler) handleStatus(c tele.Context) error {
	respond(c)

	s, err := h.session(c)
	if err != nil {
		h.logger.Error("Failed to open session", zap.Error(err), zap.Int64("user_id", c.Sender().ID))
		return c.Send(msgInternalError)
	}

	ctx, cancel := callContext()
	refreshErr := h.monitor.RefreshStatus(ctx, s)
	cancel()

	view := h.monitor.Render(s)
	if view.Kind != domain.ViewNone {
		return nil
	}

	text := "✅ Your account is in good standing.\n\n" + formatPreferences(s.Preferences())
	if refreshErr != nil {
		text += "\n\n(status could not be refreshed just now)"
	}
	return c.Send(text)
}

// handleTone shows or updates the DJ tone
func (h *Handler) handleTone(c tele.Context) error {
	s, err := h.session(c)
	if err != nil {
		h.logger.Error("Failed to open session", zap.Error(err), zap.Int64("user_id", c.Sender().ID))
		return c.Send(msgInternalError)
	}

	arg := commandArg(c.Text())
	usage := fmt.Sprintf("Usage: /tone <%s>", strings.Join(service.Tones, "|"))
	if arg == "" {
		return c.Send(formatPreferences(s.Preferences()) + "\n\n" + usage)
	}

	tone, err := h.prefService.SetTone(s.UserID(), arg)
	if errors.Is(err, service.ErrInvalidTone) {
		return c.Send("Unknown tone.\n" + usage)
	}
	if err != nil {
		h.logger.Error("Failed to save tone", zap.Error(err), zap.Int64("user_id", s.UserID()))
		return c.Send(msgInternalError)
	}

	prefs := s.Preferences()
	prefs.Tone = tone
	s.SetPreferences(prefs)
	return c.Send("🎚 Tone set to " + tone)
}

// handleSpeed shows or updates the voice speed
func (h *Handler) handleSpeed(c tele.Context) error {
	s, err := h.session(c)
	if err != nil {
		h.logger.Error("Failed to open session", zap.Error(err), zap.Int64("user_id", c.Sender().ID))
		return c.Send(msgInternalError)
	}

	arg := commandArg(c.Text())
	usage := fmt.Sprintf("Usage: /speed <%.1f-%.1f>", service.MinVoiceSpeed, service.MaxVoiceSpeed)
	if arg == "" {
		return c.Send(formatPreferences(s.Preferences()) + "\n\n" + usage)
	}

	speed, err := strconv.ParseFloat(arg, 64)
	if err != nil {
		return c.Send(usage)
	}

	err = h.prefService.SetVoiceSpeed(s.UserID(), speed)
	if errors.Is(err, service.ErrInvalidSpeed) {
		return c.Send(usage)
	}
	if err != nil {
		h.logger.Error("Failed to save voice speed", zap.Error(err), zap.Int64("user_id", s.UserID()))
		return c.Send(msgInternalError)
	}

	prefs := s.Preferences()
	prefs.VoiceSpeed = speed
	s.SetPreferences(prefs)
	return c.Send(fmt.Sprintf("⏩ Voice speed set to %sx", strconv.FormatFloat(speed, 'f', -1, 64)))
}

// handleProfile reloads the active DJ profile
func (h *Handler) handleProfile(c tele.Context) error {
	s, err := h.session(c)
	if err != nil {
		h.logger.Error("Failed to open session", zap.Error(err), zap.Int64("user_id", c.Sender().ID))
		return c.Send(msgInternalError)
	}

	ctx, cancel := callContext()
	defer cancel()

	profile, err := h.backend.ActiveProfile(ctx, s.DJUserID())
	if err != nil {
		h.logger.Warn("Failed to load active DJ profile", zap.Error(err), zap.Int64("user_id", s.UserID()))
		return c.Send(formatProfile(s.Profile()) + "\n\n(could not reach the DJ server)")
	}

	s.SetProfile(profile)
	return c.Send(formatProfile(profile))
}

// handleHistory shows the latest persisted interactions
func (h *Handler) handleHistory(c tele.Context) error {
	userID := c.Sender().ID

	entries, err := h.statsService.RecentHistory(userID, historyLimit)
	if err != nil {
		h.logger.Error("Failed to load history", zap.Error(err), zap.Int64("user_id", userID))
		return c.Send(msgInternalError)
	}
	return c.Send(formatHistory(entries, time.Now()))
}

// handleReset clears a backend user's moderation record
func (h *Handler) handleReset(c tele.Context) error {
	djUserID := commandArg(c.Text())
	if djUserID == "" {
		return c.Send("Usage: /reset <dj_user_id>")
	}

	ctx, cancel := callContext()
	defer cancel()

	if err := h.backend.ResetUser(ctx, djUserID); err != nil {
		h.logger.Error("Failed to reset user", zap.Error(err), zap.String("dj_user_id", djUserID))
		return c.Send("❌ Reset failed: " + err.Error())
	}

	h.logger.Info("User moderation reset",
		zap.Int64("admin_id", c.Sender().ID),
		zap.String("dj_user_id", djUserID),
	)

	for _, s := range h.registry.Snapshot() {
		if s.DJUserID() != djUserID {
			continue
		}
		if err := h.monitor.RefreshStatus(ctx, s); err == nil {
			h.monitor.Render(s)
		}
	}
	return c.Send("✅ Moderation record of " + djUserID + " was reset.")
}

// handleModSettings shows the backend moderation rules
func (h *Handler) handleModSettings(c tele.Context) error {
	ctx, cancel := callContext()
	defer cancel()

	ms, err := h.backend.ModerationSettings(ctx)
	if err != nil {
		h.logger.Error("Failed to load moderation settings", zap.Error(err))
		return c.Send(msgInternalError)
	}
	return c.Send(formatModerationSettings(ms))
}
