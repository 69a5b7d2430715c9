package handler

import (
	"errors"
	"strings"
	"unicode"

	"djbot/internal/dj"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// cleanCallbackData removes all non-printable characters from callback data
func cleanCallbackData(data string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) {
			return r
		}
		return -1
	}, strings.TrimSpace(data))
}

// handleEditError handles errors from c.Edit() - if message is not modified, just acknowledge callback
// Otherwise, acknowledge callback and return error so caller can send new message
func (h *Handler) handleEditError(err error, c tele.Context, userID int64) error {
	if err == nil {
		return nil
	}

	// If message is not modified, it means it was already edited by another callback
	// Just acknowledge and return nil - don't send new message
	if isNotModified(err) {
		h.logger.Debug("Message already modified by another callback, acknowledging",
			zap.Int64("user_id", userID),
			zap.String("callback_id", c.Callback().ID),
		)
		_ = c.Respond()
		return nil
	}

	h.logger.Warn("Failed to edit message, sending new",
		zap.Error(err),
		zap.Int64("user_id", userID),
		zap.String("callback_id", c.Callback().ID),
	)
	// Always acknowledge callback before sending new message
	if ackErr := c.Respond(); ackErr != nil {
		h.logger.Warn("Failed to acknowledge callback", zap.Error(ackErr))
	}
	return err
}

// handleCallback handles ALL callback queries
func (h *Handler) handleCallback(c tele.Context) error {
	callback := c.Callback()
	if callback == nil {
		h.logger.Warn("handleCallback: callback is nil")
		return nil
	}

	// Clean data from all non-printable characters
	data := cleanCallbackData(callback.Data)
	h.logger.Debug("handleCallback: Processing callback",
		zap.String("data", data),
		zap.String("id", callback.ID),
		zap.String("unique", callback.Unique),
		zap.Int64("user_id", c.Sender().ID),
	)

	// Static buttons whose Unique did not come through
	switch data {
	case btnShowQueue.Unique:
		return h.handleQueue(c)
	case btnStatus.Unique:
		return h.handleStatus(c)
	case btnMainMenu.Unique:
		return h.handleStart(c)
	}

	// Handle by Data prefix (dynamic buttons)
	if id, ok := parseID(data, removePrefix); ok {
		return h.handleRemove(c, id)
	}
	if index, ok := parseIndex(data, quickActionPrefix); ok {
		return h.handleQuickAction(c, index)
	}

	// If it's not handled, acknowledge it anyway
	h.logger.Warn("Unhandled callback in handleCallback",
		zap.String("data", data),
		zap.String("unique", callback.Unique),
	)
	return c.Respond()
}

// handleRemove drops a queued request before it is sent
func (h *Handler) handleRemove(c tele.Context, id int64) error {
	s, err := h.session(c)
	if err != nil {
		h.logger.Error("Failed to open session", zap.Error(err), zap.Int64("user_id", c.Sender().ID))
		return c.Respond(&tele.CallbackResponse{Text: msgInternalError})
	}

	if !h.drainer.RemoveByID(s, id) {
		return c.Respond(&tele.CallbackResponse{Text: "That request was already sent."})
	}
	return c.Respond(&tele.CallbackResponse{Text: "Removed from queue"})
}

// handleQuickAction queues the preset request behind a menu button
func (h *Handler) handleQuickAction(c tele.Context, index int) error {
	if index < 0 || index >= len(h.quickActions) {
		return c.Respond()
	}
	action := h.quickActions[index]

	s, err := h.session(c)
	if err != nil {
		h.logger.Error("Failed to open session", zap.Error(err), zap.Int64("user_id", c.Sender().ID))
		return c.Respond(&tele.CallbackResponse{Text: msgInternalError})
	}

	switch err := h.drainer.Submit(s, action.Text); {
	case errors.Is(err, dj.ErrBlocked):
		return c.Respond(&tele.CallbackResponse{Text: "You can't send requests right now.", ShowAlert: true})
	case err != nil:
		return c.Respond()
	}

	if _, err := c.Bot().Send(tele.ChatID(s.ChatID()), "🧑 "+action.Text); err != nil {
		h.logger.Debug("Failed to echo quick action", zap.Error(err))
	}
	return c.Respond(&tele.CallbackResponse{Text: "Queued: " + action.Label})
}
