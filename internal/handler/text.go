package handler

import (
	"errors"
	"strings"

	"djbot/internal/dj"
	"djbot/internal/service"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// handleText handles plain text: the password while unauthorized, a DJ request afterwards
func (h *Handler) handleText(c tele.Context) error {
	userID := c.Sender().ID
	text := strings.TrimSpace(c.Text())

	// Ignore commands (starting with /)
	if strings.HasPrefix(text, "/") {
		return nil
	}

	authorized, err := h.authService.IsAuthorized(userID)
	if err != nil {
		h.logger.Error("Failed to check authorization", zap.Error(err))
		return c.Send(msgInternalError)
	}

	// If not authorized, the text is a password attempt
	if !authorized {
		_, err := h.authService.Login(userID, text)
		switch {
		case errors.Is(err, service.ErrWrongPassword):
			return c.Send("❌ Wrong password.")
		case err != nil:
			h.logger.Error("Failed to log user in", zap.Error(err), zap.Int64("user_id", userID))
			return c.Send(msgInternalError)
		}
		return h.showMainMenu(c, "✅ Access granted!\n\n")
	}

	return h.submit(c, text)
}

// submit queues a request for the DJ
func (h *Handler) submit(c tele.Context, text string) error {
	s, err := h.session(c)
	if err != nil {
		h.logger.Error("Failed to open session", zap.Error(err), zap.Int64("user_id", c.Sender().ID))
		return c.Send(msgInternalError)
	}

	err = h.drainer.Submit(s, text)
	switch {
	case err == nil, errors.Is(err, dj.ErrEmptyRequest), errors.Is(err, dj.ErrBlocked):
		// the banner already explains a block
		return nil
	default:
		h.logger.Error("Failed to queue request", zap.Error(err), zap.Int64("user_id", s.UserID()))
		return c.Send(msgInternalError)
	}
}
