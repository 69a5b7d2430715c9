package handler

import (
	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// handleStart handles /start command
func (h *Handler) handleStart(c tele.Context) error {
	userID := c.Sender().ID

	h.logger.Info("User started bot",
		zap.Int64("user_id", userID),
		zap.String("username", c.Sender().Username),
	)

	authorized, err := h.authService.IsAuthorized(userID)
	if err != nil {
		h.logger.Error("Failed to check authorization", zap.Error(err))
		return c.Send(msgInternalError)
	}

	if !authorized {
		return c.Send(msgPasswordAsk)
	}

	return h.showMainMenu(c, "")
}

// showMainMenu refreshes the moderation status and shows the menu with the
// active DJ. Quick actions are withheld while the user is blocked.
func (h *Handler) showMainMenu(c tele.Context, header string) error {
	userID := c.Sender().ID

	s, err := h.session(c)
	if err != nil {
		h.logger.Error("Failed to open session", zap.Error(err), zap.Int64("user_id", userID))
		return c.Send(msgInternalError)
	}

	ctx, cancel := callContext()
	_ = h.monitor.RefreshStatus(ctx, s)
	cancel()

	text := header + formatMenu(s.Profile())
	view := h.monitor.View(s)

	var opts []interface{}
	if view.InputEnabled {
		opts = append(opts, quickActionsMarkup(h.quickActions))
	}

	// Edit message if callback, send new if command
	if c.Callback() != nil {
		if err := c.Edit(text, opts...); err != nil {
			if handleErr := h.handleEditError(err, c, userID); handleErr != nil {
				if err := c.Send(text, opts...); err != nil {
					return err
				}
			}
		} else if err := c.Respond(); err != nil {
			h.logger.Debug("Failed to acknowledge callback", zap.Error(err))
		}
	} else if err := c.Send(text, opts...); err != nil {
		return err
	}

	h.monitor.Render(s)
	return nil
}
