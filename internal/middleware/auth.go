package middleware

import (
	"djbot/internal/service"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

const (
	msgInternalError = "Something went wrong. Please try again later."
	msgPasswordAsk   = "🔒 This DJ is private. Please enter the password:"
	msgAdminOnly     = "⛔ This command is for admins only."
)

// AuthMiddleware creates authentication middleware
func AuthMiddleware(authService *service.AuthService, logger *zap.Logger) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			userID := c.Sender().ID

			authorized, err := authService.IsAuthorized(userID)
			if err != nil {
				logger.Error("Failed to check authorization in middleware", zap.Error(err))
				return c.Send(msgInternalError)
			}

			// If not authorized and not /start command, prompt for password
			if !authorized && c.Text() != "/start" {
				if c.Callback() != nil {
					_ = c.Respond()
				}
				return c.Send(msgPasswordAsk)
			}

			// User is authorized or using /start, continue
			return next(c)
		}
	}
}

// AdminMiddleware lets only users accepted by isAdmin through
func AdminMiddleware(isAdmin func(userID int64) bool, logger *zap.Logger) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			userID := c.Sender().ID
			if isAdmin == nil || !isAdmin(userID) {
				logger.Warn("Admin command rejected",
					zap.Int64("user_id", userID),
					zap.String("text", c.Text()),
				)
				return c.Send(msgAdminOnly)
			}
			return next(c)
		}
	}
}
