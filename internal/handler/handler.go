package handler

import (
	"context"
	"time"

	"djbot/internal/config"
	"djbot/internal/dj"
	"djbot/internal/domain"
	"djbot/internal/middleware"
	"djbot/internal/service"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

const (
	backendCallTimeout = 15 * time.Second

	msgInternalError = "Something went wrong. Please try again later."
	msgPasswordAsk   = "🔒 This DJ is private. Please enter the password:"
)

// Backend is the part of the DJ API used by chat commands
type Backend interface {
	ActiveProfile(ctx context.Context, userID string) (*domain.DJProfile, error)
	ResetUser(ctx context.Context, userID string) error
	ModerationSettings(ctx context.Context) (*domain.ModerationSettings, error)
}

// Deps groups the collaborators of Handler
type Deps struct {
	AuthService  *service.AuthService
	PrefService  *service.PreferenceService
	StatsService *service.StatsService
	Registry     *dj.Registry
	Monitor      *dj.Monitor
	Drainer      *dj.Drainer
	Backend      Backend
	QuickActions []config.QuickAction
	IsAdmin      func(userID int64) bool
}

// Handler manages all bot interactions
type Handler struct {
	bot          *tele.Bot
	authService  *service.AuthService
	prefService  *service.PreferenceService
	statsService *service.StatsService
	registry     *dj.Registry
	monitor      *dj.Monitor
	drainer      *dj.Drainer
	backend      Backend
	quickActions []config.QuickAction
	isAdmin      func(userID int64) bool
	logger       *zap.Logger
}

// NewHandler creates a new handler instance
func NewHandler(bot *tele.Bot, deps Deps, logger *zap.Logger) *Handler {
	return &Handler{
		bot:          bot,
		authService:  deps.AuthService,
		prefService:  deps.PrefService,
		statsService: deps.StatsService,
		registry:     deps.Registry,
		monitor:      deps.Monitor,
		drainer:      deps.Drainer,
		backend:      deps.Backend,
		quickActions: deps.QuickActions,
		isAdmin:      deps.IsAdmin,
		logger:       logger,
	}
}

// RegisterHandlers registers all bot handlers
func (h *Handler) RegisterHandlers() {
	auth := middleware.AuthMiddleware(h.authService, h.logger)
	admin := middleware.AdminMiddleware(h.isAdmin, h.logger)

	// Commands
	h.bot.Handle("/start", h.handleStart)
	h.bot.Handle("/queue", h.handleQueue, auth)
	h.bot.Handle("/status", h.handleStatus, auth)
	h.bot.Handle("/tone", h.handleTone, auth)
	h.bot.Handle("/speed", h.handleSpeed, auth)
	h.bot.Handle("/profile", h.handleProfile, auth)
	h.bot.Handle("/history", h.handleHistory, auth)
	h.bot.Handle("/reset", h.handleReset, auth, admin)
	h.bot.Handle("/modsettings", h.handleModSettings, auth, admin)

	// Text messages
	h.bot.Handle(tele.OnText, h.handleText)

	// Callback queries (inline buttons)
	h.bot.Handle(&btnShowQueue, h.handleQueue, auth)
	h.bot.Handle(&btnStatus, h.handleStatus, auth)
	h.bot.Handle(&btnMainMenu, h.handleStart)

	// Generic callback handler for dynamic data
	h.bot.Handle(tele.OnCallback, h.handleCallback, auth)
}

// session returns the user's session, creating it on first contact
func (h *Handler) session(c tele.Context) (*dj.Session, error) {
	userID := c.Sender().ID
	chatID := userID
	if c.Chat() != nil {
		chatID = c.Chat().ID
	}

	return h.registry.GetOrCreate(userID, func() (*dj.Session, error) {
		user, err := h.prefService.LoadUser(userID)
		if err != nil {
			return nil, err
		}

		s := dj.NewSession(userID, chatID, user.DJUserID, user.Preferences())

		ctx, cancel := callContext()
		defer cancel()
		profile, err := h.backend.ActiveProfile(ctx, user.DJUserID)
		if err != nil {
			h.logger.Warn("Failed to load active DJ profile", zap.Error(err), zap.Int64("user_id", userID))
		} else {
			s.SetProfile(profile)
		}

		h.logger.Info("Session created",
			zap.Int64("user_id", userID),
			zap.String("dj_user_id", user.DJUserID),
		)
		return s, nil
	})
}

func callContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), backendCallTimeout)
}
