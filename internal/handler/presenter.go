package handler

import (
	"strings"
	"sync"

	"djbot/internal/config"
	"djbot/internal/dj"
	"djbot/internal/domain"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// Messenger is the part of *tele.Bot the presenter needs
type Messenger interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
	Edit(msg tele.Editable, what interface{}, opts ...interface{}) (*tele.Message, error)
	Delete(msg tele.Editable) error
}

// ChatPresenter renders session state as Telegram messages. Each chat keeps
// one queue message and one status banner that are edited in place.
type ChatPresenter struct {
	bot          Messenger
	audioBaseURL string
	quickActions []config.QuickAction
	logger       *zap.Logger

	// queueMu serializes queue renders so concurrent updates cannot both
	// send a fresh message or leave an older listing on screen.
	queueMu sync.Mutex

	mu      sync.Mutex
	queues  map[int64]*tele.Message
	banners map[int64]*tele.Message
	blocked map[int64]bool
}

// NewChatPresenter creates a presenter sending through bot
func NewChatPresenter(bot Messenger, audioBaseURL string, quickActions []config.QuickAction, logger *zap.Logger) *ChatPresenter {
	return &ChatPresenter{
		bot:          bot,
		audioBaseURL: strings.TrimRight(audioBaseURL, "/"),
		quickActions: quickActions,
		logger:       logger,
		queues:       make(map[int64]*tele.Message),
		banners:      make(map[int64]*tele.Message),
		blocked:      make(map[int64]bool),
	}
}

var _ dj.Presenter = (*ChatPresenter)(nil)

// ShowStatus shows the moderation banner. Quick actions are only offered
// while input is enabled.
func (p *ChatPresenter) ShowStatus(s *dj.Session, view domain.StatusView) error {
	chatID := s.ChatID()

	p.mu.Lock()
	banner := p.banners[chatID]
	wasBlocked := p.blocked[chatID]
	p.blocked[chatID] = !view.InputEnabled
	p.mu.Unlock()

	if view.Kind == domain.ViewNone {
		if banner != nil {
			p.forget(p.banners, chatID)
			if err := p.bot.Delete(banner); err != nil {
				p.logger.Debug("Failed to delete status banner", zap.Error(err), zap.Int64("chat_id", chatID))
			}
		}
		if wasBlocked {
			_, err := p.bot.Send(tele.ChatID(chatID), "✅ You can send requests again.", quickActionsMarkup(p.quickActions))
			return err
		}
		return nil
	}

	var opts []interface{}
	if view.InputEnabled {
		opts = append(opts, quickActionsMarkup(p.quickActions))
	}

	msg, err := p.upsert(chatID, banner, view.Banner, opts...)
	if err != nil {
		return err
	}
	p.remember(p.banners, chatID, msg)
	return nil
}

// ShowQueue keeps the queue message in sync, removing it once the queue is empty
func (p *ChatPresenter) ShowQueue(s *dj.Session) error {
	chatID := s.ChatID()

	p.queueMu.Lock()
	defer p.queueMu.Unlock()

	queue := s.Entries()

	p.mu.Lock()
	existing := p.queues[chatID]
	p.mu.Unlock()

	if len(queue) == 0 {
		if existing == nil {
			return nil
		}
		p.forget(p.queues, chatID)
		return p.bot.Delete(existing)
	}

	msg, err := p.upsert(chatID, existing, formatQueue(queue), queueMarkup(queue))
	if err != nil {
		return err
	}
	p.remember(p.queues, chatID, msg)
	return nil
}

// ShowProcessing posts a "thinking" message that the returned func deletes
func (p *ChatPresenter) ShowProcessing(s *dj.Session) (func(), error) {
	msg, err := p.bot.Send(tele.ChatID(s.ChatID()), "🎧 DJ is thinking...")
	if err != nil {
		return nil, err
	}
	return func() {
		if err := p.bot.Delete(msg); err != nil {
			p.logger.Debug("Failed to delete processing message", zap.Error(err), zap.Int64("chat_id", s.ChatID()))
		}
	}, nil
}

// AppendLog posts a DJ reply. User entries are already visible in the chat.
func (p *ChatPresenter) AppendLog(s *dj.Session, entry domain.Interaction) error {
	if entry.Sender == domain.SenderUser {
		return nil
	}

	to := tele.ChatID(s.ChatID())
	text := formatEntry(entry)

	if entry.AudioPath != "" {
		audio := &tele.Audio{
			File:    tele.FromURL(p.audioBaseURL + entry.AudioPath),
			Caption: text,
		}
		_, err := p.bot.Send(to, audio)
		if err == nil {
			return nil
		}
		p.logger.Warn("Failed to send DJ audio, falling back to text",
			zap.Error(err),
			zap.Int64("user_id", s.UserID()),
			zap.String("audio_path", entry.AudioPath),
		)
	}

	_, err := p.bot.Send(to, text)
	return err
}

// upsert edits msg in place, sending a fresh message when there is none or the edit fails
func (p *ChatPresenter) upsert(chatID int64, msg *tele.Message, text string, opts ...interface{}) (*tele.Message, error) {
	if msg != nil {
		edited, err := p.bot.Edit(msg, text, opts...)
		if err == nil {
			return edited, nil
		}
		if isNotModified(err) {
			return msg, nil
		}
		p.logger.Debug("Failed to edit message, sending new", zap.Error(err), zap.Int64("chat_id", chatID))
	}
	return p.bot.Send(tele.ChatID(chatID), text, opts...)
}

func (p *ChatPresenter) remember(store map[int64]*tele.Message, chatID int64, msg *tele.Message) {
	p.mu.Lock()
	defer p.mu.Unlock()
	store[chatID] = msg
}

func (p *ChatPresenter) forget(store map[int64]*tele.Message, chatID int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(store, chatID)
}

func isNotModified(err error) bool {
	return err != nil && strings.Contains(err.Error(), "message is not modified")
}
