package handler

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"djbot/internal/config"
	"djbot/internal/dj"
	"djbot/internal/domain"

	"github.com/dustin/go-humanize"
	tele "gopkg.in/telebot.v3"
)

const (
	removePrefix      = "rm_"
	quickActionPrefix = "qa_"
	historyLimit      = 10
)

var (
	btnShowQueue = tele.Btn{
		Unique: "show_queue",
		Text:   "📋 Queue",
	}
	btnStatus = tele.Btn{
		Unique: "status",
		Text:   "🛡 Status",
	}
	btnMainMenu = tele.Btn{
		Unique: "main_menu",
		Text:   "🏠 Main menu",
	}
)

// quickActionsMarkup returns the preset request buttons, two per row
func quickActionsMarkup(actions []config.QuickAction) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	rows := []tele.Row{}

	var row tele.Row
	for i, a := range actions {
		row = append(row, markup.Data(a.Label, quickActionPrefix+strconv.Itoa(i)))
		if len(row) == 2 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	rows = append(rows, markup.Row(btnShowQueue, btnStatus))

	markup.Inline(rows...)
	return markup
}

// queueMarkup returns one remove button per queued request. Buttons are
// labelled by position but carry the request id.
func queueMarkup(queue []dj.QueuedRequest) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	rows := []tele.Row{}

	var row tele.Row
	for i, q := range queue {
		row = append(row, markup.Data(fmt.Sprintf("✖ %d", i+1), removePrefix+strconv.FormatInt(q.ID, 10)))
		if len(row) == 5 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}

	markup.Inline(rows...)
	return markup
}

func formatQueue(queue []dj.QueuedRequest) string {
	if len(queue) == 0 {
		return "📋 Your queue is empty."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📋 Queued requests (%d):\n\n", len(queue))
	for i, q := range queue {
		fmt.Fprintf(&b, "%d. %s\n", i+1, q.Text)
	}
	return strings.TrimRight(b.String(), "\n")
}

// formatEntry renders a DJ log entry with a marker for its kind
func formatEntry(e domain.Interaction) string {
	switch e.Kind {
	case domain.KindWarning:
		return "⚠️ " + e.Text
	case domain.KindError:
		return "❌ " + e.Text
	default:
		return "🎧 " + e.Text
	}
}

func formatMenu(profile *domain.DJProfile) string {
	name := "Default DJ"
	if profile != nil && profile.Name != "" {
		name = profile.Name
	}
	return fmt.Sprintf("🏠 Main menu\n\n🎙 Active DJ: %s\n\nSend any music request or pick a quick action:", name)
}

func formatProfile(profile *domain.DJProfile) string {
	if profile == nil {
		return "🎙 No active DJ profile. The default DJ will answer."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🎙 Active DJ: %s", profile.Name)
	if profile.VoiceID != "" {
		fmt.Fprintf(&b, "\nVoice: %s", profile.VoiceID)
	}
	if profile.Personality != "" {
		fmt.Fprintf(&b, "\nPersonality: %s", profile.Personality)
	}
	return b.String()
}

// formatHistory lists entries oldest first; entries arrive newest first
func formatHistory(entries []domain.Interaction, now time.Time) string {
	if len(entries) == 0 {
		return "📜 No history yet."
	}

	var b strings.Builder
	b.WriteString("📜 Recent history:\n")
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		who := "🧑"
		if e.Sender == domain.SenderDJ {
			who = "🎧"
		}
		fmt.Fprintf(&b, "\n%s %s (%s)", who, e.Text, humanize.RelTime(e.CreatedAt, now, "ago", "from now"))
	}
	return b.String()
}

func formatPreferences(p domain.Preferences) string {
	return fmt.Sprintf("🎚 Tone: %s\n⏩ Voice speed: %sx", p.Tone, strconv.FormatFloat(p.VoiceSpeed, 'f', -1, 64))
}

func formatModerationSettings(ms *domain.ModerationSettings) string {
	return fmt.Sprintf(
		"🛡 Moderation settings\n\nWarnings before mute: %d\nMute duration: %s\nMutes before suspension: %d\nSuspension duration: %s",
		ms.WarningThreshold,
		domain.FormatMinutesSeconds(time.Duration(ms.MuteDuration)*time.Second),
		ms.MuteThreshold,
		domain.FormatMinutesSeconds(time.Duration(ms.SuspensionDuration)*time.Second),
	)
}

// parseIndex extracts a non-negative index from callback data such as "qa_2"
func parseIndex(data, prefix string) (int, bool) {
	if !strings.HasPrefix(data, prefix) {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimPrefix(data, prefix))
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// parseID extracts a positive request id from callback data such as "rm_7"
func parseID(data, prefix string) (int64, bool) {
	if !strings.HasPrefix(data, prefix) {
		return 0, false
	}
	n, err := strconv.ParseInt(strings.TrimPrefix(data, prefix), 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// commandArg returns the trimmed text after the command word
func commandArg(text string) string {
	fields := strings.SplitN(strings.TrimSpace(text), " ", 2)
	if len(fields) < 2 {
		return ""
	}
	return strings.TrimSpace(fields[1])
}
