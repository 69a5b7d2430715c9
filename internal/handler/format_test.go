package handler

import (
	"testing"
	"time"

	"djbot/internal/config"
	"djbot/internal/dj"
	"djbot/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatQueue(t *testing.T) {
	tests := []struct {
		name     string
		queue    []dj.QueuedRequest
		expected string
	}{
		{
			name:     "empty",
			queue:    nil,
			expected: "📋 Your queue is empty.",
		},
		{
			name:     "two requests",
			queue:    []dj.QueuedRequest{{ID: 4, Text: "play jazz"}, {ID: 7, Text: "tell a joke"}},
			expected: "📋 Queued requests (2):\n\n1. play jazz\n2. tell a joke",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, formatQueue(tt.queue))
		})
	}
}

func TestQueueMarkup(t *testing.T) {
	var queue []dj.QueuedRequest
	for i, text := range []string{"a", "b", "c", "d", "e", "f"} {
		queue = append(queue, dj.QueuedRequest{ID: int64(10 + i), Text: text})
	}

	markup := queueMarkup(queue)

	require.Len(t, markup.InlineKeyboard, 2)
	assert.Len(t, markup.InlineKeyboard[0], 5)
	assert.Len(t, markup.InlineKeyboard[1], 1)
	assert.Equal(t, "✖ 1", markup.InlineKeyboard[0][0].Text)
	assert.Equal(t, "✖ 6", markup.InlineKeyboard[1][0].Text)
	assert.Equal(t, "rm_10", markup.InlineKeyboard[0][0].Unique)
	assert.Equal(t, "rm_15", markup.InlineKeyboard[1][0].Unique)
}

func TestQuickActionsMarkup(t *testing.T) {
	markup := quickActionsMarkup(config.DefaultQuickActions)

	require.Len(t, markup.InlineKeyboard, 3)
	assert.Len(t, markup.InlineKeyboard[0], 2)
	assert.Len(t, markup.InlineKeyboard[1], 2)
	assert.Equal(t, "qa_0", markup.InlineKeyboard[0][0].Unique)
	assert.Equal(t, "qa_3", markup.InlineKeyboard[1][1].Unique)
	assert.Equal(t, btnShowQueue.Unique, markup.InlineKeyboard[2][0].Unique)
	assert.Equal(t, btnStatus.Unique, markup.InlineKeyboard[2][1].Unique)
}

func TestFormatEntry(t *testing.T) {
	tests := []struct {
		kind     domain.MessageKind
		expected string
	}{
		{domain.KindNormal, "🎧 Sure!"},
		{domain.KindWarning, "⚠️ Sure!"},
		{domain.KindError, "❌ Sure!"},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			assert.Equal(t, tt.expected, formatEntry(domain.Interaction{Kind: tt.kind, Text: "Sure!"}))
		})
	}
}

func TestFormatProfile(t *testing.T) {
	assert.Contains(t, formatProfile(nil), "No active DJ profile")

	text := formatProfile(&domain.DJProfile{ID: 1, Name: "Night Owl", VoiceID: "alloy", Personality: "laid back"})
	assert.Equal(t, "🎙 Active DJ: Night Owl\nVoice: alloy\nPersonality: laid back", text)

	assert.Equal(t, "🎙 Active DJ: Bare", formatProfile(&domain.DJProfile{Name: "Bare"}))
}

func TestFormatMenu(t *testing.T) {
	assert.Contains(t, formatMenu(nil), "Active DJ: Default DJ")
	assert.Contains(t, formatMenu(&domain.DJProfile{Name: "Night Owl"}), "Active DJ: Night Owl")
}

func TestFormatHistory(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, "📜 No history yet.", formatHistory(nil, now))

	entries := []domain.Interaction{
		{Sender: domain.SenderDJ, Text: "Sure!", CreatedAt: now.Add(-time.Minute)},
		{Sender: domain.SenderUser, Text: "play jazz", CreatedAt: now.Add(-2 * time.Minute)},
	}

	text := formatHistory(entries, now)

	assert.Equal(t, "📜 Recent history:\n\n🧑 play jazz (2 minutes ago)\n🎧 Sure! (1 minute ago)", text)
}

func TestFormatPreferences(t *testing.T) {
	assert.Equal(t, "🎚 Tone: humorous\n⏩ Voice speed: 1.25x",
		formatPreferences(domain.Preferences{Tone: "humorous", VoiceSpeed: 1.25}))
}

func TestFormatModerationSettings(t *testing.T) {
	text := formatModerationSettings(&domain.ModerationSettings{
		WarningThreshold:   2,
		MuteDuration:       60,
		MuteThreshold:      3,
		SuspensionDuration: 3600,
	})

	assert.Contains(t, text, "Warnings before mute: 2")
	assert.Contains(t, text, "Mute duration: 1m 0s")
	assert.Contains(t, text, "Mutes before suspension: 3")
	assert.Contains(t, text, "Suspension duration: 60m 0s")
}

func TestParseIndex(t *testing.T) {
	tests := []struct {
		name     string
		data     string
		prefix   string
		expected int
		ok       bool
	}{
		{"valid", "rm_2", removePrefix, 2, true},
		{"zero", "qa_0", quickActionPrefix, 0, true},
		{"wrong prefix", "qa_1", removePrefix, 0, false},
		{"not a number", "rm_x", removePrefix, 0, false},
		{"negative", "rm_-1", removePrefix, 0, false},
		{"missing index", "rm_", removePrefix, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, ok := parseIndex(tt.data, tt.prefix)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, n)
		})
	}
}

func TestParseID(t *testing.T) {
	tests := []struct {
		name     string
		data     string
		expected int64
		ok       bool
	}{
		{"valid", "rm_7", 7, true},
		{"zero is not an id", "rm_0", 0, false},
		{"negative", "rm_-3", 0, false},
		{"wrong prefix", "qa_7", 0, false},
		{"not a number", "rm_x", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := parseID(tt.data, removePrefix)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, id)
		})
	}
}

func TestCommandArg(t *testing.T) {
	tests := []struct {
		text     string
		expected string
	}{
		{"/tone friendly", "friendly"},
		{"/tone   friendly  ", "friendly"},
		{"/tone", ""},
		{"/reset user_abc def", "user_abc def"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.expected, commandArg(tt.text))
		})
	}
}
