package postgres

import (
	"database/sql"
	"fmt"
	"testing"
	"time"

	"djbot/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func TestInteractionRepo_LogInteraction(t *testing.T) {
	createdAt := time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		entry     domain.Interaction
		audioArg  any
		mockError error
	}{
		{
			name:     "dj reply with audio",
			entry:    domain.Interaction{UserID: 123, Sender: domain.SenderDJ, Kind: domain.KindNormal, Text: "Sure!", AudioPath: "/static/audio/dj_1.mp3", CreatedAt: createdAt},
			audioArg: "/static/audio/dj_1.mp3",
		},
		{
			name:     "user message without audio",
			entry:    domain.Interaction{UserID: 123, Sender: domain.SenderUser, Kind: domain.KindNormal, Text: "play jazz", CreatedAt: createdAt},
			audioArg: nil,
		},
		{
			name:      "database error",
			entry:     domain.Interaction{UserID: 123, Sender: domain.SenderDJ, Kind: domain.KindError, Text: "oops", CreatedAt: createdAt},
			audioArg:  nil,
			mockError: fmt.Errorf("db error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			assert.NoError(t, err)
			defer db.Close()

			repo := NewInteractionRepo(db)

			exec := mock.ExpectExec("INSERT INTO interactions").
				WithArgs(tt.entry.UserID, string(tt.entry.Sender), string(tt.entry.Kind), tt.entry.Text, tt.audioArg, createdAt)
			if tt.mockError != nil {
				exec.WillReturnError(tt.mockError)
			} else {
				exec.WillReturnResult(sqlmock.NewResult(1, 1))
			}

			err = repo.LogInteraction(tt.entry)

			if tt.mockError != nil {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestInteractionRepo_RecentInteractions(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := NewInteractionRepo(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "user_id", "sender", "kind", "text", "audio_path", "created_at"}).
		AddRow(2, 123, "dj", "normal", "Sure!", "/static/audio/dj_1.mp3", now).
		AddRow(1, 123, "user", "normal", "play jazz", nil, now.Add(-time.Second))

	mock.ExpectQuery("SELECT id, user_id, sender, kind, text, audio_path, created_at FROM interactions WHERE user_id = \\$1").
		WithArgs(int64(123), 10).
		WillReturnRows(rows)

	entries, err := repo.RecentInteractions(123, 10)

	assert.NoError(t, err)
	assert.Len(t, entries, 2)
	assert.Equal(t, domain.SenderDJ, entries[0].Sender)
	assert.Equal(t, "/static/audio/dj_1.mp3", entries[0].AudioPath)
	assert.Equal(t, domain.SenderUser, entries[1].Sender)
	assert.Equal(t, "", entries[1].AudioPath)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInteractionRepo_RecentInteractions_Errors(t *testing.T) {
	tests := []struct {
		name     string
		mockRows *sqlmock.Rows
		mockErr  error
	}{
		{
			name:    "query error",
			mockErr: sql.ErrConnDone,
		},
		{
			name: "scan error",
			mockRows: sqlmock.NewRows([]string{"id", "user_id", "sender", "kind", "text", "audio_path", "created_at"}).
				AddRow("invalid", 123, "dj", "normal", "x", nil, time.Now()),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			assert.NoError(t, err)
			defer db.Close()

			repo := NewInteractionRepo(db)

			q := mock.ExpectQuery("SELECT id, user_id, sender").WithArgs(int64(123), 5)
			if tt.mockErr != nil {
				q.WillReturnError(tt.mockErr)
			} else {
				q.WillReturnRows(tt.mockRows)
			}

			entries, err := repo.RecentInteractions(123, 5)

			assert.Error(t, err)
			assert.Nil(t, entries)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestInteractionRepo_CleanOldInteractions(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := NewInteractionRepo(db)

	mock.ExpectExec("DELETE FROM interactions").
		WithArgs(60).
		WillReturnResult(sqlmock.NewResult(0, 12))

	err = repo.CleanOldInteractions(60)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
