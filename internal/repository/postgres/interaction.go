package postgres

import (
	"database/sql"

	"djbot/internal/domain"
)

// InteractionRepo implements repository.InteractionRepository
type InteractionRepo struct {
	db *sql.DB
}

// NewInteractionRepo creates a new interaction repository
func NewInteractionRepo(db *sql.DB) *InteractionRepo {
	return &InteractionRepo{db: db}
}

// LogInteraction appends an entry to the chat log
func (r *InteractionRepo) LogInteraction(entry domain.Interaction) error {
	query := `
		INSERT INTO interactions (user_id, sender, kind, text, audio_path, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	var audio sql.NullString
	if entry.AudioPath != "" {
		audio = sql.NullString{String: entry.AudioPath, Valid: true}
	}
	_, err := r.db.Exec(query,
		entry.UserID, string(entry.Sender), string(entry.Kind), entry.Text, audio, entry.CreatedAt,
	)
	return err
}

// RecentInteractions returns the newest entries first
func (r *InteractionRepo) RecentInteractions(userID int64, limit int) ([]domain.Interaction, error) {
	query := `
		SELECT id, user_id, sender, kind, text, audio_path, created_at
		FROM interactions
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`

	rows, err := r.db.Query(query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.Interaction
	for rows.Next() {
		var e domain.Interaction
		var sender, kind string
		var audio sql.NullString
		if err := rows.Scan(&e.ID, &e.UserID, &sender, &kind, &e.Text, &audio, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Sender = domain.Sender(sender)
		e.Kind = domain.MessageKind(kind)
		e.AudioPath = audio.String
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// CleanOldInteractions deletes entries older than the given number of days
func (r *InteractionRepo) CleanOldInteractions(days int) error {
	query := `
		DELETE FROM interactions
		WHERE created_at < NOW() - INTERVAL '1 day' * $1
	`
	_, err := r.db.Exec(query, days)
	return err
}
