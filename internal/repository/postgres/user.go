package postgres

import (
	"database/sql"

	"djbot/internal/domain"
)

// UserRepo implements repository.UserRepository
type UserRepo struct {
	db *sql.DB
}

// NewUserRepo creates a new user repository
func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

// IsAuthorized checks if user is authorized
func (r *UserRepo) IsAuthorized(userID int64) (bool, error) {
	var authorized bool
	query := `SELECT authorized FROM users WHERE user_id = $1`
	err := r.db.QueryRow(query, userID).Scan(&authorized)

	if err == sql.ErrNoRows {
		// User doesn't exist yet
		return false, nil
	}
	if err != nil {
		return false, err
	}

	return authorized, nil
}

// AuthorizeUser marks user as authorized
func (r *UserRepo) AuthorizeUser(userID int64) error {
	query := `
		INSERT INTO users (user_id, authorized)
		VALUES ($1, TRUE)
		ON CONFLICT (user_id)
		DO UPDATE SET authorized = TRUE
	`
	_, err := r.db.Exec(query, userID)
	return err
}

// EnsureUserExists creates user if not exists
func (r *UserRepo) EnsureUserExists(userID int64) error {
	query := `
		INSERT INTO users (user_id, authorized)
		VALUES ($1, FALSE)
		ON CONFLICT (user_id) DO NOTHING
	`
	_, err := r.db.Exec(query, userID)
	return err
}

// GetUser returns the user with DJ identity and preferences, nil if unknown
func (r *UserRepo) GetUser(userID int64) (*domain.User, error) {
	var u domain.User
	var djUserID sql.NullString
	query := `SELECT user_id, dj_user_id, authorized, tone, voice_speed, created_at FROM users WHERE user_id = $1`
	err := r.db.QueryRow(query, userID).Scan(
		&u.UserID, &djUserID, &u.Authorized, &u.Tone, &u.VoiceSpeed, &u.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	u.DJUserID = djUserID.String
	return &u, nil
}

// SetDJUserID assigns the backend identity once; an existing one is kept
func (r *UserRepo) SetDJUserID(userID int64, djUserID string) error {
	query := `
		UPDATE users
		SET dj_user_id = $2
		WHERE user_id = $1 AND dj_user_id IS NULL
	`
	_, err := r.db.Exec(query, userID, djUserID)
	return err
}

// SetTone stores the response tone
func (r *UserRepo) SetTone(userID int64, tone string) error {
	query := `UPDATE users SET tone = $2 WHERE user_id = $1`
	_, err := r.db.Exec(query, userID, tone)
	return err
}

// SetVoiceSpeed stores the voice speed
func (r *UserRepo) SetVoiceSpeed(userID int64, speed float64) error {
	query := `UPDATE users SET voice_speed = $2 WHERE user_id = $1`
	_, err := r.db.Exec(query, userID, speed)
	return err
}
