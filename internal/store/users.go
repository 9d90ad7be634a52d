package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"pnptv/internal/rbac"
)

type User struct {
	ID              int64          `json:"id"`
	TelegramUserID  string         `json:"telegram_user_id"`
	Username        sql.NullString `json:"username"`
	FirstName       sql.NullString `json:"first_name"`
	PhotoURL        sql.NullString `json:"photo_url"`
	Role            rbac.Role      `json:"role"`
	AcceptedTermsAt sql.NullTime   `json:"accepted_terms_at"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// HasAcceptedTerms is the terms gate: a user has accepted the terms exactly
// when an acceptance timestamp is recorded.
func (u *User) HasAcceptedTerms() bool {
	return u.AcceptedTermsAt.Valid
}

type UsersStore struct {
	db *pgxpool.Pool
}

// Upsert creates the user on first login and refreshes the mirrored profile
// fields on every subsequent one. The stored base role is never touched here.
func (s *UsersStore) Upsert(ctx context.Context, user *User) error {
	query := `
		INSERT INTO users (telegram_user_id, username, first_name, photo_url)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (telegram_user_id) DO UPDATE
		SET username = EXCLUDED.username,
		    first_name = EXCLUDED.first_name,
		    photo_url = EXCLUDED.photo_url,
		    updated_at = now()
		RETURNING id, role, accepted_terms_at, created_at, updated_at
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	return s.db.QueryRow(
		ctx, query, user.TelegramUserID, user.Username, user.FirstName, user.PhotoURL,
	).Scan(&user.ID, &user.Role, &user.AcceptedTermsAt, &user.CreatedAt, &user.UpdatedAt)
}

func (s *UsersStore) GetByTelegramID(ctx context.Context, telegramUserID string) (*User, error) {
	query := `
		SELECT id, telegram_user_id, username, first_name, photo_url, role, accepted_terms_at, created_at, updated_at
		FROM users
		WHERE telegram_user_id = $1
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	var user User
	err := s.db.QueryRow(ctx, query, telegramUserID).Scan(
		&user.ID,
		&user.TelegramUserID,
		&user.Username,
		&user.FirstName,
		&user.PhotoURL,
		&user.Role,
		&user.AcceptedTermsAt,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *UsersStore) AcceptTerms(ctx context.Context, userID int64) error {
	query := `UPDATE users SET accepted_terms_at = now(), updated_at = now() WHERE id = $1`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	result, err := s.db.Exec(ctx, query, userID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
