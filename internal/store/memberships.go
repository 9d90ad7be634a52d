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

type Membership struct {
	ID        int64                 `json:"id"`
	UserID    int64                 `json:"user_id"`
	Plan      rbac.MembershipPlan   `json:"plan"`
	Status    rbac.MembershipStatus `json:"status"`
	StartedAt time.Time             `json:"started_at"`
	ExpiresAt sql.NullTime          `json:"expires_at"`
	CreatedAt time.Time             `json:"created_at"`
}

// Resolution converts the row into the view consumed by role resolution.
func (m *Membership) Resolution() *rbac.Membership {
	if m == nil {
		return nil
	}
	out := &rbac.Membership{Plan: m.Plan, Status: m.Status}
	if m.ExpiresAt.Valid {
		out.ExpiresAt = m.ExpiresAt.Time
	}
	return out
}

type MembershipsStore struct {
	db *pgxpool.Pool
}

// GetLatestForUser returns the most recent membership record. Whether it
// still grants anything is decided by the role resolver, not by SQL.
func (s *MembershipsStore) GetLatestForUser(ctx context.Context, userID int64) (*Membership, error) {
	query := `
		SELECT id, user_id, plan, status, started_at, expires_at, created_at
		FROM memberships
		WHERE user_id = $1
		ORDER BY started_at DESC
		LIMIT 1
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	var m Membership
	err := s.db.QueryRow(ctx, query, userID).Scan(
		&m.ID,
		&m.UserID,
		&m.Plan,
		&m.Status,
		&m.StartedAt,
		&m.ExpiresAt,
		&m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}
