package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"pnptv/internal/rbac"
)

type CollectionType string

const (
	CollectionPlaylist CollectionType = "PLAYLIST"
	CollectionPodcast  CollectionType = "PODCAST"
)

type CollectionItem struct {
	Title    string         `json:"title"`
	URL      string         `json:"url"`
	Duration int            `json:"duration,omitempty"`
	Meta     map[string]any `json:"meta,omitempty"`
}

type Collection struct {
	ID          string           `json:"id"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Type        CollectionType   `json:"type"`
	Visibility  rbac.Visibility  `json:"visibility"`
	OwnerID     int64            `json:"owner_id"`
	Items       []CollectionItem `json:"items"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

type CollectionsStore struct {
	db *pgxpool.Pool
}

func (s *CollectionsStore) Create(ctx context.Context, c *Collection) error {
	c.ID = uuid.New().String()

	items, err := json.Marshal(c.Items)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO collections (id, title, description, type, visibility, owner_id, items)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	return s.db.QueryRow(
		ctx, query, c.ID, c.Title, c.Description, c.Type, c.Visibility, c.OwnerID, items,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
}

func (s *CollectionsStore) GetByID(ctx context.Context, id string) (*Collection, error) {
	query := `
		SELECT id, title, description, type, visibility, owner_id, items, created_at, updated_at
		FROM collections
		WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	c, err := scanCollection(s.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

func (s *CollectionsStore) List(ctx context.Context, visibilities []rbac.Visibility) ([]Collection, error) {
	query := `
		SELECT id, title, description, type, visibility, owner_id, items, created_at, updated_at
		FROM collections
		WHERE visibility = ANY($1)
		ORDER BY created_at DESC
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	vis := make([]string, len(visibilities))
	for i, v := range visibilities {
		vis[i] = string(v)
	}

	rows, err := s.db.Query(ctx, query, vis)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var collections []Collection
	for rows.Next() {
		c, err := scanCollection(rows)
		if err != nil {
			return nil, err
		}
		collections = append(collections, *c)
	}
	return collections, rows.Err()
}

func (s *CollectionsStore) Update(ctx context.Context, id, title, description string) error {
	query := `
		UPDATE collections
		SET title = $2, description = $3, updated_at = now()
		WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	result, err := s.db.Exec(ctx, query, id, title, description)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *CollectionsStore) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM collections WHERE id = $1`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	result, err := s.db.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanCollection(row pgx.Row) (*Collection, error) {
	var c Collection
	var items []byte
	err := row.Scan(
		&c.ID,
		&c.Title,
		&c.Description,
		&c.Type,
		&c.Visibility,
		&c.OwnerID,
		&items,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(items) > 0 {
		if err := json.Unmarshal(items, &c.Items); err != nil {
			return nil, err
		}
	}
	return &c, nil
}
