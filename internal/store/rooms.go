package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RoomVisibility string

const (
	RoomPublic  RoomVisibility = "PUBLIC"
	RoomPrivate RoomVisibility = "PRIVATE"
)

type RoomStatus string

const (
	RoomOpen   RoomStatus = "OPEN"
	RoomClosed RoomStatus = "CLOSED"
)

type Room struct {
	ID            string         `json:"id"`
	Title         string         `json:"title"`
	Visibility    RoomVisibility `json:"visibility"`
	Status        RoomStatus     `json:"status"`
	HostID        int64          `json:"host_id"`
	ChannelName   string         `json:"channel_name"`
	JoinTokenHash sql.NullString `json:"-"`
	CreatedAt     time.Time      `json:"created_at"`
}

type RoomsStore struct {
	db *pgxpool.Pool
}

func (s *RoomsStore) Create(ctx context.Context, room *Room) error {
	room.ID = uuid.New().String()

	query := `
		INSERT INTO rooms (id, title, visibility, status, host_id, channel_name, join_token_hash)
		VALUES ($1, $2, $3, 'OPEN', $4, $5, $6)
		RETURNING status, created_at
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	return s.db.QueryRow(
		ctx, query, room.ID, room.Title, room.Visibility, room.HostID, room.ChannelName, room.JoinTokenHash,
	).Scan(&room.Status, &room.CreatedAt)
}

func (s *RoomsStore) GetByID(ctx context.Context, id string) (*Room, error) {
	query := `
		SELECT id, title, visibility, status, host_id, channel_name, join_token_hash, created_at
		FROM rooms
		WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	var room Room
	err := s.db.QueryRow(ctx, query, id).Scan(
		&room.ID,
		&room.Title,
		&room.Visibility,
		&room.Status,
		&room.HostID,
		&room.ChannelName,
		&room.JoinTokenHash,
		&room.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &room, nil
}

func (s *RoomsStore) ListPublicOpen(ctx context.Context) ([]Room, error) {
	query := `
		SELECT id, title, visibility, status, host_id, channel_name, created_at
		FROM rooms
		WHERE visibility = 'PUBLIC' AND status = 'OPEN'
		ORDER BY created_at DESC
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rooms []Room
	for rows.Next() {
		var room Room
		if err := rows.Scan(
			&room.ID,
			&room.Title,
			&room.Visibility,
			&room.Status,
			&room.HostID,
			&room.ChannelName,
			&room.CreatedAt,
		); err != nil {
			return nil, err
		}
		rooms = append(rooms, room)
	}
	return rooms, rows.Err()
}
