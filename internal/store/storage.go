package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"pnptv/internal/rbac"
)

var (
	ErrNotFound          = errors.New("resource not found")
	QueryTimeoutDuration = time.Second * 5
)

type Storage struct {
	Users interface {
		Upsert(context.Context, *User) error
		GetByTelegramID(context.Context, string) (*User, error)
		AcceptTerms(context.Context, int64) error
	}
	Memberships interface {
		GetLatestForUser(context.Context, int64) (*Membership, error)
	}
	Rooms interface {
		Create(context.Context, *Room) error
		GetByID(context.Context, string) (*Room, error)
		ListPublicOpen(context.Context) ([]Room, error)
	}
	Collections interface {
		Create(context.Context, *Collection) error
		GetByID(context.Context, string) (*Collection, error)
		List(context.Context, []rbac.Visibility) ([]Collection, error)
		Update(context.Context, string, string, string) error
		Delete(context.Context, string) error
	}
}

func NewStorage(db *pgxpool.Pool) Storage {
	return Storage{
		Users:       &UsersStore{db},
		Memberships: &MembershipsStore{db},
		Rooms:       &RoomsStore{db},
		Collections: &CollectionsStore{db},
	}
}
