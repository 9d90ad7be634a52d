package main

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"pnptv/internal/auth"
	"pnptv/internal/hangouts"
	"pnptv/internal/rbac"
	"pnptv/internal/store"
)

type stubUsers struct {
	user     *store.User
	upserted bool
}

func (s *stubUsers) Upsert(ctx context.Context, user *store.User) error {
	s.upserted = true
	user.ID = 1
	user.Role = rbac.RoleFree
	return nil
}

func (s *stubUsers) GetByTelegramID(ctx context.Context, telegramUserID string) (*store.User, error) {
	if s.user != nil && s.user.TelegramUserID == telegramUserID {
		return s.user, nil
	}
	return nil, store.ErrNotFound
}

func (s *stubUsers) AcceptTerms(ctx context.Context, userID int64) error {
	return nil
}

type stubMemberships struct{}

func (s *stubMemberships) GetLatestForUser(ctx context.Context, userID int64) (*store.Membership, error) {
	return nil, store.ErrNotFound
}

type stubRooms struct {
	room    *store.Room
	created *store.Room
}

func (s *stubRooms) Create(ctx context.Context, room *store.Room) error {
	s.created = room
	room.Status = store.RoomOpen
	return nil
}

func (s *stubRooms) GetByID(ctx context.Context, id string) (*store.Room, error) {
	if s.room != nil && s.room.ID == id {
		return s.room, nil
	}
	return nil, store.ErrNotFound
}

func (s *stubRooms) ListPublicOpen(ctx context.Context) ([]store.Room, error) { return nil, nil }

type stubCollections struct {
	collection *store.Collection
	deleted    bool
}

func (s *stubCollections) Create(ctx context.Context, c *store.Collection) error { return nil }

func (s *stubCollections) GetByID(ctx context.Context, id string) (*store.Collection, error) {
	if s.collection != nil && s.collection.ID == id {
		return s.collection, nil
	}
	return nil, store.ErrNotFound
}

func (s *stubCollections) List(ctx context.Context, vis []rbac.Visibility) ([]store.Collection, error) {
	return nil, nil
}

func (s *stubCollections) Update(ctx context.Context, id, title, description string) error {
	return nil
}

func (s *stubCollections) Delete(ctx context.Context, id string) error {
	s.deleted = true
	return nil
}

func acceptedTerms() sql.NullTime {
	return sql.NullTime{Time: time.Now().Add(-time.Hour), Valid: true}
}

func newTestApp(t *testing.T, users *stubUsers, collections *stubCollections) *application {
	t.Helper()

	authenticator, err := auth.NewJWTAuthenticator("0123456789abcdef0123456789abcdef", "pnptv", "pnptv", time.Hour)
	require.NoError(t, err)

	telegram, err := auth.NewTelegramAuthenticator("test-token-1234567890", 0)
	require.NoError(t, err)

	channels, err := hangouts.NewChannelNamer("test-salt")
	require.NoError(t, err)

	if collections == nil {
		collections = &stubCollections{}
	}

	return &application{
		config: config{env: "test"},
		logger: zap.NewNop().Sugar(),
		store: store.Storage{
			Users:       users,
			Memberships: &stubMemberships{},
			Rooms:       &stubRooms{},
			Collections: collections,
		},
		authenticator: authenticator,
		telegram:      telegram,
		channels:      channels,
		rtc:           NewHMACRTCProvider("app", "certificate", time.Minute),
	}
}

func bearerToken(t *testing.T, app *application, user *store.User, role rbac.Role) string {
	t.Helper()
	token, _, err := app.authenticator.GenerateToken(user.TelegramUserID, role, user.HasAcceptedTerms())
	require.NoError(t, err)
	return "Bearer " + token
}

func TestAuthTokenMiddlewareRejectsMissingOrBadTokens(t *testing.T) {
	app := newTestApp(t, &stubUsers{}, nil)
	mux := app.mount()

	for name, header := range map[string]string{
		"missing":   "",
		"malformed": "Token abc",
		"garbage":   "Bearer not-a-token",
	} {
		req := httptest.NewRequest(http.MethodGet, "/v1/auth/me", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		res := httptest.NewRecorder()
		mux.ServeHTTP(res, req)
		assert.Equal(t, http.StatusUnauthorized, res.Code, "case %s", name)
	}
}

func TestAuthTokenMiddlewareAcceptsValidToken(t *testing.T) {
	user := &store.User{ID: 1, TelegramUserID: "123", Role: rbac.RoleFree, AcceptedTermsAt: acceptedTerms()}
	app := newTestApp(t, &stubUsers{user: user}, nil)
	mux := app.mount()

	req := httptest.NewRequest(http.MethodGet, "/v1/auth/me", nil)
	req.Header.Set("Authorization", bearerToken(t, app, user, rbac.RoleFree))
	res := httptest.NewRecorder()
	mux.ServeHTTP(res, req)

	assert.Equal(t, http.StatusOK, res.Code)
}

func TestTermsGateBlocksBeforePermissionCheck(t *testing.T) {
	// Authenticated PRIME user who never accepted the terms: the terms gate
	// answers before any permission is evaluated.
	user := &store.User{ID: 1, TelegramUserID: "123", Role: rbac.RoleFree}
	app := newTestApp(t, &stubUsers{user: user}, nil)
	mux := app.mount()

	req := httptest.NewRequest(http.MethodGet, "/v1/videorama/", nil)
	req.Header.Set("Authorization", bearerToken(t, app, user, rbac.RolePrime))
	res := httptest.NewRecorder()
	mux.ServeHTTP(res, req)

	assert.Equal(t, http.StatusForbidden, res.Code)
	assert.Contains(t, res.Body.String(), "terms not accepted")
}

func TestTermsGateRunsAfterAuthentication(t *testing.T) {
	// Same route without credentials is a 401, not a 403.
	app := newTestApp(t, &stubUsers{}, nil)
	mux := app.mount()

	req := httptest.NewRequest(http.MethodGet, "/v1/videorama/", nil)
	res := httptest.NewRecorder()
	mux.ServeHTTP(res, req)

	assert.Equal(t, http.StatusUnauthorized, res.Code)
}

func TestPublicRoomListingNeedsNoAuth(t *testing.T) {
	app := newTestApp(t, &stubUsers{}, nil)
	mux := app.mount()

	req := httptest.NewRequest(http.MethodGet, "/v1/hangouts/", nil)
	res := httptest.NewRecorder()
	mux.ServeHTTP(res, req)

	assert.Equal(t, http.StatusOK, res.Code)
}
