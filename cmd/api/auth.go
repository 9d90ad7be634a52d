package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"time"

	"pnptv/internal/auth"
	"pnptv/internal/rbac"
	"pnptv/internal/store"
)

type TelegramUser struct {
	ID        int64  `json:"id"`
	Username  string `json:"username,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	PhotoURL  string `json:"photo_url,omitempty"`
}

type SessionResponse struct {
	AccessToken   string       `json:"accessToken"`
	ExpiresAt     time.Time    `json:"expiresAt"`
	Role          rbac.Role    `json:"role"`
	TermsAccepted bool         `json:"termsAccepted"`
	TelegramUser  TelegramUser `json:"telegramUser"`
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func sessionResponse(token string, expiresAt time.Time, role rbac.Role, user *store.User) SessionResponse {
	id, _ := strconv.ParseInt(user.TelegramUserID, 10, 64)
	return SessionResponse{
		AccessToken:   token,
		ExpiresAt:     expiresAt,
		Role:          role,
		TermsAccepted: user.HasAcceptedTerms(),
		TelegramUser: TelegramUser{
			ID:        id,
			Username:  user.Username.String,
			FirstName: user.FirstName.String,
			PhotoURL:  user.PhotoURL.String,
		},
	}
}

// resolveEffectiveRole combines the stored base role with the latest
// membership record. Lookup failures propagate; the role is never defaulted
// on error.
func (app *application) resolveEffectiveRole(ctx context.Context, user *store.User) (rbac.Role, error) {
	m, err := app.store.Memberships.GetLatestForUser(ctx, user.ID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return "", err
	}
	return rbac.ResolveRole(user.Role, m.Resolution(), time.Now()), nil
}

// telegramLoginHandler validates a login-widget assertion and, on success,
// issues a session token. A rejected assertion creates no state at all.
func (app *application) telegramLoginHandler(w http.ResponseWriter, r *http.Request) {
	var payload auth.TelegramLogin
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if !app.telegram.IsFresh(payload.AuthDate) {
		app.unauthorizedErrorResponse(w, r, errors.New("auth date outside freshness window"))
		return
	}

	if !app.telegram.Verify(&payload) {
		app.unauthorizedErrorResponse(w, r, errors.New("telegram hash mismatch"))
		return
	}

	ctx := r.Context()

	user := &store.User{
		TelegramUserID: strconv.FormatInt(payload.ID, 10),
		Username:       nullString(payload.Username),
		FirstName:      nullString(payload.FirstName),
		PhotoURL:       nullString(payload.PhotoURL),
	}
	if err := app.store.Users.Upsert(ctx, user); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	role, err := app.resolveEffectiveRole(ctx, user)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	token, expiresAt, err := app.authenticator.GenerateToken(user.TelegramUserID, role, user.HasAcceptedTerms())
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, sessionResponse(token, expiresAt, role, user)); err != nil {
		app.internalServerError(w, r, err)
	}
}

// authMeHandler re-resolves the effective role from ground truth and issues
// a fresh token, so a session can adopt a role change before its old token
// expires.
func (app *application) authMeHandler(w http.ResponseWriter, r *http.Request) {
	sess := getSessionFromContext(r)

	role, err := app.resolveEffectiveRole(r.Context(), sess.User)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	token, expiresAt, err := app.authenticator.GenerateToken(sess.User.TelegramUserID, role, sess.User.HasAcceptedTerms())
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, sessionResponse(token, expiresAt, role, sess.User)); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) acceptTermsHandler(w http.ResponseWriter, r *http.Request) {
	sess := getSessionFromContext(r)

	if err := app.store.Users.AcceptTerms(r.Context(), sess.User.ID); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, map[string]bool{"accepted": true}); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) logoutHandler(w http.ResponseWriter, r *http.Request) {
	// Sessions are stateless; the client just drops its token.
	if err := app.jsonResponse(w, http.StatusOK, map[string]bool{"ok": true}); err != nil {
		app.internalServerError(w, r, err)
	}
}
