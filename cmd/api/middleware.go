package main

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"pnptv/internal/rbac"
	"pnptv/internal/store"
)

type sessionKey string

const sessionCtx sessionKey = "session"

// session is the authenticated request state: the live user row plus the
// role snapshot carried by the token. Authorization decisions use the
// snapshot; the terms gate uses the live row.
type session struct {
	User *store.User
	Role rbac.Role
}

func getSessionFromContext(r *http.Request) *session {
	sess, _ := r.Context().Value(sessionCtx).(*session)
	return sess
}

func (app *application) AuthTokenMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			app.unauthorizedErrorResponse(w, r, fmt.Errorf("authorization header is missing"))
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			app.unauthorizedErrorResponse(w, r, fmt.Errorf("authorization header is malformed"))
			return
		}

		claims, err := app.authenticator.ValidateToken(parts[1])
		if err != nil {
			app.unauthorizedErrorResponse(w, r, err)
			return
		}

		ctx := r.Context()

		user, err := app.store.Users.GetByTelegramID(ctx, claims.Subject)
		if err != nil {
			app.unauthorizedErrorResponse(w, r, err)
			return
		}

		ctx = context.WithValue(ctx, sessionCtx, &session{User: user, Role: claims.Role})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireTermsMiddleware sits strictly after authentication and strictly
// before any permission check.
func (app *application) RequireTermsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := getSessionFromContext(r)
		if sess == nil {
			app.unauthorizedErrorResponse(w, r, fmt.Errorf("no session in context"))
			return
		}
		if !sess.User.HasAcceptedTerms() {
			app.termsNotAcceptedResponse(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (app *application) RateLimiterMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if app.config.rateLimiter.Enabled {
			if allow, retryAfter := app.rateLimiter.Allow(r.RemoteAddr); !allow {
				app.rateLimitExceededResponse(w, r, retryAfter.String())
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
