package auth

import (
	"time"

	"pnptv/internal/rbac"
)

type Authenticator interface {
	GenerateToken(subject string, role rbac.Role, termsAccepted bool) (string, time.Time, error)
	ValidateToken(token string) (*SessionClaims, error)
}
