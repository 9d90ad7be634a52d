package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// MinBotTokenLength is the minimum bot token size. Anything shorter is a
// deployment mistake and fatal at startup.
const MinBotTokenLength = 10

// DefaultAuthDateMaxAge bounds how old (or future-dated) a login-widget
// assertion may be.
const DefaultAuthDateMaxAge = 300 * time.Second

// TelegramLogin is the assertion posted by the Telegram login widget. It is
// consumed once per login attempt and never persisted.
type TelegramLogin struct {
	ID        int64  `json:"id" validate:"required"`
	Username  string `json:"username,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	PhotoURL  string `json:"photo_url,omitempty"`
	AuthDate  int64  `json:"auth_date" validate:"required"`
	Hash      string `json:"hash" validate:"required"`
}

// TelegramAuthenticator verifies login-widget assertions against the bot
// token shared with Telegram.
type TelegramAuthenticator struct {
	secretKey [sha256.Size]byte
	maxAge    time.Duration
}

func NewTelegramAuthenticator(botToken string, maxAge time.Duration) (*TelegramAuthenticator, error) {
	if len(botToken) < MinBotTokenLength {
		return nil, fmt.Errorf("bot token must be at least %d characters", MinBotTokenLength)
	}
	if maxAge <= 0 {
		maxAge = DefaultAuthDateMaxAge
	}
	return &TelegramAuthenticator{
		// The widget scheme keys the HMAC with SHA-256 of the bot token.
		secretKey: sha256.Sum256([]byte(botToken)),
		maxAge:    maxAge,
	}, nil
}

// Verify checks the assertion's HMAC-SHA256 over its data-check string.
// Malformed input verifies as false, it never errors.
func (t *TelegramAuthenticator) Verify(p *TelegramLogin) bool {
	if p == nil || p.Hash == "" {
		return false
	}

	mac := hmac.New(sha256.New, t.secretKey[:])
	mac.Write([]byte(dataCheckString(p)))
	sum := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(sum), []byte(strings.ToLower(p.Hash)))
}

// dataCheckString serializes every present field except hash as key=value
// lines sorted lexicographically by key. Optional fields the widget did not
// send are omitted entirely.
func dataCheckString(p *TelegramLogin) string {
	pairs := []string{
		"auth_date=" + strconv.FormatInt(p.AuthDate, 10),
		"id=" + strconv.FormatInt(p.ID, 10),
	}
	if p.Username != "" {
		pairs = append(pairs, "username="+p.Username)
	}
	if p.FirstName != "" {
		pairs = append(pairs, "first_name="+p.FirstName)
	}
	if p.PhotoURL != "" {
		pairs = append(pairs, "photo_url="+p.PhotoURL)
	}
	sort.Strings(pairs)
	return strings.Join(pairs, "\n")
}

// IsFresh reports whether auth_date falls within the configured window on
// either side of now. Future-dated assertions are rejected too.
func (t *TelegramAuthenticator) IsFresh(authDate int64) bool {
	diff := time.Now().Unix() - authDate
	if diff < 0 {
		diff = -diff
	}
	return diff <= int64(t.maxAge/time.Second)
}
