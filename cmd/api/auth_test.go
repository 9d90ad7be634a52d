package main

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func postTelegramLogin(app *application, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/v1/auth/telegram", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	app.mount().ServeHTTP(res, req)
	return res
}

func TestTelegramLoginRejectsBadHash(t *testing.T) {
	users := &stubUsers{}
	app := newTestApp(t, users, nil)

	body := fmt.Sprintf(`{"id":123,"username":"user","auth_date":%d,"hash":"deadbeef"}`, time.Now().Unix())
	res := postTelegramLogin(app, body)

	assert.Equal(t, http.StatusUnauthorized, res.Code)
	// A rejected assertion must not create any state.
	assert.False(t, users.upserted)
}

func TestTelegramLoginRejectsStaleAssertion(t *testing.T) {
	users := &stubUsers{}
	app := newTestApp(t, users, nil)

	body := fmt.Sprintf(`{"id":123,"username":"user","auth_date":%d,"hash":"deadbeef"}`, time.Now().Unix()-600)
	res := postTelegramLogin(app, body)

	assert.Equal(t, http.StatusUnauthorized, res.Code)
	assert.False(t, users.upserted)
}

func TestTelegramLoginRejectsInvalidPayload(t *testing.T) {
	app := newTestApp(t, &stubUsers{}, nil)

	res := postTelegramLogin(app, `{"username":"user"}`)
	assert.Equal(t, http.StatusBadRequest, res.Code)
}
