package main

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"pnptv/internal/hangouts"
	"pnptv/internal/rbac"
	"pnptv/internal/store"
)

type CreateRoomPayload struct {
	Title      string `json:"title" validate:"required,min=3,max=120"`
	Visibility string `json:"visibility" validate:"required,oneof=PUBLIC PRIVATE"`
}

type JoinRoomPayload struct {
	JoinToken string `json:"joinToken,omitempty"`
}

type RoomResponse struct {
	Room     *store.Room `json:"room"`
	JoinLink *string     `json:"joinLink"`
}

func (app *application) getPublicRoomsHandler(w http.ResponseWriter, r *http.Request) {
	rooms, err := app.store.Rooms.ListPublicOpen(r.Context())
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, rooms); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) createHangoutHandler(w http.ResponseWriter, r *http.Request) {
	sess := getSessionFromContext(r)

	if !rbac.Can(sess.Role, rbac.HangoutsCreate, nil) {
		app.forbiddenResponse(w, r)
		return
	}

	var payload CreateRoomPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	channelName, err := app.channels.ChannelName(sess.User.ID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	room := &store.Room{
		Title:       payload.Title,
		Visibility:  store.RoomVisibility(payload.Visibility),
		HostID:      sess.User.ID,
		ChannelName: channelName,
	}

	// Private rooms get a join token, returned to the host exactly once.
	var joinToken string
	if room.Visibility == store.RoomPrivate {
		token, tokenHash, err := hangouts.NewJoinToken()
		if err != nil {
			app.internalServerError(w, r, err)
			return
		}
		joinToken = token
		room.JoinTokenHash = sql.NullString{String: tokenHash, Valid: true}
	}

	if err := app.store.Rooms.Create(r.Context(), room); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	resp := RoomResponse{Room: room}
	if joinToken != "" {
		link := fmt.Sprintf("/hangouts/room/%s?joinToken=%s", room.ID, joinToken)
		resp.JoinLink = &link
	}

	if err := app.jsonResponse(w, http.StatusCreated, resp); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) joinHangoutHandler(w http.ResponseWriter, r *http.Request) {
	sess := getSessionFromContext(r)

	room, err := app.store.Rooms.GetByID(r.Context(), chi.URLParam(r, "roomID"))
	if err != nil {
		// Missing and closed rooms read the same to the caller.
		if errors.Is(err, store.ErrNotFound) {
			app.forbiddenResponse(w, r)
			return
		}
		app.internalServerError(w, r, err)
		return
	}
	if room.Status != store.RoomOpen {
		app.forbiddenResponse(w, r)
		return
	}

	if room.Visibility == store.RoomPrivate {
		var payload JoinRoomPayload
		if r.ContentLength > 0 {
			if err := readJSON(w, r, &payload); err != nil {
				app.badRequestResponse(w, r, err)
				return
			}
		}
		if payload.JoinToken == "" || !room.JoinTokenHash.Valid ||
			hangouts.HashJoinToken(payload.JoinToken) != room.JoinTokenHash.String {
			app.forbiddenResponse(w, r)
			return
		}
	}

	action := rbac.HangoutsJoinPublic
	if room.Visibility == store.RoomPrivate {
		action = rbac.HangoutsJoinPrivate
	}
	if !rbac.Can(sess.Role, action, nil) {
		app.forbiddenResponse(w, r)
		return
	}

	uid, err := strconv.ParseInt(sess.User.TelegramUserID, 10, 64)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	creds, err := app.rtc.Credentials(room.ChannelName, uid)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	resp := struct {
		Room *store.Room    `json:"room"`
		RTC  RTCCredentials `json:"rtc"`
	}{Room: room, RTC: creds}

	if err := app.jsonResponse(w, http.StatusOK, resp); err != nil {
		app.internalServerError(w, r, err)
	}
}
