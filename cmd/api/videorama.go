package main

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"pnptv/internal/rbac"
	"pnptv/internal/store"
)

type CollectionItemPayload struct {
	Title    string         `json:"title" validate:"required"`
	URL      string         `json:"url" validate:"required,url"`
	Duration int            `json:"duration,omitempty"`
	Meta     map[string]any `json:"meta,omitempty"`
}

type CreateCollectionPayload struct {
	Title       string                  `json:"title" validate:"required,min=2,max=120"`
	Description string                  `json:"description" validate:"required"`
	Type        string                  `json:"type" validate:"required,oneof=PLAYLIST PODCAST"`
	Visibility  string                  `json:"visibility" validate:"required,oneof=PUBLIC PRIME"`
	Items       []CollectionItemPayload `json:"items" validate:"dive"`
}

type UpdateCollectionPayload struct {
	Title       string `json:"title" validate:"required,min=2,max=120"`
	Description string `json:"description" validate:"required"`
}

func collectionResource(c *store.Collection, sess *session) *rbac.ResourceContext {
	return &rbac.ResourceContext{
		OwnerID:     strconv.FormatInt(c.OwnerID, 10),
		RequesterID: strconv.FormatInt(sess.User.ID, 10),
		Visibility:  c.Visibility,
	}
}

func (app *application) getCollectionsHandler(w http.ResponseWriter, r *http.Request) {
	sess := getSessionFromContext(r)

	visibilities := []rbac.Visibility{rbac.VisibilityPublic}
	if rbac.CanAccessVideorama(sess.Role, rbac.VisibilityPrime) {
		visibilities = append(visibilities, rbac.VisibilityPrime)
	}

	collections, err := app.store.Collections.List(r.Context(), visibilities)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, collections); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) createCollectionHandler(w http.ResponseWriter, r *http.Request) {
	sess := getSessionFromContext(r)

	if !rbac.Can(sess.Role, rbac.VideoramaCreate, nil) {
		app.forbiddenResponse(w, r)
		return
	}

	var payload CreateCollectionPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	items := make([]store.CollectionItem, 0, len(payload.Items))
	for _, item := range payload.Items {
		items = append(items, store.CollectionItem{
			Title:    item.Title,
			URL:      item.URL,
			Duration: item.Duration,
			Meta:     item.Meta,
		})
	}

	collection := &store.Collection{
		Title:       payload.Title,
		Description: payload.Description,
		Type:        store.CollectionType(payload.Type),
		Visibility:  rbac.Visibility(payload.Visibility),
		OwnerID:     sess.User.ID,
		Items:       items,
	}

	if err := app.store.Collections.Create(r.Context(), collection); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusCreated, collection); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) updateCollectionHandler(w http.ResponseWriter, r *http.Request) {
	sess := getSessionFromContext(r)

	collection, err := app.store.Collections.GetByID(r.Context(), chi.URLParam(r, "collectionID"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			app.notFoundResponse(w, r)
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	if !rbac.Can(sess.Role, rbac.VideoramaEditAny, nil) &&
		!rbac.Can(sess.Role, rbac.VideoramaEditOwn, collectionResource(collection, sess)) {
		app.forbiddenResponse(w, r)
		return
	}

	var payload UpdateCollectionPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := app.store.Collections.Update(r.Context(), collection.ID, payload.Title, payload.Description); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	collection.Title = payload.Title
	collection.Description = payload.Description

	if err := app.jsonResponse(w, http.StatusOK, collection); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) deleteCollectionHandler(w http.ResponseWriter, r *http.Request) {
	sess := getSessionFromContext(r)

	collection, err := app.store.Collections.GetByID(r.Context(), chi.URLParam(r, "collectionID"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			app.notFoundResponse(w, r)
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	if !rbac.Can(sess.Role, rbac.VideoramaDeleteAny, nil) &&
		!rbac.Can(sess.Role, rbac.VideoramaDeleteOwn, collectionResource(collection, sess)) {
		app.forbiddenResponse(w, r)
		return
	}

	if err := app.store.Collections.Delete(r.Context(), collection.ID); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, map[string]bool{"deleted": true}); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) playCollectionHandler(w http.ResponseWriter, r *http.Request) {
	sess := getSessionFromContext(r)

	collection, err := app.store.Collections.GetByID(r.Context(), chi.URLParam(r, "collectionID"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			app.notFoundResponse(w, r)
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	if !rbac.CanAccessVideorama(sess.Role, collection.Visibility) {
		app.forbiddenResponse(w, r)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, collection); err != nil {
		app.internalServerError(w, r, err)
	}
}
