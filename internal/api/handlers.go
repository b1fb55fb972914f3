package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/dariomolina/cintelink-challenge/internal/fanout"
	"github.com/dariomolina/cintelink-challenge/internal/notification"
	"github.com/dariomolina/cintelink-challenge/internal/store"
	"github.com/dariomolina/cintelink-challenge/pkg/logger"
)

type handlers struct {
	engine *fanout.Engine
	store  store.Store
	logger *slog.Logger
}

func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type createTagRequest struct {
	Name string `json:"name"`
}

func (h *handlers) createTag(w http.ResponseWriter, r *http.Request) {
	var req createTagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	tag, err := h.engine.CreateTag(r.Context(), req.Name)
	switch {
	case errors.Is(err, store.ErrEmptyTagName):
		writeError(w, http.StatusUnprocessableEntity, "tag name must not be empty")
	case errors.Is(err, store.ErrDuplicateTag):
		writeError(w, http.StatusConflict, "tag name already exists")
	case err != nil:
		h.serverError(w, r, err)
	default:
		writeJSON(w, http.StatusCreated, tag)
	}
}

type createSubscriptionRequest struct {
	TagID int64 `json:"tag_id"`
}

func (h *handlers) createSubscription(w http.ResponseWriter, r *http.Request) {
	var req createSubscriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	sub, err := h.engine.Subscribe(r.Context(), userIDFromContext(r.Context()), req.TagID)
	switch {
	case errors.Is(err, store.ErrTagNotFound):
		writeError(w, http.StatusNotFound, "tag not found")
	case err != nil:
		h.serverError(w, r, err)
	default:
		// A duplicate subscription lands here too: the engine absorbs it
		// as an idempotent no-op.
		writeJSON(w, http.StatusCreated, sub)
	}
}

func (h *handlers) deleteSubscription(w http.ResponseWriter, r *http.Request) {
	subID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid subscription id")
		return
	}

	err = h.engine.Unsubscribe(r.Context(), userIDFromContext(r.Context()), subID)
	switch {
	case errors.Is(err, store.ErrSubscriptionNotFound):
		writeError(w, http.StatusNotFound, "subscription not found")
	case err != nil:
		h.serverError(w, r, err)
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

type publishRequest struct {
	TagID   int64  `json:"tag_id"`
	Message string `json:"message"`
}

func (h *handlers) publishNotification(w http.ResponseWriter, r *http.Request) {
	var req publishRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	notif, err := h.engine.Publish(r.Context(), req.TagID, req.Message)
	switch {
	case errors.Is(err, fanout.ErrEmptyMessage):
		writeError(w, http.StatusUnprocessableEntity, "message must not be empty")
	case errors.Is(err, store.ErrTagNotFound):
		writeError(w, http.StatusNotFound, "tag not found")
	case err != nil:
		h.serverError(w, r, err)
	default:
		writeJSON(w, http.StatusCreated, notif)
	}
}

func (h *handlers) listNotifications(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r.Context())

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))
	if pageSize <= 0 {
		pageSize = notification.DefaultPageSize
	}

	// The HTTP list hides soft-deleted records; the socket list keeps
	// them so existing clients can render their own trash state.
	opts := store.ListOptions{ExcludeDeleted: true}

	count, err := h.store.CountUserNotifications(r.Context(), userID, opts)
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	p := notification.ResolvePage(count, page, pageSize)
	opts.Limit = pageSize
	opts.Offset = p.Start
	rows, err := h.store.ListUserNotifications(r.Context(), userID, opts)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	if rows == nil {
		rows = []notification.UserNotificationView{}
	}

	if unread, err := h.store.CountUnread(r.Context(), userID); err == nil {
		w.Header().Set("X-Unread-Count", strconv.Itoa(unread))
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"data":        rows,
		"total_pages": p.TotalPages,
	})
}

func (h *handlers) serverError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.LogAttrs(r.Context(), slog.LevelError, "request failed",
		slog.String("path", r.URL.Path),
		logger.Error(err),
	)
	writeError(w, http.StatusInternalServerError, "internal error")
}
