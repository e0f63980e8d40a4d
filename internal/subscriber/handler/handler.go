// Package handler is the thin HTTP layer over the subscriber service. It
// owns request parsing and response mapping; record rules live in the
// validation package and storage in the store.
package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"coregw/internal/subscriber/models"
	"coregw/internal/subscriber/store"
	dErrors "coregw/pkg/domain-errors"
	"coregw/pkg/platform/httputil"
	"coregw/pkg/requestcontext"
)

const defaultListLimit = 100

// Service defines the interface for subscriber operations.
type Service interface {
	List(ctx context.Context, filter store.Filter, limit, offset int) ([]*models.SubscriberRecord, error)
	Register(ctx context.Context, rec *models.SubscriberRecord) (*models.SubscriberRecord, error)
	Replace(ctx context.Context, imsi string, rec *models.SubscriberRecord) error
	Delete(ctx context.Context, imsi string) error
}

// Handler handles the subscriber management endpoints.
type Handler struct {
	logger      *slog.Logger
	subscribers Service
}

func New(subscribers Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, subscribers: subscribers}
}

// Register registers the subscriber routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/core/subscribers", h.handleList)
	r.Post("/core/subscriber", h.handleRegister)
	r.Put("/core/subscribers/{imsi}", h.handleReplace)
	r.Delete("/core/subscribers/{imsi}", h.handleDelete)
}

type statusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	IMSI    string `json:"imsi,omitempty"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	filter := store.Filter{
		Name: q.Get("name"),
		Sd:   q.Get("sd"),
	}
	if raw := q.Get("sst"); raw != "" {
		sst, err := strconv.Atoi(raw)
		if err != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "sst must be an integer"))
			return
		}
		filter.Sst = &sst
	}

	limit, err := intParam(q.Get("limit"), defaultListLimit)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "limit must be an integer"))
		return
	}
	offset, err := intParam(q.Get("offset"), 0)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "offset must be an integer"))
		return
	}

	records, err := h.subscribers.List(ctx, filter, limit, offset)
	if err != nil {
		h.writeServiceError(w, r, "list subscribers failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, records)
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var rec models.SubscriberRecord
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	created, err := h.subscribers.Register(ctx, &rec)
	if err != nil {
		h.writeServiceError(w, r, "register subscriber failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, statusResponse{
		Status: "success",
		IMSI:   created.IMSI,
	})
}

func (h *Handler) handleReplace(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	imsi := chi.URLParam(r, "imsi")

	var rec models.SubscriberRecord
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	if err := h.subscribers.Replace(ctx, imsi, &rec); err != nil {
		h.writeServiceError(w, r, "replace subscriber failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, statusResponse{
		Status:  "success",
		Message: fmt.Sprintf("Subscriber %s updated", imsi),
	})
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	imsi := chi.URLParam(r, "imsi")

	if err := h.subscribers.Delete(ctx, imsi); err != nil {
		h.writeServiceError(w, r, "delete subscriber failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, statusResponse{
		Status:  "success",
		Message: fmt.Sprintf("Subscriber %s deleted", imsi),
	})
}

func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	ctx := r.Context()
	switch dErrors.CodeOf(err) {
	case dErrors.CodeValidation, dErrors.CodeBadRequest, dErrors.CodeDuplicateKey, dErrors.CodeNotFound:
		h.logger.WarnContext(ctx, msg,
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
	default:
		h.logger.ErrorContext(ctx, msg,
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
	}
	httputil.WriteError(w, err)
}

func intParam(raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}
