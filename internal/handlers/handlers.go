// Package handlers implements the HTTP API.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/formshift/formshift/internal/analytics"
	"github.com/formshift/formshift/internal/httputil"
	"github.com/formshift/formshift/internal/logging"
	"github.com/formshift/formshift/internal/models"
	"github.com/formshift/formshift/internal/repository"
	"github.com/formshift/formshift/internal/service"
)

// Version is reported by the banner and health endpoints.
const Version = "1.0.2"

// maxRequestBody bounds JSON request bodies.
const maxRequestBody = 1 << 20

// Service is the application surface the handlers depend on.
type Service interface {
	Translate(ctx context.Context, req *models.TranslateRequest) (*models.TranslateResponse, error)
	Forms(ctx context.Context) ([]models.Form, error)
	AddForm(ctx context.Context, req *models.AddFormRequest) (*models.Form, error)
	UpdateForm(ctx context.Context, row int, req *models.AddFormRequest) error
	DeleteForm(ctx context.Context, row int) error
	History(ctx context.Context) ([]*models.HistoryEntry, error)
	Star(ctx context.Context, id string) (int, error)
	Unstar(ctx context.Context, id string) (int, error)
	InterestCount(ctx context.Context, kind string) (int, error)
	RegisterInterest(ctx context.Context, kind string) (int, error)
	SessionReport(ctx context.Context, gap time.Duration) (*analytics.Report, error)
}

// Handler serves the API on top of the service layer.
type Handler struct {
	svc Service
	log *logging.Logger
}

// New creates a Handler.
func New(svc Service, log *logging.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

// Home is the service banner.
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"service": "formshift",
		"version": Version,
		"status":  "running",
	})
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": Version,
	})
}

// Translate handles POST /api/v1/translate.
func (h *Handler) Translate(w http.ResponseWriter, r *http.Request) {
	var req models.TranslateRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.SourceForm == "" || req.TargetForm == "" || req.InputText == "" {
		httputil.WriteError(w, http.StatusBadRequest, "sourceForm, targetForm and inputText are required")
		return
	}

	resp, err := h.svc.Translate(r.Context(), &req)
	if err != nil {
		var formErr *service.UnknownFormError
		if errors.As(err, &formErr) {
			httputil.WriteError(w, http.StatusBadRequest, formErr.Error())
			return
		}
		h.log.ErrorContext(r.Context(), "translation failed", "error", err)
		httputil.WriteError(w, http.StatusBadGateway, "translation failed")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

// ListForms handles GET /api/v1/forms.
func (h *Handler) ListForms(w http.ResponseWriter, r *http.Request) {
	forms, err := h.svc.Forms(r.Context())
	if err != nil {
		h.log.ErrorContext(r.Context(), "failed to list forms", "error", err)
		httputil.WriteError(w, http.StatusInternalServerError, "failed to load form catalog")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.ListFormsResponse{Forms: forms, Count: len(forms)})
}

// AddForm handles POST /api/v1/forms.
func (h *Handler) AddForm(w http.ResponseWriter, r *http.Request) {
	var req models.AddFormRequest
	if !h.decode(w, r, &req) {
		return
	}

	form, err := h.svc.AddForm(r.Context(), &req)
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, form)
}

// UpdateForm handles PUT /api/v1/forms/{row}.
func (h *Handler) UpdateForm(w http.ResponseWriter, r *http.Request) {
	row, _ := strconv.Atoi(mux.Vars(r)["row"])

	var req models.AddFormRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.svc.UpdateForm(r.Context(), row, &req); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			httputil.WriteError(w, http.StatusNotFound, "form not found")
			return
		}
		httputil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// DeleteForm handles DELETE /api/v1/forms/{row}.
func (h *Handler) DeleteForm(w http.ResponseWriter, r *http.Request) {
	row, _ := strconv.Atoi(mux.Vars(r)["row"])

	if err := h.svc.DeleteForm(r.Context(), row); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			httputil.WriteError(w, http.StatusNotFound, "form not found")
			return
		}
		h.log.ErrorContext(r.Context(), "failed to delete form", "row", row, "error", err)
		httputil.WriteError(w, http.StatusInternalServerError, "failed to delete form")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// ListHistory handles GET /api/v1/history.
func (h *Handler) ListHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := h.svc.History(r.Context())
	if err != nil {
		h.log.ErrorContext(r.Context(), "failed to list history", "error", err)
		httputil.WriteError(w, http.StatusInternalServerError, "failed to load history")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.ListHistoryResponse{History: entries, Count: len(entries)})
}

// Star handles POST /api/v1/history/{id}/star.
func (h *Handler) Star(w http.ResponseWriter, r *http.Request) {
	h.adjustStars(w, r, h.svc.Star)
}

// Unstar handles DELETE /api/v1/history/{id}/star.
func (h *Handler) Unstar(w http.ResponseWriter, r *http.Request) {
	h.adjustStars(w, r, h.svc.Unstar)
}

func (h *Handler) adjustStars(w http.ResponseWriter, r *http.Request, apply func(ctx context.Context, id string) (int, error)) {
	id := mux.Vars(r)["id"]

	stars, err := apply(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			httputil.WriteError(w, http.StatusNotFound, "translation not found")
			return
		}
		h.log.ErrorContext(r.Context(), "failed to update stars", "translation_id", id, "error", err)
		httputil.WriteError(w, http.StatusInternalServerError, "failed to update stars")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.StarResponse{ID: id, Stars: stars})
}

// GetInterest handles GET /api/v1/interest/{kind}.
func (h *Handler) GetInterest(w http.ResponseWriter, r *http.Request) {
	kind := mux.Vars(r)["kind"]

	count, err := h.svc.InterestCount(r.Context(), kind)
	if err != nil {
		if errors.Is(err, repository.ErrUnknownKind) {
			httputil.WriteError(w, http.StatusNotFound, "unknown interest kind")
			return
		}
		h.log.ErrorContext(r.Context(), "failed to read interest counter", "kind", kind, "error", err)
		httputil.WriteError(w, http.StatusInternalServerError, "failed to read interest counter")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.InterestResponse{Kind: kind, Counter: count})
}

// RegisterInterest handles POST /api/v1/interest/{kind}.
func (h *Handler) RegisterInterest(w http.ResponseWriter, r *http.Request) {
	kind := mux.Vars(r)["kind"]

	count, err := h.svc.RegisterInterest(r.Context(), kind)
	if err != nil {
		if errors.Is(err, repository.ErrUnknownKind) {
			httputil.WriteError(w, http.StatusNotFound, "unknown interest kind")
			return
		}
		h.log.ErrorContext(r.Context(), "failed to register interest", "kind", kind, "error", err)
		httputil.WriteError(w, http.StatusInternalServerError, "failed to register interest")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.InterestResponse{Kind: kind, Counter: count})
}

// SessionStats handles GET /api/v1/stats/sessions.
func (h *Handler) SessionStats(w http.ResponseWriter, r *http.Request) {
	gap := analytics.DefaultGap
	if raw := r.URL.Query().Get("gap_minutes"); raw != "" {
		minutes, err := strconv.Atoi(raw)
		if err != nil || minutes <= 0 {
			httputil.WriteError(w, http.StatusBadRequest, "gap_minutes must be a positive integer")
			return
		}
		gap = time.Duration(minutes) * time.Minute
	}

	report, err := h.svc.SessionReport(r.Context(), gap)
	if err != nil {
		h.log.ErrorContext(r.Context(), "failed to build session report", "error", err)
		httputil.WriteError(w, http.StatusInternalServerError, "failed to build session report")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, report)
}
