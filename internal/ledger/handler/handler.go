package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"homedisclose/internal/ledger/models"
	"homedisclose/pkg/domain"
	dErrors "homedisclose/pkg/domain-errors"
	"homedisclose/pkg/platform/httputil"
	"homedisclose/pkg/platform/middleware/request"
	"homedisclose/pkg/requestcontext"
)

// Service defines the ledger read operations exposed over HTTP.
type Service interface {
	Summary(ctx context.Context, documentID domain.DocumentID, caller domain.UserID) (*models.Summary, error)
	Timeline(ctx context.Context, documentID domain.DocumentID, caller domain.UserID, q models.TimelineQuery) (*models.TimelinePage, error)
	ShareAnalytics(ctx context.Context, documentID domain.DocumentID, caller domain.UserID) ([]models.ShareBucket, error)
	Drift(ctx context.Context, documentID domain.DocumentID, caller domain.UserID) (*models.DriftReport, error)
}

// Handler serves seller analytics over a document's ledger.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the analytics routes. r must already require authentication.
func (h *Handler) Register(r chi.Router) {
	r.Get("/disclosures/{documentID}/analytics/summary", h.handleSummary)
	r.Get("/disclosures/{documentID}/analytics/timeline", h.handleTimeline)
	r.Get("/disclosures/{documentID}/analytics/shares", h.handleShareAnalytics)
	r.Get("/disclosures/{documentID}/analytics/drift", h.handleDrift)
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	documentID, ok := h.documentID(w, r)
	if !ok {
		return
	}
	summary, err := h.service.Summary(ctx, documentID, requestcontext.UserID(ctx))
	if err != nil {
		h.writeError(ctx, w, "failed to load ledger summary", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, summary)
}

func (h *Handler) handleTimeline(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	documentID, ok := h.documentID(w, r)
	if !ok {
		return
	}
	q, err := parseTimelineQuery(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	page, err := h.service.Timeline(ctx, documentID, requestcontext.UserID(ctx), q)
	if err != nil {
		h.writeError(ctx, w, "failed to load ledger timeline", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, page)
}

func (h *Handler) handleShareAnalytics(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	documentID, ok := h.documentID(w, r)
	if !ok {
		return
	}
	buckets, err := h.service.ShareAnalytics(ctx, documentID, requestcontext.UserID(ctx))
	if err != nil {
		h.writeError(ctx, w, "failed to load share analytics", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"shares": buckets})
}

func (h *Handler) handleDrift(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	documentID, ok := h.documentID(w, r)
	if !ok {
		return
	}
	report, err := h.service.Drift(ctx, documentID, requestcontext.UserID(ctx))
	if err != nil {
		h.writeError(ctx, w, "failed to load drift report", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, report)
}

func (h *Handler) documentID(w http.ResponseWriter, r *http.Request) (domain.DocumentID, bool) {
	documentID, err := domain.ParseDocumentID(chi.URLParam(r, "documentID"))
	if err != nil {
		httputil.WriteError(w, err)
		return domain.DocumentID{}, false
	}
	return documentID, true
}

func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, msg,
			"request_id", request.GetRequestID(ctx),
			"error", err,
		)
	}
	httputil.WriteError(w, err)
}

func parseTimelineQuery(r *http.Request) (models.TimelineQuery, error) {
	var q models.TimelineQuery
	values := r.URL.Query()
	if v := values.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return q, dErrors.New(dErrors.CodeInvalidInput, "limit must be an integer")
		}
		q.Limit = n
	}
	if v := values.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return q, dErrors.New(dErrors.CodeInvalidInput, "offset must be an integer")
		}
		q.Offset = n
	}
	if v := values.Get("types"); v != "" {
		for _, t := range strings.Split(v, ",") {
			if t = strings.TrimSpace(t); t != "" {
				q.Types = append(q.Types, models.EventType(t))
			}
		}
	}
	return q, nil
}
