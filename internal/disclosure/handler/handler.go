package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"homedisclose/internal/disclosure/models"
	"homedisclose/pkg/domain"
	dErrors "homedisclose/pkg/domain-errors"
	"homedisclose/pkg/platform/httputil"
	"homedisclose/pkg/platform/middleware/request"
	"homedisclose/pkg/requestcontext"
)

// Service defines the seller-side disclosure operations.
type Service interface {
	GetOrCreate(ctx context.Context, propertyID domain.PropertyID, caller domain.UserID) (*models.Document, error)
	Get(ctx context.Context, id domain.DocumentID, caller domain.UserID) (*models.Document, error)
	UpdateHeader(ctx context.Context, id domain.DocumentID, caller domain.UserID, header models.Header) (*models.Document, error)
	SaveSection(ctx context.Context, id domain.DocumentID, caller domain.UserID, key models.SectionKey, value models.SectionValue) (*models.Document, error)
	Validation(ctx context.Context, id domain.DocumentID, caller domain.UserID) (*models.Readiness, error)
	Complete(ctx context.Context, id domain.DocumentID, caller domain.UserID) (*models.Document, error)
	Sign(ctx context.Context, id domain.DocumentID, caller requestcontext.Identity, in models.SignatureInput) (*models.Document, error)
	AddAttachment(ctx context.Context, id domain.DocumentID, caller domain.UserID, in models.AttachmentInput) (*models.Attachment, error)
	RemoveAttachment(ctx context.Context, id domain.DocumentID, caller domain.UserID, attachmentID domain.AttachmentID) error
	GeneratePDF(ctx context.Context, id domain.DocumentID, caller domain.UserID) (*models.Document, error)
}

// Handler serves the seller's disclosure routes.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the seller routes. r must already require authentication.
func (h *Handler) Register(r chi.Router) {
	r.Get("/properties/{propertyID}/disclosure", h.handleGetOrCreate)
	r.Get("/disclosures/{documentID}", h.handleGet)
	r.Put("/disclosures/{documentID}/header", h.handleUpdateHeader)
	r.Put("/disclosures/{documentID}/sections/{section}", h.handleSaveSection)
	r.Get("/disclosures/{documentID}/validation", h.handleValidation)
	r.Post("/disclosures/{documentID}/complete", h.handleComplete)
	r.Post("/disclosures/{documentID}/sign", h.handleSign)
	r.Post("/disclosures/{documentID}/attachments", h.handleAddAttachment)
	r.Delete("/disclosures/{documentID}/attachments/{attachmentID}", h.handleRemoveAttachment)
	r.Post("/disclosures/{documentID}/pdf", h.handleGeneratePDF)
}

func (h *Handler) handleGetOrCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	propertyID, err := domain.ParsePropertyID(chi.URLParam(r, "propertyID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	doc, err := h.service.GetOrCreate(ctx, propertyID, requestcontext.UserID(ctx))
	if err != nil {
		h.writeError(ctx, w, "failed to open disclosure", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, doc)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := h.documentID(w, r)
	if !ok {
		return
	}
	doc, err := h.service.Get(ctx, id, requestcontext.UserID(ctx))
	if err != nil {
		h.writeError(ctx, w, "failed to load disclosure", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, doc)
}

func (h *Handler) handleUpdateHeader(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := h.documentID(w, r)
	if !ok {
		return
	}
	var header models.Header
	if err := httputil.DecodeJSON(r, &header); err != nil {
		httputil.WriteError(w, err)
		return
	}
	doc, err := h.service.UpdateHeader(ctx, id, requestcontext.UserID(ctx), header)
	if err != nil {
		h.writeError(ctx, w, "failed to update header", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, doc)
}

func (h *Handler) handleSaveSection(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := h.documentID(w, r)
	if !ok {
		return
	}
	key, err := models.ParseSectionKey(chi.URLParam(r, "section"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var req SaveSectionRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	value, err := req.Value()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	doc, err := h.service.SaveSection(ctx, id, requestcontext.UserID(ctx), key, value)
	if err != nil {
		h.writeError(ctx, w, "failed to save section", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, doc)
}

func (h *Handler) handleValidation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := h.documentID(w, r)
	if !ok {
		return
	}
	readiness, err := h.service.Validation(ctx, id, requestcontext.UserID(ctx))
	if err != nil {
		h.writeError(ctx, w, "failed to validate disclosure", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, readiness)
}

func (h *Handler) handleComplete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := h.documentID(w, r)
	if !ok {
		return
	}
	doc, err := h.service.Complete(ctx, id, requestcontext.UserID(ctx))
	if err != nil {
		h.writeError(ctx, w, "failed to complete disclosure", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, doc)
}

func (h *Handler) handleSign(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := h.documentID(w, r)
	if !ok {
		return
	}
	var req SignRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	doc, err := h.service.Sign(ctx, id, requestcontext.Caller(ctx), req.Input())
	if err != nil {
		h.writeError(ctx, w, "failed to sign disclosure", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, doc)
}

func (h *Handler) handleAddAttachment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := h.documentID(w, r)
	if !ok {
		return
	}
	var req AttachmentRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	att, err := h.service.AddAttachment(ctx, id, requestcontext.UserID(ctx), req.Input())
	if err != nil {
		h.writeError(ctx, w, "failed to add attachment", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, att)
}

func (h *Handler) handleRemoveAttachment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := h.documentID(w, r)
	if !ok {
		return
	}
	attachmentID, err := domain.ParseAttachmentID(chi.URLParam(r, "attachmentID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.service.RemoveAttachment(ctx, id, requestcontext.UserID(ctx), attachmentID); err != nil {
		h.writeError(ctx, w, "failed to remove attachment", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleGeneratePDF(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := h.documentID(w, r)
	if !ok {
		return
	}
	doc, err := h.service.GeneratePDF(ctx, id, requestcontext.UserID(ctx))
	if err != nil {
		h.writeError(ctx, w, "failed to generate pdf", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"pdf_url":          doc.PDFURL,
		"pdf_generated_at": doc.PDFGeneratedAt,
	})
}

func (h *Handler) documentID(w http.ResponseWriter, r *http.Request) (domain.DocumentID, bool) {
	id, err := domain.ParseDocumentID(chi.URLParam(r, "documentID"))
	if err != nil {
		httputil.WriteError(w, err)
		return domain.DocumentID{}, false
	}
	return id, true
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
