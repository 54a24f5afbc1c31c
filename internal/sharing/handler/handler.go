package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	disclosure "homedisclose/internal/disclosure/models"
	"homedisclose/internal/sharing/models"
	"homedisclose/pkg/domain"
	dErrors "homedisclose/pkg/domain-errors"
	"homedisclose/pkg/platform/httputil"
	"homedisclose/pkg/platform/middleware/request"
	"homedisclose/pkg/requestcontext"
)

// Service defines the share-grant operations exposed over HTTP.
type Service interface {
	Create(ctx context.Context, documentID domain.DocumentID, caller requestcontext.Identity, in models.CreateInput) (*models.CreateResult, error)
	ListForDocument(ctx context.Context, documentID domain.DocumentID, caller domain.UserID) ([]models.SellerShare, error)
	Inbox(ctx context.Context, caller requestcontext.Identity) ([]*models.Share, error)
	ViewAsRecipient(ctx context.Context, shareID domain.ShareID, caller requestcontext.Identity) (*models.SharedDisclosure, error)
	ViewByToken(ctx context.Context, token string) (*models.SharedDisclosure, error)
	AcknowledgeAsRecipient(ctx context.Context, shareID domain.ShareID, caller requestcontext.Identity) (*models.Share, error)
	AcknowledgeByToken(ctx context.Context, token string) (*models.Share, error)
	SignAsRecipient(ctx context.Context, shareID domain.ShareID, caller requestcontext.Identity, in disclosure.SignatureInput) (*models.Share, error)
	SignByToken(ctx context.Context, token string, in disclosure.SignatureInput) (*models.Share, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the seller and buyer routes. r must already require
// authentication.
func (h *Handler) Register(r chi.Router) {
	r.Post("/disclosures/{documentID}/shares", h.handleCreate)
	r.Get("/disclosures/{documentID}/shares", h.handleList)

	r.Get("/shared-disclosures", h.handleInbox)
	r.Get("/shared-disclosures/{shareID}", h.handleView)
	r.Post("/shared-disclosures/{shareID}/acknowledge", h.handleAcknowledge)
	r.Post("/shared-disclosures/{shareID}/sign", h.handleSign)
}

// RegisterPublic mounts the token routes. Authentication is optional; r
// should carry the public rate limit.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Get("/public/disclosures/{token}", h.handleTokenView)
	r.Post("/public/disclosures/{token}/acknowledge", h.handleTokenAcknowledge)
	r.Post("/public/disclosures/{token}/sign", h.handleTokenSign)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	documentID, err := domain.ParseDocumentID(chi.URLParam(r, "documentID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var req CreateShareRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	result, err := h.service.Create(ctx, documentID, requestcontext.Caller(ctx), req.Input())
	if err != nil {
		h.writeError(ctx, w, "failed to share disclosure", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, result)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	documentID, err := domain.ParseDocumentID(chi.URLParam(r, "documentID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	shares, err := h.service.ListForDocument(ctx, documentID, requestcontext.UserID(ctx))
	if err != nil {
		h.writeError(ctx, w, "failed to list shares", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, newShareList(shares))
}

func (h *Handler) handleInbox(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	shares, err := h.service.Inbox(ctx, requestcontext.Caller(ctx))
	if err != nil {
		h.writeError(ctx, w, "failed to list shared disclosures", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, newShareList(shares))
}

func (h *Handler) handleView(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	shareID, ok := h.shareID(w, r)
	if !ok {
		return
	}
	view, err := h.service.ViewAsRecipient(ctx, shareID, requestcontext.Caller(ctx))
	if err != nil {
		h.writeError(ctx, w, "failed to open shared disclosure", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, view)
}

func (h *Handler) handleAcknowledge(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	shareID, ok := h.shareID(w, r)
	if !ok {
		return
	}
	share, err := h.service.AcknowledgeAsRecipient(ctx, shareID, requestcontext.Caller(ctx))
	if err != nil {
		h.writeError(ctx, w, "failed to acknowledge disclosure", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, share)
}

func (h *Handler) handleSign(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	shareID, ok := h.shareID(w, r)
	if !ok {
		return
	}
	var req SignRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	share, err := h.service.SignAsRecipient(ctx, shareID, requestcontext.Caller(ctx), req.Input())
	if err != nil {
		h.writeError(ctx, w, "failed to sign disclosure", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, share)
}

func (h *Handler) handleTokenView(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	view, err := h.service.ViewByToken(ctx, chi.URLParam(r, "token"))
	if err != nil {
		h.writeError(ctx, w, "failed to open shared disclosure", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, view)
}

func (h *Handler) handleTokenAcknowledge(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	share, err := h.service.AcknowledgeByToken(ctx, chi.URLParam(r, "token"))
	if err != nil {
		h.writeError(ctx, w, "failed to acknowledge disclosure", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, share)
}

func (h *Handler) handleTokenSign(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req SignRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	share, err := h.service.SignByToken(ctx, chi.URLParam(r, "token"), req.Input())
	if err != nil {
		h.writeError(ctx, w, "failed to sign disclosure", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, share)
}

func (h *Handler) shareID(w http.ResponseWriter, r *http.Request) (domain.ShareID, bool) {
	id, err := domain.ParseShareID(chi.URLParam(r, "shareID"))
	if err != nil {
		httputil.WriteError(w, err)
		return domain.ShareID{}, false
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
