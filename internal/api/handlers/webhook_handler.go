package handlers

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog/hlog"

	apiContext "hookreg/internal/api/context"
	"hookreg/internal/api/middleware"
	"hookreg/internal/engine/subscriptions"
	"hookreg/internal/pkg/errors"
	"hookreg/internal/platform/audit"
)

// maxBodyBytes bounds webhook request bodies.
const maxBodyBytes = 1 << 20

type WebhookHandler struct {
	svc *subscriptions.Service
}

func NewWebhookHandler(svc *subscriptions.Service) *WebhookHandler {
	return &WebhookHandler{svc: svc}
}

func (h *WebhookHandler) List(w http.ResponseWriter, r *http.Request) {
	webhooks, err := h.svc.List(r.Context(), callerFrom(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	errors.WriteJSON(w, http.StatusOK, webhooks)
}

func (h *WebhookHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req subscriptions.Input
	if !decodeBody(w, r, &req, false) {
		return
	}

	webhook, err := h.svc.Create(auditContext(r), callerFrom(r), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	errors.WriteJSON(w, http.StatusCreated, webhook)
}

func (h *WebhookHandler) Get(w http.ResponseWriter, r *http.Request) {
	webhook, err := h.svc.Get(r.Context(), callerFrom(r), webhookID(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	errors.WriteJSON(w, http.StatusOK, webhook)
}

// Replace handles PUT.
func (h *WebhookHandler) Replace(w http.ResponseWriter, r *http.Request) {
	if !h.visible(w, r) {
		return
	}

	var req subscriptions.Input
	if !decodeBody(w, r, &req, false) {
		return
	}

	webhook, err := h.svc.Replace(auditContext(r), callerFrom(r), webhookID(r), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	errors.WriteJSON(w, http.StatusOK, webhook)
}

// Update handles PATCH. An empty body changes nothing.
func (h *WebhookHandler) Update(w http.ResponseWriter, r *http.Request) {
	if !h.visible(w, r) {
		return
	}

	var req subscriptions.Patch
	if !decodeBody(w, r, &req, true) {
		return
	}

	webhook, err := h.svc.Update(auditContext(r), callerFrom(r), webhookID(r), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	errors.WriteJSON(w, http.StatusOK, webhook)
}

func (h *WebhookHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(auditContext(r), callerFrom(r), webhookID(r)); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// visible writes the lookup error when the id is not in the caller's
// organization. It runs before the body is read so a foreign id is a 404
// whatever the body holds.
func (h *WebhookHandler) visible(w http.ResponseWriter, r *http.Request) bool {
	if _, err := h.svc.Get(r.Context(), callerFrom(r), webhookID(r)); err != nil {
		writeServiceError(w, r, err)
		return false
	}
	return true
}

// callerFrom returns nil when no tenant was resolved, which the service
// reports as unauthorized.
func callerFrom(r *http.Request) *subscriptions.Caller {
	tenant, ok := r.Context().Value(apiContext.Tenant).(*middleware.TenantContext)
	if !ok || tenant == nil {
		return nil
	}
	return &subscriptions.Caller{UserID: tenant.UserID, OrganizationID: tenant.OrgID}
}

func webhookID(r *http.Request) string {
	params, _ := r.Context().Value(apiContext.Params).(httprouter.Params)
	return params.ByName("webhook_id")
}

func auditContext(r *http.Request) context.Context {
	return audit.WithRequest(r.Context(), r)
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}, allowEmpty bool) bool {
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(dst)
	if err == nil || (allowEmpty && stderrors.Is(err, io.EOF)) {
		return true
	}

	var typeErr *json.UnmarshalTypeError
	if stderrors.As(err, &typeErr) && typeErr.Field != "" {
		verr := subscriptions.NewValidationError(typeErr.Field, "Incorrect type. Expected "+typeErr.Type.String()+".")
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, verr.Error(), verr.Fields)
		return false
	}
	errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
	return false
}

func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *subscriptions.ValidationError
	switch {
	case stderrors.Is(err, subscriptions.ErrUnauthorized):
		errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "Authentication credentials were not provided", nil)
	case stderrors.Is(err, subscriptions.ErrNotFound):
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Webhook not found", nil)
	case stderrors.As(err, &verr):
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid webhook", verr.Fields)
	default:
		hlog.FromRequest(r).Error().Err(err).Msg("webhook operation failed")
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Internal server error", nil)
	}
}
