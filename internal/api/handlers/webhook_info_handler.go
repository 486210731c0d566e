package handlers

import (
	"net/http"

	"hookreg/internal/engine/actions"
	"hookreg/internal/pkg/errors"
)

// WebhookInfoHandler publishes the action catalog. It needs no caller.
type WebhookInfoHandler struct {
	catalog *actions.Catalog
}

func NewWebhookInfoHandler(catalog *actions.Catalog) *WebhookInfoHandler {
	return &WebhookInfoHandler{catalog: catalog}
}

func (h *WebhookInfoHandler) List(w http.ResponseWriter, r *http.Request) {
	errors.WriteJSON(w, http.StatusOK, h.catalog.Describe())
}
