package handlers

import (
	"net/http"
	"strconv"

	"hookreg/internal/pkg/errors"
	"hookreg/internal/platform/audit"
)

type AuditHandler struct {
	logger *audit.Logger
}

func NewAuditHandler(logger *audit.Logger) *AuditHandler {
	return &AuditHandler{logger: logger}
}

// List returns the caller organization's webhook change history.
func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	caller := callerFrom(r)
	if caller == nil {
		errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "Authentication credentials were not provided", nil)
		return
	}

	var limit int
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "limit must be a positive integer", nil)
			return
		}
		limit = n
	}

	logs, err := h.logger.ListByOrg(r.Context(), caller.OrganizationID, limit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	errors.WriteJSON(w, http.StatusOK, logs)
}
