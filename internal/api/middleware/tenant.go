package middleware

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/hlog"

	apiContext "hookreg/internal/api/context"
	"hookreg/internal/pkg/errors"
	"hookreg/internal/platform/auth"
	"hookreg/internal/platform/repositories"
)

// TenantContext is the caller's resolved active organization.
type TenantContext struct {
	UserID  string
	OrgID   string
	OrgSlug string
}

type TenantMiddleware struct {
	orgRepo *repositories.OrganizationRepository
}

func NewTenantMiddleware(orgRepo *repositories.OrganizationRepository) *TenantMiddleware {
	return &TenantMiddleware{orgRepo: orgRepo}
}

// Handle requires AuthMiddleware to have run first. A caller without an
// active organization, or whose organization no longer exists, is treated
// as unauthenticated.
func (m *TenantMiddleware) Handle(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := r.Context().Value(apiContext.Claims).(*auth.Claims)
		if !ok || claims == nil {
			errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "No authentication claims found", nil)
			return
		}
		if claims.OrganizationID == "" {
			errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "No active organization", nil)
			return
		}

		org, err := m.orgRepo.GetByID(r.Context(), claims.OrganizationID)
		if err != nil {
			hlog.FromRequest(r).Error().Err(err).Str("org_id", claims.OrganizationID).Msg("failed to load organization")
			errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to load organization", nil)
			return
		}
		if org == nil {
			errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "No active organization", nil)
			return
		}

		ctx := context.WithValue(r.Context(), apiContext.Tenant, &TenantContext{
			UserID:  claims.UserID,
			OrgID:   org.ID,
			OrgSlug: org.Slug,
		})

		next(w, r.WithContext(ctx))
	}
}
