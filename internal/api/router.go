package api

import (
	"context"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	apiContext "hookreg/internal/api/context"
	"hookreg/internal/api/handlers"
	"hookreg/internal/api/middleware"
	"hookreg/internal/pkg/errors"
)

type Dependencies struct {
	WebhookHandler     *handlers.WebhookHandler
	WebhookInfoHandler *handlers.WebhookInfoHandler
	AuditHandler       *handlers.AuditHandler
	HealthHandler      *handlers.HealthHandler
	AuthMiddleware     *middleware.AuthMiddleware
	TenantMiddleware   *middleware.TenantMiddleware
	Logger             zerolog.Logger
}

func NewRouter(deps *Dependencies) http.Handler {
	router := httprouter.New()
	router.NotFound = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Not found", nil)
	})

	// Public endpoints
	router.GET("/health", wrap(deps.HealthHandler.Check))
	router.GET("/api/v1/webhook-actions", wrap(deps.WebhookInfoHandler.List))

	authMid := deps.AuthMiddleware
	tenantMid := deps.TenantMiddleware

	// Webhook subscriptions
	router.GET("/api/v1/webhooks",
		chain(deps.WebhookHandler.List, authMid.Handle, tenantMid.Handle))
	router.POST("/api/v1/webhooks",
		chain(deps.WebhookHandler.Create, authMid.Handle, tenantMid.Handle))
	router.GET("/api/v1/webhooks/:webhook_id",
		chain(deps.WebhookHandler.Get, authMid.Handle, tenantMid.Handle))
	router.PUT("/api/v1/webhooks/:webhook_id",
		chain(deps.WebhookHandler.Replace, authMid.Handle, tenantMid.Handle))
	router.PATCH("/api/v1/webhooks/:webhook_id",
		chain(deps.WebhookHandler.Update, authMid.Handle, tenantMid.Handle))
	router.DELETE("/api/v1/webhooks/:webhook_id",
		chain(deps.WebhookHandler.Delete, authMid.Handle, tenantMid.Handle))

	// Change history
	router.GET("/api/v1/audit-logs",
		chain(deps.AuditHandler.List, authMid.Handle, tenantMid.Handle))

	return withRequestLogging(deps.Logger, router)
}

// withRequestLogging attaches a request-scoped logger and writes one access
// line per request.
func withRequestLogging(logger zerolog.Logger, next http.Handler) http.Handler {
	h := hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("request")
	})(next)
	h = hlog.RequestIDHandler("req_id", "X-Request-Id")(h)
	h = hlog.RemoteAddrHandler("ip")(h)
	return hlog.NewHandler(logger)(h)
}

// Helper function to chain middlewares
func chain(handler http.HandlerFunc, middlewares ...func(http.HandlerFunc) http.HandlerFunc) httprouter.Handle {
	for i := len(middlewares) - 1; i >= 0; i-- {
		handler = middlewares[i](handler)
	}
	return wrap(handler)
}

// Convert http.HandlerFunc to httprouter.Handle
func wrap(handler http.HandlerFunc) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		ctx := context.WithValue(r.Context(), apiContext.Params, ps)
		handler(w, r.WithContext(ctx))
	}
}
