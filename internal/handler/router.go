package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/zhouzirui/marketplace/backend/internal/events"
	eventsHandler "github.com/zhouzirui/marketplace/backend/internal/handler/events"
	"github.com/zhouzirui/marketplace/backend/internal/handler/health"
	"github.com/zhouzirui/marketplace/backend/internal/handler/market"
	middlewarePkg "github.com/zhouzirui/marketplace/backend/internal/middleware"
	marketService "github.com/zhouzirui/marketplace/backend/internal/service/market"
	"github.com/zhouzirui/marketplace/backend/pkg/utils"
)

// NewRouter wires HTTP routes to core services. hub may be nil, in which
// case the change feeds are not mounted.
func NewRouter(svc *marketService.Service, hub *events.Hub, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		utils.RespondError(w, http.StatusNotFound, "not_found", "no route for "+r.URL.Path)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		utils.RespondError(w, http.StatusMethodNotAllowed, "method_not_allowed", r.Method+" not allowed on "+r.URL.Path)
	})

	health.New(svc, logger).RegisterRoutes(r)
	market.New(svc).RegisterRoutes(r)

	if hub != nil {
		eventsHandler.New(hub, logger).RegisterRoutes(r)
	}

	return r
}
