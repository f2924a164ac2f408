package health

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/marketplace/backend/pkg/utils"
)

const pingTimeout = 2 * time.Second

// Pinger is anything whose availability the service depends on.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler reports liveness. Without the store the service cannot work, so a
// failed ping answers 503.
type Handler struct {
	store  Pinger
	logger *slog.Logger
}

func New(store Pinger, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{store: store, logger: logger}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/healthz", h.handleHealth)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		h.logger.Error("store ping failed", "error", err)
		utils.RespondError(w, http.StatusServiceUnavailable, "unavailable", "store unreachable")
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
