package utils

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/zhouzirui/marketplace/backend/internal/model/market"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// RespondJSON 发送JSON响应
func RespondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// RespondError 发送错误响应
func RespondError(w http.ResponseWriter, status int, code, message string) {
	RespondJSON(w, status, ErrorBody{Error: code, Message: message})
}

// RespondNoContent writes 204 with the confirmation text in X-Result.
func RespondNoContent(w http.ResponseWriter, result string) {
	if result != "" {
		w.Header().Set("X-Result", result)
	}
	w.WriteHeader(http.StatusNoContent)
}

// RespondErr maps an error to its status and reason code. Errors without a
// status are logged and reported as a generic 500.
func RespondErr(w http.ResponseWriter, err error) {
	var sce market.StatusCodeError
	if !errors.As(err, &sce) {
		slog.Error("request failed", "error", err)
		RespondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}

	body := ErrorBody{Error: sce.Code(), Message: sce.Error()}
	var verr *market.ValidationError
	if errors.As(err, &verr) {
		body.Field = verr.Field
	}
	RespondJSON(w, sce.StatusCode(), body)
}
