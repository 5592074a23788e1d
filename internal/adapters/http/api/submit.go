package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	service "github.com/okian/scoreboard/internal/app"
	"github.com/okian/scoreboard/internal/domain/model"
	"github.com/okian/scoreboard/internal/domain/stats"
)

// maxSubmitBody bounds the request body for POST /api/submit.
const maxSubmitBody = 1 << 20

// SubmitDependencies defines the interface for score ingestion.
type SubmitDependencies interface {
	Submit(ctx context.Context, in service.SubmitInput) (model.PlayerRecord, error)
}

// submitRequest mirrors the OpenAPI schema for POST /api/submit. Fields stay
// loosely typed; the service decides what is acceptable.
type submitRequest struct {
	Name  any `json:"name"`
	Time  any `json:"time"`
	Level any `json:"level"`
}

// SubmitHandler handles game result submissions.
type SubmitHandler struct {
	deps SubmitDependencies
}

// NewSubmitHandler creates a new submit handler.
func NewSubmitHandler(deps SubmitDependencies) *SubmitHandler {
	return &SubmitHandler{deps: deps}
}

// HandleSubmit handles POST /api/submit requests.
func (h *SubmitHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	const op = "api.submit"
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	var req submitRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxSubmitBody))
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil {
		setError(r, WrapKind(op, ErrBadRequest, err))
		writeError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	_, err := h.deps.Submit(r.Context(), service.SubmitInput{
		Name:  req.Name,
		Time:  req.Time,
		Level: req.Level,
	})
	switch {
	case err == nil:
		writeJSON(w, r, http.StatusOK, messageResponse{Message: "Submission received"})
	case errors.Is(err, service.ErrInvalidInput):
		setError(r, WrapKind(op, ErrBadRequest, err))
		writeError(w, r, http.StatusBadRequest, rejectMessage(err))
	default:
		setError(r, WrapKind(op, ErrInternal, err))
		writeError(w, r, http.StatusInternalServerError, "Internal server error")
	}
}

// rejectMessage returns the client-facing reason for a validation failure.
func rejectMessage(err error) string {
	switch {
	case errors.Is(err, stats.ErrInvalidLevel):
		return "Invalid level"
	case errors.Is(err, stats.ErrMissingName):
		return "Missing name"
	case errors.Is(err, stats.ErrInvalidName):
		return "Invalid name"
	case errors.Is(err, stats.ErrMissingTime):
		return "Missing time"
	case errors.Is(err, stats.ErrInvalidTime):
		return "Invalid time"
	default:
		return "Invalid input"
	}
}
