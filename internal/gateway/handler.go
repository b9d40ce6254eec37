// AngelaMos | 2026
// handler.go

package gateway

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/support-gateway/internal/core"
	"github.com/carterperez-dev/support-gateway/internal/middleware"
)

type ChatRequest struct {
	Message string `json:"message" validate:"required,min=1,max=4000"`
}

type ChatResponse struct {
	Reply   string  `json:"reply"`
	Outcome Outcome `json:"outcome"`
}

type Handler struct {
	pipeline  *Pipeline
	validator *validator.Validate
}

func NewHandler(pipeline *Pipeline) *Handler {
	return &Handler{
		pipeline:  pipeline,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// RegisterRoutes mounts /chat. The pipeline validates the bearer token
// itself, so no authenticator middleware is applied.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat", h.Chat)
}

func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	token := middleware.ExtractToken(r)
	if token == "" {
		core.Unauthorized(w, "missing authorization token")
		return
	}

	var req ChatRequest
	if !core.DecodeJSON(w, r, h.validator, &req) {
		return
	}

	result, err := h.pipeline.HandleChat(r.Context(), token, req.Message)
	if err != nil {
		switch {
		case errors.Is(err, ErrUnauthenticated):
			middleware.HandleAuthError(w, err)
		case errors.Is(err, core.ErrNotFound):
			core.NotFound(w, "tenant")
		default:
			core.InternalServerError(w, err)
		}
		return
	}

	core.OK(w, ChatResponse{Reply: result.Reply, Outcome: result.Outcome})
}
