// AngelaMos | 2026
// handler.go

package knowledge

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/support-gateway/internal/core"
	"github.com/carterperez-dev/support-gateway/internal/middleware"
)

type TenantResolver interface {
	ResolveTenantForUser(ctx context.Context, email string) (string, error)
}

type Handler struct {
	service   *Service
	tenants   TenantResolver
	validator *validator.Validate
}

func NewHandler(service *Service, tenants TenantResolver) *Handler {
	return &Handler{
		service:   service,
		tenants:   tenants,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/knowledge", func(r chi.Router) {
		r.Use(authenticator)

		r.Get("/", h.List)
		r.Put("/", h.Save)
	})
}

// Save replaces the caller's tenant knowledge. Tenants are never addressed
// by id here, only through the authenticated credential.
func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := h.resolveTenant(w, r)
	if !ok {
		return
	}

	var req SaveKnowledgeRequest
	if !core.DecodeJSON(w, r, h.validator, &req) {
		return
	}

	n, err := h.service.ReplaceAll(r.Context(), tenantID, req.Entries)
	if err != nil {
		if errors.Is(err, core.ErrInvalidInput) {
			core.BadRequest(w, "knowledge keys must not be blank")
			return
		}
		if errors.Is(err, ErrCacheUnavailable) {
			core.JSONError(w, core.NewAppError(
				err,
				"knowledge could not be saved, please retry",
				http.StatusServiceUnavailable,
				"UNAVAILABLE",
			))
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, SaveKnowledgeResponse{Status: "saved", Entries: n})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := h.resolveTenant(w, r)
	if !ok {
		return
	}

	entries, err := h.service.List(r.Context(), tenantID)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToListResponse(entries))
}

func (h *Handler) resolveTenant(w http.ResponseWriter, r *http.Request) (string, bool) {
	subject := middleware.GetSubject(r.Context())
	if subject == "" {
		core.Unauthorized(w, "")
		return "", false
	}

	tenantID, err := h.tenants.ResolveTenantForUser(r.Context(), subject)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "tenant")
			return "", false
		}
		core.InternalServerError(w, err)
		return "", false
	}

	return tenantID, true
}
