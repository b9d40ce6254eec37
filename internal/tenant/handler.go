// AngelaMos | 2026
// handler.go

package tenant

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/support-gateway/internal/core"
)

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// RegisterAdminRoutes registers onboarding and tenant administration endpoints.
func (h *Handler) RegisterAdminRoutes(
	r chi.Router,
	adminOnly func(http.Handler) http.Handler,
) {
	r.Route("/admin/tenants", func(r chi.Router) {
		r.Use(adminOnly)

		r.Post("/", h.CreateTenant)
		r.Get("/{tenantID}", h.GetTenant)
		r.Patch("/{tenantID}", h.UpdateTenant)
	})
}

func (h *Handler) CreateTenant(w http.ResponseWriter, r *http.Request) {
	var req CreateTenantRequest
	if !core.DecodeJSON(w, r, h.validator, &req) {
		return
	}

	t, err := h.service.CreateTenant(r.Context(), req.Name)
	if err != nil {
		if errors.Is(err, core.ErrInvalidInput) {
			core.BadRequest(w, "name is required")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.Created(w, ToTenantResponse(t))
}

func (h *Handler) GetTenant(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")

	t, err := h.service.GetTenant(r.Context(), tenantID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "tenant")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToTenantResponse(t))
}

func (h *Handler) UpdateTenant(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")

	var req UpdateTenantRequest
	if !core.DecodeJSON(w, r, h.validator, &req) {
		return
	}

	t, err := h.service.UpdateTenant(r.Context(), tenantID, req)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "tenant")
			return
		}
		if errors.Is(err, core.ErrInvalidInput) {
			core.BadRequest(w, "invalid plan")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToTenantResponse(t))
}
