// AngelaMos | 2026
// handler.go

package quota

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/carterperez-dev/support-gateway/internal/core"
	"github.com/carterperez-dev/support-gateway/internal/middleware"
	"github.com/carterperez-dev/support-gateway/internal/tenant"
)

type TenantDirectory interface {
	ResolveTenantForUser(ctx context.Context, email string) (string, error)
	GetTenant(ctx context.Context, id string) (*tenant.Tenant, error)
}

type Handler struct {
	ledger  *Ledger
	tenants TenantDirectory
}

func NewHandler(ledger *Ledger, tenants TenantDirectory) *Handler {
	return &Handler{ledger: ledger, tenants: tenants}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.With(authenticator).Get("/usage", h.GetUsage)
}

func (h *Handler) GetUsage(w http.ResponseWriter, r *http.Request) {
	subject := middleware.GetSubject(r.Context())
	if subject == "" {
		core.Unauthorized(w, "")
		return
	}

	tenantID, err := h.tenants.ResolveTenantForUser(r.Context(), subject)
	if err != nil {
		writeLookupError(w, err)
		return
	}

	t, err := h.tenants.GetTenant(r.Context(), tenantID)
	if err != nil {
		writeLookupError(w, err)
		return
	}

	usage, err := h.ledger.Usage(r.Context(), t.ID, t.Plan)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, usage)
}

func writeLookupError(w http.ResponseWriter, err error) {
	if errors.Is(err, core.ErrNotFound) {
		core.NotFound(w, "tenant")
		return
	}
	core.InternalServerError(w, err)
}
