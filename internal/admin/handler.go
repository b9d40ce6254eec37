// AngelaMos | 2026
// handler.go

package admin

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"runtime"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/carterperez-dev/support-gateway/internal/core"
)

const (
	defaultTop = 10
	maxTop     = 100
)

type Handler struct {
	repo       Repository
	periodKey  func() string
	dbStats    func() sql.DBStats
	dbPing     func(ctx context.Context) error
	redisStats func() *redis.PoolStats
	redisPing  func(ctx context.Context) error
	outcomes   func(ctx context.Context) (map[string]int64, error)
}

type HandlerConfig struct {
	Repository Repository
	PeriodKey  func() string
	DBStats    func() sql.DBStats
	DBPing     func(ctx context.Context) error
	RedisStats func() *redis.PoolStats
	RedisPing  func(ctx context.Context) error

	// ChatOutcomes returns chat totals per outcome since process start.
	ChatOutcomes func(ctx context.Context) (map[string]int64, error)
}

func NewHandler(cfg HandlerConfig) *Handler {
	return &Handler{
		repo:       cfg.Repository,
		periodKey:  cfg.PeriodKey,
		dbStats:    cfg.DBStats,
		dbPing:     cfg.DBPing,
		redisStats: cfg.RedisStats,
		redisPing:  cfg.RedisPing,
		outcomes:   cfg.ChatOutcomes,
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	adminOnly func(http.Handler) http.Handler,
) {
	r.Route("/admin", func(r chi.Router) {
		r.Use(adminOnly)

		r.Get("/stats", h.GetSystemStats)
		r.Get("/usage", h.GetUsageSummary)
	})
}

func (h *Handler) GetSystemStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	core.OK(w, SystemStatsResponse{
		Database: DatabaseStatus{
			Healthy: ping(ctx, h.dbPing),
			Stats:   h.getDBStats(),
		},
		Redis: RedisStatus{
			Healthy: ping(ctx, h.redisPing),
			Stats:   h.getRedisStats(),
		},
		Runtime: RuntimeStats{
			GoVersion:    runtime.Version(),
			NumGoroutine: runtime.NumGoroutine(),
			MemAlloc:     memStats.Alloc,
			NumGC:        memStats.NumGC,
		},
		ChatOutcomes: h.chatOutcomes(r),
	})
}

// GetUsageSummary reports tenant counts and the heaviest users of the
// current quota period. ?top=N bounds the list.
func (h *Handler) GetUsageSummary(w http.ResponseWriter, r *http.Request) {
	top := defaultTop
	if raw := r.URL.Query().Get("top"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxTop {
			core.BadRequest(w, "top must be between 1 and 100")
			return
		}
		top = n
	}

	summary, err := h.repo.Summary(r.Context(), h.periodKey(), top)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, summary)
}

func ping(ctx context.Context, fn func(context.Context) error) bool {
	if fn == nil {
		return false
	}
	return fn(ctx) == nil
}

func (h *Handler) chatOutcomes(r *http.Request) map[string]int64 {
	if h.outcomes == nil {
		return nil
	}

	totals, err := h.outcomes(r.Context())
	if err != nil {
		slog.WarnContext(r.Context(), "collect chat outcomes", "error", err)
		return nil
	}
	return totals
}

func (h *Handler) getDBStats() *DBPoolStats {
	if h.dbStats == nil {
		return nil
	}

	stats := h.dbStats()
	return &DBPoolStats{
		MaxOpenConnections: stats.MaxOpenConnections,
		OpenConnections:    stats.OpenConnections,
		InUse:              stats.InUse,
		Idle:               stats.Idle,
		WaitCount:          stats.WaitCount,
		WaitDuration:       stats.WaitDuration.String(),
	}
}

func (h *Handler) getRedisStats() *RedisPoolStats {
	if h.redisStats == nil {
		return nil
	}

	stats := h.redisStats()
	return &RedisPoolStats{
		Hits:       stats.Hits,
		Misses:     stats.Misses,
		Timeouts:   stats.Timeouts,
		TotalConns: stats.TotalConns,
		IdleConns:  stats.IdleConns,
	}
}

type SystemStatsResponse struct {
	Database DatabaseStatus `json:"database"`
	Redis    RedisStatus    `json:"redis"`
	Runtime  RuntimeStats   `json:"runtime"`

	ChatOutcomes map[string]int64 `json:"chat_outcomes,omitempty"`
}

type DatabaseStatus struct {
	Healthy bool         `json:"healthy"`
	Stats   *DBPoolStats `json:"stats,omitempty"`
}

type RedisStatus struct {
	Healthy bool            `json:"healthy"`
	Stats   *RedisPoolStats `json:"stats,omitempty"`
}

type DBPoolStats struct {
	MaxOpenConnections int    `json:"max_open_connections"`
	OpenConnections    int    `json:"open_connections"`
	InUse              int    `json:"in_use"`
	Idle               int    `json:"idle"`
	WaitCount          int64  `json:"wait_count"`
	WaitDuration       string `json:"wait_duration"`
}

type RedisPoolStats struct {
	Hits       uint32 `json:"hits"`
	Misses     uint32 `json:"misses"`
	Timeouts   uint32 `json:"timeouts"`
	TotalConns uint32 `json:"total_conns"`
	IdleConns  uint32 `json:"idle_conns"`
}

type RuntimeStats struct {
	GoVersion    string `json:"go_version"`
	NumGoroutine int    `json:"num_goroutine"`
	MemAlloc     uint64 `json:"mem_alloc_bytes"`
	NumGC        uint32 `json:"num_gc"`
}
