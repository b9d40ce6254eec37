// AngelaMos | 2026
// pipeline.go

package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/carterperez-dev/support-gateway/internal/core"
	"github.com/carterperez-dev/support-gateway/internal/knowledge"
	"github.com/carterperez-dev/support-gateway/internal/quota"
	"github.com/carterperez-dev/support-gateway/internal/tenant"
)

const instrumentationName = "github.com/carterperez-dev/support-gateway/internal/gateway"

const usageWriteTimeout = 5 * time.Second

// ErrUnauthenticated wraps core.ErrTokenInvalid or core.ErrTokenExpired.
var ErrUnauthenticated = errors.New("unauthenticated")

type TokenValidator interface {
	Validate(token string) (string, error)
}

type TenantDirectory interface {
	ResolveTenantForUser(ctx context.Context, email string) (string, error)
	GetTenant(ctx context.Context, id string) (*tenant.Tenant, error)
}

type Ledger interface {
	Admit(ctx context.Context, tenantID string, plan tenant.Plan) (quota.Decision, error)
	RecordUsage(ctx context.Context, tenantID string) (int64, error)
}

type KnowledgeSource interface {
	GetEffectiveContext(ctx context.Context, tenantID string) (knowledge.Context, error)
}

type Completer interface {
	Complete(ctx context.Context, businessContext, userMessage string) (string, error)
}

type Outcome string

const (
	OutcomeCompleted      Outcome = "completed"
	OutcomeInactive       Outcome = "inactive"
	OutcomeQuotaExceeded  Outcome = "quota_exceeded"
	OutcomeNotConfigured  Outcome = "not_configured"
	OutcomeUpstreamFailed Outcome = "upstream_failed"
)

const (
	ReplyInactive       = "This assistant is currently inactive."
	ReplyQuotaExceeded  = "This store has reached its support limit for this period. Please contact support."
	ReplyNotConfigured  = "No business data configured yet. Please contact support."
	ReplyUpstreamFailed = "Sorry, something went wrong. Please try again later."
)

// ChatResult is what a caller sees for every request that got past
// authentication and tenant resolution. Only OutcomeCompleted is billed.
type ChatResult struct {
	Outcome  Outcome
	Reply    string
	TenantID string
}

func (r ChatResult) Billed() bool {
	return r.Outcome == OutcomeCompleted
}

type Pipeline struct {
	tokens    TokenValidator
	tenants   TenantDirectory
	ledger    Ledger
	knowledge KnowledgeSource
	completer Completer
	tracer    trace.Tracer
	outcomes  metric.Int64Counter
}

type Option func(*options)

type options struct {
	meterProvider  metric.MeterProvider
	tracerProvider trace.TracerProvider
}

// WithMeterProvider overrides the global meter provider.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *options) { o.meterProvider = mp }
}

// WithTracerProvider overrides the global tracer provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) { o.tracerProvider = tp }
}

func NewPipeline(
	tokens TokenValidator,
	tenants TenantDirectory,
	ledger Ledger,
	source KnowledgeSource,
	completer Completer,
	opts ...Option,
) (*Pipeline, error) {
	o := options{
		meterProvider:  otel.GetMeterProvider(),
		tracerProvider: otel.GetTracerProvider(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	outcomes, err := o.meterProvider.Meter(instrumentationName).Int64Counter(
		"gateway.chat.outcomes",
		metric.WithDescription("Chat requests by terminal outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("create outcome counter: %w", err)
	}

	return &Pipeline{
		tokens:    tokens,
		tenants:   tenants,
		ledger:    ledger,
		knowledge: source,
		completer: completer,
		tracer:    o.tracerProvider.Tracer(instrumentationName),
		outcomes:  outcomes,
	}, nil
}

// HandleChat authenticates the token, resolves and gates the tenant, loads
// its knowledge and asks the completer. Usage is recorded only after the
// completer answers. Denials, missing configuration and upstream failures
// come back as a ChatResult with a polite reply. Errors are reserved for
// authentication (ErrUnauthenticated), unknown tenants (core.ErrNotFound)
// and store failures.
func (p *Pipeline) HandleChat(
	ctx context.Context,
	token, userMessage string,
) (*ChatResult, error) {
	ctx, span := p.tracer.Start(ctx, "gateway.HandleChat")
	defer span.End()

	subject, err := p.tokens.Validate(token)
	if err != nil {
		span.SetStatus(codes.Error, "unauthenticated")
		return nil, fmt.Errorf("%w: %w", ErrUnauthenticated, err)
	}

	tenantID, err := p.tenants.ResolveTenantForUser(ctx, subject)
	if err != nil {
		return nil, p.fail(span, "resolve tenant", err)
	}

	t, err := p.tenants.GetTenant(ctx, tenantID)
	if err != nil {
		return nil, p.fail(span, "load tenant", err)
	}
	span.SetAttributes(
		attribute.String("tenant.id", t.ID),
		attribute.String("tenant.plan", string(t.Plan)),
	)

	if !t.Active {
		return p.finish(ctx, span, t.ID, OutcomeInactive, ReplyInactive), nil
	}

	decision, err := p.ledger.Admit(ctx, t.ID, t.Plan)
	if err != nil {
		return nil, p.fail(span, "admit", err)
	}
	if decision != quota.Allowed {
		return p.finish(ctx, span, t.ID, OutcomeQuotaExceeded, ReplyQuotaExceeded), nil
	}

	facts, err := p.knowledge.GetEffectiveContext(ctx, t.ID)
	if err != nil {
		return nil, p.fail(span, "load knowledge", err)
	}
	if facts.Empty() {
		return p.finish(ctx, span, t.ID, OutcomeNotConfigured, ReplyNotConfigured), nil
	}

	reply, err := p.completer.Complete(ctx, facts.Render(), userMessage)
	if err != nil {
		span.RecordError(err)
		slog.WarnContext(ctx, "completion failed",
			"tenant_id", t.ID,
			"error", err,
		)
		return p.finish(ctx, span, t.ID, OutcomeUpstreamFailed, ReplyUpstreamFailed), nil
	}

	count, err := p.recordUsage(ctx, t.ID)
	if err != nil {
		// the reply still goes out when the charge cannot be written
		span.RecordError(err)
		slog.ErrorContext(ctx, "record usage failed",
			"tenant_id", t.ID,
			"error", err,
		)
	} else {
		span.SetAttributes(attribute.Int64("usage.count", count))
	}

	return p.finish(ctx, span, t.ID, OutcomeCompleted, reply), nil
}

// recordUsage charges a served reply even if the caller has already gone
// away; only the write timeout bounds it.
func (p *Pipeline) recordUsage(ctx context.Context, tenantID string) (int64, error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), usageWriteTimeout)
	defer cancel()

	return p.ledger.RecordUsage(ctx, tenantID)
}

func (p *Pipeline) finish(
	ctx context.Context,
	span trace.Span,
	tenantID string,
	outcome Outcome,
	reply string,
) *ChatResult {
	span.SetAttributes(attribute.String("chat.outcome", string(outcome)))
	p.outcomes.Add(ctx, 1, metric.WithAttributes(
		attribute.String("outcome", string(outcome)),
	))

	slog.InfoContext(ctx, "chat handled",
		"tenant_id", tenantID,
		"outcome", string(outcome),
	)

	return &ChatResult{Outcome: outcome, Reply: reply, TenantID: tenantID}
}

func (p *Pipeline) fail(span trace.Span, op string, err error) error {
	if !errors.Is(err, core.ErrNotFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, op)
	}
	return fmt.Errorf("%s: %w", op, err)
}
