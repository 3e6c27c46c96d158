package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"price-resolution-api/internal/events"
	"price-resolution-api/internal/logging"
	"price-resolution-api/internal/models"
	"price-resolution-api/internal/pricing"
	"price-resolution-api/internal/tracing"
)

// Service provides the business operations of the price resolution API.
type Service struct {
	resolver *pricing.Resolver
	events   *events.Manager
	tracer   *tracing.Tracer
	logger   *slog.Logger
}

// Option configures optional collaborators of a Service.
type Option func(*Service)

// WithEvents publishes resolution outcomes through m.
func WithEvents(m *events.Manager) Option {
	return func(s *Service) { s.events = m }
}

// WithTracer records a span per resolution.
func WithTracer(t *tracing.Tracer) Option {
	return func(s *Service) { s.tracer = t }
}

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// NewService creates a new service resolving prices from store.
func NewService(store pricing.Store, opts ...Option) *Service {
	s := &Service{resolver: pricing.NewResolver(store)}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.tracer == nil {
		s.tracer, _ = tracing.InitTracing(context.Background(), tracing.Config{Enabled: false})
	}
	if s.events == nil {
		s.events = events.NewManager(false, s.logger)
	}
	return s
}

// GetApplicablePrice resolves the price window in force for req. Absence is
// reported through the Resolution, not as an error; store faults are returned
// wrapped in pricing.ErrStore.
func (s *Service) GetApplicablePrice(ctx context.Context, correlationID string, req models.LookupRequest) (pricing.Resolution, error) {
	logger := logging.WithCorrelationID(s.logger, correlationID)

	ctx, span := s.tracer.StartSpan(ctx, "pricing.resolve", trace.WithAttributes(
		attribute.Int64("product.id", req.ProductID),
		attribute.Int64("brand.id", req.BrandID),
		attribute.String("price.date", req.At.UTC().Format(models.DateTimeLayout)),
	))
	defer span.End()

	start := time.Now()
	logger.DebugContext(ctx, "resolving price",
		"product_id", req.ProductID,
		"brand_id", req.BrandID,
		"price_date", req.At.UTC().Format(models.DateTimeLayout),
	)

	res, err := s.resolver.Resolve(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "price resolution failed")
		logger.ErrorContext(ctx, "price resolution failed",
			"product_id", req.ProductID,
			"brand_id", req.BrandID,
			"error", err,
		)
		return pricing.Resolution{}, fmt.Errorf("failed to resolve price: %w", err)
	}

	window, found := res.Window()
	span.SetAttributes(attribute.Bool("price.found", found))

	if !found {
		logger.InfoContext(ctx, "no applicable price",
			"product_id", req.ProductID,
			"brand_id", req.BrandID,
			"duration", time.Since(start),
		)
		s.events.PublishPriceNotFound(ctx, correlationID, req)
		return res, nil
	}

	span.SetAttributes(attribute.Int64("price.list", window.ID))
	logger.InfoContext(ctx, "price resolved",
		"product_id", req.ProductID,
		"brand_id", req.BrandID,
		"price_list", window.ID,
		"priority", window.Priority,
		"duration", time.Since(start),
	)
	s.events.PublishPriceResolved(ctx, correlationID, req, window)

	return res, nil
}
