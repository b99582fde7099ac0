package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/couchcryptid/quake-strec-etl/internal/domain"
	"github.com/couchcryptid/quake-strec-etl/internal/observability"
)

// OriginLoader reads the origin document a notification points to.
type OriginLoader func(n domain.ProductNotification) (domain.Origin, error)

// QuakeTransformer implements Transformer: notification, origin, mechanism
// lookup, resolution.
type QuakeTransformer struct {
	loadOrigin OriginLoader
	lookup     domain.MechanismLookup
	fallback   domain.NodalPlane
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewTransformer creates a QuakeTransformer. Pass a nil lookup to disable
// catalog mechanism lookups.
func NewTransformer(loadOrigin OriginLoader, lookup domain.MechanismLookup, fallback domain.NodalPlane, metrics *observability.Metrics, logger *slog.Logger) *QuakeTransformer {
	return &QuakeTransformer{
		loadOrigin: loadOrigin,
		lookup:     lookup,
		fallback:   fallback,
		metrics:    metrics,
		logger:     logger,
	}
}

func (t *QuakeTransformer) Transform(ctx context.Context, raw domain.RawEvent) (domain.StrecResult, error) {
	ctx, span := otel.Tracer(observability.TracerName).Start(ctx, "strec.transform")
	defer span.End()

	n, err := domain.ParseNotification(raw)
	if err != nil {
		return domain.StrecResult{}, err
	}
	if err := n.Check(); err != nil {
		return domain.StrecResult{}, err
	}
	eventID := n.EventID()
	span.SetAttributes(attribute.String("event.id", eventID))

	origin, err := t.loadOrigin(n)
	if err != nil {
		span.SetStatus(codes.Error, "origin")
		return domain.StrecResult{}, fmt.Errorf("load origin for %s: %w", eventID, err)
	}

	src, label := domain.SelectMechanismSource(ctx, eventID, origin, t.lookup, t.fallback, t.logger)
	res, err := domain.Resolve(src)
	if err != nil {
		t.metrics.MechanismErrors.WithLabelValues(domain.ErrorKind(err)).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "resolve")
		return domain.StrecResult{}, fmt.Errorf("resolve mechanism for %s: %w", eventID, err)
	}
	t.metrics.MechanismResolutions.WithLabelValues(label).Inc()
	span.SetAttributes(
		attribute.String("mechanism.source", label),
		attribute.Bool("mechanism.composite_forced", res.CompositeForced),
	)

	t.logger.Info("mechanism resolved",
		"event_id", eventID,
		"mechanism_source", label,
		"composite_forced", res.CompositeForced,
		"magnitude", origin.Magnitude,
	)
	return domain.NewStrecResult(n, origin, res, label), nil
}
