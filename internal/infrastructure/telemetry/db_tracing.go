package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBTracingConfig holds database tracing configuration.
type DBTracingConfig struct {
	Enabled         bool
	LogFullSQL      bool          // include bound variables in db.statement (development only)
	SlowQueryThresh time.Duration // queries slower than this get a slow_query event
	DBName          string
}

type queryStartKey struct{}

// RegisterDBTracing installs the otelgorm plugin plus callbacks that flag
// slow statements on the current span.
func RegisterDBTracing(db *gorm.DB, cfg DBTracingConfig, logger *zap.Logger) error {
	if !cfg.Enabled {
		return nil
	}

	opts := []otelgorm.Option{otelgorm.WithDBName(cfg.DBName)}
	if !cfg.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	thresh := cfg.SlowQueryThresh
	if thresh <= 0 {
		thresh = 200 * time.Millisecond
	}
	after := slowQueryCallback(thresh)

	cb := db.Callback()
	registrations := []struct {
		before, after func() error
	}{
		{
			func() error { return cb.Create().Before("gorm:create").Register("shop:before_create", markQueryStart) },
			func() error { return cb.Create().After("gorm:create").Register("shop:after_create", after) },
		},
		{
			func() error { return cb.Query().Before("gorm:query").Register("shop:before_query", markQueryStart) },
			func() error { return cb.Query().After("gorm:query").Register("shop:after_query", after) },
		},
		{
			func() error { return cb.Update().Before("gorm:update").Register("shop:before_update", markQueryStart) },
			func() error { return cb.Update().After("gorm:update").Register("shop:after_update", after) },
		},
		{
			func() error { return cb.Delete().Before("gorm:delete").Register("shop:before_delete", markQueryStart) },
			func() error { return cb.Delete().After("gorm:delete").Register("shop:after_delete", after) },
		},
		{
			func() error { return cb.Row().Before("gorm:row").Register("shop:before_row", markQueryStart) },
			func() error { return cb.Row().After("gorm:row").Register("shop:after_row", after) },
		},
		{
			func() error { return cb.Raw().Before("gorm:raw").Register("shop:before_raw", markQueryStart) },
			func() error { return cb.Raw().After("gorm:raw").Register("shop:after_raw", after) },
		},
	}
	for _, r := range registrations {
		if err := r.before(); err != nil {
			return err
		}
		if err := r.after(); err != nil {
			return err
		}
	}

	logger.Info("Database tracing enabled",
		zap.Bool("log_full_sql", cfg.LogFullSQL),
		zap.Duration("slow_query_threshold", thresh),
	)
	return nil
}

func markQueryStart(db *gorm.DB) {
	if db.Statement.Context != nil {
		db.Statement.Context = context.WithValue(db.Statement.Context, queryStartKey{}, time.Now())
	}
}

func slowQueryCallback(thresh time.Duration) func(*gorm.DB) {
	return func(db *gorm.DB) {
		ctx := db.Statement.Context
		if ctx == nil {
			return
		}
		span := trace.SpanFromContext(ctx)
		if !span.IsRecording() {
			return
		}
		if db.Statement.Table != "" {
			span.SetAttributes(attribute.String("db.sql.table", db.Statement.Table))
		}
		if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) {
			RecordError(span, db.Error)
		}
		start, ok := ctx.Value(queryStartKey{}).(time.Time)
		if !ok {
			return
		}
		if elapsed := time.Since(start); elapsed > thresh {
			span.SetAttributes(attribute.Bool("db.slow_query", true))
			span.AddEvent("slow_query", trace.WithAttributes(
				attribute.Int64("duration_ms", elapsed.Milliseconds()),
				attribute.Int64("threshold_ms", thresh.Milliseconds()),
			))
		}
	}
}
