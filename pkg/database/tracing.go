package database

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/utafrali/storefront/pkg/database"

// QueryTracer is a pgx.QueryTracer that opens a client span per statement
// and warns about statements slower than SlowThreshold. A zero threshold or
// nil Logger disables the warning.
type QueryTracer struct {
	SlowThreshold time.Duration
	Logger        *slog.Logger
}

var _ pgx.QueryTracer = (*QueryTracer)(nil)

type queryKey struct{}

type queryState struct {
	span    trace.Span
	sql     string
	started time.Time
}

// TraceQueryStart implements pgx.QueryTracer.
func (t *QueryTracer) TraceQueryStart(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	op := operation(data.SQL)
	ctx, span := otel.Tracer(tracerName).Start(ctx, "db."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", "postgresql"),
			attribute.String("db.operation", op),
			attribute.String("db.statement", data.SQL),
		),
	)
	return context.WithValue(ctx, queryKey{}, &queryState{span: span, sql: data.SQL, started: time.Now()})
}

// TraceQueryEnd implements pgx.QueryTracer.
func (t *QueryTracer) TraceQueryEnd(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryEndData) {
	q, ok := ctx.Value(queryKey{}).(*queryState)
	if !ok {
		return
	}
	if data.Err != nil {
		q.span.RecordError(data.Err)
		q.span.SetStatus(codes.Error, data.Err.Error())
	}
	q.span.SetAttributes(attribute.Int64("db.rows_affected", data.CommandTag.RowsAffected()))
	q.span.End()

	if t.SlowThreshold <= 0 || t.Logger == nil {
		return
	}
	if elapsed := time.Since(q.started); elapsed >= t.SlowThreshold {
		attrs := []any{
			slog.String("statement", q.sql),
			slog.Duration("duration", elapsed),
		}
		if data.Err != nil {
			attrs = append(attrs, slog.String("error", data.Err.Error()))
		}
		t.Logger.WarnContext(ctx, "slow query", attrs...)
	}
}

// operation returns the statement's leading keyword, e.g. "SELECT".
func operation(sql string) string {
	fields := strings.Fields(sql)
	if len(fields) == 0 {
		return "QUERY"
	}
	return strings.ToUpper(fields[0])
}
