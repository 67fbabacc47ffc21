package postgres

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"skill-hire/internal/infrastructure/metrics"

	"github.com/jackc/pgx/v5"
)

type traceStartKey struct{}

type traceStart struct {
	sql string
	at  time.Time
}

// queryTracer times every statement on the pool. Statements slower than
// slow are logged with their SQL but never their arguments.
type queryTracer struct {
	slow   time.Duration
	logger *log.Logger
}

func (t *queryTracer) TraceQueryStart(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	return context.WithValue(ctx, traceStartKey{}, traceStart{sql: data.SQL, at: time.Now()})
}

func (t *queryTracer) TraceQueryEnd(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryEndData) {
	start, ok := ctx.Value(traceStartKey{}).(traceStart)
	if !ok {
		return
	}
	elapsed := time.Since(start.at)
	op := sqlVerb(start.sql)

	metrics.DBQueryDuration.WithLabelValues(op).Observe(elapsed.Seconds())
	if data.Err != nil && !errors.Is(data.Err, pgx.ErrNoRows) {
		metrics.DBQueryErrors.WithLabelValues(op).Inc()
	}

	if t.slow > 0 && elapsed >= t.slow && t.logger != nil {
		t.logger.Printf("postgres slow_query op=%s duration=%s sql=%q", op, elapsed, compactSQL(start.sql))
	}
}

// sqlVerb is the lowercased first keyword, which keeps label cardinality
// to a handful of values.
func sqlVerb(sql string) string {
	fields := strings.Fields(sql)
	if len(fields) == 0 {
		return "unknown"
	}
	switch v := strings.ToLower(fields[0]); v {
	case "select", "insert", "update", "delete", "with", "begin", "commit", "rollback":
		return v
	default:
		return "other"
	}
}

func compactSQL(sql string) string {
	s := strings.Join(strings.Fields(sql), " ")
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	return s
}
