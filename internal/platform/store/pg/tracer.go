package pg

import (
	"context"
	"strings"

	"customerlens/internal/platform/logger"

	"github.com/rs/zerolog"
)

// maxLoggedArgs caps args in a trace line, batch inserts carry thousands
const maxLoggedArgs = 16

// QueryEvent is one traced statement
type QueryEvent struct {
	SQL       string
	Args      []any
	ArgCount  int
	ElapsedUS int64
	Err       error
	Slow      bool
}

// QueryTracer receives query events
type QueryTracer interface {
	OnQuery(ctx context.Context, ev QueryEvent)
}

// Tracer logs every query at info and slow ones at warn regardless of the root level
func Tracer(root logger.Logger) QueryTracer {
	return &zlTracer{log: root.Level(zerolog.DebugLevel).With().Str("component", "pg").Logger()}
}

type zlTracer struct{ log logger.Logger }

func (z *zlTracer) OnQuery(_ context.Context, ev QueryEvent) {
	evt := z.log.Info()
	if ev.Slow || ev.Err != nil {
		evt = z.log.Warn()
	}
	args := ev.Args
	if len(args) > maxLoggedArgs {
		args = args[:maxLoggedArgs]
	}
	evt.Float64("elapsed_ms", float64(ev.ElapsedUS)/1000.0).
		Bool("slow", ev.Slow).
		Str("sql", Compact(ev.SQL)).
		Int("arg_count", ev.ArgCount).
		Interface("args", args).
		Err(ev.Err).
		Msg("pg query")
}

// Compact folds whitespace runs to a single space
func Compact(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
