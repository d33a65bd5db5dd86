package relay

import (
	"context"
	"runtime/debug"

	"github.com/rs/zerolog/log"

	"relay-service/internal/observability"
)

// failSafely runs one unit of work for an inbound event. Errors and panics are
// logged with a stack trace and replaced by fallback so the webhook never
// sees them.
func failSafely[T any](ctx context.Context, operation string, fallback T, fn func() (T, error)) (result T) {
	defer func() {
		if r := recover(); r != nil {
			observability.IncRecoveredFailure(operation)
			log.Error().
				Str("operation", operation).
				Str("trace_id", observability.TraceID(ctx)).
				Interface("panic", r).
				Str("stack", string(debug.Stack())).
				Msg("Relay operation panicked.")
			result = fallback
		}
	}()

	out, err := fn()
	if err != nil {
		observability.IncRecoveredFailure(operation)
		log.Error().
			Err(err).
			Str("operation", operation).
			Str("trace_id", observability.TraceID(ctx)).
			Str("stack", string(debug.Stack())).
			Msg("Relay operation failed.")
		return fallback
	}
	return out
}
