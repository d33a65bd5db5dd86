package relay

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"relay-service/internal/observability"
)

const (
	defaultFanoutWorkers = 4
	defaultRateLimit     = 25
	defaultRateBurst     = 5
)

// fanout runs per-recipient work with bounded concurrency under a shared
// outbound rate limit. One recipient failing never affects another.
type fanout struct {
	workers int
	limiter *rate.Limiter
}

func newFanout(workers int, perSecond float64, burst int) *fanout {
	if workers <= 0 {
		workers = defaultFanoutWorkers
	}
	if perSecond <= 0 {
		perSecond = defaultRateLimit
	}
	if burst <= 0 {
		burst = defaultRateBurst
	}
	return &fanout{workers: workers, limiter: rate.NewLimiter(rate.Limit(perSecond), burst)}
}

// recipientResult is the result of one recipient's task.
type recipientResult[T any] struct {
	Value T
	OK    bool
	Err   error
}

// each runs task for every item and returns the results in input order.
func each[I, T any](ctx context.Context, f *fanout, mode string, items []I, task func(context.Context, I) (T, bool, error)) []recipientResult[T] {
	start := time.Now()
	results := make([]recipientResult[T], len(items))

	var g errgroup.Group
	g.SetLimit(f.workers)
	for i, item := range items {
		i, item := i, item
		g.Go(func() error {
			results[i] = runOne(ctx, f.limiter, item, task)
			observability.IncDelivery(mode, results[i].OK)
			if results[i].Err != nil {
				log.Warn().Err(results[i].Err).Str("mode", mode).Int("recipient", i).Msg("Delivery to recipient failed.")
			}
			return nil
		})
	}
	_ = g.Wait()

	observability.ObserveFanout(mode, time.Since(start))
	return results
}

func runOne[I, T any](ctx context.Context, limiter *rate.Limiter, item I, task func(context.Context, I) (T, bool, error)) (res recipientResult[T]) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Str("stack", string(debug.Stack())).Msg("Recipient task panicked.")
			res = recipientResult[T]{Err: fmt.Errorf("recipient task panicked: %v", r)}
		}
	}()
	if err := limiter.Wait(ctx); err != nil {
		return recipientResult[T]{Err: err}
	}
	value, ok, err := task(ctx, item)
	return recipientResult[T]{Value: value, OK: ok && err == nil, Err: err}
}

func countDelivered[T any](results []recipientResult[T]) int {
	return lo.CountBy(results, func(r recipientResult[T]) bool { return r.OK })
}
