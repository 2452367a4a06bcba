package upstream

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/avast/retry-go/v5"
	"github.com/sony/gobreaker"
	"github.com/xela07ax/authconsole/internal/infra"
	"golang.org/x/time/rate"
)

// ReliabilityWrapper ограничивает частоту, размыкает цепь при серии отказов
// и, если разрешено конфигом, повторяет только GET.
type ReliabilityWrapper struct {
	next     Doer
	cb       *gobreaker.CircuitBreaker
	limiter  *rate.Limiter
	attempts uint
	metrics  *infra.Metrics
}

func NewReliabilityWrapper(next Doer, cfg infra.UpstreamConfig, metrics *infra.Metrics) *ReliabilityWrapper {
	if metrics == nil {
		metrics = infra.NewMetrics(nil)
	}

	failures := cfg.CBFailures
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "auth-api",
		MaxRequests: cfg.CBMaxRequests,
		Interval:    cfg.CBInterval,
		Timeout:     cfg.CBTimeout, // Время, через которое CB попробует "закрыться"
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.CircuitBreakerState.WithLabelValues(name).Set(float64(to))
		},
	})

	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	burst := cfg.RateBurst
	if burst <= 0 {
		burst = 1
	}

	attempts := cfg.RetryAttempts
	if attempts == 0 {
		attempts = 1
	}

	return &ReliabilityWrapper{
		next:     next,
		cb:       cb,
		limiter:  rate.NewLimiter(limit, burst),
		attempts: attempts,
		metrics:  metrics,
	}
}

func (w *ReliabilityWrapper) Do(ctx context.Context, call Call) (*Response, error) {
	w.metrics.UpstreamRequests.WithLabelValues(call.Route.Method, call.Route.Path).Inc()
	start := time.Now()
	status := "error"
	defer func() {
		w.metrics.UpstreamDuration.WithLabelValues(call.Route.Path, status).Observe(time.Since(start).Seconds())
	}()

	// 1. Rate Limiter
	if err := w.limiter.Wait(ctx); err != nil {
		w.metrics.UpstreamErrors.WithLabelValues("rate_limit").Inc()
		return nil, fmt.Errorf("%w: rate limit: %v", ErrUnavailable, err)
	}

	// 2. Circuit Breaker
	result, err := w.cb.Execute(func() (interface{}, error) {
		return w.execute(ctx, call)
	})

	var sErr *serverError
	var tErr *ThrottleError
	switch {
	case err == nil:
		resp := result.(*Response)
		status = strconv.Itoa(resp.Status)
		return resp, nil
	case errors.As(err, &sErr):
		// 5xx засчитан предохранителю, но ответ бэкенда уходит вызывающему как есть
		w.metrics.UpstreamErrors.WithLabelValues("server_error").Inc()
		status = strconv.Itoa(sErr.Response.Status)
		return sErr.Response, nil
	case errors.As(err, &tErr):
		status = strconv.Itoa(tErr.Response.Status)
		return tErr.Response, nil
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		w.metrics.UpstreamErrors.WithLabelValues("breaker_open").Inc()
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	default:
		w.metrics.UpstreamErrors.WithLabelValues("transport").Inc()
		return nil, err
	}
}

func (w *ReliabilityWrapper) execute(ctx context.Context, call Call) (*Response, error) {
	// Изменяющие операции не повторяем: бэкенд не обещает идемпотентность
	if w.attempts <= 1 || call.Route.Method != http.MethodGet {
		return w.attempt(ctx, call, false)
	}

	var final *Response
	r := retry.New(
		retry.Context(ctx),
		retry.Attempts(w.attempts),
		retry.DelayType(func(n uint, err error, config retry.DelayContext) time.Duration {
			// Бэкенд прислал Retry-After вместе с 429
			var tErr *ThrottleError
			if errors.As(err, &tErr) && tErr.RetryAfter > 0 {
				return tErr.RetryAfter
			}
			return retry.BackOffDelay(n, err, config)
		}),
	)

	err := r.Do(func() error {
		resp, err := w.attempt(ctx, call, true)
		if err != nil {
			return err
		}
		final = resp
		return nil
	})
	if err != nil {
		return nil, unwrapLast(err)
	}
	return final, nil
}

func (w *ReliabilityWrapper) attempt(ctx context.Context, call Call, retrying bool) (*Response, error) {
	resp, err := w.next.Do(ctx, call)
	if err != nil {
		return nil, err
	}
	if retrying && resp.Status == http.StatusTooManyRequests {
		return nil, &ThrottleError{RetryAfter: resp.RetryAfter, Response: resp}
	}
	if resp.Status >= http.StatusInternalServerError {
		return nil, &serverError{Response: resp}
	}
	return resp, nil
}

// unwrapLast достаёт типизированную ошибку последней попытки из ошибки retry-go.
func unwrapLast(err error) error {
	var sErr *serverError
	if errors.As(err, &sErr) {
		return sErr
	}
	var tErr *ThrottleError
	if errors.As(err, &tErr) {
		return tErr
	}
	var trErr *TransportError
	if errors.As(err, &trErr) {
		return trErr
	}
	return err
}
