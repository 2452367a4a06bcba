package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/xela07ax/authconsole/internal/audit"
	"github.com/xela07ax/authconsole/internal/infra"
	"github.com/xela07ax/authconsole/internal/infra/auth"
	"github.com/xela07ax/authconsole/internal/signals"
	"github.com/xela07ax/authconsole/internal/upstream"
	"go.uber.org/zap"
)

// Gateway — единая точка вызова бэкенда авторизации.
// Изменяющие операции пишутся в журнал и рассылаются сигналом после успеха.
type Gateway struct {
	upstream upstream.Doer
	auditor  audit.Auditor
	notifier signals.Notifier
	metrics  *infra.Metrics
	logger   *zap.Logger
}

func NewGateway(up upstream.Doer, auditor audit.Auditor, notifier signals.Notifier, metrics *infra.Metrics, logger *zap.Logger) *Gateway {
	if notifier == nil {
		notifier = signals.Nop{}
	}
	if metrics == nil {
		metrics = infra.NewMetrics(nil)
	}
	return &Gateway{
		upstream: up,
		auditor:  auditor,
		notifier: notifier,
		metrics:  metrics,
		logger:   logger.Named("gateway"),
	}
}

// Forward выполняет операцию и отдаёт ответ бэкенда как есть, включая не-2xx.
// Ошибка возвращается только если ответа нет совсем.
func (g *Gateway) Forward(ctx context.Context, route upstream.Route, body any, target string) (*upstream.Response, error) {
	start := time.Now()
	resp, err := g.upstream.Do(ctx, upstream.Call{Route: route, Body: body})

	if route.Mutating() {
		g.record(ctx, route, target, start, resp, err)
	}
	return resp, err
}

// call — Forward для страниц: не-2xx превращается в *UpstreamError, тело разбирается в out.
func (g *Gateway) call(ctx context.Context, route upstream.Route, body any, target string, out any) error {
	resp, err := g.Forward(ctx, route, body, target)
	if err != nil {
		return err
	}
	if !resp.OK() {
		return &UpstreamError{Action: route.Action, Response: resp}
	}
	if out == nil {
		return nil
	}
	return upstream.Decode(resp, out)
}

func (g *Gateway) record(ctx context.Context, route upstream.Route, target string, start time.Time, resp *upstream.Response, err error) {
	entry := audit.Entry{
		RequestID:  middleware.GetReqID(ctx),
		Actor:      auth.OperatorFromContext(ctx),
		Action:     route.Action,
		Target:     target,
		Status:     audit.StatusSuccess,
		DurationMs: time.Since(start).Milliseconds(),
	}
	if resp != nil {
		entry.UpstreamStatus = resp.Status
	}

	switch {
	case err != nil:
		entry.Status = audit.StatusFailed
		entry.Error = err.Error()
	case !resp.OK():
		entry.Status = audit.StatusFailed
		entry.Error = (&UpstreamError{Action: route.Action, Response: resp}).Message()
	}

	result := "success"
	if entry.Status == audit.StatusFailed {
		result = "failed"
		g.logger.Warn("admin action failed",
			zap.String("action", route.Action),
			zap.String("target", target),
			zap.String("actor", entry.Actor),
			zap.Int("upstream_status", entry.UpstreamStatus),
			zap.String("error", entry.Error))
	}
	g.metrics.AdminActions.WithLabelValues(route.Action, result).Inc()

	if g.auditor != nil {
		g.auditor.Log(entry)
	}
	if entry.Status == audit.StatusSuccess {
		g.notifier.Notify(ctx, route.Action, target)
	}
}

// IsUnavailable — бэкенд недоступен: сеть, разомкнутый предохранитель или лимит.
func IsUnavailable(err error) bool {
	var tErr *upstream.TransportError
	return errors.Is(err, upstream.ErrUnavailable) || errors.As(err, &tErr)
}
