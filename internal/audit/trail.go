package audit

/*
Trail — асинхронный журнал действий администраторов.

- Log не блокирует обработчик запроса: событие уходит в буферизованный канал.
- Воркер пишет пачками по таймеру (500ms) или при накоплении 100 записей.
- Stop закрывает вход, дожидается вычитки канала и финального flush.
*/

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/xela07ax/authconsole/internal/infra"
	"go.uber.org/zap"
)

const (
	bufferSize    = 10000
	batchSize     = 100
	flushInterval = 500 * time.Millisecond
)

// Storage определяет, куда физически сохраняются записи.
type Storage interface {
	WriteBatch(ctx context.Context, entries []Entry) error
	FetchLogs(ctx context.Context, filter Filter) ([]Entry, error)
}

type Auditor interface {
	Log(entry Entry)
}

type Trail struct {
	ch      chan Entry
	repo    Storage
	logger  *zap.Logger
	metrics *infra.Metrics
	wg      sync.WaitGroup

	// Отправка в канал идёт под RLock, close — под Lock: Log после Stop не пишет в закрытый канал
	mu     sync.RWMutex
	closed bool
}

func NewTrail(repo Storage, logger *zap.Logger, metrics *infra.Metrics) *Trail {
	if metrics == nil {
		metrics = infra.NewMetrics(nil)
	}
	return &Trail{
		ch:      make(chan Entry, bufferSize),
		repo:    repo,
		logger:  logger.Named("audit"),
		metrics: metrics,
	}
}

func (t *Trail) Start() {
	t.wg.Add(1)
	go t.worker()
}

// Stop «запирает» вход в канал и ждет, пока воркер всё допишет.
func (t *Trail) Stop() {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	t.closed = true
	t.logger.Info("stopping audit trail: closing channel and flushing buffer...")
	close(t.ch)
	t.mu.Unlock()

	t.wg.Wait()
	t.logger.Info("audit trail stopped gracefully")
}

func (t *Trail) Log(entry Entry) {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.closed {
		t.logger.Warn("audit entry dropped: trail is stopping", zap.String("id", entry.ID))
		return
	}

	// Load Shedding: при переполнении не блокируем запрос, а пишем в лог
	select {
	case t.ch <- entry:
		t.metrics.AuditBufferFill.Set(float64(len(t.ch)))
	default:
		t.logger.Error("audit_buffer_overflow",
			zap.String("actor", entry.Actor),
			zap.String("action", entry.Action),
			zap.String("target", entry.Target),
		)
	}
}

// FetchLogs читает журнал из хранилища.
func (t *Trail) FetchLogs(ctx context.Context, filter Filter) ([]Entry, error) {
	return t.repo.FetchLogs(ctx, filter)
}

func (t *Trail) worker() {
	defer t.wg.Done()

	batch := make([]Entry, 0, batchSize)
	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()

	flush := func() {
		if len(batch) > 0 {
			// Background: контекст запроса к этому моменту уже завершён
			if err := t.repo.WriteBatch(context.Background(), batch); err != nil {
				t.logger.Error("audit flush failed", zap.Int("entries", len(batch)), zap.Error(err))
			}
			batch = batch[:0]
		}
		t.metrics.AuditBufferFill.Set(float64(len(t.ch)))
	}

	for {
		select {
		case entry, ok := <-t.ch:
			if !ok {
				// Канал закрыт в Stop: всё вычитано, финальный сброс
				flush()
				t.logger.Info("audit worker finished")
				return
			}
			batch = append(batch, entry)
			if len(batch) >= batchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		}
	}
}
