package audit

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// LogStore — хранилище без базы: пишет записи в zap и держит последние в памяти,
// чтобы GET /api/audit работал и без PostgreSQL.
type LogStore struct {
	logger *zap.Logger

	mu      sync.RWMutex
	entries []Entry
	keep    int
}

func NewLogStore(logger *zap.Logger, keep int) *LogStore {
	if keep <= 0 {
		keep = DefaultLimit
	}
	return &LogStore{logger: logger.Named("audit_log"), keep: keep}
}

func (s *LogStore) WriteBatch(_ context.Context, entries []Entry) error {
	for _, e := range entries {
		s.logger.Info("admin action",
			zap.String("id", e.ID),
			zap.String("request_id", e.RequestID),
			zap.String("actor", e.Actor),
			zap.String("action", e.Action),
			zap.String("target", e.Target),
			zap.String("status", e.Status),
			zap.Int("upstream_status", e.UpstreamStatus),
			zap.Int64("duration_ms", e.DurationMs),
			zap.String("error", e.Error),
		)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entries...)
	if over := len(s.entries) - s.keep; over > 0 {
		s.entries = append(s.entries[:0:0], s.entries[over:]...)
	}
	return nil
}

// FetchLogs отдаёт записи от новых к старым.
func (s *LogStore) FetchLogs(_ context.Context, filter Filter) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Entry, 0)
	for i := len(s.entries) - 1; i >= 0 && len(out) < filter.limit(); i-- {
		if filter.match(s.entries[i]) {
			out = append(out, s.entries[i])
		}
	}
	return out, nil
}
