package service

import (
	"context"
	"fmt"

	"github.com/xela07ax/authconsole/internal/audit"
)

// AuditLogProvider описывает контракт для чтения журнала действий.
type AuditLogProvider interface {
	FetchLogs(ctx context.Context, filter audit.Filter) ([]audit.Entry, error)
}

type AuditService struct {
	repo AuditLogProvider
}

func NewAuditService(repo AuditLogProvider) *AuditService {
	return &AuditService{repo: repo}
}

// FetchLogs — последние действия, пустые фильтры не ограничивают выборку.
func (s *AuditService) FetchLogs(ctx context.Context, filter audit.Filter) ([]audit.Entry, error) {
	logs, err := s.repo.FetchLogs(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("audit_service: failed to fetch logs: %w", err)
	}
	return logs, nil
}
