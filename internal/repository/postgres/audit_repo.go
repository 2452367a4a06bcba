package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/xela07ax/authconsole/internal/audit"
	"github.com/xela07ax/authconsole/internal/infra"
)

// Количество колонок в таблице console_audit
const numFields = 10

type AuditRepo struct {
	pool *pgxpool.Pool
}

// NewPool открывает пул соединений и проверяет доступность базы.
func NewPool(ctx context.Context, cfg infra.DatabaseConfig) (*pgxpool.Pool, error) {
	pcfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("postgres: parse url: %w", err)
	}
	if cfg.MaxConns > 0 {
		pcfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		pcfg.MinConns = cfg.MinConns
	}
	pcfg.MaxConnLifetime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, fmt.Errorf("postgres: connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}
	return pool, nil
}

func NewAuditRepo(pool *pgxpool.Pool) *AuditRepo {
	return &AuditRepo{pool: pool}
}

func (r *AuditRepo) WriteBatch(ctx context.Context, entries []audit.Entry) error {
	if len(entries) == 0 {
		return nil
	}

	query, vals := insertQuery(entries)
	if _, err := r.pool.Exec(ctx, query, vals...); err != nil {
		return fmt.Errorf("postgres: write audit batch: %w", err)
	}
	return nil
}

// insertQuery строит одну многострочную вставку на всю пачку.
func insertQuery(entries []audit.Entry) (string, []any) {
	var sb strings.Builder
	vals := make([]any, 0, len(entries)*numFields)

	for i, e := range entries {
		if i > 0 {
			sb.WriteByte(',')
		}
		p := i * numFields
		fmt.Fprintf(&sb, "($%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			p+1, p+2, p+3, p+4, p+5, p+6, p+7, p+8, p+9, p+10)

		vals = append(vals,
			e.ID, e.RequestID, e.Actor, e.Action, e.Target,
			e.Status, e.UpstreamStatus, e.Error, e.DurationMs, e.Timestamp,
		)
	}

	query := "INSERT INTO console_audit (id, request_id, actor, action, target, status, upstream_status, error, duration_ms, timestamp) VALUES " + sb.String()
	return query, vals
}

// FetchLogs — последние записи журнала, новые сверху.
func (r *AuditRepo) FetchLogs(ctx context.Context, filter audit.Filter) ([]audit.Entry, error) {
	query, args := selectQuery(filter)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to query audit: %w", err)
	}

	entries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (audit.Entry, error) {
		var e audit.Entry
		err := row.Scan(
			&e.ID, &e.RequestID, &e.Actor, &e.Action, &e.Target,
			&e.Status, &e.UpstreamStatus, &e.Error, &e.DurationMs, &e.Timestamp,
		)
		return e, err
	})
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to scan audit: %w", err)
	}

	// Пустой слайс, чтобы в JSON был [] вместо null
	if entries == nil {
		entries = make([]audit.Entry, 0)
	}
	return entries, nil
}

func selectQuery(filter audit.Filter) (string, []any) {
	query := `SELECT id::text, request_id, actor, action, target, status, upstream_status, error, duration_ms, timestamp
              FROM console_audit`

	var conds []string
	var args []any
	if filter.Actor != "" {
		args = append(args, filter.Actor)
		conds = append(conds, fmt.Sprintf("actor = $%d", len(args)))
	}
	if filter.Action != "" {
		args = append(args, filter.Action)
		conds = append(conds, fmt.Sprintf("action = $%d", len(args)))
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}

	limit := filter.Limit
	if limit <= 0 || limit > audit.DefaultLimit {
		limit = audit.DefaultLimit
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY timestamp DESC LIMIT $%d", len(args))

	return query, args
}
