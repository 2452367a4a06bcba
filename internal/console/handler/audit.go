package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/xela07ax/authconsole/internal/audit"
	"github.com/xela07ax/authconsole/internal/httpx"
	"go.uber.org/zap"
)

type AuditReader interface {
	FetchLogs(ctx context.Context, filter audit.Filter) ([]audit.Entry, error)
}

type AuditHandler struct {
	service AuditReader
	logger  *zap.Logger
}

func NewAuditHandler(s AuditReader, logger *zap.Logger) *AuditHandler {
	return &AuditHandler{service: s, logger: logger.Named("audit_handler")}
}

// GetLogs возвращает журнал действий с фильтрацией
// GET /api/audit?actor=...&action=...&limit=...
func (h *AuditHandler) GetLogs(w http.ResponseWriter, r *http.Request) {
	filter := filterFromQuery(r)

	logs, err := h.service.FetchLogs(r.Context(), filter)
	if err != nil {
		h.logger.Error("failed to fetch audit logs", zap.Error(err))
		httpx.WriteError(w, http.StatusInternalServerError, httpx.ErrorResponse[any]{
			Code:    httpx.ErrInternal,
			Message: "failed to fetch audit logs",
		})
		return
	}
	httpx.WriteJSON(w, http.StatusOK, logs)
}

func filterFromQuery(r *http.Request) audit.Filter {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	return audit.Filter{
		Actor:  q.Get("actor"),
		Action: q.Get("action"),
		Limit:  limit,
	}
}
