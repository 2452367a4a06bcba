package audit

import "time"

const (
	StatusSuccess = "SUCCESS"
	StatusFailed  = "FAILED"
)

// Entry — одно действие администратора над бэкендом авторизации.
type Entry struct {
	ID        string `json:"id"`         // UUID записи
	RequestID string `json:"request_id"` // Сквозной ID запроса (chi RequestID)
	Actor     string `json:"actor"`      // Оператор консоли
	Action    string `json:"action"`     // Операция бэкенда, например "user.delete"
	Target    string `json:"target"`     // email, uid или session_id

	Status         string    `json:"status"`          // SUCCESS или FAILED
	UpstreamStatus int       `json:"upstream_status"` // 0, если до бэкенда не дошли
	Error          string    `json:"error,omitempty"`
	DurationMs     int64     `json:"duration_ms"`
	Timestamp      time.Time `json:"timestamp"`
}

// Filter — выборка журнала. Пустые поля не фильтруют.
type Filter struct {
	Actor  string
	Action string
	Limit  int
}

const DefaultLimit = 100

func (f Filter) limit() int {
	if f.Limit <= 0 || f.Limit > DefaultLimit {
		return DefaultLimit
	}
	return f.Limit
}

func (f Filter) match(e Entry) bool {
	return (f.Actor == "" || e.Actor == f.Actor) && (f.Action == "" || e.Action == f.Action)
}
