package web

import (
	"github.com/xela07ax/authconsole/internal/audit"
	"github.com/xela07ax/authconsole/internal/chart"
	"github.com/xela07ax/authconsole/internal/domain"
)

// Flash — одноразовое уведомление после POST/Redirect/GET.
type Flash struct {
	Kind    string // success, error
	Message string
}

// Page — общие поля layout.
type Page struct {
	Title       string
	Nav         string
	Operator    string
	AuthEnabled bool
	Flash       *Flash
}

type OverviewData struct {
	Page
	Overview *domain.Overview
	Users    chart.Pie
	Sessions chart.Pie
	Devices  chart.Pie
	Browsers chart.Pie
	OSes     chart.Pie
}

type UsersData struct {
	Page
	Users []domain.User
}

type UserData struct {
	Page
	User     *domain.User
	Sessions []domain.Session
}

// SessionsTable — аргумент общего шаблона таблицы сессий.
// Пустой UID: владелец берётся из каждой сессии (общий список).
type SessionsTable struct {
	UID      string
	Sessions []domain.Session
	Actions  bool
	Redirect string
}

type SessionsData struct {
	Page
	Sessions []domain.Session
}

type AuditData struct {
	Page
	Entries []audit.Entry
	Actor   string
	Action  string
}

type LoginData struct {
	Page
	Username string
	Error    string
	Next     string
}

type ErrorData struct {
	Page
	Status  int
	Message string
}
