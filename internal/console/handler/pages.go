package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/xela07ax/authconsole/internal/chart"
	"github.com/xela07ax/authconsole/internal/console/service"
	"github.com/xela07ax/authconsole/internal/console/web"
	"github.com/xela07ax/authconsole/internal/domain"
	"github.com/xela07ax/authconsole/internal/infra/auth"
	"go.uber.org/zap"
)

type OverviewReader interface {
	Get(ctx context.Context) (*domain.Overview, error)
}

type UserManager interface {
	List(ctx context.Context) ([]domain.User, error)
	Get(ctx context.Context, uid string) (*domain.User, error)
	Delete(ctx context.Context, email string) error
	SetActive(ctx context.Context, email string, active bool) error
	Edit(ctx context.Context, current domain.User, name, role string) (bool, error)
}

type SessionManager interface {
	List(ctx context.Context) ([]domain.Session, error)
	ListForUser(ctx context.Context, uid string) ([]domain.Session, error)
	Revoke(ctx context.Context, sessionID, uid string) error
	Delete(ctx context.Context, sessionID, uid string) error
	RevokeAll(ctx context.Context, uid string) error
	DeleteAll(ctx context.Context, uid string) error
}

type PasswordManager interface {
	Reset(ctx context.Context, email, oldPassword, newPassword, confirm string) error
	ForgetRequest(ctx context.Context, email string) error
}

// PagesHandler — серверные HTML-страницы. Каждый GET читает бэкенд заново,
// каждый POST заканчивается редиректом с flash-уведомлением.
type PagesHandler struct {
	overview  OverviewReader
	users     UserManager
	sessions  SessionManager
	passwords PasswordManager
	audit     AuditReader

	render      *web.Renderer
	authEnabled bool
	logger      *zap.Logger
}

func NewPagesHandler(
	overview OverviewReader,
	users UserManager,
	sessions SessionManager,
	passwords PasswordManager,
	auditReader AuditReader,
	render *web.Renderer,
	authEnabled bool,
	logger *zap.Logger,
) *PagesHandler {
	return &PagesHandler{
		overview:    overview,
		users:       users,
		sessions:    sessions,
		passwords:   passwords,
		audit:       auditReader,
		render:      render,
		authEnabled: authEnabled,
		logger:      logger.Named("pages"),
	}
}

func (h *PagesHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.Overview)
	r.Get("/sessions", h.Sessions)
	r.Get("/audit", h.Audit)

	r.Get("/users", h.Users)
	r.Route("/users/{uid}", func(r chi.Router) {
		r.Get("/", h.User)
		r.Post("/edit", h.EditUser)
		r.Post("/toggle-active", h.ToggleActive)
		r.Post("/delete", h.DeleteUser)
		r.Post("/password", h.ResetPassword)
		r.Post("/forget-password", h.ForgetPassword)
		r.Post("/sessions/{action}", h.SessionAction)
	})
	return r
}

func (h *PagesHandler) page(w http.ResponseWriter, r *http.Request, title, nav string) web.Page {
	return web.Page{
		Title:       title,
		Nav:         nav,
		Operator:    auth.OperatorFromContext(r.Context()),
		AuthEnabled: h.authEnabled,
		Flash:       popFlash(w, r),
	}
}

// Overview — GET /?device=&browser=&os=
func (h *PagesHandler) Overview(w http.ResponseWriter, r *http.Request) {
	o, err := h.overview.Get(r.Context())
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	q := r.URL.Query()
	data := web.OverviewData{
		Page:     h.page(w, r, "Overview", "overview"),
		Overview: o,
		Users:    chart.NewPie("Total Users", "", chart.UserStatusBuckets(o), ""),
		Sessions: chart.NewPie("Total Sessions", "", chart.SessionStatusBuckets(o), ""),
		Devices:  chart.NewPie("All Devices", "device", chart.Aggregate(o.DeviceTypes, chart.ThemeDevices), q.Get("device")),
		Browsers: chart.NewPie("All Browsers", "browser", chart.Aggregate(o.BrowserTypes, chart.ThemeBrowsers), q.Get("browser")),
		OSes:     chart.NewPie("Operating Systems", "os", chart.Aggregate(o.OSTypes, chart.ThemeOS), q.Get("os")),
	}
	h.renderPage(w, r, web.PageOverview, data)
}

// Users — GET /users
func (h *PagesHandler) Users(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	h.renderPage(w, r, web.PageUsers, web.UsersData{Page: h.page(w, r, "Users", "users"), Users: users})
}

// User — GET /users/{uid}: профиль и его сессии.
func (h *PagesHandler) User(w http.ResponseWriter, r *http.Request) {
	uid := chi.URLParam(r, "uid")
	user, err := h.users.Get(r.Context(), uid)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	sessions, err := h.sessions.ListForUser(r.Context(), uid)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	h.renderPage(w, r, web.PageUser, web.UserData{
		Page:     h.page(w, r, user.Name, "users"),
		User:     user,
		Sessions: sessions,
	})
}

// Sessions — GET /sessions
func (h *PagesHandler) Sessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.sessions.List(r.Context())
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	h.renderPage(w, r, web.PageSessions, web.SessionsData{Page: h.page(w, r, "Sessions", "sessions"), Sessions: sessions})
}

// Audit — GET /audit?actor=&action=
func (h *PagesHandler) Audit(w http.ResponseWriter, r *http.Request) {
	filter := filterFromQuery(r)
	entries, err := h.audit.FetchLogs(r.Context(), filter)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	h.renderPage(w, r, web.PageAudit, web.AuditData{
		Page:    h.page(w, r, "Audit", "audit"),
		Entries: entries,
		Actor:   filter.Actor,
		Action:  filter.Action,
	})
}

// EditUser — POST /users/{uid}/edit (name, role, redirect)
func (h *PagesHandler) EditUser(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, func(ctx context.Context, user *domain.User) (string, error) {
		changed, err := h.users.Edit(ctx, *user, r.PostFormValue("name"), r.PostFormValue("role"))
		if err != nil {
			return "", err
		}
		if !changed {
			return "Nothing to update", nil
		}
		return "User updated", nil
	})
}

// ToggleActive — POST /users/{uid}/toggle-active (active=true|false)
func (h *PagesHandler) ToggleActive(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, func(ctx context.Context, user *domain.User) (string, error) {
		active, err := strconv.ParseBool(r.PostFormValue("active"))
		if err != nil {
			return "", fmt.Errorf("%w: active must be true or false", service.ErrValidation)
		}
		if err := h.users.SetActive(ctx, user.Email, active); err != nil {
			return "", err
		}
		if active {
			return "Account activated", nil
		}
		return "Account deactivated", nil
	})
}

// DeleteUser — POST /users/{uid}/delete, после удаления возвращаемся к списку.
func (h *PagesHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	h.mutateTo(w, r, "/users", func(ctx context.Context, user *domain.User) (string, error) {
		if err := h.users.Delete(ctx, user.Email); err != nil {
			return "", err
		}
		return "User deleted", nil
	})
}

// ResetPassword — POST /users/{uid}/password (old_password, new_password, confirm_password)
func (h *PagesHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, func(ctx context.Context, user *domain.User) (string, error) {
		err := h.passwords.Reset(ctx, user.Email,
			r.PostFormValue("old_password"),
			r.PostFormValue("new_password"),
			r.PostFormValue("confirm_password"))
		if err != nil {
			return "", err
		}
		return "Password updated", nil
	})
}

// ForgetPassword — POST /users/{uid}/forget-password
func (h *PagesHandler) ForgetPassword(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, func(ctx context.Context, user *domain.User) (string, error) {
		if err := h.passwords.ForgetRequest(ctx, user.Email); err != nil {
			return "", err
		}
		return "Password reset email sent", nil
	})
}

// SessionAction — POST /users/{uid}/sessions/{revoke|delete|revoke-all|delete-all}
func (h *PagesHandler) SessionAction(w http.ResponseWriter, r *http.Request) {
	action := chi.URLParam(r, "action")
	h.mutate(w, r, func(ctx context.Context, user *domain.User) (string, error) {
		sessionID := r.PostFormValue("session_id")
		switch action {
		case "revoke":
			return "Session revoked", h.sessions.Revoke(ctx, sessionID, user.UID)
		case "delete":
			return "Session deleted", h.sessions.Delete(ctx, sessionID, user.UID)
		case "revoke-all":
			return "All sessions revoked", h.sessions.RevokeAll(ctx, user.UID)
		case "delete-all":
			return "All sessions deleted", h.sessions.DeleteAll(ctx, user.UID)
		default:
			return "", fmt.Errorf("%w: unknown session action %q", service.ErrValidation, action)
		}
	})
}

type mutation func(ctx context.Context, user *domain.User) (string, error)

func (h *PagesHandler) mutate(w http.ResponseWriter, r *http.Request, fn mutation) {
	uid := chi.URLParam(r, "uid")
	h.mutateTo(w, r, "/users/"+uid, fn)
}

// mutateTo: форма -> текущий пользователь с бэкенда -> действие -> flash -> редирект.
// Ошибка на любом шаге попадает во flash, страница назначения перечитает данные.
func (h *PagesHandler) mutateTo(w http.ResponseWriter, r *http.Request, successTo string, fn mutation) {
	uid := chi.URLParam(r, "uid")
	back := "/users/" + uid

	if err := r.ParseForm(); err != nil {
		setFlash(w, flashError, "Invalid form")
		http.Redirect(w, r, back, http.StatusSeeOther)
		return
	}
	// Форма из списка пользователей просит вернуться туда же
	if redirect := r.PostFormValue("redirect"); redirect != "" {
		back = safeRedirect(redirect, back)
		successTo = back
	}

	user, err := h.users.Get(r.Context(), uid)
	if err != nil {
		setFlash(w, flashError, h.describe(err))
		http.Redirect(w, r, "/users", http.StatusSeeOther)
		return
	}

	msg, err := fn(r.Context(), user)
	if err != nil {
		setFlash(w, flashError, h.describe(err))
		http.Redirect(w, r, back, http.StatusSeeOther)
		return
	}
	setFlash(w, flashSuccess, msg)
	http.Redirect(w, r, successTo, http.StatusSeeOther)
}

// describe превращает ошибку сервиса в текст для flash.
func (h *PagesHandler) describe(err error) string {
	var pErr *service.PartialUpdateError
	var uErr *service.UpstreamError
	switch {
	case errors.Is(err, service.ErrPasswordMismatch):
		return "New password and confirm password do not match"
	case errors.Is(err, service.ErrValidation):
		return "Please fill in all required fields"
	case errors.As(err, &pErr):
		if len(pErr.Applied) > 0 {
			return fmt.Sprintf("Role updated, but updating %s failed: %s", pErr.Step, h.describe(pErr.Err))
		}
		return fmt.Sprintf("Failed to update %s: %s", pErr.Step, h.describe(pErr.Err))
	case errors.As(err, &uErr):
		return uErr.Message()
	case service.IsUnavailable(err):
		h.logger.Error("auth api unavailable", zap.Error(err))
		return "Auth service is unavailable"
	default:
		h.logger.Error("page action failed", zap.Error(err))
		return "Something went wrong"
	}
}

func (h *PagesHandler) renderPage(w http.ResponseWriter, r *http.Request, page string, data any) {
	if err := h.render.Render(w, http.StatusOK, page, data); err != nil {
		h.logger.Error("failed to render page", zap.String("page", page), zap.String("path", r.URL.Path), zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func (h *PagesHandler) renderError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	message := "Something went wrong"

	var uErr *service.UpstreamError
	switch {
	case errors.As(err, &uErr):
		status = uErr.Response.Status
		if status < 400 || status > 599 {
			status = http.StatusBadGateway
		}
		message = uErr.Message()
	case service.IsUnavailable(err):
		status = http.StatusBadGateway
		message = "Auth service is unavailable"
	}
	h.logger.Warn("page load failed", zap.String("path", r.URL.Path), zap.Int("status", status), zap.Error(err))

	data := web.ErrorData{Page: h.page(w, r, "Error", ""), Status: status, Message: message}
	if rErr := h.render.Render(w, status, web.PageError, data); rErr != nil {
		http.Error(w, message, status)
	}
}
