package handler

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/xela07ax/authconsole/internal/console/service"
	"github.com/xela07ax/authconsole/internal/console/web"
	"github.com/xela07ax/authconsole/internal/domain"
	"github.com/xela07ax/authconsole/internal/httpx"
	"github.com/xela07ax/authconsole/internal/infra/auth"
	"go.uber.org/zap"
)

type TokenIssuer interface {
	GenerateToken(ctx context.Context, username, password string) (*domain.TokenResponse, error)
}

type AuthHandler struct {
	service      TokenIssuer
	render       *web.Renderer
	binder       *httpx.Binder
	cookieSecure bool
	logger       *zap.Logger
}

func NewAuthHandler(s TokenIssuer, render *web.Renderer, cookieSecure bool, logger *zap.Logger) *AuthHandler {
	l := logger.Named("auth_handler")
	return &AuthHandler{
		service:      s,
		render:       render,
		binder:       httpx.NewBinder(l),
		cookieSecure: cookieSecure,
		logger:       l,
	}
}

// Token — выдача токена для API-клиентов
// POST /auth/token {"username": "...", "password": "..."}
func (h *AuthHandler) Token(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if !h.binder.Bind(w, r, &req) {
		return
	}

	resp, err := h.service.GenerateToken(r.Context(), req.Username, req.Password)
	if err != nil {
		// не уточняем, что именно неверно (логин или пароль) для защиты от перебора
		h.logger.Warn("token request rejected", zap.String("username", req.Username), zap.Error(err))
		httpx.WriteError(w, http.StatusUnauthorized, httpx.ErrorResponse[any]{
			Code:    httpx.ErrUnauthorized,
			Message: "invalid credentials",
		})
		return
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

// LoginPage — GET /login
func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	h.renderLogin(w, http.StatusOK, web.LoginData{Next: safeRedirect(r.URL.Query().Get("next"), "/")})
}

// Login — POST /login из HTML-формы, токен кладётся в HttpOnly cookie.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderLogin(w, http.StatusBadRequest, web.LoginData{Error: "Invalid form"})
		return
	}
	username := strings.TrimSpace(r.PostFormValue("username"))
	password := r.PostFormValue("password")
	next := safeRedirect(r.PostFormValue("next"), "/")

	if username == "" || password == "" {
		h.renderLogin(w, http.StatusUnprocessableEntity, web.LoginData{Username: username, Next: next, Error: "Username and password are required"})
		return
	}

	resp, err := h.service.GenerateToken(r.Context(), username, password)
	if err != nil {
		if !errors.Is(err, service.ErrInvalidCredentials) {
			h.logger.Error("login failed", zap.Error(err))
		}
		h.renderLogin(w, http.StatusUnauthorized, web.LoginData{Username: username, Next: next, Error: "Invalid username or password"})
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    resp.AccessToken,
		Path:     "/",
		MaxAge:   int(resp.ExpiresIn),
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteStrictMode,
	})
	http.Redirect(w, r, next, http.StatusSeeOther)
}

// Logout — POST /logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteStrictMode,
	})
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (h *AuthHandler) renderLogin(w http.ResponseWriter, status int, data web.LoginData) {
	data.Page = web.Page{Title: "Sign in"}
	if err := h.render.Render(w, status, web.PageLogin, data); err != nil {
		h.logger.Error("failed to render login", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// DenyJSON — ответ middleware аутентификации для /api.
func DenyJSON(w http.ResponseWriter, _ *http.Request) {
	httpx.WriteError(w, http.StatusUnauthorized, httpx.ErrorResponse[any]{
		Code:    httpx.ErrUnauthorized,
		Message: "unauthorized",
	})
}

// DenyPage — страницы без токена уводят на форму входа.
func DenyPage(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/login?next="+url.QueryEscape(r.URL.Path), http.StatusSeeOther)
}

// safeRedirect пропускает только локальные пути, иначе fallback.
func safeRedirect(target, fallback string) string {
	if !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.HasPrefix(target, "/\\") {
		return fallback
	}
	return target
}
