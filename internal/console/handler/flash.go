package handler

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/xela07ax/authconsole/internal/console/web"
)

const flashCookie = "authconsole_flash"

const (
	flashSuccess = "success"
	flashError   = "error"
)

// setFlash сохраняет уведомление до следующего GET после редиректа.
func setFlash(w http.ResponseWriter, kind, message string) {
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    url.QueryEscape(kind + "|" + message),
		Path:     "/",
		MaxAge:   60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// popFlash читает уведомление и сразу удаляет cookie.
func popFlash(w http.ResponseWriter, r *http.Request) *web.Flash {
	c, err := r.Cookie(flashCookie)
	if err != nil {
		return nil
	}
	http.SetCookie(w, &http.Cookie{Name: flashCookie, Value: "", Path: "/", MaxAge: -1})

	raw, err := url.QueryUnescape(c.Value)
	if err != nil {
		return nil
	}
	kind, message, ok := strings.Cut(raw, "|")
	if !ok || message == "" {
		return nil
	}
	if kind != flashSuccess {
		kind = flashError
	}
	return &web.Flash{Kind: kind, Message: message}
}
