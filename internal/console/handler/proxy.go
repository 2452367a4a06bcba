package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/xela07ax/authconsole/internal/console/service"
	"github.com/xela07ax/authconsole/internal/domain"
	"github.com/xela07ax/authconsole/internal/httpx"
	"github.com/xela07ax/authconsole/internal/upstream"
	"go.uber.org/zap"
)

// Forwarder — то, что нужно прокси от сервисного слоя.
type Forwarder interface {
	Forward(ctx context.Context, route upstream.Route, body any, target string) (*upstream.Response, error)
}

// ProxyHandler — тонкие JSON-роуты /api, каждый пересылает тело на свой путь бэкенда.
type ProxyHandler struct {
	gw     Forwarder
	binder *httpx.Binder
	logger *zap.Logger
}

func NewProxyHandler(gw Forwarder, logger *zap.Logger) *ProxyHandler {
	l := logger.Named("proxy")
	return &ProxyHandler{gw: gw, binder: httpx.NewBinder(l), logger: l}
}

// Routes монтируется под /api.
func (h *ProxyHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/overview/get-all", h.get(upstream.OverviewGetAll))

	r.Route("/user", func(r chi.Router) {
		r.Get("/get-all", h.get(upstream.UserGetAll))
		r.Post("/get-from-uid", post(h, upstream.UserGetFromUID, func(b domain.UIDRequest) string { return b.UID }))
		r.Post("/delete", post(h, upstream.UserDelete, func(b domain.EmailRequest) string { return b.Email }))
		r.Post("/toggle-active-status", post(h, upstream.UserToggleActive, func(b domain.ToggleActiveRequest) string { return b.Email }))
		r.Post("/update", post(h, upstream.UserUpdate, func(b domain.UpdateNameRequest) string { return b.Email }))
		r.Post("/update-role", post(h, upstream.UserUpdateRole, func(b domain.UpdateRoleRequest) string { return b.Email }))
	})

	r.Route("/session", func(r chi.Router) {
		r.Get("/get-all", h.get(upstream.SessionGetAll))
		r.Post("/get-all-from-uid", post(h, upstream.SessionGetAllFromUID, func(b domain.UIDRequest) string { return b.UID }))
		r.Post("/revoke", post(h, upstream.SessionRevoke, func(b domain.SessionRequest) string { return b.SessionID }))
		r.Post("/revoke-all", post(h, upstream.SessionRevokeAll, func(b domain.UIDRequest) string { return b.UID }))
		r.Post("/delete", post(h, upstream.SessionDelete, func(b domain.SessionRequest) string { return b.SessionID }))
		r.Post("/delete-all", post(h, upstream.SessionDeleteAll, func(b domain.UIDRequest) string { return b.UID }))
	})

	r.Route("/password", func(r chi.Router) {
		r.Post("/reset", post(h, upstream.PasswordReset, func(b domain.PasswordResetRequest) string { return b.Email }))
		r.Post("/forget-request", post(h, upstream.PasswordForgetRequest, func(b domain.EmailRequest) string { return b.Email }))
	})

	return r
}

func (h *ProxyHandler) get(route upstream.Route) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.forward(w, r, route, nil, "")
	}
}

// post разбирает и валидирует тело типа T до обращения к бэкенду.
func post[T any](h *ProxyHandler, route upstream.Route, target func(T) string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body T
		if !h.binder.Bind(w, r, &body) {
			return
		}
		h.forward(w, r, route, body, target(body))
	}
}

func (h *ProxyHandler) forward(w http.ResponseWriter, r *http.Request, route upstream.Route, body any, target string) {
	resp, err := h.gw.Forward(r.Context(), route, body, target)
	if err != nil {
		writeForwardError(w, h.logger, route, err)
		return
	}
	// Статус и тело бэкенда отдаются как есть, в том числе 4xx/5xx
	httpx.WriteJSON(w, resp.Status, resp.Body)
}

func writeForwardError(w http.ResponseWriter, logger *zap.Logger, route upstream.Route, err error) {
	if service.IsUnavailable(err) {
		logger.Error("auth api unavailable", zap.String("action", route.Action), zap.Error(err))
		httpx.WriteError(w, http.StatusBadGateway, httpx.ErrorResponse[any]{
			Code:    httpx.ErrUpstreamUnavailable,
			Message: "auth service is unavailable",
		})
		return
	}
	logger.Error("proxy call failed", zap.String("action", route.Action), zap.Error(err))
	httpx.WriteError(w, http.StatusInternalServerError, httpx.ErrorResponse[any]{
		Code:    httpx.ErrInternal,
		Message: "internal error",
	})
}
