package auth

import (
	"context"
	"net/http"

	"go.uber.org/zap"
)

// CookieName — cookie с токеном оператора для HTML-страниц.
const CookieName = "authconsole_token"

// Anonymous — оператор, когда аутентификация выключена.
const Anonymous = "anonymous"

type ctxKey struct{}

// WithOperator кладёт имя оператора в контекст запроса.
func WithOperator(ctx context.Context, operator string) context.Context {
	return context.WithValue(ctx, ctxKey{}, operator)
}

// OperatorFromContext — кто выполняет действие. Пусто вне аутентифицированного запроса.
func OperatorFromContext(ctx context.Context) string {
	op, _ := ctx.Value(ctxKey{}).(string)
	return op
}

// tokenFromRequest: заголовок Authorization важнее cookie.
func tokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		return h
	}
	if c, err := r.Cookie(CookieName); err == nil {
		return c.Value
	}
	return ""
}

// NewMiddleware пропускает запрос дальше только с валидным токеном.
// Отказ отрисовывает deny: JSON 401 для /api, редирект на /login для страниц.
func NewMiddleware(v TokenValidator, logger *zap.Logger, deny http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := tokenFromRequest(r)
			if token == "" {
				deny(w, r)
				return
			}

			claims, err := v.VerifyToken(token)
			if err != nil {
				logger.Warn("auth failure", zap.String("path", r.URL.Path), zap.Error(err))
				deny(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithOperator(r.Context(), claims.Operator)))
		})
	}
}

// Open — middleware для auth.enabled=false: все запросы от Anonymous.
func Open(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(WithOperator(r.Context(), Anonymous)))
	})
}
