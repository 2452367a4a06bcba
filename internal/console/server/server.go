package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/xela07ax/authconsole/internal/console/handler"
	"github.com/xela07ax/authconsole/internal/console/web"
	"github.com/xela07ax/authconsole/internal/infra"
	"github.com/xela07ax/authconsole/internal/infra/auth"
	"go.uber.org/zap"
	"moul.io/chizap"
)

type ConsoleServer struct {
	router *chi.Mux
	logger *zap.Logger
	cfg    *infra.Config

	// Проверка токенов операторов (RS256). nil, когда auth.enabled=false
	authValidator auth.TokenValidator

	authHandler  *handler.AuthHandler  // /auth/token, /login
	proxyHandler *handler.ProxyHandler // /api/...
	auditHandler *handler.AuditHandler // /api/audit
	pagesHandler *handler.PagesHandler // HTML-страницы
}

// NewConsoleServer инициализирует сервер консоли со всеми зависимостями
func NewConsoleServer(
	cfg *infra.Config,
	logger *zap.Logger,
	validator auth.TokenValidator,
	authH *handler.AuthHandler,
	proxyH *handler.ProxyHandler,
	auditH *handler.AuditHandler,
	pagesH *handler.PagesHandler,
) *ConsoleServer {
	s := &ConsoleServer{
		router:        chi.NewRouter(),
		logger:        logger.Named("console-http"),
		cfg:           cfg,
		authValidator: validator,
		authHandler:   authH,
		proxyHandler:  proxyH,
		auditHandler:  auditH,
		pagesHandler:  pagesH,
	}

	s.routes()
	return s
}

// protect выбирает middleware аутентификации: открытая консоль или RS256.
func (s *ConsoleServer) protect(deny http.HandlerFunc) func(http.Handler) http.Handler {
	if !s.cfg.Auth.Enabled || s.authValidator == nil {
		return auth.Open
	}
	return auth.NewMiddleware(s.authValidator, s.logger, deny)
}

func (s *ConsoleServer) routes() {
	r := s.router

	// --- 1. Глобальные инфраструктурные Middleware (для всех) ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(chizap.New(s.logger, &chizap.Opts{
		WithReferer:   true,
		WithUserAgent: true,
	}))
	r.Use(middleware.Recoverer)

	// --- 2. ПУБЛИЧНЫЕ РОУТЫ ---
	r.Group(func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
		r.Handle("/static/*", web.Static())

		if s.cfg.Auth.Enabled {
			r.Post("/auth/token", s.authHandler.Token)
			r.Get("/login", s.authHandler.LoginPage)
			r.Post("/login", s.authHandler.Login)
			r.Post("/logout", s.authHandler.Logout)
		}
	})

	// --- 3. JSON API: лимит по IP + токен ---
	r.Route("/api", func(r chi.Router) {
		if limit := s.cfg.Server.APIRateLimit; limit > 0 {
			r.Use(httprate.LimitByIP(limit, time.Minute))
		}
		r.Use(s.protect(handler.DenyJSON))

		r.Get("/audit", s.auditHandler.GetLogs)
		r.Mount("/", s.proxyHandler.Routes())
	})

	// --- 4. HTML-страницы ---
	r.Group(func(r chi.Router) {
		r.Use(s.protect(handler.DenyPage))
		r.Mount("/", s.pagesHandler.Routes())
	})
}

// ServeHTTP позволяет использовать ConsoleServer как стандартный http.Handler
func (s *ConsoleServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
