package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xela07ax/authconsole/internal/console/service"
	"github.com/xela07ax/authconsole/internal/console/web"
	"github.com/xela07ax/authconsole/internal/infra"
	"github.com/xela07ax/authconsole/internal/timefmt"
	"github.com/xela07ax/authconsole/internal/upstream"
	"go.uber.org/zap"
)

// fakeBackend — бэкенд авторизации в памяти: путь -> ответ, с журналом вызовов.
type fakeBackend struct {
	t      *testing.T
	mu     sync.Mutex
	routes map[string]func(body map[string]any) (int, string)
	calls  []backendCall
}

type backendCall struct {
	Path string
	Body map[string]any
}

func newFakeBackend(t *testing.T) *fakeBackend {
	return &fakeBackend{t: t, routes: map[string]func(map[string]any) (int, string){}}
}

func (b *fakeBackend) on(path string, status int, body string) *fakeBackend {
	b.routes[path] = func(map[string]any) (int, string) { return status, body }
	return b
}

func (b *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	raw, _ := io.ReadAll(r.Body)
	var body map[string]any
	_ = json.Unmarshal(raw, &body)

	b.mu.Lock()
	b.calls = append(b.calls, backendCall{Path: r.URL.Path, Body: body})
	fn, ok := b.routes[r.URL.Path]
	b.mu.Unlock()

	if r.Header.Get(upstream.APIKeyHeader) != "test-key" {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"message":"not found"}`)
		return
	}
	status, resp := fn(body)
	w.WriteHeader(status)
	_, _ = io.WriteString(w, resp)
}

func (b *fakeBackend) paths() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, 0, len(b.calls))
	for _, c := range b.calls {
		out = append(out, c.Path)
	}
	return out
}

func (b *fakeBackend) lastBody(path string) map[string]any {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := len(b.calls) - 1; i >= 0; i-- {
		if b.calls[i].Path == path {
			return b.calls[i].Body
		}
	}
	return nil
}

type stack struct {
	backend  *fakeBackend
	gateway  *service.Gateway
	renderer *web.Renderer
	pages    *PagesHandler
}

// newStack собирает настоящие сервисы поверх fakeBackend.
func newStack(t *testing.T, backend *fakeBackend) *stack {
	t.Helper()
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	client := upstream.NewClient(infra.UpstreamConfig{BaseURL: srv.URL, APIKey: "test-key", Timeout: time.Second}, nil, zap.NewNop())
	gw := service.NewGateway(client, nil, nil, nil, zap.NewNop())

	renderer, err := web.NewRenderer(timefmt.New(time.UTC), timefmt.SessionLifetimeDays)
	require.NoError(t, err)

	pages := NewPagesHandler(
		service.NewOverviewService(gw),
		service.NewUserService(gw),
		service.NewSessionService(gw),
		service.NewPasswordService(gw),
		emptyAudit{},
		renderer,
		false,
		zap.NewNop(),
	)
	return &stack{backend: backend, gateway: gw, renderer: renderer, pages: pages}
}
