package service

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/stretchr/testify/mock"
	"github.com/xela07ax/authconsole/internal/audit"
	"github.com/xela07ax/authconsole/internal/upstream"
	"go.uber.org/zap"
)

type mockDoer struct {
	mock.Mock
}

func (m *mockDoer) Do(_ context.Context, call upstream.Call) (*upstream.Response, error) {
	args := m.Called(call.Route.Action, call.Body)
	resp, _ := args.Get(0).(*upstream.Response)
	return resp, args.Error(1)
}

type mockAuditor struct {
	mock.Mock
}

func (m *mockAuditor) Log(entry audit.Entry) {
	m.Called(entry)
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) Notify(_ context.Context, action, target string) {
	m.Called(action, target)
}

func ok(body string) *upstream.Response {
	return &upstream.Response{Status: http.StatusOK, Body: json.RawMessage(body)}
}

func status(code int, body string) *upstream.Response {
	return &upstream.Response{Status: code, Body: json.RawMessage(body)}
}

type fixture struct {
	doer     *mockDoer
	auditor  *mockAuditor
	notifier *mockNotifier
	gw       *Gateway
}

func newFixture() *fixture {
	f := &fixture{doer: &mockDoer{}, auditor: &mockAuditor{}, notifier: &mockNotifier{}}
	f.gw = NewGateway(f.doer, f.auditor, f.notifier, nil, zap.NewNop())
	return f
}

// quiet разрешает любые записи журнала и сигналы, когда тест проверяет не их.
func (f *fixture) quiet() *fixture {
	f.auditor.On("Log", mock.Anything).Maybe()
	f.notifier.On("Notify", mock.Anything, mock.Anything).Maybe()
	return f
}
