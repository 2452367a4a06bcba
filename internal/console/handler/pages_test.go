package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xela07ax/authconsole/internal/audit"
	"github.com/xela07ax/authconsole/internal/domain"
	"github.com/xela07ax/authconsole/internal/upstream"
)

type emptyAudit struct{}

func (emptyAudit) FetchLogs(context.Context, audit.Filter) ([]audit.Entry, error) {
	return []audit.Entry{}, nil
}

const (
	overviewJSON = `{"user_count":3,"active_user_count":2,"inactive_user_count":1,"blocked_user_count":1,
		"revoked_session_count":1,"active_session_count":4,
		"os_types":["Linux","Mac OS","Linux"],"device_types":["Desktop","Desktop","Mobile"],
		"browser_types":["Chrome","Mobile Safari","MobileSafari"]}`
	userJSON = `{"uid":"u1","name":"Ann","role":"user","email":"ann@example.com","email_verified":true,"is_active":true,
		"created_at":{"$date":{"$numberLong":"1700000000000"}},"updated_at":{"$date":{"$numberLong":"1700000000000"}}}`
	sessionsJSON = `[{"session_id":"s1","uid":"u1","user_agent":"Mozilla/5.0","os":"Linux","device":"Desktop",
		"browser":"Chrome","is_revoked":false,"created_at":{"$date":{"$numberLong":"1700000000000"}},
		"updated_at":{"$date":{"$numberLong":"oops"}}}]`
)

func get(t *testing.T, s *stack, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.pages.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func postForm(t *testing.T, s *stack, target string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	s.pages.Routes().ServeHTTP(rec, req)
	return rec
}

// flashOf достаёт flash из Set-Cookie ответа.
func flashOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == flashCookie {
			v, err := url.QueryUnescape(c.Value)
			require.NoError(t, err)
			return v
		}
	}
	return ""
}

func TestPages_Overview(t *testing.T) {
	s := newStack(t, newFakeBackend(t).on("/api/overview/get-all", 200, overviewJSON))

	rec := get(t, s, "/?browser=MobileSafari")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()

	assert.Contains(t, body, "Total Users")
	assert.Contains(t, body, "Blocked Users")
	assert.Contains(t, body, "All Devices")
	assert.Contains(t, body, "Operating Systems")
	// пробелы в метках убираются, обе записи Safari в одной корзине
	assert.Contains(t, body, "MobileSafari")
	assert.NotContains(t, body, "Mobile Safari")
	assert.Contains(t, body, "conic-gradient(")
	assert.Contains(t, body, "hsl(var(--chart-1-2))")
	assert.NotContains(t, body, "ZgotmplZ")
}

func TestPages_OverviewEmptyCharts(t *testing.T) {
	s := newStack(t, newFakeBackend(t).on("/api/overview/get-all", 200,
		`{"user_count":0,"os_types":[],"device_types":[],"browser_types":[]}`))

	rec := get(t, s, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "No data")
}

func TestPages_UpstreamDown(t *testing.T) {
	s := newStack(t, newFakeBackend(t))
	s.pages.overview = failingOverview{}

	rec := get(t, s, "/")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "Auth service is unavailable")
}

func TestPages_UserDetail(t *testing.T) {
	s := newStack(t, newFakeBackend(t).
		on("/api/user/get-from-uid", 200, userJSON).
		on("/api/session/get-all-from-uid", 200, sessionsJSON))

	rec := get(t, s, "/users/u1")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()

	assert.Contains(t, body, "ann@example.com")
	assert.Contains(t, body, "Nov 14, 2023 - 10:13 PM")
	// created_at + 45 дней
	assert.Contains(t, body, "Dec 29, 2023 - 10:13 PM")
	// битый updated_at не роняет страницу
	assert.Contains(t, body, "—")
	assert.Contains(t, body, `action="/users/u1/sessions/revoke"`)
	assert.Equal(t, "u1", s.backend.lastBody("/api/user/get-from-uid")["uid"])
}

func TestPages_UserNotFound(t *testing.T) {
	s := newStack(t, newFakeBackend(t).on("/api/user/get-from-uid", 404, `{"message":"User not found"}`))

	rec := get(t, s, "/users/nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "User not found")
}

func TestPages_UsersAndSessions(t *testing.T) {
	s := newStack(t, newFakeBackend(t).
		on("/api/user/get-all", 200, "["+userJSON+"]").
		on("/api/session/get-all", 200, sessionsJSON))

	rec := get(t, s, "/users")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `href="/users/u1"`)
	assert.Contains(t, rec.Body.String(), "Verified")

	rec = get(t, s, "/sessions")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Mozilla/5.0")
}

func TestPages_UsersBadTimestampFallsBackPerCell(t *testing.T) {
	broken := `{"uid":"u2","name":"Bob","role":"user","email":"bob@example.com",
		"created_at":{"$date":{"$numberLong":"not-a-number"}},"updated_at":"garbage"}`
	s := newStack(t, newFakeBackend(t).on("/api/user/get-all", 200, "["+userJSON+","+broken+"]"))

	rec := get(t, s, "/users")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `href="/users/u1"`)
	assert.Contains(t, body, "Nov 14, 2023 - 10:13 PM")
	assert.Contains(t, body, `href="/users/u2"`)
	assert.Contains(t, body, "—")
}

func TestPages_AllSessionsActions(t *testing.T) {
	sessions := `[
		{"session_id":"s1","uid":"u1","is_revoked":false,"created_at":{"$date":{"$numberLong":"1700000000000"}}},
		{"session_id":"s2","uid":"u2","is_revoked":true,"created_at":{"$date":{"$numberLong":"1700000000000"}}}
	]`
	s := newStack(t, newFakeBackend(t).on("/api/session/get-all", 200, sessions))

	rec := get(t, s, "/sessions")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `action="/users/u1/sessions/revoke"`)
	assert.Contains(t, body, `action="/users/u1/sessions/delete"`)
	// отозванную сессию можно только удалить
	assert.NotContains(t, body, `action="/users/u2/sessions/revoke"`)
	assert.Contains(t, body, `action="/users/u2/sessions/delete"`)
	assert.Contains(t, body, `name="redirect" value="/sessions"`)

	tests := []struct {
		action string
		path   string
		flash  string
	}{
		{"revoke", "/api/session/revoke", "success|Session revoked"},
		{"delete", "/api/session/delete", "success|Session deleted"},
	}
	for _, tt := range tests {
		t.Run(tt.action, func(t *testing.T) {
			s := newStack(t, newFakeBackend(t).
				on("/api/user/get-from-uid", 200, userJSON).
				on(tt.path, 200, `{}`))

			rec := postForm(t, s, "/users/u1/sessions/"+tt.action, url.Values{"session_id": {"s1"}, "redirect": {"/sessions"}})
			assert.Equal(t, http.StatusSeeOther, rec.Code)
			assert.Equal(t, "/sessions", rec.Header().Get("Location"))
			assert.Equal(t, tt.flash, flashOf(t, rec))
			assert.Equal(t, "s1", s.backend.lastBody(tt.path)["session_id"])
			assert.Equal(t, "u1", s.backend.lastBody(tt.path)["uid"])
		})
	}
}

func TestPages_EditUser(t *testing.T) {
	s := newStack(t, newFakeBackend(t).
		on("/api/user/get-from-uid", 200, userJSON).
		on("/api/user/update-role", 200, `{}`).
		on("/api/user/update", 200, `{}`))

	rec := postForm(t, s, "/users/u1/edit", url.Values{"name": {"Anna"}, "role": {"admin"}})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/users/u1", rec.Header().Get("Location"))
	assert.Equal(t, "success|User updated", flashOf(t, rec))
	assert.Equal(t, []string{"/api/user/get-from-uid", "/api/user/update-role", "/api/user/update"}, s.backend.paths())
	assert.Equal(t, "admin", s.backend.lastBody("/api/user/update-role")["role"])
	assert.Equal(t, "ann@example.com", s.backend.lastBody("/api/user/update")["email"])
}

func TestPages_EditUserFromList(t *testing.T) {
	s := newStack(t, newFakeBackend(t).
		on("/api/user/get-from-uid", 200, userJSON).
		on("/api/user/update", 200, `{}`))

	rec := postForm(t, s, "/users/u1/edit", url.Values{"name": {"Anna"}, "role": {"user"}, "redirect": {"/users"}})
	assert.Equal(t, "/users", rec.Header().Get("Location"))
	assert.Equal(t, []string{"/api/user/get-from-uid", "/api/user/update"}, s.backend.paths())
}

func TestPages_EditUserValidation(t *testing.T) {
	s := newStack(t, newFakeBackend(t).on("/api/user/get-from-uid", 200, userJSON))

	rec := postForm(t, s, "/users/u1/edit", url.Values{"name": {""}, "role": {"admin"}})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "error|Please fill in all required fields", flashOf(t, rec))
	assert.Equal(t, []string{"/api/user/get-from-uid"}, s.backend.paths())
}

func TestPages_EditUserRoleFailureStopsName(t *testing.T) {
	s := newStack(t, newFakeBackend(t).
		on("/api/user/get-from-uid", 200, userJSON).
		on("/api/user/update-role", 403, `{"message":"forbidden role"}`).
		on("/api/user/update", 200, `{}`))

	rec := postForm(t, s, "/users/u1/edit", url.Values{"name": {"Anna"}, "role": {"root"}})
	assert.Equal(t, "error|Failed to update role: forbidden role", flashOf(t, rec))
	assert.NotContains(t, s.backend.paths(), "/api/user/update")
}

func TestPages_ToggleActive(t *testing.T) {
	s := newStack(t, newFakeBackend(t).
		on("/api/user/get-from-uid", 200, userJSON).
		on("/api/user/toggle-account-active-status", 200, `{}`))

	rec := postForm(t, s, "/users/u1/toggle-active", url.Values{"active": {"false"}})
	assert.Equal(t, "success|Account deactivated", flashOf(t, rec))
	body := s.backend.lastBody("/api/user/toggle-account-active-status")
	assert.Equal(t, false, body["is_active"])
	assert.Equal(t, "ann@example.com", body["email"])
}

func TestPages_DeleteUserRedirectsToList(t *testing.T) {
	s := newStack(t, newFakeBackend(t).
		on("/api/user/get-from-uid", 200, userJSON).
		on("/api/user/delete", 200, `{}`))

	rec := postForm(t, s, "/users/u1/delete", url.Values{})
	assert.Equal(t, "/users", rec.Header().Get("Location"))
	assert.Equal(t, "success|User deleted", flashOf(t, rec))
}

func TestPages_ResetPassword(t *testing.T) {
	t.Run("mismatch", func(t *testing.T) {
		s := newStack(t, newFakeBackend(t).on("/api/user/get-from-uid", 200, userJSON))
		rec := postForm(t, s, "/users/u1/password", url.Values{
			"old_password": {"o"}, "new_password": {"a"}, "confirm_password": {"b"},
		})
		assert.Equal(t, "error|New password and confirm password do not match", flashOf(t, rec))
		assert.NotContains(t, s.backend.paths(), "/api/password/reset")
	})

	t.Run("forwarded", func(t *testing.T) {
		s := newStack(t, newFakeBackend(t).
			on("/api/user/get-from-uid", 200, userJSON).
			on("/api/password/reset", 200, `{}`))
		rec := postForm(t, s, "/users/u1/password", url.Values{
			"old_password": {"o"}, "new_password": {"n"}, "confirm_password": {"n"},
		})
		assert.Equal(t, "success|Password updated", flashOf(t, rec))
		body := s.backend.lastBody("/api/password/reset")
		assert.Equal(t, "ann@example.com", body["email"])
		assert.Equal(t, "n", body["new_password"])
		assert.NotContains(t, body, "confirm_password")
	})
}

func TestPages_SessionActions(t *testing.T) {
	tests := []struct {
		action string
		path   string
		flash  string
	}{
		{"revoke", "/api/session/revoke", "success|Session revoked"},
		{"delete", "/api/session/delete", "success|Session deleted"},
		{"revoke-all", "/api/session/revoke-all", "success|All sessions revoked"},
		{"delete-all", "/api/session/delete-all", "success|All sessions deleted"},
	}
	for _, tt := range tests {
		t.Run(tt.action, func(t *testing.T) {
			s := newStack(t, newFakeBackend(t).
				on("/api/user/get-from-uid", 200, userJSON).
				on(tt.path, 200, `{}`))

			rec := postForm(t, s, "/users/u1/sessions/"+tt.action, url.Values{"session_id": {"s1"}})
			assert.Equal(t, tt.flash, flashOf(t, rec))
			assert.Equal(t, "u1", s.backend.lastBody(tt.path)["uid"])
		})
	}

	t.Run("unknown", func(t *testing.T) {
		s := newStack(t, newFakeBackend(t).on("/api/user/get-from-uid", 200, userJSON))
		rec := postForm(t, s, "/users/u1/sessions/explode", url.Values{})
		assert.True(t, strings.HasPrefix(flashOf(t, rec), "error|"))
	})
}

func TestPages_MutationUnknownUser(t *testing.T) {
	s := newStack(t, newFakeBackend(t).on("/api/user/get-from-uid", 404, `{"message":"User not found"}`))

	rec := postForm(t, s, "/users/ghost/delete", url.Values{})
	assert.Equal(t, "/users", rec.Header().Get("Location"))
	assert.Equal(t, "error|User not found", flashOf(t, rec))
	assert.NotContains(t, s.backend.paths(), "/api/user/delete")
}

func TestPages_FlashShownOnce(t *testing.T) {
	s := newStack(t, newFakeBackend(t).on("/api/user/get-all", 200, `[]`))

	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	req.AddCookie(&http.Cookie{Name: flashCookie, Value: url.QueryEscape("success|User deleted")})
	rec := httptest.NewRecorder()
	s.pages.Routes().ServeHTTP(rec, req)

	assert.Contains(t, rec.Body.String(), "User deleted")
	var cleared bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == flashCookie && c.MaxAge < 0 {
			cleared = true
		}
	}
	assert.True(t, cleared)
}

type failingOverview struct{}

func (failingOverview) Get(context.Context) (*domain.Overview, error) {
	return nil, upstream.ErrUnavailable
}
