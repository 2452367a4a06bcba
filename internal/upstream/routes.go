package upstream

import "net/http"

// Route — операция API авторизации: метод и фиксированный путь относительно base_url.
type Route struct {
	Action string
	Method string
	Path   string
}

var (
	OverviewGetAll = Route{"overview.get-all", http.MethodGet, "/api/overview/get-all"}

	UserGetAll       = Route{"user.get-all", http.MethodGet, "/api/user/get-all"}
	UserGetFromUID   = Route{"user.get-from-uid", http.MethodPost, "/api/user/get-from-uid"}
	UserDelete       = Route{"user.delete", http.MethodPost, "/api/user/delete"}
	UserToggleActive = Route{"user.toggle-active-status", http.MethodPost, "/api/user/toggle-account-active-status"}
	UserUpdate       = Route{"user.update", http.MethodPost, "/api/user/update"}
	UserUpdateRole   = Route{"user.update-role", http.MethodPost, "/api/user/update-role"}

	SessionGetAll        = Route{"session.get-all", http.MethodGet, "/api/session/get-all"}
	SessionGetAllFromUID = Route{"session.get-all-from-uid", http.MethodPost, "/api/session/get-all-from-uid"}
	SessionRevoke        = Route{"session.revoke", http.MethodPost, "/api/session/revoke"}
	SessionRevokeAll     = Route{"session.revoke-all", http.MethodPost, "/api/session/revoke-all"}
	SessionDelete        = Route{"session.delete", http.MethodPost, "/api/session/delete"}
	SessionDeleteAll     = Route{"session.delete-all", http.MethodPost, "/api/session/delete-all"}

	PasswordReset         = Route{"password.reset", http.MethodPost, "/api/password/reset"}
	PasswordForgetRequest = Route{"password.forget-request", http.MethodPost, "/api/password/forget-request"}
)

// Mutating — изменяет ли операция данные на бэкенде.
func (r Route) Mutating() bool {
	return r.Method != http.MethodGet && r != UserGetFromUID && r != SessionGetAllFromUID
}
