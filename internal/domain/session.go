package domain

// Session — сессия пользователя. Поля os/device/browser уже разобраны бэкендом из User-Agent.
type Session struct {
	SessionID      string         `json:"session_id"`
	Email          string         `json:"email"`
	UID            string         `json:"uid"`
	UserAgent      string         `json:"user_agent"`
	OS             string         `json:"os"`
	Device         string         `json:"device"`
	Browser        string         `json:"browser"`
	BrowserVersion string         `json:"browser_version"`
	OSVersion      string         `json:"os_version"`
	Vendor         string         `json:"vendor"`
	IsRevoked      bool           `json:"is_revoked"`
	CreatedAt      TimestampValue `json:"created_at"`
	UpdatedAt      TimestampValue `json:"updated_at"`
}
