package domain

// User — запись пользователя в том виде, как её отдаёт бэкенд авторизации.
type User struct {
	UID           string         `json:"uid"`
	Name          string         `json:"name"`
	Role          string         `json:"role"`
	Email         string         `json:"email"`
	EmailVerified bool           `json:"email_verified"`
	IsActive      bool           `json:"is_active"`
	CreatedAt     TimestampValue `json:"created_at"`
	UpdatedAt     TimestampValue `json:"updated_at"`
}
