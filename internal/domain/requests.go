package domain

// Тела запросов прокси-роутов. Форма полей совпадает с API бэкенда авторизации.

type UIDRequest struct {
	UID string `json:"uid" validate:"required"`
}

type EmailRequest struct {
	Email string `json:"email" validate:"required"`
}

type ToggleActiveRequest struct {
	Email    string `json:"email" validate:"required"`
	IsActive *bool  `json:"is_active" validate:"required"`
}

type UpdateNameRequest struct {
	Email string `json:"email" validate:"required"`
	Name  string `json:"name" validate:"required"`
}

type UpdateRoleRequest struct {
	Email string `json:"email" validate:"required"`
	Role  string `json:"role" validate:"required"`
}

type SessionRequest struct {
	SessionID string `json:"session_id" validate:"required"`
	UID       string `json:"uid" validate:"required"`
}

type PasswordResetRequest struct {
	Email       string `json:"email" validate:"required"`
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required"`
}
