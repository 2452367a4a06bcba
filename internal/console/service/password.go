package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/xela07ax/authconsole/internal/domain"
	"github.com/xela07ax/authconsole/internal/upstream"
)

type PasswordService struct {
	gw *Gateway
}

func NewPasswordService(gw *Gateway) *PasswordService {
	return &PasswordService{gw: gw}
}

// Reset меняет пароль. Пустые поля и несовпадение подтверждения отсекаются до вызова бэкенда.
func (s *PasswordService) Reset(ctx context.Context, email, oldPassword, newPassword, confirm string) error {
	if strings.TrimSpace(email) == "" || oldPassword == "" || newPassword == "" || confirm == "" {
		return fmt.Errorf("%w: all password fields are required", ErrValidation)
	}
	if newPassword != confirm {
		return ErrPasswordMismatch
	}
	req := domain.PasswordResetRequest{Email: email, OldPassword: oldPassword, NewPassword: newPassword}
	return s.gw.call(ctx, upstream.PasswordReset, req, email, nil)
}

// ForgetRequest просит бэкенд отправить письмо для сброса пароля.
func (s *PasswordService) ForgetRequest(ctx context.Context, email string) error {
	if strings.TrimSpace(email) == "" {
		return fmt.Errorf("%w: email is required", ErrValidation)
	}
	return s.gw.call(ctx, upstream.PasswordForgetRequest, domain.EmailRequest{Email: email}, email, nil)
}
