package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/xela07ax/authconsole/internal/domain"
	"github.com/xela07ax/authconsole/internal/upstream"
)

type UserService struct {
	gw *Gateway
}

func NewUserService(gw *Gateway) *UserService {
	return &UserService{gw: gw}
}

func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	users := make([]domain.User, 0)
	if err := s.gw.call(ctx, upstream.UserGetAll, nil, "", &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *UserService) Get(ctx context.Context, uid string) (*domain.User, error) {
	var u domain.User
	if err := s.gw.call(ctx, upstream.UserGetFromUID, domain.UIDRequest{UID: uid}, uid, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *UserService) Delete(ctx context.Context, email string) error {
	if strings.TrimSpace(email) == "" {
		return fmt.Errorf("%w: email is required", ErrValidation)
	}
	return s.gw.call(ctx, upstream.UserDelete, domain.EmailRequest{Email: email}, email, nil)
}

func (s *UserService) SetActive(ctx context.Context, email string, active bool) error {
	if strings.TrimSpace(email) == "" {
		return fmt.Errorf("%w: email is required", ErrValidation)
	}
	return s.gw.call(ctx, upstream.UserToggleActive, domain.ToggleActiveRequest{Email: email, IsActive: &active}, email, nil)
}

func (s *UserService) UpdateName(ctx context.Context, email, name string) error {
	if strings.TrimSpace(email) == "" || strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: email and name are required", ErrValidation)
	}
	return s.gw.call(ctx, upstream.UserUpdate, domain.UpdateNameRequest{Email: email, Name: name}, email, nil)
}

func (s *UserService) UpdateRole(ctx context.Context, email, role string) error {
	if strings.TrimSpace(email) == "" || strings.TrimSpace(role) == "" {
		return fmt.Errorf("%w: email and role are required", ErrValidation)
	}
	return s.gw.call(ctx, upstream.UserUpdateRole, domain.UpdateRoleRequest{Email: email, Role: role}, email, nil)
}

// Edit применяет изменения формы редактирования: сначала роль, потом имя, только изменённые.
// Первая ошибка прерывает оставшиеся шаги. Возвращает false, если менять было нечего.
func (s *UserService) Edit(ctx context.Context, current domain.User, name, role string) (bool, error) {
	name, role = strings.TrimSpace(name), strings.TrimSpace(role)
	if name == "" || role == "" {
		return false, fmt.Errorf("%w: name and role are required", ErrValidation)
	}

	var applied []string
	if role != current.Role {
		if err := s.UpdateRole(ctx, current.Email, role); err != nil {
			return false, &PartialUpdateError{Step: "role", Applied: applied, Err: err}
		}
		applied = append(applied, "role")
	}
	if name != current.Name {
		if err := s.UpdateName(ctx, current.Email, name); err != nil {
			return len(applied) > 0, &PartialUpdateError{Step: "name", Applied: applied, Err: err}
		}
		applied = append(applied, "name")
	}
	return len(applied) > 0, nil
}
