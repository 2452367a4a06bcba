package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/xela07ax/authconsole/internal/domain"
	"github.com/xela07ax/authconsole/internal/upstream"
)

type SessionService struct {
	gw *Gateway
}

func NewSessionService(gw *Gateway) *SessionService {
	return &SessionService{gw: gw}
}

func (s *SessionService) List(ctx context.Context) ([]domain.Session, error) {
	sessions := make([]domain.Session, 0)
	if err := s.gw.call(ctx, upstream.SessionGetAll, nil, "", &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

func (s *SessionService) ListForUser(ctx context.Context, uid string) ([]domain.Session, error) {
	sessions := make([]domain.Session, 0)
	if err := s.gw.call(ctx, upstream.SessionGetAllFromUID, domain.UIDRequest{UID: uid}, uid, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

func (s *SessionService) Revoke(ctx context.Context, sessionID, uid string) error {
	return s.single(ctx, upstream.SessionRevoke, sessionID, uid)
}

func (s *SessionService) Delete(ctx context.Context, sessionID, uid string) error {
	return s.single(ctx, upstream.SessionDelete, sessionID, uid)
}

func (s *SessionService) RevokeAll(ctx context.Context, uid string) error {
	return s.all(ctx, upstream.SessionRevokeAll, uid)
}

func (s *SessionService) DeleteAll(ctx context.Context, uid string) error {
	return s.all(ctx, upstream.SessionDeleteAll, uid)
}

func (s *SessionService) single(ctx context.Context, route upstream.Route, sessionID, uid string) error {
	if strings.TrimSpace(sessionID) == "" || strings.TrimSpace(uid) == "" {
		return fmt.Errorf("%w: session_id and uid are required", ErrValidation)
	}
	return s.gw.call(ctx, route, domain.SessionRequest{SessionID: sessionID, UID: uid}, sessionID, nil)
}

func (s *SessionService) all(ctx context.Context, route upstream.Route, uid string) error {
	if strings.TrimSpace(uid) == "" {
		return fmt.Errorf("%w: uid is required", ErrValidation)
	}
	return s.gw.call(ctx, route, domain.UIDRequest{UID: uid}, uid, nil)
}
