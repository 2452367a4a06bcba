package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xela07ax/authconsole/internal/domain"
	"github.com/xela07ax/authconsole/internal/upstream"
)

func TestSessionService_ListForUser(t *testing.T) {
	f := newFixture()
	f.doer.On("Do", upstream.SessionGetAllFromUID.Action, domain.UIDRequest{UID: "u1"}).
		Return(ok(`[{"session_id":"s1","uid":"u1","browser":"Chrome","is_revoked":false}]`), nil)

	sessions, err := NewSessionService(f.gw).ListForUser(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "Chrome", sessions[0].Browser)
	f.auditor.AssertNotCalled(t, "Log", mock.Anything)
}

func TestSessionService_EmptyList(t *testing.T) {
	f := newFixture()
	f.doer.On("Do", upstream.SessionGetAll.Action, nil).Return(ok(`[]`), nil)

	sessions, err := NewSessionService(f.gw).List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, sessions)
	assert.Empty(t, sessions)
}

func TestSessionService_Mutations(t *testing.T) {
	tests := []struct {
		name  string
		route upstream.Route
		body  any
		call  func(s *SessionService) error
	}{
		{"revoke", upstream.SessionRevoke, domain.SessionRequest{SessionID: "s1", UID: "u1"},
			func(s *SessionService) error { return s.Revoke(context.Background(), "s1", "u1") }},
		{"delete", upstream.SessionDelete, domain.SessionRequest{SessionID: "s1", UID: "u1"},
			func(s *SessionService) error { return s.Delete(context.Background(), "s1", "u1") }},
		{"revoke all", upstream.SessionRevokeAll, domain.UIDRequest{UID: "u1"},
			func(s *SessionService) error { return s.RevokeAll(context.Background(), "u1") }},
		{"delete all", upstream.SessionDeleteAll, domain.UIDRequest{UID: "u1"},
			func(s *SessionService) error { return s.DeleteAll(context.Background(), "u1") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture().quiet()
			f.doer.On("Do", tt.route.Action, tt.body).Return(ok(`{}`), nil).Once()

			require.NoError(t, tt.call(NewSessionService(f.gw)))
			f.doer.AssertExpectations(t)
			f.auditor.AssertNumberOfCalls(t, "Log", 1)
		})
	}
}

func TestSessionService_Validation(t *testing.T) {
	f := newFixture()
	s := NewSessionService(f.gw)
	assert.ErrorIs(t, s.Revoke(context.Background(), "", "u1"), ErrValidation)
	assert.ErrorIs(t, s.DeleteAll(context.Background(), ""), ErrValidation)
	f.doer.AssertNotCalled(t, "Do", mock.Anything, mock.Anything)
}
