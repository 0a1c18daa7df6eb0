package auth_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fardapack/crm-api/internal/auth"
	"github.com/fardapack/crm-api/internal/domain"
)

type stubResolver struct {
	callers map[string]*auth.Caller
}

func (s *stubResolver) ResolveToken(_ context.Context, token string) (*auth.Caller, error) {
	if caller, ok := s.callers[token]; ok {
		return caller, nil
	}
	return nil, errors.New("unknown token")
}

func newTestMiddleware() *auth.Middleware {
	return auth.NewMiddleware(&stubResolver{
		callers: map[string]*auth.Caller{
			"agent-token": {AccountID: 2, Username: "agent", Role: domain.RoleAgent},
			"admin-token": {AccountID: 1, Username: "admin", Role: domain.RoleAdmin},
		},
	}, zap.NewNop())
}

func TestMiddleware_Authenticate(t *testing.T) {
	mw := newTestMiddleware()

	var captured *auth.Caller
	handler := mw.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = auth.MustFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name       string
		authHeader string
		wantStatus int
	}{
		{"valid token", "Bearer agent-token", http.StatusOK},
		{"case-insensitive scheme", "bearer agent-token", http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic agent-token", http.StatusUnauthorized},
		{"empty token", "Bearer ", http.StatusUnauthorized},
		{"unknown token", "Bearer bogus", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			captured = nil
			req := httptest.NewRequest(http.MethodGet, "/api/v1/contacts", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusOK {
				require.NotNil(t, captured)
				assert.Equal(t, uint(2), captured.AccountID)
				assert.Equal(t, "agent", captured.Username)
			} else {
				assert.Nil(t, captured)
			}
		})
	}
}

func TestMiddleware_RequireAdmin(t *testing.T) {
	mw := newTestMiddleware()

	handler := mw.Authenticate(mw.RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})))

	t.Run("admin passes", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, "/api/v1/contacts/1", nil)
		req.Header.Set("Authorization", "Bearer admin-token")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("agent forbidden", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, "/api/v1/contacts/1", nil)
		req.Header.Set("Authorization", "Bearer agent-token")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("no caller context forbidden", func(t *testing.T) {
		bare := mw.RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}))
		req := httptest.NewRequest(http.MethodDelete, "/api/v1/contacts/1", nil)
		rec := httptest.NewRecorder()
		bare.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}
