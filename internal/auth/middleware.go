package auth

import (
	"context"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// TokenResolver maps a bearer token to a caller. Implemented by the
// auth service so session lookups stay behind the service layer.
type TokenResolver interface {
	ResolveToken(ctx context.Context, token string) (*Caller, error)
}

// Middleware handles authentication for HTTP requests
type Middleware struct {
	resolver TokenResolver
	logger   *zap.Logger
}

// NewMiddleware creates a new authentication middleware
func NewMiddleware(resolver TokenResolver, logger *zap.Logger) *Middleware {
	return &Middleware{
		resolver: resolver,
		logger:   logger,
	}
}

// Authenticate resolves the bearer token to a caller and rejects the
// request when the token is missing, unknown, or expired
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		token, ok := bearerToken(r)
		if !ok {
			http.Error(w, "Unauthorized: missing or malformed authorization header", http.StatusUnauthorized)
			return
		}

		caller, err := m.resolver.ResolveToken(r.Context(), token)
		if err != nil {
			m.logger.Warn("token resolution failed",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("remote_addr", r.RemoteAddr),
				zap.Error(err),
			)
			http.Error(w, "Unauthorized: invalid or expired token", http.StatusUnauthorized)
			return
		}

		m.logger.Debug("request authenticated",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Uint("account_id", caller.AccountID),
			zap.String("username", caller.Username),
			zap.Duration("auth_duration", time.Since(start)),
		)

		ctx := WithCaller(r.Context(), caller)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin ensures the resolved caller holds the admin role. Must be
// mounted behind Authenticate.
func (m *Middleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		caller, ok := FromContext(r.Context())
		if !ok {
			http.Error(w, "Forbidden: no caller context", http.StatusForbidden)
			return
		}

		if !caller.IsAdmin() {
			http.Error(w, "Forbidden: admin access required", http.StatusForbidden)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	if parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
