package core

import (
	"errors"
	"net"
	"net/http"
	"strings"

	"soilwater/internal/types"
)

// AuthMiddleware resolves the bearer token to an Actor and stores it, plus
// a logger scoped to the actor's organization, in the request context.
// A nil Authenticator disables authentication.
func (s *Server) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.Authenticator == nil || publicPaths[r.URL.Path] {
			next.ServeHTTP(w, r)
			return
		}

		if s.AuthGuard != nil && s.AuthGuard.IsBlocked(r.Context(), clientIP(r)) {
			Error(w, r, types.NewAppError(types.ErrCodeRateLimit, "too many failed authentication attempts", nil))
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			s.writeAuthError(w, r, types.ErrCodeAuthTokenMissing, "Authorization header is required")
			return
		}
		token := extractBearerToken(authHeader)
		if token == "" {
			s.writeAuthError(w, r, types.ErrCodeAuthTokenMissing, "Bearer token is required")
			return
		}

		actor, err := s.Authenticator.ResolveToken(r.Context(), token)
		if err != nil {
			s.handleAuthError(w, r, err)
			return
		}
		if actor == nil {
			s.writeAuthError(w, r, types.ErrCodeAuthTokenInvalid, "Invalid authentication token")
			return
		}

		ctx := types.WithActor(r.Context(), *actor)
		ctx = types.WithLogger(ctx, types.NewSlogLogger(s.Logger).With(
			"request_id", types.GetRequestID(ctx),
			"org_id", actor.OrganizationID,
			"key_id", actor.ID,
		))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// extractBearerToken returns the token of a "Bearer <token>" header, with a
// case-insensitive scheme per RFC 7235, or "".
func extractBearerToken(authHeader string) string {
	const prefix = "Bearer "
	if len(authHeader) < len(prefix) || !strings.EqualFold(authHeader[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(authHeader[len(prefix):])
}

// clientIP is the host part of RemoteAddr. Forwarded headers are not
// trusted.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// handleAuthError answers 401 for credential problems. Other AppErrors,
// such as a failing key store, keep their own status.
func (s *Server) handleAuthError(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *types.AppError
	if errors.As(err, &appErr) {
		switch appErr.Code {
		case types.ErrCodeAuthTokenInvalid, types.ErrCodeAuthTokenRevoked:
			s.Logger.Warn("authentication failed: token invalid",
				"method", r.Method,
				"path", r.URL.Path,
				"error_code", string(appErr.Code),
			)
			if s.AuthGuard != nil {
				s.AuthGuard.RecordFailure(r.Context(), clientIP(r))
			}
			s.writeAuthError(w, r, types.ErrCodeAuthTokenInvalid, "Invalid authentication token")
			return
		case types.ErrCodeAuthTokenMissing:
			s.writeAuthError(w, r, appErr.Code, appErr.Message)
			return
		}
		s.Logger.Error("authentication failed: key lookup error",
			"path", r.URL.Path,
			"error", err.Error(),
		)
		Error(w, r, appErr)
		return
	}

	s.Logger.Error("authentication failed: unexpected error",
		"path", r.URL.Path,
		"error", err.Error(),
	)
	s.writeAuthError(w, r, types.ErrCodeAuthTokenInvalid, "Authentication failed")
}

func (s *Server) writeAuthError(w http.ResponseWriter, r *http.Request, code types.ErrorCode, message string) {
	JSON(w, r, http.StatusUnauthorized, APIErrorResponse{
		Error: ErrorDetail{
			Code:      string(code),
			Message:   message,
			RequestID: types.GetRequestID(r.Context()),
		},
	})
}
