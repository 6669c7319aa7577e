package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"docintake/internal/authz"
	"docintake/internal/pkg/jwtutil"
	"docintake/internal/session"
	"docintake/internal/transport/http/response"
)

const (
	ContextSessionIDKey = "session_id"
	ContextUserIDKey    = "user_id"
	ContextSessionKey   = "session"
)

func AuthJWT(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
		if authHeader == "" {
			response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "missing authorization header")
			c.Abort()
			return
		}

		const prefix = "Bearer "
		if !strings.HasPrefix(authHeader, prefix) {
			response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid authorization scheme")
			c.Abort()
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(authHeader, prefix))
		claims, err := jwtutil.ParseToken(secret, token)
		if err != nil {
			response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid or expired token")
			c.Abort()
			return
		}

		c.Set(ContextSessionIDKey, claims.SessionID)
		c.Set(ContextUserIDKey, claims.UserID)
		c.Next()
	}
}

type SessionLoader interface {
	Session(ctx context.Context, sessionID string) (*session.Session, error)
}

// LoadSession resolves the token's session. A token whose session was discarded by
// logout or expiry is rejected.
func LoadSession(loader SessionLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, err := loader.Session(c.Request.Context(), c.GetString(ContextSessionIDKey))
		if err != nil {
			if errors.Is(err, session.ErrNotFound) {
				response.Error(c, http.StatusUnauthorized, response.CodeSessionExpired, "session expired, log in again")
			} else {
				response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "load session failed")
			}
			c.Abort()
			return
		}
		c.Set(ContextSessionKey, sess)
		c.Next()
	}
}

// RequirePermission must run after LoadSession.
func RequirePermission(perm authz.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := CurrentSession(c)
		if !ok {
			response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "no session")
			c.Abort()
			return
		}
		if !authz.HasPermission(sess.Profile.Role, perm) {
			response.Error(c, http.StatusForbidden, response.CodePermissionDenied, "role "+string(sess.Profile.Role)+" lacks "+string(perm)+" permission")
			c.Abort()
			return
		}
		c.Next()
	}
}

func CurrentSession(c *gin.Context) (*session.Session, bool) {
	v, exists := c.Get(ContextSessionKey)
	if !exists {
		return nil, false
	}
	sess, ok := v.(*session.Session)
	return sess, ok && sess != nil
}
