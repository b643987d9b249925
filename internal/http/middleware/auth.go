package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/studynotion-backend/internal/http/response"
	"github.com/yungbote/studynotion-backend/internal/platform/apierr"
	"github.com/yungbote/studynotion-backend/internal/platform/ctxutil"
	"github.com/yungbote/studynotion-backend/internal/platform/logger"
	"github.com/yungbote/studynotion-backend/internal/services"
)

type AuthMiddleware struct {
	log         *logger.Logger
	authService services.AuthService
}

func NewAuthMiddleware(log *logger.Logger, authService services.AuthService) *AuthMiddleware {
	middlewareLogger := log.With("middleware", "AuthMiddleware")
	return &AuthMiddleware{log: middlewareLogger, authService: authService}
}

// RequireAuth rejects requests without a verifiable bearer token.
func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractTokenFromAll(c)
		if tokenString == "" {
			response.Abort(c, http.StatusUnauthorized, apierr.CodeUnauthorized, "missing or invalid token")
			return
		}
		ctx, err := am.authService.SetContextFromToken(c.Request.Context(), tokenString)
		if err != nil {
			am.log.Debug("Token rejected", "path", c.Request.URL.Path, "error", err)
			response.Abort(c, http.StatusUnauthorized, apierr.CodeUnauthorized, err.Error())
			return
		}
		c.Request = c.Request.WithContext(ctx)
		if _, ok := ctxutil.GetActor(ctx); !ok {
			response.Abort(c, http.StatusForbidden, apierr.CodeForbidden, "forbidden")
			return
		}
		c.Next()
	}
}

// OptionalAuth attaches the actor when a valid token is present and lets
// anonymous requests through. A malformed token is still an error.
func (am *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractTokenFromAll(c)
		if tokenString == "" {
			c.Next()
			return
		}
		ctx, err := am.authService.SetContextFromToken(c.Request.Context(), tokenString)
		if err != nil {
			response.Abort(c, http.StatusUnauthorized, apierr.CodeUnauthorized, err.Error())
			return
		}
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequireRole must run after RequireAuth. Admins always pass.
func (am *AuthMiddleware) RequireRole(roles ...ctxutil.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := ctxutil.GetActor(c.Request.Context())
		if !ok {
			response.Abort(c, http.StatusUnauthorized, apierr.CodeUnauthorized, "missing or invalid token")
			return
		}
		if actor.IsAdmin() {
			c.Next()
			return
		}
		for _, r := range roles {
			if actor.Role == r {
				c.Next()
				return
			}
		}
		response.Abort(c, http.StatusForbidden, apierr.CodeForbidden, "role "+string(actor.Role)+" not allowed")
	}
}

func extractTokenFromAll(c *gin.Context) string {
	if qToken := c.Query("token"); qToken != "" {
		return qToken
	}
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return ""
}
