// Package middleware provides gin middleware for actor authentication and CORS.
package middleware

import (
	"net/http"
	"strings"

	"github.com/buildflow/backend/internal/domain/requisition"
	"github.com/buildflow/backend/internal/infrastructure/auth"
	"github.com/buildflow/backend/internal/infrastructure/logger"
	"github.com/buildflow/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// Actor context keys
const (
	ActorNameKey  = "actor_name"
	ActorRoleKey  = "actor_role"
	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "
)

// ActorAuthConfig holds configuration for the actor authentication middleware
type ActorAuthConfig struct {
	JWTService *auth.JWTService
	// SkipPaths are paths that don't require authentication
	SkipPaths []string
}

// DefaultActorAuthConfig returns the default actor auth configuration
func DefaultActorAuthConfig(jwtService *auth.JWTService) ActorAuthConfig {
	return ActorAuthConfig{
		JWTService: jwtService,
		SkipPaths: []string{
			"/health",
			"/ready",
		},
	}
}

// ActorAuth creates the actor authentication middleware. It validates the
// bearer token, requires the role claim to be one of the six workflow
// roles, and stores actor name and role in the gin context.
func ActorAuth(jwtService *auth.JWTService) gin.HandlerFunc {
	return ActorAuthWithConfig(DefaultActorAuthConfig(jwtService))
}

// ActorAuthWithConfig creates the actor authentication middleware with custom config
func ActorAuthWithConfig(cfg ActorAuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		for _, skipPath := range cfg.SkipPaths {
			if path == skipPath {
				c.Next()
				return
			}
		}

		authHeader := c.GetHeader(AuthHeaderKey)
		if authHeader == "" {
			abortUnauthorized(c, "Missing authorization header")
			return
		}
		if !strings.HasPrefix(authHeader, BearerPrefix) {
			abortUnauthorized(c, "Invalid authorization header format")
			return
		}
		tokenString := strings.TrimPrefix(authHeader, BearerPrefix)

		claims, err := cfg.JWTService.ValidateToken(tokenString)
		if err != nil {
			abortUnauthorized(c, "Token validation failed")
			return
		}

		role, err := requisition.ParseRole(claims.Role)
		if err != nil {
			abortUnauthorized(c, "Unknown workflow role")
			return
		}

		c.Set(ActorNameKey, claims.Name)
		c.Set(ActorRoleKey, role)

		// carry the actor role into the request-scoped logger
		ctx, _ := logger.WithActorRole(c.Request.Context(), logger.FromContext(c.Request.Context()), string(role))
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized,
		dto.NewErrorResponse(dto.ErrCodeUnauthorized, message))
}

// GetActorRole extracts the authenticated workflow role from the gin context
func GetActorRole(c *gin.Context) (requisition.Role, bool) {
	value, exists := c.Get(ActorRoleKey)
	if !exists {
		return "", false
	}
	role, ok := value.(requisition.Role)
	return role, ok
}

// GetActorName extracts the authenticated actor name from the gin context
func GetActorName(c *gin.Context) string {
	return c.GetString(ActorNameKey)
}
