package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vendora/backend/internal/domain/identity"
	"github.com/vendora/backend/internal/infrastructure/auth"
)

// JWT context keys
const (
	JWTClaimsKey  = "jwt_claims"
	JWTUserIDKey  = "jwt_user_id"
	JWTRoleKey    = "jwt_role"
	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "
)

// JWTMiddlewareConfig holds configuration for JWT middleware
type JWTMiddlewareConfig struct {
	// JWTService is required for token validation
	JWTService *auth.JWTService
	// CookieName is the session cookie checked before the Authorization header
	CookieName string
	// Logger for middleware logging
	Logger *zap.Logger
}

// JWTAuthMiddleware authenticates requests from the session cookie or a
// bearer token, in that order. Browser clients use the cookie; API clients
// and the payment provider's test harness use the header.
func JWTAuthMiddleware(cfg JWTMiddlewareConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractToken(c, cfg.CookieName)
		if tokenString == "" {
			handleAuthError(c, cfg, auth.ErrInvalidToken, "Missing credentials")
			return
		}

		claims, err := cfg.JWTService.Validate(tokenString)
		if err != nil {
			handleAuthError(c, cfg, err, "Token validation failed")
			return
		}

		c.Set(JWTClaimsKey, claims)
		c.Set(JWTUserIDKey, claims.UserID)
		c.Set(JWTRoleKey, claims.Role)

		c.Next()
	}
}

func extractToken(c *gin.Context, cookieName string) string {
	if cookieName != "" {
		if cookie, err := c.Cookie(cookieName); err == nil && cookie != "" {
			return cookie
		}
	}
	authHeader := c.GetHeader(AuthHeaderKey)
	if strings.HasPrefix(authHeader, BearerPrefix) {
		return strings.TrimPrefix(authHeader, BearerPrefix)
	}
	return ""
}

func handleAuthError(c *gin.Context, cfg JWTMiddlewareConfig, err error, message string) {
	if cfg.Logger != nil {
		cfg.Logger.Warn("Authentication failed",
			zap.Error(err),
			zap.String("message", message),
			zap.String("path", c.Request.URL.Path),
		)
	}

	errorCode := "UNAUTHORIZED"
	errorMessage := "Authentication required"
	if errors.Is(err, auth.ErrExpiredToken) {
		errorCode = "TOKEN_EXPIRED"
		errorMessage = "Session has expired"
	}

	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"error": gin.H{
			"code":    errorCode,
			"message": errorMessage,
		},
	})
}

// RequireRoles aborts with 403 unless the authenticated user holds one of
// the given roles. Must run after JWTAuthMiddleware.
func RequireRoles(roles ...identity.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := GetJWTRole(c)
		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "Insufficient role for this operation",
			},
		})
	}
}

// GetJWTClaims retrieves JWT claims from gin.Context
func GetJWTClaims(c *gin.Context) *auth.Claims {
	if claims, exists := c.Get(JWTClaimsKey); exists {
		if jwtClaims, ok := claims.(*auth.Claims); ok {
			return jwtClaims
		}
	}
	return nil
}

// GetJWTUserID retrieves the authenticated user's ID from context
func GetJWTUserID(c *gin.Context) (uuid.UUID, error) {
	if userID, exists := c.Get(JWTUserIDKey); exists {
		if id, ok := userID.(string); ok {
			return uuid.Parse(id)
		}
	}
	return uuid.Nil, errors.New("user ID not found in context")
}

// GetJWTRole retrieves the authenticated user's role from context
func GetJWTRole(c *gin.Context) identity.Role {
	if role, exists := c.Get(JWTRoleKey); exists {
		if r, ok := role.(string); ok {
			return identity.Role(r)
		}
	}
	return ""
}
