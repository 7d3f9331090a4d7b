package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront-backend/models"
	"storefront-backend/services"
)

// Context keys set by the auth middleware.
const (
	ContextUserID    = "userID"
	ContextUserEmail = "userEmail"
	ContextUserRole  = "userRole"
)

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func setIdentity(c *gin.Context, claims *services.Claims) {
	c.Set(ContextUserID, claims.UserID)
	c.Set(ContextUserEmail, claims.Email)
	c.Set(ContextUserRole, claims.Role)
}

// Authenticate rejects requests without a valid bearer token.
func Authenticate(auth services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization token required"})
			return
		}
		claims, err := auth.ValidateToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}
		setIdentity(c, claims)
		c.Next()
	}
}

// OptionalAuthenticate attaches the identity when a valid token is present
// and lets the request through either way. Checkout works for guests.
func OptionalAuthenticate(auth services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := bearerToken(c); token != "" {
			if claims, err := auth.ValidateToken(token); err == nil {
				setIdentity(c, claims)
			}
		}
		c.Next()
	}
}

// RequireAdmin gates administrative routes. Must run after Authenticate.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(ContextUserRole) != models.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			return
		}
		c.Next()
	}
}

// UserIDFromContext returns the authenticated user's id, or nil for guests.
func UserIDFromContext(c *gin.Context) *primitive.ObjectID {
	raw := c.GetString(ContextUserID)
	if raw == "" {
		return nil
	}
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return nil
	}
	return &id
}

// UserEmailFromContext returns the authenticated user's email, or "".
func UserEmailFromContext(c *gin.Context) string {
	return c.GetString(ContextUserEmail)
}

// IsAdmin reports whether the request carries an admin identity.
func IsAdmin(c *gin.Context) bool {
	return c.GetString(ContextUserRole) == models.RoleAdmin
}
