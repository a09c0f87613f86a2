package middleware

import (
	"net/http"
	"time"

	"docuchat-backend/internal/auth"
	"docuchat-backend/internal/config"
	"docuchat-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

type AuthMiddleware struct {
	config *config.Config
	rdb    *redis.Client
}

func NewAuthMiddleware(cfg *config.Config, rdb *redis.Client) *AuthMiddleware {
	return &AuthMiddleware{
		config: cfg,
		rdb:    rdb,
	}
}

// RequireAuth authenticates the request from the Authorization header or the
// access_token cookie. When the access token is expired but a valid refresh
// token cookie exists, a fresh pair is issued transparently.
func (a *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return gin.HandlerFunc(func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		var tokenString string

		if authHeader != "" {
			tokenString = utils.ExtractTokenFromHeader(authHeader)
		}

		// If no header token, try access_token cookie
		if tokenString == "" {
			if cookie, err := c.Cookie("access_token"); err == nil {
				tokenString = cookie
			}
		}

		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error_code": "unauthorized",
				"message":    "Authentication token is required",
			})
			c.Abort()
			return
		}

		claims, err := auth.ValidateAccessToken(tokenString, a.rdb)
		if err != nil {
			claims = a.tryRefresh(c)
		}

		if claims == nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error_code": "session_expired",
				"message":    "Your session has expired. Please log in again.",
			})
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("username", claims.Username)
		c.Set("claims", claims)

		c.Next()
	})
}

// tryRefresh rotates the token pair off a valid refresh_token cookie.
// Returns nil when no usable refresh token exists.
func (a *AuthMiddleware) tryRefresh(c *gin.Context) *auth.Claims {
	refreshToken, err := c.Cookie("refresh_token")
	if err != nil || refreshToken == "" {
		return nil
	}

	refreshClaims, err := auth.ValidateRefreshToken(refreshToken, a.rdb)
	if err != nil {
		return nil
	}

	// Rotate: old refresh token is revoked before the new pair is issued.
	_ = auth.RevokeToken(refreshClaims.ID, true, a.rdb)

	tokenPair, err := auth.IssueTokenPair(refreshClaims.UserID, refreshClaims.Username, a.rdb)
	if err != nil {
		return nil
	}

	secure := a.config.GinMode == "release"
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie("access_token", tokenPair.AccessToken, int(1*time.Hour.Seconds()), "/", "", secure, true)
	c.SetCookie("refresh_token", tokenPair.RefreshToken, int(7*24*time.Hour.Seconds()), "/", "", secure, true)

	claims, err := auth.ValidateAccessToken(tokenPair.AccessToken, a.rdb)
	if err != nil {
		return nil
	}
	return claims
}

// GetUserID retrieves the authenticated user's id from context.
func GetUserID(c *gin.Context) string {
	if userID, exists := c.Get("user_id"); exists {
		if id, ok := userID.(string); ok {
			return id
		}
	}
	return ""
}

// GetUsername retrieves the authenticated username from context. This is the
// owner scope for chunks and documents.
func GetUsername(c *gin.Context) string {
	if username, exists := c.Get("username"); exists {
		if name, ok := username.(string); ok {
			return name
		}
	}
	return ""
}
