package handler

import (
	"net/http"
	"strings"

	"github.com/gestion/auth-api/internal/model"
	"github.com/gestion/auth-api/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	authUserKey    = "auth_user"
	bearerTokenKey = "bearer_token"
)

// AuthMiddleware guards routes with stateless bearer verification. It depends
// only on the TokenSigner contract, the same path any relying service uses
// against the shared secret/issuer/audience triple; no store lookup happens
// here.
func AuthMiddleware(signer *service.TokenSigner) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}

		claims, err := signer.Verify(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}

		userID, err := uuid.Parse(claims.Subject)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}

		c.Set(authUserKey, &model.AuthUser{
			ID:       userID,
			UserName: claims.UserName,
			Role:     claims.Role,
		})
		c.Set(bearerTokenKey, token)
		c.Next()
	}
}

func GetAuthUser(c *gin.Context) *model.AuthUser {
	if value, ok := c.Get(authUserKey); ok {
		if user, ok := value.(*model.AuthUser); ok {
			return user
		}
	}
	return nil
}

// GetBearerToken returns the raw access token the middleware validated.
func GetBearerToken(c *gin.Context) string {
	if value, ok := c.Get(bearerTokenKey); ok {
		if token, ok := value.(string); ok {
			return token
		}
	}
	return ""
}

// CORSMiddleware admits the SPA origins. The auth surface is GET and POST
// only, with JSON bodies and bearer headers, so the preflight grants exactly
// that.
func CORSMiddleware(allowedOrigins []string, allowCredentials bool) gin.HandlerFunc {
	originMap := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		trimmed := strings.TrimSpace(origin)
		if trimmed == "" {
			continue
		}
		originMap[trimmed] = struct{}{}
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" {
			if _, ok := originMap[origin]; ok {
				c.Header("Access-Control-Allow-Origin", origin)
				c.Header("Vary", "Origin")
				if allowCredentials {
					c.Header("Access-Control-Allow-Credentials", "true")
				}
				c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type")
				c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			}
		}

		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
