// Package server provides the hostwatch Gin-based REST API.
// Every /api route except register, login, and health requires a valid
// session token in "Authorization: Bearer <token>".
package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"hostwatch/internal/auth"
)

// Context keys set by AuthMiddleware for downstream handlers.
const (
	ctxUsername = "username"
	ctxToken    = "token"
)

// ok writes the uniform success envelope. data may be nil for bare acks.
func ok(c *gin.Context, data any) {
	body := gin.H{"success": true}
	if data != nil {
		body["data"] = data
	}
	c.JSON(http.StatusOK, body)
}

// fail writes the uniform error envelope. Messages are client-safe; internal
// detail stays in the server log.
func fail(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"success": false, "error": msg})
}

// AuthMiddleware validates the Bearer session token and stores the username
// and raw token in the Gin context.
func AuthMiddleware(sessions *auth.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader("Authorization")
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   "no token provided",
			})
			return
		}

		parts := strings.SplitN(raw, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   "invalid Authorization format, expected: Bearer <token>",
			})
			return
		}

		username, err := sessions.Validate(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   "invalid or expired token",
			})
			return
		}

		c.Set(ctxUsername, username)
		c.Set(ctxToken, parts[1])
		c.Next()
	}
}

// CORSMiddleware allows browser frontends on other origins to call the API.
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
