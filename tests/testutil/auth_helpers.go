package testutil

import (
	"net/http"
	"strings"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/chatwidget-api/middleware"
)

// ScopesHeader carries the scopes FakeAuth grants, space separated
const ScopesHeader = "X-Test-Scopes"

// MockValidatedClaims creates a mock ValidatedClaims for testing
func MockValidatedClaims(subject, issuer string, scopes []string) *validator.ValidatedClaims {
	return &validator.ValidatedClaims{
		RegisteredClaims: validator.RegisteredClaims{
			Issuer:  issuer,
			Subject: subject,
		},
		CustomClaims: &middleware.CustomClaims{
			Scope: strings.Join(scopes, " "),
		},
	}
}

// SetMockAuthContext sets up a mock authenticated context for testing
func SetMockAuthContext(c *gin.Context, subject string, issuer string, scopes []string) {
	c.Set(middleware.ContextCaller, subject)
	c.Set(middleware.ContextClaims, MockValidatedClaims(subject, issuer, scopes))
}

// FakeAuth stands in for middleware.EnsureValidToken. Requests without a
// ScopesHeader are rejected the way an invalid token would be.
func FakeAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		scopes, ok := c.Request.Header[ScopesHeader]
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INVALID_TOKEN",
					"message": "Failed to validate JWT.",
				},
			})
			return
		}
		SetMockAuthContext(c, "auth0|test-operator", "https://test.auth0.com/", strings.Fields(strings.Join(scopes, " ")))
		c.Next()
	}
}

// CreateTestContext creates a test Gin context
func CreateTestContext() (*gin.Context, *gin.Engine) {
	gin.SetMode(gin.TestMode)
	c, engine := gin.CreateTestContext(nil)
	return c, engine
}
