package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	jwtmiddleware "github.com/auth0/go-jwt-middleware/v2"
	"github.com/auth0/go-jwt-middleware/v2/jwks"
	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/chatwidget-api/config"
	"github.com/kendall-kelly/chatwidget-api/logger"
)

// Scopes checked by the API
const (
	ScopeWriteIframes = "write:iframes"
	ScopeReadIframes  = "read:iframes"
)

// Gin context keys set by EnsureValidToken
const (
	ContextCaller = "caller"
	ContextClaims = "validated_claims"
)

// CustomClaims contains custom data we want from the token.
type CustomClaims struct {
	Scope string `json:"scope"`
}

// Validate satisfies validator.CustomClaims; scopes are checked per route.
func (c CustomClaims) Validate(ctx context.Context) error {
	return nil
}

// HasScope checks whether our claims have a specific scope.
func (c CustomClaims) HasScope(expectedScope string) bool {
	for _, scope := range strings.Fields(c.Scope) {
		if scope == expectedScope {
			return true
		}
	}
	return false
}

// EnsureValidToken returns a middleware that checks the request's Auth0
// access token and stores its claims in the Gin context.
func EnsureValidToken(cfg *config.Config, log logger.Logger) (gin.HandlerFunc, error) {
	if cfg.Auth0Domain == "" || cfg.Auth0Audience == "" {
		return nil, fmt.Errorf("AUTH0_DOMAIN and AUTH0_AUDIENCE are required for authenticated routes")
	}
	issuerURL, err := url.Parse("https://" + cfg.Auth0Domain + "/")
	if err != nil {
		return nil, fmt.Errorf("failed to parse the issuer url: %w", err)
	}

	provider := jwks.NewCachingProvider(issuerURL, 5*time.Minute)

	jwtValidator, err := validator.New(
		provider.KeyFunc,
		validator.RS256,
		issuerURL.String(),
		[]string{cfg.Auth0Audience},
		validator.WithCustomClaims(
			func() validator.CustomClaims {
				return &CustomClaims{}
			},
		),
		validator.WithAllowedClockSkew(time.Minute),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to set up the jwt validator: %w", err)
	}

	errorHandler := func(w http.ResponseWriter, r *http.Request, err error) {
		log.WithError(err).Warn("rejected access token", map[string]interface{}{"path": r.URL.Path})

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		if _, writeErr := w.Write([]byte(`{"success":false,"error":{"code":"INVALID_TOKEN","message":"Failed to validate JWT."}}`)); writeErr != nil {
			log.WithError(writeErr).Error("failed to write error response", nil)
		}
	}

	checker := jwtmiddleware.New(
		jwtValidator.ValidateToken,
		jwtmiddleware.WithErrorHandler(errorHandler),
	)

	return func(c *gin.Context) {
		var handler http.HandlerFunc = func(w http.ResponseWriter, r *http.Request) {
			token := r.Context().Value(jwtmiddleware.ContextKey{}).(*validator.ValidatedClaims)
			c.Request = r
			c.Set(ContextCaller, token.RegisteredClaims.Subject)
			c.Set(ContextClaims, token)
			c.Next()
		}

		checker.CheckJWT(handler).ServeHTTP(c.Writer, c.Request)
		if !c.IsAborted() && c.Writer.Status() == http.StatusUnauthorized {
			c.Abort()
		}
	}, nil
}

// GetCaller returns the subject of the validated token
func GetCaller(c *gin.Context) (string, error) {
	caller, exists := c.Get(ContextCaller)
	if !exists {
		return "", &AuthError{Code: "MISSING_CALLER", Message: "Caller not found in context"}
	}

	callerStr, ok := caller.(string)
	if !ok {
		return "", &AuthError{Code: "INVALID_CALLER", Message: "Caller is not a string"}
	}
	return callerStr, nil
}

// GetClaims extracts the validated JWT claims from the Gin context
func GetClaims(c *gin.Context) (*validator.ValidatedClaims, error) {
	claims, exists := c.Get(ContextClaims)
	if !exists {
		return nil, &AuthError{Code: "MISSING_CLAIMS", Message: "Claims not found in context"}
	}

	validatedClaims, ok := claims.(*validator.ValidatedClaims)
	if !ok {
		return nil, &AuthError{Code: "INVALID_CLAIMS", Message: "Claims are not in the expected format"}
	}
	return validatedClaims, nil
}

// RequireScope is a middleware that checks if the token has a specific scope
func RequireScope(scope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := GetClaims(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "MISSING_CLAIMS",
					"message": "Could not retrieve token claims",
				},
			})
			return
		}

		customClaims, ok := claims.CustomClaims.(*CustomClaims)
		if !ok || !customClaims.HasScope(scope) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INSUFFICIENT_SCOPE",
					"message": "Insufficient permissions to access this resource",
				},
			})
			return
		}

		c.Next()
	}
}

// AuthError represents an authentication error
type AuthError struct {
	Code    string
	Message string
}

func (e *AuthError) Error() string {
	return e.Message
}
