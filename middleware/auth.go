package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/auth0/go-jwt-middleware/v2"
	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/carbuapp/oficina-api/config"
	"github.com/carbuapp/oficina-api/logger"
	"github.com/carbuapp/oficina-api/models"
	"github.com/carbuapp/oficina-api/services"
)

const (
	claimsKey = "validated_claims"
	scopeKey  = "scope"
)

// CustomClaims contains the tenant data carried by our tokens.
type CustomClaims struct {
	Role       string `json:"role"`
	WorkshopID uint   `json:"workshop_id"`
}

// Validate rejects tokens without a workshop or with an unknown role.
func (c CustomClaims) Validate(ctx context.Context) error {
	if c.WorkshopID == 0 {
		return errors.New("token has no workshop_id")
	}
	if c.Role != models.RoleAdmin && c.Role != models.RoleStaff {
		return errors.New("token has an unknown role")
	}
	return nil
}

// IdentityResolver re-reads the token subject so deactivated accounts are
// rejected even while their token is still valid.
type IdentityResolver interface {
	ResolveIdentity(ctx context.Context, userID, workshopID uint) (services.Scope, error)
}

// NewValidator builds the HS256 validator for tokens issued by the auth service.
func NewValidator(cfg *config.Config) (*validator.Validator, error) {
	secret := []byte(cfg.JWTSecret)
	keyFunc := func(ctx context.Context) (interface{}, error) {
		return secret, nil
	}

	return validator.New(
		keyFunc,
		validator.HS256,
		cfg.JWTIssuer,
		[]string{cfg.JWTAudience},
		validator.WithCustomClaims(
			func() validator.CustomClaims {
				return &CustomClaims{}
			},
		),
		validator.WithAllowedClockSkew(time.Minute),
	)
}

// EnsureValidToken is a middleware that will check the validity of our JWT
// and resolve the caller's scope.
func EnsureValidToken(cfg *config.Config, resolver IdentityResolver) gin.HandlerFunc {
	jwtValidator, err := NewValidator(cfg)
	if err != nil {
		logger.L().Fatal("failed to set up the jwt validator", zap.Error(err))
	}

	errorHandler := func(w http.ResponseWriter, r *http.Request, err error) {
		logger.L().Info("rejected token", zap.String("path", r.URL.Path), zap.Error(err))
		message := "Failed to validate JWT."
		if errors.Is(err, jwtmiddleware.ErrJWTMissing) {
			message = "Missing bearer token."
		}
		writeUnauthorized(w, "INVALID_TOKEN", message)
	}

	middleware := jwtmiddleware.New(
		jwtValidator.ValidateToken,
		jwtmiddleware.WithErrorHandler(errorHandler),
	)

	return func(c *gin.Context) {
		reached := false
		var handler http.HandlerFunc = func(w http.ResponseWriter, r *http.Request) {
			reached = true

			token, ok := r.Context().Value(jwtmiddleware.ContextKey{}).(*validator.ValidatedClaims)
			if !ok {
				writeUnauthorized(w, "INVALID_CLAIMS", "Claims are not in the expected format")
				c.Abort()
				return
			}
			scope, err := resolveScope(r.Context(), resolver, token)
			if err != nil {
				logger.L().Info("identity resolution failed",
					zap.String("subject", token.RegisteredClaims.Subject),
					zap.Error(err))
				writeUnauthorized(w, services.CodeUnauthorized, services.MessageOf(err))
				c.Abort()
				return
			}

			c.Request = r
			c.Set(claimsKey, token)
			SetScope(c, scope)
			c.Next()
		}

		middleware.CheckJWT(handler).ServeHTTP(c.Writer, c.Request)
		if !reached {
			c.Abort()
		}
	}
}

func resolveScope(ctx context.Context, resolver IdentityResolver, token *validator.ValidatedClaims) (services.Scope, error) {
	claims, ok := token.CustomClaims.(*CustomClaims)
	if !ok {
		return services.Scope{}, &services.ServiceError{Code: services.CodeUnauthorized, Message: "invalid token claims"}
	}
	userID, err := strconv.ParseUint(token.RegisteredClaims.Subject, 10, 32)
	if err != nil {
		return services.Scope{}, &services.ServiceError{Code: services.CodeUnauthorized, Message: "invalid token subject", Err: err}
	}
	return resolver.ResolveIdentity(ctx, uint(userID), claims.WorkshopID)
}

func writeUnauthorized(w http.ResponseWriter, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	body, _ := json.Marshal(gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
	if _, err := w.Write(body); err != nil {
		logger.L().Warn("failed to write error response", zap.Error(err))
	}
}

// SetScope stores the resolved scope on the request context.
func SetScope(c *gin.Context, scope services.Scope) {
	c.Set(scopeKey, scope)
}

// GetScope extracts the resolved scope from the Gin context
func GetScope(c *gin.Context) (services.Scope, error) {
	value, exists := c.Get(scopeKey)
	if !exists {
		return services.Scope{}, &AuthError{Code: "MISSING_SCOPE", Message: "Scope not found in context"}
	}

	scope, ok := value.(services.Scope)
	if !ok || scope.WorkshopID == 0 {
		return services.Scope{}, &AuthError{Code: "INVALID_SCOPE", Message: "Scope is not in the expected format"}
	}

	return scope, nil
}

// GetClaims extracts the validated JWT claims from the Gin context
func GetClaims(c *gin.Context) (*validator.ValidatedClaims, error) {
	claims, exists := c.Get(claimsKey)
	if !exists {
		return nil, &AuthError{Code: "MISSING_CLAIMS", Message: "Claims not found in context"}
	}

	validatedClaims, ok := claims.(*validator.ValidatedClaims)
	if !ok {
		return nil, &AuthError{Code: "INVALID_CLAIMS", Message: "Claims are not in the expected format"}
	}

	return validatedClaims, nil
}

// AuthError represents an authentication error
type AuthError struct {
	Code    string
	Message string
}

func (e *AuthError) Error() string {
	return e.Message
}
