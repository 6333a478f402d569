package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/yigit/campusconnect/internal/app/services"
	"github.com/yigit/campusconnect/internal/pkg/apperrors"
	"github.com/yigit/campusconnect/internal/pkg/auth"
)

// Context keys set by Authenticate
const (
	ContextUserID = "userID"
	ContextEmail  = "email"
	ContextCaller = "caller"
)

// CallerResolver loads the current state of a token's user
type CallerResolver interface {
	ResolveCaller(ctx context.Context, userID int64) (*services.Caller, error)
}

// AuthMiddleware for authentication and authorization
type AuthMiddleware struct {
	jwtService *auth.JWTService
	callers    CallerResolver
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(jwtService *auth.JWTService, callers CallerResolver) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtService,
		callers:    callers,
	}
}

// Authenticate validates the bearer token in the Authorization header and
// requires a verified email.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return m.authenticate(false)
}

// AuthenticateSocket is Authenticate for websocket upgrades. Browsers cannot
// set headers on those, so ?token= is accepted as well.
func (m *AuthMiddleware) AuthenticateSocket() gin.HandlerFunc {
	return m.authenticate(true)
}

func (m *AuthMiddleware) authenticate(allowQueryToken bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" && allowQueryToken {
			authHeader = c.Query("token")
		}
		if authHeader == "" {
			HandleAPIError(c, apperrors.NewUnauthenticatedError("Authentication required"))
			return
		}

		tokenString, err := auth.ExtractBearerToken(authHeader)
		if err != nil {
			HandleAPIError(c, err)
			return
		}

		claims, err := m.jwtService.ValidateAndExtractClaims(tokenString)
		if err != nil {
			HandleAPIError(c, err)
			return
		}

		caller, err := m.callers.ResolveCaller(c.Request.Context(), claims.UserID)
		if err != nil {
			HandleAPIError(c, err)
			return
		}
		if !caller.Verified {
			HandleAPIError(c, apperrors.ErrEmailNotVerified)
			return
		}

		c.Set(ContextUserID, caller.ID)
		c.Set(ContextEmail, caller.Email)
		c.Set(ContextCaller, caller)

		c.Next()
	}
}

// RequireCompletedProfile rejects callers who have not filled in name, branch and year.
// It must run after Authenticate.
func (m *AuthMiddleware) RequireCompletedProfile() gin.HandlerFunc {
	return func(c *gin.Context) {
		caller := CallerFrom(c)
		if caller == nil {
			HandleAPIError(c, apperrors.NewUnauthenticatedError("Authentication required"))
			return
		}
		if !caller.ProfileCompleted {
			HandleAPIError(c, apperrors.ErrProfileNotCompleted)
			return
		}

		c.Next()
	}
}

// CallerFrom returns the caller attached by Authenticate, or nil
func CallerFrom(c *gin.Context) *services.Caller {
	v, ok := c.Get(ContextCaller)
	if !ok {
		return nil
	}
	caller, _ := v.(*services.Caller)
	return caller
}
