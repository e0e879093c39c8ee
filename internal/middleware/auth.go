package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yukikurage/task-rest-api/internal/constants"
	apierrors "github.com/yukikurage/task-rest-api/internal/errors"
	"github.com/yukikurage/task-rest-api/internal/models"
	"github.com/yukikurage/task-rest-api/internal/security"
	"github.com/yukikurage/task-rest-api/internal/services"
)

// RequireAuth resolves the bearer token to an active user and stores it in
// the context. Any failure stops the request with the same 401 response.
func RequireAuth(authService *services.AuthService, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader(constants.AuthorizationHeader))
		if !ok {
			AuthFailures.WithLabelValues("missing_token").Inc()
			apierrors.Unauthorized(c)
			return
		}

		user, err := authService.Authenticate(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, services.ErrNotAuthenticated) {
				AuthFailures.WithLabelValues(failureReason(err)).Inc()
				log.Debug().Err(err).Str("path", c.FullPath()).Msg("authentication rejected")
				apierrors.Unauthorized(c)
				return
			}
			log.Error().Err(err).Msg("authentication lookup failed")
			apierrors.InternalError(c)
			return
		}

		c.Set(constants.ContextKeyCurrentUser, user)
		c.Next()
	}
}

// CurrentUser retrieves the authenticated user from context
func CurrentUser(c *gin.Context) (*models.User, bool) {
	value, exists := c.Get(constants.ContextKeyCurrentUser)
	if !exists {
		return nil, false
	}

	user, ok := value.(*models.User)
	if !ok || user == nil {
		return nil, false
	}
	return user, true
}

// bearerToken extracts the credentials of an "Authorization: Bearer <token>"
// header. The scheme is matched case-insensitively.
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, constants.BearerScheme) {
		return "", false
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}
	return token, true
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, services.ErrInactiveUser):
		return "inactive_user"
	case errors.Is(err, services.ErrUserNotFound):
		return "unknown_user"
	case errors.Is(err, security.ErrTokenExpired):
		return "expired_token"
	default:
		return "invalid_token"
	}
}
