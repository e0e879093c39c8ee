package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yukikurage/task-rest-api/internal/dto"
	apierrors "github.com/yukikurage/task-rest-api/internal/errors"
	"github.com/yukikurage/task-rest-api/internal/middleware"
	"github.com/yukikurage/task-rest-api/internal/services"
)

// AuthHandler coordinates authentication-related HTTP handlers.
type AuthHandler struct {
	authService *services.AuthService
	log         zerolog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		log:         log,
	}
}

// Register creates a new user account.
func (h *AuthHandler) Register(c *gin.Context) {
	type RegisterRequest struct {
		Email    string `json:"email" binding:"required,email,max=255"`
		Password string `json:"password" binding:"required,max=72"`
	}

	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.Validation(c, err)
		return
	}

	user, err := h.authService.Register(c.Request.Context(), services.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.respondAuthError(c, err)
		return
	}

	h.log.Info().Uint64("user_id", user.ID).Msg("user registered")
	c.JSON(http.StatusCreated, dto.ToUserDTO(*user))
}

// Login exchanges credentials for a bearer token. The body may be an
// OAuth2 password form or JSON with the same field names.
func (h *AuthHandler) Login(c *gin.Context) {
	type LoginRequest struct {
		Username string `form:"username" json:"username" binding:"required"`
		Password string `form:"password" json:"password" binding:"required"`
	}

	var req LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		apierrors.Validation(c, err)
		return
	}

	result, err := h.authService.Login(c.Request.Context(), services.LoginInput{
		Email:    req.Username,
		Password: req.Password,
	})
	if err != nil {
		h.respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewBearerToken(result.AccessToken))
}

// Me returns the authenticated user.
func (h *AuthHandler) Me(c *gin.Context) {
	user, exists := middleware.CurrentUser(c)
	if !exists {
		apierrors.Unauthorized(c)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

func (h *AuthHandler) respondAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrEmailTaken):
		apierrors.BadRequest(c, apierrors.ErrCodeAlreadyExists, apierrors.MsgEmailTaken)
	case errors.Is(err, services.ErrInvalidCredentials):
		apierrors.BadRequest(c, apierrors.ErrCodeInvalidCredentials, apierrors.MsgIncorrectLogin)
	case errors.Is(err, services.ErrPasswordTooLong):
		apierrors.ValidationField(c, "password", "value is too long (max 72 bytes)")
	case errors.Is(err, services.ErrNotAuthenticated):
		apierrors.Unauthorized(c)
	default:
		h.log.Error().Err(err).Str("path", c.FullPath()).Msg("auth request failed")
		apierrors.InternalError(c)
	}
}
