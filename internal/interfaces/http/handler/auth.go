package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	identityapp "github.com/vendora/backend/internal/application/identity"
	"github.com/vendora/backend/internal/domain/identity"
	"github.com/vendora/backend/internal/infrastructure/config"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	BaseHandler
	authService *identityapp.AuthService
	cookie      config.CookieConfig
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *identityapp.AuthService, cookie config.CookieConfig) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		cookie:      cookie,
	}
}

// Register godoc
// @Summary      Register an account
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body RegisterRequest true "Account details"
// @Success      201 {object} dto.Response{data=AuthUserResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	role := identity.Role(req.Role)
	if req.Role == "" {
		role = identity.RoleCustomer
	}

	user, err := h.authService.Register(c.Request.Context(), identityapp.RegisterRequest{
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.DisplayName,
		Role:        role,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, toAuthUserResponse(*user))
}

// Login godoc
// @Summary      Log in
// @Description  Authenticates with email and password, sets the session
// @Description  cookie and returns the token for header-based clients.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Credentials"
// @Success      200 {object} dto.Response{data=LoginResponse}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	result, err := h.authService.Login(c.Request.Context(), identityapp.LoginRequest{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.setSessionCookie(c, result.Token, time.Until(result.ExpiresAt))

	h.Success(c, LoginResponse{
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
		User:      toAuthUserResponse(result.User),
	})
}

// Logout godoc
// @Summary      Log out
// @Description  Clears the session cookie. Header-based clients just drop
// @Description  the token.
// @Tags         auth
// @Produce      json
// @Success      204
// @Security     BearerAuth
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	h.setSessionCookie(c, "", -time.Hour)
	h.NoContent(c)
}

// Me godoc
// @Summary      Current account
// @Tags         auth
// @Produce      json
// @Success      200 {object} dto.Response{data=AuthUserResponse}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	user, err := h.authService.Me(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toAuthUserResponse(*user))
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, token string, maxAge time.Duration) {
	sameSite := http.SameSiteLaxMode
	if h.cookie.SameSite == "strict" {
		sameSite = http.SameSiteStrictMode
	} else if h.cookie.SameSite == "none" {
		sameSite = http.SameSiteNoneMode
	}
	c.SetSameSite(sameSite)
	c.SetCookie(h.cookie.Name, token, int(maxAge.Seconds()), h.cookie.Path, h.cookie.Domain, h.cookie.Secure, true)
}
