package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"reviewhub/internal/http-api/dto"
	"reviewhub/internal/http-api/middleware"
	"reviewhub/internal/http-api/permission"
	"reviewhub/internal/http-api/service"
)

type AuthHandler struct {
	authService service.AuthService
}

func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/signup", h.Signup)
	rg.POST("/token", h.Token)
}

// Signup issues (or re-issues) a confirmation code. The response echoes the
// request so a client can retry the same payload safely.
func (h *AuthHandler) Signup(c *gin.Context) {
	var req dto.SignupRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	// Signing up while already holding a token makes no sense.
	actor := middleware.ActorFrom(c)
	if v := permission.Decide(actor, c.Request.Method, permission.Registration, nil); !v.Allowed {
		respondError(c, service.ErrForbidden)
		return
	}

	user, err := h.authService.Signup(c.Request.Context(), req.Username, req.Email)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SignupResponse{Username: user.Username, Email: user.Email})
}

// Token exchanges a username and confirmation code for a JWT. Field presence
// is checked in the service so missing fields come back per-field, the same
// shape as every other validation failure.
func (h *AuthHandler) Token(c *gin.Context) {
	var req dto.TokenRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	// Same surface as signup: a caller already holding a valid token has no
	// business minting another.
	actor := middleware.ActorFrom(c)
	if v := permission.Decide(actor, c.Request.Method, permission.Registration, nil); !v.Allowed {
		respondError(c, service.ErrForbidden)
		return
	}

	token, err := h.authService.RequestToken(c.Request.Context(), req.Username, req.ConfirmationCode)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.TokenResponse{Token: token})
}
