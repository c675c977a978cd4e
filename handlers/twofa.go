package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sevispass/sevispass-backend/config"
	"github.com/sevispass/sevispass-backend/middleware"
	"github.com/sevispass/sevispass-backend/models"
	"github.com/sevispass/sevispass-backend/repository"
	"github.com/sevispass/sevispass-backend/services"
)

// TwoFactorHandler covers the 2FA login-code endpoints.
type TwoFactorHandler struct {
	codes  *services.CodeService
	users  repository.UserStore
	config *config.Config
}

func NewTwoFactorHandler(codes *services.CodeService, users repository.UserStore, cfg *config.Config) *TwoFactorHandler {
	return &TwoFactorHandler{codes: codes, users: users, config: cfg}
}

// SendTwoFactorCode issues a 10-minute login code with a 2-minute cooldown.
func (h *TwoFactorHandler) SendTwoFactorCode(c *gin.Context) {
	var req models.SendEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.Response{
			Success: false,
			Error:   "Email is required",
		})
		return
	}

	user, err := h.users.ByEmail(req.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.Response{
			Success: false,
			Error:   "Database query failed",
		})
		return
	}
	if user == nil {
		c.JSON(http.StatusNotFound, models.Response{
			Success:   false,
			Error:     "No account found for this email",
			ErrorCode: services.ErrUserNotFound,
		})
		return
	}

	code, err := h.codes.Issue(req.Email, models.PurposeTwoFactor)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Login verification code sent",
		Data:    gin.H{"expires_at": code.ExpiresAt},
	})
}

// VerifyTwoFactorCode consumes a login code without creating a session.
func (h *TwoFactorHandler) VerifyTwoFactorCode(c *gin.Context) {
	var req models.TwoFactorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.Response{
			Success: false,
			Error:   "Email and a 6-digit code are required",
		})
		return
	}

	if _, err := h.codes.Verify(req.Email, models.PurposeTwoFactor, req.Code); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Code verified",
		Data:    gin.H{"verified": true},
	})
}

// CompleteTwoFactorLogin consumes the login code and finalizes the session
// with a JWT.
func (h *TwoFactorHandler) CompleteTwoFactorLogin(c *gin.Context) {
	var req models.TwoFactorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.Response{
			Success: false,
			Error:   "Email and a 6-digit code are required",
		})
		return
	}

	if _, err := h.codes.Verify(req.Email, models.PurposeTwoFactor, req.Code); err != nil {
		respondServiceError(c, err)
		return
	}

	user, err := h.users.ByEmail(req.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.Response{
			Success: false,
			Error:   "Database query failed",
		})
		return
	}
	if user == nil {
		c.JSON(http.StatusNotFound, models.Response{
			Success:   false,
			Error:     "User not found",
			ErrorCode: services.ErrUserNotFound,
		})
		return
	}

	token, err := middleware.GenerateToken(user, h.config.JWTSecret)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.Response{
			Success: false,
			Error:   "Failed to generate token",
		})
		return
	}

	c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Login successful",
		Data: models.LoginResponse{
			Token: token,
			User:  user,
		},
	})
}
