package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/sevispass/sevispass-backend/config"
	"github.com/sevispass/sevispass-backend/models"
	"github.com/sevispass/sevispass-backend/repository"
	"github.com/sevispass/sevispass-backend/services"
)

// AuthHandler covers registration, login, profile, and the email
// verification-code endpoints.
type AuthHandler struct {
	codes  *services.CodeService
	users  repository.UserStore
	config *config.Config
}

func NewAuthHandler(codes *services.CodeService, users repository.UserStore, cfg *config.Config) *AuthHandler {
	return &AuthHandler{codes: codes, users: users, config: cfg}
}

// Register creates the user and sends a registration verification code.
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.Response{
			Success: false,
			Error:   fmt.Sprintf("Invalid request body: %v", err),
		})
		return
	}

	existing, err := h.users.ByEmail(req.Email)
	if err != nil {
		fmt.Printf("[Register] Lookup error: %v\n", err)
		c.JSON(http.StatusInternalServerError, models.Response{
			Success: false,
			Error:   "Database query failed",
		})
		return
	}
	if existing != nil {
		c.JSON(http.StatusConflict, models.Response{
			Success: false,
			Error:   "An account with this email already exists",
		})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.Response{
			Success: false,
			Error:   "Failed to process password",
		})
		return
	}

	user, err := h.users.Insert(&models.User{
		Email:        req.Email,
		PasswordHash: string(hash),
		FullName:     req.FullName,
		Phone:        req.Phone,
		Role:         "citizen",
		IsActive:     true,
	})
	if err != nil {
		fmt.Printf("[Register] Insert error: %v\n", err)
		c.JSON(http.StatusInternalServerError, models.Response{
			Success: false,
			Error:   "Failed to create account",
		})
		return
	}

	message := "Account created. A verification code has been sent to your email."
	if _, err := h.codes.Issue(req.Email, models.PurposeRegistration); err != nil {
		fmt.Printf("[Register] Code issue failed for %s: %v\n", req.Email, err)
		message = "Account created, but the verification code could not be sent. Please request a new one."
	}

	c.JSON(http.StatusCreated, models.Response{
		Success: true,
		Message: message,
		Data:    user,
	})
}

// Login checks credentials and, when valid, issues a 2FA login code. The
// session token is only handed out by CompleteTwoFactorLogin.
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.Response{
			Success: false,
			Error:   "Invalid request body",
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
	if user == nil || !user.IsActive {
		c.JSON(http.StatusUnauthorized, models.Response{
			Success: false,
			Error:   "Invalid email or password",
		})
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		c.JSON(http.StatusUnauthorized, models.Response{
			Success: false,
			Error:   "Invalid email or password",
		})
		return
	}

	if _, err := h.codes.Issue(req.Email, models.PurposeTwoFactor); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "A login verification code has been sent to your email",
		Data:    gin.H{"two_factor_required": true},
	})
}

// SendVerificationCode issues a code for registration, password reset or
// email change. Activation and 2FA codes have dedicated endpoints.
func (h *AuthHandler) SendVerificationCode(c *gin.Context) {
	var req models.SendCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.Response{
			Success: false,
			Error:   "Email and purpose are required",
		})
		return
	}

	switch req.Purpose {
	case models.PurposeRegistration, models.PurposePasswordReset, models.PurposeEmailChange:
	default:
		c.JSON(http.StatusBadRequest, models.Response{
			Success:   false,
			Error:     "Unsupported purpose for this endpoint",
			ErrorCode: services.ErrInvalidPurpose,
		})
		return
	}

	code, err := h.codes.Issue(req.Email, req.Purpose)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Verification code sent",
		Data:    gin.H{"expires_at": code.ExpiresAt},
	})
}

// VerifyCode consumes a code for any of the general purposes.
func (h *AuthHandler) VerifyCode(c *gin.Context) {
	var req models.VerifyCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.Response{
			Success: false,
			Error:   "Email, purpose and a 6-digit code are required",
		})
		return
	}

	rec, err := h.codes.Verify(req.Email, req.Purpose, req.Code)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Code verified",
		Data:    gin.H{"consumed_code_id": rec.ID},
	})
}

// CodeStatus reports the latest code's state without consuming anything.
func (h *AuthHandler) CodeStatus(c *gin.Context) {
	email := c.Query("email")
	purpose := c.Query("purpose")
	if email == "" || purpose == "" {
		c.JSON(http.StatusBadRequest, models.Response{
			Success: false,
			Error:   "email and purpose query parameters are required",
		})
		return
	}

	status, err := h.codes.Status(email, purpose)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.Response{
		Success: true,
		Data:    status,
	})
}

// SendActivationEmail issues a 24h activation code (5 minute cooldown).
func (h *AuthHandler) SendActivationEmail(c *gin.Context) {
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

	code, err := h.codes.Issue(req.Email, models.PurposeActivation)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Activation email sent",
		Data:    gin.H{"expires_at": code.ExpiresAt},
	})
}

// ActivateAccount consumes the activation code; the code service flips the
// user's verified and active flags on success.
func (h *AuthHandler) ActivateAccount(c *gin.Context) {
	var req models.TwoFactorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.Response{
			Success: false,
			Error:   "Email and a 6-digit code are required",
		})
		return
	}

	if _, err := h.codes.Verify(req.Email, models.PurposeActivation, req.Code); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Account activated",
	})
}

// GetMe returns the authenticated user's profile.
func (h *AuthHandler) GetMe(c *gin.Context) {
	userID, _ := c.Get("user_id")

	user, err := h.users.ByID(userID.(string))
	if err != nil || user == nil {
		c.JSON(http.StatusNotFound, models.Response{
			Success: false,
			Error:   "User not found",
		})
		return
	}

	c.JSON(http.StatusOK, models.Response{
		Success: true,
		Data:    user,
	})
}

// UpdateProfile updates the editable profile fields.
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	userID, _ := c.Get("user_id")

	var req models.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.Response{
			Success: false,
			Error:   "Invalid request body",
		})
		return
	}

	fields := make(map[string]interface{})
	if req.FullName != nil {
		fields["full_name"] = *req.FullName
	}
	if req.Phone != nil {
		fields["phone"] = *req.Phone
	}
	if len(fields) == 0 {
		c.JSON(http.StatusBadRequest, models.Response{
			Success: false,
			Error:   "No fields to update",
		})
		return
	}

	user, err := h.users.UpdateProfile(userID.(string), fields)
	if err != nil {
		fmt.Printf("[UpdateProfile] Update error: %v\n", err)
		c.JSON(http.StatusInternalServerError, models.Response{
			Success: false,
			Error:   "Failed to update profile",
		})
		return
	}

	c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Profile updated",
		Data:    user,
	})
}
