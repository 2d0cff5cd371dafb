package controller

import (
	"fmt"
	"log"
	"time"

	"github.com/badoux/checkmail"
	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"teampulse/apperrors"
	"teampulse/config"
	"teampulse/models"
	"teampulse/utils"
)

type RegisterRequest struct {
	FirstName string `json:"first_name" validate:"omitempty,max=100"`
	LastName  string `json:"last_name" validate:"omitempty,max=100"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
}

type AuthenticateRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Token           string `json:"token" validate:"required"`
	Password        string `json:"password" validate:"required,min=8"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
}

type AuthResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	User         *models.User `json:"user"`
}

type AuthController struct {
	DB     *gorm.DB
	Config *config.Config
	Mailer *utils.Mailer
	Logger *log.Logger
}

func NewAuthController(db *gorm.DB, cfg *config.Config, mailer *utils.Mailer, logger *log.Logger) *AuthController {
	return &AuthController{
		DB:     db,
		Config: cfg,
		Mailer: mailer,
		Logger: logger,
	}
}

// Register creates a disabled account and emails an activation code.
func (ac *AuthController) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.Respond(c, apperrors.BadRequest("Invalid request body"))
	}

	if err := utils.ValidateStruct(req); err != nil {
		return apperrors.Respond(c, apperrors.BadRequest(err.Error()))
	}
	if err := checkmail.ValidateFormat(req.Email); err != nil {
		return apperrors.Respond(c, apperrors.BadRequest("email must be a valid email"))
	}

	var existingUser models.User
	if err := ac.DB.Where("email = ?", req.Email).First(&existingUser).Error; err == nil {
		return apperrors.Respond(c, apperrors.Conflict("Email already registered"))
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return apperrors.Respond(c, apperrors.Internal("Failed to hash password"))
	}

	user := models.User{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		PasswordHash: string(hashedPassword),
		Enabled:      false,
	}

	if err := ac.DB.Create(&user).Error; err != nil {
		return apperrors.Respond(c, apperrors.Internal("Failed to create user"))
	}

	if err := ac.sendActivation(&user); err != nil {
		// Registration stands even if the activation email cannot be prepared
		utils.LogError("activation_send_failed", err, map[string]interface{}{"user_id": user.ID})
	}

	ac.Logger.Printf("registered user %d (%s)", user.ID, user.Email)
	return c.SendStatus(fiber.StatusAccepted)
}

func (ac *AuthController) sendActivation(user *models.User) error {
	code, err := utils.GenerateActivationCode()
	if err != nil {
		return err
	}

	token := models.ActivationToken{
		UserID:    user.ID,
		Code:      code,
		ExpiresAt: time.Now().Add(utils.ActivationCodeExpiry),
	}
	if err := ac.DB.Create(&token).Error; err != nil {
		return err
	}

	confirmationURL := fmt.Sprintf("%s/activate-account?token=%s", ac.Config.AppBaseURL, code)
	ac.Mailer.SendActivationEmail(user.Email, user.FullName(), code, confirmationURL)
	return nil
}

// ActivateAccount enables the account for a valid code. An expired code gets a
// fresh one emailed and the request rejected.
func (ac *AuthController) ActivateAccount(c *fiber.Ctx) error {
	code := c.Query("token")
	if code == "" {
		return apperrors.Respond(c, apperrors.BadRequest("token is required"))
	}

	var token models.ActivationToken
	if err := ac.DB.Where("code = ?", code).Order("created_at DESC").First(&token).Error; err != nil {
		return apperrors.Respond(c, apperrors.NotFound("Invalid activation token"))
	}

	if token.ValidatedAt != nil {
		return apperrors.Respond(c, apperrors.BadRequest("Activation token already used"))
	}

	var user models.User
	if err := ac.DB.First(&user, token.UserID).Error; err != nil {
		return apperrors.Respond(c, apperrors.NotFound("User not found"))
	}

	if token.Expired() {
		if err := ac.sendActivation(&user); err != nil {
			utils.LogError("activation_resend_failed", err, map[string]interface{}{"user_id": user.ID})
		}
		return apperrors.Respond(c, apperrors.BadRequest("Activation token has expired. A new token has been sent to your email"))
	}

	now := time.Now()
	token.ValidatedAt = &now
	user.Enabled = true

	err := ac.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&token).Error; err != nil {
			return err
		}
		return tx.Save(&user).Error
	})
	if err != nil {
		return apperrors.Respond(c, apperrors.Internal("Failed to activate account"))
	}

	ac.Logger.Printf("activated account %d", user.ID)
	return c.JSON(fiber.Map{"message": "Account activated successfully"})
}

// Authenticate verifies credentials and issues a token pair.
func (ac *AuthController) Authenticate(c *fiber.Ctx) error {
	var req AuthenticateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.Respond(c, apperrors.BadRequest("Invalid request body"))
	}

	if err := utils.ValidateStruct(req); err != nil {
		return apperrors.Respond(c, apperrors.BadRequest(err.Error()))
	}

	var user models.User
	if err := ac.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		return apperrors.Respond(c, apperrors.Unauthenticated("Invalid email or password"))
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return apperrors.Respond(c, apperrors.Unauthenticated("Invalid email or password"))
	}

	if !user.Enabled {
		return apperrors.Respond(c, apperrors.Unauthorized("Account is not activated"))
	}
	if user.AccountLocked {
		return apperrors.Respond(c, apperrors.Unauthorized("Account is locked"))
	}

	accessToken, refreshToken, err := utils.GenerateJWTToken(&user, ac.Config.JWTSecret, ac.Config.AccessTokenTTL, ac.Config.RefreshTokenTTL)
	if err != nil {
		return apperrors.Respond(c, apperrors.Internal("Failed to generate tokens"))
	}

	return c.JSON(AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         &user,
	})
}

// RefreshToken exchanges a valid refresh token for a new pair.
func (ac *AuthController) RefreshToken(c *fiber.Ctx) error {
	var req RefreshTokenRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.Respond(c, apperrors.BadRequest("Invalid request body"))
	}

	claims, err := utils.ParseJWTToken(req.RefreshToken, ac.Config.JWTSecret)
	if err != nil {
		return apperrors.Respond(c, apperrors.Unauthenticated("Invalid or expired refresh token"))
	}

	var user models.User
	if err := ac.DB.First(&user, claims.UserID).Error; err != nil {
		return apperrors.Respond(c, apperrors.Unauthenticated("User not found"))
	}

	accessToken, refreshToken, err := utils.GenerateJWTToken(&user, ac.Config.JWTSecret, ac.Config.AccessTokenTTL, ac.Config.RefreshTokenTTL)
	if err != nil {
		return apperrors.Respond(c, apperrors.Internal("Failed to generate tokens"))
	}

	return c.JSON(AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         &user,
	})
}

// ForgotPassword stores a reset token and emails a reset link. The response is
// 200 whether or not the account exists.
func (ac *AuthController) ForgotPassword(c *fiber.Ctx) error {
	var req ForgotPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.Respond(c, apperrors.BadRequest("Invalid request body"))
	}

	if err := utils.ValidateStruct(req); err != nil {
		return apperrors.Respond(c, apperrors.BadRequest(err.Error()))
	}

	var user models.User
	if err := ac.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		// Don't reveal whether the address is registered
		return c.JSON(fiber.Map{"message": "If the email exists, a reset link has been sent"})
	}

	token, err := utils.GenerateSecureToken()
	if err != nil {
		return apperrors.Respond(c, apperrors.Internal("Failed to generate reset token"))
	}

	reset := models.PasswordResetToken{
		UserID:    user.ID,
		Token:     token,
		ExpiresAt: time.Now().Add(utils.ResetTokenExpiry),
	}
	if err := ac.DB.Create(&reset).Error; err != nil {
		return apperrors.Respond(c, apperrors.Internal("Failed to store reset token"))
	}

	resetLink := fmt.Sprintf("%s/reset-password?token=%s", ac.Config.AppBaseURL, token)
	ac.Mailer.SendPasswordResetEmail(user.Email, user.FullName(), resetLink)

	return c.JSON(fiber.Map{"message": "If the email exists, a reset link has been sent"})
}

// ResetPassword redeems a reset token. Tokens are single-use.
func (ac *AuthController) ResetPassword(c *fiber.Ctx) error {
	var req ResetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.Respond(c, apperrors.BadRequest("Invalid request body"))
	}

	if err := utils.ValidateStruct(req); err != nil {
		return apperrors.Respond(c, apperrors.BadRequest(err.Error()))
	}

	var reset models.PasswordResetToken
	if err := ac.DB.Where("token = ?", req.Token).First(&reset).Error; err != nil {
		return apperrors.Respond(c, apperrors.NotFound("Invalid reset token"))
	}

	if !reset.Usable() {
		return apperrors.Respond(c, apperrors.BadRequest("Reset token is expired or already used"))
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return apperrors.Respond(c, apperrors.Internal("Failed to hash password"))
	}

	err = ac.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.User{}).Where("id = ?", reset.UserID).
			Update("password_hash", string(hashedPassword)).Error; err != nil {
			return err
		}
		return tx.Model(&reset).Update("used", true).Error
	})
	if err != nil {
		return apperrors.Respond(c, apperrors.Internal("Failed to reset password"))
	}

	return c.JSON(fiber.Map{"message": "Password reset successfully"})
}

// ChangePassword updates the password for the authenticated user.
func (ac *AuthController) ChangePassword(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var req ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.Respond(c, apperrors.BadRequest("Invalid request body"))
	}

	if err := utils.ValidateStruct(req); err != nil {
		return apperrors.Respond(c, apperrors.BadRequest(err.Error()))
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return apperrors.Respond(c, apperrors.Unauthenticated("Current password is incorrect"))
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return apperrors.Respond(c, apperrors.Internal("Failed to hash password"))
	}

	if err := ac.DB.Model(user).Update("password_hash", string(hashedPassword)).Error; err != nil {
		return apperrors.Respond(c, apperrors.Internal("Failed to change password"))
	}

	return c.JSON(fiber.Map{"message": "Password changed successfully"})
}

// GetCurrentUser returns the authenticated account.
func (ac *AuthController) GetCurrentUser(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	return c.JSON(user)
}

// UserExists answers the existence check consumed by the project service. The
// body is a bare JSON boolean.
func (ac *AuthController) UserExists(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return apperrors.Respond(c, apperrors.BadRequest("Invalid user id"))
	}

	var count int64
	if err := ac.DB.Model(&models.User{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return apperrors.Respond(c, apperrors.Internal("Failed to check user"))
	}

	return c.JSON(count > 0)
}
