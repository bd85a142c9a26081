// internal/services/auth_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/exportplatform/export-api/internal/config"
	"github.com/exportplatform/export-api/internal/database"
	"github.com/exportplatform/export-api/internal/models"
	"github.com/exportplatform/export-api/internal/utils"
)

// ResetCodeTTL is how long a password reset code stays valid.
const ResetCodeTTL = 15 * time.Minute

type AuthService struct {
	db   *gorm.DB
	cfg  *config.Config
	mail *MailService
	sms  SMSSender
	now  func() time.Time
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RegisterRequest struct {
	Name     string      `json:"name" validate:"required,min=2,max=255"`
	Email    string      `json:"email" validate:"required,email"`
	Password string      `json:"password" validate:"required,min=8,max=72"`
	Phone    string      `json:"phone" validate:"omitempty,phone"`
	Role     models.Role `json:"role" validate:"omitempty,oneof=CLIENT COMPANY"`
}

type AuthResponse struct {
	User         *models.User `json:"user"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	TokenType    string       `json:"token_type"`
	ExpiresIn    int          `json:"expires_in"` // in seconds
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"omitempty,email"`
	Phone string `json:"phone" validate:"omitempty,phone"`
}

type VerifyResetCodeRequest struct {
	Code  string `form:"code"`
	Email string `form:"email"`
	Phone string `form:"phone"`
}

type ResetPasswordRequest struct {
	Code     string `json:"code" validate:"required"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Email    string `json:"email" validate:"omitempty,email"`
	Phone    string `json:"phone" validate:"omitempty,phone"`
}

func NewAuthService(db *gorm.DB, cfg *config.Config, mail *MailService, sms SMSSender) *AuthService {
	return &AuthService{
		db:   db,
		cfg:  cfg,
		mail: mail,
		sms:  sms,
		now:  time.Now,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) Register(req *RegisterRequest) (*AuthResponse, error) {
	email := normalizeEmail(req.Email)

	var count int64
	if err := s.db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	if count > 0 {
		return nil, ErrEmailTaken
	}

	var phone *string
	if req.Phone != "" {
		normalized := utils.NormalizePhone(req.Phone)
		if err := s.db.Model(&models.User{}).Where("phone = ?", normalized).Count(&count).Error; err != nil {
			return nil, fmt.Errorf("database error: %w", err)
		}
		if count > 0 {
			return nil, ErrPhoneTaken
		}
		phone = &normalized
	}

	role := req.Role
	if role == "" {
		role = models.RoleClient
	}

	user := &models.User{
		Name:   strings.TrimSpace(req.Name),
		Email:  email,
		Phone:  phone,
		Role:   role,
		Status: models.UserStatusActive,
	}
	if err := user.SetPassword(req.Password); err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.db.Create(user).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return s.issueTokens(user)
}

func (s *AuthService) Login(req *LoginRequest) (*AuthResponse, error) {
	var user models.User
	if err := s.db.Where("email = ?", normalizeEmail(req.Email)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if !user.HasPassword() {
		return nil, ErrPasswordNotSet
	}
	if err := user.CheckPassword(req.Password); err != nil {
		return nil, ErrInvalidCredentials
	}
	if user.Status == models.UserStatusBlocked {
		return nil, ErrAccountBlocked
	}

	now := s.now()
	user.LastLoginAt = &now
	if err := s.db.Model(&user).Update("last_login_at", now).Error; err != nil {
		return nil, fmt.Errorf("failed to update last login: %w", err)
	}

	return s.issueTokens(&user)
}

func (s *AuthService) RefreshToken(refreshToken string) (*AuthResponse, error) {
	subject, err := utils.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidToken
	}

	userID, err := uuid.Parse(subject)
	if err != nil {
		return nil, ErrInvalidToken
	}

	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if user.Status == models.UserStatusBlocked {
		return nil, ErrAccountBlocked
	}

	return s.issueTokens(&user)
}

// GetSessionUser returns the caller with a summary of their company.
func (s *AuthService) GetSessionUser(userID uuid.UUID) (*models.User, error) {
	var user models.User
	err := s.db.Preload("Company", func(db *gorm.DB) *gorm.DB {
		return db.Select("id", "name", "status", "owner_id")
	}).First(&user, "id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *AuthService) issueTokens(user *models.User) (*AuthResponse, error) {
	accessToken, err := utils.GenerateJWT(user.ID, user.Email, string(user.Role), s.cfg.JWT.AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := utils.GenerateRefreshToken(user.ID, s.cfg.JWT.RefreshTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	return &AuthResponse{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    s.cfg.JWT.AccessTokenTTL * 3600,
	}, nil
}

// findByIdentifier looks a user up by email, or by phone when no email is
// given. A nil user with a nil error means no match.
func (s *AuthService) findByIdentifier(email, phone string) (*models.User, error) {
	query := s.db.Model(&models.User{})
	switch {
	case email != "":
		query = query.Where("email = ?", normalizeEmail(email))
	case phone != "":
		query = query.Where("phone = ?", utils.NormalizePhone(phone))
	default:
		return nil, ErrIdentifierRequired
	}

	var user models.User
	if err := query.First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &user, nil
}

// ForgotPassword stores a fresh reset code and delivers it by SMS when the
// request named a phone, by email otherwise. Unknown identifiers succeed
// silently.
func (s *AuthService) ForgotPassword(ctx context.Context, req *ForgotPasswordRequest) error {
	user, err := s.findByIdentifier(req.Email, req.Phone)
	if err != nil {
		return err
	}
	if user == nil {
		return nil
	}

	code, err := utils.GenerateResetCode()
	if err != nil {
		return fmt.Errorf("failed to generate reset code: %w", err)
	}

	expires := s.now().Add(ResetCodeTTL)
	if err := s.db.Model(user).Updates(map[string]interface{}{
		"reset_code_hash":    utils.HashString(code),
		"reset_code_expires": expires,
	}).Error; err != nil {
		return fmt.Errorf("failed to store reset code: %w", err)
	}

	if req.Email == "" && req.Phone != "" {
		if err := s.sms.SendSMS(ctx, user.PhoneNumber(), resetCodeSMS(code)); err != nil {
			return fmt.Errorf("failed to deliver reset code: %w", err)
		}
		return nil
	}

	if err := s.mail.SendResetCode(ctx, user, code); err != nil {
		return fmt.Errorf("failed to deliver reset code: %w", err)
	}
	return nil
}

func (s *AuthService) codeMatches(user *models.User, code string) bool {
	if user.ResetCodeHash == "" || user.ResetCodeExpires == nil {
		return false
	}
	if !s.now().Before(*user.ResetCodeExpires) {
		return false
	}
	return utils.MatchesHash(strings.TrimSpace(code), user.ResetCodeHash)
}

// VerifyResetCode checks a code without consuming it.
func (s *AuthService) VerifyResetCode(req *VerifyResetCodeRequest) error {
	if req.Code == "" {
		return ErrResetCodeRequired
	}

	user, err := s.findByIdentifier(req.Email, req.Phone)
	if err != nil {
		return err
	}
	if user == nil || !s.codeMatches(user, req.Code) {
		return ErrResetCodeNotFound
	}
	return nil
}

// ResetPassword sets a new password and clears the code so it cannot be
// used again.
func (s *AuthService) ResetPassword(req *ResetPasswordRequest) error {
	if req.Code == "" {
		return ErrResetCodeRequired
	}

	user, err := s.findByIdentifier(req.Email, req.Phone)
	if err != nil {
		return err
	}
	if user == nil || !s.codeMatches(user, req.Code) {
		return ErrResetCodeInvalid
	}

	if err := user.SetPassword(req.Password); err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	result := s.db.Model(&models.User{}).
		Where("id = ? AND reset_code_hash = ?", user.ID, user.ResetCodeHash).
		Updates(map[string]interface{}{
			"password_hash":      user.PasswordHash,
			"reset_code_hash":    "",
			"reset_code_expires": nil,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to reset password: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrResetCodeInvalid
	}
	return nil
}
