package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exportplatform/export-api/internal/models"
	"github.com/exportplatform/export-api/internal/testutil"
	"github.com/exportplatform/export-api/internal/utils"
)

func newAuthService(t *testing.T) (*AuthService, *testEnv, *fixedClock) {
	env := newTestEnv(t)
	clock := newClock()
	s := NewAuthService(env.db, env.cfg, env.mailer, env.sms)
	s.now = clock.Now
	return s, env, clock
}

func TestRegisterAndLogin(t *testing.T) {
	s, _, _ := newAuthService(t)

	resp, err := s.Register(&RegisterRequest{
		Name:     "Ivan",
		Email:    " Ivan@Example.com ",
		Password: "Password123",
		Phone:    "+7 (900) 123-45-67",
	})
	require.NoError(t, err)
	assert.Equal(t, "ivan@example.com", resp.User.Email)
	assert.Equal(t, models.RoleClient, resp.User.Role)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)

	claims, err := utils.ValidateJWT(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID.String(), claims.UserID)

	_, err = s.Register(&RegisterRequest{Name: "Other", Email: "ivan@example.com", Password: "Password123"})
	assert.ErrorIs(t, err, ErrConflict)

	_, err = s.Register(&RegisterRequest{Name: "Other", Email: "other@example.com", Password: "Password123", Phone: "+79001234567"})
	assert.ErrorIs(t, err, ErrPhoneTaken)

	login, err := s.Login(&LoginRequest{Email: "IVAN@example.com", Password: "Password123"})
	require.NoError(t, err)
	assert.NotNil(t, login.User.LastLoginAt)

	_, err = s.Login(&LoginRequest{Email: "ivan@example.com", Password: "wrong-password"})
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = s.Login(&LoginRequest{Email: "nobody@example.com", Password: "Password123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginRejectsBlockedAndPasswordlessUsers(t *testing.T) {
	s, env, _ := newAuthService(t)

	blocked := testutil.CreateUser(t, env.db, models.RoleClient, "blocked@example.com")
	require.NoError(t, env.db.Model(blocked).Update("status", models.UserStatusBlocked).Error)

	_, err := s.Login(&LoginRequest{Email: "blocked@example.com", Password: testutil.Password})
	assert.ErrorIs(t, err, ErrForbidden)

	invited := &models.User{Name: "invited", Email: "invited@example.com", Role: models.RoleCompany, Status: models.UserStatusActive}
	require.NoError(t, env.db.Create(invited).Error)

	_, err = s.Login(&LoginRequest{Email: "invited@example.com", Password: "anything1"})
	assert.ErrorIs(t, err, ErrPasswordNotSet)
}

func TestRefreshToken(t *testing.T) {
	s, env, _ := newAuthService(t)
	user := testutil.CreateUser(t, env.db, models.RoleClient, "client@example.com")

	refresh, err := utils.GenerateRefreshToken(user.ID, 24)
	require.NoError(t, err)

	resp, err := s.RefreshToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, user.ID, resp.User.ID)

	_, err = s.RefreshToken("garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestResetCodeByEmail(t *testing.T) {
	s, env, _ := newAuthService(t)
	testutil.CreateUser(t, env.db, models.RoleClient, "reset@example.com")
	ctx := context.Background()

	require.NoError(t, s.ForgotPassword(ctx, &ForgotPasswordRequest{Email: "reset@example.com"}))
	require.Len(t, env.mail.Sent, 1)
	code := testutil.ExtractCode(env.mail.Last().Body)
	require.Len(t, code, utils.ResetCodeLength)

	assert.NoError(t, s.VerifyResetCode(&VerifyResetCodeRequest{Code: code, Email: "reset@example.com"}))
	assert.ErrorIs(t, s.VerifyResetCode(&VerifyResetCodeRequest{Code: "000000x", Email: "reset@example.com"}), ErrNotFound)

	require.NoError(t, s.ResetPassword(&ResetPasswordRequest{Code: code, Password: "NewPassword1", Email: "reset@example.com"}))

	_, err := s.Login(&LoginRequest{Email: "reset@example.com", Password: "NewPassword1"})
	assert.NoError(t, err)

	// single use
	err = s.ResetPassword(&ResetPasswordRequest{Code: code, Password: "Another123", Email: "reset@example.com"})
	assert.ErrorIs(t, err, ErrResetCodeInvalid)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestResetCodeBySMS(t *testing.T) {
	s, env, _ := newAuthService(t)
	user := testutil.CreateUser(t, env.db, models.RoleClient, "phone@example.com")
	phone := "+79005556677"
	require.NoError(t, env.db.Model(user).Update("phone", phone).Error)

	require.NoError(t, s.ForgotPassword(context.Background(), &ForgotPasswordRequest{Phone: "+7 900 555-66-77"}))
	assert.Empty(t, env.mail.Sent)
	require.Len(t, env.sms.Sent, 1)
	assert.Equal(t, phone, env.sms.Last().To)

	code := testutil.ExtractCode(env.sms.Last().Body)
	require.NoError(t, s.ResetPassword(&ResetPasswordRequest{Code: code, Password: "NewPassword1", Phone: phone}))
}

func TestResetCodeExpiresAfterFifteenMinutes(t *testing.T) {
	s, env, clock := newAuthService(t)
	testutil.CreateUser(t, env.db, models.RoleClient, "late@example.com")

	require.NoError(t, s.ForgotPassword(context.Background(), &ForgotPasswordRequest{Email: "late@example.com"}))
	code := testutil.ExtractCode(env.mail.Last().Body)

	clock.Advance(ResetCodeTTL - time.Second)
	assert.NoError(t, s.VerifyResetCode(&VerifyResetCodeRequest{Code: code, Email: "late@example.com"}))

	clock.Advance(time.Second)
	assert.ErrorIs(t, s.VerifyResetCode(&VerifyResetCodeRequest{Code: code, Email: "late@example.com"}), ErrResetCodeNotFound)
	assert.ErrorIs(t, s.ResetPassword(&ResetPasswordRequest{Code: code, Password: "NewPassword1", Email: "late@example.com"}), ErrResetCodeInvalid)
}

func TestForgotPasswordEdgeCases(t *testing.T) {
	s, env, _ := newAuthService(t)
	ctx := context.Background()

	assert.ErrorIs(t, s.ForgotPassword(ctx, &ForgotPasswordRequest{}), ErrIdentifierRequired)

	// Unknown identifiers are not revealed.
	assert.NoError(t, s.ForgotPassword(ctx, &ForgotPasswordRequest{Email: "ghost@example.com"}))
	assert.Empty(t, env.mail.Sent)

	testutil.CreateUser(t, env.db, models.RoleClient, "down@example.com")
	env.mail.Err = errors.New("smtp down")
	err := s.ForgotPassword(ctx, &ForgotPasswordRequest{Email: "down@example.com"})
	require.Error(t, err)
	var se *Error
	assert.False(t, errors.As(err, &se))

	assert.ErrorIs(t, s.ResetPassword(&ResetPasswordRequest{Password: "NewPassword1", Email: "down@example.com"}), ErrResetCodeRequired)
}

func TestSessionUserIncludesCompany(t *testing.T) {
	s, env, _ := newAuthService(t)
	owner := testutil.CreateUser(t, env.db, models.RoleClient, "owner@example.com")
	company := testutil.CreateCompany(t, env.db, owner, "Volga Motors")

	user, err := s.GetSessionUser(owner.ID)
	require.NoError(t, err)
	require.NotNil(t, user.Company)
	assert.Equal(t, company.Name, user.Company.Name)
	assert.Equal(t, models.RoleCompany, user.Role)
}
