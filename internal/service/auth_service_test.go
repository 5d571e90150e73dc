package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/giftvault/internal/config"
	"github.com/giftvault/internal/constants"
	"github.com/giftvault/internal/models"
	"github.com/giftvault/internal/queue"
	"github.com/giftvault/internal/repository"

	"github.com/glebarez/sqlite"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func setupAuthServiceTest(t *testing.T) (*AuthService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:auth_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.MerchantProfile{},
		&models.RefreshToken{},
		&models.PasswordResetCode{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}

	cfg := &config.Config{}
	cfg.JWT.SecretKey = "auth-service-test-secret"
	cfg.JWT.AccessExpireMin = 15
	cfg.JWT.RefreshExpireHours = 24
	cfg.Security.BcryptCost = bcrypt.MinCost
	cfg.Security.PasswordPolicy = config.PasswordPolicyConfig{MinLength: 8}

	svc := NewAuthService(
		cfg,
		repository.NewUserRepository(db),
		repository.NewMerchantProfileRepository(db),
		repository.NewRefreshTokenRepository(db),
		repository.NewPasswordResetCodeRepository(db),
		nil,
		nil,
		nil,
	)
	return svc, db
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := setupAuthServiceTest(t)

	user, pair, err := svc.Register("User@Example.com", "password123", "李雷", "")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if user.Email != "user@example.com" {
		t.Fatalf("email should be normalized, got %s", user.Email)
	}
	if user.Role != constants.RoleUser {
		t.Fatalf("default role want user got %s", user.Role)
	}
	if pair == nil || pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatalf("register should issue token pair, got %+v", pair)
	}

	claims, err := svc.ParseAccessToken(pair.AccessToken)
	if err != nil {
		t.Fatalf("parse access token failed: %v", err)
	}
	if claims.UserID != user.ID || claims.Role != constants.RoleUser {
		t.Fatalf("unexpected claims: %+v", claims)
	}

	if _, _, err := svc.Login("user@example.com", "wrong-password", ClientMeta{}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password expected ErrInvalidCredentials, got %v", err)
	}

	loggedIn, pair, err := svc.Login("user@example.com", "password123", ClientMeta{IP: "127.0.0.1"})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if loggedIn.LastLoginAt == nil {
		t.Fatalf("login should record last login time")
	}
	if pair == nil || pair.RefreshToken == "" {
		t.Fatalf("login should issue token pair")
	}
}

func TestRegisterMerchantCreatesProfile(t *testing.T) {
	svc, db := setupAuthServiceTest(t)

	user, pair, err := svc.Register("merchant@example.com", "password123", "", constants.RoleMerchant)
	if err != nil {
		t.Fatalf("register merchant failed: %v", err)
	}
	if user.Name != "merchant" {
		t.Fatalf("name should fall back to email local part, got %q", user.Name)
	}

	var profile models.MerchantProfile
	if err := db.Where("user_id = ?", user.ID).First(&profile).Error; err != nil {
		t.Fatalf("merchant profile should exist: %v", err)
	}
	if profile.ProfileStatus != constants.ProfileStatusIncomplete {
		t.Fatalf("profile status want incomplete got %s", profile.ProfileStatus)
	}

	claims, err := svc.ParseAccessToken(pair.AccessToken)
	if err != nil {
		t.Fatalf("parse access token failed: %v", err)
	}
	if claims.ProfileStatus != constants.ProfileStatusIncomplete {
		t.Fatalf("claims should carry profile status, got %q", claims.ProfileStatus)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := setupAuthServiceTest(t)

	if _, _, err := svc.Register("dup@example.com", "password123", "", ""); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if _, _, err := svc.Register("dup@example.com", "password123", "", ""); !errors.Is(err, ErrEmailExists) {
		t.Fatalf("duplicate email expected ErrEmailExists, got %v", err)
	}
	if _, _, err := svc.Register("weak@example.com", "short", "", ""); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("short password expected ErrWeakPassword, got %v", err)
	}
	if _, _, err := svc.Register("admin@example.com", "password123", "", "admin"); !errors.Is(err, ErrInvalidRole) {
		t.Fatalf("admin self-register expected ErrInvalidRole, got %v", err)
	}
	if _, _, err := svc.Register("not-an-email", "password123", "", ""); !errors.Is(err, ErrInvalidEmail) {
		t.Fatalf("bad email expected ErrInvalidEmail, got %v", err)
	}
}

func TestLoginDisabledUserGetsNoTokens(t *testing.T) {
	svc, _ := setupAuthServiceTest(t)

	user, _, err := svc.Register("disabled@example.com", "password123", "", "")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if _, err := svc.SetUserStatus(user.ID, constants.UserStatusDisabled); err != nil {
		t.Fatalf("disable user failed: %v", err)
	}

	_, pair, err := svc.Login("disabled@example.com", "password123", ClientMeta{})
	if !errors.Is(err, ErrUserDisabled) {
		t.Fatalf("disabled login expected ErrUserDisabled, got %v", err)
	}
	if pair != nil {
		t.Fatalf("disabled login must not issue tokens, got %+v", pair)
	}
}

func TestRefreshRotationIsSingleUse(t *testing.T) {
	svc, _ := setupAuthServiceTest(t)

	_, pair, err := svc.Register("rotate@example.com", "password123", "", "")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	_, next, err := svc.Refresh(pair.RefreshToken, ClientMeta{})
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if next.RefreshToken == pair.RefreshToken {
		t.Fatalf("refresh must rotate the refresh token")
	}

	// 旧令牌已被消费
	if _, _, err := svc.Refresh(pair.RefreshToken, ClientMeta{}); !errors.Is(err, ErrRefreshTokenInvalid) {
		t.Fatalf("reused token expected ErrRefreshTokenInvalid, got %v", err)
	}

	if _, _, err := svc.Refresh(next.RefreshToken, ClientMeta{}); err != nil {
		t.Fatalf("rotated token should stay usable: %v", err)
	}
}

func TestRefreshExpiredToken(t *testing.T) {
	svc, db := setupAuthServiceTest(t)

	user, pair, err := svc.Register("expired@example.com", "password123", "", "")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if err := db.Model(&models.RefreshToken{}).Where("user_id = ?", user.ID).
		Update("expires_at", time.Now().Add(-time.Minute)).Error; err != nil {
		t.Fatalf("backdate token failed: %v", err)
	}

	if _, _, err := svc.Refresh(pair.RefreshToken, ClientMeta{}); !errors.Is(err, ErrRefreshTokenExpired) {
		t.Fatalf("expected ErrRefreshTokenExpired, got %v", err)
	}
}

func TestLogoutRevokesRefreshToken(t *testing.T) {
	svc, _ := setupAuthServiceTest(t)

	user, pair, err := svc.Register("logout@example.com", "password123", "", "")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if err := svc.Logout(user.ID, pair.RefreshToken, false); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	if _, _, err := svc.Refresh(pair.RefreshToken, ClientMeta{}); !errors.Is(err, ErrRefreshTokenInvalid) {
		t.Fatalf("revoked token expected ErrRefreshTokenInvalid, got %v", err)
	}
}

func seedResetCode(t *testing.T, db *gorm.DB, email, code string) *models.PasswordResetCode {
	t.Helper()
	now := time.Now()
	record := &models.PasswordResetCode{
		Email:     email,
		Code:      code,
		ExpiresAt: now.Add(5 * time.Minute),
		SentAt:    now,
		CreatedAt: now,
	}
	if err := db.Create(record).Error; err != nil {
		t.Fatalf("seed reset code failed: %v", err)
	}
	return record
}

func TestResetPasswordWithCode(t *testing.T) {
	svc, db := setupAuthServiceTest(t)

	_, oldPair, err := svc.Register("reset@example.com", "password123", "", "")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	seedResetCode(t, db, "reset@example.com", "123456")

	if err := svc.ResetPassword("reset@example.com", "999999", "newpassword1"); !errors.Is(err, ErrResetCodeInvalid) {
		t.Fatalf("wrong code expected ErrResetCodeInvalid, got %v", err)
	}

	if err := svc.ResetPassword("reset@example.com", "123456", "newpassword1"); err != nil {
		t.Fatalf("reset password failed: %v", err)
	}

	if _, _, err := svc.Login("reset@example.com", "password123", ClientMeta{}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("old password should be rejected, got %v", err)
	}
	if _, _, err := svc.Login("reset@example.com", "newpassword1", ClientMeta{}); err != nil {
		t.Fatalf("login with new password failed: %v", err)
	}

	// 重置后历史刷新令牌全部失效
	if _, _, err := svc.Refresh(oldPair.RefreshToken, ClientMeta{}); !errors.Is(err, ErrRefreshTokenInvalid) {
		t.Fatalf("pre-reset refresh token expected ErrRefreshTokenInvalid, got %v", err)
	}

	// 验证码一次性使用
	if err := svc.ResetPassword("reset@example.com", "123456", "anotherpass1"); !errors.Is(err, ErrResetCodeInvalid) {
		t.Fatalf("reused code expected ErrResetCodeInvalid, got %v", err)
	}
}

func TestResetPasswordExpiredCode(t *testing.T) {
	svc, db := setupAuthServiceTest(t)

	if _, _, err := svc.Register("stale@example.com", "password123", "", ""); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	record := seedResetCode(t, db, "stale@example.com", "123456")
	if err := db.Model(record).Update("expires_at", time.Now().Add(-time.Minute)).Error; err != nil {
		t.Fatalf("backdate code failed: %v", err)
	}

	if err := svc.ResetPassword("stale@example.com", "123456", "newpassword1"); !errors.Is(err, ErrResetCodeExpired) {
		t.Fatalf("expected ErrResetCodeExpired, got %v", err)
	}
}

func TestResetPasswordAttemptsExceeded(t *testing.T) {
	svc, db := setupAuthServiceTest(t)

	if _, _, err := svc.Register("attempts@example.com", "password123", "", ""); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	seedResetCode(t, db, "attempts@example.com", "123456")

	for i := 0; i < 5; i++ {
		if err := svc.ResetPassword("attempts@example.com", "000000", "newpassword1"); !errors.Is(err, ErrResetCodeInvalid) {
			t.Fatalf("wrong code attempt %d expected ErrResetCodeInvalid, got %v", i+1, err)
		}
	}

	if err := svc.ResetPassword("attempts@example.com", "123456", "newpassword1"); !errors.Is(err, ErrResetCodeAttemptsExceeded) {
		t.Fatalf("expected ErrResetCodeAttemptsExceeded, got %v", err)
	}
}

func TestChangePassword(t *testing.T) {
	svc, db := setupAuthServiceTest(t)

	user, _, err := svc.Register("change@example.com", "password123", "", "")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	seedResetCode(t, db, "change@example.com", "654321")

	if err := svc.ChangePassword(user.ID, "wrong-old", "654321", "newpassword1"); !errors.Is(err, ErrInvalidPassword) {
		t.Fatalf("wrong old password expected ErrInvalidPassword, got %v", err)
	}

	if err := svc.ChangePassword(user.ID, "password123", "654321", "newpassword1"); err != nil {
		t.Fatalf("change password failed: %v", err)
	}
	if _, _, err := svc.Login("change@example.com", "newpassword1", ClientMeta{}); err != nil {
		t.Fatalf("login with new password failed: %v", err)
	}
}

func TestSetUserStatusDisableRevokesSessions(t *testing.T) {
	svc, _ := setupAuthServiceTest(t)

	user, pair, err := svc.Register("revoke@example.com", "password123", "", "")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	versionBefore := user.TokenVersion

	disabled, err := svc.SetUserStatus(user.ID, constants.UserStatusDisabled)
	if err != nil {
		t.Fatalf("disable failed: %v", err)
	}
	if disabled.Status != constants.UserStatusDisabled {
		t.Fatalf("status want disabled got %s", disabled.Status)
	}
	if disabled.TokenVersion != versionBefore+1 {
		t.Fatalf("token version should bump on disable, got %d", disabled.TokenVersion)
	}
	if disabled.TokenInvalidBefore == nil {
		t.Fatalf("token invalid before should be set on disable")
	}

	if _, _, err := svc.Refresh(pair.RefreshToken, ClientMeta{}); !errors.Is(err, ErrRefreshTokenInvalid) {
		t.Fatalf("disabled user refresh expected ErrRefreshTokenInvalid, got %v", err)
	}

	if _, err := svc.SetUserStatus(user.ID, "frozen"); !errors.Is(err, ErrInvalidUserStatus) {
		t.Fatalf("expected ErrInvalidUserStatus, got %v", err)
	}
	if _, err := svc.SetUserStatus(99999, constants.UserStatusDisabled); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if _, err := svc.SetUserStatus(user.ID, constants.UserStatusActive); err != nil {
		t.Fatalf("re-enable failed: %v", err)
	}
	if _, _, err := svc.Login("revoke@example.com", "password123", ClientMeta{}); err != nil {
		t.Fatalf("login after re-enable failed: %v", err)
	}
}

func TestSendResetCodePersistsBeforeAsyncDelivery(t *testing.T) {
	_, db := setupAuthServiceTest(t)

	cfg := &config.Config{}
	cfg.Security.BcryptCost = bcrypt.MinCost
	queueClient, err := queue.NewClient(&config.QueueConfig{Enabled: true, Host: "127.0.0.1", Port: 1})
	if err != nil {
		t.Fatalf("create queue client failed: %v", err)
	}
	t.Cleanup(func() { _ = queueClient.Close() })

	svc := NewAuthService(
		cfg,
		repository.NewUserRepository(db),
		repository.NewMerchantProfileRepository(db),
		repository.NewRefreshTokenRepository(db),
		repository.NewPasswordResetCodeRepository(db),
		NewEmailService(&config.EmailConfig{Enabled: false}),
		queueClient,
		nil,
	)

	user := &models.User{
		Email:  "queued-reset@example.com",
		Role:   constants.RoleUser,
		Status: constants.UserStatusActive,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("seed user failed: %v", err)
	}

	// 队列启用时请求内不做同步发送，投递失败只记日志
	if err := svc.SendResetCode("queued-reset@example.com"); err != nil {
		t.Fatalf("send reset code failed: %v", err)
	}

	var record models.PasswordResetCode
	if err := db.Where("email = ?", "queued-reset@example.com").First(&record).Error; err != nil {
		t.Fatalf("reset code should be persisted before delivery: %v", err)
	}
	if record.Code == "" || record.ExpiresAt.Before(time.Now()) {
		t.Fatalf("persisted code should be usable, got %+v", record)
	}
}
