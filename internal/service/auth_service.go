package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/big"
	"net/mail"
	"strings"
	"time"

	"github.com/giftvault/internal/cache"
	"github.com/giftvault/internal/config"
	"github.com/giftvault/internal/constants"
	"github.com/giftvault/internal/logger"
	"github.com/giftvault/internal/models"
	"github.com/giftvault/internal/queue"
	"github.com/giftvault/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"golang.org/x/crypto/bcrypt"
)

// AuthService 认证服务
type AuthService struct {
	cfg            *config.Config
	userRepo       repository.UserRepository
	merchantRepo   repository.MerchantProfileRepository
	tokenRepo      repository.RefreshTokenRepository
	resetRepo      repository.PasswordResetCodeRepository
	emailService   *EmailService
	queueClient    *queue.Client
	googleVerifier *GoogleVerifier
}

// NewAuthService 创建认证服务
func NewAuthService(
	cfg *config.Config,
	userRepo repository.UserRepository,
	merchantRepo repository.MerchantProfileRepository,
	tokenRepo repository.RefreshTokenRepository,
	resetRepo repository.PasswordResetCodeRepository,
	emailService *EmailService,
	queueClient *queue.Client,
	googleVerifier *GoogleVerifier,
) *AuthService {
	return &AuthService{
		cfg:            cfg,
		userRepo:       userRepo,
		merchantRepo:   merchantRepo,
		tokenRepo:      tokenRepo,
		resetRepo:      resetRepo,
		emailService:   emailService,
		queueClient:    queueClient,
		googleVerifier: googleVerifier,
	}
}

// AccessClaims 访问令牌 JWT 声明
type AccessClaims struct {
	UserID        uint   `json:"user_id"`
	Email         string `json:"email"`
	Role          string `json:"role"`
	EmailVerified bool   `json:"email_verified"`
	ProfileStatus string `json:"profile_status,omitempty"`
	TokenVersion  uint64 `json:"token_version"`
	jwt.RegisteredClaims
}

// TokenPair 访问令牌与刷新令牌
type TokenPair struct {
	AccessToken      string    `json:"access_token"`
	AccessExpiresAt  time.Time `json:"access_expires_at"`
	RefreshToken     string    `json:"refresh_token"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
}

// ClientMeta 客户端元信息
type ClientMeta struct {
	IP        string
	UserAgent string
}

// GenerateAccessToken 生成访问令牌
func (s *AuthService) GenerateAccessToken(user *models.User, profileStatus string) (string, time.Time, error) {
	minutes := s.cfg.JWT.AccessExpireMin
	if minutes <= 0 {
		minutes = 15
	}
	now := time.Now()
	expiresAt := now.Add(time.Duration(minutes) * time.Minute)
	claims := AccessClaims{
		UserID:        user.ID,
		Email:         user.Email,
		Role:          user.Role,
		EmailVerified: user.EmailVerified(),
		ProfileStatus: profileStatus,
		TokenVersion:  user.TokenVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.cfg.JWT.SecretKey))
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// ParseAccessToken 解析访问令牌
func (s *AuthService) ParseAccessToken(tokenString string) (*AccessClaims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	claims := &AccessClaims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.JWT.SecretKey), nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*AccessClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, ErrRefreshTokenInvalid
}

// Register 用户/商户注册
func (s *AuthService) Register(email, password, name, role string) (*models.User, *TokenPair, error) {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return nil, nil, err
	}
	role = strings.ToLower(strings.TrimSpace(role))
	if role == "" {
		role = constants.RoleUser
	}
	if role != constants.RoleUser && role != constants.RoleMerchant {
		return nil, nil, ErrInvalidRole
	}
	if err := validatePassword(s.cfg.Security.PasswordPolicy, password); err != nil {
		return nil, nil, err
	}

	exist, err := s.userRepo.GetByEmail(normalized)
	if err != nil {
		return nil, nil, err
	}
	if exist != nil {
		return nil, nil, ErrEmailExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost())
	if err != nil {
		return nil, nil, err
	}

	now := time.Now()
	user := &models.User{
		Email:        normalized,
		PasswordHash: string(hashedPassword),
		Name:         strings.TrimSpace(name),
		Role:         role,
		Status:       constants.UserStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if user.Name == "" {
		user.Name = resolveNameFromEmail(normalized)
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, nil, err
	}

	profileStatus := ""
	if role == constants.RoleMerchant {
		profile := &models.MerchantProfile{
			UserID:        user.ID,
			ProfileStatus: constants.ProfileStatusIncomplete,
		}
		if err := s.merchantRepo.Create(profile); err != nil {
			return nil, nil, err
		}
		profileStatus = profile.ProfileStatus
	}

	pair, err := s.issueTokenPair(user, profileStatus, ClientMeta{})
	if err != nil {
		return nil, nil, err
	}

	user.LastLoginAt = &now
	if err := s.userRepo.Update(user); err != nil {
		return nil, nil, err
	}
	_ = cache.SetUserAuthState(context.Background(), cache.BuildUserAuthState(user))

	return user, pair, nil
}

// Login 用户登录
// 密码正确但账号被禁用时返回 ErrUserDisabled，不签发任何令牌。
func (s *AuthService) Login(email, password string, meta ClientMeta) (*models.User, *TokenPair, error) {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return nil, nil, err
	}
	user, err := s.userRepo.GetByEmail(normalized)
	if err != nil {
		return nil, nil, err
	}
	if user == nil {
		return nil, nil, ErrInvalidCredentials
	}
	if user.PasswordHash == "" {
		return nil, nil, ErrPasswordLoginDisabled
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, nil, ErrInvalidCredentials
	}
	if strings.ToLower(user.Status) != constants.UserStatusActive {
		return nil, nil, ErrUserDisabled
	}

	pair, err := s.issueTokenPair(user, s.resolveProfileStatus(user), meta)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now()
	user.LastLoginAt = &now
	if err := s.userRepo.Update(user); err != nil {
		return nil, nil, err
	}
	_ = cache.SetUserAuthState(context.Background(), cache.BuildUserAuthState(user))

	return user, pair, nil
}

// Refresh 刷新令牌轮换
// 旧令牌在签发新对之前被撤销，重复使用同一令牌会失败。
func (s *AuthService) Refresh(refreshToken string, meta ClientMeta) (*models.User, *TokenPair, error) {
	hash := hashRefreshToken(refreshToken)
	record, err := s.tokenRepo.GetByTokenHash(hash)
	if err != nil {
		return nil, nil, err
	}
	if record == nil {
		return nil, nil, ErrRefreshTokenInvalid
	}
	now := time.Now()
	if record.ExpiresAt.Before(now) {
		return nil, nil, ErrRefreshTokenExpired
	}

	affected, err := s.tokenRepo.Revoke(hash, now)
	if err != nil {
		return nil, nil, err
	}
	if affected == 0 {
		// 并发刷新竞争，另一请求已消费该令牌
		return nil, nil, ErrRefreshTokenInvalid
	}

	user, err := s.userRepo.GetByID(record.UserID)
	if err != nil {
		return nil, nil, err
	}
	if user == nil {
		return nil, nil, ErrRefreshTokenInvalid
	}
	if strings.ToLower(user.Status) != constants.UserStatusActive {
		return nil, nil, ErrUserDisabled
	}

	pair, err := s.issueTokenPair(user, s.resolveProfileStatus(user), meta)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// Logout 登出
// all 为 true 时撤销用户全部刷新令牌。
func (s *AuthService) Logout(userID uint, refreshToken string, all bool) error {
	now := time.Now()
	if all {
		if err := s.tokenRepo.RevokeAllByUserID(userID, now); err != nil {
			return err
		}
	} else if strings.TrimSpace(refreshToken) != "" {
		if _, err := s.tokenRepo.Revoke(hashRefreshToken(refreshToken), now); err != nil {
			return err
		}
	}
	_ = cache.DelUserAuthState(context.Background(), userID)
	return nil
}

// LoginWithGoogle Google 登录
// 优先按 Google 账号查找，其次按邮箱绑定已有账号，最后创建新用户。
func (s *AuthService) LoginWithGoogle(ctx context.Context, idToken string, meta ClientMeta) (*models.User, *TokenPair, error) {
	if s.googleVerifier == nil || !s.googleVerifier.Enabled() {
		return nil, nil, ErrGoogleAuthDisabled
	}
	info, err := s.googleVerifier.Verify(ctx, idToken)
	if err != nil {
		return nil, nil, err
	}

	normalized, err := normalizeEmail(info.Email)
	if err != nil {
		return nil, nil, ErrGoogleTokenInvalid
	}

	now := time.Now()
	user, err := s.userRepo.GetByGoogleID(info.Subject)
	if err != nil {
		return nil, nil, err
	}
	if user == nil {
		user, err = s.userRepo.GetByEmail(normalized)
		if err != nil {
			return nil, nil, err
		}
	}

	if user == nil {
		googleID := info.Subject
		user = &models.User{
			Email:           normalized,
			Name:            strings.TrimSpace(info.Name),
			Role:            constants.RoleUser,
			Status:          constants.UserStatusActive,
			GoogleID:        &googleID,
			EmailVerifiedAt: &now,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if user.Name == "" {
			user.Name = resolveNameFromEmail(normalized)
		}
		if err := s.userRepo.Create(user); err != nil {
			return nil, nil, err
		}
	} else {
		if strings.ToLower(user.Status) != constants.UserStatusActive {
			return nil, nil, ErrUserDisabled
		}
		if user.GoogleID == nil || *user.GoogleID == "" {
			googleID := info.Subject
			user.GoogleID = &googleID
		}
		if user.EmailVerifiedAt == nil {
			user.EmailVerifiedAt = &now
		}
	}

	pair, err := s.issueTokenPair(user, s.resolveProfileStatus(user), meta)
	if err != nil {
		return nil, nil, err
	}

	user.LastLoginAt = &now
	if err := s.userRepo.Update(user); err != nil {
		return nil, nil, err
	}
	_ = cache.SetUserAuthState(context.Background(), cache.BuildUserAuthState(user))

	return user, pair, nil
}

// SendResetCode 发送密码重置验证码
func (s *AuthService) SendResetCode(email string) error {
	if s.emailService == nil {
		return ErrEmailServiceNotConfigured
	}
	normalized, err := normalizeEmail(email)
	if err != nil {
		return err
	}
	user, err := s.userRepo.GetByEmail(normalized)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrNotFound
	}

	latest, err := s.resetRepo.GetLatest(normalized)
	if err != nil {
		return err
	}
	now := time.Now()
	if latest != nil {
		interval := time.Duration(resolveSendIntervalSeconds(s.cfg.Email.ResetCode)) * time.Second
		if !latest.SentAt.IsZero() && now.Sub(latest.SentAt) < interval {
			return ErrResetCodeTooFrequent
		}
	}

	code, err := randomNumericCode(resolveCodeLength(s.cfg.Email.ResetCode))
	if err != nil {
		return err
	}

	record := &models.PasswordResetCode{
		Email:     normalized,
		UserID:    &user.ID,
		Code:      code,
		ExpiresAt: now.Add(time.Duration(resolveExpireMinutes(s.cfg.Email.ResetCode)) * time.Minute),
		SentAt:    now,
		CreatedAt: now,
	}
	if err := s.resetRepo.Create(record); err != nil {
		return err
	}

	// 经队列异步投递，队列不可用时同步发送。
	// 验证码有时效，走高优先级队列。
	subject, body := BuildResetCodeEmail(code)
	if s.queueClient != nil && s.queueClient.Enabled() {
		if err := s.queueClient.EnqueueEmailSend(queue.EmailSendPayload{
			To:      normalized,
			Subject: subject,
			Body:    body,
		}, asynq.Queue(queue.CriticalQueue)); err != nil {
			logger.Warnw("reset_code_enqueue_failed", "email", normalized, "error", err)
		}
		return nil
	}
	return s.emailService.SendResetCode(normalized, code)
}

// ResetPassword 验证码重置密码
// 成功后撤销全部刷新令牌并失效历史访问令牌。
func (s *AuthService) ResetPassword(email, code, newPassword string) error {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return err
	}
	if err := validatePassword(s.cfg.Security.PasswordPolicy, newPassword); err != nil {
		return err
	}
	user, err := s.userRepo.GetByEmail(normalized)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrNotFound
	}

	if _, err := s.verifyResetCode(normalized, code); err != nil {
		return err
	}

	return s.rotatePassword(user, newPassword)
}

// ChangePassword 登录态修改密码，旧密码与验证码双校验
func (s *AuthService) ChangePassword(userID uint, oldPassword, code, newPassword string) error {
	if userID == 0 {
		return ErrNotFound
	}
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrNotFound
	}
	if user.PasswordHash == "" {
		return ErrPasswordLoginDisabled
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)); err != nil {
		return ErrInvalidPassword
	}
	if err := validatePassword(s.cfg.Security.PasswordPolicy, newPassword); err != nil {
		return err
	}
	if _, err := s.verifyResetCode(user.Email, code); err != nil {
		return err
	}

	return s.rotatePassword(user, newPassword)
}

// GetUserByID 获取用户信息
func (s *AuthService) GetUserByID(id uint) (*models.User, error) {
	if id == 0 {
		return nil, ErrNotFound
	}
	return s.userRepo.GetByID(id)
}

// CleanupExpiredRefreshTokens 清理过期刷新令牌
func (s *AuthService) CleanupExpiredRefreshTokens() (int64, error) {
	return s.tokenRepo.DeleteExpired(time.Now())
}

// ListUsers 管理端用户列表
func (s *AuthService) ListUsers(filter repository.UserListFilter) ([]models.User, int64, error) {
	return s.userRepo.List(filter)
}

// SetUserStatus 管理端启用或禁用用户，禁用时撤销全部刷新令牌
func (s *AuthService) SetUserStatus(userID uint, status string) (*models.User, error) {
	if status != constants.UserStatusActive && status != constants.UserStatusDisabled {
		return nil, ErrInvalidUserStatus
	}
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}
	if user.Status == status {
		return user, nil
	}

	now := time.Now()
	user.Status = status
	user.UpdatedAt = now
	if status == constants.UserStatusDisabled {
		user.TokenVersion++
		user.TokenInvalidBefore = &now
	}
	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}
	if status == constants.UserStatusDisabled {
		if err := s.tokenRepo.RevokeAllByUserID(user.ID, now); err != nil {
			return nil, err
		}
	}
	_ = cache.SetUserAuthState(context.Background(), cache.BuildUserAuthState(user))
	return user, nil
}

func (s *AuthService) rotatePassword(user *models.User, newPassword string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.bcryptCost())
	if err != nil {
		return err
	}
	now := time.Now()
	user.PasswordHash = string(hashedPassword)
	user.UpdatedAt = now
	user.TokenVersion++
	user.TokenInvalidBefore = &now
	if err := s.userRepo.Update(user); err != nil {
		return err
	}
	if err := s.tokenRepo.RevokeAllByUserID(user.ID, now); err != nil {
		return err
	}
	_ = cache.SetUserAuthState(context.Background(), cache.BuildUserAuthState(user))
	return nil
}

func (s *AuthService) verifyResetCode(email, code string) (*models.PasswordResetCode, error) {
	record, err := s.resetRepo.GetLatest(email)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, ErrResetCodeInvalid
	}
	if record.UsedAt != nil {
		return nil, ErrResetCodeInvalid
	}

	now := time.Now()
	if record.ExpiresAt.Before(now) {
		return nil, ErrResetCodeExpired
	}

	maxAttempts := resolveMaxAttempts(s.cfg.Email.ResetCode)
	if maxAttempts > 0 && record.AttemptCount >= maxAttempts {
		return nil, ErrResetCodeAttemptsExceeded
	}

	if strings.TrimSpace(record.Code) != strings.TrimSpace(code) {
		_ = s.resetRepo.IncrementAttempt(record.ID)
		return nil, ErrResetCodeInvalid
	}

	if err := s.resetRepo.MarkUsed(record.ID, now); err != nil {
		return nil, err
	}
	return record, nil
}

func (s *AuthService) issueTokenPair(user *models.User, profileStatus string, meta ClientMeta) (*TokenPair, error) {
	accessToken, accessExpiresAt, err := s.GenerateAccessToken(user, profileStatus)
	if err != nil {
		return nil, err
	}

	opaque, err := newRefreshTokenValue()
	if err != nil {
		return nil, err
	}
	hours := s.cfg.JWT.RefreshExpireHours
	if hours <= 0 {
		hours = 168
	}
	refreshExpiresAt := time.Now().Add(time.Duration(hours) * time.Hour)
	record := &models.RefreshToken{
		UserID:    user.ID,
		TokenHash: hashRefreshToken(opaque),
		ExpiresAt: refreshExpiresAt,
		ClientIP:  meta.IP,
		UserAgent: meta.UserAgent,
	}
	if err := s.tokenRepo.Create(record); err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:      accessToken,
		AccessExpiresAt:  accessExpiresAt,
		RefreshToken:     opaque,
		RefreshExpiresAt: refreshExpiresAt,
	}, nil
}

// resolveProfileStatus 读取商户审核状态，非商户返回空串
func (s *AuthService) resolveProfileStatus(user *models.User) string {
	if user == nil || user.Role != constants.RoleMerchant || s.merchantRepo == nil {
		return ""
	}
	profile, err := s.merchantRepo.GetByUserID(user.ID)
	if err != nil {
		logger.Warnw("resolve_profile_status_failed", "user_id", user.ID, "error", err)
		return ""
	}
	if profile == nil {
		return ""
	}
	return profile.ProfileStatus
}

func (s *AuthService) bcryptCost() int {
	cost := s.cfg.Security.BcryptCost
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return bcrypt.DefaultCost
	}
	return cost
}

func newRefreshTokenValue() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return uuid.NewString() + "." + hex.EncodeToString(buf), nil
}

func hashRefreshToken(token string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(token)))
	return hex.EncodeToString(sum[:])
}

func normalizeEmail(email string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if normalized == "" {
		return "", ErrInvalidEmail
	}
	if _, err := mail.ParseAddress(normalized); err != nil {
		return "", ErrInvalidEmail
	}
	return normalized, nil
}

func resolveNameFromEmail(email string) string {
	parts := strings.SplitN(email, "@", 2)
	if len(parts) == 2 && strings.TrimSpace(parts[0]) != "" {
		return strings.TrimSpace(parts[0])
	}
	return email
}

func resolveExpireMinutes(cfg config.ResetCodeConfig) int {
	if cfg.ExpireMinutes <= 0 {
		return 5
	}
	return cfg.ExpireMinutes
}

func resolveSendIntervalSeconds(cfg config.ResetCodeConfig) int {
	if cfg.SendIntervalSeconds <= 0 {
		return 60
	}
	return cfg.SendIntervalSeconds
}

func resolveMaxAttempts(cfg config.ResetCodeConfig) int {
	if cfg.MaxAttempts <= 0 {
		return 5
	}
	return cfg.MaxAttempts
}

func resolveCodeLength(cfg config.ResetCodeConfig) int {
	if cfg.Length < 4 || cfg.Length > 10 {
		return 6
	}
	return cfg.Length
}

func randomNumericCode(length int) (string, error) {
	var b strings.Builder
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		b.WriteString(fmt.Sprintf("%d", n.Int64()))
	}
	return b.String(), nil
}
