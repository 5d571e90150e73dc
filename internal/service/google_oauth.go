package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/giftvault/internal/config"
)

const defaultGoogleTokenInfoURL = "https://oauth2.googleapis.com/tokeninfo"

// GoogleTokenInfo Google tokeninfo 接口返回的身份信息
type GoogleTokenInfo struct {
	Audience      string `json:"aud"`
	Subject       string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified string `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
	ExpiresAt     string `json:"exp"`
}

// GoogleVerifier Google ID Token 校验器
// 通过 tokeninfo 端点远程校验，避免本地维护 Google 公钥。
type GoogleVerifier struct {
	cfg        config.GoogleOAuthConfig
	httpClient *http.Client
}

// NewGoogleVerifier 创建 Google 校验器
func NewGoogleVerifier(cfg config.GoogleOAuthConfig) *GoogleVerifier {
	timeout := time.Duration(cfg.TimeoutMS) * time.Millisecond
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &GoogleVerifier{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Enabled 是否启用
func (v *GoogleVerifier) Enabled() bool {
	return v != nil && v.cfg.Enabled && strings.TrimSpace(v.cfg.ClientID) != ""
}

// Verify 校验 ID Token 并返回身份信息
func (v *GoogleVerifier) Verify(ctx context.Context, idToken string) (*GoogleTokenInfo, error) {
	if !v.Enabled() {
		return nil, ErrGoogleAuthDisabled
	}
	idToken = strings.TrimSpace(idToken)
	if idToken == "" {
		return nil, ErrGoogleTokenInvalid
	}

	endpoint := strings.TrimSpace(v.cfg.TokenInfoURL)
	if endpoint == "" {
		endpoint = defaultGoogleTokenInfoURL
	}
	query := url.Values{"id_token": {idToken}}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("google tokeninfo request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, ErrGoogleTokenInvalid
	}

	var info GoogleTokenInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, ErrGoogleTokenInvalid
	}
	if info.Audience != strings.TrimSpace(v.cfg.ClientID) {
		return nil, ErrGoogleTokenInvalid
	}
	if strings.TrimSpace(info.Email) == "" || info.EmailVerified != "true" {
		return nil, ErrGoogleTokenInvalid
	}
	return &info, nil
}
