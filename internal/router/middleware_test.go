package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/giftvault/internal/constants"

	"github.com/gin-gonic/gin"
)

func TestResolveAllowedOrigin(t *testing.T) {
	cases := []struct {
		name             string
		origin           string
		allowed          []string
		allowCredentials bool
		want             string
	}{
		{name: "wildcard", origin: "https://shop.example", allowed: []string{"*"}, want: "*"},
		{name: "wildcard_with_credentials_echoes_origin", origin: "https://shop.example", allowed: []string{"*"}, allowCredentials: true, want: "https://shop.example"},
		{name: "allow_list_match", origin: "https://merchant.example", allowed: []string{"https://merchant.example", "https://admin.example"}, want: "https://merchant.example"},
		{name: "allow_list_case_insensitive", origin: "https://Merchant.Example", allowed: []string{"https://merchant.example"}, want: "https://Merchant.Example"},
		{name: "unmatched_origin_rejected", origin: "https://evil.example", allowed: []string{"https://merchant.example"}, want: ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := resolveAllowedOrigin(tc.origin, tc.allowed, tc.allowCredentials)
			if got != tc.want {
				t.Fatalf("origin want %q got %q", tc.want, got)
			}
		})
	}
}

func TestRequestIDMiddlewarePropagatesAndGenerates(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"request_id": getRequestID(c)})
	})

	// 客户端传入的 request id 原样透传
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(requestIDHeader, "req-gv-42")
	r.ServeHTTP(w, req)
	if w.Header().Get(requestIDHeader) != "req-gv-42" {
		t.Fatalf("response request id want req-gv-42 got %s", w.Header().Get(requestIDHeader))
	}
	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	if resp["request_id"] != "req-gv-42" {
		t.Fatalf("context request id want req-gv-42 got %s", resp["request_id"])
	}

	// 未传入时生成新的 request id
	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, httptest.NewRequest(http.MethodGet, "/ping", nil))
	if w2.Header().Get(requestIDHeader) == "" {
		t.Fatalf("generated request id should not be empty")
	}
}

func TestJWTAuthMiddlewareMissingSecret(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(JWTAuthMiddleware("", nil))
	r.GET("/api/purchases", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/purchases", nil))

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status want 401 got %d", w.Code)
	}
	var resp struct {
		Success bool `json:"success"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	if resp.Success {
		t.Fatalf("success want false")
	}
}

func TestOptionalAuthMiddlewareAllowsAnonymous(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(OptionalAuthMiddleware("secret", nil))
	r.GET("/api/gift-cards/1", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": getContextUserID(c)})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/gift-cards/1", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("anonymous request should pass, got %d", w.Code)
	}

	// 携带无效令牌时不允许静默降级为匿名
	w2 := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/gift-cards/1", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	r.ServeHTTP(w2, req)
	if w2.Code != http.StatusUnauthorized {
		t.Fatalf("invalid token should be rejected, got %d", w2.Code)
	}
}

func TestRequireRole(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(userIDContextKey, uint(7))
		c.Set(userRoleContextKey, constants.RoleUser)
	})
	r.POST("/api/gift-cards", RequireRole(constants.RoleMerchant), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	r.GET("/api/purchases", RequireRole(constants.RoleUser, constants.RoleMerchant), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/gift-cards", nil))
	if w.Code != http.StatusForbidden {
		t.Fatalf("user role should be rejected for merchant route, got %d", w.Code)
	}

	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, httptest.NewRequest(http.MethodGet, "/api/purchases", nil))
	if w2.Code != http.StatusOK {
		t.Fatalf("user role should pass shared route, got %d", w2.Code)
	}
}
