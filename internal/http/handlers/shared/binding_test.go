package shared

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

type registerPayload struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func bindAndRespond(body string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	RegisterValidatorTagNames()

	w := httptest.NewRecorder()
	r := gin.New()
	r.POST("/register", func(c *gin.Context) {
		var req registerPayload
		if err := c.ShouldBindJSON(&req); err != nil {
			RespondBindingError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"email": req.Email})
	})
	req := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestRespondBindingErrorReportsPerFieldMessages(t *testing.T) {
	w := bindAndRespond(`{"email":"not-an-email"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status want 400 got %d", w.Code)
	}

	var resp struct {
		Success bool              `json:"success"`
		Message string            `json:"message"`
		Errors  map[string]string `json:"errors"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	if resp.Success {
		t.Fatalf("response should not be marked success")
	}
	if resp.Message != "请求参数错误" {
		t.Fatalf("message want 请求参数错误 got %q", resp.Message)
	}
	if len(resp.Errors) != 2 {
		t.Fatalf("errors want 2 fields got %v", resp.Errors)
	}
	if resp.Errors["email"] != "邮箱格式不正确" {
		t.Fatalf("email message want 邮箱格式不正确 got %q", resp.Errors["email"])
	}
	if resp.Errors["password"] != "该字段为必填项" {
		t.Fatalf("password message want 该字段为必填项 got %q", resp.Errors["password"])
	}
}

func TestRespondBindingErrorFallsBackOnMalformedJSON(t *testing.T) {
	w := bindAndRespond(`{"email":`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status want 400 got %d", w.Code)
	}

	var resp struct {
		Message string            `json:"message"`
		Errors  map[string]string `json:"errors"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	if resp.Message != "请求参数错误" {
		t.Fatalf("message want 请求参数错误 got %q", resp.Message)
	}
	if len(resp.Errors) != 0 {
		t.Fatalf("malformed body should not yield field errors, got %v", resp.Errors)
	}
}

func TestFieldErrorsIgnoresNonValidationErrors(t *testing.T) {
	if fields := FieldErrors(errors.New("broken pipe")); fields != nil {
		t.Fatalf("non-validation error should yield nil, got %v", fields)
	}
	if fields := FieldErrors(nil); fields != nil {
		t.Fatalf("nil error should yield nil, got %v", fields)
	}
}
