package public

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/giftvault/internal/constants"
	"github.com/giftvault/internal/models"
	"github.com/giftvault/internal/provider"
	"github.com/giftvault/internal/repository"
	"github.com/giftvault/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupMerchantHandlerTest(t *testing.T) (*Handler, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	dsn := fmt.Sprintf("file:merchant_handler_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.MerchantProfile{},
		&models.RefreshToken{},
		&models.GiftCard{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}

	container := &provider.Container{
		MerchantService: service.NewMerchantService(
			repository.NewMerchantProfileRepository(db),
			repository.NewUserRepository(db),
			repository.NewRefreshTokenRepository(db),
			repository.NewGiftCardRepository(db),
			nil,
		),
	}
	return New(container), db
}

func submitProfileRequest(t *testing.T, h *Handler, userID uint) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	r := gin.New()
	r.POST("/merchants/me/submit", func(c *gin.Context) {
		c.Set("user_id", userID)
		h.SubmitMerchantProfile(c)
	})
	body := `{"business_name":"Brew & Bean Coffee","phone":"+1-555-0100","address":"100 Market St","description":"精品咖啡"}`
	req := httptest.NewRequest(http.MethodPost, "/merchants/me/submit", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestSubmitMerchantProfileRepeatReturnsBadRequest(t *testing.T) {
	h, db := setupMerchantHandlerTest(t)

	user := &models.User{
		Email:  "pending@example.com",
		Role:   constants.RoleMerchant,
		Status: constants.UserStatusActive,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("seed user failed: %v", err)
	}
	profile := &models.MerchantProfile{
		UserID:        user.ID,
		ProfileStatus: constants.ProfileStatusIncomplete,
	}
	if err := db.Create(profile).Error; err != nil {
		t.Fatalf("seed profile failed: %v", err)
	}

	if w := submitProfileRequest(t, h, user.ID); w.Code != http.StatusOK {
		t.Fatalf("first submit want 200 got %d body %s", w.Code, w.Body.String())
	}

	// 待审核状态下重复提交属于业务规则冲突，按 400 返回
	w := submitProfileRequest(t, h, user.ID)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("repeat submit want 400 got %d body %s", w.Code, w.Body.String())
	}
	var resp struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	if resp.Success {
		t.Fatalf("response should not be marked success")
	}
	if resp.Message != service.ErrInvalidProfileTransition.Error() {
		t.Fatalf("message want %q got %q", service.ErrInvalidProfileTransition.Error(), resp.Message)
	}
}
