//go:build integration
// +build integration

package repository

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/giftvault/internal/constants"
	"github.com/giftvault/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// setupPostgresIntegrationDB 初始化 PostgreSQL 集成测试数据库。
func setupPostgresIntegrationDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := strings.TrimSpace(os.Getenv("TEST_POSTGRES_DSN"))
	if dsn == "" {
		t.Skip("skip postgres integration test: TEST_POSTGRES_DSN is empty")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open postgres failed: %v", err)
	}

	cleanupModels := []interface{}{
		&models.Redemption{},
		&models.PurchasedGiftCard{},
		&models.GiftCard{},
		&models.MerchantProfile{},
		&models.User{},
	}
	_ = db.Migrator().DropTable(cleanupModels...)

	if err := db.AutoMigrate(
		&models.User{},
		&models.MerchantProfile{},
		&models.GiftCard{},
		&models.PurchasedGiftCard{},
		&models.Redemption{},
	); err != nil {
		t.Fatalf("migrate postgres models failed: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Migrator().DropTable(cleanupModels...)
		sqlDB, err := db.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})

	return db
}

func TestPostgresKeywordSearchRepositories(t *testing.T) {
	db := setupPostgresIntegrationDB(t)

	merchant := &models.User{
		Email:  "pg-merchant@example.com",
		Name:   "PG Merchant",
		Role:   constants.RoleMerchant,
		Status: constants.UserStatusActive,
	}
	if err := db.Create(merchant).Error; err != nil {
		t.Fatalf("create merchant failed: %v", err)
	}

	cardRepo := NewGiftCardRepository(db)
	card := &models.GiftCard{
		MerchantID:   merchant.ID,
		Title:        "Rocket Coffee Card",
		Description:  "espresso booster pack",
		Price:        models.NewMoneyFromDecimal(decimal.NewFromInt(50)),
		Currency:     "USD",
		ValidityDays: 365,
		IsActive:     true,
	}
	if err := cardRepo.Create(card); err != nil {
		t.Fatalf("create gift card failed: %v", err)
	}

	// postgres 使用 ILIKE，大小写不同也应命中
	rows, total, err := cardRepo.List(GiftCardListFilter{Page: 1, Keyword: "rocket"})
	if err != nil {
		t.Fatalf("gift card keyword search failed: %v", err)
	}
	if total != 1 || len(rows) != 1 {
		t.Fatalf("gift card keyword search want 1 got total=%d len=%d", total, len(rows))
	}

	rows, total, err = cardRepo.List(GiftCardListFilter{Page: 1, Keyword: "BOOSTER"})
	if err != nil {
		t.Fatalf("gift card description search failed: %v", err)
	}
	if total != 1 || len(rows) != 1 {
		t.Fatalf("gift card description search want 1 got total=%d len=%d", total, len(rows))
	}

	profileRepo := NewMerchantProfileRepository(db)
	profile := &models.MerchantProfile{
		UserID:        merchant.ID,
		BusinessName:  "Brew & Bean Coffee",
		ProfileStatus: constants.ProfileStatusVerified,
	}
	if err := profileRepo.Create(profile); err != nil {
		t.Fatalf("create merchant profile failed: %v", err)
	}

	profiles, profileTotal, err := profileRepo.List(MerchantProfileListFilter{Page: 1, Keyword: "brew & bean"})
	if err != nil {
		t.Fatalf("merchant profile keyword search failed: %v", err)
	}
	if profileTotal != 1 || len(profiles) != 1 {
		t.Fatalf("merchant profile keyword search want 1 got total=%d len=%d", profileTotal, len(profiles))
	}
}

func TestPostgresDecrementBalance(t *testing.T) {
	db := setupPostgresIntegrationDB(t)
	repo := NewPurchasedGiftCardRepository(db)

	expiresAt := time.Now().Add(24 * time.Hour)
	card := &models.PurchasedGiftCard{
		GiftCardID:     1,
		MerchantID:     1,
		RecipientEmail: "pg-recipient@example.com",
		QRCode:         "PG-DECREMENT-001",
		PurchaseAmount: models.NewMoneyFromDecimal(decimal.NewFromInt(50)),
		CurrentBalance: models.NewMoneyFromDecimal(decimal.NewFromInt(50)),
		Status:         constants.PurchasedCardStatusActive,
		ExpiresAt:      &expiresAt,
	}
	if err := repo.Create(card); err != nil {
		t.Fatalf("create purchased card failed: %v", err)
	}

	affected, err := repo.DecrementBalance(card.ID, models.NewMoneyFromDecimal(decimal.RequireFromString("15.00")))
	if err != nil {
		t.Fatalf("decrement failed: %v", err)
	}
	if affected != 1 {
		t.Fatalf("decrement affected want 1 got %d", affected)
	}

	got, err := repo.GetByID(card.ID)
	if err != nil {
		t.Fatalf("get purchased card failed: %v", err)
	}
	if !got.CurrentBalance.Equal(decimal.RequireFromString("35.00")) {
		t.Fatalf("balance want 35.00 got %s", got.CurrentBalance.String())
	}

	// 超过余额的扣减不应修改任何行
	affected, err = repo.DecrementBalance(card.ID, models.NewMoneyFromDecimal(decimal.NewFromInt(60)))
	if err != nil {
		t.Fatalf("over decrement failed: %v", err)
	}
	if affected != 0 {
		t.Fatalf("over decrement affected want 0 got %d", affected)
	}

	got, err = repo.GetByID(card.ID)
	if err != nil {
		t.Fatalf("get purchased card failed: %v", err)
	}
	if !got.CurrentBalance.Equal(decimal.RequireFromString("35.00")) {
		t.Fatalf("balance should stay 35.00 got %s", got.CurrentBalance.String())
	}

	affected, err = repo.DecrementBalance(card.ID, models.NewMoneyFromDecimal(decimal.RequireFromString("35.00")))
	if err != nil {
		t.Fatalf("final decrement failed: %v", err)
	}
	if affected != 1 {
		t.Fatalf("final decrement affected want 1 got %d", affected)
	}

	got, err = repo.GetByID(card.ID)
	if err != nil {
		t.Fatalf("get purchased card failed: %v", err)
	}
	if !got.CurrentBalance.Equal(decimal.Zero) {
		t.Fatalf("balance want 0 got %s", got.CurrentBalance.String())
	}
}
