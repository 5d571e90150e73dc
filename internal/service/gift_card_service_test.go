package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/giftvault/internal/constants"
	"github.com/giftvault/internal/models"
	"github.com/giftvault/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupGiftCardServiceTest(t *testing.T) (*GiftCardService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:gift_card_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.MerchantProfile{},
		&models.GiftCard{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}

	svc := NewGiftCardService(repository.NewGiftCardRepository(db), repository.NewMerchantProfileRepository(db))
	return svc, db
}

func seedMerchantProfile(t *testing.T, db *gorm.DB, userID uint, status string) {
	t.Helper()
	profile := models.MerchantProfile{
		UserID:        userID,
		BusinessName:  fmt.Sprintf("商户 %d", userID),
		ProfileStatus: status,
	}
	if err := db.Create(&profile).Error; err != nil {
		t.Fatalf("seed merchant profile failed: %v", err)
	}
}

func TestGiftCardServiceCreate(t *testing.T) {
	svc, _ := setupGiftCardServiceTest(t)

	card, err := svc.Create(10, GiftCardInput{
		Title:         "  咖啡畅饮卡  ",
		Description:   "任意门店通用",
		Price:         models.NewMoneyFromDecimal(decimal.RequireFromString("50.00")),
		Currency:      "usd",
		ValidityDays:  0,
		BrandColor:    "#6f4e37",
		MessageHeader: "致亲爱的你",
	})
	if err != nil {
		t.Fatalf("create gift card failed: %v", err)
	}
	if card.ID == 0 {
		t.Fatalf("card id should be assigned")
	}
	if card.Title != "咖啡畅饮卡" {
		t.Fatalf("title should be trimmed, got %q", card.Title)
	}
	if card.Currency != "USD" {
		t.Fatalf("currency should be normalized to USD, got %s", card.Currency)
	}
	if card.ValidityDays != 365 {
		t.Fatalf("validity days should default to 365, got %d", card.ValidityDays)
	}
	if !card.IsActive {
		t.Fatalf("new card should be active")
	}
}

func TestGiftCardServiceCreateValidation(t *testing.T) {
	svc, _ := setupGiftCardServiceTest(t)

	_, err := svc.Create(10, GiftCardInput{
		Title: "   ",
		Price: models.NewMoneyFromDecimal(decimal.NewFromInt(50)),
	})
	if !errors.Is(err, ErrGiftCardTitleRequired) {
		t.Fatalf("expected ErrGiftCardTitleRequired, got %v", err)
	}

	_, err = svc.Create(10, GiftCardInput{
		Title: "零元卡",
		Price: models.NewMoneyFromDecimal(decimal.Zero),
	})
	if !errors.Is(err, ErrInvalidCardPrice) {
		t.Fatalf("expected ErrInvalidCardPrice, got %v", err)
	}
}

func TestGiftCardServiceUpdate(t *testing.T) {
	svc, _ := setupGiftCardServiceTest(t)

	card, err := svc.Create(10, GiftCardInput{
		Title:    "早餐套餐卡",
		Price:    models.NewMoneyFromDecimal(decimal.NewFromInt(25)),
		Currency: "USD",
	})
	if err != nil {
		t.Fatalf("create gift card failed: %v", err)
	}

	newTitle := "升级早餐卡"
	newPrice := models.NewMoneyFromDecimal(decimal.RequireFromString("29.90"))
	inactive := false
	footer := "— 早安咖啡"
	updated, err := svc.Update(10, card.ID, GiftCardUpdateInput{
		Title:         &newTitle,
		Price:         &newPrice,
		IsActive:      &inactive,
		MessageFooter: &footer,
	})
	if err != nil {
		t.Fatalf("update gift card failed: %v", err)
	}
	if updated.Title != "升级早餐卡" {
		t.Fatalf("title not updated, got %q", updated.Title)
	}
	if !updated.Price.Equal(decimal.RequireFromString("29.90")) {
		t.Fatalf("price not updated, got %s", updated.Price.String())
	}
	if updated.IsActive {
		t.Fatalf("card should be inactive after update")
	}
	if updated.MessageFooter != "— 早安咖啡" {
		t.Fatalf("message footer not updated, got %q", updated.MessageFooter)
	}
}

func TestGiftCardServiceUpdateRejectsNonOwner(t *testing.T) {
	svc, _ := setupGiftCardServiceTest(t)

	card, err := svc.Create(10, GiftCardInput{
		Title: "归属测试卡",
		Price: models.NewMoneyFromDecimal(decimal.NewFromInt(30)),
	})
	if err != nil {
		t.Fatalf("create gift card failed: %v", err)
	}

	newTitle := "越权修改"
	_, err = svc.Update(11, card.ID, GiftCardUpdateInput{Title: &newTitle})
	if !errors.Is(err, ErrNotCardOwner) {
		t.Fatalf("expected ErrNotCardOwner, got %v", err)
	}

	if err := svc.Delete(11, card.ID); !errors.Is(err, ErrNotCardOwner) {
		t.Fatalf("delete expected ErrNotCardOwner, got %v", err)
	}
}

func TestGiftCardServiceUpdateInvalidPrice(t *testing.T) {
	svc, _ := setupGiftCardServiceTest(t)

	card, err := svc.Create(10, GiftCardInput{
		Title: "价格校验卡",
		Price: models.NewMoneyFromDecimal(decimal.NewFromInt(30)),
	})
	if err != nil {
		t.Fatalf("create gift card failed: %v", err)
	}

	zero := models.NewMoneyFromDecimal(decimal.Zero)
	_, err = svc.Update(10, card.ID, GiftCardUpdateInput{Price: &zero})
	if !errors.Is(err, ErrInvalidCardPrice) {
		t.Fatalf("expected ErrInvalidCardPrice, got %v", err)
	}
}

func TestGiftCardServiceDelete(t *testing.T) {
	svc, _ := setupGiftCardServiceTest(t)

	card, err := svc.Create(10, GiftCardInput{
		Title: "删除测试卡",
		Price: models.NewMoneyFromDecimal(decimal.NewFromInt(30)),
	})
	if err != nil {
		t.Fatalf("create gift card failed: %v", err)
	}

	if err := svc.Delete(10, card.ID); err != nil {
		t.Fatalf("delete gift card failed: %v", err)
	}

	if _, err := svc.GetByID(card.ID); !errors.Is(err, ErrGiftCardNotFound) {
		t.Fatalf("deleted card should not be found, got %v", err)
	}
}

func TestGiftCardServiceGetActiveByID(t *testing.T) {
	svc, db := setupGiftCardServiceTest(t)
	seedMerchantProfile(t, db, 10, constants.ProfileStatusVerified)

	card, err := svc.Create(10, GiftCardInput{
		Title: "下架测试卡",
		Price: models.NewMoneyFromDecimal(decimal.NewFromInt(40)),
	})
	if err != nil {
		t.Fatalf("create gift card failed: %v", err)
	}

	if _, err := svc.GetActiveByID(card.ID); err != nil {
		t.Fatalf("active card lookup failed: %v", err)
	}

	inactive := false
	if _, err := svc.Update(10, card.ID, GiftCardUpdateInput{IsActive: &inactive}); err != nil {
		t.Fatalf("deactivate card failed: %v", err)
	}

	if _, err := svc.GetActiveByID(card.ID); !errors.Is(err, ErrGiftCardInactive) {
		t.Fatalf("expected ErrGiftCardInactive, got %v", err)
	}

	if _, err := svc.GetActiveByID(99999); !errors.Is(err, ErrGiftCardNotFound) {
		t.Fatalf("expected ErrGiftCardNotFound, got %v", err)
	}
}

func TestGiftCardServiceHidesUnverifiedMerchants(t *testing.T) {
	svc, db := setupGiftCardServiceTest(t)
	seedMerchantProfile(t, db, 10, constants.ProfileStatusVerified)
	seedMerchantProfile(t, db, 20, constants.ProfileStatusRejected)

	verifiedCard, err := svc.Create(10, GiftCardInput{
		Title: "已认证商户卡",
		Price: models.NewMoneyFromDecimal(decimal.NewFromInt(30)),
	})
	if err != nil {
		t.Fatalf("create gift card failed: %v", err)
	}
	rejectedCard, err := svc.Create(20, GiftCardInput{
		Title: "被驳回商户卡",
		Price: models.NewMoneyFromDecimal(decimal.NewFromInt(30)),
	})
	if err != nil {
		t.Fatalf("create gift card failed: %v", err)
	}
	// 商户 30 没有任何资料记录
	orphanCard, err := svc.Create(30, GiftCardInput{
		Title: "无资料商户卡",
		Price: models.NewMoneyFromDecimal(decimal.NewFromInt(30)),
	})
	if err != nil {
		t.Fatalf("create gift card failed: %v", err)
	}

	rows, total, err := svc.List(repository.GiftCardListFilter{Page: 1, PageSize: 10, OnlyActive: true, OnlySellable: true})
	if err != nil {
		t.Fatalf("list sellable failed: %v", err)
	}
	if total != 1 || len(rows) != 1 || rows[0].ID != verifiedCard.ID {
		t.Fatalf("sellable list should only contain the verified merchant's card, total=%d len=%d", total, len(rows))
	}

	if _, err := svc.GetActiveByID(verifiedCard.ID); err != nil {
		t.Fatalf("verified merchant's card should be visible: %v", err)
	}
	if _, err := svc.GetActiveByID(rejectedCard.ID); !errors.Is(err, ErrMerchantNotVerified) {
		t.Fatalf("expected ErrMerchantNotVerified for rejected merchant, got %v", err)
	}
	if _, err := svc.GetActiveByID(orphanCard.ID); !errors.Is(err, ErrMerchantNotVerified) {
		t.Fatalf("expected ErrMerchantNotVerified without a profile, got %v", err)
	}
}

func TestGiftCardServiceListFilters(t *testing.T) {
	svc, _ := setupGiftCardServiceTest(t)

	for i := 0; i < 3; i++ {
		if _, err := svc.Create(10, GiftCardInput{
			Title: fmt.Sprintf("商户卡 %d", i+1),
			Price: models.NewMoneyFromDecimal(decimal.NewFromInt(int64(10 * (i + 1)))),
		}); err != nil {
			t.Fatalf("create gift card failed: %v", err)
		}
	}
	other, err := svc.Create(20, GiftCardInput{
		Title: "其他商户卡",
		Price: models.NewMoneyFromDecimal(decimal.NewFromInt(15)),
	})
	if err != nil {
		t.Fatalf("create gift card failed: %v", err)
	}
	inactive := false
	if _, err := svc.Update(20, other.ID, GiftCardUpdateInput{IsActive: &inactive}); err != nil {
		t.Fatalf("deactivate card failed: %v", err)
	}

	_, total, err := svc.List(repository.GiftCardListFilter{Page: 1, PageSize: 10, MerchantID: 10})
	if err != nil {
		t.Fatalf("list by merchant failed: %v", err)
	}
	if total != 3 {
		t.Fatalf("merchant list total want 3 got %d", total)
	}

	_, total, err = svc.List(repository.GiftCardListFilter{Page: 1, PageSize: 10, OnlyActive: true})
	if err != nil {
		t.Fatalf("list active failed: %v", err)
	}
	if total != 3 {
		t.Fatalf("active list total want 3 got %d", total)
	}

	rows, total, err := svc.List(repository.GiftCardListFilter{Page: 1, PageSize: 2, MerchantID: 10})
	if err != nil {
		t.Fatalf("paged list failed: %v", err)
	}
	if total != 3 || len(rows) != 2 {
		t.Fatalf("paged list want total=3 len=2 got total=%d len=%d", total, len(rows))
	}
}
