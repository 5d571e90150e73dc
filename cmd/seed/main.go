package main

import (
	"fmt"
	"time"

	"github.com/giftvault/internal/config"
	"github.com/giftvault/internal/constants"
	"github.com/giftvault/internal/logger"
	"github.com/giftvault/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

const demoPassword = "demo1234"

func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	if err := models.InitDefaultAdmin("", ""); err != nil {
		stdLog.Printf("Failed to init default admin: %v", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(demoPassword), bcrypt.DefaultCost)
	if err != nil {
		stdLog.Fatalf("Failed to hash demo password: %v", err)
	}
	now := time.Now()

	// 演示商户
	merchant := ensureUser(stdLog.Printf, models.User{
		Email:           "merchant@giftvault.local",
		PasswordHash:    string(hash),
		Name:            "Brew & Bean Coffee",
		Role:            constants.RoleMerchant,
		Status:          constants.UserStatusActive,
		EmailVerifiedAt: &now,
	})
	if merchant != nil {
		ensureMerchantProfile(stdLog.Printf, models.MerchantProfile{
			UserID:          merchant.ID,
			BusinessName:    "Brew & Bean Coffee",
			BusinessPhone:   "+1-202-555-0147",
			BusinessAddress: "12 Market Street, Springfield",
			Description:     "社区咖啡馆，支持礼品卡到店消费",
			ProfileStatus:   constants.ProfileStatusVerified,
			SubmittedAt:     &now,
			VerifiedAt:      &now,
		})
		ensureGiftCards(stdLog.Printf, merchant.ID)
	}

	// 演示买家
	ensureUser(stdLog.Printf, models.User{
		Email:           "buyer@giftvault.local",
		PasswordHash:    string(hash),
		Name:            "Demo Buyer",
		Role:            constants.RoleUser,
		Status:          constants.UserStatusActive,
		EmailVerifiedAt: &now,
	})

	stdLog.Printf("Seed finished, demo password: %s", demoPassword)
}

func ensureUser(logf func(string, ...interface{}), user models.User) *models.User {
	var existing models.User
	if err := models.DB.Where("email = ?", user.Email).First(&existing).Error; err == nil {
		logf("User already exists: %s", user.Email)
		return &existing
	}
	if err := models.DB.Create(&user).Error; err != nil {
		logf("Failed to create user %s: %v", user.Email, err)
		return nil
	}
	logf("Created user: %s", user.Email)
	return &user
}

func ensureMerchantProfile(logf func(string, ...interface{}), profile models.MerchantProfile) {
	var existing models.MerchantProfile
	if err := models.DB.Where("user_id = ?", profile.UserID).First(&existing).Error; err == nil {
		logf("Merchant profile already exists for user %d", profile.UserID)
		return
	}
	if err := models.DB.Create(&profile).Error; err != nil {
		logf("Failed to create merchant profile: %v", err)
		return
	}
	logf("Created merchant profile: %s", profile.BusinessName)
}

func ensureGiftCards(logf func(string, ...interface{}), merchantID uint) {
	cards := []models.GiftCard{
		{
			MerchantID:   merchantID,
			Title:        "咖啡畅饮卡",
			Description:  "可在门店兑换任意饮品",
			Price:        models.NewMoneyFromDecimal(decimal.NewFromInt(50)),
			Currency:     "USD",
			ValidityDays: 365,
			IsActive:     true,
			BrandColor:   "#6f4e37",
		},
		{
			MerchantID:   merchantID,
			Title:        "早餐套餐卡",
			Description:  "咖啡加可颂组合",
			Price:        models.NewMoneyFromDecimal(decimal.NewFromInt(25)),
			Currency:     "USD",
			ValidityDays: 180,
			IsActive:     true,
		},
	}
	for _, card := range cards {
		var existing models.GiftCard
		if err := models.DB.Where("merchant_id = ? AND title = ?", merchantID, card.Title).First(&existing).Error; err == nil {
			logf("Gift card already exists: %s", card.Title)
			continue
		}
		if err := models.DB.Create(&card).Error; err != nil {
			logf("Failed to create gift card %s: %v", card.Title, err)
			continue
		}
		logf("Created gift card: %s (%s)", card.Title, fmt.Sprintf("%s %s", card.Price.String(), card.Currency))
	}
}
