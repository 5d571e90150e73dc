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
	"gorm.io/gorm"
)

func setupMerchantServiceTest(t *testing.T) (*MerchantService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:merchant_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
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

	svc := NewMerchantService(
		repository.NewMerchantProfileRepository(db),
		repository.NewUserRepository(db),
		repository.NewRefreshTokenRepository(db),
		repository.NewGiftCardRepository(db),
		nil,
	)
	return svc, db
}

func seedMerchant(t *testing.T, db *gorm.DB, email string) (*models.User, *models.MerchantProfile) {
	t.Helper()
	user := &models.User{
		Email:  email,
		Role:   constants.RoleMerchant,
		Status: constants.UserStatusActive,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("seed merchant user failed: %v", err)
	}
	profile := &models.MerchantProfile{
		UserID:        user.ID,
		ProfileStatus: constants.ProfileStatusIncomplete,
	}
	if err := db.Create(profile).Error; err != nil {
		t.Fatalf("seed merchant profile failed: %v", err)
	}
	return user, profile
}

func completeProfileInput() MerchantProfileInput {
	return MerchantProfileInput{
		BusinessName: "Brew & Bean Coffee",
		Phone:        "+1-555-0100",
		Address:      "100 Market St",
		Description:  "精品咖啡",
	}
}

func TestSubmitMovesProfileToPending(t *testing.T) {
	svc, db := setupMerchantServiceTest(t)
	_, profile := seedMerchant(t, db, "submit@example.com")

	updated, err := svc.Submit(profile.UserID, completeProfileInput())
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if updated.ProfileStatus != constants.ProfileStatusPendingVerification {
		t.Fatalf("status want pending_verification got %s", updated.ProfileStatus)
	}
	if updated.SubmittedAt == nil {
		t.Fatalf("submitted_at should be set")
	}
	if updated.BusinessName != "Brew & Bean Coffee" || updated.BusinessPhone != "+1-555-0100" {
		t.Fatalf("profile fields not persisted: %+v", updated)
	}

	// 待审核状态不允许重复提交
	if _, err := svc.Submit(profile.UserID, completeProfileInput()); !errors.Is(err, ErrInvalidProfileTransition) {
		t.Fatalf("resubmit while pending expected ErrInvalidProfileTransition, got %v", err)
	}
}

func TestSubmitRequiresCompleteFields(t *testing.T) {
	svc, db := setupMerchantServiceTest(t)
	_, profile := seedMerchant(t, db, "incomplete@example.com")

	input := completeProfileInput()
	input.Phone = "   "
	if _, err := svc.Submit(profile.UserID, input); !errors.Is(err, ErrProfileIncomplete) {
		t.Fatalf("expected ErrProfileIncomplete, got %v", err)
	}

	if _, err := svc.Submit(99999, completeProfileInput()); !errors.Is(err, ErrMerchantProfileNotFound) {
		t.Fatalf("expected ErrMerchantProfileNotFound, got %v", err)
	}
}

func TestVerifyApprovedProfile(t *testing.T) {
	svc, db := setupMerchantServiceTest(t)
	_, profile := seedMerchant(t, db, "verify@example.com")

	// 未提交不可审核
	if _, err := svc.Verify(profile.ID, 1); !errors.Is(err, ErrInvalidProfileTransition) {
		t.Fatalf("verify incomplete expected ErrInvalidProfileTransition, got %v", err)
	}

	if _, err := svc.Submit(profile.UserID, completeProfileInput()); err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	verified, err := svc.Verify(profile.ID, 1)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if verified.ProfileStatus != constants.ProfileStatusVerified {
		t.Fatalf("status want verified got %s", verified.ProfileStatus)
	}
	if verified.VerifiedAt == nil || verified.VerifiedBy == nil || *verified.VerifiedBy != 1 {
		t.Fatalf("verification metadata missing: %+v", verified)
	}

	ok, err := svc.IsVerified(profile.UserID)
	if err != nil || !ok {
		t.Fatalf("IsVerified want true, got %v err %v", ok, err)
	}

	// 已通过后不可再次审核
	if _, err := svc.Verify(profile.ID, 1); !errors.Is(err, ErrInvalidProfileTransition) {
		t.Fatalf("double verify expected ErrInvalidProfileTransition, got %v", err)
	}
}

func TestRejectThenResubmit(t *testing.T) {
	svc, db := setupMerchantServiceTest(t)
	_, profile := seedMerchant(t, db, "reject@example.com")

	if _, err := svc.Submit(profile.UserID, completeProfileInput()); err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	if _, err := svc.Reject(profile.ID, 1, "   "); !errors.Is(err, ErrRejectionReasonRequired) {
		t.Fatalf("blank reason expected ErrRejectionReasonRequired, got %v", err)
	}

	rejected, err := svc.Reject(profile.ID, 1, "银行账户信息不完整")
	if err != nil {
		t.Fatalf("reject failed: %v", err)
	}
	if rejected.ProfileStatus != constants.ProfileStatusRejected {
		t.Fatalf("status want rejected got %s", rejected.ProfileStatus)
	}
	if rejected.RejectionReason != "银行账户信息不完整" {
		t.Fatalf("rejection reason not recorded, got %q", rejected.RejectionReason)
	}

	if ok, _ := svc.IsVerified(profile.UserID); ok {
		t.Fatalf("rejected merchant should not be verified")
	}

	// 驳回后允许修改并重新提交
	input := completeProfileInput()
	input.BankName = "First National"
	input.AccountName = "Brew & Bean LLC"
	input.AccountNumber = "0123456789"
	resubmitted, err := svc.Submit(profile.UserID, input)
	if err != nil {
		t.Fatalf("resubmit failed: %v", err)
	}
	if resubmitted.ProfileStatus != constants.ProfileStatusPendingVerification {
		t.Fatalf("resubmit status want pending_verification got %s", resubmitted.ProfileStatus)
	}
	if resubmitted.RejectionReason != "" {
		t.Fatalf("rejection reason should be cleared on resubmit")
	}
	if resubmitted.BankAccountNumber != "0123456789" {
		t.Fatalf("bank fields not persisted: %+v", resubmitted)
	}
}

func TestUpdateProfileKeepsStatus(t *testing.T) {
	svc, db := setupMerchantServiceTest(t)
	_, profile := seedMerchant(t, db, "update@example.com")

	if _, err := svc.Submit(profile.UserID, completeProfileInput()); err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if _, err := svc.Verify(profile.ID, 1); err != nil {
		t.Fatalf("verify failed: %v", err)
	}

	updated, err := svc.UpdateProfile(profile.UserID, MerchantProfileInput{
		Description: "新的门店介绍",
		LogoURL:     "https://cdn.example.com/logo.png",
	})
	if err != nil {
		t.Fatalf("update profile failed: %v", err)
	}
	if updated.ProfileStatus != constants.ProfileStatusVerified {
		t.Fatalf("detail update must not change status, got %s", updated.ProfileStatus)
	}
	if updated.Description != "新的门店介绍" {
		t.Fatalf("description not updated, got %q", updated.Description)
	}
	if updated.BusinessName != "Brew & Bean Coffee" {
		t.Fatalf("blank fields must not overwrite, got %q", updated.BusinessName)
	}
}

func TestDeleteMerchantDisablesUser(t *testing.T) {
	svc, db := setupMerchantServiceTest(t)
	user, profile := seedMerchant(t, db, "delete@example.com")

	token := &models.RefreshToken{
		UserID:    user.ID,
		TokenHash: "delete-test-hash",
		ExpiresAt: time.Now().Add(time.Hour),
	}
	if err := db.Create(token).Error; err != nil {
		t.Fatalf("seed refresh token failed: %v", err)
	}
	template := &models.GiftCard{
		MerchantID: user.ID,
		Title:      "注销测试卡",
		IsActive:   true,
	}
	if err := db.Create(template).Error; err != nil {
		t.Fatalf("seed gift card failed: %v", err)
	}

	if err := svc.Delete(profile.ID); err != nil {
		t.Fatalf("delete merchant failed: %v", err)
	}

	var gotUser models.User
	if err := db.First(&gotUser, user.ID).Error; err != nil {
		t.Fatalf("reload user failed: %v", err)
	}
	if gotUser.Status != constants.UserStatusDisabled {
		t.Fatalf("user should be disabled, got %s", gotUser.Status)
	}

	var gotToken models.RefreshToken
	if err := db.First(&gotToken, token.ID).Error; err != nil {
		t.Fatalf("reload token failed: %v", err)
	}
	if gotToken.RevokedAt == nil {
		t.Fatalf("refresh tokens should be revoked on delete")
	}

	var gotCard models.GiftCard
	if err := db.First(&gotCard, template.ID).Error; err != nil {
		t.Fatalf("reload gift card failed: %v", err)
	}
	if gotCard.IsActive {
		t.Fatalf("merchant deletion should deactivate their templates")
	}

	if _, err := svc.GetByID(profile.ID); !errors.Is(err, ErrMerchantProfileNotFound) {
		t.Fatalf("deleted profile should not be found, got %v", err)
	}
}
