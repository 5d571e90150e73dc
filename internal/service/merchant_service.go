package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/giftvault/internal/cache"
	"github.com/giftvault/internal/constants"
	"github.com/giftvault/internal/models"
	"github.com/giftvault/internal/repository"
)

// MerchantService 商户资料服务
type MerchantService struct {
	profileRepo     repository.MerchantProfileRepository
	userRepo        repository.UserRepository
	tokenRepo       repository.RefreshTokenRepository
	giftCardRepo    repository.GiftCardRepository
	notificationSvc *NotificationService
}

// NewMerchantService 创建商户资料服务
func NewMerchantService(
	profileRepo repository.MerchantProfileRepository,
	userRepo repository.UserRepository,
	tokenRepo repository.RefreshTokenRepository,
	giftCardRepo repository.GiftCardRepository,
	notificationSvc *NotificationService,
) *MerchantService {
	return &MerchantService{
		profileRepo:     profileRepo,
		userRepo:        userRepo,
		tokenRepo:       tokenRepo,
		giftCardRepo:    giftCardRepo,
		notificationSvc: notificationSvc,
	}
}

// MerchantProfileInput 商户资料提交参数
type MerchantProfileInput struct {
	BusinessName  string
	Phone         string
	Address       string
	Description   string
	LogoURL       string
	BankName      string
	AccountName   string
	AccountNumber string
}

// GetByUserID 查询商户资料
func (s *MerchantService) GetByUserID(userID uint) (*models.MerchantProfile, error) {
	profile, err := s.profileRepo.GetByUserID(userID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, ErrMerchantProfileNotFound
	}
	return profile, nil
}

// GetByID 按 ID 查询商户资料
func (s *MerchantService) GetByID(id uint) (*models.MerchantProfile, error) {
	profile, err := s.profileRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, ErrMerchantProfileNotFound
	}
	return profile, nil
}

// Submit 提交资料进入待审核
// 允许从 incomplete 或 rejected 发起，pending 与 verified 状态拒绝重复提交。
func (s *MerchantService) Submit(userID uint, input MerchantProfileInput) (*models.MerchantProfile, error) {
	profile, err := s.profileRepo.GetByUserID(userID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, ErrMerchantProfileNotFound
	}
	switch profile.ProfileStatus {
	case constants.ProfileStatusIncomplete, constants.ProfileStatusRejected:
	default:
		return nil, ErrInvalidProfileTransition
	}

	businessName := strings.TrimSpace(input.BusinessName)
	phone := strings.TrimSpace(input.Phone)
	address := strings.TrimSpace(input.Address)
	if businessName == "" || phone == "" || address == "" {
		return nil, ErrProfileIncomplete
	}

	now := time.Now()
	profile.BusinessName = businessName
	profile.BusinessPhone = phone
	profile.BusinessAddress = address
	profile.Description = strings.TrimSpace(input.Description)
	profile.LogoURL = strings.TrimSpace(input.LogoURL)
	profile.BankName = strings.TrimSpace(input.BankName)
	profile.BankAccountName = strings.TrimSpace(input.AccountName)
	profile.BankAccountNumber = strings.TrimSpace(input.AccountNumber)
	profile.ProfileStatus = constants.ProfileStatusPendingVerification
	profile.RejectionReason = ""
	profile.SubmittedAt = &now
	profile.VerifiedAt = nil
	profile.VerifiedBy = nil
	if err := s.profileRepo.Update(profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// UpdateProfile 更新资料明细
// 仅允许修改联系与展示字段，不触发状态变更。
func (s *MerchantService) UpdateProfile(userID uint, input MerchantProfileInput) (*models.MerchantProfile, error) {
	profile, err := s.profileRepo.GetByUserID(userID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, ErrMerchantProfileNotFound
	}

	if v := strings.TrimSpace(input.BusinessName); v != "" {
		profile.BusinessName = v
	}
	if v := strings.TrimSpace(input.Phone); v != "" {
		profile.BusinessPhone = v
	}
	if v := strings.TrimSpace(input.Address); v != "" {
		profile.BusinessAddress = v
	}
	profile.Description = strings.TrimSpace(input.Description)
	profile.LogoURL = strings.TrimSpace(input.LogoURL)
	if v := strings.TrimSpace(input.BankName); v != "" {
		profile.BankName = v
	}
	if v := strings.TrimSpace(input.AccountName); v != "" {
		profile.BankAccountName = v
	}
	if v := strings.TrimSpace(input.AccountNumber); v != "" {
		profile.BankAccountNumber = v
	}
	if err := s.profileRepo.Update(profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// Verify 管理员审核通过
func (s *MerchantService) Verify(profileID, adminID uint) (*models.MerchantProfile, error) {
	profile, err := s.profileRepo.GetByID(profileID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, ErrMerchantProfileNotFound
	}
	if profile.ProfileStatus != constants.ProfileStatusPendingVerification {
		return nil, ErrInvalidProfileTransition
	}

	now := time.Now()
	profile.ProfileStatus = constants.ProfileStatusVerified
	profile.RejectionReason = ""
	profile.VerifiedAt = &now
	profile.VerifiedBy = &adminID
	if err := s.profileRepo.Update(profile); err != nil {
		return nil, err
	}

	s.refreshAuthState(profile.UserID)
	if s.notificationSvc != nil {
		s.notificationSvc.Notify(NotificationInput{
			UserID: profile.UserID,
			Event:  constants.NotificationEventMerchantVerified,
			Title:  "商户审核已通过",
			Body:   "您的商户资料审核通过，现在可以创建和销售礼品卡了。",
		})
	}
	return profile, nil
}

// Reject 管理员驳回审核
func (s *MerchantService) Reject(profileID, adminID uint, reason string) (*models.MerchantProfile, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, ErrRejectionReasonRequired
	}
	profile, err := s.profileRepo.GetByID(profileID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, ErrMerchantProfileNotFound
	}
	if profile.ProfileStatus != constants.ProfileStatusPendingVerification {
		return nil, ErrInvalidProfileTransition
	}

	now := time.Now()
	profile.ProfileStatus = constants.ProfileStatusRejected
	profile.RejectionReason = reason
	profile.VerifiedAt = &now
	profile.VerifiedBy = &adminID
	if err := s.profileRepo.Update(profile); err != nil {
		return nil, err
	}

	s.refreshAuthState(profile.UserID)
	if s.notificationSvc != nil {
		s.notificationSvc.Notify(NotificationInput{
			UserID: profile.UserID,
			Event:  constants.NotificationEventMerchantRejected,
			Title:  "商户审核未通过",
			Body:   fmt.Sprintf("您的商户资料审核未通过：%s。修改后可重新提交。", reason),
		})
	}
	return profile, nil
}

// List 管理端商户列表
func (s *MerchantService) List(filter repository.MerchantProfileListFilter) ([]models.MerchantProfile, int64, error) {
	return s.profileRepo.List(filter)
}

// Delete 删除商户账号
// 同时禁用对应用户、撤销其全部刷新令牌并下架其全部模板。
func (s *MerchantService) Delete(profileID uint) error {
	profile, err := s.profileRepo.GetByID(profileID)
	if err != nil {
		return err
	}
	if profile == nil {
		return ErrMerchantProfileNotFound
	}

	now := time.Now()
	if err := s.userRepo.UpdateStatus(profile.UserID, constants.UserStatusDisabled); err != nil {
		return err
	}
	if s.tokenRepo != nil {
		if err := s.tokenRepo.RevokeAllByUserID(profile.UserID, now); err != nil {
			return err
		}
	}
	if s.giftCardRepo != nil {
		if err := s.giftCardRepo.DeactivateByMerchant(profile.UserID); err != nil {
			return err
		}
	}
	_ = cache.DelUserAuthState(context.Background(), profile.UserID)
	return s.profileRepo.Delete(profileID)
}

// IsVerified 判断商户是否通过审核
func (s *MerchantService) IsVerified(userID uint) (bool, error) {
	profile, err := s.profileRepo.GetByUserID(userID)
	if err != nil {
		return false, err
	}
	return profile != nil && profile.ProfileStatus == constants.ProfileStatusVerified, nil
}

func (s *MerchantService) refreshAuthState(userID uint) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil || user == nil {
		return
	}
	_ = cache.SetUserAuthState(context.Background(), cache.BuildUserAuthState(user))
}
