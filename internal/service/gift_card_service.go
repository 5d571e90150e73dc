package service

import (
	"strings"

	"github.com/giftvault/internal/constants"
	"github.com/giftvault/internal/models"
	"github.com/giftvault/internal/repository"
)

// GiftCardService 礼品卡模板服务
type GiftCardService struct {
	repo        repository.GiftCardRepository
	profileRepo repository.MerchantProfileRepository
}

// NewGiftCardService 创建礼品卡模板服务
func NewGiftCardService(repo repository.GiftCardRepository, profileRepo repository.MerchantProfileRepository) *GiftCardService {
	return &GiftCardService{repo: repo, profileRepo: profileRepo}
}

// GiftCardInput 礼品卡模板参数
type GiftCardInput struct {
	Title         string
	Description   string
	Price         models.Money
	Currency      string
	ValidityDays  int
	ImageURL      string
	BrandColor    string
	MessageHeader string
	MessageFooter string
}

// GiftCardUpdateInput 礼品卡模板更新参数
// 指针字段为 nil 表示不修改。
type GiftCardUpdateInput struct {
	Title         *string
	Description   *string
	Price         *models.Money
	Currency      *string
	ValidityDays  *int
	ImageURL      *string
	IsActive      *bool
	BrandColor    *string
	MessageHeader *string
	MessageFooter *string
}

// Create 创建礼品卡模板
func (s *GiftCardService) Create(merchantID uint, input GiftCardInput) (*models.GiftCard, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrGiftCardTitleRequired
	}
	if !input.Price.IsPositive() {
		return nil, ErrInvalidCardPrice
	}

	card := &models.GiftCard{
		MerchantID:    merchantID,
		Title:         title,
		Description:   strings.TrimSpace(input.Description),
		Price:         input.Price,
		Currency:      normalizeCurrency(input.Currency),
		ValidityDays:  input.ValidityDays,
		ImageURL:      strings.TrimSpace(input.ImageURL),
		IsActive:      true,
		BrandColor:    strings.TrimSpace(input.BrandColor),
		MessageHeader: strings.TrimSpace(input.MessageHeader),
		MessageFooter: strings.TrimSpace(input.MessageFooter),
	}
	if card.ValidityDays <= 0 {
		card.ValidityDays = 365
	}
	if err := s.repo.Create(card); err != nil {
		return nil, err
	}
	return card, nil
}

// Update 更新礼品卡模板
func (s *GiftCardService) Update(merchantID, cardID uint, input GiftCardUpdateInput) (*models.GiftCard, error) {
	card, err := s.getOwned(merchantID, cardID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title != "" {
			card.Title = title
		}
	}
	if input.Description != nil {
		card.Description = strings.TrimSpace(*input.Description)
	}
	if input.Price != nil {
		if !input.Price.IsPositive() {
			return nil, ErrInvalidCardPrice
		}
		card.Price = *input.Price
	}
	if input.Currency != nil {
		card.Currency = normalizeCurrency(*input.Currency)
	}
	if input.ValidityDays != nil && *input.ValidityDays > 0 {
		card.ValidityDays = *input.ValidityDays
	}
	if input.ImageURL != nil {
		card.ImageURL = strings.TrimSpace(*input.ImageURL)
	}
	if input.IsActive != nil {
		card.IsActive = *input.IsActive
	}
	if input.BrandColor != nil {
		card.BrandColor = strings.TrimSpace(*input.BrandColor)
	}
	if input.MessageHeader != nil {
		card.MessageHeader = strings.TrimSpace(*input.MessageHeader)
	}
	if input.MessageFooter != nil {
		card.MessageFooter = strings.TrimSpace(*input.MessageFooter)
	}

	if err := s.repo.Update(card); err != nil {
		return nil, err
	}
	return card, nil
}

// Delete 删除礼品卡模板
func (s *GiftCardService) Delete(merchantID, cardID uint) error {
	if _, err := s.getOwned(merchantID, cardID); err != nil {
		return err
	}
	return s.repo.Delete(cardID)
}

// GetByID 查询礼品卡模板
func (s *GiftCardService) GetByID(cardID uint) (*models.GiftCard, error) {
	card, err := s.repo.GetByID(cardID)
	if err != nil {
		return nil, err
	}
	if card == nil {
		return nil, ErrGiftCardNotFound
	}
	return card, nil
}

// GetActiveByID 查询在售礼品卡模板
// 商户未通过审核（或资料已删除）时模板不可售。
func (s *GiftCardService) GetActiveByID(cardID uint) (*models.GiftCard, error) {
	card, err := s.GetByID(cardID)
	if err != nil {
		return nil, err
	}
	if !card.IsActive {
		return nil, ErrGiftCardInactive
	}
	if err := ensureMerchantSellable(s.profileRepo, card.MerchantID); err != nil {
		return nil, err
	}
	return card, nil
}

// ensureMerchantSellable 校验商户处于可售状态
func ensureMerchantSellable(profileRepo repository.MerchantProfileRepository, merchantID uint) error {
	if profileRepo == nil {
		return ErrMerchantNotVerified
	}
	profile, err := profileRepo.GetByUserID(merchantID)
	if err != nil {
		return err
	}
	if profile == nil || profile.ProfileStatus != constants.ProfileStatusVerified {
		return ErrMerchantNotVerified
	}
	return nil
}

// List 礼品卡模板列表
func (s *GiftCardService) List(filter repository.GiftCardListFilter) ([]models.GiftCard, int64, error) {
	return s.repo.List(filter)
}

func (s *GiftCardService) getOwned(merchantID, cardID uint) (*models.GiftCard, error) {
	card, err := s.repo.GetByID(cardID)
	if err != nil {
		return nil, err
	}
	if card == nil {
		return nil, ErrGiftCardNotFound
	}
	if card.MerchantID != merchantID {
		return nil, ErrNotCardOwner
	}
	return card, nil
}

func normalizeCurrency(currency string) string {
	normalized := strings.ToUpper(strings.TrimSpace(currency))
	if len(normalized) != 3 {
		return "USD"
	}
	return normalized
}
