package repository

import (
	"errors"

	"github.com/giftvault/internal/constants"
	"github.com/giftvault/internal/models"

	"gorm.io/gorm"
)

// GiftCardRepository 礼品卡模板数据访问接口
type GiftCardRepository interface {
	Create(card *models.GiftCard) error
	Update(card *models.GiftCard) error
	GetByID(id uint) (*models.GiftCard, error)
	List(filter GiftCardListFilter) ([]models.GiftCard, int64, error)
	DeactivateByMerchant(merchantID uint) error
	Delete(id uint) error
}

// GormGiftCardRepository GORM 实现
type GormGiftCardRepository struct {
	db *gorm.DB
}

// NewGiftCardRepository 创建礼品卡模板仓库
func NewGiftCardRepository(db *gorm.DB) *GormGiftCardRepository {
	return &GormGiftCardRepository{db: db}
}

// Create 创建模板
func (r *GormGiftCardRepository) Create(card *models.GiftCard) error {
	if card == nil {
		return errors.New("invalid gift card")
	}
	return r.db.Create(card).Error
}

// Update 更新模板
func (r *GormGiftCardRepository) Update(card *models.GiftCard) error {
	if card == nil {
		return errors.New("invalid gift card")
	}
	return r.db.Save(card).Error
}

// GetByID 根据 ID 查询模板
func (r *GormGiftCardRepository) GetByID(id uint) (*models.GiftCard, error) {
	if id == 0 {
		return nil, nil
	}
	var card models.GiftCard
	if err := r.db.First(&card, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &card, nil
}

// List 查询模板列表
func (r *GormGiftCardRepository) List(filter GiftCardListFilter) ([]models.GiftCard, int64, error) {
	query := r.db.Model(&models.GiftCard{})

	if filter.MerchantID > 0 {
		query = query.Where("merchant_id = ?", filter.MerchantID)
	}
	if filter.OnlyActive {
		query = query.Where("is_active = ?", true)
	}
	if filter.OnlySellable {
		// 子查询自动排除已软删除的商户资料
		verified := r.db.Model(&models.MerchantProfile{}).
			Select("user_id").
			Where("profile_status = ?", constants.ProfileStatusVerified)
		query = query.Where("merchant_id IN (?)", verified)
	}
	if filter.Keyword != "" {
		condition, argCount := buildKeywordCondition(r.db, []string{"title", "description"})
		query = query.Where(condition, repeatLikeArgs("%"+filter.Keyword+"%", argCount)...)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var cards []models.GiftCard
	if err := query.Order("id DESC").Find(&cards).Error; err != nil {
		return nil, 0, err
	}
	return cards, total, nil
}

// DeactivateByMerchant 下架指定商户的全部模板
func (r *GormGiftCardRepository) DeactivateByMerchant(merchantID uint) error {
	if merchantID == 0 {
		return nil
	}
	return r.db.Model(&models.GiftCard{}).
		Where("merchant_id = ?", merchantID).
		Update("is_active", false).Error
}

// Delete 软删除模板
func (r *GormGiftCardRepository) Delete(id uint) error {
	if id == 0 {
		return nil
	}
	return r.db.Delete(&models.GiftCard{}, id).Error
}
