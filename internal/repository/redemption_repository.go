package repository

import (
	"github.com/giftvault/internal/models"

	"gorm.io/gorm"
)

// RedemptionRepository 核销流水数据访问接口
// 流水不可变，只提供创建与查询。
type RedemptionRepository interface {
	Create(redemption *models.Redemption) error
	ListByCardID(cardID uint) ([]models.Redemption, error)
	ListByMerchantID(merchantID uint, page, pageSize int) ([]models.Redemption, int64, error)
	WithTx(tx *gorm.DB) *GormRedemptionRepository
}

// GormRedemptionRepository GORM 实现
type GormRedemptionRepository struct {
	db *gorm.DB
}

// NewRedemptionRepository 创建核销流水仓库
func NewRedemptionRepository(db *gorm.DB) *GormRedemptionRepository {
	return &GormRedemptionRepository{db: db}
}

// WithTx 绑定事务
func (r *GormRedemptionRepository) WithTx(tx *gorm.DB) *GormRedemptionRepository {
	if tx == nil {
		return r
	}
	return &GormRedemptionRepository{db: tx}
}

// Create 创建核销流水
func (r *GormRedemptionRepository) Create(redemption *models.Redemption) error {
	return r.db.Create(redemption).Error
}

// ListByCardID 按已购卡查询核销流水
func (r *GormRedemptionRepository) ListByCardID(cardID uint) ([]models.Redemption, error) {
	if cardID == 0 {
		return []models.Redemption{}, nil
	}
	var redemptions []models.Redemption
	if err := r.db.Where("purchased_gift_card_id = ?", cardID).
		Order("id ASC").
		Find(&redemptions).Error; err != nil {
		return nil, err
	}
	return redemptions, nil
}

// ListByMerchantID 按商户分页查询核销流水
func (r *GormRedemptionRepository) ListByMerchantID(merchantID uint, page, pageSize int) ([]models.Redemption, int64, error) {
	query := r.db.Model(&models.Redemption{}).Where("merchant_id = ?", merchantID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, page, pageSize)

	var redemptions []models.Redemption
	if err := query.Order("id DESC").Find(&redemptions).Error; err != nil {
		return nil, 0, err
	}
	return redemptions, total, nil
}
