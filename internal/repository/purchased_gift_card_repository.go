package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/giftvault/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PurchasedGiftCardRepository 已购礼品卡数据访问接口
type PurchasedGiftCardRepository interface {
	Create(card *models.PurchasedGiftCard) error
	Update(card *models.PurchasedGiftCard) error
	GetByID(id uint) (*models.PurchasedGiftCard, error)
	GetByQRCode(code string) (*models.PurchasedGiftCard, error)
	GetByQRCodeForUpdate(code string) (*models.PurchasedGiftCard, error)
	DecrementBalance(id uint, amount models.Money) (int64, error)
	UpdateStatus(id uint, status string) error
	List(filter PurchasedGiftCardListFilter) ([]models.PurchasedGiftCard, int64, error)
	WithTx(tx *gorm.DB) *GormPurchasedGiftCardRepository
}

// GormPurchasedGiftCardRepository GORM 实现
type GormPurchasedGiftCardRepository struct {
	db *gorm.DB
}

// NewPurchasedGiftCardRepository 创建已购礼品卡仓库
func NewPurchasedGiftCardRepository(db *gorm.DB) *GormPurchasedGiftCardRepository {
	return &GormPurchasedGiftCardRepository{db: db}
}

// WithTx 绑定事务
func (r *GormPurchasedGiftCardRepository) WithTx(tx *gorm.DB) *GormPurchasedGiftCardRepository {
	if tx == nil {
		return r
	}
	return &GormPurchasedGiftCardRepository{db: tx}
}

// Create 创建已购卡
func (r *GormPurchasedGiftCardRepository) Create(card *models.PurchasedGiftCard) error {
	if card == nil {
		return errors.New("invalid purchased gift card")
	}
	return r.db.Create(card).Error
}

// Update 更新已购卡
func (r *GormPurchasedGiftCardRepository) Update(card *models.PurchasedGiftCard) error {
	if card == nil {
		return errors.New("invalid purchased gift card")
	}
	return r.db.Save(card).Error
}

// GetByID 根据 ID 查询已购卡
func (r *GormPurchasedGiftCardRepository) GetByID(id uint) (*models.PurchasedGiftCard, error) {
	if id == 0 {
		return nil, nil
	}
	var card models.PurchasedGiftCard
	if err := r.db.Preload("GiftCard").First(&card, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &card, nil
}

// GetByQRCode 根据兑换码查询已购卡
func (r *GormPurchasedGiftCardRepository) GetByQRCode(code string) (*models.PurchasedGiftCard, error) {
	code = strings.TrimSpace(strings.ToUpper(code))
	if code == "" {
		return nil, nil
	}
	var card models.PurchasedGiftCard
	if err := r.db.Preload("GiftCard").Where("qr_code = ?", code).First(&card).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &card, nil
}

// GetByQRCodeForUpdate 根据兑换码加锁查询已购卡
// sqlite 不支持行锁语法，依赖其库级写锁保证串行。
func (r *GormPurchasedGiftCardRepository) GetByQRCodeForUpdate(code string) (*models.PurchasedGiftCard, error) {
	code = strings.TrimSpace(strings.ToUpper(code))
	if code == "" {
		return nil, nil
	}
	query := r.db
	switch dbDialectName(r.db) {
	case "postgres", "postgresql":
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var card models.PurchasedGiftCard
	if err := query.
		Where("qr_code = ?", code).
		First(&card).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &card, nil
}

// DecrementBalance 条件扣减余额
// 余额不足时不修改任何行，返回受影响行数供调用方判断。
func (r *GormPurchasedGiftCardRepository) DecrementBalance(id uint, amount models.Money) (int64, error) {
	if id == 0 {
		return 0, nil
	}
	result := r.db.Model(&models.PurchasedGiftCard{}).
		Where("id = ? AND current_balance >= ?", id, amount).
		Updates(map[string]interface{}{
			"current_balance": gorm.Expr("current_balance - ?", amount),
			"updated_at":      time.Now(),
		})
	return result.RowsAffected, result.Error
}

// UpdateStatus 更新已购卡状态
func (r *GormPurchasedGiftCardRepository) UpdateStatus(id uint, status string) error {
	if id == 0 {
		return nil
	}
	return r.db.Model(&models.PurchasedGiftCard{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		}).Error
}

// List 查询已购卡列表
func (r *GormPurchasedGiftCardRepository) List(filter PurchasedGiftCardListFilter) ([]models.PurchasedGiftCard, int64, error) {
	query := r.db.Model(&models.PurchasedGiftCard{})

	if filter.BuyerID > 0 {
		query = query.Where("buyer_id = ?", filter.BuyerID)
	}
	if filter.MerchantID > 0 {
		query = query.Where("merchant_id = ?", filter.MerchantID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var cards []models.PurchasedGiftCard
	if err := query.Preload("GiftCard").Order("id DESC").Find(&cards).Error; err != nil {
		return nil, 0, err
	}
	return cards, total, nil
}
