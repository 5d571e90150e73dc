package repository

import (
	"errors"

	"github.com/giftvault/internal/models"

	"gorm.io/gorm"
)

// MerchantProfileRepository 商户资料数据访问接口
type MerchantProfileRepository interface {
	Create(profile *models.MerchantProfile) error
	Update(profile *models.MerchantProfile) error
	GetByUserID(userID uint) (*models.MerchantProfile, error)
	GetByID(id uint) (*models.MerchantProfile, error)
	List(filter MerchantProfileListFilter) ([]models.MerchantProfile, int64, error)
	Delete(id uint) error
}

// GormMerchantProfileRepository GORM 实现
type GormMerchantProfileRepository struct {
	db *gorm.DB
}

// NewMerchantProfileRepository 创建商户资料仓库
func NewMerchantProfileRepository(db *gorm.DB) *GormMerchantProfileRepository {
	return &GormMerchantProfileRepository{db: db}
}

// Create 创建商户资料
func (r *GormMerchantProfileRepository) Create(profile *models.MerchantProfile) error {
	return r.db.Create(profile).Error
}

// Update 更新商户资料
func (r *GormMerchantProfileRepository) Update(profile *models.MerchantProfile) error {
	return r.db.Save(profile).Error
}

// GetByUserID 按商户用户ID获取资料
func (r *GormMerchantProfileRepository) GetByUserID(userID uint) (*models.MerchantProfile, error) {
	if userID == 0 {
		return nil, nil
	}
	var profile models.MerchantProfile
	if err := r.db.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

// GetByID 按主键获取资料
func (r *GormMerchantProfileRepository) GetByID(id uint) (*models.MerchantProfile, error) {
	var profile models.MerchantProfile
	if err := r.db.Preload("User").First(&profile, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

// List 商户资料列表
func (r *GormMerchantProfileRepository) List(filter MerchantProfileListFilter) ([]models.MerchantProfile, int64, error) {
	query := r.db.Model(&models.MerchantProfile{})

	if filter.ProfileStatus != "" {
		query = query.Where("profile_status = ?", filter.ProfileStatus)
	}
	if filter.Keyword != "" {
		condition, argCount := buildKeywordCondition(r.db, []string{"business_name", "business_phone"})
		query = query.Where(condition, repeatLikeArgs("%"+filter.Keyword+"%", argCount)...)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var profiles []models.MerchantProfile
	if err := query.Preload("User").Order("id DESC").Find(&profiles).Error; err != nil {
		return nil, 0, err
	}
	return profiles, total, nil
}

// Delete 软删除商户资料
func (r *GormMerchantProfileRepository) Delete(id uint) error {
	return r.db.Delete(&models.MerchantProfile{}, id).Error
}
