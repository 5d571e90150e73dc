package repository

import (
	"errors"
	"time"

	"github.com/giftvault/internal/models"

	"gorm.io/gorm"
)

// PasswordResetCodeRepository 密码重置验证码数据访问接口
type PasswordResetCodeRepository interface {
	Create(code *models.PasswordResetCode) error
	GetLatest(email string) (*models.PasswordResetCode, error)
	MarkUsed(id uint, usedAt time.Time) error
	IncrementAttempt(id uint) error
}

// GormPasswordResetCodeRepository GORM 实现
type GormPasswordResetCodeRepository struct {
	db *gorm.DB
}

// NewPasswordResetCodeRepository 创建密码重置验证码仓库
func NewPasswordResetCodeRepository(db *gorm.DB) *GormPasswordResetCodeRepository {
	return &GormPasswordResetCodeRepository{db: db}
}

// Create 创建验证码记录
func (r *GormPasswordResetCodeRepository) Create(code *models.PasswordResetCode) error {
	return r.db.Create(code).Error
}

// GetLatest 获取最新验证码记录
func (r *GormPasswordResetCodeRepository) GetLatest(email string) (*models.PasswordResetCode, error) {
	var record models.PasswordResetCode
	if err := r.db.Where("email = ?", email).
		Order("sent_at desc, id desc").
		First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// MarkUsed 标记验证码已使用
func (r *GormPasswordResetCodeRepository) MarkUsed(id uint, usedAt time.Time) error {
	return r.db.Model(&models.PasswordResetCode{}).
		Where("id = ?", id).
		Update("used_at", usedAt).Error
}

// IncrementAttempt 增加验证次数
func (r *GormPasswordResetCodeRepository) IncrementAttempt(id uint) error {
	return r.db.Model(&models.PasswordResetCode{}).
		Where("id = ?", id).
		UpdateColumn("attempt_count", gorm.Expr("attempt_count + 1")).Error
}
