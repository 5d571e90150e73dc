package repository

import (
	"errors"
	"time"

	"github.com/giftvault/internal/models"

	"gorm.io/gorm"
)

// RefreshTokenRepository 刷新令牌数据访问接口
type RefreshTokenRepository interface {
	Create(token *models.RefreshToken) error
	GetByTokenHash(tokenHash string) (*models.RefreshToken, error)
	Revoke(tokenHash string, revokedAt time.Time) (int64, error)
	RevokeAllByUserID(userID uint, revokedAt time.Time) error
	DeleteExpired(before time.Time) (int64, error)
	CountActiveByUserID(userID uint) (int64, error)
}

// GormRefreshTokenRepository GORM 实现
type GormRefreshTokenRepository struct {
	db *gorm.DB
}

// NewRefreshTokenRepository 创建刷新令牌仓库
func NewRefreshTokenRepository(db *gorm.DB) *GormRefreshTokenRepository {
	return &GormRefreshTokenRepository{db: db}
}

// Create 创建刷新令牌记录
func (r *GormRefreshTokenRepository) Create(token *models.RefreshToken) error {
	return r.db.Create(token).Error
}

// GetByTokenHash 按令牌哈希查询未撤销记录
func (r *GormRefreshTokenRepository) GetByTokenHash(tokenHash string) (*models.RefreshToken, error) {
	if tokenHash == "" {
		return nil, nil
	}
	var token models.RefreshToken
	if err := r.db.Where("token_hash = ? AND revoked_at IS NULL", tokenHash).
		First(&token).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &token, nil
}

// Revoke 撤销单个令牌
// 返回受影响行数，0 表示令牌已被撤销或不存在。
func (r *GormRefreshTokenRepository) Revoke(tokenHash string, revokedAt time.Time) (int64, error) {
	if tokenHash == "" {
		return 0, nil
	}
	result := r.db.Model(&models.RefreshToken{}).
		Where("token_hash = ? AND revoked_at IS NULL", tokenHash).
		Update("revoked_at", revokedAt)
	return result.RowsAffected, result.Error
}

// RevokeAllByUserID 撤销用户全部令牌
func (r *GormRefreshTokenRepository) RevokeAllByUserID(userID uint, revokedAt time.Time) error {
	if userID == 0 {
		return nil
	}
	return r.db.Model(&models.RefreshToken{}).
		Where("user_id = ? AND revoked_at IS NULL", userID).
		Update("revoked_at", revokedAt).Error
}

// DeleteExpired 清理过期令牌记录
func (r *GormRefreshTokenRepository) DeleteExpired(before time.Time) (int64, error) {
	result := r.db.Where("expires_at < ?", before).Delete(&models.RefreshToken{})
	return result.RowsAffected, result.Error
}

// CountActiveByUserID 统计用户有效令牌数
func (r *GormRefreshTokenRepository) CountActiveByUserID(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.RefreshToken{}).
		Where("user_id = ? AND revoked_at IS NULL AND expires_at > ?", userID, time.Now()).
		Count(&count).Error
	return count, err
}
