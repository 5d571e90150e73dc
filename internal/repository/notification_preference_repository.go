package repository

import (
	"errors"

	"github.com/giftvault/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// NotificationPreferenceRepository 通知偏好数据访问接口
type NotificationPreferenceRepository interface {
	ListByUserID(userID uint) ([]models.NotificationPreference, error)
	Get(userID uint, event string) (*models.NotificationPreference, error)
	Upsert(pref *models.NotificationPreference) error
}

// GormNotificationPreferenceRepository GORM 实现
type GormNotificationPreferenceRepository struct {
	db *gorm.DB
}

// NewNotificationPreferenceRepository 创建通知偏好仓库
func NewNotificationPreferenceRepository(db *gorm.DB) *GormNotificationPreferenceRepository {
	return &GormNotificationPreferenceRepository{db: db}
}

// ListByUserID 查询用户全部偏好
func (r *GormNotificationPreferenceRepository) ListByUserID(userID uint) ([]models.NotificationPreference, error) {
	if userID == 0 {
		return []models.NotificationPreference{}, nil
	}
	var prefs []models.NotificationPreference
	if err := r.db.Where("user_id = ?", userID).Order("event ASC").Find(&prefs).Error; err != nil {
		return nil, err
	}
	return prefs, nil
}

// Get 查询单个事件偏好
func (r *GormNotificationPreferenceRepository) Get(userID uint, event string) (*models.NotificationPreference, error) {
	if userID == 0 || event == "" {
		return nil, nil
	}
	var pref models.NotificationPreference
	if err := r.db.Where("user_id = ? AND event = ?", userID, event).First(&pref).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &pref, nil
}

// Upsert 创建或更新偏好
func (r *GormNotificationPreferenceRepository) Upsert(pref *models.NotificationPreference) error {
	if pref == nil {
		return errors.New("invalid notification preference")
	}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "event"}},
		DoUpdates: clause.AssignmentColumns([]string{"email_enabled", "in_app_enabled", "updated_at"}),
	}).Create(pref).Error
}
