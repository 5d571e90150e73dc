package repository

import (
	"github.com/giftvault/internal/models"

	"gorm.io/gorm"
)

// ActivityLogRepository 活动日志数据访问接口
type ActivityLogRepository interface {
	Create(log *models.ActivityLog) error
	List(filter ActivityLogListFilter) ([]models.ActivityLog, int64, error)
}

// GormActivityLogRepository GORM 实现
type GormActivityLogRepository struct {
	db *gorm.DB
}

// NewActivityLogRepository 创建活动日志仓库
func NewActivityLogRepository(db *gorm.DB) *GormActivityLogRepository {
	return &GormActivityLogRepository{db: db}
}

// Create 写入活动日志
func (r *GormActivityLogRepository) Create(log *models.ActivityLog) error {
	return r.db.Create(log).Error
}

// List 查询活动日志列表
func (r *GormActivityLogRepository) List(filter ActivityLogListFilter) ([]models.ActivityLog, int64, error) {
	query := r.db.Model(&models.ActivityLog{})

	if filter.UserID > 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.Action != "" {
		query = query.Where("action = ?", filter.Action)
	}
	if filter.ClientIP != "" {
		query = query.Where("client_ip = ?", filter.ClientIP)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var logs []models.ActivityLog
	if err := query.Order("id DESC").Find(&logs).Error; err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}
