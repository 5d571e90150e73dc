package service

import (
	"strings"
	"time"

	"github.com/giftvault/internal/logger"
	"github.com/giftvault/internal/models"
	"github.com/giftvault/internal/repository"
)

// ActivityLogService 操作日志服务
type ActivityLogService struct {
	repo repository.ActivityLogRepository
}

// NewActivityLogService 创建操作日志服务
func NewActivityLogService(repo repository.ActivityLogRepository) *ActivityLogService {
	return &ActivityLogService{repo: repo}
}

// RecordActivityInput 操作日志记录输入
type RecordActivityInput struct {
	UserID    uint
	Action    string
	Detail    string
	ClientIP  string
	UserAgent string
	RequestID string
}

// Record 记录操作行为
// 日志写入失败不影响主流程，只记告警。
func (s *ActivityLogService) Record(input RecordActivityInput) {
	if s == nil || s.repo == nil {
		return
	}
	action := strings.ToLower(strings.TrimSpace(input.Action))
	if action == "" {
		return
	}

	err := s.repo.Create(&models.ActivityLog{
		UserID:    input.UserID,
		Action:    action,
		Detail:    strings.TrimSpace(input.Detail),
		ClientIP:  strings.TrimSpace(input.ClientIP),
		UserAgent: strings.TrimSpace(input.UserAgent),
		RequestID: strings.TrimSpace(input.RequestID),
		CreatedAt: time.Now(),
	})
	if err != nil {
		logger.Warnw("activity_log_record_failed", "action", action, "user_id", input.UserID, "error", err)
	}
}

// ListForAdmin 管理端查询操作日志
func (s *ActivityLogService) ListForAdmin(filter repository.ActivityLogListFilter) ([]models.ActivityLog, int64, error) {
	if s == nil || s.repo == nil {
		return []models.ActivityLog{}, 0, nil
	}
	return s.repo.List(filter)
}

// ListByUser 用户侧查询自己的操作日志
func (s *ActivityLogService) ListByUser(userID uint, page, pageSize int) ([]models.ActivityLog, int64, error) {
	if s == nil || s.repo == nil || userID == 0 {
		return []models.ActivityLog{}, 0, nil
	}
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return s.repo.List(repository.ActivityLogListFilter{
		UserID:   userID,
		Page:     page,
		PageSize: pageSize,
	})
}
