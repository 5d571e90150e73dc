package service

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/giftvault/internal/cache"
	"github.com/giftvault/internal/constants"
	"github.com/giftvault/internal/logger"
	"github.com/giftvault/internal/models"
	"github.com/giftvault/internal/queue"
	"github.com/giftvault/internal/repository"
)

// NotificationInput 通知事件参数
type NotificationInput struct {
	UserID       uint
	Event        string
	Title        string
	Body         string
	EmailSubject string
	EmailBody    string
}

// NotificationService 通知服务
// 站内信落库，邮件经队列异步投递。
type NotificationService struct {
	notificationRepo repository.NotificationRepository
	preferenceRepo   repository.NotificationPreferenceRepository
	userRepo         repository.UserRepository
	emailService     *EmailService
	queueClient      *queue.Client
}

// NewNotificationService 创建通知服务
func NewNotificationService(
	notificationRepo repository.NotificationRepository,
	preferenceRepo repository.NotificationPreferenceRepository,
	userRepo repository.UserRepository,
	emailService *EmailService,
	queueClient *queue.Client,
) *NotificationService {
	return &NotificationService{
		notificationRepo: notificationRepo,
		preferenceRepo:   preferenceRepo,
		userRepo:         userRepo,
		emailService:     emailService,
		queueClient:      queueClient,
	}
}

// Notify 入队通知任务
// 队列不可用时降级为同步分发，失败只记日志不影响主流程。
func (s *NotificationService) Notify(input NotificationInput) {
	if s == nil || input.UserID == 0 {
		return
	}
	event := strings.ToLower(strings.TrimSpace(input.Event))
	if !isNotificationEventSupported(event) {
		logger.Warnw("notification_event_unsupported", "event", input.Event, "user_id", input.UserID)
		return
	}

	payload := queue.NotificationDispatchPayload{
		UserID:       input.UserID,
		Event:        event,
		Title:        strings.TrimSpace(input.Title),
		Body:         strings.TrimSpace(input.Body),
		EmailSubject: strings.TrimSpace(input.EmailSubject),
		EmailBody:    strings.TrimSpace(input.EmailBody),
	}

	if s.queueClient != nil && s.queueClient.Enabled() {
		if err := s.queueClient.EnqueueNotificationDispatch(payload); err != nil {
			logger.Warnw("notification_enqueue_failed", "event", event, "user_id", input.UserID, "error", err)
		}
		return
	}

	if err := s.Dispatch(context.Background(), payload); err != nil {
		logger.Warnw("notification_dispatch_failed", "event", event, "user_id", input.UserID, "error", err)
	}
}

// Dispatch 处理通知分发任务
// 站内信写入带去重保护，邮件失败返回错误交由队列重试。
func (s *NotificationService) Dispatch(ctx context.Context, payload queue.NotificationDispatchPayload) error {
	if s == nil || payload.UserID == 0 {
		return nil
	}
	event := strings.ToLower(strings.TrimSpace(payload.Event))
	if !isNotificationEventSupported(event) {
		return nil
	}

	user, err := s.userRepo.GetByID(payload.UserID)
	if err != nil {
		return err
	}
	if user == nil {
		logger.Debugw("notification_user_missing", "user_id", payload.UserID, "event", event)
		return nil
	}

	pref, err := s.resolvePreference(payload.UserID, event)
	if err != nil {
		return err
	}

	if pref.InAppEnabled {
		if err := s.createInAppOnce(ctx, payload, event); err != nil {
			return err
		}
	}

	if pref.EmailEnabled && s.emailService != nil && s.emailService.Enabled() {
		subject := payload.EmailSubject
		if subject == "" {
			subject = payload.Title
		}
		body := payload.EmailBody
		if body == "" {
			body = payload.Body
		}
		if err := s.emailService.SendCustomEmail(user.Email, subject, body); err != nil {
			logger.Warnw("notification_email_send_failed",
				"event", event,
				"user_id", payload.UserID,
				"error", err,
			)
			return fmt.Errorf("通知邮件发送失败: %w", err)
		}
	}
	return nil
}

// createInAppOnce 写入站内信，按载荷签名去重避免队列重试产生重复记录
func (s *NotificationService) createInAppOnce(ctx context.Context, payload queue.NotificationDispatchPayload, event string) error {
	acquired, err := cache.SetNX(ctx, buildNotificationDedupeKey(payload), "1", 24*time.Hour)
	if err != nil {
		logger.Warnw("notification_dedupe_failed", "event", event, "user_id", payload.UserID, "error", err)
	}
	if err == nil && !acquired {
		return nil
	}
	return s.notificationRepo.Create(&models.Notification{
		UserID: payload.UserID,
		Event:  event,
		Title:  payload.Title,
		Body:   payload.Body,
	})
}

func (s *NotificationService) resolvePreference(userID uint, event string) (*models.NotificationPreference, error) {
	pref, err := s.preferenceRepo.Get(userID, event)
	if err != nil {
		return nil, err
	}
	if pref == nil {
		return &models.NotificationPreference{
			UserID:       userID,
			Event:        event,
			EmailEnabled: true,
			InAppEnabled: true,
		}, nil
	}
	return pref, nil
}

// List 通知列表
func (s *NotificationService) List(userID uint, onlyUnread bool, page, pageSize int) ([]models.Notification, int64, error) {
	return s.notificationRepo.List(repository.NotificationListFilter{
		UserID:     userID,
		OnlyUnread: onlyUnread,
		Page:       page,
		PageSize:   pageSize,
	})
}

// CountUnread 未读通知数
func (s *NotificationService) CountUnread(userID uint) (int64, error) {
	return s.notificationRepo.CountUnread(userID)
}

// MarkRead 标记已读
func (s *NotificationService) MarkRead(userID, notificationID uint) error {
	affected, err := s.notificationRepo.MarkRead(notificationID, userID, time.Now())
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkAllRead 全部标记已读
func (s *NotificationService) MarkAllRead(userID uint) error {
	return s.notificationRepo.MarkAllRead(userID, time.Now())
}

// ListPreferences 通知偏好列表，补齐缺省事件
func (s *NotificationService) ListPreferences(userID uint) ([]models.NotificationPreference, error) {
	stored, err := s.preferenceRepo.ListByUserID(userID)
	if err != nil {
		return nil, err
	}
	byEvent := make(map[string]models.NotificationPreference, len(stored))
	for _, pref := range stored {
		byEvent[pref.Event] = pref
	}

	result := make([]models.NotificationPreference, 0, len(supportedNotificationEvents))
	for _, event := range supportedNotificationEvents {
		if pref, ok := byEvent[event]; ok {
			result = append(result, pref)
			continue
		}
		result = append(result, models.NotificationPreference{
			UserID:       userID,
			Event:        event,
			EmailEnabled: true,
			InAppEnabled: true,
		})
	}
	return result, nil
}

// UpdatePreference 更新通知偏好
func (s *NotificationService) UpdatePreference(userID uint, event string, emailEnabled, inAppEnabled bool) (*models.NotificationPreference, error) {
	event = strings.ToLower(strings.TrimSpace(event))
	if !isNotificationEventSupported(event) {
		return nil, ErrNotificationEventInvalid
	}
	pref := &models.NotificationPreference{
		UserID:       userID,
		Event:        event,
		EmailEnabled: emailEnabled,
		InAppEnabled: inAppEnabled,
	}
	if err := s.preferenceRepo.Upsert(pref); err != nil {
		return nil, err
	}
	return pref, nil
}

var supportedNotificationEvents = []string{
	constants.NotificationEventWelcome,
	constants.NotificationEventMerchantVerified,
	constants.NotificationEventMerchantRejected,
	constants.NotificationEventCardPurchased,
	constants.NotificationEventCardRedeemed,
	constants.NotificationEventPasswordReset,
}

func isNotificationEventSupported(event string) bool {
	for _, candidate := range supportedNotificationEvents {
		if candidate == strings.ToLower(strings.TrimSpace(event)) {
			return true
		}
	}
	return false
}

func buildNotificationDedupeKey(payload queue.NotificationDispatchPayload) string {
	signature := strings.Builder{}
	signature.WriteString(fmt.Sprintf("%d", payload.UserID))
	signature.WriteString("|")
	signature.WriteString(strings.ToLower(strings.TrimSpace(payload.Event)))
	signature.WriteString("|")
	signature.WriteString(strings.TrimSpace(payload.Title))
	signature.WriteString("|")
	signature.WriteString(strings.TrimSpace(payload.Body))
	hash := sha1.Sum([]byte(signature.String()))
	return "notification:dedupe:" + hex.EncodeToString(hash[:])
}
