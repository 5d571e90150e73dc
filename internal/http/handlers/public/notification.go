package public

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/giftvault/internal/http/response"
	"github.com/giftvault/internal/service"

	"github.com/gin-gonic/gin"
)

// UpdateNotificationPreferenceRequest 更新通知偏好请求
type UpdateNotificationPreferenceRequest struct {
	Event        string `json:"event" binding:"required"`
	EmailEnabled *bool  `json:"email_enabled" binding:"required"`
	InAppEnabled *bool  `json:"in_app_enabled" binding:"required"`
}

// ListNotifications 站内通知列表
func (h *Handler) ListNotifications(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)
	onlyUnread := c.Query("only_unread") == "true"

	notifications, total, err := h.NotificationService.List(userID, onlyUnread, page, pageSize)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取通知列表失败", err)
		return
	}
	response.SuccessWithPage(c, notifications, response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: totalPages(total, pageSize),
	})
}

// CountUnreadNotifications 未读通知数
func (h *Handler) CountUnreadNotifications(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	count, err := h.NotificationService.CountUnread(userID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取未读数失败", err)
		return
	}
	response.Success(c, gin.H{"unread": count})
}

// MarkNotificationRead 标记通知已读
func (h *Handler) MarkNotificationRead(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	notificationID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || notificationID == 0 {
		respondError(c, http.StatusBadRequest, "通知ID无效", nil)
		return
	}
	if merr := h.NotificationService.MarkRead(userID, uint(notificationID)); merr != nil {
		if errors.Is(merr, service.ErrNotFound) {
			response.NotFound(c, "通知不存在")
			return
		}
		respondError(c, http.StatusInternalServerError, "标记已读失败", merr)
		return
	}
	response.SuccessWithMsg(c, "已标记为已读", nil)
}

// MarkAllNotificationsRead 全部标记已读
func (h *Handler) MarkAllNotificationsRead(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	if err := h.NotificationService.MarkAllRead(userID); err != nil {
		respondError(c, http.StatusInternalServerError, "标记已读失败", err)
		return
	}
	response.SuccessWithMsg(c, "已全部标记为已读", nil)
}

// ListNotificationPreferences 通知偏好列表
func (h *Handler) ListNotificationPreferences(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	preferences, err := h.NotificationService.ListPreferences(userID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取通知偏好失败", err)
		return
	}
	response.Success(c, preferences)
}

// UpdateNotificationPreference 更新通知偏好
func (h *Handler) UpdateNotificationPreference(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	var req UpdateNotificationPreferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	preference, err := h.NotificationService.UpdatePreference(userID, req.Event, *req.EmailEnabled, *req.InAppEnabled)
	if err != nil {
		if errors.Is(err, service.ErrNotificationEventInvalid) {
			respondError(c, http.StatusBadRequest, err.Error(), nil)
			return
		}
		respondError(c, http.StatusInternalServerError, "更新通知偏好失败", err)
		return
	}
	response.Success(c, preference)
}
