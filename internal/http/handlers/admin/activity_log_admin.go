package admin

import (
	"net/http"
	"strconv"
	"time"

	"github.com/giftvault/internal/http/handlers/shared"
	"github.com/giftvault/internal/http/response"
	"github.com/giftvault/internal/repository"
	"github.com/giftvault/internal/service"

	"github.com/gin-gonic/gin"
)

// ListActivityLogs 全站活动日志列表
func (h *Handler) ListActivityLogs(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = shared.NormalizePagination(page, pageSize)

	filter := repository.ActivityLogListFilter{
		Page:     page,
		PageSize: pageSize,
		Action:   c.Query("action"),
		ClientIP: c.Query("client_ip"),
	}
	if raw := c.Query("user_id"); raw != "" {
		if userID, err := strconv.ParseUint(raw, 10, 64); err == nil {
			filter.UserID = uint(userID)
		}
	}
	if raw := c.Query("created_from"); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			filter.CreatedFrom = &t
		}
	}
	if raw := c.Query("created_to"); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			filter.CreatedTo = &t
		}
	}

	logs, total, err := h.ActivityLogService.ListForAdmin(filter)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取活动日志失败", err)
		return
	}
	response.SuccessWithPage(c, logs, response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: shared.TotalPages(total, pageSize),
	})
}

func (h *Handler) recordAdminActivity(c *gin.Context, adminID uint, action, detail string) {
	if h.ActivityLogService == nil {
		return
	}
	requestID := ""
	if value, ok := c.Get("request_id"); ok {
		if id, ok := value.(string); ok {
			requestID = id
		}
	}
	h.ActivityLogService.Record(service.RecordActivityInput{
		UserID:    adminID,
		Action:    action,
		Detail:    detail,
		ClientIP:  c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
		RequestID: requestID,
	})
}
