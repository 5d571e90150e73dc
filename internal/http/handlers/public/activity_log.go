package public

import (
	"net/http"
	"strconv"

	"github.com/giftvault/internal/http/response"

	"github.com/gin-gonic/gin"
)

// ListMyActivityLogs 我的活动日志
func (h *Handler) ListMyActivityLogs(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	logs, total, err := h.ActivityLogService.ListByUser(userID, page, pageSize)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取活动日志失败", err)
		return
	}
	response.SuccessWithPage(c, logs, response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: totalPages(total, pageSize),
	})
}
