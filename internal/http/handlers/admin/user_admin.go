package admin

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/giftvault/internal/constants"
	"github.com/giftvault/internal/http/handlers/shared"
	"github.com/giftvault/internal/http/response"
	"github.com/giftvault/internal/repository"
	"github.com/giftvault/internal/service"

	"github.com/gin-gonic/gin"
)

// UpdateUserStatusRequest 更新用户状态请求
type UpdateUserStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// ListUsers 用户列表
func (h *Handler) ListUsers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = shared.NormalizePagination(page, pageSize)

	users, total, err := h.AuthService.ListUsers(repository.UserListFilter{
		Page:     page,
		PageSize: pageSize,
		Keyword:  c.Query("keyword"),
		Role:     c.Query("role"),
		Status:   c.Query("status"),
	})
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取用户列表失败", err)
		return
	}
	response.SuccessWithPage(c, users, response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: shared.TotalPages(total, pageSize),
	})
}

// UpdateUserStatus 启用或禁用用户
func (h *Handler) UpdateUserStatus(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	userID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || userID == 0 {
		respondError(c, http.StatusBadRequest, "用户ID无效", nil)
		return
	}
	if uint(userID) == adminID {
		respondError(c, http.StatusBadRequest, "不能修改自己的账号状态", nil)
		return
	}
	var req UpdateUserStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	user, uerr := h.AuthService.SetUserStatus(uint(userID), req.Status)
	if uerr != nil {
		switch {
		case errors.Is(uerr, service.ErrNotFound):
			response.NotFound(c, "用户不存在")
		case errors.Is(uerr, service.ErrInvalidUserStatus):
			respondError(c, http.StatusBadRequest, uerr.Error(), nil)
		default:
			respondError(c, http.StatusInternalServerError, "更新用户状态失败", uerr)
		}
		return
	}

	action := constants.ActivityUserEnable
	if req.Status == constants.UserStatusDisabled {
		action = constants.ActivityUserDisable
	}
	h.recordAdminActivity(c, adminID, action, user.Email)
	response.Success(c, user)
}
