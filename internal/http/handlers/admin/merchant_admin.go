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

// RejectMerchantRequest 驳回商户请求
type RejectMerchantRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// ListMerchants 商户资料列表
func (h *Handler) ListMerchants(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = shared.NormalizePagination(page, pageSize)

	profiles, total, err := h.MerchantService.List(repository.MerchantProfileListFilter{
		Page:          page,
		PageSize:      pageSize,
		ProfileStatus: c.Query("status"),
		Keyword:       c.Query("keyword"),
	})
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取商户列表失败", err)
		return
	}
	response.SuccessWithPage(c, profiles, response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: shared.TotalPages(total, pageSize),
	})
}

// GetMerchant 商户资料详情
func (h *Handler) GetMerchant(c *gin.Context) {
	profileID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || profileID == 0 {
		respondError(c, http.StatusBadRequest, "商户ID无效", nil)
		return
	}
	profile, gerr := h.MerchantService.GetByID(uint(profileID))
	if gerr != nil {
		if errors.Is(gerr, service.ErrMerchantProfileNotFound) {
			response.NotFound(c, gerr.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, "获取商户资料失败", gerr)
		return
	}
	response.Success(c, profile)
}

// VerifyMerchant 审核通过商户
func (h *Handler) VerifyMerchant(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	profileID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || profileID == 0 {
		respondError(c, http.StatusBadRequest, "商户ID无效", nil)
		return
	}

	profile, verr := h.MerchantService.Verify(uint(profileID), adminID)
	if verr != nil {
		switch {
		case errors.Is(verr, service.ErrMerchantProfileNotFound):
			response.NotFound(c, verr.Error())
		case errors.Is(verr, service.ErrInvalidProfileTransition):
			response.BadRequest(c, verr.Error())
		default:
			respondError(c, http.StatusInternalServerError, "商户审核失败", verr)
		}
		return
	}

	h.recordAdminActivity(c, adminID, constants.ActivityMerchantVerify, profile.BusinessName)
	response.Success(c, profile)
}

// RejectMerchant 驳回商户审核
func (h *Handler) RejectMerchant(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	profileID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || profileID == 0 {
		respondError(c, http.StatusBadRequest, "商户ID无效", nil)
		return
	}
	var req RejectMerchantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, service.ErrRejectionReasonRequired.Error(), err)
		return
	}

	profile, rerr := h.MerchantService.Reject(uint(profileID), adminID, req.Reason)
	if rerr != nil {
		switch {
		case errors.Is(rerr, service.ErrMerchantProfileNotFound):
			response.NotFound(c, rerr.Error())
		case errors.Is(rerr, service.ErrInvalidProfileTransition):
			response.BadRequest(c, rerr.Error())
		case errors.Is(rerr, service.ErrRejectionReasonRequired):
			respondError(c, http.StatusBadRequest, rerr.Error(), nil)
		default:
			respondError(c, http.StatusInternalServerError, "商户驳回失败", rerr)
		}
		return
	}

	h.recordAdminActivity(c, adminID, constants.ActivityMerchantReject, profile.BusinessName)
	response.Success(c, profile)
}

// DeleteMerchant 删除商户并禁用其账号
func (h *Handler) DeleteMerchant(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	profileID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || profileID == 0 {
		respondError(c, http.StatusBadRequest, "商户ID无效", nil)
		return
	}

	if derr := h.MerchantService.Delete(uint(profileID)); derr != nil {
		if errors.Is(derr, service.ErrMerchantProfileNotFound) {
			response.NotFound(c, derr.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, "删除商户失败", derr)
		return
	}

	h.recordAdminActivity(c, adminID, constants.ActivityMerchantDelete, c.Param("id"))
	response.SuccessWithMsg(c, "商户已删除", nil)
}
