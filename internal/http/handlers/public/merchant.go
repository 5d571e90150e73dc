package public

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/giftvault/internal/constants"
	"github.com/giftvault/internal/http/response"
	"github.com/giftvault/internal/service"

	"github.com/gin-gonic/gin"
)

// MerchantProfileRequest 商户资料请求
type MerchantProfileRequest struct {
	BusinessName  string `json:"business_name"`
	Phone         string `json:"phone"`
	Address       string `json:"address"`
	Description   string `json:"description"`
	LogoURL       string `json:"logo_url"`
	BankName      string `json:"bank_name"`
	AccountName   string `json:"account_name"`
	AccountNumber string `json:"account_number"`
}

func (r MerchantProfileRequest) toServiceInput() service.MerchantProfileInput {
	return service.MerchantProfileInput{
		BusinessName:  r.BusinessName,
		Phone:         r.Phone,
		Address:       r.Address,
		Description:   r.Description,
		LogoURL:       r.LogoURL,
		BankName:      r.BankName,
		AccountName:   r.AccountName,
		AccountNumber: r.AccountNumber,
	}
}

// GetMyMerchantProfile 查询当前商户资料
func (h *Handler) GetMyMerchantProfile(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	profile, err := h.MerchantService.GetByUserID(userID)
	if err != nil {
		if errors.Is(err, service.ErrMerchantProfileNotFound) {
			response.NotFound(c, err.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, "获取商户资料失败", err)
		return
	}
	response.Success(c, profile)
}

// SubmitMerchantProfile 提交商户资料进入审核
func (h *Handler) SubmitMerchantProfile(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	var req MerchantProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	profile, err := h.MerchantService.Submit(userID, req.toServiceInput())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMerchantProfileNotFound):
			response.NotFound(c, err.Error())
		case errors.Is(err, service.ErrProfileIncomplete):
			respondError(c, http.StatusBadRequest, err.Error(), nil)
		case errors.Is(err, service.ErrInvalidProfileTransition):
			response.BadRequest(c, err.Error())
		default:
			respondError(c, http.StatusInternalServerError, "商户资料提交失败", err)
		}
		return
	}

	h.recordActivity(c, userID, constants.ActivityProfileSubmit, profile.BusinessName)
	response.Success(c, profile)
}

// UpdateMerchantProfile 更新商户资料明细
func (h *Handler) UpdateMerchantProfile(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	var req MerchantProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	profile, err := h.MerchantService.UpdateProfile(userID, req.toServiceInput())
	if err != nil {
		if errors.Is(err, service.ErrMerchantProfileNotFound) {
			response.NotFound(c, err.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, "商户资料更新失败", err)
		return
	}
	response.Success(c, profile)
}

// GetMerchantProfile 查询指定商户公开资料
func (h *Handler) GetMerchantProfile(c *gin.Context) {
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
	if profile.ProfileStatus != constants.ProfileStatusVerified {
		response.NotFound(c, service.ErrMerchantProfileNotFound.Error())
		return
	}
	response.Success(c, profile)
}

// ListMerchantRedemptions 商户核销流水
func (h *Handler) ListMerchantRedemptions(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	redemptions, total, err := h.PurchaseService.ListRedemptionsByMerchant(userID, page, pageSize)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取核销流水失败", err)
		return
	}
	response.SuccessWithPage(c, redemptions, response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: totalPages(total, pageSize),
	})
}
