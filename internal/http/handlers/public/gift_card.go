package public

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/giftvault/internal/constants"
	"github.com/giftvault/internal/http/response"
	"github.com/giftvault/internal/models"
	"github.com/giftvault/internal/repository"
	"github.com/giftvault/internal/service"

	"github.com/gin-gonic/gin"
)

// GiftCardCreateRequest 创建礼品卡模板请求
type GiftCardCreateRequest struct {
	Title         string       `json:"title" binding:"required"`
	Description   string       `json:"description"`
	Price         models.Money `json:"price" binding:"required"`
	Currency      string       `json:"currency"`
	ValidityDays  int          `json:"validity_days"`
	ImageURL      string       `json:"image_url"`
	BrandColor    string       `json:"brand_color"`
	MessageHeader string       `json:"message_header"`
	MessageFooter string       `json:"message_footer"`
}

// GiftCardUpdateRequest 更新礼品卡模板请求
type GiftCardUpdateRequest struct {
	Title         *string       `json:"title"`
	Description   *string       `json:"description"`
	Price         *models.Money `json:"price"`
	Currency      *string       `json:"currency"`
	ValidityDays  *int          `json:"validity_days"`
	ImageURL      *string       `json:"image_url"`
	IsActive      *bool         `json:"is_active"`
	BrandColor    *string       `json:"brand_color"`
	MessageHeader *string       `json:"message_header"`
	MessageFooter *string       `json:"message_footer"`
}

// ListGiftCards 在售礼品卡列表
func (h *Handler) ListGiftCards(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	merchantID, _ := strconv.ParseUint(c.Query("merchant_id"), 10, 64)

	cards, total, err := h.GiftCardService.List(repository.GiftCardListFilter{
		MerchantID:   uint(merchantID),
		Keyword:      strings.TrimSpace(c.Query("keyword")),
		OnlyActive:   true,
		OnlySellable: true,
		Page:         page,
		PageSize:     pageSize,
	})
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取礼品卡列表失败", err)
		return
	}
	response.SuccessWithPage(c, cards, response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: totalPages(total, pageSize),
	})
}

// ListMyGiftCards 商户自己的礼品卡模板列表
func (h *Handler) ListMyGiftCards(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	cards, total, err := h.GiftCardService.List(repository.GiftCardListFilter{
		MerchantID: userID,
		Keyword:    strings.TrimSpace(c.Query("keyword")),
		Page:       page,
		PageSize:   pageSize,
	})
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取礼品卡列表失败", err)
		return
	}
	response.SuccessWithPage(c, cards, response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: totalPages(total, pageSize),
	})
}

// GetGiftCard 礼品卡模板详情
func (h *Handler) GetGiftCard(c *gin.Context) {
	cardID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || cardID == 0 {
		respondError(c, http.StatusBadRequest, "礼品卡ID无效", nil)
		return
	}

	card, gerr := h.GiftCardService.GetActiveByID(uint(cardID))
	if gerr != nil {
		switch {
		case errors.Is(gerr, service.ErrGiftCardNotFound):
			response.NotFound(c, gerr.Error())
		case errors.Is(gerr, service.ErrGiftCardInactive), errors.Is(gerr, service.ErrMerchantNotVerified):
			// 非在售模板仅对持有者商户可见
			owned, oerr := h.GiftCardService.GetByID(uint(cardID))
			if oerr == nil {
				if value, ok := c.Get("user_id"); ok {
					if ownerID, ok := value.(uint); ok && ownerID == owned.MerchantID {
						response.Success(c, owned)
						return
					}
				}
			}
			response.NotFound(c, service.ErrGiftCardNotFound.Error())
		default:
			respondError(c, http.StatusInternalServerError, "获取礼品卡失败", gerr)
		}
		return
	}
	response.Success(c, card)
}

// CreateGiftCard 创建礼品卡模板
func (h *Handler) CreateGiftCard(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	var req GiftCardCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	card, err := h.GiftCardService.Create(userID, service.GiftCardInput{
		Title:         req.Title,
		Description:   req.Description,
		Price:         req.Price,
		Currency:      req.Currency,
		ValidityDays:  req.ValidityDays,
		ImageURL:      req.ImageURL,
		BrandColor:    req.BrandColor,
		MessageHeader: req.MessageHeader,
		MessageFooter: req.MessageFooter,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrGiftCardTitleRequired), errors.Is(err, service.ErrInvalidCardPrice):
			respondError(c, http.StatusBadRequest, err.Error(), nil)
		default:
			respondError(c, http.StatusInternalServerError, "礼品卡创建失败", err)
		}
		return
	}

	h.recordActivity(c, userID, constants.ActivityGiftCardCreate, card.Title)
	response.Created(c, card)
}

// UpdateGiftCard 更新礼品卡模板
func (h *Handler) UpdateGiftCard(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	cardID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || cardID == 0 {
		respondError(c, http.StatusBadRequest, "礼品卡ID无效", nil)
		return
	}
	var req GiftCardUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	card, uerr := h.GiftCardService.Update(userID, uint(cardID), service.GiftCardUpdateInput{
		Title:         req.Title,
		Description:   req.Description,
		Price:         req.Price,
		Currency:      req.Currency,
		ValidityDays:  req.ValidityDays,
		ImageURL:      req.ImageURL,
		IsActive:      req.IsActive,
		BrandColor:    req.BrandColor,
		MessageHeader: req.MessageHeader,
		MessageFooter: req.MessageFooter,
	})
	if uerr != nil {
		switch {
		case errors.Is(uerr, service.ErrGiftCardNotFound):
			response.NotFound(c, uerr.Error())
		case errors.Is(uerr, service.ErrNotCardOwner):
			response.Forbidden(c, uerr.Error())
		case errors.Is(uerr, service.ErrInvalidCardPrice):
			respondError(c, http.StatusBadRequest, uerr.Error(), nil)
		default:
			respondError(c, http.StatusInternalServerError, "礼品卡更新失败", uerr)
		}
		return
	}

	h.recordActivity(c, userID, constants.ActivityGiftCardUpdate, card.Title)
	response.Success(c, card)
}

// DeleteGiftCard 删除礼品卡模板
func (h *Handler) DeleteGiftCard(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	cardID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || cardID == 0 {
		respondError(c, http.StatusBadRequest, "礼品卡ID无效", nil)
		return
	}

	if derr := h.GiftCardService.Delete(userID, uint(cardID)); derr != nil {
		switch {
		case errors.Is(derr, service.ErrGiftCardNotFound):
			response.NotFound(c, derr.Error())
		case errors.Is(derr, service.ErrNotCardOwner):
			response.Forbidden(c, derr.Error())
		default:
			respondError(c, http.StatusInternalServerError, "礼品卡删除失败", derr)
		}
		return
	}

	h.recordActivity(c, userID, constants.ActivityGiftCardDelete, c.Param("id"))
	response.SuccessWithMsg(c, "礼品卡已删除", nil)
}
