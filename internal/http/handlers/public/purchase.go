package public

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/giftvault/internal/constants"
	"github.com/giftvault/internal/http/response"
	"github.com/giftvault/internal/models"
	"github.com/giftvault/internal/repository"
	"github.com/giftvault/internal/service"

	"github.com/gin-gonic/gin"
)

// PurchaseRequest 购买礼品卡请求
type PurchaseRequest struct {
	GiftCardID     uint   `json:"gift_card_id" binding:"required"`
	RecipientName  string `json:"recipient_name"`
	RecipientEmail string `json:"recipient_email" binding:"required"`
	Message        string `json:"message"`
}

// RedeemRequest 核销请求
type RedeemRequest struct {
	QRCode string       `json:"qr_code" binding:"required"`
	Amount models.Money `json:"amount" binding:"required"`
	Note   string       `json:"note"`
}

// CreatePurchase 购买礼品卡，未登录时以匿名买家下单
func (h *Handler) CreatePurchase(c *gin.Context) {
	var req PurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	var buyerID *uint
	if value, ok := c.Get("user_id"); ok {
		if id, ok := value.(uint); ok && id > 0 {
			buyerID = &id
		}
	}
	card, err := h.PurchaseService.Purchase(service.PurchaseInput{
		GiftCardID:     req.GiftCardID,
		BuyerID:        buyerID,
		RecipientName:  req.RecipientName,
		RecipientEmail: req.RecipientEmail,
		Message:        req.Message,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrGiftCardNotFound):
			response.NotFound(c, err.Error())
		case errors.Is(err, service.ErrGiftCardInactive),
			errors.Is(err, service.ErrMerchantNotVerified),
			errors.Is(err, service.ErrInvalidEmail):
			respondError(c, http.StatusBadRequest, err.Error(), nil)
		default:
			respondError(c, http.StatusInternalServerError, "礼品卡购买失败", err)
		}
		return
	}

	var actorID uint
	if buyerID != nil {
		actorID = *buyerID
	}
	h.recordActivity(c, actorID, constants.ActivityPurchaseCreate, card.QRCode)
	response.Created(c, card)
}

// ListMyPurchases 我的已购卡列表
func (h *Handler) ListMyPurchases(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	filter := repository.PurchasedGiftCardListFilter{
		Status:   c.Query("status"),
		Page:     page,
		PageSize: pageSize,
	}
	if getUserRole(c) == constants.RoleMerchant && c.Query("scope") == "sold" {
		filter.MerchantID = userID
	} else {
		filter.BuyerID = userID
	}

	cards, total, err := h.PurchaseService.List(filter)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取已购卡列表失败", err)
		return
	}
	response.SuccessWithPage(c, cards, response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: totalPages(total, pageSize),
	})
}

// GetPurchase 已购卡详情
func (h *Handler) GetPurchase(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	cardID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || cardID == 0 {
		respondError(c, http.StatusBadRequest, "已购卡ID无效", nil)
		return
	}

	card, gerr := h.PurchaseService.GetByID(uint(cardID))
	if gerr != nil {
		if errors.Is(gerr, service.ErrPurchasedCardNotFound) {
			response.NotFound(c, gerr.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, "获取已购卡失败", gerr)
		return
	}
	if !canViewPurchasedCard(card, userID, getUserRole(c)) {
		response.Forbidden(c, service.ErrForbidden.Error())
		return
	}
	response.Success(c, card)
}

// GetPurchaseByQRCode 按兑换码查询已购卡
func (h *Handler) GetPurchaseByQRCode(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	card, err := h.PurchaseService.GetByQRCode(c.Param("code"))
	if err != nil {
		if errors.Is(err, service.ErrPurchasedCardNotFound) {
			response.NotFound(c, err.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, "获取已购卡失败", err)
		return
	}
	if !canViewPurchasedCard(card, userID, getUserRole(c)) {
		response.Forbidden(c, service.ErrForbidden.Error())
		return
	}
	response.Success(c, card)
}

// Redeem 核销已购卡
func (h *Handler) Redeem(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	var req RedeemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	result, err := h.PurchaseService.Redeem(service.RedeemInput{
		MerchantID: userID,
		QRCode:     req.QRCode,
		Amount:     req.Amount,
		Note:       req.Note,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPurchasedCardNotFound):
			response.NotFound(c, err.Error())
		case errors.Is(err, service.ErrForbidden):
			response.Forbidden(c, service.ErrForbidden.Error())
		case errors.Is(err, service.ErrInvalidRedeemAmount),
			errors.Is(err, service.ErrInsufficientBalance),
			errors.Is(err, service.ErrCardFullyRedeemed),
			errors.Is(err, service.ErrCardExpired),
			errors.Is(err, service.ErrCardCancelled),
			errors.Is(err, service.ErrCardNotActive):
			respondError(c, http.StatusBadRequest, err.Error(), nil)
		default:
			respondError(c, http.StatusInternalServerError, "核销失败", err)
		}
		return
	}

	h.recordActivity(c, userID, constants.ActivityRedemption, result.Card.QRCode)
	response.Success(c, result)
}

// CancelPurchase 作废已购卡
func (h *Handler) CancelPurchase(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	cardID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || cardID == 0 {
		respondError(c, http.StatusBadRequest, "已购卡ID无效", nil)
		return
	}

	card, cerr := h.PurchaseService.Cancel(userID, uint(cardID))
	if cerr != nil {
		switch {
		case errors.Is(cerr, service.ErrPurchasedCardNotFound):
			response.NotFound(c, cerr.Error())
		case errors.Is(cerr, service.ErrForbidden):
			response.Forbidden(c, service.ErrForbidden.Error())
		case errors.Is(cerr, service.ErrCardHasRedemptions), errors.Is(cerr, service.ErrCardNotActive):
			response.BadRequest(c, cerr.Error())
		default:
			respondError(c, http.StatusInternalServerError, "作废失败", cerr)
		}
		return
	}

	h.recordActivity(c, userID, constants.ActivityPurchaseCancel, card.QRCode)
	response.Success(c, card)
}

// ListPurchaseRedemptions 已购卡的核销流水
func (h *Handler) ListPurchaseRedemptions(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	cardID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || cardID == 0 {
		respondError(c, http.StatusBadRequest, "已购卡ID无效", nil)
		return
	}

	card, gerr := h.PurchaseService.GetByID(uint(cardID))
	if gerr != nil {
		if errors.Is(gerr, service.ErrPurchasedCardNotFound) {
			response.NotFound(c, gerr.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, "获取已购卡失败", gerr)
		return
	}
	if !canViewPurchasedCard(card, userID, getUserRole(c)) {
		response.Forbidden(c, service.ErrForbidden.Error())
		return
	}

	redemptions, lerr := h.PurchaseService.ListRedemptionsByCard(card.ID)
	if lerr != nil {
		respondError(c, http.StatusInternalServerError, "获取核销流水失败", lerr)
		return
	}
	response.Success(c, redemptions)
}

// canViewPurchasedCard 购买者、售卡商户与管理员可见
func canViewPurchasedCard(card *models.PurchasedGiftCard, userID uint, role string) bool {
	if card == nil {
		return false
	}
	if role == constants.RoleAdmin {
		return true
	}
	if card.BuyerID != nil && *card.BuyerID == userID {
		return true
	}
	return card.MerchantID == userID
}
