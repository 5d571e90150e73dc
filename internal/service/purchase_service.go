package service

import (
	crand "crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/giftvault/internal/constants"
	"github.com/giftvault/internal/logger"
	"github.com/giftvault/internal/models"
	"github.com/giftvault/internal/queue"
	"github.com/giftvault/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const qrCodePrefix = "GV"

// PurchaseService 购卡与核销服务
type PurchaseService struct {
	db              *gorm.DB
	cardRepo        repository.PurchasedGiftCardRepository
	templateRepo    repository.GiftCardRepository
	profileRepo     repository.MerchantProfileRepository
	redemptionRepo  repository.RedemptionRepository
	notificationSvc *NotificationService
	queueClient     *queue.Client
	emailService    *EmailService
}

// NewPurchaseService 创建购卡与核销服务
func NewPurchaseService(
	db *gorm.DB,
	cardRepo repository.PurchasedGiftCardRepository,
	templateRepo repository.GiftCardRepository,
	profileRepo repository.MerchantProfileRepository,
	redemptionRepo repository.RedemptionRepository,
	notificationSvc *NotificationService,
	queueClient *queue.Client,
	emailService *EmailService,
) *PurchaseService {
	return &PurchaseService{
		db:              db,
		cardRepo:        cardRepo,
		templateRepo:    templateRepo,
		profileRepo:     profileRepo,
		redemptionRepo:  redemptionRepo,
		notificationSvc: notificationSvc,
		queueClient:     queueClient,
		emailService:    emailService,
	}
}

// PurchaseInput 购卡参数
type PurchaseInput struct {
	GiftCardID     uint
	BuyerID        *uint
	RecipientName  string
	RecipientEmail string
	Message        string
}

// RedeemInput 核销参数
type RedeemInput struct {
	MerchantID uint
	QRCode     string
	Amount     models.Money
	Note       string
}

// RedeemResult 核销结果
type RedeemResult struct {
	Card       *models.PurchasedGiftCard `json:"card"`
	Redemption *models.Redemption        `json:"redemption"`
}

// Purchase 购买礼品卡
// 以模板面额生成唯一兑换码的已购卡实例，余额等于购买金额。
func (s *PurchaseService) Purchase(input PurchaseInput) (*models.PurchasedGiftCard, error) {
	template, err := s.templateRepo.GetByID(input.GiftCardID)
	if err != nil {
		return nil, err
	}
	if template == nil {
		return nil, ErrGiftCardNotFound
	}
	if !template.IsActive {
		return nil, ErrGiftCardInactive
	}
	if err := ensureMerchantSellable(s.profileRepo, template.MerchantID); err != nil {
		return nil, err
	}

	recipientEmail, err := normalizeEmail(input.RecipientEmail)
	if err != nil {
		return nil, err
	}

	code, err := generateQRCode()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	validityDays := template.ValidityDays
	if validityDays <= 0 {
		validityDays = 365
	}
	expiresAt := now.AddDate(0, 0, validityDays)

	card := &models.PurchasedGiftCard{
		GiftCardID:     template.ID,
		MerchantID:     template.MerchantID,
		BuyerID:        input.BuyerID,
		RecipientName:  strings.TrimSpace(input.RecipientName),
		RecipientEmail: recipientEmail,
		Message:        strings.TrimSpace(input.Message),
		QRCode:         code,
		PurchaseAmount: template.Price,
		CurrentBalance: template.Price,
		Status:         constants.PurchasedCardStatusActive,
		PaymentStatus:  constants.PaymentStatusPaid,
		ExpiresAt:      &expiresAt,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.cardRepo.Create(card); err != nil {
		return nil, err
	}
	card.GiftCard = template

	s.sendPurchaseEmail(card, template)
	if s.notificationSvc != nil {
		s.notificationSvc.Notify(NotificationInput{
			UserID: template.MerchantID,
			Event:  constants.NotificationEventCardPurchased,
			Title:  "礼品卡售出",
			Body:   fmt.Sprintf("「%s」售出一张，面额 %s %s。", template.Title, template.Price.String(), template.Currency),
		})
	}
	return card, nil
}

// Redeem 核销礼品卡
// 事务内行锁加条件扣减，并发核销同一张卡不会扣超余额。
func (s *PurchaseService) Redeem(input RedeemInput) (*RedeemResult, error) {
	if !input.Amount.IsPositive() {
		return nil, ErrInvalidRedeemAmount
	}
	code := strings.TrimSpace(strings.ToUpper(input.QRCode))
	if code == "" {
		return nil, ErrPurchasedCardNotFound
	}

	var result RedeemResult
	err := s.db.Transaction(func(tx *gorm.DB) error {
		cardRepo := s.cardRepo.WithTx(tx)
		card, err := cardRepo.GetByQRCodeForUpdate(code)
		if err != nil {
			return err
		}
		if card == nil {
			return ErrPurchasedCardNotFound
		}
		if card.MerchantID != input.MerchantID {
			return ErrForbidden
		}

		now := time.Now()
		switch card.Status {
		case constants.PurchasedCardStatusActive:
		case constants.PurchasedCardStatusFullyRedeemed:
			return ErrCardFullyRedeemed
		case constants.PurchasedCardStatusCancelled:
			return ErrCardCancelled
		case constants.PurchasedCardStatusExpired:
			return ErrCardExpired
		default:
			return ErrCardNotActive
		}
		if card.Expired(now) {
			if err := cardRepo.UpdateStatus(card.ID, constants.PurchasedCardStatusExpired); err != nil {
				return err
			}
			return ErrCardExpired
		}

		balanceBefore := card.CurrentBalance
		if input.Amount.GreaterThan(balanceBefore) {
			return ErrInsufficientBalance
		}

		affected, err := cardRepo.DecrementBalance(card.ID, input.Amount)
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrInsufficientBalance
		}

		balanceAfter := balanceBefore.Sub(input.Amount)
		redemption := &models.Redemption{
			PurchasedGiftCardID: card.ID,
			MerchantID:          input.MerchantID,
			Amount:              input.Amount,
			BalanceBefore:       balanceBefore,
			BalanceAfter:        balanceAfter,
			Note:                strings.TrimSpace(input.Note),
			CreatedAt:           now,
		}
		if err := s.redemptionRepo.WithTx(tx).Create(redemption); err != nil {
			return err
		}

		if balanceAfter.Equal(decimal.Zero) {
			if err := cardRepo.UpdateStatus(card.ID, constants.PurchasedCardStatusFullyRedeemed); err != nil {
				return err
			}
			card.Status = constants.PurchasedCardStatusFullyRedeemed
		}
		card.CurrentBalance = balanceAfter
		card.UpdatedAt = now

		result.Card = card
		result.Redemption = redemption
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.notificationSvc != nil && result.Card.BuyerID != nil {
		s.notificationSvc.Notify(NotificationInput{
			UserID: *result.Card.BuyerID,
			Event:  constants.NotificationEventCardRedeemed,
			Title:  "礼品卡已核销",
			Body: fmt.Sprintf("兑换码 %s 核销 %s，剩余余额 %s。",
				result.Card.QRCode, result.Redemption.Amount.String(), result.Card.CurrentBalance.String()),
		})
	}
	return &result, nil
}

// Cancel 作废已购卡
// 仅限尚无核销记录的卡片。
func (s *PurchaseService) Cancel(merchantID, cardID uint) (*models.PurchasedGiftCard, error) {
	card, err := s.cardRepo.GetByID(cardID)
	if err != nil {
		return nil, err
	}
	if card == nil {
		return nil, ErrPurchasedCardNotFound
	}
	if card.MerchantID != merchantID {
		return nil, ErrForbidden
	}
	switch card.Status {
	case constants.PurchasedCardStatusActive, constants.PurchasedCardStatusExpired:
	default:
		return nil, ErrCardNotActive
	}

	redemptions, err := s.redemptionRepo.ListByCardID(cardID)
	if err != nil {
		return nil, err
	}
	if len(redemptions) > 0 {
		return nil, ErrCardHasRedemptions
	}

	if err := s.cardRepo.UpdateStatus(cardID, constants.PurchasedCardStatusCancelled); err != nil {
		return nil, err
	}
	card.Status = constants.PurchasedCardStatusCancelled
	return card, nil
}

// GetByQRCode 按兑换码查询已购卡
// 过期未标记的卡片在读取时落库修正状态。
func (s *PurchaseService) GetByQRCode(code string) (*models.PurchasedGiftCard, error) {
	card, err := s.cardRepo.GetByQRCode(code)
	if err != nil {
		return nil, err
	}
	if card == nil {
		return nil, ErrPurchasedCardNotFound
	}
	s.reconcileExpiry(card)
	return card, nil
}

// GetByID 按 ID 查询已购卡
func (s *PurchaseService) GetByID(cardID uint) (*models.PurchasedGiftCard, error) {
	card, err := s.cardRepo.GetByID(cardID)
	if err != nil {
		return nil, err
	}
	if card == nil {
		return nil, ErrPurchasedCardNotFound
	}
	s.reconcileExpiry(card)
	return card, nil
}

// List 已购卡列表
func (s *PurchaseService) List(filter repository.PurchasedGiftCardListFilter) ([]models.PurchasedGiftCard, int64, error) {
	return s.cardRepo.List(filter)
}

// ListRedemptionsByCard 卡片核销流水
func (s *PurchaseService) ListRedemptionsByCard(cardID uint) ([]models.Redemption, error) {
	return s.redemptionRepo.ListByCardID(cardID)
}

// ListRedemptionsByMerchant 商户核销流水
func (s *PurchaseService) ListRedemptionsByMerchant(merchantID uint, page, pageSize int) ([]models.Redemption, int64, error) {
	return s.redemptionRepo.ListByMerchantID(merchantID, page, pageSize)
}

func (s *PurchaseService) reconcileExpiry(card *models.PurchasedGiftCard) {
	if card.Status != constants.PurchasedCardStatusActive || !card.Expired(time.Now()) {
		return
	}
	if err := s.cardRepo.UpdateStatus(card.ID, constants.PurchasedCardStatusExpired); err != nil {
		logger.Warnw("card_expiry_reconcile_failed", "card_id", card.ID, "error", err)
		return
	}
	card.Status = constants.PurchasedCardStatusExpired
}

// sendPurchaseEmail 给受赠人发送购卡确认邮件
// 经队列异步投递，队列不可用时同步发送，失败只记日志。
func (s *PurchaseService) sendPurchaseEmail(card *models.PurchasedGiftCard, template *models.GiftCard) {
	if s.emailService == nil || !s.emailService.Enabled() {
		return
	}
	subject, body := BuildPurchaseEmail(PurchaseEmailInput{
		RecipientName: card.RecipientName,
		CardTitle:     template.Title,
		QRCode:        card.QRCode,
		Amount:        card.PurchaseAmount,
		Currency:      template.Currency,
		Message:       card.Message,
	})

	if s.queueClient != nil && s.queueClient.Enabled() {
		err := s.queueClient.EnqueueEmailSend(queue.EmailSendPayload{
			To:      card.RecipientEmail,
			Subject: subject,
			Body:    body,
		})
		if err != nil {
			logger.Warnw("purchase_email_enqueue_failed", "card_id", card.ID, "error", err)
		}
		return
	}
	if err := s.emailService.SendCustomEmail(card.RecipientEmail, subject, body); err != nil {
		logger.Warnw("purchase_email_send_failed", "card_id", card.ID, "error", err)
	}
}

// generateQRCode 生成唯一兑换码
func generateQRCode() (string, error) {
	buf := make([]byte, 8)
	if _, err := crand.Read(buf); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%d%s", qrCodePrefix, time.Now().UnixNano()/1e6, strings.ToUpper(hex.EncodeToString(buf))), nil
}
