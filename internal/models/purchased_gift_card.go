package models

import (
	"time"

	"gorm.io/gorm"
)

// PurchasedGiftCard 已购礼品卡实例
// 不变量：0 <= current_balance <= purchase_amount；
// 余额恰好为 0 时状态为 fully_redeemed。
type PurchasedGiftCard struct {
	ID             uint           `gorm:"primarykey" json:"id"`                                           // 主键
	GiftCardID     uint           `gorm:"index;not null" json:"gift_card_id"`                             // 模板ID
	MerchantID     uint           `gorm:"index;not null" json:"merchant_id"`                              // 商户用户ID
	BuyerID        *uint          `gorm:"index" json:"buyer_id,omitempty"`                                // 购买用户ID（游客购买可为空）
	RecipientName  string         `gorm:"type:varchar(120);default:''" json:"recipient_name"`             // 受赠人姓名
	RecipientEmail string         `gorm:"type:varchar(255);index;not null" json:"recipient_email"`        // 受赠人邮箱
	Message        string         `gorm:"type:text" json:"message"`                                       // 赠言
	QRCode         string         `gorm:"type:varchar(80);uniqueIndex;not null" json:"qr_code"`           // 兑换码
	PurchaseAmount Money          `gorm:"type:decimal(20,2);not null" json:"purchase_amount"`             // 购买金额
	CurrentBalance Money          `gorm:"type:decimal(20,2);not null" json:"current_balance"`             // 当前余额
	Status         string         `gorm:"type:varchar(24);index;not null;default:'active'" json:"status"` // 状态
	PaymentStatus  string         `gorm:"type:varchar(24);index;default:'pending'" json:"payment_status"` // 支付状态
	ExpiresAt      *time.Time     `gorm:"index" json:"expires_at"`                                        // 过期时间
	CreatedAt      time.Time      `gorm:"index" json:"created_at"`                                        // 创建时间
	UpdatedAt      time.Time      `gorm:"index" json:"updated_at"`                                        // 更新时间
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`                                                 // 软删除时间
	GiftCard       *GiftCard      `gorm:"foreignKey:GiftCardID" json:"gift_card,omitempty"`               // 模板
}

// TableName 指定表名
func (PurchasedGiftCard) TableName() string {
	return "purchased_gift_cards"
}

// Expired 是否已过期
func (c *PurchasedGiftCard) Expired(now time.Time) bool {
	return c.ExpiresAt != nil && c.ExpiresAt.Before(now)
}
