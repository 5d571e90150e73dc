package models

import "time"

// Redemption 核销流水
// 说明：不可变台账，balance_after = balance_before - amount，
// 且等于核销时刻卡片的实际余额。
type Redemption struct {
	ID                  uint               `gorm:"primarykey" json:"id"`                              // 主键
	PurchasedGiftCardID uint               `gorm:"index;not null" json:"purchased_gift_card_id"`      // 已购卡ID
	MerchantID          uint               `gorm:"index;not null" json:"merchant_id"`                 // 核销商户用户ID
	Amount              Money              `gorm:"type:decimal(20,2);not null" json:"amount"`         // 核销金额
	BalanceBefore       Money              `gorm:"type:decimal(20,2);not null" json:"balance_before"` // 核销前余额
	BalanceAfter        Money              `gorm:"type:decimal(20,2);not null" json:"balance_after"`  // 核销后余额
	Note                string             `gorm:"type:varchar(255);default:''" json:"note"`          // 备注
	CreatedAt           time.Time          `gorm:"index" json:"created_at"`                           // 核销时间
	PurchasedGiftCard   *PurchasedGiftCard `gorm:"foreignKey:PurchasedGiftCardID" json:"-"`           // 已购卡
}

// TableName 指定表名
func (Redemption) TableName() string {
	return "redemptions"
}
