package models

import (
	"time"

	"gorm.io/gorm"
)

// GiftCard 礼品卡模板
// 说明：商户定义的可售卖模板，购买时生成 PurchasedGiftCard 实例。
type GiftCard struct {
	ID            uint           `gorm:"primarykey" json:"id"`                                    // 主键
	MerchantID    uint           `gorm:"index;not null" json:"merchant_id"`                       // 商户用户ID
	Title         string         `gorm:"type:varchar(160);not null" json:"title"`                 // 名称
	Description   string         `gorm:"type:text" json:"description"`                            // 描述
	Price         Money          `gorm:"type:decimal(20,2);not null" json:"price"`                // 售价（即面额）
	Currency      string         `gorm:"type:varchar(16);not null;default:'USD'" json:"currency"` // 币种
	ValidityDays  int            `gorm:"not null;default:365" json:"validity_days"`               // 有效期天数
	ImageURL      string         `gorm:"type:varchar(500);default:''" json:"image_url"`           // 卡面图片
	IsActive      bool           `gorm:"index;default:true" json:"is_active"`                     // 是否上架
	BrandColor    string         `gorm:"type:varchar(16);default:''" json:"brand_color"`          // 自定义品牌色
	MessageHeader string         `gorm:"type:varchar(200);default:''" json:"message_header"`      // 自定义赠言抬头
	MessageFooter string         `gorm:"type:varchar(200);default:''" json:"message_footer"`      // 自定义赠言落款
	CreatedAt     time.Time      `gorm:"index" json:"created_at"`                                 // 创建时间
	UpdatedAt     time.Time      `gorm:"index" json:"updated_at"`                                 // 更新时间
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`                                          // 软删除时间
	Merchant      *User          `gorm:"foreignKey:MerchantID" json:"merchant,omitempty"`         // 商户
}

// TableName 指定表名
func (GiftCard) TableName() string {
	return "gift_cards"
}
