package models

import (
	"time"

	"gorm.io/gorm"
)

// MerchantProfile 商户资料表
// 说明：与商户用户一对一，profile_status 为审核状态机
// incomplete -> pending_verification -> verified / rejected -> pending_verification（重新提交）。
type MerchantProfile struct {
	ID                uint           `gorm:"primarykey" json:"id"`                                     // 主键
	UserID            uint           `gorm:"uniqueIndex;not null" json:"user_id"`                      // 商户用户ID
	BusinessName      string         `gorm:"type:varchar(160);default:''" json:"business_name"`        // 商户名称
	BusinessPhone     string         `gorm:"type:varchar(32);default:''" json:"business_phone"`        // 联系电话
	BusinessAddress   string         `gorm:"type:text" json:"business_address"`                        // 经营地址
	Description       string         `gorm:"type:text" json:"description"`                             // 商户简介
	LogoURL           string         `gorm:"type:varchar(500);default:''" json:"logo_url"`             // Logo 地址
	BankName          string         `gorm:"type:varchar(120);default:''" json:"bank_name"`            // 开户银行
	BankAccountName   string         `gorm:"type:varchar(120);default:''" json:"bank_account_name"`    // 账户名
	BankAccountNumber string         `gorm:"type:varchar(64);default:''" json:"bank_account_number"`   // 银行账号
	ProfileStatus     string         `gorm:"type:varchar(32);index;default:'incomplete'" json:"profile_status"` // 审核状态
	RejectionReason   string         `gorm:"type:text" json:"rejection_reason"`                        // 驳回原因
	SubmittedAt       *time.Time     `gorm:"index" json:"submitted_at"`                                // 提交审核时间
	VerifiedAt        *time.Time     `gorm:"index" json:"verified_at"`                                 // 审核通过时间
	VerifiedBy        *uint          `gorm:"index" json:"verified_by,omitempty"`                       // 审核管理员ID
	CreatedAt         time.Time      `gorm:"index" json:"created_at"`                                  // 创建时间
	UpdatedAt         time.Time      `gorm:"index" json:"updated_at"`                                  // 更新时间
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`                                           // 软删除时间
	User              *User          `gorm:"foreignKey:UserID" json:"user,omitempty"`                  // 商户用户
}

// TableName 指定表名
func (MerchantProfile) TableName() string {
	return "merchant_profiles"
}
