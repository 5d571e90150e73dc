package models

import (
	"time"

	"gorm.io/gorm"
)

// PasswordResetCode 密码重置验证码记录
type PasswordResetCode struct {
	ID           uint           `gorm:"primarykey" json:"id"`           // 主键
	Email        string         `gorm:"index;not null" json:"email"`    // 邮箱
	UserID       *uint          `gorm:"index" json:"user_id"`           // 关联用户ID
	Code         string         `gorm:"not null" json:"-"`              // 验证码（不返回给前端）
	ExpiresAt    time.Time      `gorm:"index" json:"expires_at"`        // 过期时间
	UsedAt       *time.Time     `gorm:"index" json:"used_at"`           // 使用时间
	AttemptCount int            `gorm:"default:0" json:"attempt_count"` // 尝试次数
	SentAt       time.Time      `gorm:"index" json:"sent_at"`           // 发送时间
	CreatedAt    time.Time      `gorm:"index" json:"created_at"`        // 创建时间
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`                 // 软删除时间
}

// TableName 指定表名
func (PasswordResetCode) TableName() string {
	return "password_reset_codes"
}
