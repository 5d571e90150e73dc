package models

import (
	"time"

	"gorm.io/gorm"
)

// User 用户表
// 说明：password_hash 为空表示仅第三方登录账号，不允许密码登录。
type User struct {
	ID                 uint           `gorm:"primarykey" json:"id"`                                 // 主键
	Email              string         `gorm:"uniqueIndex;not null" json:"email"`                    // 邮箱
	PasswordHash       string         `gorm:"default:''" json:"-"`                                  // 密码哈希（OAuth 账号可为空）
	Name               string         `gorm:"type:varchar(120);default:''" json:"name"`             // 姓名
	Role               string         `gorm:"type:varchar(24);index;default:'user'" json:"role"`    // 角色（user/merchant/admin）
	Status             string         `gorm:"type:varchar(24);default:'active'" json:"status"`      // 账号状态
	GoogleID           *string        `gorm:"type:varchar(64);uniqueIndex" json:"-"`                // Google 账号ID
	TokenVersion       uint64         `gorm:"not null;default:0" json:"-"`                          // Token 版本（用于全量失效）
	TokenInvalidBefore *time.Time     `gorm:"index" json:"-"`                                       // 该时间点前签发的 Token 失效
	EmailVerifiedAt    *time.Time     `json:"email_verified_at"`                                    // 邮箱验证时间
	LastLoginAt        *time.Time     `json:"last_login_at"`                                        // 最后登录时间
	CreatedAt          time.Time      `gorm:"index" json:"created_at"`                              // 创建时间
	UpdatedAt          time.Time      `gorm:"index" json:"updated_at"`                              // 更新时间
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`                                       // 软删除时间
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}

// EmailVerified 邮箱是否已验证
func (u *User) EmailVerified() bool {
	return u.EmailVerifiedAt != nil
}
