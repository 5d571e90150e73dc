package models

import "time"

// RefreshToken 刷新令牌记录
// 说明：只存储 SHA-256 哈希，原始令牌不落库；刷新时旧记录被撤销并替换（轮换）。
type RefreshToken struct {
	ID        uint       `gorm:"primarykey" json:"id"`                                 // 主键
	UserID    uint       `gorm:"index;not null" json:"user_id"`                        // 用户ID
	TokenHash string     `gorm:"type:varchar(64);uniqueIndex;not null" json:"-"`       // 令牌哈希
	ExpiresAt time.Time  `gorm:"index;not null" json:"expires_at"`                     // 过期时间
	RevokedAt *time.Time `gorm:"index" json:"revoked_at"`                              // 撤销时间
	ClientIP  string     `gorm:"type:varchar(64);default:''" json:"client_ip"`         // 签发时客户端IP
	UserAgent string     `gorm:"type:text" json:"user_agent"`                          // 签发时客户端UA
	CreatedAt time.Time  `gorm:"index" json:"created_at"`                              // 签发时间
}

// TableName 指定表名
func (RefreshToken) TableName() string {
	return "refresh_tokens"
}
