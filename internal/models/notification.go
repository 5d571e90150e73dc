package models

import (
	"time"

	"gorm.io/gorm"
)

// Notification 站内通知
type Notification struct {
	ID        uint           `gorm:"primarykey" json:"id"`                      // 主键
	UserID    uint           `gorm:"index;not null" json:"user_id"`             // 接收用户ID
	Event     string         `gorm:"type:varchar(64);index;not null" json:"event"` // 事件类型
	Title     string         `gorm:"type:varchar(200);not null" json:"title"`   // 标题
	Body      string         `gorm:"type:text" json:"body"`                     // 正文
	IsRead    bool           `gorm:"index;default:false" json:"is_read"`        // 是否已读
	ReadAt    *time.Time     `json:"read_at"`                                   // 已读时间
	CreatedAt time.Time      `gorm:"index" json:"created_at"`                   // 创建时间
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`                            // 软删除时间
}

// TableName 指定表名
func (Notification) TableName() string {
	return "notifications"
}
