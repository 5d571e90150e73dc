package models

import "time"

// ActivityLog 活动日志
// 说明：记录登录登出与管理动作，用于审计与个人安全中心展示。
type ActivityLog struct {
	ID        uint      `gorm:"primarykey" json:"id"`                     // 主键
	UserID    uint      `gorm:"index" json:"user_id"`                     // 操作用户ID（匿名/失败尝试可为0）
	Action    string    `gorm:"type:varchar(64);index;not null" json:"action"` // 动作枚举
	Detail    string    `gorm:"type:text" json:"detail"`                  // 详情
	ClientIP  string    `gorm:"type:varchar(64);index" json:"client_ip"`  // 客户端IP
	UserAgent string    `gorm:"type:text" json:"user_agent"`              // 客户端UA
	RequestID string    `gorm:"type:varchar(64);index" json:"request_id"` // 请求追踪ID
	CreatedAt time.Time `gorm:"index" json:"created_at"`                  // 记录时间
}

// TableName 指定表名
func (ActivityLog) TableName() string {
	return "activity_logs"
}
