package models

import "time"

// NotificationPreference 通知偏好
// 说明：按事件类型记录用户的邮件/站内开关，缺省视为全部开启。
type NotificationPreference struct {
	ID           uint      `gorm:"primarykey" json:"id"`                                   // 主键
	UserID       uint      `gorm:"index:idx_notif_pref_user_event,unique" json:"user_id"`  // 用户ID
	Event        string    `gorm:"type:varchar(64);index:idx_notif_pref_user_event,unique" json:"event"` // 事件类型
	EmailEnabled bool      `gorm:"default:true" json:"email_enabled"`                      // 邮件开关
	InAppEnabled bool      `gorm:"default:true" json:"in_app_enabled"`                     // 站内开关
	CreatedAt    time.Time `json:"created_at"`                                             // 创建时间
	UpdatedAt    time.Time `json:"updated_at"`                                             // 更新时间
}

// TableName 指定表名
func (NotificationPreference) TableName() string {
	return "notification_preferences"
}
