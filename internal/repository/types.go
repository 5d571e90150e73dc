package repository

import "time"

// UserListFilter 查询用户列表的过滤条件
type UserListFilter struct {
	Page        int
	PageSize    int
	Keyword     string
	Role        string
	Status      string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// MerchantProfileListFilter 查询商户资料列表的过滤条件
type MerchantProfileListFilter struct {
	Page          int
	PageSize      int
	ProfileStatus string
	Keyword       string
}

// GiftCardListFilter 查询礼品卡模板列表的过滤条件
type GiftCardListFilter struct {
	Page       int
	PageSize   int
	MerchantID uint
	Keyword    string
	OnlyActive bool
	// OnlySellable 仅返回已通过审核商户的模板，公开目录使用。
	OnlySellable bool
}

// PurchasedGiftCardListFilter 查询已购礼品卡列表的过滤条件
type PurchasedGiftCardListFilter struct {
	Page       int
	PageSize   int
	BuyerID    uint
	MerchantID uint
	Status     string
}

// NotificationListFilter 查询站内通知列表的过滤条件
type NotificationListFilter struct {
	Page       int
	PageSize   int
	UserID     uint
	OnlyUnread bool
}

// ActivityLogListFilter 查询活动日志列表的过滤条件
type ActivityLogListFilter struct {
	Page        int
	PageSize    int
	UserID      uint
	Action      string
	ClientIP    string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}
