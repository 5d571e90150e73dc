package constants

// 用户角色常量
const (
	RoleUser     = "user"
	RoleMerchant = "merchant"
	RoleAdmin    = "admin"
)

// 用户状态常量
const (
	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"
)

// 商户资料状态常量
const (
	ProfileStatusIncomplete          = "incomplete"
	ProfileStatusPendingVerification = "pending_verification"
	ProfileStatusVerified            = "verified"
	ProfileStatusRejected            = "rejected"
)

// 已购礼品卡状态常量
const (
	PurchasedCardStatusActive        = "active"
	PurchasedCardStatusFullyRedeemed = "fully_redeemed"
	PurchasedCardStatusExpired       = "expired"
	PurchasedCardStatusCancelled     = "cancelled"
)

// 支付状态常量
const (
	PaymentStatusPending  = "pending"
	PaymentStatusPaid     = "paid"
	PaymentStatusRefunded = "refunded"
)

// 通知事件常量
const (
	NotificationEventWelcome          = "welcome"
	NotificationEventMerchantVerified = "merchant_verified"
	NotificationEventMerchantRejected = "merchant_rejected"
	NotificationEventCardPurchased    = "gift_card_purchased"
	NotificationEventCardRedeemed     = "gift_card_redeemed"
	NotificationEventPasswordReset    = "password_reset"
)

// 活动日志动作常量
const (
	ActivityLoginSuccess   = "login_success"
	ActivityLoginFailed    = "login_failed"
	ActivityLogout         = "logout"
	ActivityRegister       = "register"
	ActivityGoogleLogin    = "google_login"
	ActivityPasswordReset  = "password_reset"
	ActivityPasswordChange = "password_change"
	ActivityProfileSubmit  = "merchant_profile_submit"
	ActivityMerchantVerify = "merchant_verify"
	ActivityMerchantReject = "merchant_reject"
	ActivityMerchantDelete = "merchant_delete"
	ActivityGiftCardCreate = "gift_card_create"
	ActivityGiftCardUpdate = "gift_card_update"
	ActivityGiftCardDelete = "gift_card_delete"
	ActivityPurchaseCreate = "purchase_create"
	ActivityPurchaseCancel = "purchase_cancel"
	ActivityRedemption     = "redemption"
	ActivityUserEnable     = "user_enable"
	ActivityUserDisable    = "user_disable"
)

// 登录失败原因常量
const (
	LoginFailReasonBadRequest         = "bad_request"
	LoginFailReasonInvalidCredentials = "invalid_credentials"
	LoginFailReasonUserDisabled       = "user_disabled"
	LoginFailReasonCaptchaInvalid     = "captcha_invalid"
	LoginFailReasonGoogleInvalid      = "google_token_invalid"
)

// 验证码提供方常量
const (
	CaptchaProviderNone  = "none"
	CaptchaProviderImage = "image"
)

// 验证码校验场景常量
const (
	CaptchaSceneLogin         = "login"
	CaptchaSceneRegister      = "register"
	CaptchaSceneResetSendCode = "reset_send_code"
)

// 队列常量
const (
	QueueDefault             = "default"
	QueueCritical            = "critical"
	TaskEmailSend            = "email:send"
	TaskNotificationDispatch = "notification:dispatch"
)

// 缓存默认配置常量
const (
	RedisPrefixDefault = "gv"
)
