package service

import "errors"

// 认证相关错误
var (
	ErrInvalidEmail          = errors.New("邮箱格式不正确")
	ErrInvalidCredentials    = errors.New("邮箱或密码错误")
	ErrUserDisabled          = errors.New("账号已被禁用")
	ErrEmailExists           = errors.New("邮箱已被注册")
	ErrInvalidPassword       = errors.New("密码错误")
	ErrWeakPassword          = errors.New("密码强度不足")
	ErrPasswordLoginDisabled = errors.New("该账号不支持密码登录")
	ErrInvalidRole           = errors.New("不支持的注册角色")
	ErrRefreshTokenInvalid   = errors.New("刷新令牌无效")
	ErrRefreshTokenExpired   = errors.New("刷新令牌已过期")
	ErrGoogleAuthDisabled    = errors.New("Google 登录未启用")
	ErrGoogleTokenInvalid    = errors.New("Google 身份令牌无效")
	ErrInvalidUserStatus     = errors.New("不支持的用户状态")
)

// 验证码相关错误
var (
	ErrResetCodeInvalid          = errors.New("验证码错误")
	ErrResetCodeExpired          = errors.New("验证码已过期")
	ErrResetCodeAttemptsExceeded = errors.New("验证码尝试次数过多")
	ErrResetCodeTooFrequent      = errors.New("验证码发送过于频繁")
	ErrCaptchaRequired           = errors.New("需要完成人机验证")
	ErrCaptchaInvalid            = errors.New("人机验证失败")
	ErrCaptchaConfigInvalid      = errors.New("验证码配置无效")
)

// 商户相关错误
var (
	ErrMerchantProfileNotFound  = errors.New("商户资料不存在")
	ErrMerchantNotVerified      = errors.New("商户尚未通过审核")
	ErrProfileIncomplete        = errors.New("商户资料不完整")
	ErrInvalidProfileTransition = errors.New("当前状态不允许该操作")
	ErrRejectionReasonRequired  = errors.New("驳回原因不能为空")
)

// 礼品卡相关错误
var (
	ErrGiftCardNotFound      = errors.New("礼品卡不存在")
	ErrGiftCardTitleRequired = errors.New("礼品卡名称不能为空")
	ErrGiftCardInactive      = errors.New("礼品卡已下架")
	ErrNotCardOwner          = errors.New("无权操作该礼品卡")
	ErrInvalidCardPrice      = errors.New("礼品卡价格无效")
	ErrPurchasedCardNotFound = errors.New("兑换码无效")
	ErrCardNotActive         = errors.New("卡片当前状态不可核销")
	ErrCardExpired           = errors.New("卡片已过期")
	ErrCardCancelled         = errors.New("卡片已作废")
	ErrCardFullyRedeemed     = errors.New("卡片余额已用尽")
	ErrInsufficientBalance   = errors.New("卡片余额不足")
	ErrInvalidRedeemAmount   = errors.New("核销金额必须大于 0")
	ErrCardHasRedemptions    = errors.New("卡片已有核销记录，无法作废")
)

// 邮件相关错误
var (
	ErrEmailServiceDisabled      = errors.New("邮件服务未启用")
	ErrEmailServiceNotConfigured = errors.New("邮件服务未配置")
	ErrEmailRecipientRejected    = errors.New("收件地址被拒绝")
)

// 通知相关错误
var (
	ErrNotificationEventInvalid = errors.New("不支持的通知事件")
)

// 通用错误
var (
	ErrNotFound  = errors.New("记录不存在")
	ErrForbidden = errors.New("无权访问")
)
