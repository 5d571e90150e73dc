package public

import (
	"errors"
	"net/http"

	"github.com/giftvault/internal/constants"
	"github.com/giftvault/internal/http/response"
	"github.com/giftvault/internal/service"

	"github.com/gin-gonic/gin"
)

// RegisterRequest 注册请求
type RegisterRequest struct {
	Email          string                `json:"email" binding:"required"`
	Password       string                `json:"password" binding:"required"`
	Name           string                `json:"name"`
	Role           string                `json:"role"`
	CaptchaPayload CaptchaPayloadRequest `json:"captcha_payload"`
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email          string                `json:"email" binding:"required"`
	Password       string                `json:"password" binding:"required"`
	CaptchaPayload CaptchaPayloadRequest `json:"captcha_payload"`
}

// RefreshRequest 刷新令牌请求
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// LogoutRequest 登出请求
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
	All          bool   `json:"all"`
}

// GoogleLoginRequest Google 登录请求
type GoogleLoginRequest struct {
	IDToken string `json:"id_token" binding:"required"`
}

// SendResetCodeRequest 发送重置验证码请求
type SendResetCodeRequest struct {
	Email          string                `json:"email" binding:"required"`
	CaptchaPayload CaptchaPayloadRequest `json:"captcha_payload"`
}

// ResetPasswordRequest 重置密码请求
type ResetPasswordRequest struct {
	Email       string `json:"email" binding:"required"`
	Code        string `json:"code" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// ChangePasswordRequest 修改密码请求
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	Code        string `json:"code" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// Register 用户/商户注册
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}
	if !h.verifyCaptchaScene(c, constants.CaptchaSceneRegister, req.CaptchaPayload) {
		return
	}

	user, pair, err := h.AuthService.Register(req.Email, req.Password, req.Name, req.Role)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidEmail):
			respondError(c, http.StatusBadRequest, err.Error(), nil)
		case errors.Is(err, service.ErrInvalidRole):
			respondError(c, http.StatusBadRequest, err.Error(), nil)
		case errors.Is(err, service.ErrWeakPassword):
			respondError(c, http.StatusBadRequest, err.Error(), nil)
		case errors.Is(err, service.ErrEmailExists):
			response.Conflict(c, err.Error())
		default:
			respondError(c, http.StatusInternalServerError, "注册失败", err)
		}
		return
	}

	h.recordActivity(c, user.ID, constants.ActivityRegister, user.Email)
	response.Created(c, gin.H{
		"user":   user,
		"tokens": pair,
	})
}

// Login 用户登录
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.recordActivity(c, 0, constants.ActivityLoginFailed, constants.LoginFailReasonBadRequest)
		respondBindingError(c, err)
		return
	}
	if !h.verifyCaptchaScene(c, constants.CaptchaSceneLogin, req.CaptchaPayload) {
		return
	}

	user, pair, err := h.AuthService.Login(req.Email, req.Password, clientMeta(c))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidEmail), errors.Is(err, service.ErrInvalidCredentials):
			h.recordActivity(c, 0, constants.ActivityLoginFailed, constants.LoginFailReasonInvalidCredentials)
			response.Unauthorized(c, service.ErrInvalidCredentials.Error())
		case errors.Is(err, service.ErrPasswordLoginDisabled):
			h.recordActivity(c, 0, constants.ActivityLoginFailed, constants.LoginFailReasonInvalidCredentials)
			response.Unauthorized(c, err.Error())
		case errors.Is(err, service.ErrUserDisabled):
			h.recordActivity(c, 0, constants.ActivityLoginFailed, constants.LoginFailReasonUserDisabled)
			response.Forbidden(c, err.Error())
		default:
			respondError(c, http.StatusInternalServerError, "登录失败", err)
		}
		return
	}

	h.recordActivity(c, user.ID, constants.ActivityLoginSuccess, user.Email)
	response.Success(c, gin.H{
		"user":   user,
		"tokens": pair,
	})
}

// Refresh 刷新令牌
func (h *Handler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	user, pair, err := h.AuthService.Refresh(req.RefreshToken, clientMeta(c))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRefreshTokenInvalid), errors.Is(err, service.ErrRefreshTokenExpired):
			response.Unauthorized(c, err.Error())
		case errors.Is(err, service.ErrUserDisabled):
			response.Forbidden(c, err.Error())
		default:
			respondError(c, http.StatusInternalServerError, "刷新令牌失败", err)
		}
		return
	}

	response.Success(c, gin.H{
		"user":   user,
		"tokens": pair,
	})
}

// Logout 登出
func (h *Handler) Logout(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	// 允许空请求体
	var req LogoutRequest
	_ = c.ShouldBindJSON(&req)

	if err := h.AuthService.Logout(userID, req.RefreshToken, req.All); err != nil {
		respondError(c, http.StatusInternalServerError, "登出失败", err)
		return
	}
	h.recordActivity(c, userID, constants.ActivityLogout, "")
	response.SuccessWithMsg(c, "已退出登录", nil)
}

// GoogleLogin Google 登录
func (h *Handler) GoogleLogin(c *gin.Context) {
	var req GoogleLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	user, pair, err := h.AuthService.LoginWithGoogle(c.Request.Context(), req.IDToken, clientMeta(c))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrGoogleAuthDisabled):
			respondError(c, http.StatusBadRequest, err.Error(), nil)
		case errors.Is(err, service.ErrGoogleTokenInvalid):
			h.recordActivity(c, 0, constants.ActivityLoginFailed, constants.LoginFailReasonGoogleInvalid)
			response.Unauthorized(c, err.Error())
		case errors.Is(err, service.ErrUserDisabled):
			h.recordActivity(c, 0, constants.ActivityLoginFailed, constants.LoginFailReasonUserDisabled)
			response.Forbidden(c, err.Error())
		default:
			respondError(c, http.StatusInternalServerError, "Google 登录失败", err)
		}
		return
	}

	h.recordActivity(c, user.ID, constants.ActivityGoogleLogin, user.Email)
	response.Success(c, gin.H{
		"user":   user,
		"tokens": pair,
	})
}

// SendResetCode 发送密码重置验证码
func (h *Handler) SendResetCode(c *gin.Context) {
	var req SendResetCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}
	if !h.verifyCaptchaScene(c, constants.CaptchaSceneResetSendCode, req.CaptchaPayload) {
		return
	}

	if err := h.AuthService.SendResetCode(req.Email); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidEmail):
			respondError(c, http.StatusBadRequest, err.Error(), nil)
		case errors.Is(err, service.ErrNotFound):
			// 不暴露邮箱是否注册
			response.SuccessWithMsg(c, "如果该邮箱已注册，验证码已发送", nil)
		case errors.Is(err, service.ErrResetCodeTooFrequent):
			response.TooManyRequests(c, err.Error())
		case errors.Is(err, service.ErrEmailServiceDisabled), errors.Is(err, service.ErrEmailServiceNotConfigured):
			respondError(c, http.StatusInternalServerError, "邮件服务不可用", err)
		default:
			respondError(c, http.StatusInternalServerError, "验证码发送失败", err)
		}
		return
	}
	response.SuccessWithMsg(c, "如果该邮箱已注册，验证码已发送", nil)
}

// ResetPassword 验证码重置密码
func (h *Handler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	if err := h.AuthService.ResetPassword(req.Email, req.Code, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidEmail), errors.Is(err, service.ErrWeakPassword):
			respondError(c, http.StatusBadRequest, err.Error(), nil)
		case errors.Is(err, service.ErrNotFound):
			response.NotFound(c, "账号不存在")
		case errors.Is(err, service.ErrResetCodeInvalid),
			errors.Is(err, service.ErrResetCodeExpired),
			errors.Is(err, service.ErrResetCodeAttemptsExceeded):
			respondError(c, http.StatusBadRequest, err.Error(), nil)
		default:
			respondError(c, http.StatusInternalServerError, "密码重置失败", err)
		}
		return
	}
	h.recordActivity(c, 0, constants.ActivityPasswordReset, req.Email)
	response.SuccessWithMsg(c, "密码已重置，请重新登录", nil)
}

// ChangePassword 登录态修改密码
func (h *Handler) ChangePassword(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	if err := h.AuthService.ChangePassword(userID, req.OldPassword, req.Code, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidPassword), errors.Is(err, service.ErrWeakPassword):
			respondError(c, http.StatusBadRequest, err.Error(), nil)
		case errors.Is(err, service.ErrPasswordLoginDisabled):
			respondError(c, http.StatusBadRequest, err.Error(), nil)
		case errors.Is(err, service.ErrResetCodeInvalid),
			errors.Is(err, service.ErrResetCodeExpired),
			errors.Is(err, service.ErrResetCodeAttemptsExceeded):
			respondError(c, http.StatusBadRequest, err.Error(), nil)
		case errors.Is(err, service.ErrNotFound):
			response.NotFound(c, "账号不存在")
		default:
			respondError(c, http.StatusInternalServerError, "密码修改失败", err)
		}
		return
	}
	h.recordActivity(c, userID, constants.ActivityPasswordChange, "")
	response.SuccessWithMsg(c, "密码已修改，请重新登录", nil)
}

// Me 当前用户信息
func (h *Handler) Me(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	user, err := h.AuthService.GetUserByID(userID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取用户信息失败", err)
		return
	}
	if user == nil {
		response.NotFound(c, "账号不存在")
		return
	}

	data := gin.H{"user": user}
	if user.Role == constants.RoleMerchant && h.MerchantService != nil {
		if profile, perr := h.MerchantService.GetByUserID(user.ID); perr == nil {
			data["merchant_profile"] = profile
		}
	}
	response.Success(c, data)
}

func (h *Handler) recordActivity(c *gin.Context, userID uint, action, detail string) {
	if h.ActivityLogService == nil {
		return
	}
	h.ActivityLogService.Record(service.RecordActivityInput{
		UserID:    userID,
		Action:    action,
		Detail:    detail,
		ClientIP:  c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
		RequestID: getRequestID(c),
	})
}

func clientMeta(c *gin.Context) service.ClientMeta {
	return service.ClientMeta{
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}
}
