package public

import (
	"errors"
	"net/http"

	"github.com/giftvault/internal/constants"
	"github.com/giftvault/internal/http/response"
	"github.com/giftvault/internal/service"

	"github.com/gin-gonic/gin"
)

// GetImageCaptcha 获取图片验证码挑战
func (h *Handler) GetImageCaptcha(c *gin.Context) {
	if h.CaptchaService == nil {
		respondError(c, http.StatusInternalServerError, "验证码服务不可用", service.ErrCaptchaConfigInvalid)
		return
	}

	challenge, err := h.CaptchaService.GenerateImageChallenge()
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCaptchaConfigInvalid):
			respondError(c, http.StatusBadRequest, "验证码未启用", nil)
		default:
			respondError(c, http.StatusInternalServerError, "验证码生成失败", err)
		}
		return
	}

	response.Success(c, gin.H{
		"captcha_id":   challenge.CaptchaID,
		"image_base64": challenge.ImageBase64,
	})
}

// verifyCaptchaScene 按场景校验验证码载荷
func (h *Handler) verifyCaptchaScene(c *gin.Context, scene string, payload CaptchaPayloadRequest) bool {
	if h.CaptchaService == nil {
		return true
	}
	if err := h.CaptchaService.Verify(scene, payload.toServicePayload()); err != nil {
		switch {
		case errors.Is(err, service.ErrCaptchaRequired):
			h.recordCaptchaFailure(c, scene)
			respondError(c, http.StatusBadRequest, "需要完成人机验证", nil)
		case errors.Is(err, service.ErrCaptchaInvalid):
			h.recordCaptchaFailure(c, scene)
			respondError(c, http.StatusBadRequest, "人机验证失败", nil)
		default:
			respondError(c, http.StatusInternalServerError, "人机验证异常", err)
		}
		return false
	}
	return true
}

func (h *Handler) recordCaptchaFailure(c *gin.Context, scene string) {
	if scene != constants.CaptchaSceneLogin {
		return
	}
	h.recordActivity(c, 0, constants.ActivityLoginFailed, constants.LoginFailReasonCaptchaInvalid)
}
