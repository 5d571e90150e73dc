package public

import (
	handlershared "github.com/giftvault/internal/http/handlers/shared"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func getUserID(c *gin.Context) (uint, bool) {
	return handlershared.GetContextUint(c, "user_id")
}

func getUserRole(c *gin.Context) string {
	if value, ok := c.Get("user_role"); ok {
		if role, ok := value.(string); ok {
			return role
		}
	}
	return ""
}

func getRequestID(c *gin.Context) string {
	if value, ok := c.Get("request_id"); ok {
		if id, ok := value.(string); ok {
			return id
		}
	}
	return ""
}

func requestLog(c *gin.Context) *zap.SugaredLogger {
	return handlershared.RequestLog(c)
}

func respondError(c *gin.Context, code int, msg string, err error) {
	handlershared.RespondError(c, code, msg, err)
}

func respondBindingError(c *gin.Context, err error) {
	handlershared.RespondBindingError(c, err)
}

func normalizePagination(page, pageSize int) (int, int) {
	return handlershared.NormalizePagination(page, pageSize)
}

func totalPages(total int64, pageSize int) int64 {
	return handlershared.TotalPages(total, pageSize)
}
