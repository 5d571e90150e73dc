package admin

import (
	handlershared "github.com/giftvault/internal/http/handlers/shared"

	"github.com/gin-gonic/gin"
)

// getAdminID 管理员账户走统一的用户身份，上下文键与普通用户一致
func getAdminID(c *gin.Context) (uint, bool) {
	return handlershared.GetContextUint(c, "user_id")
}
