package shared

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/giftvault/internal/http/response"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RegisterValidatorTagNames 让校验错误按请求体里的 json 字段名报告。
// 需在路由初始化时调用一次。
func RegisterValidatorTagNames() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// FieldErrors 把校验错误翻译成逐字段提示；非校验类错误返回 nil。
func FieldErrors(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		name := fe.Field()
		if name == "" {
			continue
		}
		fields[name] = fieldMessage(fe)
	}
	return fields
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "该字段为必填项"
	case "email":
		return "邮箱格式不正确"
	case "min":
		return fmt.Sprintf("不能小于 %s", fe.Param())
	case "max":
		return fmt.Sprintf("不能大于 %s", fe.Param())
	case "len":
		return fmt.Sprintf("长度必须为 %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("取值必须是 %s 之一", fe.Param())
	default:
		return fmt.Sprintf("不满足 %s 规则", fe.Tag())
	}
}

// RespondBindingError 处理请求体绑定失败：能翻译成逐字段错误时
// 响应 400 并携带 errors 明细，否则退回通用参数错误。
func RespondBindingError(c *gin.Context, err error) {
	fields := FieldErrors(err)
	if len(fields) == 0 {
		RespondError(c, http.StatusBadRequest, "请求参数错误", err)
		return
	}
	RequestLog(c).Debugw("request_validation_failed", "fields", fields)
	response.ValidationFailed(c, "请求参数错误", fields)
}
