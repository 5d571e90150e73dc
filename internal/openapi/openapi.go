// Package openapi 维护对外发布的 OpenAPI 3 描述文档。
// 文档随路由手工维护，Document 返回的内容即 /api/docs/openapi.json 的响应体。
package openapi

import "github.com/gin-gonic/gin"

// Version 文档版本号
const Version = "1.0.0"

// Document 返回完整的 OpenAPI 描述
func Document() gin.H {
	return gin.H{
		"openapi": "3.0.3",
		"info": gin.H{
			"title":       "GiftVault API",
			"description": "多商户礼品卡售卖与核销平台接口",
			"version":     Version,
		},
		"servers": []gin.H{
			{"url": "/api"},
		},
		"tags": []gin.H{
			{"name": "auth", "description": "注册登录与令牌管理"},
			{"name": "merchants", "description": "商户资料与审核"},
			{"name": "gift-cards", "description": "礼品卡模板"},
			{"name": "purchases", "description": "购卡与核销"},
			{"name": "notifications", "description": "站内通知与偏好"},
			{"name": "activity-logs", "description": "活动日志"},
			{"name": "admin", "description": "管理端"},
		},
		"paths":      documentPaths(),
		"components": documentComponents(),
	}
}

// Handler 输出 OpenAPI JSON
func Handler() gin.HandlerFunc {
	doc := Document()
	return func(c *gin.Context) {
		c.JSON(200, doc)
	}
}

func documentPaths() gin.H {
	return gin.H{
		"/auth/register": gin.H{
			"post": operation("auth", "注册账号", "角色可选 user 或 merchant，商户注册后需补全资料并提交审核", false, resp201(), resp400(), resp409()),
		},
		"/auth/login": gin.H{
			"post": operation("auth", "邮箱密码登录", "返回访问令牌与刷新令牌，禁用账号返回 403", false, resp200(), resp401(), resp403()),
		},
		"/auth/refresh": gin.H{
			"post": operation("auth", "刷新令牌", "刷新令牌一次性使用，旋转后旧令牌立即失效", false, resp200(), resp401()),
		},
		"/auth/google": gin.H{
			"post": operation("auth", "Google 登录", "携带 Google ID Token，首次登录自动建号", false, resp200(), resp401()),
		},
		"/auth/send-reset-code": gin.H{
			"post": operation("auth", "发送密码重置验证码", "", false, resp200(), resp429()),
		},
		"/auth/reset-password": gin.H{
			"post": operation("auth", "验证码重置密码", "重置后全部会话失效", false, resp200(), resp400()),
		},
		"/auth/logout": gin.H{
			"post": operation("auth", "退出登录", "可选择撤销全部会话", true, resp200()),
		},
		"/auth/change-password": gin.H{
			"post": operation("auth", "修改密码", "需要旧密码与邮箱验证码", true, resp200(), resp400()),
		},
		"/auth/me": gin.H{
			"get": operation("auth", "当前用户信息", "商户角色附带商户资料", true, resp200()),
		},
		"/captcha/image": gin.H{
			"get": operation("auth", "获取图片验证码", "", false, resp200()),
		},
		"/merchants/me": gin.H{
			"get": operation("merchants", "我的商户资料", "", true, resp200(), resp404()),
			"put": operation("merchants", "更新商户资料", "仅更新资料字段，不改变审核状态", true, resp200(), resp400()),
		},
		"/merchants/me/submit": gin.H{
			"post": operation("merchants", "提交商户资料审核", "仅允许从未完成或已驳回状态提交", true, resp200(), resp400()),
		},
		"/merchants/me/redemptions": gin.H{
			"get": operation("merchants", "商户核销流水", "", true, resp200()),
		},
		"/merchants/{id}": gin.H{
			"get": operation("merchants", "商户公开资料", "仅已通过审核的商户可见", false, resp200(), resp404()),
		},
		"/gift-cards": gin.H{
			"get":  operation("gift-cards", "在售礼品卡列表", "", false, resp200()),
			"post": operation("gift-cards", "创建礼品卡模板", "仅已审核商户", true, resp201(), resp400(), resp403()),
		},
		"/gift-cards/mine": gin.H{
			"get": operation("gift-cards", "我的礼品卡模板", "", true, resp200()),
		},
		"/gift-cards/{id}": gin.H{
			"get":    operation("gift-cards", "礼品卡详情", "下架卡片仅卡主可见", false, resp200(), resp404()),
			"put":    operation("gift-cards", "更新礼品卡模板", "", true, resp200(), resp403(), resp404()),
			"delete": operation("gift-cards", "删除礼品卡模板", "", true, resp200(), resp403(), resp404()),
		},
		"/purchases": gin.H{
			"post": operation("purchases", "购买礼品卡", "支持匿名购买，成功后向收件邮箱发送兑换码", false, resp201(), resp400(), resp404()),
			"get":  operation("purchases", "我的已购卡列表", "商户可用 scope=sold 查询售出卡", true, resp200()),
		},
		"/purchases/{id}": gin.H{
			"get": operation("purchases", "已购卡详情", "", true, resp200(), resp403(), resp404()),
		},
		"/purchases/by-code/{code}": gin.H{
			"get": operation("purchases", "按兑换码查询已购卡", "", true, resp200(), resp403(), resp404()),
		},
		"/purchases/redeem": gin.H{
			"post": operation("purchases", "核销已购卡", "按兑换码扣减余额，余额不足或状态不可核销返回 400", true, resp200(), resp400(), resp403(), resp404()),
		},
		"/purchases/{id}/cancel": gin.H{
			"post": operation("purchases", "作废已购卡", "已有核销记录的卡不可作废", true, resp200(), resp400(), resp403(), resp404()),
		},
		"/purchases/{id}/redemptions": gin.H{
			"get": operation("purchases", "已购卡核销流水", "", true, resp200(), resp403(), resp404()),
		},
		"/notifications": gin.H{
			"get": operation("notifications", "站内通知列表", "only_unread=true 仅返回未读", true, resp200()),
		},
		"/notifications/unread-count": gin.H{
			"get": operation("notifications", "未读通知数", "", true, resp200()),
		},
		"/notifications/{id}/read": gin.H{
			"post": operation("notifications", "标记通知已读", "", true, resp200(), resp404()),
		},
		"/notifications/read-all": gin.H{
			"post": operation("notifications", "全部标记已读", "", true, resp200()),
		},
		"/notifications/preferences": gin.H{
			"get": operation("notifications", "通知偏好列表", "", true, resp200()),
			"put": operation("notifications", "更新通知偏好", "", true, resp200(), resp400()),
		},
		"/activity-logs": gin.H{
			"get": operation("activity-logs", "我的活动日志", "", true, resp200()),
		},
		"/admin/merchants": gin.H{
			"get": operation("admin", "商户资料列表", "支持按审核状态过滤", true, resp200(), resp403()),
		},
		"/admin/merchants/{id}": gin.H{
			"get":    operation("admin", "商户资料详情", "", true, resp200(), resp404()),
			"delete": operation("admin", "删除商户", "同时禁用其账号并撤销会话", true, resp200(), resp404()),
		},
		"/admin/merchants/{id}/verify": gin.H{
			"post": operation("admin", "审核通过商户", "", true, resp200(), resp400(), resp404()),
		},
		"/admin/merchants/{id}/reject": gin.H{
			"post": operation("admin", "驳回商户审核", "需提供驳回原因", true, resp200(), resp400(), resp404()),
		},
		"/admin/users": gin.H{
			"get": operation("admin", "用户列表", "", true, resp200(), resp403()),
		},
		"/admin/users/{id}/status": gin.H{
			"put": operation("admin", "启用或禁用用户", "禁用时撤销全部刷新令牌", true, resp200(), resp400(), resp404()),
		},
		"/admin/activity-logs": gin.H{
			"get": operation("admin", "全站活动日志", "", true, resp200(), resp403()),
		},
	}
}

func documentComponents() gin.H {
	return gin.H{
		"securitySchemes": gin.H{
			"bearerAuth": gin.H{
				"type":         "http",
				"scheme":       "bearer",
				"bearerFormat": "JWT",
			},
		},
		"schemas": gin.H{
			"Envelope": gin.H{
				"type": "object",
				"properties": gin.H{
					"success": gin.H{"type": "boolean"},
					"message": gin.H{"type": "string"},
					"data":    gin.H{},
				},
				"required": []string{"success"},
			},
			"Pagination": gin.H{
				"type": "object",
				"properties": gin.H{
					"page":       gin.H{"type": "integer"},
					"page_size":  gin.H{"type": "integer"},
					"total":      gin.H{"type": "integer", "format": "int64"},
					"total_page": gin.H{"type": "integer", "format": "int64"},
				},
			},
		},
	}
}

func operation(tag, summary, description string, secured bool, responses ...[2]interface{}) gin.H {
	respMap := gin.H{}
	for _, item := range responses {
		respMap[item[0].(string)] = item[1]
	}
	op := gin.H{
		"tags":      []string{tag},
		"summary":   summary,
		"responses": respMap,
	}
	if description != "" {
		op["description"] = description
	}
	if secured {
		op["security"] = []gin.H{{"bearerAuth": []string{}}}
	}
	return op
}

func envelopeResponse(description string) gin.H {
	return gin.H{
		"description": description,
		"content": gin.H{
			"application/json": gin.H{
				"schema": gin.H{"$ref": "#/components/schemas/Envelope"},
			},
		},
	}
}

func resp200() [2]interface{} { return [2]interface{}{"200", envelopeResponse("成功")} }
func resp201() [2]interface{} { return [2]interface{}{"201", envelopeResponse("已创建")} }
func resp400() [2]interface{} { return [2]interface{}{"400", envelopeResponse("请求参数错误")} }
func resp401() [2]interface{} { return [2]interface{}{"401", envelopeResponse("未认证")} }
func resp403() [2]interface{} { return [2]interface{}{"403", envelopeResponse("无权访问")} }
func resp404() [2]interface{} { return [2]interface{}{"404", envelopeResponse("资源不存在")} }
func resp409() [2]interface{} { return [2]interface{}{"409", envelopeResponse("邮箱已被注册")} }
func resp429() [2]interface{} { return [2]interface{}{"429", envelopeResponse("请求过于频繁")} }
