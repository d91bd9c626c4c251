package handler

import "github.com/gin-gonic/gin"

// operatorID 返回调用方标识，用于审计字段。
// 单用户部署场景下无账号体系，由客户端通过请求头自报，缺省为 local。
func operatorID(c *gin.Context) string {
	if id := c.GetHeader("X-Operator-ID"); id != "" {
		return id
	}
	return "local"
}
