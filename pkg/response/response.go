package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response 接口统一返回包，所有 handler 都走这个壳
type Response struct {
	Code    int         `json:"code"`    // 业务码，见 code.go
	Message string      `json:"message"` // 给前端展示的提示
	Data    interface{} `json:"data"`    // 业务数据，无数据时为 null
}

// Success 正常返回，业务码为 0
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    CodeSuccess,
		Message: "success",
		Data:    data,
	})
}

// Error 按指定 HTTP 状态码返回错误
func Error(c *gin.Context, httpCode int, errCode int, msg string) {
	c.JSON(httpCode, Response{
		Code:    errCode,
		Message: msg,
		Data:    nil,
	})
}

// Fail 业务失败，HTTP 仍是 200，靠业务码区分
func Fail(c *gin.Context, errCode int, msg string) {
	c.JSON(http.StatusOK, Response{
		Code:    errCode,
		Message: msg,
		Data:    nil,
	})
}
