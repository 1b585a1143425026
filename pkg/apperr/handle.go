package apperr

import (
	"net/http"

	"shop_api/pkg/logger"
	"shop_api/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handle 统一错误出口：可预期错误透出消息，其余打日志并返回通用 500
func Handle(c *gin.Context, err error) {
	if appErr, ok := As(err); ok && appErr.IsOperational() {
		response.Error(c, appErr.Status, appErr.Code, appErr.Message)
		return
	}

	if logger.Log != nil {
		logger.Log.Error("unexpected error",
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
	}
	response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, "Internal server error")
}
