package handler

import (
	"net/http"
	"strconv"
	"time"

	"shop_api/internal/domain/analytics/service"
	"shop_api/pkg/apperr"
	"shop_api/pkg/response"

	"github.com/gin-gonic/gin"
)

const (
	defaultRangeDays = 7
	maxRangeDays     = 365
)

// AnalyticsHandler 分析处理器
type AnalyticsHandler struct {
	service service.AnalyticsService
}

// NewAnalyticsHandler 创建处理器
func NewAnalyticsHandler(service service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{service: service}
}

// parseDateRange 解析日期范围
// 优先 startDate/endDate (YYYY-MM-DD)，否则按 days 参数回溯，默认7天
func parseDateRange(c *gin.Context) (time.Time, time.Time, bool) {
	startStr := c.Query("startDate")
	endStr := c.Query("endDate")

	if startStr != "" && endStr != "" {
		start, err := time.Parse("2006-01-02", startStr)
		if err != nil {
			response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, "startDate must be YYYY-MM-DD")
			return time.Time{}, time.Time{}, false
		}
		end, err := time.Parse("2006-01-02", endStr)
		if err != nil {
			response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, "endDate must be YYYY-MM-DD")
			return time.Time{}, time.Time{}, false
		}
		if end.Before(start) {
			response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, "endDate must be after startDate")
			return time.Time{}, time.Time{}, false
		}
		if end.Sub(start) > maxRangeDays*24*time.Hour {
			response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, "Date range cannot exceed 365 days")
			return time.Time{}, time.Time{}, false
		}
		return start, end, true
	}

	days := defaultRangeDays
	if v := c.Query("days"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, "days must be a positive number")
			return time.Time{}, time.Time{}, false
		}
		if parsed > maxRangeDays {
			parsed = maxRangeDays
		}
		days = parsed
	}

	end := time.Now()
	start := end.AddDate(0, 0, -(days - 1))
	return start, end, true
}

// GetOverview 分析总览 (管理员)
// @Summary 运营数据总览
// @Tags Analytics
// @Produce json
// @Router /api/analytics [get]
func (h *AnalyticsHandler) GetOverview(c *gin.Context) {
	start, end, ok := parseDateRange(c)
	if !ok {
		return
	}

	result, err := h.service.GetAnalyticsOverview(c.Request.Context(), start, end)
	if err != nil {
		apperr.Handle(c, err)
		return
	}
	response.Success(c, result)
}

// GetDailySales 按天销售序列 (管理员)
func (h *AnalyticsHandler) GetDailySales(c *gin.Context) {
	start, end, ok := parseDateRange(c)
	if !ok {
		return
	}

	series, err := h.service.GetDailySales(c.Request.Context(), start, end)
	if err != nil {
		apperr.Handle(c, err)
		return
	}
	response.Success(c, series)
}

// GetTopProducts 销量排行 (管理员)
func (h *AnalyticsHandler) GetTopProducts(c *gin.Context) {
	limit := 0
	if v := c.Query("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, "limit must be a number")
			return
		}
		limit = parsed
	}

	products, err := h.service.GetTopProducts(c.Request.Context(), limit)
	if err != nil {
		apperr.Handle(c, err)
		return
	}
	response.Success(c, products)
}

// GetRevenueByCategory 分类收入占比 (管理员)
func (h *AnalyticsHandler) GetRevenueByCategory(c *gin.Context) {
	rows, err := h.service.GetRevenueByCategory(c.Request.Context())
	if err != nil {
		apperr.Handle(c, err)
		return
	}
	response.Success(c, rows)
}
