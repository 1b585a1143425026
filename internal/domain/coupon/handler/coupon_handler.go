package handler

import (
	"net/http"
	"time"

	"shop_api/internal/domain/coupon/service"
	"shop_api/pkg/apperr"
	"shop_api/pkg/response"

	"github.com/gin-gonic/gin"
)

// CouponHandler 优惠券处理器
type CouponHandler struct {
	service service.CouponService
}

// NewCouponHandler 创建处理器
func NewCouponHandler(service service.CouponService) *CouponHandler {
	return &CouponHandler{service: service}
}

// ValidateCouponInput 校验输入
type ValidateCouponInput struct {
	Code      string  `json:"code" binding:"required"`
	CartTotal float64 `json:"cartTotal" binding:"gte=0"`
}

// CreateCouponInput 创建输入
type CreateCouponInput struct {
	Code               string    `json:"code" binding:"required,alphanum,min=3,max=20"`
	DiscountPercentage float64   `json:"discountPercentage" binding:"required,gt=0,lte=100"`
	ExpirationDate     time.Time `json:"expirationDate" binding:"required"`
	UserID             string    `json:"userId" binding:"required"`
	UsageLimit         *int      `json:"usageLimit" binding:"omitempty,gt=0"`
	MinimumPurchase    float64   `json:"minimumPurchase" binding:"gte=0"`
}

// BulkCouponInput 批量发券输入
type BulkCouponInput struct {
	UserIDs            []string  `json:"userIds" binding:"required,min=1"`
	DiscountPercentage float64   `json:"discountPercentage" binding:"required,gt=0,lte=100"`
	ExpirationDate     time.Time `json:"expirationDate" binding:"required"`
	UsageLimit         *int      `json:"usageLimit" binding:"omitempty,gt=0"`
	MinimumPurchase    float64   `json:"minimumPurchase" binding:"gte=0"`
	CodePrefix         string    `json:"codePrefix"`
}

// GetCoupon 当前用户可用的券
func (h *CouponHandler) GetCoupon(c *gin.Context) {
	coupon, err := h.service.GetUserCoupon(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		apperr.Handle(c, err)
		return
	}
	// 没有可用券时 data 为 null
	response.Success(c, coupon)
}

// GetMyCoupons 当前用户全部券
func (h *CouponHandler) GetMyCoupons(c *gin.Context) {
	coupons, err := h.service.GetAllUserCoupons(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		apperr.Handle(c, err)
		return
	}
	response.Success(c, coupons)
}

// ValidateCoupon 校验券码并计算折扣
func (h *CouponHandler) ValidateCoupon(c *gin.Context) {
	var input ValidateCouponInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	result, err := h.service.ValidateCoupon(c.Request.Context(), c.GetString("userID"), input.Code, input.CartTotal)
	if err != nil {
		apperr.Handle(c, err)
		return
	}
	response.Success(c, result)
}

// CreateCoupon 创建券 (管理员)
func (h *CouponHandler) CreateCoupon(c *gin.Context) {
	var input CreateCouponInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	coupon, err := h.service.CreateCoupon(c.Request.Context(), service.CreateCouponInput{
		Code:               input.Code,
		DiscountPercentage: input.DiscountPercentage,
		ExpirationDate:     input.ExpirationDate,
		UserID:             input.UserID,
		UsageLimit:         input.UsageLimit,
		MinimumPurchase:    input.MinimumPurchase,
	})
	if err != nil {
		apperr.Handle(c, err)
		return
	}
	response.Success(c, coupon)
}

// CreateBulkCoupons 批量发券 (管理员)
func (h *CouponHandler) CreateBulkCoupons(c *gin.Context) {
	var input BulkCouponInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	coupons, err := h.service.CreateBulkCoupons(c.Request.Context(), service.BulkCouponInput{
		UserIDs:            input.UserIDs,
		DiscountPercentage: input.DiscountPercentage,
		ExpirationDate:     input.ExpirationDate,
		UsageLimit:         input.UsageLimit,
		MinimumPurchase:    input.MinimumPurchase,
		CodePrefix:         input.CodePrefix,
	})
	if err != nil {
		apperr.Handle(c, err)
		return
	}
	response.Success(c, coupons)
}

// GetAllCoupons 全部券 (管理员)
func (h *CouponHandler) GetAllCoupons(c *gin.Context) {
	coupons, err := h.service.GetAllCoupons(c.Request.Context())
	if err != nil {
		apperr.Handle(c, err)
		return
	}
	response.Success(c, coupons)
}

// DeactivateCoupon 停用券 (管理员)
func (h *CouponHandler) DeactivateCoupon(c *gin.Context) {
	if err := h.service.DeactivateCoupon(c.Request.Context(), c.Param("id")); err != nil {
		apperr.Handle(c, err)
		return
	}
	response.Success(c, true)
}

// DeleteCoupon 删除券 (管理员)
func (h *CouponHandler) DeleteCoupon(c *gin.Context) {
	if err := h.service.DeleteCoupon(c.Request.Context(), c.Param("id")); err != nil {
		apperr.Handle(c, err)
		return
	}
	response.Success(c, true)
}
