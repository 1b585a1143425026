package handler

import (
	"net/http"
	"strconv"

	"shop_api/internal/domain/product/repository"
	"shop_api/internal/domain/product/service"
	"shop_api/pkg/apperr"
	"shop_api/pkg/response"

	"github.com/gin-gonic/gin"
)

// ProductHandler 商品处理器
type ProductHandler struct {
	service service.ProductService
}

// NewProductHandler 创建处理器
func NewProductHandler(service service.ProductService) *ProductHandler {
	return &ProductHandler{service: service}
}

// CreateProductInput 创建商品输入
type CreateProductInput struct {
	Name        string  `json:"name" binding:"required,min=3,max=100"`
	Description string  `json:"description" binding:"required,min=10,max=2000"`
	Price       float64 `json:"price" binding:"required,gte=0"`
	Image       string  `json:"image" binding:"omitempty,url"`
	Category    string  `json:"category" binding:"required"`
	Stock       int     `json:"stock" binding:"gte=0"`
}

// UpdateProductInput 更新商品输入
type UpdateProductInput struct {
	Name        *string  `json:"name" binding:"omitempty,min=3,max=100"`
	Description *string  `json:"description" binding:"omitempty,min=10,max=2000"`
	Price       *float64 `json:"price" binding:"omitempty,gte=0"`
	Image       *string  `json:"image" binding:"omitempty,url"`
	Category    *string  `json:"category"`
	IsFeatured  *bool    `json:"isFeatured"`
	Stock       *int     `json:"stock" binding:"omitempty,gte=0"`
}

// GetProducts 商品列表
// @Summary 获取商品列表 (支持分类/精选/价格筛选)
// @Tags Product
// @Produce json
// @Router /api/products [get]
func (h *ProductHandler) GetProducts(c *gin.Context) {
	var filter repository.ProductFilter
	filter.Category = c.Query("category")

	if v := c.Query("isFeatured"); v != "" {
		featured, err := strconv.ParseBool(v)
		if err != nil {
			response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, "isFeatured must be a boolean")
			return
		}
		filter.IsFeatured = &featured
	}
	if v := c.Query("minPrice"); v != "" {
		price, err := strconv.ParseFloat(v, 64)
		if err != nil {
			response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, "minPrice must be a number")
			return
		}
		filter.MinPrice = &price
	}
	if v := c.Query("maxPrice"); v != "" {
		price, err := strconv.ParseFloat(v, 64)
		if err != nil {
			response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, "maxPrice must be a number")
			return
		}
		filter.MaxPrice = &price
	}

	products, err := h.service.GetAllProducts(c.Request.Context(), filter)
	if err != nil {
		apperr.Handle(c, err)
		return
	}
	response.Success(c, products)
}

// GetProduct 获取单个商品
func (h *ProductHandler) GetProduct(c *gin.Context) {
	product, err := h.service.GetProductByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		apperr.Handle(c, err)
		return
	}
	response.Success(c, product)
}

// GetFeatured 精选商品
func (h *ProductHandler) GetFeatured(c *gin.Context) {
	products, err := h.service.GetFeaturedProducts(c.Request.Context())
	if err != nil {
		apperr.Handle(c, err)
		return
	}
	response.Success(c, products)
}

// GetByCategory 按分类获取商品
func (h *ProductHandler) GetByCategory(c *gin.Context) {
	products, err := h.service.GetProductsByCategory(c.Request.Context(), c.Param("category"))
	if err != nil {
		apperr.Handle(c, err)
		return
	}
	response.Success(c, products)
}

// GetRecommended 推荐商品
func (h *ProductHandler) GetRecommended(c *gin.Context) {
	limit := 3
	if v := c.Query("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, "limit must be a number")
			return
		}
		limit = parsed
	}

	products, err := h.service.GetRecommendedProducts(c.Request.Context(), limit)
	if err != nil {
		apperr.Handle(c, err)
		return
	}
	response.Success(c, products)
}

// CreateProduct 创建商品 (管理员)
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var input CreateProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	product, err := h.service.CreateProduct(c.Request.Context(), service.CreateProductInput{
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		Image:       input.Image,
		Category:    input.Category,
		Stock:       input.Stock,
	})
	if err != nil {
		apperr.Handle(c, err)
		return
	}
	response.Success(c, product)
}

// UpdateProduct 更新商品 (管理员)
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	var input UpdateProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	product, err := h.service.UpdateProduct(c.Request.Context(), c.Param("id"), service.UpdateProductInput{
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		Image:       input.Image,
		Category:    input.Category,
		IsFeatured:  input.IsFeatured,
		Stock:       input.Stock,
	})
	if err != nil {
		apperr.Handle(c, err)
		return
	}
	response.Success(c, product)
}

// ToggleFeatured 切换精选状态 (管理员)
func (h *ProductHandler) ToggleFeatured(c *gin.Context) {
	product, err := h.service.ToggleFeatured(c.Request.Context(), c.Param("id"))
	if err != nil {
		apperr.Handle(c, err)
		return
	}
	response.Success(c, product)
}

// DeleteProduct 删除商品 (管理员)
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	if err := h.service.DeleteProduct(c.Request.Context(), c.Param("id")); err != nil {
		apperr.Handle(c, err)
		return
	}
	response.Success(c, true)
}
