package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"shop_api/internal/domain/product/model"
	"shop_api/internal/domain/product/repository"
	"shop_api/internal/pkg/uploader"
	"shop_api/pkg/apperr"
	"shop_api/pkg/cache"
	"shop_api/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	featuredProductsCacheKey = "featured_products"
	featuredCacheTTL         = time.Hour
)

// CreateProductInput 创建商品输入
type CreateProductInput struct {
	Name        string
	Description string
	Price       float64
	Image       string
	Category    string
	Stock       int
}

// UpdateProductInput 更新商品输入，nil 字段不变
type UpdateProductInput struct {
	Name        *string
	Description *string
	Price       *float64
	Image       *string
	Category    *string
	IsFeatured  *bool
	Stock       *int
}

// ProductService 商品服务接口
type ProductService interface {
	GetAllProducts(ctx context.Context, filter repository.ProductFilter) ([]model.Product, error)
	GetProductByID(ctx context.Context, id string) (*model.Product, error)
	GetFeaturedProducts(ctx context.Context) ([]model.Product, error)
	GetProductsByCategory(ctx context.Context, category string) ([]model.Product, error)
	GetRecommendedProducts(ctx context.Context, limit int) ([]model.Product, error)
	CreateProduct(ctx context.Context, input CreateProductInput) (*model.Product, error)
	UpdateProduct(ctx context.Context, id string, input UpdateProductInput) (*model.Product, error)
	ToggleFeatured(ctx context.Context, id string) (*model.Product, error)
	DeleteProduct(ctx context.Context, id string) error
}

// productService 实现
type productService struct {
	repo  repository.ProductRepository
	cache cache.CacheService
}

// NewProductService 创建商品服务
func NewProductService(repo repository.ProductRepository, cacheService cache.CacheService) ProductService {
	return &productService{repo: repo, cache: cacheService}
}

// GetAllProducts 商品列表，支持分类/精选/价格区间筛选
func (s *productService) GetAllProducts(ctx context.Context, filter repository.ProductFilter) ([]model.Product, error) {
	if filter.Category != "" {
		filter.Category = strings.ToLower(filter.Category)
		if !model.ValidCategories[filter.Category] {
			return nil, apperr.Validation(fmt.Sprintf("%s is not a valid category", filter.Category))
		}
	}
	return s.repo.GetList(filter)
}

// GetProductByID 获取单个商品
func (s *productService) GetProductByID(ctx context.Context, id string) (*model.Product, error) {
	product, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Product not found")
		}
		return nil, err
	}
	return product, nil
}

// GetFeaturedProducts 精选商品，1小时缓存，缓存故障时降级直查数据库
func (s *productService) GetFeaturedProducts(ctx context.Context) ([]model.Product, error) {
	var cached []model.Product
	err := s.cache.Get(ctx, featuredProductsCacheKey, &cached)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		logger.Log.Warn("featured products cache read failed", zap.Error(err))
	}

	products, err := s.repo.GetFeatured()
	if err != nil {
		return nil, err
	}

	if len(products) > 0 {
		if err := s.cache.Set(ctx, featuredProductsCacheKey, products, featuredCacheTTL); err != nil {
			logger.Log.Warn("featured products cache write failed", zap.Error(err))
		}
	}

	return products, nil
}

// GetProductsByCategory 按分类获取
func (s *productService) GetProductsByCategory(ctx context.Context, category string) ([]model.Product, error) {
	category = strings.ToLower(category)
	if !model.ValidCategories[category] {
		return nil, apperr.Validation(fmt.Sprintf("%s is not a valid category", category))
	}
	return s.repo.GetByCategory(category)
}

// GetRecommendedProducts 随机推荐商品
func (s *productService) GetRecommendedProducts(ctx context.Context, limit int) ([]model.Product, error) {
	if limit <= 0 {
		limit = 3
	}
	if limit > 20 {
		limit = 20
	}
	return s.repo.GetRandom(limit)
}

// CreateProduct 创建商品，新商品默认非精选
func (s *productService) CreateProduct(ctx context.Context, input CreateProductInput) (*model.Product, error) {
	category := strings.ToLower(input.Category)
	if !model.ValidCategories[category] {
		return nil, apperr.Validation(fmt.Sprintf("%s is not a valid category", input.Category))
	}
	if input.Price < 0 {
		return nil, apperr.Validation("Price cannot be negative")
	}

	product := &model.Product{
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		Image:       input.Image,
		Category:    category,
		IsFeatured:  false,
		Stock:       input.Stock,
	}
	if err := s.repo.Create(product); err != nil {
		return nil, err
	}
	return product, nil
}

// UpdateProduct 更新商品，必要时刷新精选缓存
func (s *productService) UpdateProduct(ctx context.Context, id string, input UpdateProductInput) (*model.Product, error) {
	product, err := s.GetProductByID(ctx, id)
	if err != nil {
		return nil, err
	}

	imageChanged := false
	if input.Image != nil && *input.Image != product.Image {
		// 替换图片时清理旧的 OSS 对象，失败只记日志
		if product.Image != "" && uploader.GlobalUploader != nil {
			if err := uploader.GlobalUploader.DeleteFile(product.Image); err != nil {
				logger.Log.Warn("failed to delete old product image",
					zap.String("product_id", product.ID),
					zap.Error(err),
				)
			}
		}
		product.Image = *input.Image
		imageChanged = true
	}

	if input.Name != nil {
		product.Name = *input.Name
	}
	if input.Description != nil {
		product.Description = *input.Description
	}
	if input.Price != nil {
		if *input.Price < 0 {
			return nil, apperr.Validation("Price cannot be negative")
		}
		product.Price = *input.Price
	}
	if input.Category != nil {
		category := strings.ToLower(*input.Category)
		if !model.ValidCategories[category] {
			return nil, apperr.Validation(fmt.Sprintf("%s is not a valid category", *input.Category))
		}
		product.Category = category
	}
	if input.IsFeatured != nil {
		product.IsFeatured = *input.IsFeatured
	}
	if input.Stock != nil {
		if *input.Stock < 0 {
			return nil, apperr.Validation("Stock cannot be negative")
		}
		product.Stock = *input.Stock
	}

	if err := s.repo.Update(product); err != nil {
		return nil, err
	}

	// 精选状态变化，或精选商品换图，都要刷新缓存
	if input.IsFeatured != nil || (imageChanged && product.IsFeatured) {
		s.refreshFeaturedCache(ctx)
	}

	return product, nil
}

// ToggleFeatured 切换精选状态
func (s *productService) ToggleFeatured(ctx context.Context, id string) (*model.Product, error) {
	product, err := s.GetProductByID(ctx, id)
	if err != nil {
		return nil, err
	}

	product.IsFeatured = !product.IsFeatured
	if err := s.repo.Update(product); err != nil {
		return nil, err
	}

	s.refreshFeaturedCache(ctx)
	return product, nil
}

// DeleteProduct 删除商品及其图片
func (s *productService) DeleteProduct(ctx context.Context, id string) error {
	product, err := s.GetProductByID(ctx, id)
	if err != nil {
		return err
	}

	if product.Image != "" && uploader.GlobalUploader != nil {
		if err := uploader.GlobalUploader.DeleteFile(product.Image); err != nil {
			logger.Log.Warn("failed to delete product image",
				zap.String("product_id", product.ID),
				zap.Error(err),
			)
		}
	}

	if err := s.repo.Delete(product); err != nil {
		return err
	}

	if product.IsFeatured {
		s.refreshFeaturedCache(ctx)
	}
	return nil
}

// refreshFeaturedCache 写操作后主动重建精选缓存，失败只记日志
func (s *productService) refreshFeaturedCache(ctx context.Context) {
	products, err := s.repo.GetFeatured()
	if err != nil {
		logger.Log.Warn("failed to reload featured products", zap.Error(err))
		return
	}

	if err := s.cache.Set(ctx, featuredProductsCacheKey, products, featuredCacheTTL); err != nil {
		logger.Log.Warn("failed to refresh featured products cache", zap.Error(err))
	}
}
