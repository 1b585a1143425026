package repository

import (
	"shop_api/internal/domain/product/model"

	"gorm.io/gorm"
)

// ProductFilter 商品列表筛选条件
type ProductFilter struct {
	Category   string
	IsFeatured *bool
	MinPrice   *float64
	MaxPrice   *float64
}

// ProductRepository 接口定义
type ProductRepository interface {
	Create(product *model.Product) error
	GetByID(id string) (*model.Product, error)
	GetByIDs(ids []string) ([]model.Product, error)
	GetList(filter ProductFilter) ([]model.Product, error)
	GetFeatured() ([]model.Product, error)
	GetByCategory(category string) ([]model.Product, error)
	GetRandom(limit int) ([]model.Product, error)
	Update(product *model.Product) error
	Delete(product *model.Product) error
}

// productRepository 实现
type productRepository struct {
	db *gorm.DB
}

// NewProductRepository 创建新的仓库实例
func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

// Create 创建商品
func (r *productRepository) Create(product *model.Product) error {
	return r.db.Create(product).Error
}

// GetByID 根据ID获取商品
func (r *productRepository) GetByID(id string) (*model.Product, error) {
	var product model.Product
	if err := r.db.Where("id = ?", id).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// GetByIDs 批量获取商品 (购物车/下单用)
func (r *productRepository) GetByIDs(ids []string) ([]model.Product, error) {
	var products []model.Product
	if len(ids) == 0 {
		return products, nil
	}
	if err := r.db.Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// GetList 按条件获取商品列表
func (r *productRepository) GetList(filter ProductFilter) ([]model.Product, error) {
	query := r.db.Model(&model.Product{})

	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.IsFeatured != nil {
		query = query.Where("is_featured = ?", *filter.IsFeatured)
	}
	if filter.MinPrice != nil {
		query = query.Where("price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		query = query.Where("price <= ?", *filter.MaxPrice)
	}

	var products []model.Product
	if err := query.Order("created_at DESC").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// GetFeatured 获取精选商品
func (r *productRepository) GetFeatured() ([]model.Product, error) {
	var products []model.Product
	if err := r.db.Where("is_featured = ?", true).Order("created_at DESC").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// GetByCategory 按分类获取商品
func (r *productRepository) GetByCategory(category string) ([]model.Product, error) {
	var products []model.Product
	if err := r.db.Where("category = ?", category).Order("created_at DESC").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// GetRandom 随机取若干商品 (推荐位)
func (r *productRepository) GetRandom(limit int) ([]model.Product, error) {
	var products []model.Product
	if err := r.db.Order("RANDOM()").Limit(limit).Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// Update 更新商品
func (r *productRepository) Update(product *model.Product) error {
	return r.db.Save(product).Error
}

// Delete 删除商品
func (r *productRepository) Delete(product *model.Product) error {
	return r.db.Delete(product).Error
}
