package repository

import (
	"shop_api/internal/domain/cart/model"

	"gorm.io/gorm"
)

// CartRepository 接口定义
type CartRepository interface {
	GetByUser(userID string) ([]model.CartItem, error)
	GetItem(userID, productID string) (*model.CartItem, error)
	Create(item *model.CartItem) error
	Update(item *model.CartItem) error
	Delete(item *model.CartItem) error
	DeleteByProductIDs(userID string, productIDs []string) error
	Clear(userID string) error
}

// cartRepository 实现
type cartRepository struct {
	db *gorm.DB
}

// NewCartRepository 创建新的仓库实例
func NewCartRepository(db *gorm.DB) CartRepository {
	return &cartRepository{db: db}
}

// GetByUser 获取用户全部购物车条目
func (r *cartRepository) GetByUser(userID string) ([]model.CartItem, error) {
	var items []model.CartItem
	if err := r.db.Where("user_id = ?", userID).Order("created_at ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// GetItem 获取指定商品条目
func (r *cartRepository) GetItem(userID, productID string) (*model.CartItem, error) {
	var item model.CartItem
	if err := r.db.Where("user_id = ? AND product_id = ?", userID, productID).First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// Create 创建条目
func (r *cartRepository) Create(item *model.CartItem) error {
	return r.db.Create(item).Error
}

// Update 更新条目
func (r *cartRepository) Update(item *model.CartItem) error {
	return r.db.Save(item).Error
}

// Delete 删除条目
func (r *cartRepository) Delete(item *model.CartItem) error {
	return r.db.Delete(item).Error
}

// DeleteByProductIDs 批量删除指定商品的条目 (清理已下架商品)
func (r *cartRepository) DeleteByProductIDs(userID string, productIDs []string) error {
	if len(productIDs) == 0 {
		return nil
	}
	return r.db.Where("user_id = ? AND product_id IN ?", userID, productIDs).
		Delete(&model.CartItem{}).Error
}

// Clear 清空用户购物车
func (r *cartRepository) Clear(userID string) error {
	return r.db.Where("user_id = ?", userID).Delete(&model.CartItem{}).Error
}
