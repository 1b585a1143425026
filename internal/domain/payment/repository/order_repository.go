package repository

import (
	"shop_api/internal/domain/payment/model"

	"gorm.io/gorm"
)

// OrderRepository 接口定义
type OrderRepository interface {
	Create(order *model.Order) error
	GetByID(id string) (*model.Order, error)
	GetByIDAndUser(id, userID string) (*model.Order, error)
	GetBySessionID(sessionID string) (*model.Order, error)
	GetByUser(userID string) ([]model.Order, error)
	GetAll(offset, limit int) ([]model.Order, int64, error)
	UpdateStatus(id, status string) (*model.Order, error)
}

// orderRepository 实现
type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建新的仓库实例
func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

// Create 创建订单及条目
func (r *orderRepository) Create(order *model.Order) error {
	return r.db.Create(order).Error
}

// GetByID 根据ID获取订单
func (r *orderRepository) GetByID(id string) (*model.Order, error) {
	var order model.Order
	if err := r.db.Preload("Items").Where("id = ?", id).First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// GetByIDAndUser 获取用户自己的订单
func (r *orderRepository) GetByIDAndUser(id, userID string) (*model.Order, error) {
	var order model.Order
	err := r.db.Preload("Items").Where("id = ? AND user_id = ?", id, userID).First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// GetBySessionID 根据结账会话查订单 (幂等检查)
func (r *orderRepository) GetBySessionID(sessionID string) (*model.Order, error) {
	var order model.Order
	err := r.db.Preload("Items").Where("session_id = ?", sessionID).First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// GetByUser 用户订单列表
func (r *orderRepository) GetByUser(userID string) ([]model.Order, error) {
	var orders []model.Order
	err := r.db.Preload("Items").Where("user_id = ?", userID).
		Order("created_at DESC").Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// GetAll 全部订单 (管理员，分页)
func (r *orderRepository) GetAll(offset, limit int) ([]model.Order, int64, error) {
	var orders []model.Order
	var total int64

	if err := r.db.Model(&model.Order{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.Preload("Items").Order("created_at DESC").
		Offset(offset).Limit(limit).Find(&orders).Error
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// UpdateStatus 更新订单状态
func (r *orderRepository) UpdateStatus(id, status string) (*model.Order, error) {
	result := r.db.Model(&model.Order{}).Where("id = ?", id).Update("status", status)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.GetByID(id)
}
