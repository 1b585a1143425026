package repository

import (
	"time"

	"shop_api/internal/domain/analytics/model"
	couponModel "shop_api/internal/domain/coupon/model"
	orderModel "shop_api/internal/domain/payment/model"
	productModel "shop_api/internal/domain/product/model"
	userModel "shop_api/internal/domain/user/model"

	"gorm.io/gorm"
)

// AnalyticsRepository 聚合查询仓库
type AnalyticsRepository interface {
	CountUsers() (int64, error)
	CountUsersSince(since time.Time) (int64, error)
	CountActiveUsers(since time.Time) (int64, error)
	CountProducts() (int64, error)
	CountFeaturedProducts() (int64, error)
	CountOutOfStockProducts() (int64, error)
	CountOrders() (int64, error)
	CountOrdersByStatus(status string) (int64, error)
	SumCompletedRevenue() (float64, error)
	SumCompletedRevenueBetween(start, end time.Time) (float64, error)
	SumCompletedDiscount() (float64, error)
	CountActiveCoupons() (int64, error)
	CountUsedCoupons() (int64, error)
	GetDailySales(start, end time.Time) ([]model.DailySales, error)
	GetTopProducts(limit int) ([]model.TopProduct, error)
	GetRevenueByCategory() ([]model.RevenueByCategory, error)
}

// analyticsRepository 实现
type analyticsRepository struct {
	db *gorm.DB
}

// NewAnalyticsRepository 创建新的仓库实例
func NewAnalyticsRepository(db *gorm.DB) AnalyticsRepository {
	return &analyticsRepository{db: db}
}

func (r *analyticsRepository) CountUsers() (int64, error) {
	var count int64
	err := r.db.Model(&userModel.User{}).Count(&count).Error
	return count, err
}

func (r *analyticsRepository) CountUsersSince(since time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&userModel.User{}).Where("created_at >= ?", since).Count(&count).Error
	return count, err
}

// CountActiveUsers 近期下过单的去重用户数
func (r *analyticsRepository) CountActiveUsers(since time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&orderModel.Order{}).
		Where("created_at >= ?", since).
		Distinct("user_id").
		Count(&count).Error
	return count, err
}

func (r *analyticsRepository) CountProducts() (int64, error) {
	var count int64
	err := r.db.Model(&productModel.Product{}).Count(&count).Error
	return count, err
}

func (r *analyticsRepository) CountFeaturedProducts() (int64, error) {
	var count int64
	err := r.db.Model(&productModel.Product{}).Where("is_featured = ?", true).Count(&count).Error
	return count, err
}

func (r *analyticsRepository) CountOutOfStockProducts() (int64, error) {
	var count int64
	err := r.db.Model(&productModel.Product{}).Where("stock <= 0").Count(&count).Error
	return count, err
}

func (r *analyticsRepository) CountOrders() (int64, error) {
	var count int64
	err := r.db.Model(&orderModel.Order{}).Count(&count).Error
	return count, err
}

func (r *analyticsRepository) CountOrdersByStatus(status string) (int64, error) {
	var count int64
	err := r.db.Model(&orderModel.Order{}).Where("status = ?", status).Count(&count).Error
	return count, err
}

func (r *analyticsRepository) SumCompletedRevenue() (float64, error) {
	var total float64
	err := r.db.Model(&orderModel.Order{}).
		Where("status = ?", orderModel.StatusCompleted).
		Select("COALESCE(SUM(total_amount), 0)").
		Scan(&total).Error
	return total, err
}

func (r *analyticsRepository) SumCompletedRevenueBetween(start, end time.Time) (float64, error) {
	var total float64
	err := r.db.Model(&orderModel.Order{}).
		Where("status = ? AND created_at >= ? AND created_at < ?", orderModel.StatusCompleted, start, end).
		Select("COALESCE(SUM(total_amount), 0)").
		Scan(&total).Error
	return total, err
}

func (r *analyticsRepository) SumCompletedDiscount() (float64, error) {
	var total float64
	err := r.db.Model(&orderModel.Order{}).
		Where("status = ? AND discount_amount > 0", orderModel.StatusCompleted).
		Select("COALESCE(SUM(discount_amount), 0)").
		Scan(&total).Error
	return total, err
}

func (r *analyticsRepository) CountActiveCoupons() (int64, error) {
	var count int64
	err := r.db.Model(&couponModel.Coupon{}).Where("is_active = ?", true).Count(&count).Error
	return count, err
}

func (r *analyticsRepository) CountUsedCoupons() (int64, error) {
	var count int64
	err := r.db.Model(&couponModel.Coupon{}).Where("used_count > 0").Count(&count).Error
	return count, err
}

// GetDailySales 按天聚合已完成订单，只返回有数据的天
func (r *analyticsRepository) GetDailySales(start, end time.Time) ([]model.DailySales, error) {
	var rows []model.DailySales
	err := r.db.Model(&orderModel.Order{}).
		Select("to_char(created_at, 'YYYY-MM-DD') AS date, COUNT(*) AS sales, COALESCE(SUM(total_amount), 0) AS revenue, COUNT(*) AS orders").
		Where("status = ? AND created_at >= ? AND created_at <= ?", orderModel.StatusCompleted, start, end).
		Group("to_char(created_at, 'YYYY-MM-DD')").
		Order("date ASC").
		Scan(&rows).Error
	return rows, err
}

// GetTopProducts 按销量排行
func (r *analyticsRepository) GetTopProducts(limit int) ([]model.TopProduct, error) {
	var rows []model.TopProduct
	err := r.db.Table("order_items oi").
		Select("oi.product_id AS product_id, p.name AS name, p.image AS image, SUM(oi.quantity) AS total_sold, SUM(oi.price * oi.quantity) AS revenue").
		Joins("JOIN orders o ON o.id = oi.order_id").
		Joins("JOIN products p ON p.id = oi.product_id").
		Where("o.status = ?", orderModel.StatusCompleted).
		Group("oi.product_id, p.name, p.image").
		Order("total_sold DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

// GetRevenueByCategory 按分类汇总收入，订单在每个分类只计一次
func (r *analyticsRepository) GetRevenueByCategory() ([]model.RevenueByCategory, error) {
	var rows []model.RevenueByCategory
	err := r.db.Table("order_items oi").
		Select("p.category AS category, SUM(oi.price * oi.quantity) AS revenue, COUNT(DISTINCT o.id) AS orders").
		Joins("JOIN orders o ON o.id = oi.order_id").
		Joins("JOIN products p ON p.id = oi.product_id").
		Where("o.status = ?", orderModel.StatusCompleted).
		Group("p.category").
		Order("revenue DESC").
		Scan(&rows).Error
	return rows, err
}
