package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"shop_api/internal/domain/analytics/model"
	"shop_api/internal/domain/analytics/repository"
	orderModel "shop_api/internal/domain/payment/model"
	"shop_api/pkg/cache"
	"shop_api/pkg/logger"
	"shop_api/pkg/utils"

	"go.uber.org/zap"
)

const (
	overviewCacheKeyPrefix = "analytics:overview"
	overviewCacheTTL       = 5 * time.Minute

	defaultTopProductsLimit = 10
	maxTopProductsLimit     = 50
)

// AnalyticsService 分析服务接口
type AnalyticsService interface {
	GetAnalyticsOverview(ctx context.Context, start, end time.Time) (*model.Response, error)
	GetDailySales(ctx context.Context, start, end time.Time) ([]model.DailySales, error)
	GetTopProducts(ctx context.Context, limit int) ([]model.TopProduct, error)
	GetRevenueByCategory(ctx context.Context) ([]model.RevenueByCategory, error)
}

// analyticsService 实现
type analyticsService struct {
	repo  repository.AnalyticsRepository
	cache cache.CacheService
}

// NewAnalyticsService 创建分析服务
func NewAnalyticsService(repo repository.AnalyticsRepository, cacheService cache.CacheService) AnalyticsService {
	return &analyticsService{repo: repo, cache: cacheService}
}

// GetAnalyticsOverview 完整分析数据，按日期范围缓存5分钟
func (s *analyticsService) GetAnalyticsOverview(ctx context.Context, start, end time.Time) (*model.Response, error) {
	cacheKey := fmt.Sprintf("%s:%s:%s", overviewCacheKeyPrefix,
		start.Format("2006-01-02"), end.Format("2006-01-02"))

	var cached model.Response
	if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
		return &cached, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		logger.Log.Warn("analytics cache read failed", zap.Error(err))
	}

	overview, err := s.buildOverview()
	if err != nil {
		return nil, err
	}

	dailySales, err := s.GetDailySales(ctx, start, end)
	if err != nil {
		return nil, err
	}

	topProducts, err := s.GetTopProducts(ctx, defaultTopProductsLimit)
	if err != nil {
		return nil, err
	}

	revenueByCategory, err := s.GetRevenueByCategory(ctx)
	if err != nil {
		return nil, err
	}

	result := &model.Response{
		Overview:          *overview,
		DailySales:        dailySales,
		TopProducts:       topProducts,
		RevenueByCategory: revenueByCategory,
	}

	if err := s.cache.Set(ctx, cacheKey, result, overviewCacheTTL); err != nil {
		logger.Log.Warn("analytics cache write failed", zap.Error(err))
	}

	return result, nil
}

// GetDailySales 按天销售序列，范围内没有订单的日期补零
func (s *analyticsService) GetDailySales(ctx context.Context, start, end time.Time) ([]model.DailySales, error) {
	rows, err := s.repo.GetDailySales(start, end)
	if err != nil {
		return nil, err
	}

	byDate := make(map[string]model.DailySales, len(rows))
	for _, row := range rows {
		row.Revenue = utils.Round2(row.Revenue)
		byDate[row.Date] = row
	}

	var series []model.DailySales
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		date := d.Format("2006-01-02")
		if row, ok := byDate[date]; ok {
			series = append(series, row)
		} else {
			series = append(series, model.DailySales{Date: date})
		}
	}

	return series, nil
}

// GetTopProducts 销量排行
func (s *analyticsService) GetTopProducts(ctx context.Context, limit int) ([]model.TopProduct, error) {
	if limit <= 0 {
		limit = defaultTopProductsLimit
	}
	if limit > maxTopProductsLimit {
		limit = maxTopProductsLimit
	}

	rows, err := s.repo.GetTopProducts(limit)
	if err != nil {
		return nil, err
	}

	for i := range rows {
		rows[i].Revenue = utils.Round2(rows[i].Revenue)
	}
	return rows, nil
}

// GetRevenueByCategory 分类收入占比
func (s *analyticsService) GetRevenueByCategory(ctx context.Context) ([]model.RevenueByCategory, error) {
	rows, err := s.repo.GetRevenueByCategory()
	if err != nil {
		return nil, err
	}

	var totalRevenue float64
	for _, row := range rows {
		totalRevenue += row.Revenue
	}

	for i := range rows {
		rows[i].Revenue = utils.Round2(rows[i].Revenue)
		if totalRevenue > 0 {
			rows[i].Percentage = utils.Round2(rows[i].Revenue / totalRevenue * 100)
		}
	}
	return rows, nil
}

// buildOverview 汇总各维度计数
func (s *analyticsService) buildOverview() (*model.Overview, error) {
	now := time.Now()
	startOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	startOfLastMonth := startOfMonth.AddDate(0, -1, 0)
	thirtyDaysAgo := now.AddDate(0, 0, -30)

	totalUsers, err := s.repo.CountUsers()
	if err != nil {
		return nil, err
	}
	newThisMonth, err := s.repo.CountUsersSince(startOfMonth)
	if err != nil {
		return nil, err
	}
	activeUsers, err := s.repo.CountActiveUsers(thirtyDaysAgo)
	if err != nil {
		return nil, err
	}

	totalProducts, err := s.repo.CountProducts()
	if err != nil {
		return nil, err
	}
	featuredProducts, err := s.repo.CountFeaturedProducts()
	if err != nil {
		return nil, err
	}
	outOfStock, err := s.repo.CountOutOfStockProducts()
	if err != nil {
		return nil, err
	}

	totalOrders, err := s.repo.CountOrders()
	if err != nil {
		return nil, err
	}
	completedOrders, err := s.repo.CountOrdersByStatus(orderModel.StatusCompleted)
	if err != nil {
		return nil, err
	}
	pendingOrders, err := s.repo.CountOrdersByStatus(orderModel.StatusPending)
	if err != nil {
		return nil, err
	}
	cancelledOrders, err := s.repo.CountOrdersByStatus(orderModel.StatusCancelled)
	if err != nil {
		return nil, err
	}

	totalRevenue, err := s.repo.SumCompletedRevenue()
	if err != nil {
		return nil, err
	}
	thisMonth, err := s.repo.SumCompletedRevenueBetween(startOfMonth, now)
	if err != nil {
		return nil, err
	}
	lastMonth, err := s.repo.SumCompletedRevenueBetween(startOfLastMonth, startOfMonth)
	if err != nil {
		return nil, err
	}

	// 上月没有收入时增长率按 0 处理，避免除零
	var growth float64
	if lastMonth > 0 {
		growth = utils.Round2((thisMonth - lastMonth) / lastMonth * 100)
	}

	activeCoupons, err := s.repo.CountActiveCoupons()
	if err != nil {
		return nil, err
	}
	usedCoupons, err := s.repo.CountUsedCoupons()
	if err != nil {
		return nil, err
	}
	totalDiscount, err := s.repo.SumCompletedDiscount()
	if err != nil {
		return nil, err
	}

	return &model.Overview{
		Users: model.UserStats{
			Total:        totalUsers,
			NewThisMonth: newThisMonth,
			ActiveUsers:  activeUsers,
		},
		Products: model.ProductStats{
			Total:      totalProducts,
			Featured:   featuredProducts,
			OutOfStock: outOfStock,
		},
		Sales: model.SalesStats{
			TotalOrders:     totalOrders,
			CompletedOrders: completedOrders,
			PendingOrders:   pendingOrders,
			CancelledOrders: cancelledOrders,
		},
		Revenue: model.RevenueStats{
			Total:     utils.Round2(totalRevenue),
			ThisMonth: utils.Round2(thisMonth),
			LastMonth: utils.Round2(lastMonth),
			Growth:    growth,
		},
		Coupons: model.CouponStats{
			Active:        activeCoupons,
			Used:          usedCoupons,
			TotalDiscount: utils.Round2(totalDiscount),
		},
	}, nil
}
