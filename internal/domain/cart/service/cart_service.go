package service

import (
	"context"
	"errors"

	"shop_api/internal/domain/cart/model"
	"shop_api/internal/domain/cart/repository"
	productModel "shop_api/internal/domain/product/model"
	productRepo "shop_api/internal/domain/product/repository"
	"shop_api/pkg/apperr"
	"shop_api/pkg/logger"
	"shop_api/pkg/utils"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// TaxRate 购物车预览用的统一税率
const TaxRate = 0.08

// CartService 购物车服务接口
type CartService interface {
	GetCart(ctx context.Context, userID string) (*model.CartSummary, error)
	AddToCart(ctx context.Context, userID, productID string, quantity int) (*model.CartSummary, error)
	UpdateQuantity(ctx context.Context, userID, productID string, quantity int) (*model.CartSummary, error)
	RemoveFromCart(ctx context.Context, userID, productID string) (*model.CartSummary, error)
	ClearCart(ctx context.Context, userID string) error
}

// cartService 实现
type cartService struct {
	repo     repository.CartRepository
	products productRepo.ProductRepository
}

// NewCartService 创建购物车服务
func NewCartService(repo repository.CartRepository, products productRepo.ProductRepository) CartService {
	return &cartService{repo: repo, products: products}
}

// GetCart 获取购物车汇总，已下架商品的条目顺带清理掉
func (s *cartService) GetCart(ctx context.Context, userID string) (*model.CartSummary, error) {
	items, err := s.repo.GetByUser(userID)
	if err != nil {
		return nil, err
	}
	return s.buildSummary(userID, items)
}

// AddToCart 添加商品，已存在则累加数量
func (s *cartService) AddToCart(ctx context.Context, userID, productID string, quantity int) (*model.CartSummary, error) {
	if quantity < 1 {
		return nil, apperr.Validation("Quantity must be at least 1")
	}

	if _, err := s.products.GetByID(productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Product not found")
		}
		return nil, err
	}

	item, err := s.repo.GetItem(userID, productID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		item = &model.CartItem{
			UserID:    userID,
			ProductID: productID,
			Quantity:  quantity,
		}
		if err := s.repo.Create(item); err != nil {
			return nil, err
		}
	} else {
		item.Quantity += quantity
		if err := s.repo.Update(item); err != nil {
			return nil, err
		}
	}

	return s.GetCart(ctx, userID)
}

// UpdateQuantity 修改数量，0 表示移除
func (s *cartService) UpdateQuantity(ctx context.Context, userID, productID string, quantity int) (*model.CartSummary, error) {
	if quantity < 0 {
		return nil, apperr.Validation("Quantity cannot be negative")
	}

	item, err := s.repo.GetItem(userID, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Product not found in cart")
		}
		return nil, err
	}

	if quantity == 0 {
		if err := s.repo.Delete(item); err != nil {
			return nil, err
		}
	} else {
		item.Quantity = quantity
		if err := s.repo.Update(item); err != nil {
			return nil, err
		}
	}

	return s.GetCart(ctx, userID)
}

// RemoveFromCart 移除商品
func (s *cartService) RemoveFromCart(ctx context.Context, userID, productID string) (*model.CartSummary, error) {
	item, err := s.repo.GetItem(userID, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Product not found in cart")
		}
		return nil, err
	}

	if err := s.repo.Delete(item); err != nil {
		return nil, err
	}

	return s.GetCart(ctx, userID)
}

// ClearCart 清空购物车
func (s *cartService) ClearCart(ctx context.Context, userID string) error {
	return s.repo.Clear(userID)
}

// buildSummary 组装汇总：关联商品详情、过滤失效商品、计算税额
func (s *cartService) buildSummary(userID string, items []model.CartItem) (*model.CartSummary, error) {
	productIDs := make([]string, 0, len(items))
	for _, item := range items {
		productIDs = append(productIDs, item.ProductID)
	}

	products, err := s.products.GetByIDs(productIDs)
	if err != nil {
		return nil, err
	}

	productMap := make(map[string]productModel.Product, len(products))
	for _, p := range products {
		productMap[p.ID] = p
	}

	lines := make([]model.CartLine, 0, len(items))
	var stale []string
	var subtotal float64
	totalItems := 0

	for _, item := range items {
		product, ok := productMap[item.ProductID]
		if !ok {
			// 商品已下架，条目失效
			stale = append(stale, item.ProductID)
			continue
		}

		lineSubtotal := utils.Round2(product.Price * float64(item.Quantity))
		lines = append(lines, model.CartLine{
			Product:  product,
			Quantity: item.Quantity,
			Subtotal: lineSubtotal,
		})
		subtotal += lineSubtotal
		totalItems += item.Quantity
	}

	if len(stale) > 0 {
		if err := s.repo.DeleteByProductIDs(userID, stale); err != nil {
			logger.Log.Warn("failed to prune stale cart items",
				zap.String("user_id", userID),
				zap.Error(err),
			)
		}
	}

	subtotal = utils.Round2(subtotal)
	tax := utils.Round2(subtotal * TaxRate)

	return &model.CartSummary{
		Items:      lines,
		TotalItems: totalItems,
		Subtotal:   subtotal,
		Tax:        tax,
		Total:      utils.Round2(subtotal + tax),
	}, nil
}
