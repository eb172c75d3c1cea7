package orders

import (
	"context"

	"gorm.io/gorm"

	"github.com/outlawshop/storefront/internal/apperr"
	"github.com/outlawshop/storefront/internal/models"
)

// Service is the read side of the order store: listing a user's purchases
// and answering the purchase-history question that gates reviews.
type Service struct {
	DB *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{DB: db}
}

// ListOrdersForUser returns the user's orders with their items, newest
// first.
func (s *Service) ListOrdersForUser(ctx context.Context, userID uint) ([]models.Order, error) {
	var list []models.Order
	err := s.DB.WithContext(ctx).
		Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&list).Error
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to fetch orders", err)
	}
	return list, nil
}

// HasPurchased reports whether any of the user's orders contains a line
// referencing the product.
func (s *Service) HasPurchased(ctx context.Context, userID, productID uint) (bool, error) {
	var n int64
	err := s.DB.WithContext(ctx).
		Model(&models.OrderItem{}).
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.user_id = ? AND order_items.product_id = ?", userID, productID).
		Count(&n).Error
	if err != nil {
		return false, apperr.Wrap(apperr.Internal, "failed to check purchase history", err)
	}
	return n > 0, nil
}
