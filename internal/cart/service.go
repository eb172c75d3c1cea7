package cart

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/outlawshop/storefront/internal/apperr"
	"github.com/outlawshop/storefront/internal/models"
)

type Service struct {
	DB *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{DB: db}
}

// Add applies a signed quantity delta for a product. A positive delta adds
// or tops up a line, a negative one decrements it; a resulting quantity of
// zero or less removes the line entirely. The product is re-fetched so the
// delta is validated against live stock, but the price/title/image snapshot
// is taken only once, on first insert.
//
// On an insufficient-stock failure the cart is left untouched and the error
// carries {available, already in cart}.
func (s *Service) Add(ctx context.Context, c *Cart, productID uint, delta int) error {
	if productID == 0 {
		return apperr.New(apperr.InvalidInput, "product id is required")
	}
	if delta == 0 {
		return apperr.New(apperr.InvalidInput, "quantity delta must not be zero")
	}

	cur := c.Qty(productID)
	newQty := cur + delta

	// Pure decrement to zero or below needs no product lookup.
	if newQty <= 0 {
		c.Remove(productID)
		return nil
	}

	var p models.Product
	if err := s.DB.WithContext(ctx).First(&p, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.New(apperr.NotFound, "product not found")
		}
		return apperr.Wrap(apperr.Internal, "failed to load product", err)
	}
	if !p.IsActive {
		return apperr.New(apperr.NotFound, "product not found")
	}
	if p.Stock <= 0 {
		return &apperr.CartStockError{Available: 0, InCart: cur}
	}
	if newQty > p.Stock {
		return &apperr.CartStockError{Available: p.Stock, InCart: cur}
	}
	if newQty > MaxLineQty {
		return apperr.Newf(apperr.InvalidInput, "at most %d items per product", MaxLineQty)
	}

	if i := c.find(productID); i >= 0 {
		c.Items[i].Qty = newQty
		return nil
	}
	c.Items = append(c.Items, Item{
		ProductID: p.ID,
		Title:     p.Title,
		Price:     p.Price,
		Image:     p.Image,
		Qty:       newQty,
	})
	return nil
}
