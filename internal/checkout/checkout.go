package checkout

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"gorm.io/gorm"

	"github.com/outlawshop/storefront/internal/apperr"
	"github.com/outlawshop/storefront/internal/cart"
	"github.com/outlawshop/storefront/internal/logging"
	"github.com/outlawshop/storefront/internal/models"
	"github.com/outlawshop/storefront/internal/mykafka"
)

const (
	orderNumberPrefix = "OUTLAW"

	// Attempts at a fresh random suffix before giving up on a colliding
	// order number.
	maxNumberAttempts = 5
)

var (
	ErrEmptyCart       = apperr.New(apperr.InvalidInput, "cart is empty")
	ErrUnauthenticated = apperr.New(apperr.Unauthenticated, "login required")
)

// Service converts a session cart into a committed order against live
// inventory. It is the only writer of orders and the only non-admin writer
// of product stock.
type Service struct {
	DB       *gorm.DB
	Producer *mykafka.Producer

	now     func() time.Time
	randInt func(n int) int
}

func NewService(db *gorm.DB, producer *mykafka.Producer) *Service {
	return &Service{
		DB:       db,
		Producer: producer,
		now:      time.Now,
		randInt:  rand.Intn,
	}
}

// orderNumber builds OUTLAW-YYMMDD-NNNN. Uniqueness is enforced by the
// store's unique index, not by this construction.
func (s *Service) orderNumber() string {
	return fmt.Sprintf("%s-%s-%04d",
		orderNumberPrefix,
		s.now().Format("060102"),
		1000+s.randInt(9000),
	)
}

// Checkout validates every cart line against live inventory, atomically
// decrements stock and persists the order, all inside one transaction. The
// customer is charged the cart's snapshotted prices, never re-fetched ones.
//
// Either the whole order commits and every line's stock is decremented, or
// nothing is written. The per-line decrement is conditional on sufficient
// stock, so two checkouts racing over the last unit cannot drive stock
// negative: the loser's update matches zero rows and the transaction rolls
// back with the violation reported.
func (s *Service) Checkout(ctx context.Context, userID uint, c *cart.Cart, shipping models.ShippingInfo) (*models.Order, error) {
	if userID == 0 {
		return nil, ErrUnauthenticated
	}
	if c.IsEmpty() {
		return nil, ErrEmptyCart
	}

	summary := c.Summarize()

	var order models.Order
	txErr := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Validation pass: every line is checked and every violation is
		// collected before anything fails, so the caller can report all
		// offending lines at once.
		var violations []apperr.StockViolation
		for _, line := range c.Items {
			var p models.Product
			if err := tx.First(&p, line.ProductID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperr.Newf(apperr.NotFound, "product no longer available: %s", line.Title)
				}
				return err
			}
			if p.Stock < line.Qty {
				violations = append(violations, apperr.StockViolation{
					Title:     p.Title,
					Requested: line.Qty,
					Available: p.Stock,
				})
			}
		}
		if len(violations) > 0 {
			return &apperr.StockError{Violations: violations}
		}

		// Reserve stock with a conditional decrement per line. A row that
		// changed since the validation pass matches zero rows here; the
		// transaction rollback then undoes any decrements already applied.
		for _, line := range c.Items {
			res := tx.Model(&models.Product{}).
				Where("id = ? AND stock >= ?", line.ProductID, line.Qty).
				UpdateColumn("stock", gorm.Expr("stock - ?", line.Qty))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				var p models.Product
				if err := tx.First(&p, line.ProductID).Error; err != nil {
					return apperr.Newf(apperr.NotFound, "product no longer available: %s", line.Title)
				}
				return &apperr.StockError{Violations: []apperr.StockViolation{{
					Title:     p.Title,
					Requested: line.Qty,
					Available: p.Stock,
				}}}
			}
		}

		for attempt := 0; ; attempt++ {
			order = s.buildOrder(userID, c, shipping, summary.TotalAmount)
			// Savepoint per attempt: a colliding insert must not poison
			// the outer transaction.
			err := tx.Transaction(func(tx2 *gorm.DB) error {
				return tx2.Create(&order).Error
			})
			if err == nil {
				return nil
			}
			if !errors.Is(err, gorm.ErrDuplicatedKey) {
				return err
			}
			if attempt+1 >= maxNumberAttempts {
				return apperr.Wrap(apperr.Internal, "could not allocate a unique order number", err)
			}
		}
	})
	if txErr != nil {
		return nil, txErr
	}

	s.publishOrderCreated(ctx, &order)
	return &order, nil
}

func (s *Service) buildOrder(userID uint, c *cart.Cart, shipping models.ShippingInfo, total float64) models.Order {
	items := make([]models.OrderItem, 0, len(c.Items))
	for _, line := range c.Items {
		items = append(items, models.OrderItem{
			ProductID: line.ProductID,
			Title:     line.Title,
			Price:     line.Price,
			Qty:       line.Qty,
			Image:     line.Image,
		})
	}
	return models.Order{
		OrderNumber:   s.orderNumber(),
		UserID:        userID,
		Items:         items,
		ShippingInfo:  shipping,
		PaymentMethod: models.PaymentCashOnDelivery,
		Status:        models.OrderStatusPending,
		TotalAmount:   total,
		CreatedAt:     s.now(),
	}
}

func (s *Service) publishOrderCreated(ctx context.Context, order *models.Order) {
	event := map[string]interface{}{
		"type":         "order_created",
		"order_number": order.OrderNumber,
		"userID":       order.UserID,
		"total":        order.TotalAmount,
	}
	if err := s.Producer.PublishEvent(ctx, "order_events", fmt.Sprint(order.UserID), event); err != nil {
		logging.FromContext(ctx).Error("kafka publish error", "error", err)
	}
}
