package reviews

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/outlawshop/storefront/internal/apperr"
	"github.com/outlawshop/storefront/internal/models"
	"github.com/outlawshop/storefront/internal/orders"
)

type Service struct {
	DB     *gorm.DB
	Orders *orders.Service
}

func NewService(db *gorm.DB, orderSvc *orders.Service) *Service {
	return &Service{DB: db, Orders: orderSvc}
}

// View is a review joined with its author's username for display.
type View struct {
	ID        uint      `json:"id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

// Create stores a review. Only verified purchasers may review, and each
// user gets one review per product; both rules are enforced here rather
// than left to the unique index alone (the index still backs the race).
func (s *Service) Create(ctx context.Context, userID, productID uint, rating int, comment string) (*models.Review, error) {
	if userID == 0 {
		return nil, apperr.New(apperr.Unauthenticated, "login required")
	}
	if rating < 1 || rating > 5 {
		return nil, apperr.WithField(apperr.InvalidInput, "rating", "rating must be between 1 and 5")
	}

	var p models.Product
	if err := s.DB.WithContext(ctx).First(&p, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.NotFound, "product not found")
		}
		return nil, apperr.Wrap(apperr.Internal, "failed to load product", err)
	}

	purchased, err := s.Orders.HasPurchased(ctx, userID, productID)
	if err != nil {
		return nil, err
	}
	if !purchased {
		return nil, apperr.New(apperr.Forbidden, "only customers who bought this product can review it")
	}

	reviewed, err := s.HasReviewed(ctx, userID, productID)
	if err != nil {
		return nil, err
	}
	if reviewed {
		return nil, apperr.New(apperr.Conflict, "you have already reviewed this product")
	}

	review := models.Review{
		ProductID: productID,
		UserID:    userID,
		Rating:    rating,
		Comment:   comment,
		IsVisible: true,
	}
	if err := s.DB.WithContext(ctx).Create(&review).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.New(apperr.Conflict, "you have already reviewed this product")
		}
		return nil, apperr.Wrap(apperr.Internal, "failed to create review", err)
	}
	return &review, nil
}

// HasReviewed reports whether the user already reviewed the product.
func (s *Service) HasReviewed(ctx context.Context, userID, productID uint) (bool, error) {
	var n int64
	err := s.DB.WithContext(ctx).Model(&models.Review{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Count(&n).Error
	if err != nil {
		return false, apperr.Wrap(apperr.Internal, "failed to check existing review", err)
	}
	return n > 0, nil
}

// ListVisible returns the product's visible reviews with author usernames,
// newest first.
func (s *Service) ListVisible(ctx context.Context, productID uint) ([]View, error) {
	var list []View
	err := s.DB.WithContext(ctx).
		Model(&models.Review{}).
		Select("reviews.id, reviews.rating, reviews.comment, reviews.created_at, users.username").
		Joins("JOIN users ON users.id = reviews.user_id").
		Where("reviews.product_id = ? AND reviews.is_visible = ?", productID, true).
		Order("reviews.created_at DESC").
		Scan(&list).Error
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to fetch reviews", err)
	}
	return list, nil
}
