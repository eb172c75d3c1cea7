package admin

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/outlawshop/storefront/internal/apperr"
	"github.com/outlawshop/storefront/internal/models"
	"github.com/outlawshop/storefront/internal/util"
)

type ReviewStats struct {
	TotalReviews  int64   `json:"total_reviews"`
	VisibleCount  int64   `json:"visible_count"`
	HiddenCount   int64   `json:"hidden_count"`
	AverageRating float64 `json:"average_rating"`
}

func (s *Service) ReviewStats(ctx context.Context) (ReviewStats, error) {
	var out ReviewStats
	db := s.DB.WithContext(ctx).Model(&models.Review{})

	if err := db.Session(&gorm.Session{}).Count(&out.TotalReviews).Error; err != nil {
		return out, apperr.Wrap(apperr.Internal, "failed to fetch review stats", err)
	}
	if err := db.Session(&gorm.Session{}).Where("is_visible = ?", true).Count(&out.VisibleCount).Error; err != nil {
		return out, apperr.Wrap(apperr.Internal, "failed to fetch review stats", err)
	}
	out.HiddenCount = out.TotalReviews - out.VisibleCount

	if err := db.Session(&gorm.Session{}).Select("COALESCE(AVG(rating), 0)").Scan(&out.AverageRating).Error; err != nil {
		return out, apperr.Wrap(apperr.Internal, "failed to fetch review stats", err)
	}
	return out, nil
}

// ReviewRow joins a review with its author and product for the back office.
type ReviewRow struct {
	ID           uint   `json:"id"`
	UserID       uint   `json:"user_id"`
	Username     string `json:"username"`
	ProductID    uint   `json:"product_id"`
	ProductTitle string `json:"product_title"`
	Rating       int    `json:"rating"`
	Comment      string `json:"comment"`
	IsVisible    bool      `json:"is_visible"`
	CreatedAt    time.Time `json:"created_at"`
}

type ReviewListParams struct {
	Page   int
	Size   int
	Search string // username or product title
	Rating int    // 1..5, 0 means all
}

func (s *Service) ListReviews(ctx context.Context, p ReviewListParams) ([]ReviewRow, Meta, error) {
	offset, limit := util.Calculate(p.Page, p.Size)
	q := s.DB.WithContext(ctx).
		Model(&models.Review{}).
		Joins("JOIN users ON users.id = reviews.user_id").
		Joins("JOIN products ON products.id = reviews.product_id")

	if p.Search != "" {
		like := "%" + p.Search + "%"
		q = q.Where("LOWER(users.username) LIKE LOWER(?) OR LOWER(products.title) LIKE LOWER(?)", like, like)
	}
	if p.Rating >= 1 && p.Rating <= 5 {
		q = q.Where("reviews.rating = ?", p.Rating)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, Meta{}, apperr.Wrap(apperr.Internal, "failed to count reviews", err)
	}
	var rows []ReviewRow
	err := q.Select(
		"reviews.id, reviews.user_id, users.username, reviews.product_id, " +
			"products.title AS product_title, reviews.rating, reviews.comment, " +
			"reviews.is_visible, reviews.created_at",
	).
		Order("reviews.created_at DESC").
		Offset(offset).Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, Meta{}, apperr.Wrap(apperr.Internal, "failed to fetch reviews", err)
	}
	return rows, meta(p.Page, limit, total), nil
}

// ToggleReviewVisibility flips whether a review shows on the product page.
func (s *Service) ToggleReviewVisibility(ctx context.Context, id uint) (*models.Review, error) {
	var r models.Review
	if err := s.DB.WithContext(ctx).First(&r, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.NotFound, "review not found")
		}
		return nil, apperr.Wrap(apperr.Internal, "failed to load review", err)
	}
	r.IsVisible = !r.IsVisible
	if err := s.DB.WithContext(ctx).Model(&r).Update("is_visible", r.IsVisible).Error; err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to update review", err)
	}
	return &r, nil
}

func (s *Service) DeleteReview(ctx context.Context, id uint) error {
	res := s.DB.WithContext(ctx).Delete(&models.Review{}, id)
	if res.Error != nil {
		return apperr.Wrap(apperr.Internal, "failed to delete review", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.New(apperr.NotFound, "review not found")
	}
	return nil
}
