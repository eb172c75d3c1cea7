package catalog

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/outlawshop/storefront/internal/apperr"
	"github.com/outlawshop/storefront/internal/models"
	"github.com/outlawshop/storefront/internal/util"
)

const (
	trendingLimit = 6
	popularLimit  = 8
)

// Service serves the storefront's read-only product views. Admin mutation
// lives in the admin package.
type Service struct {
	DB *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{DB: db}
}

func (s *Service) active(ctx context.Context) *gorm.DB {
	return s.DB.WithContext(ctx).Model(&models.Product{}).Where("is_active = ?", true)
}

// Trending returns the newest active products for the home page.
func (s *Service) Trending(ctx context.Context) ([]models.Product, error) {
	var list []models.Product
	err := s.active(ctx).Order("created_at DESC").Limit(trendingLimit).Find(&list).Error
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to fetch trending products", err)
	}
	return list, nil
}

// Popular returns active products flagged popular.
func (s *Service) Popular(ctx context.Context) ([]models.Product, error) {
	var list []models.Product
	err := s.active(ctx).Where("popular = ?", true).Limit(popularLimit).Find(&list).Error
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to fetch popular products", err)
	}
	return list, nil
}

type ListParams struct {
	Page     int
	Size     int
	Category string
	Search   string
}

type Meta struct {
	Page  int   `json:"page"`
	Pages int   `json:"pages"`
	Total int64 `json:"total"`
	Size  int   `json:"size"`
}

// List returns active products with optional category and free-text
// filters, offset-paginated.
func (s *Service) List(ctx context.Context, p ListParams) ([]models.Product, Meta, error) {
	offset, limit := util.Calculate(p.Page, p.Size)

	q := s.active(ctx)
	if p.Category != "" {
		q = q.Where("category = ?", p.Category)
	}
	if p.Search != "" {
		like := "%" + p.Search + "%"
		q = q.Where("LOWER(title) LIKE LOWER(?) OR LOWER(description) LIKE LOWER(?)", like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, Meta{}, apperr.Wrap(apperr.Internal, "failed to count products", err)
	}

	var list []models.Product
	if err := q.Order("id ASC").Offset(offset).Limit(limit).Find(&list).Error; err != nil {
		return nil, Meta{}, apperr.Wrap(apperr.Internal, "failed to fetch products", err)
	}

	meta := Meta{
		Page:  offset/limit + 1,
		Pages: util.Pages(total, limit),
		Total: total,
		Size:  limit,
	}
	return list, meta, nil
}

// Get returns one active product.
func (s *Service) Get(ctx context.Context, id uint) (*models.Product, error) {
	var p models.Product
	if err := s.DB.WithContext(ctx).First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.NotFound, "product not found")
		}
		return nil, apperr.Wrap(apperr.Internal, "failed to load product", err)
	}
	if !p.IsActive {
		return nil, apperr.New(apperr.NotFound, "product not found")
	}
	return &p, nil
}

type StockStatus struct {
	Available bool `json:"available"`
	Stock     int  `json:"stock"`
	Requested int  `json:"requested"`
}

// CheckStock reports whether the product can satisfy the requested
// quantity right now.
func (s *Service) CheckStock(ctx context.Context, id uint, qty int) (StockStatus, error) {
	if qty < 1 {
		qty = 1
	}
	p, err := s.Get(ctx, id)
	if err != nil {
		return StockStatus{}, err
	}
	return StockStatus{
		Available: p.Stock >= qty,
		Stock:     p.Stock,
		Requested: qty,
	}, nil
}
