package admin

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/outlawshop/storefront/internal/apperr"
	"github.com/outlawshop/storefront/internal/models"
	"github.com/outlawshop/storefront/internal/util"
)

type ProductStats struct {
	TotalProducts    int64 `json:"total_products"`
	ActiveProducts   int64 `json:"active_products"`
	InactiveProducts int64 `json:"inactive_products"`
	TotalSold        int64 `json:"total_sold"`
	NewThisMonth     int64 `json:"new_this_month"`
}

func (s *Service) ProductStats(ctx context.Context) (ProductStats, error) {
	var out ProductStats
	db := s.DB.WithContext(ctx)

	if err := db.Model(&models.Product{}).Count(&out.TotalProducts).Error; err != nil {
		return out, apperr.Wrap(apperr.Internal, "failed to fetch product stats", err)
	}
	if err := db.Model(&models.Product{}).Where("is_active = ?", true).Count(&out.ActiveProducts).Error; err != nil {
		return out, apperr.Wrap(apperr.Internal, "failed to fetch product stats", err)
	}
	out.InactiveProducts = out.TotalProducts - out.ActiveProducts

	// Units sold counts items of paid orders only.
	err := db.Model(&models.OrderItem{}).
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.is_paid = ?", true).
		Select("COALESCE(SUM(order_items.qty), 0)").
		Scan(&out.TotalSold).Error
	if err != nil {
		return out, apperr.Wrap(apperr.Internal, "failed to fetch product stats", err)
	}

	if err := db.Model(&models.Product{}).Where("created_at >= ?", s.startOfMonth()).Count(&out.NewThisMonth).Error; err != nil {
		return out, apperr.Wrap(apperr.Internal, "failed to fetch product stats", err)
	}
	return out, nil
}

type ProductListParams struct {
	Page     int
	Size     int
	Search   string
	Status   string // all, active, inactive
	Category string
}

func (s *Service) ListProducts(ctx context.Context, p ProductListParams) ([]models.Product, Meta, error) {
	offset, limit := util.Calculate(p.Page, p.Size)
	q := s.DB.WithContext(ctx).Model(&models.Product{})

	if p.Search != "" {
		like := "%" + p.Search + "%"
		q = q.Where(
			"LOWER(title) LIKE LOWER(?) OR LOWER(description) LIKE LOWER(?) OR LOWER(category) LIKE LOWER(?)",
			like, like, like,
		)
	}
	switch p.Status {
	case "active":
		q = q.Where("is_active = ?", true)
	case "inactive":
		q = q.Where("is_active = ?", false)
	}
	if p.Category != "" && p.Category != "all" {
		q = q.Where("category = ?", p.Category)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, Meta{}, apperr.Wrap(apperr.Internal, "failed to count products", err)
	}
	var list []models.Product
	if err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&list).Error; err != nil {
		return nil, Meta{}, apperr.Wrap(apperr.Internal, "failed to fetch products", err)
	}
	return list, meta(p.Page, limit, total), nil
}

func (s *Service) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	var p models.Product
	if err := s.DB.WithContext(ctx).First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.NotFound, "product not found")
		}
		return nil, apperr.Wrap(apperr.Internal, "failed to load product", err)
	}
	return &p, nil
}

type ProductInput struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Image       string  `json:"image"`
	Category    string  `json:"category"`
	Stock       int     `json:"stock"`
	Popular     *bool   `json:"popular"`
	IsActive    *bool   `json:"is_active"`
}

func (in *ProductInput) validate() error {
	if in.Title == "" {
		return apperr.WithField(apperr.InvalidInput, "title", "title is required")
	}
	if in.Price < 0 {
		return apperr.WithField(apperr.InvalidInput, "price", "price must not be negative")
	}
	if in.Stock < 0 {
		return apperr.WithField(apperr.InvalidInput, "stock", "stock must not be negative")
	}
	return nil
}

func (s *Service) CreateProduct(ctx context.Context, in ProductInput) (*models.Product, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	p := models.Product{
		Title:       in.Title,
		Description: in.Description,
		Price:       in.Price,
		Image:       in.Image,
		Category:    in.Category,
		Stock:       in.Stock,
		IsActive:    true,
	}
	if in.Popular != nil {
		p.Popular = *in.Popular
	}
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}
	if err := s.DB.WithContext(ctx).Create(&p).Error; err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to create product", err)
	}
	return &p, nil
}

func (s *Service) UpdateProduct(ctx context.Context, id uint, in ProductInput) (*models.Product, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	p, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Title = in.Title
	p.Description = in.Description
	p.Price = in.Price
	p.Image = in.Image
	p.Category = in.Category
	p.Stock = in.Stock
	if in.Popular != nil {
		p.Popular = *in.Popular
	}
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}
	if err := s.DB.WithContext(ctx).Save(p).Error; err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to update product", err)
	}
	return p, nil
}

func (s *Service) ToggleProductActive(ctx context.Context, id uint) (*models.Product, error) {
	p, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	p.IsActive = !p.IsActive
	if err := s.DB.WithContext(ctx).Model(p).Update("is_active", p.IsActive).Error; err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to update product", err)
	}
	return p, nil
}

// DeleteProduct removes the catalog row. Order items keep their snapshots,
// so history survives the delete.
func (s *Service) DeleteProduct(ctx context.Context, id uint) error {
	res := s.DB.WithContext(ctx).Delete(&models.Product{}, id)
	if res.Error != nil {
		return apperr.Wrap(apperr.Internal, "failed to delete product", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.New(apperr.NotFound, "product not found")
	}
	return nil
}

// Categories returns the distinct non-empty product categories.
func (s *Service) Categories(ctx context.Context) ([]string, error) {
	var cats []string
	err := s.DB.WithContext(ctx).
		Model(&models.Product{}).
		Distinct("category").
		Where("category <> ''").
		Order("category ASC").
		Pluck("category", &cats).Error
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to fetch categories", err)
	}
	return cats, nil
}
