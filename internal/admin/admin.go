package admin

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/outlawshop/storefront/internal/apperr"
	"github.com/outlawshop/storefront/internal/models"
	"github.com/outlawshop/storefront/internal/util"
)

// Service is the admin back office: dashboard metrics plus management of
// users, products, orders and reviews. Every list is offset-paginated and
// filterable; every mutation is a single-writer admin action.
type Service struct {
	DB *gorm.DB

	now func() time.Time
}

func NewService(db *gorm.DB) *Service {
	return &Service{DB: db, now: time.Now}
}

type Meta struct {
	Page  int   `json:"page"`
	Pages int   `json:"pages"`
	Total int64 `json:"total"`
}

func meta(page, size int, total int64) Meta {
	if page < 1 {
		page = 1
	}
	return Meta{Page: page, Pages: util.Pages(total, size), Total: total}
}

// startOfBucket maps a relative date-range name to its lower bound.
// Unknown names mean no bound.
func (s *Service) startOfBucket(bucket string) (time.Time, bool) {
	now := s.now()
	switch bucket {
	case "today":
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()), true
	case "week":
		return now.Add(-7 * 24 * time.Hour), true
	case "month":
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()), true
	case "year":
		return time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location()), true
	}
	return time.Time{}, false
}

func (s *Service) startOfMonth() time.Time {
	now := s.now()
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
}

type DashboardStats struct {
	TotalUsers    int64   `json:"total_users"`
	TotalProducts int64   `json:"total_products"`
	TotalOrders   int64   `json:"total_orders"`
	TotalRevenue  float64 `json:"total_revenue"`
}

func (s *Service) Dashboard(ctx context.Context) (DashboardStats, error) {
	var out DashboardStats
	db := s.DB.WithContext(ctx)

	if err := db.Model(&models.User{}).Count(&out.TotalUsers).Error; err != nil {
		return out, apperr.Wrap(apperr.Internal, "failed to fetch dashboard stats", err)
	}
	if err := db.Model(&models.Product{}).Count(&out.TotalProducts).Error; err != nil {
		return out, apperr.Wrap(apperr.Internal, "failed to fetch dashboard stats", err)
	}
	if err := db.Model(&models.Order{}).Count(&out.TotalOrders).Error; err != nil {
		return out, apperr.Wrap(apperr.Internal, "failed to fetch dashboard stats", err)
	}
	revenue, err := s.totalRevenue(ctx)
	if err != nil {
		return out, err
	}
	out.TotalRevenue = revenue
	return out, nil
}

// totalRevenue sums paid orders only.
func (s *Service) totalRevenue(ctx context.Context) (float64, error) {
	var revenue float64
	err := s.DB.WithContext(ctx).
		Model(&models.Order{}).
		Where("is_paid = ?", true).
		Select("COALESCE(SUM(total_amount), 0)").
		Scan(&revenue).Error
	if err != nil {
		return 0, apperr.Wrap(apperr.Internal, "failed to calculate revenue", err)
	}
	return revenue, nil
}

func (s *Service) RecentOrders(ctx context.Context, limit int) ([]models.Order, error) {
	if limit <= 0 {
		limit = 5
	}
	var list []models.Order
	err := s.DB.WithContext(ctx).
		Preload("Items").
		Order("created_at DESC").
		Limit(limit).
		Find(&list).Error
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to fetch recent orders", err)
	}
	return list, nil
}

type ChartData struct {
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
}

// OrdersChart counts orders per month over the trailing 12 months.
func (s *Service) OrdersChart(ctx context.Context) (ChartData, error) {
	var out ChartData
	now := s.now()
	for i := 11; i >= 0; i-- {
		monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -i, 0)
		monthEnd := monthStart.AddDate(0, 1, 0)

		var n int64
		err := s.DB.WithContext(ctx).
			Model(&models.Order{}).
			Where("created_at >= ? AND created_at < ?", monthStart, monthEnd).
			Count(&n).Error
		if err != nil {
			return ChartData{}, apperr.Wrap(apperr.Internal, "failed to fetch orders chart", err)
		}
		out.Labels = append(out.Labels, monthStart.Format("Jan"))
		out.Values = append(out.Values, float64(n))
	}
	return out, nil
}

// RevenueChart splits revenue between paid and unpaid orders.
func (s *Service) RevenueChart(ctx context.Context) (ChartData, error) {
	var paid, unpaid float64
	db := s.DB.WithContext(ctx).Model(&models.Order{})

	if err := db.Session(&gorm.Session{}).Where("is_paid = ?", true).
		Select("COALESCE(SUM(total_amount), 0)").Scan(&paid).Error; err != nil {
		return ChartData{}, apperr.Wrap(apperr.Internal, "failed to fetch revenue chart", err)
	}
	if err := db.Session(&gorm.Session{}).Where("is_paid = ?", false).
		Select("COALESCE(SUM(total_amount), 0)").Scan(&unpaid).Error; err != nil {
		return ChartData{}, apperr.Wrap(apperr.Internal, "failed to fetch revenue chart", err)
	}

	if paid == 0 && unpaid == 0 {
		return ChartData{Labels: []string{"No Revenue Yet"}, Values: []float64{1}}, nil
	}
	return ChartData{
		Labels: []string{"Paid Orders", "Unpaid Orders"},
		Values: []float64{paid, unpaid},
	}, nil
}
