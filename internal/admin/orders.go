package admin

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/outlawshop/storefront/internal/apperr"
	"github.com/outlawshop/storefront/internal/models"
	"github.com/outlawshop/storefront/internal/util"
)

type OrderStats struct {
	TotalOrders  int64   `json:"total_orders"`
	PaidOrders   int64   `json:"paid_orders"`
	UnpaidOrders int64   `json:"unpaid_orders"`
	TotalRevenue float64 `json:"total_revenue"`
	NewThisMonth int64   `json:"new_this_month"`
}

func (s *Service) OrderStats(ctx context.Context) (OrderStats, error) {
	var out OrderStats
	db := s.DB.WithContext(ctx).Model(&models.Order{})

	if err := db.Session(&gorm.Session{}).Count(&out.TotalOrders).Error; err != nil {
		return out, apperr.Wrap(apperr.Internal, "failed to fetch order stats", err)
	}
	if err := db.Session(&gorm.Session{}).Where("is_paid = ?", true).Count(&out.PaidOrders).Error; err != nil {
		return out, apperr.Wrap(apperr.Internal, "failed to fetch order stats", err)
	}
	out.UnpaidOrders = out.TotalOrders - out.PaidOrders

	revenue, err := s.totalRevenue(ctx)
	if err != nil {
		return out, err
	}
	out.TotalRevenue = revenue

	if err := db.Session(&gorm.Session{}).Where("created_at >= ?", s.startOfMonth()).Count(&out.NewThisMonth).Error; err != nil {
		return out, apperr.Wrap(apperr.Internal, "failed to fetch order stats", err)
	}
	return out, nil
}

type OrderListParams struct {
	Page      int
	Size      int
	Search    string // order number or shipping name
	Status    string // all, paid, unpaid
	DateRange string // all, today, week, month, year
}

func (s *Service) ListOrders(ctx context.Context, p OrderListParams) ([]models.Order, Meta, error) {
	offset, limit := util.Calculate(p.Page, p.Size)
	q := s.DB.WithContext(ctx).Model(&models.Order{})

	if p.Search != "" {
		like := "%" + p.Search + "%"
		q = q.Where("LOWER(order_number) LIKE LOWER(?) OR LOWER(shipping_full_name) LIKE LOWER(?)", like, like)
	}
	switch p.Status {
	case "paid":
		q = q.Where("is_paid = ?", true)
	case "unpaid":
		q = q.Where("is_paid = ?", false)
	}
	if from, ok := s.startOfBucket(p.DateRange); ok {
		q = q.Where("created_at >= ?", from)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, Meta{}, apperr.Wrap(apperr.Internal, "failed to count orders", err)
	}
	var list []models.Order
	if err := q.Preload("Items").Order("created_at DESC").Offset(offset).Limit(limit).Find(&list).Error; err != nil {
		return nil, Meta{}, apperr.Wrap(apperr.Internal, "failed to fetch orders", err)
	}
	return list, meta(p.Page, limit, total), nil
}

func (s *Service) GetOrder(ctx context.Context, id uint) (*models.Order, error) {
	var o models.Order
	if err := s.DB.WithContext(ctx).Preload("Items").First(&o, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.NotFound, "order not found")
		}
		return nil, apperr.Wrap(apperr.Internal, "failed to load order", err)
	}
	return &o, nil
}

// OrderUpdate carries the admin-mutable order fields. Line items and the
// total are immutable after creation; only these fields may change.
type OrderUpdate struct {
	Status       *string              `json:"status"`
	IsPaid       *bool                `json:"is_paid"`
	ShippingInfo *models.ShippingInfo `json:"shipping_info"`
}

func (s *Service) UpdateOrder(ctx context.Context, id uint, in OrderUpdate) (*models.Order, error) {
	o, err := s.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if in.Status != nil {
		if !models.ValidOrderStatus(*in.Status) {
			return nil, apperr.WithField(apperr.InvalidInput, "status", "invalid order status")
		}
		updates["status"] = *in.Status
		o.Status = *in.Status
	}
	if in.IsPaid != nil {
		updates["is_paid"] = *in.IsPaid
		o.IsPaid = *in.IsPaid
	}
	if in.ShippingInfo != nil {
		updates["shipping_full_name"] = in.ShippingInfo.FullName
		updates["shipping_address"] = in.ShippingInfo.Address
		updates["shipping_city"] = in.ShippingInfo.City
		updates["shipping_postal_code"] = in.ShippingInfo.PostalCode
		updates["shipping_country"] = in.ShippingInfo.Country
		o.ShippingInfo = *in.ShippingInfo
	}
	if len(updates) == 0 {
		return o, nil
	}
	if err := s.DB.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to update order", err)
	}
	return o, nil
}

func (s *Service) UpdateOrderStatus(ctx context.Context, id uint, status string) (*models.Order, error) {
	return s.UpdateOrder(ctx, id, OrderUpdate{Status: &status})
}

func (s *Service) ToggleOrderPaid(ctx context.Context, id uint) (*models.Order, error) {
	o, err := s.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	o.IsPaid = !o.IsPaid
	if err := s.DB.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Update("is_paid", o.IsPaid).Error; err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to update order", err)
	}
	return o, nil
}

func (s *Service) DeleteOrder(ctx context.Context, id uint) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&models.Order{}, id)
		if res.Error != nil {
			return apperr.Wrap(apperr.Internal, "failed to delete order", res.Error)
		}
		if res.RowsAffected == 0 {
			return apperr.New(apperr.NotFound, "order not found")
		}
		if err := tx.Where("order_id = ?", id).Delete(&models.OrderItem{}).Error; err != nil {
			return apperr.Wrap(apperr.Internal, "failed to delete order items", err)
		}
		return nil
	})
}
