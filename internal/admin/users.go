package admin

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/outlawshop/storefront/internal/apperr"
	"github.com/outlawshop/storefront/internal/models"
	"github.com/outlawshop/storefront/internal/util"
)

type UserStats struct {
	TotalUsers    int64 `json:"total_users"`
	ActiveUsers   int64 `json:"active_users"`
	InactiveUsers int64 `json:"inactive_users"`
	NewThisMonth  int64 `json:"new_this_month"`
}

func (s *Service) UserStats(ctx context.Context) (UserStats, error) {
	var out UserStats
	db := s.DB.WithContext(ctx).Model(&models.User{})

	if err := db.Session(&gorm.Session{}).Count(&out.TotalUsers).Error; err != nil {
		return out, apperr.Wrap(apperr.Internal, "failed to fetch user stats", err)
	}
	if err := db.Session(&gorm.Session{}).Where("is_active = ?", false).Count(&out.InactiveUsers).Error; err != nil {
		return out, apperr.Wrap(apperr.Internal, "failed to fetch user stats", err)
	}
	out.ActiveUsers = out.TotalUsers - out.InactiveUsers
	if err := db.Session(&gorm.Session{}).Where("created_at >= ?", s.startOfMonth()).Count(&out.NewThisMonth).Error; err != nil {
		return out, apperr.Wrap(apperr.Internal, "failed to fetch user stats", err)
	}
	return out, nil
}

type UserListParams struct {
	Page   int
	Size   int
	Search string
	Status string // all, active, inactive
}

func (s *Service) ListUsers(ctx context.Context, p UserListParams) ([]models.User, Meta, error) {
	offset, limit := util.Calculate(p.Page, p.Size)
	q := s.DB.WithContext(ctx).Model(&models.User{})

	if p.Search != "" {
		like := "%" + p.Search + "%"
		q = q.Where("LOWER(username) LIKE LOWER(?) OR LOWER(email) LIKE LOWER(?)", like, like)
	}
	switch p.Status {
	case "active":
		q = q.Where("is_active = ?", true)
	case "inactive":
		q = q.Where("is_active = ?", false)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, Meta{}, apperr.Wrap(apperr.Internal, "failed to count users", err)
	}
	var list []models.User
	if err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&list).Error; err != nil {
		return nil, Meta{}, apperr.Wrap(apperr.Internal, "failed to fetch users", err)
	}
	return list, meta(p.Page, limit, total), nil
}

func (s *Service) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	if err := s.DB.WithContext(ctx).First(&u, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.NotFound, "user not found")
		}
		return nil, apperr.Wrap(apperr.Internal, "failed to load user", err)
	}
	return &u, nil
}

// ToggleUserActive flips the account's active flag.
func (s *Service) ToggleUserActive(ctx context.Context, id uint) (*models.User, error) {
	u, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	u.IsActive = !u.IsActive
	if err := s.DB.WithContext(ctx).Model(u).Update("is_active", u.IsActive).Error; err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to update user", err)
	}
	return u, nil
}
