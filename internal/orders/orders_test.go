package orders

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/outlawshop/storefront/internal/config"
	"github.com/outlawshop/storefront/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))
	return db
}

var orderSeq int

func createOrder(t *testing.T, db *gorm.DB, userID uint, createdAt time.Time, productIDs ...uint) *models.Order {
	t.Helper()
	orderSeq++
	o := models.Order{
		OrderNumber: fmt.Sprintf("OUTLAW-260830-%04d", 1000+orderSeq),
		UserID:      userID,
		Status:      models.OrderStatusPending,
		TotalAmount: float64(len(productIDs)) * 10,
		CreatedAt:   createdAt,
	}
	for _, pid := range productIDs {
		o.Items = append(o.Items, models.OrderItem{ProductID: pid, Title: "item", Price: 10, Qty: 1})
	}
	require.NoError(t, db.Create(&o).Error)
	return &o
}

func TestListOrdersForUserNewestFirst(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	old := createOrder(t, db, 1, base, 1)
	recent := createOrder(t, db, 1, base.Add(48*time.Hour), 2)
	createOrder(t, db, 2, base.Add(time.Hour), 3)

	list, err := svc.ListOrdersForUser(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, recent.ID, list[0].ID)
	require.Equal(t, old.ID, list[1].ID)
	require.Len(t, list[0].Items, 1)
}

func TestListOrdersForUserEmpty(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)

	list, err := svc.ListOrdersForUser(context.Background(), 99)
	require.NoError(t, err)
	require.Empty(t, list)
}

func TestHasPurchased(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	now := time.Now()

	createOrder(t, db, 1, now, 10, 11)
	createOrder(t, db, 2, now.Add(time.Second), 12)

	got, err := svc.HasPurchased(context.Background(), 1, 10)
	require.NoError(t, err)
	require.True(t, got)

	got, err = svc.HasPurchased(context.Background(), 1, 12)
	require.NoError(t, err)
	require.False(t, got)

	got, err = svc.HasPurchased(context.Background(), 3, 10)
	require.NoError(t, err)
	require.False(t, got)
}
