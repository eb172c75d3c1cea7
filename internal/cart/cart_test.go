package cart

import (
	"context"
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/outlawshop/storefront/internal/apperr"
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

func createProduct(t *testing.T, db *gorm.DB, title string, price float64, stock int) *models.Product {
	t.Helper()
	p := models.Product{Title: title, Price: price, Stock: stock, IsActive: true}
	require.NoError(t, db.Create(&p).Error)
	return &p
}

func TestSummarizeEmpty(t *testing.T) {
	c := New()
	s := c.Summarize()
	require.True(t, s.IsEmpty)
	require.Empty(t, s.Items)
	require.Zero(t, s.TotalAmount)
	require.Zero(t, s.TotalItems)
}

func TestSummarizeTotals(t *testing.T) {
	c := &Cart{Items: []Item{
		{ProductID: 1, Title: "boots", Price: 100, Qty: 2},
		{ProductID: 2, Title: "cap", Price: 24.5, Qty: 1},
	}}
	s := c.Summarize()
	require.False(t, s.IsEmpty)
	require.Len(t, s.Items, 2)
	require.Equal(t, 200.0, s.Items[0].Subtotal)
	require.Equal(t, 224.5, s.TotalAmount)
	require.Equal(t, 3, s.TotalItems)
}

func TestRemoveAbsentIsNoOp(t *testing.T) {
	c := &Cart{Items: []Item{{ProductID: 1, Qty: 1}}}
	c.Remove(42)
	require.Len(t, c.Items, 1)

	c.Remove(1)
	require.True(t, c.IsEmpty())
}

func TestAddNewLineSnapshotsProduct(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	p := createProduct(t, db, "boots", 189, 10)

	c := New()
	require.NoError(t, svc.Add(context.Background(), c, p.ID, 2))
	require.Len(t, c.Items, 1)
	require.Equal(t, "boots", c.Items[0].Title)
	require.Equal(t, 189.0, c.Items[0].Price)
	require.Equal(t, 2, c.Items[0].Qty)

	// Later product edits must not touch the snapshot.
	require.NoError(t, db.Model(p).Update("price", 250).Error)
	require.NoError(t, svc.Add(context.Background(), c, p.ID, 1))
	require.Equal(t, 189.0, c.Items[0].Price)
	require.Equal(t, 3, c.Items[0].Qty)
}

func TestAddDecrementToZeroRemovesLine(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	p := createProduct(t, db, "boots", 189, 10)

	c := New()
	require.NoError(t, svc.Add(context.Background(), c, p.ID, 2))
	require.NoError(t, svc.Add(context.Background(), c, p.ID, -2))
	require.True(t, c.IsEmpty())

	// Decrement below zero on an absent line is also fine.
	require.NoError(t, svc.Add(context.Background(), c, p.ID, -5))
	require.True(t, c.IsEmpty())
}

func TestAddZeroDeltaRejected(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	p := createProduct(t, db, "boots", 189, 10)

	c := New()
	err := svc.Add(context.Background(), c, p.ID, 0)
	require.True(t, apperr.IsKind(err, apperr.InvalidInput))
}

func TestAddInsufficientStockLeavesCartUntouched(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	p := createProduct(t, db, "boots", 189, 3)

	c := New()
	require.NoError(t, svc.Add(context.Background(), c, p.ID, 2))

	err := svc.Add(context.Background(), c, p.ID, 2)
	require.Error(t, err)
	var se *apperr.CartStockError
	require.ErrorAs(t, err, &se)
	require.Equal(t, 3, se.Available)
	require.Equal(t, 2, se.InCart)
	require.Equal(t, 2, c.Qty(p.ID))
}

func TestAddOutOfStockProduct(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	p := createProduct(t, db, "boots", 189, 0)

	c := New()
	err := svc.Add(context.Background(), c, p.ID, 1)
	var se *apperr.CartStockError
	require.ErrorAs(t, err, &se)
	require.Equal(t, 0, se.Available)
	require.True(t, c.IsEmpty())
}

func TestAddInactiveProductNotFound(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	p := createProduct(t, db, "boots", 189, 10)
	require.NoError(t, db.Model(p).Update("is_active", false).Error)

	c := New()
	err := svc.Add(context.Background(), c, p.ID, 1)
	require.True(t, apperr.IsKind(err, apperr.NotFound))
}

func TestAddMissingProductNotFound(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)

	c := New()
	err := svc.Add(context.Background(), c, 999, 1)
	require.True(t, apperr.IsKind(err, apperr.NotFound))
}

func TestAddMaxLineQty(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	p := createProduct(t, db, "boots", 189, 500)

	c := New()
	require.NoError(t, svc.Add(context.Background(), c, p.ID, MaxLineQty))

	err := svc.Add(context.Background(), c, p.ID, 1)
	require.True(t, apperr.IsKind(err, apperr.InvalidInput))
	require.Equal(t, MaxLineQty, c.Qty(p.ID))
}

func TestInsertionOrderPreserved(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	a := createProduct(t, db, "a", 10, 10)
	b := createProduct(t, db, "b", 20, 10)

	c := New()
	require.NoError(t, svc.Add(context.Background(), c, a.ID, 1))
	require.NoError(t, svc.Add(context.Background(), c, b.ID, 1))
	require.NoError(t, svc.Add(context.Background(), c, a.ID, 1))

	require.Equal(t, a.ID, c.Items[0].ProductID)
	require.Equal(t, b.ID, c.Items[1].ProductID)
}
