package reviews

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
	"github.com/outlawshop/storefront/internal/orders"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))
	return db
}

type fixture struct {
	svc     *Service
	db      *gorm.DB
	user    *models.User
	product *models.Product
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newTestDB(t)

	user := models.User{Username: "jesse", Email: "jesse@example.com", PasswordHash: "x", Role: "user", IsActive: true}
	require.NoError(t, db.Create(&user).Error)
	product := models.Product{Title: "boots", Price: 189, Stock: 5, IsActive: true}
	require.NoError(t, db.Create(&product).Error)

	return &fixture{
		svc:     NewService(db, orders.NewService(db)),
		db:      db,
		user:    &user,
		product: &product,
	}
}

func (f *fixture) recordPurchase(t *testing.T, userID, productID uint) {
	t.Helper()
	o := models.Order{
		OrderNumber: fmt.Sprintf("OUTLAW-260830-%04d", 1000+int(userID)*10+int(productID)),
		UserID:      userID,
		Status:      models.OrderStatusDelivered,
		TotalAmount: 189,
		Items:       []models.OrderItem{{ProductID: productID, Title: "boots", Price: 189, Qty: 1}},
	}
	require.NoError(t, f.db.Create(&o).Error)
}

func TestCreateRequiresPurchase(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), f.user.ID, f.product.ID, 5, "great boots")
	require.True(t, apperr.IsKind(err, apperr.Forbidden))
}

func TestCreateSuccess(t *testing.T) {
	f := newFixture(t)
	f.recordPurchase(t, f.user.ID, f.product.ID)

	r, err := f.svc.Create(context.Background(), f.user.ID, f.product.ID, 4, "solid")
	require.NoError(t, err)
	require.Equal(t, 4, r.Rating)
	require.True(t, r.IsVisible)

	views, err := f.svc.ListVisible(context.Background(), f.product.ID)
	require.NoError(t, err)
	require.Len(t, views, 1)
	require.Equal(t, "jesse", views[0].Username)
	require.Equal(t, "solid", views[0].Comment)
}

func TestCreateDuplicateRejected(t *testing.T) {
	f := newFixture(t)
	f.recordPurchase(t, f.user.ID, f.product.ID)

	_, err := f.svc.Create(context.Background(), f.user.ID, f.product.ID, 4, "solid")
	require.NoError(t, err)

	_, err = f.svc.Create(context.Background(), f.user.ID, f.product.ID, 5, "changed my mind")
	require.True(t, apperr.IsKind(err, apperr.Conflict))
}

func TestCreateInvalidRating(t *testing.T) {
	f := newFixture(t)

	for _, rating := range []int{0, 6, -1} {
		_, err := f.svc.Create(context.Background(), f.user.ID, f.product.ID, rating, "")
		require.True(t, apperr.IsKind(err, apperr.InvalidInput))
		var ae *apperr.Error
		require.ErrorAs(t, err, &ae)
		require.Equal(t, "rating", ae.Field)
	}
}

func TestCreateUnauthenticated(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), 0, f.product.ID, 5, "")
	require.True(t, apperr.IsKind(err, apperr.Unauthenticated))
}

func TestCreateMissingProduct(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), f.user.ID, 999, 5, "")
	require.True(t, apperr.IsKind(err, apperr.NotFound))
}

func TestListVisibleHidesHiddenReviews(t *testing.T) {
	f := newFixture(t)
	f.recordPurchase(t, f.user.ID, f.product.ID)

	r, err := f.svc.Create(context.Background(), f.user.ID, f.product.ID, 2, "meh")
	require.NoError(t, err)
	require.NoError(t, f.db.Model(r).Update("is_visible", false).Error)

	views, err := f.svc.ListVisible(context.Background(), f.product.ID)
	require.NoError(t, err)
	require.Empty(t, views)
}
