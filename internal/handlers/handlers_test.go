package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/outlawshop/storefront/internal/admin"
	"github.com/outlawshop/storefront/internal/auth"
	"github.com/outlawshop/storefront/internal/cart"
	"github.com/outlawshop/storefront/internal/catalog"
	"github.com/outlawshop/storefront/internal/checkout"
	"github.com/outlawshop/storefront/internal/config"
	"github.com/outlawshop/storefront/internal/handlers"
	"github.com/outlawshop/storefront/internal/hash"
	"github.com/outlawshop/storefront/internal/models"
	"github.com/outlawshop/storefront/internal/orders"
	"github.com/outlawshop/storefront/internal/reviews"
	"github.com/outlawshop/storefront/internal/session"
	httpserver "github.com/outlawshop/storefront/internal/transport/http"
)

type env struct {
	t  *testing.T
	e  *echo.Echo
	db *gorm.DB
}

func newEnv(t *testing.T) *env {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))

	tokens := &auth.TokenService{
		DB:            db,
		JWTSecret:     []byte("test-access-secret"),
		RefreshSecret: []byte("test-refresh-secret"),
	}
	orderSvc := orders.NewService(db)
	catalogSvc := catalog.NewService(db)

	e := echo.New()
	httpserver.Register(e, &httpserver.Deps{
		Session:  session.NewStore(db, time.Hour),
		Tokens:   tokens,
		Auth:     &handlers.AuthHandler{DB: db, Tokens: tokens, Dev: true},
		Cart:     &handlers.CartHandler{Cart: cart.NewService(db), Dev: true},
		Checkout: &handlers.CheckoutHandler{Checkout: checkout.NewService(db, nil), Dev: true},
		Orders:   &handlers.OrdersHandler{Orders: orderSvc, Dev: true},
		Products: &handlers.ProductHandler{Catalog: catalogSvc, Reviews: reviews.NewService(db, orderSvc), Orders: orderSvc, Dev: true},
		Search:   &handlers.SearchHandler{Catalog: catalogSvc, Dev: true},
		Admin:    &handlers.AdminHandler{Admin: admin.NewService(db), Dev: true},
	})

	return &env{t: t, e: e, db: db}
}

func (v *env) do(method, target string, body any, cookies []*http.Cookie) *httptest.ResponseRecorder {
	v.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(v.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set("Accept", echo.MIMEApplicationJSON)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	v.e.ServeHTTP(rec, req)
	return rec
}

// register signs up a user through the API and returns the cookies a
// browser would keep: sid plus both auth tokens.
func (v *env) register(username string) []*http.Cookie {
	v.t.Helper()
	rec := v.do(http.MethodPost, "/register", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "hunter2hunter2",
	}, nil)
	require.Equal(v.t, http.StatusCreated, rec.Code, rec.Body.String())
	return rec.Result().Cookies()
}

func (v *env) loginAdmin() []*http.Cookie {
	v.t.Helper()
	pwHash, err := hash.HashPassword("adminpass123")
	require.NoError(v.t, err)
	require.NoError(v.t, v.db.Create(&models.User{
		Username: "boss", Email: "boss@example.com", PasswordHash: pwHash,
		Role: "admin", IsActive: true,
	}).Error)

	rec := v.do(http.MethodPost, "/login", map[string]string{
		"username": "boss",
		"password": "adminpass123",
	}, nil)
	require.Equal(v.t, http.StatusOK, rec.Code, rec.Body.String())
	return rec.Result().Cookies()
}

func (v *env) createProduct(title string, price float64, stock int) *models.Product {
	v.t.Helper()
	p := models.Product{Title: title, Price: price, Stock: stock, IsActive: true}
	require.NoError(v.t, v.db.Create(&p).Error)
	return &p
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, into any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), into))
}

func TestCartAddAndGet(t *testing.T) {
	v := newEnv(t)
	p := v.createProduct("boots", 189, 5)

	rec := v.do(http.MethodGet, fmt.Sprintf("/cart/add/%d?qty=2", p.ID), nil, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body struct {
		Success bool         `json:"success"`
		Cart    cart.Summary `json:"cart"`
	}
	decode(t, rec, &body)
	require.True(t, body.Success)
	require.Equal(t, 378.0, body.Cart.TotalAmount)
	require.Equal(t, 2, body.Cart.TotalItems)

	cookies := rec.Result().Cookies()
	rec = v.do(http.MethodGet, "/cart", nil, cookies)
	require.Equal(t, http.StatusOK, rec.Code)
	var summary cart.Summary
	decode(t, rec, &summary)
	require.Equal(t, 2, summary.TotalItems)
}

func TestCartAddRedirectsBrowser(t *testing.T) {
	v := newEnv(t)
	p := v.createProduct("boots", 189, 5)

	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/cart/add/%d", p.ID), nil)
	rec := httptest.NewRecorder()
	v.e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/cart", rec.Header().Get("Location"))
}

func TestCartAddInsufficientStock(t *testing.T) {
	v := newEnv(t)
	p := v.createProduct("boots", 189, 1)

	rec := v.do(http.MethodGet, fmt.Sprintf("/cart/add/%d?qty=3", p.ID), nil, nil)
	require.Equal(t, http.StatusConflict, rec.Code)

	var body struct {
		Kind      string `json:"kind"`
		Available int    `json:"available"`
	}
	decode(t, rec, &body)
	require.Equal(t, "insufficient_stock", body.Kind)
	require.Equal(t, 1, body.Available)
}

func TestCartRemove(t *testing.T) {
	v := newEnv(t)
	p := v.createProduct("boots", 189, 5)

	rec := v.do(http.MethodGet, fmt.Sprintf("/cart/add/%d", p.ID), nil, nil)
	cookies := rec.Result().Cookies()

	rec = v.do(http.MethodGet, fmt.Sprintf("/cart/remove/%d", p.ID), nil, cookies)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Success bool         `json:"success"`
		Cart    cart.Summary `json:"cart"`
	}
	decode(t, rec, &body)
	require.True(t, body.Success)
	require.True(t, body.Cart.IsEmpty)

	// Removing again is still a success.
	rec = v.do(http.MethodGet, fmt.Sprintf("/cart/remove/%d", p.ID), nil, cookies)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestCheckoutShowRedirects(t *testing.T) {
	v := newEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/checkout", nil)
	rec := httptest.NewRecorder()
	v.e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/login", rec.Header().Get("Location"))

	cookies := v.register("jesse")
	req = httptest.NewRequest(http.MethodGet, "/checkout", nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec = httptest.NewRecorder()
	v.e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/cart", rec.Header().Get("Location"))
}

func TestCheckoutFlow(t *testing.T) {
	v := newEnv(t)
	p := v.createProduct("boots", 189, 5)
	cookies := v.register("jesse")

	rec := v.do(http.MethodGet, fmt.Sprintf("/cart/add/%d?qty=2", p.ID), nil, cookies)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = v.do(http.MethodPost, "/checkout", models.ShippingInfo{
		FullName: "Jesse Driscoll", Address: "1 Main St", City: "Tucson",
		PostalCode: "85701", Country: "US",
	}, cookies)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var order models.Order
	decode(t, rec, &order)
	require.Equal(t, 378.0, order.TotalAmount)
	require.Regexp(t, `^OUTLAW-\d{6}-\d{4}$`, order.OrderNumber)

	// The cart was cleared on success.
	rec = v.do(http.MethodGet, "/cart", nil, cookies)
	var summary cart.Summary
	decode(t, rec, &summary)
	require.True(t, summary.IsEmpty)

	rec = v.do(http.MethodGet, "/orders", nil, cookies)
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Orders []models.Order `json:"orders"`
	}
	decode(t, rec, &list)
	require.Len(t, list.Orders, 1)
	require.Equal(t, order.OrderNumber, list.Orders[0].OrderNumber)
}

func TestCheckoutStockConflictKeepsCart(t *testing.T) {
	v := newEnv(t)
	p := v.createProduct("boots", 189, 2)
	cookies := v.register("jesse")

	rec := v.do(http.MethodGet, fmt.Sprintf("/cart/add/%d?qty=2", p.ID), nil, cookies)
	require.Equal(t, http.StatusOK, rec.Code)

	// Stock drained between carting and checkout.
	require.NoError(t, v.db.Model(p).Update("stock", 1).Error)

	rec = v.do(http.MethodPost, "/checkout", models.ShippingInfo{FullName: "Jesse"}, cookies)
	require.Equal(t, http.StatusConflict, rec.Code)

	var body struct {
		Kind       string                  `json:"kind"`
		Violations []apperrStockViolations `json:"violations"`
	}
	decode(t, rec, &body)
	require.Equal(t, "insufficient_stock", body.Kind)
	require.Len(t, body.Violations, 1)
	require.Equal(t, "boots", body.Violations[0].Title)
	require.Equal(t, 1, body.Violations[0].Available)

	// Cart untouched so the customer can adjust and retry.
	rec = v.do(http.MethodGet, "/cart", nil, cookies)
	var summary cart.Summary
	decode(t, rec, &summary)
	require.Equal(t, 2, summary.TotalItems)
}

type apperrStockViolations struct {
	Title     string `json:"title"`
	Requested int    `json:"requested"`
	Available int    `json:"available"`
}

func TestRegisterValidationAndDuplicates(t *testing.T) {
	v := newEnv(t)

	rec := v.do(http.MethodPost, "/register", map[string]string{
		"username": "jesse", "email": "jesse@example.com", "password": "short",
	}, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	var body struct {
		Field string `json:"field"`
	}
	decode(t, rec, &body)
	require.Equal(t, "password", body.Field)

	v.register("jesse")
	rec = v.do(http.MethodPost, "/register", map[string]string{
		"username": "jesse", "email": "jesse@example.com", "password": "hunter2hunter2",
	}, nil)
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestLoginWrongPassword(t *testing.T) {
	v := newEnv(t)
	v.register("jesse")

	rec := v.do(http.MethodPost, "/login", map[string]string{
		"username": "jesse", "password": "wrong-password",
	}, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestOrdersRequireLogin(t *testing.T) {
	v := newEnv(t)

	rec := v.do(http.MethodGet, "/orders", nil, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminGateByRole(t *testing.T) {
	v := newEnv(t)

	rec := v.do(http.MethodGet, "/admin/dashboard", nil, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	userCookies := v.register("jesse")
	rec = v.do(http.MethodGet, "/admin/dashboard", nil, userCookies)
	require.Equal(t, http.StatusForbidden, rec.Code)

	adminCookies := v.loginAdmin()
	rec = v.do(http.MethodGet, "/admin/dashboard", nil, adminCookies)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestAdminProductCRUD(t *testing.T) {
	v := newEnv(t)
	adminCookies := v.loginAdmin()

	rec := v.do(http.MethodPost, "/admin/products", map[string]any{
		"title": "boots", "price": 189.0, "stock": 5, "category": "boots",
	}, adminCookies)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var p models.Product
	decode(t, rec, &p)
	require.NotZero(t, p.ID)

	rec = v.do(http.MethodPatch, fmt.Sprintf("/admin/products/%d/toggle", p.ID), nil, adminCookies)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &p)
	require.False(t, p.IsActive)

	// Inactive products disappear from the storefront.
	rec = v.do(http.MethodGet, fmt.Sprintf("/products/%d", p.ID), nil, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = v.do(http.MethodDelete, fmt.Sprintf("/admin/products/%d", p.ID), nil, adminCookies)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = v.do(http.MethodDelete, fmt.Sprintf("/admin/products/%d", p.ID), nil, adminCookies)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReviewGatingOverHTTP(t *testing.T) {
	v := newEnv(t)
	p := v.createProduct("boots", 189, 5)
	cookies := v.register("jesse")

	// No purchase yet.
	rec := v.do(http.MethodPost, fmt.Sprintf("/products/%d/reviews", p.ID), map[string]any{
		"rating": 5, "comment": "great",
	}, cookies)
	require.Equal(t, http.StatusForbidden, rec.Code)

	// Buy it, then review.
	rec = v.do(http.MethodGet, fmt.Sprintf("/cart/add/%d", p.ID), nil, cookies)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = v.do(http.MethodPost, "/checkout", models.ShippingInfo{FullName: "Jesse"}, cookies)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = v.do(http.MethodPost, fmt.Sprintf("/products/%d/reviews", p.ID), map[string]any{
		"rating": 5, "comment": "great",
	}, cookies)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	// One review per customer per product.
	rec = v.do(http.MethodPost, fmt.Sprintf("/products/%d/reviews", p.ID), map[string]any{
		"rating": 1, "comment": "changed my mind",
	}, cookies)
	require.Equal(t, http.StatusConflict, rec.Code)

	// Product page shows the review and flips can_review off for the author.
	rec = v.do(http.MethodGet, fmt.Sprintf("/products/%d", p.ID), nil, cookies)
	require.Equal(t, http.StatusOK, rec.Code)
	var page struct {
		Reviews   []reviews.View `json:"reviews"`
		CanReview bool           `json:"can_review"`
	}
	decode(t, rec, &page)
	require.Len(t, page.Reviews, 1)
	require.Equal(t, "jesse", page.Reviews[0].Username)
	require.False(t, page.CanReview)
}

func TestSearchFallsBackToDatabase(t *testing.T) {
	v := newEnv(t)
	v.createProduct("Frontier Boots", 189, 5)
	v.createProduct("Sundown Cap", 24.5, 5)

	rec := v.do(http.MethodGet, "/search?q=boots", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Total    int64            `json:"total"`
		Products []models.Product `json:"products"`
	}
	decode(t, rec, &body)
	require.EqualValues(t, 1, body.Total)
	require.Equal(t, "Frontier Boots", body.Products[0].Title)

	rec = v.do(http.MethodGet, "/search", nil, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
