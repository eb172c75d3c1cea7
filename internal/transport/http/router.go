package httpserver

import (
	"github.com/labstack/echo/v4"

	"github.com/outlawshop/storefront/internal/auth"
	"github.com/outlawshop/storefront/internal/handlers"
	"github.com/outlawshop/storefront/internal/session"
)

type Deps struct {
	Session  *session.Store
	Tokens   *auth.TokenService
	Auth     *handlers.AuthHandler
	Cart     *handlers.CartHandler
	Checkout *handlers.CheckoutHandler
	Orders   *handlers.OrdersHandler
	Products *handlers.ProductHandler
	Search   *handlers.SearchHandler
	Admin    *handlers.AdminHandler
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(200) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(200) })

	// Everything a browser touches runs under the session middleware so the
	// cart survives across requests; auth stays optional where guests are
	// welcome.
	store := e.Group("", d.Session.Middleware)

	store.POST("/register", d.Auth.Register)
	store.POST("/login", d.Auth.Login)
	store.POST("/logout", d.Auth.Logout)

	store.GET("/products", d.Products.List)
	store.GET("/products/trending", d.Products.Trending)
	store.GET("/products/popular", d.Products.Popular)
	store.GET("/products/:id", d.Products.Get, d.Tokens.Optional)
	store.GET("/products/:id/stock", d.Products.CheckStock)
	store.GET("/products/:id/reviews", d.Products.ListReviews)
	store.POST("/products/:id/reviews", d.Products.CreateReview, d.Tokens.RequireLogin)
	store.GET("/search", d.Search.Search)

	store.GET("/cart", d.Cart.Get)
	store.GET("/cart/add/:productId", d.Cart.Add)
	store.GET("/cart/remove/:productId", d.Cart.Remove)

	store.GET("/checkout", d.Checkout.Show, d.Tokens.Optional)
	store.POST("/checkout", d.Checkout.Submit, d.Tokens.Optional)

	store.GET("/orders", d.Orders.List, d.Tokens.RequireLogin)

	admin := e.Group("/admin", d.Tokens.AdminOnly)

	admin.GET("/dashboard", d.Admin.Dashboard)

	admin.GET("/users", d.Admin.ListUsers)
	admin.GET("/users/:id", d.Admin.GetUser)
	admin.PATCH("/users/:id/toggle", d.Admin.ToggleUserActive)

	admin.GET("/products", d.Admin.ListProducts)
	admin.POST("/products", d.Admin.CreateProduct)
	admin.GET("/products/:id", d.Admin.GetProduct)
	admin.PUT("/products/:id", d.Admin.UpdateProduct)
	admin.PATCH("/products/:id/toggle", d.Admin.ToggleProductActive)
	admin.DELETE("/products/:id", d.Admin.DeleteProduct)

	admin.GET("/orders", d.Admin.ListOrders)
	admin.GET("/orders/:id", d.Admin.GetOrder)
	admin.PUT("/orders/:id", d.Admin.UpdateOrder)
	admin.PATCH("/orders/:id/status", d.Admin.UpdateOrderStatus)
	admin.PATCH("/orders/:id/paid", d.Admin.ToggleOrderPaid)
	admin.DELETE("/orders/:id", d.Admin.DeleteOrder)

	admin.GET("/reviews", d.Admin.ListReviews)
	admin.PATCH("/reviews/:id/toggle", d.Admin.ToggleReviewVisibility)
	admin.DELETE("/reviews/:id", d.Admin.DeleteReview)
}
