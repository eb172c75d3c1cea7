package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/outlawshop/storefront/internal/auth"
	"github.com/outlawshop/storefront/internal/orders"
)

type OrdersHandler struct {
	Orders *orders.Service
	Dev    bool
}

// List handles GET /orders: the signed-in customer's own orders, newest
// first.
func (h *OrdersHandler) List(c echo.Context) error {
	list, err := h.Orders.ListOrdersForUser(c.Request().Context(), auth.UserID(c))
	if err != nil {
		return fail(c, h.Dev, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"orders": list})
}
