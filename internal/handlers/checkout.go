package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/outlawshop/storefront/internal/apperr"
	"github.com/outlawshop/storefront/internal/auth"
	"github.com/outlawshop/storefront/internal/checkout"
	"github.com/outlawshop/storefront/internal/models"
	"github.com/outlawshop/storefront/internal/session"
)

type CheckoutHandler struct {
	Checkout *checkout.Service
	Dev      bool
}

// Show handles GET /checkout: anonymous users are sent to /login, an empty
// cart back to /cart, otherwise the cart summary is returned for the
// checkout form.
func (h *CheckoutHandler) Show(c echo.Context) error {
	if auth.UserID(c) == 0 {
		return c.Redirect(http.StatusSeeOther, "/login")
	}
	st := session.FromEcho(c)
	if st == nil || st.Cart.IsEmpty() {
		return c.Redirect(http.StatusSeeOther, "/cart")
	}
	return c.JSON(http.StatusOK, st.Cart.Summarize())
}

// Submit handles POST /checkout. The session cart is cleared only after the
// order committed; any failure leaves it intact so the customer can retry.
func (h *CheckoutHandler) Submit(c echo.Context) error {
	var shipping models.ShippingInfo
	if err := c.Bind(&shipping); err != nil {
		return fail(c, h.Dev, apperr.Wrap(apperr.InvalidInput, "malformed request body", err))
	}

	st := session.FromEcho(c)
	if st == nil {
		return fail(c, h.Dev, apperr.New(apperr.Internal, "session not initialized"))
	}

	order, err := h.Checkout.Checkout(c.Request().Context(), auth.UserID(c), st.Cart, shipping)
	if err != nil {
		return fail(c, h.Dev, err)
	}
	st.Cart.Clear()

	if wantsJSON(c) {
		return c.JSON(http.StatusCreated, order)
	}
	return c.Redirect(http.StatusSeeOther, "/orders")
}
