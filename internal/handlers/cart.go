package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/outlawshop/storefront/internal/apperr"
	"github.com/outlawshop/storefront/internal/cart"
	"github.com/outlawshop/storefront/internal/session"
)

type CartHandler struct {
	Cart *cart.Service
	Dev  bool
}

// Add handles GET /cart/add/:productId?qty=N. The quantity is a signed
// delta, default 1; a negative delta decrements and a result of zero drops
// the line. Browsers get a 303 back to /cart, API clients asking for JSON
// get the updated summary.
func (h *CartHandler) Add(c echo.Context) error {
	productID, err := paramUint(c, "productId")
	if err != nil {
		return fail(c, h.Dev, err)
	}
	qty := queryInt(c, "qty", 1)

	st := session.FromEcho(c)
	if st == nil {
		return fail(c, h.Dev, apperr.New(apperr.Internal, "session not initialized"))
	}
	if err := h.Cart.Add(c.Request().Context(), st.Cart, productID, qty); err != nil {
		return fail(c, h.Dev, err)
	}

	if wantsJSON(c) {
		return c.JSON(http.StatusOK, echo.Map{"success": true, "cart": st.Cart.Summarize()})
	}
	return c.Redirect(http.StatusSeeOther, "/cart")
}

// Remove handles GET /cart/remove/:productId. Removing an absent line is a
// no-op success.
func (h *CartHandler) Remove(c echo.Context) error {
	productID, err := paramUint(c, "productId")
	if err != nil {
		return fail(c, h.Dev, err)
	}

	st := session.FromEcho(c)
	if st == nil {
		return fail(c, h.Dev, apperr.New(apperr.Internal, "session not initialized"))
	}
	st.Cart.Remove(productID)

	if wantsJSON(c) {
		return c.JSON(http.StatusOK, echo.Map{"success": true, "cart": st.Cart.Summarize()})
	}
	return c.Redirect(http.StatusSeeOther, "/cart")
}

func (h *CartHandler) Get(c echo.Context) error {
	st := session.FromEcho(c)
	if st == nil {
		return fail(c, h.Dev, apperr.New(apperr.Internal, "session not initialized"))
	}
	return c.JSON(http.StatusOK, st.Cart.Summarize())
}
