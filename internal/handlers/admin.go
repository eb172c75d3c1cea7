package handlers

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/outlawshop/storefront/internal/admin"
	"github.com/outlawshop/storefront/internal/apperr"
	"github.com/outlawshop/storefront/internal/auth"
	"github.com/outlawshop/storefront/internal/logging"
	"github.com/outlawshop/storefront/internal/mykafka"
	"github.com/outlawshop/storefront/internal/util"
)

// AdminHandler is the back-office HTTP surface. Every route behind it is
// already role-gated by the router.
type AdminHandler struct {
	Admin    *admin.Service
	Producer *mykafka.Producer
	Dev      bool
}

func (h *AdminHandler) publishProductEvent(c echo.Context, eventType string, productID uint) {
	ctx := c.Request().Context()
	event := map[string]interface{}{
		"type":      eventType,
		"productID": productID,
		"adminID":   auth.UserID(c),
	}
	if err := h.Producer.PublishEvent(ctx, "product_events", fmt.Sprint(productID), event); err != nil {
		logging.FromContext(ctx).Error("kafka publish error", "error", err)
	}
}

// --- dashboard ---

func (h *AdminHandler) Dashboard(c echo.Context) error {
	ctx := c.Request().Context()

	stats, err := h.Admin.Dashboard(ctx)
	if err != nil {
		return fail(c, h.Dev, err)
	}
	recent, err := h.Admin.RecentOrders(ctx, 5)
	if err != nil {
		return fail(c, h.Dev, err)
	}
	ordersChart, err := h.Admin.OrdersChart(ctx)
	if err != nil {
		return fail(c, h.Dev, err)
	}
	revenueChart, err := h.Admin.RevenueChart(ctx)
	if err != nil {
		return fail(c, h.Dev, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"stats":         stats,
		"recent_orders": recent,
		"orders_chart":  ordersChart,
		"revenue_chart": revenueChart,
	})
}

// --- users ---

func (h *AdminHandler) ListUsers(c echo.Context) error {
	ctx := c.Request().Context()

	stats, err := h.Admin.UserStats(ctx)
	if err != nil {
		return fail(c, h.Dev, err)
	}
	list, meta, err := h.Admin.ListUsers(ctx, admin.UserListParams{
		Page:   queryInt(c, "page", 1),
		Size:   queryInt(c, "size", util.DefaultPageSize),
		Search: c.QueryParam("search"),
		Status: c.QueryParam("status"),
	})
	if err != nil {
		return fail(c, h.Dev, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"stats": stats, "users": list, "meta": meta})
}

func (h *AdminHandler) GetUser(c echo.Context) error {
	id, err := paramUint(c, "id")
	if err != nil {
		return fail(c, h.Dev, err)
	}
	u, err := h.Admin.GetUser(c.Request().Context(), id)
	if err != nil {
		return fail(c, h.Dev, err)
	}
	return c.JSON(http.StatusOK, u)
}

func (h *AdminHandler) ToggleUserActive(c echo.Context) error {
	id, err := paramUint(c, "id")
	if err != nil {
		return fail(c, h.Dev, err)
	}
	u, err := h.Admin.ToggleUserActive(c.Request().Context(), id)
	if err != nil {
		return fail(c, h.Dev, err)
	}
	return c.JSON(http.StatusOK, u)
}

// --- products ---

func (h *AdminHandler) ListProducts(c echo.Context) error {
	ctx := c.Request().Context()

	stats, err := h.Admin.ProductStats(ctx)
	if err != nil {
		return fail(c, h.Dev, err)
	}
	list, meta, err := h.Admin.ListProducts(ctx, admin.ProductListParams{
		Page:     queryInt(c, "page", 1),
		Size:     queryInt(c, "size", util.DefaultPageSize),
		Search:   c.QueryParam("search"),
		Status:   c.QueryParam("status"),
		Category: c.QueryParam("category"),
	})
	if err != nil {
		return fail(c, h.Dev, err)
	}
	categories, err := h.Admin.Categories(ctx)
	if err != nil {
		return fail(c, h.Dev, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"stats":      stats,
		"products":   list,
		"meta":       meta,
		"categories": categories,
	})
}

func (h *AdminHandler) GetProduct(c echo.Context) error {
	id, err := paramUint(c, "id")
	if err != nil {
		return fail(c, h.Dev, err)
	}
	p, err := h.Admin.GetProduct(c.Request().Context(), id)
	if err != nil {
		return fail(c, h.Dev, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *AdminHandler) CreateProduct(c echo.Context) error {
	var in admin.ProductInput
	if err := c.Bind(&in); err != nil {
		return fail(c, h.Dev, apperr.Wrap(apperr.InvalidInput, "malformed request body", err))
	}
	p, err := h.Admin.CreateProduct(c.Request().Context(), in)
	if err != nil {
		return fail(c, h.Dev, err)
	}
	h.publishProductEvent(c, "product_created", p.ID)
	return c.JSON(http.StatusCreated, p)
}

func (h *AdminHandler) UpdateProduct(c echo.Context) error {
	id, err := paramUint(c, "id")
	if err != nil {
		return fail(c, h.Dev, err)
	}
	var in admin.ProductInput
	if err := c.Bind(&in); err != nil {
		return fail(c, h.Dev, apperr.Wrap(apperr.InvalidInput, "malformed request body", err))
	}
	p, err := h.Admin.UpdateProduct(c.Request().Context(), id, in)
	if err != nil {
		return fail(c, h.Dev, err)
	}
	h.publishProductEvent(c, "product_updated", p.ID)
	return c.JSON(http.StatusOK, p)
}

func (h *AdminHandler) ToggleProductActive(c echo.Context) error {
	id, err := paramUint(c, "id")
	if err != nil {
		return fail(c, h.Dev, err)
	}
	p, err := h.Admin.ToggleProductActive(c.Request().Context(), id)
	if err != nil {
		return fail(c, h.Dev, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *AdminHandler) DeleteProduct(c echo.Context) error {
	id, err := paramUint(c, "id")
	if err != nil {
		return fail(c, h.Dev, err)
	}
	if err := h.Admin.DeleteProduct(c.Request().Context(), id); err != nil {
		return fail(c, h.Dev, err)
	}
	h.publishProductEvent(c, "product_deleted", id)
	return c.JSON(http.StatusOK, echo.Map{"status": "deleted"})
}

// --- orders ---

func (h *AdminHandler) ListOrders(c echo.Context) error {
	ctx := c.Request().Context()

	stats, err := h.Admin.OrderStats(ctx)
	if err != nil {
		return fail(c, h.Dev, err)
	}
	list, meta, err := h.Admin.ListOrders(ctx, admin.OrderListParams{
		Page:      queryInt(c, "page", 1),
		Size:      queryInt(c, "size", util.DefaultPageSize),
		Search:    c.QueryParam("search"),
		Status:    c.QueryParam("status"),
		DateRange: c.QueryParam("dateRange"),
	})
	if err != nil {
		return fail(c, h.Dev, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"stats": stats, "orders": list, "meta": meta})
}

func (h *AdminHandler) GetOrder(c echo.Context) error {
	id, err := paramUint(c, "id")
	if err != nil {
		return fail(c, h.Dev, err)
	}
	o, err := h.Admin.GetOrder(c.Request().Context(), id)
	if err != nil {
		return fail(c, h.Dev, err)
	}
	return c.JSON(http.StatusOK, o)
}

func (h *AdminHandler) UpdateOrder(c echo.Context) error {
	id, err := paramUint(c, "id")
	if err != nil {
		return fail(c, h.Dev, err)
	}
	var in admin.OrderUpdate
	if err := c.Bind(&in); err != nil {
		return fail(c, h.Dev, apperr.Wrap(apperr.InvalidInput, "malformed request body", err))
	}
	o, err := h.Admin.UpdateOrder(c.Request().Context(), id, in)
	if err != nil {
		return fail(c, h.Dev, err)
	}
	return c.JSON(http.StatusOK, o)
}

func (h *AdminHandler) UpdateOrderStatus(c echo.Context) error {
	id, err := paramUint(c, "id")
	if err != nil {
		return fail(c, h.Dev, err)
	}
	var req struct {
		Status string `json:"status" form:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return fail(c, h.Dev, apperr.Wrap(apperr.InvalidInput, "malformed request body", err))
	}
	o, err := h.Admin.UpdateOrderStatus(c.Request().Context(), id, req.Status)
	if err != nil {
		return fail(c, h.Dev, err)
	}
	return c.JSON(http.StatusOK, o)
}

func (h *AdminHandler) ToggleOrderPaid(c echo.Context) error {
	id, err := paramUint(c, "id")
	if err != nil {
		return fail(c, h.Dev, err)
	}
	o, err := h.Admin.ToggleOrderPaid(c.Request().Context(), id)
	if err != nil {
		return fail(c, h.Dev, err)
	}
	return c.JSON(http.StatusOK, o)
}

func (h *AdminHandler) DeleteOrder(c echo.Context) error {
	id, err := paramUint(c, "id")
	if err != nil {
		return fail(c, h.Dev, err)
	}
	if err := h.Admin.DeleteOrder(c.Request().Context(), id); err != nil {
		return fail(c, h.Dev, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "deleted"})
}

// --- reviews ---

func (h *AdminHandler) ListReviews(c echo.Context) error {
	ctx := c.Request().Context()

	stats, err := h.Admin.ReviewStats(ctx)
	if err != nil {
		return fail(c, h.Dev, err)
	}
	list, meta, err := h.Admin.ListReviews(ctx, admin.ReviewListParams{
		Page:   queryInt(c, "page", 1),
		Size:   queryInt(c, "size", util.DefaultPageSize),
		Search: c.QueryParam("search"),
		Rating: queryInt(c, "rating", 0),
	})
	if err != nil {
		return fail(c, h.Dev, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"stats": stats, "reviews": list, "meta": meta})
}

func (h *AdminHandler) ToggleReviewVisibility(c echo.Context) error {
	id, err := paramUint(c, "id")
	if err != nil {
		return fail(c, h.Dev, err)
	}
	r, err := h.Admin.ToggleReviewVisibility(c.Request().Context(), id)
	if err != nil {
		return fail(c, h.Dev, err)
	}
	return c.JSON(http.StatusOK, r)
}

func (h *AdminHandler) DeleteReview(c echo.Context) error {
	id, err := paramUint(c, "id")
	if err != nil {
		return fail(c, h.Dev, err)
	}
	if err := h.Admin.DeleteReview(c.Request().Context(), id); err != nil {
		return fail(c, h.Dev, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "deleted"})
}
