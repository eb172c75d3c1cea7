package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/outlawshop/storefront/internal/apperr"
	"github.com/outlawshop/storefront/internal/auth"
	"github.com/outlawshop/storefront/internal/catalog"
	"github.com/outlawshop/storefront/internal/orders"
	"github.com/outlawshop/storefront/internal/reviews"
	"github.com/outlawshop/storefront/internal/util"
)

type ProductHandler struct {
	Catalog *catalog.Service
	Reviews *reviews.Service
	Orders  *orders.Service
	Dev     bool
}

func (h *ProductHandler) List(c echo.Context) error {
	params := catalog.ListParams{
		Page:     queryInt(c, "page", 1),
		Size:     queryInt(c, "size", util.DefaultPageSize),
		Category: c.QueryParam("category"),
		Search:   c.QueryParam("search"),
	}
	list, meta, err := h.Catalog.List(c.Request().Context(), params)
	if err != nil {
		return fail(c, h.Dev, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"products": list, "meta": meta})
}

// Get returns one product with its visible reviews and whether the current
// visitor is allowed to review it.
func (h *ProductHandler) Get(c echo.Context) error {
	id, err := paramUint(c, "id")
	if err != nil {
		return fail(c, h.Dev, err)
	}
	ctx := c.Request().Context()

	product, err := h.Catalog.Get(ctx, id)
	if err != nil {
		return fail(c, h.Dev, err)
	}
	productReviews, err := h.Reviews.ListVisible(ctx, id)
	if err != nil {
		return fail(c, h.Dev, err)
	}

	canReview := false
	if userID := auth.UserID(c); userID != 0 {
		purchased, err := h.Orders.HasPurchased(ctx, userID, id)
		if err != nil {
			return fail(c, h.Dev, err)
		}
		if purchased {
			reviewed, err := h.Reviews.HasReviewed(ctx, userID, id)
			if err != nil {
				return fail(c, h.Dev, err)
			}
			canReview = !reviewed
		}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"product":    product,
		"reviews":    productReviews,
		"can_review": canReview,
	})
}

func (h *ProductHandler) Trending(c echo.Context) error {
	list, err := h.Catalog.Trending(c.Request().Context())
	if err != nil {
		return fail(c, h.Dev, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"products": list})
}

func (h *ProductHandler) Popular(c echo.Context) error {
	list, err := h.Catalog.Popular(c.Request().Context())
	if err != nil {
		return fail(c, h.Dev, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"products": list})
}

func (h *ProductHandler) CheckStock(c echo.Context) error {
	id, err := paramUint(c, "id")
	if err != nil {
		return fail(c, h.Dev, err)
	}
	status, err := h.Catalog.CheckStock(c.Request().Context(), id, queryInt(c, "qty", 1))
	if err != nil {
		return fail(c, h.Dev, err)
	}
	return c.JSON(http.StatusOK, status)
}

type reviewRequest struct {
	Rating  int    `json:"rating"  form:"rating"`
	Comment string `json:"comment" form:"comment"`
}

func (h *ProductHandler) CreateReview(c echo.Context) error {
	id, err := paramUint(c, "id")
	if err != nil {
		return fail(c, h.Dev, err)
	}
	var req reviewRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, h.Dev, apperr.Wrap(apperr.InvalidInput, "malformed request body", err))
	}

	review, err := h.Reviews.Create(c.Request().Context(), auth.UserID(c), id, req.Rating, req.Comment)
	if err != nil {
		return fail(c, h.Dev, err)
	}
	return c.JSON(http.StatusCreated, review)
}

func (h *ProductHandler) ListReviews(c echo.Context) error {
	id, err := paramUint(c, "id")
	if err != nil {
		return fail(c, h.Dev, err)
	}
	list, err := h.Reviews.ListVisible(c.Request().Context(), id)
	if err != nil {
		return fail(c, h.Dev, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"reviews": list})
}
