package handlers

import (
	"net/http"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"

	"github.com/outlawshop/storefront/internal/apperr"
	"github.com/outlawshop/storefront/internal/catalog"
	"github.com/outlawshop/storefront/internal/search"
	"github.com/outlawshop/storefront/internal/util"
)

type SearchHandler struct {
	ES      *elasticsearch.Client
	Index   string
	Catalog *catalog.Service
	Dev     bool
}

// Search handles GET /search?q=. With elasticsearch configured it runs a
// fuzzy multi-field query; without it, it degrades to the catalog's LIKE
// filter so the endpoint keeps working in minimal deployments.
func (h *SearchHandler) Search(c echo.Context) error {
	q := c.QueryParam("q")
	if q == "" {
		return fail(c, h.Dev, apperr.WithField(apperr.InvalidInput, "q", "search query is required"))
	}

	page := queryInt(c, "page", 1)
	size := queryInt(c, "size", util.DefaultPageSize)
	ctx := c.Request().Context()

	if h.ES == nil {
		list, meta, err := h.Catalog.List(ctx, catalog.ListParams{Page: page, Size: size, Search: q})
		if err != nil {
			return fail(c, h.Dev, err)
		}
		return c.JSON(http.StatusOK, echo.Map{"total": meta.Total, "products": list})
	}

	from, limit := util.Calculate(page, size)
	total, products, err := search.Products(ctx, h.ES, h.Index, q, from, limit)
	if err != nil {
		return fail(c, h.Dev, apperr.Wrap(apperr.Internal, "search failed", err))
	}
	return c.JSON(http.StatusOK, echo.Map{"total": total, "products": products})
}
