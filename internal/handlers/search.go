package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/blogpost/internal/service"
	"github.com/Skotchmaster/blogpost/internal/util"
)

type Searcher interface {
	Search(ctx context.Context, query string, offset, limit int) (*service.SearchPage, error)
}

type SearchHandler struct {
	Blogs Searcher
}

func (h *SearchHandler) Search(c echo.Context) error {
	q := c.QueryParam("q")
	if q == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query error")
	}

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	from, size := util.Calculate(page, size)

	res, err := h.Blogs.Search(c.Request().Context(), q, from, size)
	if err != nil {
		if errors.Is(err, service.ErrSearchDisabled) {
			return echo.NewHTTPError(http.StatusNotImplemented, "search is not configured")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "search failed")
	}
	return c.JSON(http.StatusOK, echo.Map{"total": res.Total, "blogs": res.Items})
}
