package httpserver

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/blogpost/internal/handlers"
	authmw "github.com/Skotchmaster/blogpost/internal/middleware/auth"
)

type Deps struct {
	AuthHandler   *handlers.AuthHandler
	BlogHandler   *handlers.BlogHandler
	SearchHandler *handlers.SearchHandler
	Gate          *authmw.Gate

	// Ready reports storage health for /health/ready; nil means always ready.
	Ready   func(ctx context.Context) error
	Metrics echo.HandlerFunc
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.Ready != nil {
			if err := d.Ready(c.Request().Context()); err != nil {
				return echo.NewHTTPError(http.StatusServiceUnavailable, "not ready")
			}
		}
		return c.NoContent(http.StatusOK)
	})
	if d.Metrics != nil {
		e.GET("/metrics", d.Metrics)
	}

	e.POST("/register", d.AuthHandler.Register)
	e.POST("/login", d.AuthHandler.Login)
	e.GET("/logout", d.AuthHandler.LogOut)
	e.GET("/refresh", d.AuthHandler.Refresh)

	e.GET("/get/all/blogs", d.BlogHandler.GetAllBlogs)
	e.GET("/get/blog/:id", d.BlogHandler.GetBlog)
	e.GET("/get/user/blogs/:username", d.BlogHandler.GetBlogsByUsername)
	e.GET("/search/blogs", d.SearchHandler.Search)

	protected := d.Gate.RequireAuth

	e.GET("/get/user", d.AuthHandler.CurrentUser, protected)
	e.GET("/get/user/blogs", d.BlogHandler.GetMyBlogs, protected)
	e.POST("/create/blog", d.BlogHandler.CreateBlog, protected)
	e.POST("/edit/blog", d.BlogHandler.EditBlog, protected)
	e.POST("/generate/blog", d.BlogHandler.GenerateBlog, protected)
	e.GET("/delete/blog/:id", d.BlogHandler.DeleteBlog, protected)
}
