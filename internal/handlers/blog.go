package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	authmw "github.com/Skotchmaster/blogpost/internal/middleware/auth"
	"github.com/Skotchmaster/blogpost/internal/models"
	"github.com/Skotchmaster/blogpost/internal/service"
)

type BlogService interface {
	Create(ctx context.Context, in service.PostInput, owner *models.User) (*models.Blog, error)
	Edit(ctx context.Context, in service.PostInput, owner *models.User) (*models.Blog, error)
	Generate(ctx context.Context, title, hashtags string, owner *models.User) (*models.Blog, error)
	Delete(ctx context.Context, id string, owner *models.User) error
	Get(ctx context.Context, id string) (*models.Blog, error)
	ListAll(ctx context.Context) ([]models.Blog, error)
	ListByOwner(ctx context.Context, username string) ([]models.Blog, error)
}

type BlogHandler struct {
	Blogs BlogService
}

type blogRequest struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Hashtags      string `json:"hashtags"`
	Content       string `json:"content"`
	GeneratedByAI bool   `json:"generated_by_ai"`
}

func (r blogRequest) input() service.PostInput {
	return service.PostInput{
		ID:            r.ID,
		Title:         r.Title,
		Hashtags:      r.Hashtags,
		Content:       r.Content,
		GeneratedByAI: r.GeneratedByAI,
	}
}

type dataResponse struct {
	Data    string `json:"data"`
	Success bool   `json:"success"`
}

func (h *BlogHandler) CreateBlog(c echo.Context) error {
	var req blogRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	// ids are assigned by storage
	req.ID = ""

	b, err := h.Blogs.Create(c.Request().Context(), req.input(), authmw.CurrentUser(c))
	if err != nil {
		return blogError(c, err)
	}
	return c.JSON(http.StatusCreated, b)
}

func (h *BlogHandler) EditBlog(c echo.Context) error {
	var req blogRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	b, err := h.Blogs.Edit(c.Request().Context(), req.input(), authmw.CurrentUser(c))
	if err != nil {
		return blogError(c, err)
	}
	return c.JSON(http.StatusOK, b)
}

func (h *BlogHandler) GenerateBlog(c echo.Context) error {
	var req struct {
		Title    string `json:"title"`
		Hashtags string `json:"hashtags"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	b, err := h.Blogs.Generate(c.Request().Context(), req.Title, req.Hashtags, authmw.CurrentUser(c))
	if err != nil {
		return blogError(c, err)
	}
	return c.JSON(http.StatusCreated, b)
}

func (h *BlogHandler) DeleteBlog(c echo.Context) error {
	if err := h.Blogs.Delete(c.Request().Context(), c.Param("id"), authmw.CurrentUser(c)); err != nil {
		return blogError(c, err)
	}
	return c.JSON(http.StatusOK, dataResponse{Data: "blog deleted", Success: true})
}

func (h *BlogHandler) GetBlog(c echo.Context) error {
	b, err := h.Blogs.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return blogError(c, err)
	}
	return c.JSON(http.StatusOK, b)
}

func (h *BlogHandler) GetAllBlogs(c echo.Context) error {
	items, err := h.Blogs.ListAll(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

func (h *BlogHandler) GetBlogsByUsername(c echo.Context) error {
	items, err := h.Blogs.ListByOwner(c.Request().Context(), c.Param("username"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

func (h *BlogHandler) GetMyBlogs(c echo.Context) error {
	items, err := h.Blogs.ListByOwner(c.Request().Context(), authmw.CurrentUser(c).Username)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

// blogError writes the structured {data,success} body for lookup and
// ownership failures; everything else goes to the error handler.
func blogError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrBlogNotFound):
		return c.JSON(http.StatusNotFound, dataResponse{Data: "blog not found", Success: false})
	case errors.Is(err, service.ErrForbidden):
		return c.JSON(http.StatusForbidden, dataResponse{Data: "blog not owned by user", Success: false})
	case errors.Is(err, service.ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrGeneration):
		return echo.NewHTTPError(http.StatusBadGateway, "blog generation failed")
	default:
		return err
	}
}
