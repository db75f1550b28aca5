package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Skotchmaster/blogpost/internal/events"
	"github.com/Skotchmaster/blogpost/internal/genai"
	"github.com/Skotchmaster/blogpost/internal/logging"
	"github.com/Skotchmaster/blogpost/internal/models"
	"github.com/Skotchmaster/blogpost/internal/repo"
	"github.com/Skotchmaster/blogpost/internal/search"
)

const (
	indexTimeout = 5 * time.Second
	writeTimeout = 5 * time.Second

	defaultGenerateTimeout = 60 * time.Second
)

type BlogStore interface {
	CreateBlog(ctx context.Context, b *models.Blog) error
	GetBlog(ctx context.Context, id string) (*models.Blog, error)
	ReplaceBlog(ctx context.Context, b *models.Blog) error
	DeleteBlog(ctx context.Context, id string) (int64, error)
	ListBlogs(ctx context.Context) ([]models.Blog, error)
	ListBlogsByUsername(ctx context.Context, username string) ([]models.Blog, error)
}

type CostStore interface {
	IncrementUserCost(ctx context.Context, email string, amount float64) error
}

// UsageRecorder receives token accounting for every generation attempt.
type UsageRecorder interface {
	ObserveGeneration(model string, inputTokens, outputTokens int, cost float64)
	GenerationFailed(model string)
}

type BlogService struct {
	Blogs     BlogStore
	Users     CostStore
	Generator genai.Generator
	Pricing   genai.Pricing
	Model     string
	Events    events.Publisher
	// Index is optional; nil disables search and index sync.
	Index search.Indexer
	Usage UsageRecorder
	Now   func() time.Time

	// GenerateTimeout bounds the provider call; zero means one minute.
	GenerateTimeout time.Duration
}

// PostInput carries the client-editable fields of a post.
type PostInput struct {
	ID            string
	Title         string
	Hashtags      string
	Content       string
	GeneratedByAI bool
}

type SearchPage struct {
	Total int64
	Items []models.Blog
}

func (s *BlogService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *BlogService) generateTimeout() time.Duration {
	if s.GenerateTimeout > 0 {
		return s.GenerateTimeout
	}
	return defaultGenerateTimeout
}

func validTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	return nil
}

func (s *BlogService) Create(ctx context.Context, in PostInput, owner *models.User) (*models.Blog, error) {
	l := logging.FromContext(ctx).With("svc", "blog.create")

	if err := validTitle(in.Title); err != nil {
		return nil, err
	}

	blog := models.Blog{
		Title:         in.Title,
		Hashtags:      in.Hashtags,
		Content:       in.Content,
		GeneratedByAI: in.GeneratedByAI,
		User:          owner.Snapshot(),
	}
	blog.StampPosted(s.now())

	if err := s.Blogs.CreateBlog(ctx, &blog); err != nil {
		l.Error("create_blog_error", "status", 500, "error", err)
		return nil, err
	}

	s.sync(ctx, "blog_created", &blog)
	return &blog, nil
}

// Edit replaces the post wholesale. Fields omitted by the client are cleared,
// not merged.
func (s *BlogService) Edit(ctx context.Context, in PostInput, owner *models.User) (*models.Blog, error) {
	l := logging.FromContext(ctx).With("svc", "blog.edit")

	if in.ID == "" {
		return nil, fmt.Errorf("%w: id is required", ErrValidation)
	}
	if err := validTitle(in.Title); err != nil {
		return nil, err
	}

	current, err := s.owned(ctx, in.ID, owner)
	if err != nil {
		return nil, err
	}

	current.Title = in.Title
	current.Hashtags = in.Hashtags
	current.Content = in.Content
	current.GeneratedByAI = in.GeneratedByAI
	current.User = owner.Snapshot()

	if err := s.Blogs.ReplaceBlog(ctx, current); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrBlogNotFound
		}
		l.Error("edit_blog_error", "status", 500, "blog_id", in.ID, "error", err)
		return nil, err
	}

	s.sync(ctx, "blog_updated", current)
	return current, nil
}

func Prompt(title, hashtags string) string {
	return fmt.Sprintf("Generate a blog in markdown format such that title of the blog is %s "+
		"and related hashtags for the title are %s, don't use (markdown, ```) formatting, "+
		"just give me best markdown format", title, hashtags)
}

// Generate stores the provider output as a new post and bills its cost to the
// owner. The insert and the cost increment are separate writes; a failed
// increment is logged and the post is still returned.
//
// Once the provider is called the work no longer follows the request context:
// a client that disconnects still gets its post stored and billed.
func (s *BlogService) Generate(ctx context.Context, title, hashtags string, owner *models.User) (*models.Blog, error) {
	l := logging.FromContext(ctx).With("svc", "blog.generate", "model", s.Model)

	if err := validTitle(title); err != nil {
		return nil, err
	}
	if s.Generator == nil {
		return nil, fmt.Errorf("%w: no generation provider configured", ErrGeneration)
	}

	detached := context.WithoutCancel(ctx)
	gctx, cancel := context.WithTimeout(detached, s.generateTimeout())
	res, err := s.Generator.Generate(gctx, Prompt(title, hashtags))
	cancel()
	if err != nil {
		if s.Usage != nil {
			s.Usage.GenerationFailed(s.Model)
		}
		l.Error("generate_blog_error", "status", 502, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrGeneration, err)
	}

	cost := s.Pricing.Cost(res.InputTokens, res.OutputTokens)
	if s.Usage != nil {
		s.Usage.ObserveGeneration(s.Model, res.InputTokens, res.OutputTokens, cost)
	}

	blog := models.Blog{
		Title:         title,
		Hashtags:      hashtags,
		Content:       res.Text,
		GeneratedByAI: true,
		User:          owner.Snapshot(),
		UserCost:      cost,
	}
	blog.StampPosted(s.now())

	wctx, cancel := context.WithTimeout(detached, writeTimeout)
	defer cancel()

	if err := s.Blogs.CreateBlog(wctx, &blog); err != nil {
		l.Error("generate_blog_error", "status", 500, "reason", "cannot store post", "error", err)
		return nil, err
	}

	if err := s.Users.IncrementUserCost(wctx, owner.Email, cost); err != nil {
		l.Error("user_cost_update_failed", "blog_id", blog.ID, "cost", cost, "error", err)
	}

	l.Info("blog_generated", "blog_id", blog.ID, "input_tokens", res.InputTokens,
		"output_tokens", res.OutputTokens, "cost", cost)

	s.sync(ctx, "blog_generated", &blog)
	return &blog, nil
}

// Delete reports ErrBlogNotFound for unknown ids and for a row that vanished
// between lookup and delete.
func (s *BlogService) Delete(ctx context.Context, id string, owner *models.User) error {
	l := logging.FromContext(ctx).With("svc", "blog.delete")

	blog, err := s.owned(ctx, id, owner)
	if err != nil {
		return err
	}

	n, err := s.Blogs.DeleteBlog(ctx, id)
	if err != nil {
		l.Error("delete_blog_error", "status", 500, "blog_id", id, "error", err)
		return err
	}
	if n != 1 {
		return ErrBlogNotFound
	}

	s.sync(ctx, "blog_deleted", blog)
	return nil
}

func (s *BlogService) Get(ctx context.Context, id string) (*models.Blog, error) {
	blog, err := s.Blogs.GetBlog(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrBlogNotFound
		}
		return nil, err
	}
	return blog, nil
}

func (s *BlogService) ListAll(ctx context.Context) ([]models.Blog, error) {
	return s.Blogs.ListBlogs(ctx)
}

func (s *BlogService) ListByOwner(ctx context.Context, username string) ([]models.Blog, error) {
	return s.Blogs.ListBlogsByUsername(ctx, username)
}

func (s *BlogService) Search(ctx context.Context, query string, offset, limit int) (*SearchPage, error) {
	if s.Index == nil {
		return nil, ErrSearchDisabled
	}
	total, items, err := s.Index.SearchBlogs(ctx, query, offset, limit)
	if err != nil {
		logging.FromContext(ctx).Error("search_error", "status", 500, "query", query, "error", err)
		return nil, err
	}
	return &SearchPage{Total: total, Items: items}, nil
}

func (s *BlogService) owned(ctx context.Context, id string, owner *models.User) (*models.Blog, error) {
	blog, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if blog.User.Email != owner.Email {
		logging.FromContext(ctx).Warn("blog_forbidden", "status", 403, "blog_id", id, "user_id", owner.ID)
		return nil, ErrForbidden
	}
	return blog, nil
}

// sync publishes the mutation and mirrors it into the search index. Neither
// step can fail the request.
func (s *BlogService) sync(ctx context.Context, eventType string, b *models.Blog) {
	publish(ctx, s.Events, events.TopicBlogs, b.ID, map[string]any{
		"type":     eventType,
		"blogID":   b.ID,
		"username": b.User.Username,
	})

	if s.Index == nil {
		return
	}
	ictx, cancel := context.WithTimeout(context.WithoutCancel(ctx), indexTimeout)
	defer cancel()

	var err error
	if eventType == "blog_deleted" {
		err = s.Index.DeleteBlog(ictx, b.ID)
	} else {
		err = s.Index.IndexBlog(ictx, b)
	}
	if err != nil {
		logging.FromContext(ctx).Error("search_sync_error", "event", eventType, "blog_id", b.ID, "error", err)
	}
}
