package repo

import (
	"context"

	"github.com/Skotchmaster/blogpost/internal/models"
)

func (r *GormRepo) CreateBlog(ctx context.Context, b *models.Blog) error {
	return r.DB.WithContext(ctx).Create(b).Error
}

func (r *GormRepo) GetBlog(ctx context.Context, id string) (*models.Blog, error) {
	var blog models.Blog
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&blog).Error; err != nil {
		return nil, notFound(err)
	}
	return &blog, nil
}

// ReplaceBlog overwrites every client-editable column, zero values included.
func (r *GormRepo) ReplaceBlog(ctx context.Context, b *models.Blog) error {
	res := r.DB.WithContext(ctx).Model(&models.Blog{}).
		Where("id = ?", b.ID).
		Select("title", "hashtags", "content", "generated_by_ai", "user_username", "user_email").
		Updates(map[string]any{
			"title":           b.Title,
			"hashtags":        b.Hashtags,
			"content":         b.Content,
			"generated_by_ai": b.GeneratedByAI,
			"user_username":   b.User.Username,
			"user_email":      b.User.Email,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormRepo) DeleteBlog(ctx context.Context, id string) (int64, error) {
	res := r.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.Blog{})
	return res.RowsAffected, res.Error
}

func (r *GormRepo) ListBlogs(ctx context.Context) ([]models.Blog, error) {
	items := make([]models.Blog, 0)
	if err := r.DB.WithContext(ctx).Order("created_at DESC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) ListBlogsByUsername(ctx context.Context, username string) ([]models.Blog, error) {
	items := make([]models.Blog, 0)
	if err := r.DB.WithContext(ctx).
		Where("user_username = ?", username).
		Order("created_at DESC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
