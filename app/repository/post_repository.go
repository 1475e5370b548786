package repository

import (
	"github.com/lipsense/portal/app/models"
	"gorm.io/gorm"
)

// postRepository implements the PostRepository interface
type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository instance
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

// GetBySlug retrieves a published post by its slug
func (r *postRepository) GetBySlug(slug string) (*models.Post, error) {
	var post models.Post
	err := r.db.Where("slug = ? AND published = ?", slug, true).First(&post).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// GetPublished retrieves published posts with pagination, newest first
func (r *postRepository) GetPublished(offset, limit int) ([]models.Post, error) {
	var posts []models.Post
	err := r.db.Where("published = ?", true).
		Order("published_at DESC, id DESC").Offset(offset).Limit(limit).Find(&posts).Error
	return posts, err
}

// CountPublished returns the number of published posts
func (r *postRepository) CountPublished() (int64, error) {
	var count int64
	err := r.db.Model(&models.Post{}).Where("published = ?", true).Count(&count).Error
	return count, err
}
