package repository

import (
	"github.com/lipsense/portal/app/models"
	"gorm.io/gorm"
)

// pageRepository implements the PageRepository interface
type pageRepository struct {
	db *gorm.DB
}

// NewPageRepository creates a new page repository instance
func NewPageRepository(db *gorm.DB) PageRepository {
	return &pageRepository{db: db}
}

// GetBySlug retrieves an active page by its slug
func (r *pageRepository) GetBySlug(slug string) (*models.Page, error) {
	var page models.Page
	err := r.db.Where("slug = ? AND is_active = ?", slug, true).First(&page).Error
	if err != nil {
		return nil, err
	}
	return &page, nil
}

// ListBySection retrieves the active pages of a footer section in display order
func (r *pageRepository) ListBySection(section string) ([]models.Page, error) {
	var pages []models.Page
	err := r.db.Where("section = ? AND is_active = ?", section, true).
		Order("sort_order ASC, title ASC").Find(&pages).Error
	return pages, err
}
