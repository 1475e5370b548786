package repository

import (
	"github.com/lipsense/portal/app/models"
	"gorm.io/gorm"
)

// PageRepository defines the interface for CMS page lookups
type PageRepository interface {
	GetBySlug(slug string) (*models.Page, error)
	ListBySection(section string) ([]models.Page, error)
}

// PostRepository defines the interface for blog post lookups
type PostRepository interface {
	GetBySlug(slug string) (*models.Post, error)
	GetPublished(offset, limit int) ([]models.Post, error)
	CountPublished() (int64, error)
}

// ContactRequestRepository stores contact-sales leads
type ContactRequestRepository interface {
	Create(req *models.ContactRequest) error
	MarkNotified(id uint64) error
}

// Repositories struct holds all repository instances
type Repositories struct {
	Page    PageRepository
	Post    PostRepository
	Contact ContactRequestRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Page:    NewPageRepository(db),
		Post:    NewPostRepository(db),
		Contact: NewContactRequestRepository(db),
	}
}
