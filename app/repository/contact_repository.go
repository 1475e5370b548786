package repository

import (
	"time"

	"github.com/lipsense/portal/app/models"
	"gorm.io/gorm"
)

type contactRequestRepository struct {
	db *gorm.DB
}

func NewContactRequestRepository(db *gorm.DB) ContactRequestRepository {
	return &contactRequestRepository{db: db}
}

func (r *contactRequestRepository) Create(req *models.ContactRequest) error {
	return r.db.Create(req).Error
}

// MarkNotified records that the sales inbox was emailed
func (r *contactRequestRepository) MarkNotified(id uint64) error {
	now := time.Now()
	return r.db.Model(&models.ContactRequest{}).Where("id = ?", id).
		Updates(map[string]any{"status": models.ContactStatusNotified, "notified_at": now}).Error
}
