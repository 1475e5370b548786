package models

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ContactStatusNew      = "new"
	ContactStatusNotified = "notified"
)

// ContactRequest is an enterprise lead submitted through the contact-sales form.
type ContactRequest struct {
	ID         uint64     `gorm:"primaryKey" json:"-"`
	PublicID   string     `gorm:"type:char(36);uniqueIndex;not null" json:"id"`
	Name       string     `gorm:"type:varchar(120);not null" json:"name" validate:"required,max=120"`
	Email      string     `gorm:"type:varchar(255);not null;index" json:"email" validate:"required,email,max=255"`
	Company    string     `gorm:"type:varchar(160)" json:"company" validate:"max=160"`
	Message    string     `gorm:"type:text" json:"message" validate:"required,min=10,max=5000"`
	APICalls   int        `json:"api_calls" validate:"omitempty,min=0"`
	Resolution string     `gorm:"type:varchar(8)" json:"resolution" validate:"omitempty,oneof=720p 1080p 4K"`
	Languages  int        `json:"languages" validate:"omitempty,min=1,max=40"`
	Support    string     `gorm:"type:varchar(16)" json:"support" validate:"omitempty,oneof=basic priority enterprise"`
	Status     string     `gorm:"type:varchar(16);not null;default:new" json:"status"`
	IPAddress  string     `gorm:"type:varchar(45)" json:"-"`
	NotifiedAt *time.Time `json:"notified_at"`
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// BeforeCreate assigns the public id.
func (r *ContactRequest) BeforeCreate(tx *gorm.DB) error {
	if r.PublicID == "" {
		r.PublicID = uuid.NewString()
	}
	if r.Status == "" {
		r.Status = ContactStatusNew
	}
	return nil
}

// Normalize trims the free text fields.
func (r *ContactRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Company = strings.TrimSpace(r.Company)
	r.Message = strings.TrimSpace(r.Message)
}

func (r *ContactRequest) Validate() error {
	v := validator.New()
	return v.Struct(r)
}
