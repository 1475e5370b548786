package models

import (
	"time"

	"gorm.io/gorm"
)

// Post is a blog article.
type Post struct {
	ID          uint64         `gorm:"primaryKey" json:"id"`
	Title       string         `gorm:"type:varchar(255)" json:"title" validate:"required,min=3,max=255"`
	Slug        string         `gorm:"uniqueIndex;type:varchar(255)" json:"slug" validate:"required,min=3,max=255"`
	Excerpt     string         `gorm:"type:varchar(500)" json:"excerpt"`
	Content     string         `gorm:"type:text" json:"content" validate:"required"`
	Author      string         `gorm:"type:varchar(120)" json:"author"`
	Published   bool           `gorm:"type:tinyint(1);default:0" json:"published"`
	PublishedAt *time.Time     `gorm:"index" json:"published_at"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Post model
func (Post) TableName() string {
	return "posts"
}
