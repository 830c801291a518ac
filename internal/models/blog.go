package models

import (
	"time"

	"github.com/lib/pq"
)

const (
	BlogStatusDraft     = "draft"
	BlogStatusPublished = "published"
	BlogStatusArchived  = "archived"
)

func IsBlogStatus(s string) bool {
	return s == BlogStatusDraft || s == BlogStatusPublished || s == BlogStatusArchived
}

type Blog struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	Title         string         `gorm:"not null" json:"title"`
	Slug          string         `gorm:"uniqueIndex;not null" json:"slug"`
	Excerpt       string         `json:"excerpt"`
	Content       string         `gorm:"type:text;not null" json:"content"`
	AuthorID      uint           `gorm:"not null;index" json:"authorId"`
	Author        *User          `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Tags          pq.StringArray `gorm:"type:text[]" json:"tags"`
	FeaturedImage string         `json:"featuredImage"`
	Status        string         `gorm:"not null;default:'draft';index" json:"status"`
	ViewCount     int64          `gorm:"not null;default:0" json:"viewCount"`
	PublishedAt   *time.Time     `json:"publishedAt,omitempty"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}
