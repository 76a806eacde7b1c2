package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

const (
	MediaTypeVideo = "video"
	MediaTypeAudio = "audio"
	MediaTypePDF   = "pdf"
	MediaTypeText  = "text"
	MediaTypeLink  = "link"

	// SegmentAll marks content visible to every authenticated user.
	SegmentAll = "all"
)

// ContentItem is a piece of gated media. Segment names the minimum tier
// required to view it ("all" or a tier id).
type ContentItem struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Title       string         `gorm:"type:varchar(255);not null" json:"title" validate:"required,min=1,max=255"`
	Description string         `gorm:"type:text" json:"description"`
	Segment     string         `gorm:"type:varchar(50);not null;default:'all';index" json:"segment"`
	MediaType   string         `gorm:"type:varchar(20);not null" json:"media_type" validate:"oneof=video audio pdf text link"`
	MediaURL    string         `gorm:"type:varchar(1024)" json:"media_url"`
	Body        string         `gorm:"type:longtext" json:"body"`
	IsPublished bool           `gorm:"default:true;index" json:"is_published"`
	CreatedAt   time.Time      `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (c *ContentItem) Validate() error {
	v := validator.New()

	return v.Struct(c)
}

// TableName specifies the table name for the ContentItem model
func (ContentItem) TableName() string {
	return "content_items"
}
