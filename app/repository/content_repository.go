package repository

import (
	"github.com/jaguarlabs/jaguar/app/models"
	"gorm.io/gorm"
)

type contentRepository struct {
	db *gorm.DB
}

// NewContentRepository creates a new content repository instance
func NewContentRepository(db *gorm.DB) ContentRepository {
	return &contentRepository{db: db}
}

func (r *contentRepository) Create(item *models.ContentItem) error {
	return r.db.Create(item).Error
}

func (r *contentRepository) GetByID(id uint) (*models.ContentItem, error) {
	var item models.ContentItem
	if err := r.db.First(&item, id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *contentRepository) Update(item *models.ContentItem) error {
	return r.db.Save(item).Error
}

func (r *contentRepository) Delete(id uint) error {
	return r.db.Delete(&models.ContentItem{}, id).Error
}

func (r *contentRepository) ListPublished() ([]models.ContentItem, error) {
	var items []models.ContentItem
	err := r.db.Where("is_published = ?", true).Order("created_at DESC").Find(&items).Error
	return items, err
}

func (r *contentRepository) ListAll() ([]models.ContentItem, error) {
	var items []models.ContentItem
	err := r.db.Order("created_at DESC").Find(&items).Error
	return items, err
}
