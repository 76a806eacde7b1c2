package repository

import (
	"github.com/jaguarlabs/jaguar/app/models"
	"gorm.io/gorm"
)

type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository creates a new message repository instance
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(msg *models.Message) error {
	return r.db.Create(msg).Error
}

func (r *messageRepository) GetByID(id uint) (*models.Message, error) {
	var msg models.Message
	if err := r.db.First(&msg, id).Error; err != nil {
		return nil, err
	}
	return &msg, nil
}

func (r *messageRepository) Update(msg *models.Message) error {
	return r.db.Save(msg).Error
}

func (r *messageRepository) Delete(id uint) error {
	return r.db.Delete(&models.Message{}, id).Error
}

func (r *messageRepository) ListPublished() ([]models.Message, error) {
	var msgs []models.Message
	err := r.db.Where("published = ?", true).Order("created_at DESC").Find(&msgs).Error
	return msgs, err
}

func (r *messageRepository) ListAll() ([]models.Message, error) {
	var msgs []models.Message
	err := r.db.Order("created_at DESC").Find(&msgs).Error
	return msgs, err
}
