package repository

import (
	"time"

	"github.com/jaguarlabs/jaguar/app/models"
	"gorm.io/gorm"
)

type botCredentialRepository struct {
	db *gorm.DB
}

// NewBotCredentialRepository creates a new bot credential repository instance
func NewBotCredentialRepository(db *gorm.DB) BotCredentialRepository {
	return &botCredentialRepository{db: db}
}

func (r *botCredentialRepository) Create(cred *models.BotCredential) error {
	return r.db.Create(cred).Error
}

func (r *botCredentialRepository) GetByUUID(uuid string) (*models.BotCredential, error) {
	var cred models.BotCredential
	if err := r.db.Where("uuid = ?", uuid).First(&cred).Error; err != nil {
		return nil, err
	}
	return &cred, nil
}

func (r *botCredentialRepository) GetByUserID(userID uint) (*models.BotCredential, error) {
	var cred models.BotCredential
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").First(&cred).Error
	if err != nil {
		return nil, err
	}
	return &cred, nil
}

func (r *botCredentialRepository) UpdateStatus(uuid, status string) error {
	now := time.Now()
	return r.db.Model(&models.BotCredential{}).
		Where("uuid = ?", uuid).
		Updates(map[string]interface{}{
			"status":      status,
			"reviewed_at": &now,
		}).Error
}

func (r *botCredentialRepository) ListPending() ([]models.BotCredential, error) {
	var creds []models.BotCredential
	err := r.db.Where("status = ?", models.BotCredentialStatusPending).Order("created_at ASC").Find(&creds).Error
	return creds, err
}
