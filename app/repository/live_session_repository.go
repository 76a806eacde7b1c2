package repository

import (
	"github.com/jaguarlabs/jaguar/app/models"
	"gorm.io/gorm"
)

type liveSessionRepository struct {
	db *gorm.DB
}

// NewLiveSessionRepository creates a new live session repository instance
func NewLiveSessionRepository(db *gorm.DB) LiveSessionRepository {
	return &liveSessionRepository{db: db}
}

func (r *liveSessionRepository) GetActive() (*models.LiveSession, error) {
	var session models.LiveSession
	err := r.db.Where("active = ?", true).Order("starts_at ASC").First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// Activate enforces the single-active invariant: both writes run in one
// transaction so concurrent admin saves cannot leave zero or two active rows.
func (r *liveSessionRepository) Activate(session *models.LiveSession) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.LiveSession{}).
			Where("active = ?", true).
			Update("active", false).Error; err != nil {
			return err
		}
		session.Active = true
		return tx.Create(session).Error
	})
}

func (r *liveSessionRepository) Deactivate() error {
	return r.db.Model(&models.LiveSession{}).
		Where("active = ?", true).
		Update("active", false).Error
}
