package repository

import (
	"github.com/jaguarlabs/jaguar/app/models"
	"gorm.io/gorm"
)

type paymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository creates a new payment ledger repository instance
func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) ListByReference(reference string) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.Where("reference = ?", reference).Order("id ASC").Find(&payments).Error
	return payments, err
}

func (r *paymentRepository) ListRecent(limit int) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.Order("received_at DESC").Limit(limit).Find(&payments).Error
	return payments, err
}
