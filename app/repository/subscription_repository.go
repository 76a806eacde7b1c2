package repository

import (
	"strings"

	"github.com/jaguarlabs/jaguar/app/models"
	"gorm.io/gorm"
)

type subscriptionRepository struct {
	db *gorm.DB
}

// NewSubscriptionRepository creates a new subscription repository instance
func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

func (r *subscriptionRepository) GetByEmailAndPlan(email, plan string) (*models.Subscription, error) {
	var sub models.Subscription
	err := r.db.
		Where("email = ? AND plan = ?", strings.ToLower(strings.TrimSpace(email)), strings.ToLower(strings.TrimSpace(plan))).
		First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *subscriptionRepository) ListByEmail(email string) ([]models.Subscription, error) {
	var subs []models.Subscription
	err := r.db.Where("email = ?", strings.ToLower(strings.TrimSpace(email))).Find(&subs).Error
	return subs, err
}

func (r *subscriptionRepository) List(limit, offset int) ([]models.Subscription, int64, error) {
	var subs []models.Subscription
	var total int64
	if err := r.db.Model(&models.Subscription{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := r.db.Order("updated_at DESC").Limit(limit).Offset(offset).Find(&subs).Error
	return subs, total, err
}

func (r *subscriptionRepository) Save(sub *models.Subscription) error {
	return r.db.Save(sub).Error
}
