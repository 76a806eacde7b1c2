package billing

import (
	"github.com/jaguarlabs/jaguar/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository provides DB operations used by the billing service.
type Repository interface {
	GetUserByID(id uint) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	CreateUser(user *models.User) error
	UpdateUserRole(id uint, role string) error
	UpsertSubscription(sub *models.Subscription) error
	GetSubscription(email, plan string) (*models.Subscription, error)
	CreatePayment(payment *models.Payment) error
	ListPaymentsByReference(reference string) ([]models.Payment, error)
	ListPaymentsByBuyer(email, plan string) ([]models.Payment, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a billing repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) GetUserByID(id uint) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *gormRepository) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *gormRepository) CreateUser(user *models.User) error {
	return r.db.Create(user).Error
}

func (r *gormRepository) UpdateUserRole(id uint, role string) error {
	return r.db.Model(&models.User{}).Where("id = ?", id).Update("role", role).Error
}

func (r *gormRepository) UpsertSubscription(sub *models.Subscription) error {
	if err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "email"},
			{Name: "plan"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"status",
			"amount",
			"started_at",
			"ended_at",
			"updated_at",
		}),
	}).Create(sub).Error; err != nil {
		return err
	}

	// Ensure ID is populated after upsert.
	return r.db.Where("email = ? AND plan = ?", sub.Email, sub.Plan).
		First(sub).Error
}

func (r *gormRepository) GetSubscription(email, plan string) (*models.Subscription, error) {
	var sub models.Subscription
	if err := r.db.Where("email = ? AND plan = ?", email, plan).First(&sub).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *gormRepository) CreatePayment(payment *models.Payment) error {
	return r.db.Create(payment).Error
}

func (r *gormRepository) ListPaymentsByReference(reference string) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.Where("reference = ?", reference).Order("id ASC").Find(&payments).Error
	return payments, err
}

func (r *gormRepository) ListPaymentsByBuyer(email, plan string) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.Where("customer_email = ? AND plan = ?", email, plan).
		Order("id DESC").Find(&payments).Error
	return payments, err
}
