package repository

import (
	"github.com/jaguarlabs/jaguar/app/models"
)

// UserRepository defines operations on account profiles
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	Update(user *models.User) error
	UpdateRole(id uint, role string) error
	List(limit, offset int) ([]models.User, int64, error)
}

// SubscriptionRepository defines operations on subscription rows
type SubscriptionRepository interface {
	GetByEmailAndPlan(email, plan string) (*models.Subscription, error)
	ListByEmail(email string) ([]models.Subscription, error)
	List(limit, offset int) ([]models.Subscription, int64, error)
	Save(sub *models.Subscription) error
}

// PaymentRepository defines read access to the payment ledger. Writes go
// through the billing service, which owns append-only semantics.
type PaymentRepository interface {
	ListByReference(reference string) ([]models.Payment, error)
	ListRecent(limit int) ([]models.Payment, error)
}

// ContentRepository defines operations on gated content items
type ContentRepository interface {
	Create(item *models.ContentItem) error
	GetByID(id uint) (*models.ContentItem, error)
	Update(item *models.ContentItem) error
	Delete(id uint) error
	ListPublished() ([]models.ContentItem, error)
	ListAll() ([]models.ContentItem, error)
}

// LiveSessionRepository defines operations on broadcast sessions
type LiveSessionRepository interface {
	GetActive() (*models.LiveSession, error)
	// Activate deactivates any currently active session and inserts the new
	// one as active, atomically.
	Activate(session *models.LiveSession) error
	Deactivate() error
}

// MessageRepository defines operations on admin broadcast messages
type MessageRepository interface {
	Create(msg *models.Message) error
	GetByID(id uint) (*models.Message, error)
	Update(msg *models.Message) error
	Delete(id uint) error
	ListPublished() ([]models.Message, error)
	ListAll() ([]models.Message, error)
}

// BotCredentialRepository defines operations on MT5 submissions
type BotCredentialRepository interface {
	Create(cred *models.BotCredential) error
	GetByUUID(uuid string) (*models.BotCredential, error)
	GetByUserID(userID uint) (*models.BotCredential, error)
	UpdateStatus(uuid, status string) error
	ListPending() ([]models.BotCredential, error)
}
