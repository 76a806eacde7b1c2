package repository

import (
	"sync"

	"gorm.io/gorm"
)

// Repositories bundles all repository instances
type Repositories struct {
	User          UserRepository
	Subscription  SubscriptionRepository
	Payment       PaymentRepository
	Content       ContentRepository
	LiveSession   LiveSessionRepository
	Message       MessageRepository
	BotCredential BotCredentialRepository
}

// NewRepositories creates all repositories backed by the given DB handle
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:          NewUserRepository(db),
		Subscription:  NewSubscriptionRepository(db),
		Payment:       NewPaymentRepository(db),
		Content:       NewContentRepository(db),
		LiveSession:   NewLiveSessionRepository(db),
		Message:       NewMessageRepository(db),
		BotCredential: NewBotCredentialRepository(db),
	}
}

// Factory manages repository instances and ensures they are singletons
type Factory struct {
	db    *gorm.DB
	repos *Repositories
	once  sync.Once
}

// NewFactory creates a new repository factory
func NewFactory(db *gorm.DB) *Factory {
	return &Factory{
		db: db,
	}
}

// GetRepositories returns a singleton instance of all repositories
func (f *Factory) GetRepositories() *Repositories {
	f.once.Do(func() {
		f.repos = NewRepositories(f.db)
	})
	return f.repos
}

// GetUserRepository returns the user repository instance
func (f *Factory) GetUserRepository() UserRepository {
	return f.GetRepositories().User
}

// GetSubscriptionRepository returns the subscription repository instance
func (f *Factory) GetSubscriptionRepository() SubscriptionRepository {
	return f.GetRepositories().Subscription
}

// GetPaymentRepository returns the payment ledger repository instance
func (f *Factory) GetPaymentRepository() PaymentRepository {
	return f.GetRepositories().Payment
}

// GetContentRepository returns the content repository instance
func (f *Factory) GetContentRepository() ContentRepository {
	return f.GetRepositories().Content
}

// GetLiveSessionRepository returns the live session repository instance
func (f *Factory) GetLiveSessionRepository() LiveSessionRepository {
	return f.GetRepositories().LiveSession
}

// GetMessageRepository returns the message repository instance
func (f *Factory) GetMessageRepository() MessageRepository {
	return f.GetRepositories().Message
}

// GetBotCredentialRepository returns the bot credential repository instance
func (f *Factory) GetBotCredentialRepository() BotCredentialRepository {
	return f.GetRepositories().BotCredential
}

// Global factory instance
var globalFactory *Factory
var factoryOnce sync.Once

// InitializeFactory initializes the global repository factory
func InitializeFactory(db *gorm.DB) {
	factoryOnce.Do(func() {
		globalFactory = NewFactory(db)
	})
}

// GetGlobalFactory returns the global repository factory instance
func GetGlobalFactory() *Factory {
	if globalFactory == nil {
		panic("Repository factory not initialized. Call InitializeFactory first.")
	}
	return globalFactory
}
