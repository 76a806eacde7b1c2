package models

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	ROLE_USER     = "user"
	ROLE_FREE     = "free"
	ROLE_PREMIUM  = "premium"
	ROLE_VIP      = "vip"
	ROLE_PRO      = "pro"
	ROLE_LIFETIME = "lifetime"
	ROLE_ADMIN    = "admin"

	STATUS_ACTIVE   = "active"
	STATUS_INACTIVE = "inactive"
	STATUS_DISABLED = "disabled"
)

// User is the account profile. Role both routes the dashboard and gates
// content access; it is promoted by the billing reconciler after payment.
type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Name         string         `gorm:"type:varchar(150)" json:"name" validate:"required,min=3,max=150"`
	Email        string         `gorm:"uniqueIndex;type:varchar(200)" json:"email" validate:"required,email,min=5,max=200"`
	Password     string         `gorm:"type:text" json:"-"`
	Role         string         `gorm:"type:varchar(50);default:'user';index" json:"role" validate:"oneof=user free premium vip pro lifetime admin"`
	Status       string         `gorm:"type:varchar(50);default:'active'" json:"status" validate:"oneof=active inactive disabled"`
	Phone        string         `gorm:"type:varchar(50);default:null" json:"phone"`
	Address      string         `gorm:"type:varchar(255);default:null" json:"address"`
	Country      string         `gorm:"type:varchar(100);default:null" json:"country"`
	AgeConfirmed bool           `gorm:"default:false" json:"age_confirmed"`
	LastLoginAt  *time.Time     `gorm:"type:timestamp;default:null" json:"last_login_at"`
	CreatedAt    time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (u *User) Validate() error {
	v := validator.New()

	return v.Struct(u)
}

func CreateUser(name string, email string, password string) (*User, error) {
	pw, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	u := &User{
		Name:     name,
		Email:    strings.TrimSpace(strings.ToLower(email)),
		Password: pw,
		Role:     ROLE_USER,
		Status:   STATUS_ACTIVE,
	}

	if err := u.Validate(); err != nil {
		return nil, err
	}

	return u, nil
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

	return string(bytes), err
}

// CheckPasswordHash compares the given password with the stored hash.
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))

	return err == nil
}

// IsActive reports whether the user status is active
func (u *User) IsActive() bool {
	return u.Status == STATUS_ACTIVE
}

// CheckPassword verifies if the provided password matches the user's stored password
func (u *User) CheckPassword(password string) bool {
	return CheckPasswordHash(password, u.Password)
}

// SetPassword hashes and sets a new password for the user
func (u *User) SetPassword(password string) error {
	hashedPassword, err := HashPassword(password)
	if err != nil {
		return err
	}
	u.Password = hashedPassword
	return nil
}

// IsClaimableStub reports whether this profile was materialized by payment
// reconciliation for a buyer who had not registered yet. Such profiles carry
// no password and stay inactive until registration claims them.
func (u *User) IsClaimableStub() bool {
	return u.Password == "" && u.Status == STATUS_INACTIVE
}

// IsKnownRole reports whether role is one of the roles the platform assigns.
func IsKnownRole(role string) bool {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case ROLE_USER, ROLE_FREE, ROLE_PREMIUM, ROLE_VIP, ROLE_PRO, ROLE_LIFETIME, ROLE_ADMIN:
		return true
	default:
		return false
	}
}
