package entity

import (
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AccountStatus is the lifecycle state of a user account.
// Only PENDING accounts may transition to ACTIVE, and only PENDING
// accounts are subject to the expiration sweep.
type AccountStatus string

const (
	AccountPending  AccountStatus = "PENDING"
	AccountActive   AccountStatus = "ACTIVE"
	AccountRejected AccountStatus = "REJECTED"
)

// Valid reports whether the status is one of the known lifecycle states.
func (s AccountStatus) Valid() bool {
	switch s {
	case AccountPending, AccountActive, AccountRejected:
		return true
	default:
		return false
	}
}

// User roles.
const (
	RoleClient = "client"
	RoleAdmin  = "admin"
)

// User represents a platform account.
type User struct {
	ID                 uuid.UUID     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	FirstNames         string        `gorm:"size:150;not null" json:"first_names"`
	FirstSurname       string        `gorm:"size:80;not null" json:"first_surname"`
	SecondSurname      string        `gorm:"size:80;not null;default:''" json:"second_surname,omitempty"`
	IdentificationType string        `gorm:"size:10;not null" json:"identification_type"`
	Identification     string        `gorm:"size:30;not null;uniqueIndex" json:"identification"`
	Email              string        `gorm:"size:255;not null;uniqueIndex" json:"email"`
	Phone              string        `gorm:"size:30;not null;default:''" json:"phone,omitempty"`
	Gender             string        `gorm:"size:20;not null;default:''" json:"gender,omitempty"`
	Password           string        `gorm:"column:password_hash;size:100;not null" json:"-"`
	CityID             *int          `gorm:"index" json:"city_id,omitempty"`
	Role               string        `gorm:"size:20;not null;default:'client'" json:"-"` // "client" or "admin"
	Status             AccountStatus `gorm:"size:20;not null;default:'PENDING';index" json:"status"`
	EmailVerified      bool          `gorm:"not null;default:false" json:"email_verified"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName sets the table name for GORM.
func (User) TableName() string {
	return "users"
}

// FullName joins the name parts, skipping an empty second surname.
func (u *User) FullName() string {
	parts := []string{u.FirstNames, u.FirstSurname}
	if strings.TrimSpace(u.SecondSurname) != "" {
		parts = append(parts, u.SecondSurname)
	}
	return strings.Join(parts, " ")
}

// IsActive reports whether the account may log in.
func (u *User) IsActive() bool {
	return u.Status == AccountActive
}

// BeforeSave hashes the password before persisting, unless it already is a bcrypt hash.
func (u *User) BeforeSave(tx *gorm.DB) error {
	if len(u.Password) > 0 && !strings.HasPrefix(u.Password, "$2a$") &&
		!strings.HasPrefix(u.Password, "$2b$") && !strings.HasPrefix(u.Password, "$2y$") {
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
		if err != nil {
			log.Printf("[User.BeforeSave] failed to hash password for email=%s: %v", u.Email, err)
			return err
		}
		u.Password = string(hashedPassword)
	}
	return nil
}

// CheckPassword reports whether the given password matches the stored hash.
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}
