package entity

import (
	"time"

	"github.com/google/uuid"
)

// ReferenceType distinguishes the two reference slots a user may fill.
type ReferenceType string

const (
	ReferenceFamily   ReferenceType = "FAMILY"
	ReferencePersonal ReferenceType = "PERSONAL"
)

// Valid reports whether the type is a known reference slot.
func (t ReferenceType) Valid() bool {
	return t == ReferenceFamily || t == ReferencePersonal
}

// UserReference is a personal or family contact reference.
// At most one reference per type per user (enforced by a unique index).
type UserReference struct {
	ID           uuid.UUID     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID       uuid.UUID     `gorm:"type:uuid;not null;uniqueIndex:idx_user_references_slot" json:"user_id"`
	Type         ReferenceType `gorm:"size:20;not null;uniqueIndex:idx_user_references_slot" json:"type"`
	FullName     string        `gorm:"size:200;not null" json:"full_name"`
	Phone        string        `gorm:"size:20;not null" json:"phone"`
	Relationship string        `gorm:"size:50;not null;default:''" json:"relationship,omitempty"` // required for FAMILY

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (UserReference) TableName() string {
	return "user_references"
}
