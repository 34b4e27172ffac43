package entity

import (
	"time"

	"github.com/google/uuid"
)

// CodeState is the lifecycle state of a verification code.
// VERIFIED and EXPIRED are terminal; a code leaves PENDING exactly once.
type CodeState string

const (
	CodePending  CodeState = "PENDING"
	CodeVerified CodeState = "VERIFIED"
	CodeExpired  CodeState = "EXPIRED"
)

// Verification channels. Only email is delivered today.
const (
	ChannelEmail = "EMAIL"
)

// VerificationCode stores a hashed one-time code bound to an account.
// The plaintext code is never persisted; only the most recently issued
// PENDING code for a user is considered live.
type VerificationCode struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID       uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	Channel      string     `gorm:"size:20;not null;default:'EMAIL'" json:"channel"`
	CodeHash     string     `gorm:"size:64;not null" json:"-"`
	CodeSalt     string     `gorm:"size:64;not null" json:"-"`
	State        CodeState  `gorm:"size:20;not null;default:'PENDING';index" json:"state"`
	IssuedAt     time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP" json:"issued_at"`
	ExpiresAt    time.Time  `gorm:"not null;index" json:"expires_at"`
	AttemptCount int        `gorm:"not null;default:0" json:"attempt_count"`
	MaxAttempts  int        `gorm:"not null;default:5" json:"max_attempts"`
	UsedAt       *time.Time `json:"used_at,omitempty"`
	CreatedAt    time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (VerificationCode) TableName() string {
	return "verification_codes"
}

// IsPending reports whether the code may still be consumed.
func (v *VerificationCode) IsPending() bool {
	return v.State == CodePending
}

// IsExpired reports whether the code's TTL has elapsed at the given instant.
// Expiry is computed on read; the stored state is only updated lazily.
func (v *VerificationCode) IsExpired(now time.Time) bool {
	return now.After(v.ExpiresAt)
}

// AttemptsExhausted reports whether the failed-attempt cap has been reached.
func (v *VerificationCode) AttemptsExhausted() bool {
	return v.MaxAttempts > 0 && v.AttemptCount >= v.MaxAttempts
}
