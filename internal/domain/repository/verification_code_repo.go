package repository

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yourusername/credit-api/internal/domain/entity"
)

// VerificationCodeRepository persists one-time verification codes.
type VerificationCodeRepository interface {
	Create(code *entity.VerificationCode) error
	// CreateTx creates the code inside an existing transaction.
	CreateTx(tx *gorm.DB, code *entity.VerificationCode) error
	// GetLatestByUserID returns the most recently issued code for the user
	// regardless of state, or apperrors.ErrNotFound.
	GetLatestByUserID(userID uuid.UUID, channel string) (*entity.VerificationCode, error)
	IncrementAttempts(id uuid.UUID) error
	// MarkExpired transitions a PENDING code to EXPIRED (lazy expiry marking).
	MarkExpired(id uuid.UUID) error
	// MarkVerified transitions the code to VERIFIED inside the given
	// transaction, conditioned on the row still being PENDING so that
	// concurrent validators cannot both win. Returns apperrors.ErrConflict
	// when the row was already consumed.
	MarkVerified(tx *gorm.DB, id uuid.UUID) error
	DeleteByUserID(userID uuid.UUID) error
}
