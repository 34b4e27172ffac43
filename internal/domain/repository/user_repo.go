package repository

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yourusername/credit-api/internal/domain/entity"
)

// UserRepository defines persistence operations for user accounts.
type UserRepository interface {
	Create(user *entity.User) error
	// CreateTx creates the user inside an existing transaction.
	CreateTx(tx *gorm.DB, user *entity.User) error
	GetByID(id uuid.UUID) (*entity.User, error)
	GetByEmail(email string) (*entity.User, error)
	GetByIdentification(identification string) (*entity.User, error)
	Update(user *entity.User) error
	// UpdateProfile updates the given columns without touching the password.
	UpdateProfile(userID uuid.UUID, updates map[string]interface{}) error
	UpdatePassword(userID uuid.UUID, newPassword string) error
	// Activate flips a PENDING account to ACTIVE inside the given transaction.
	// Returns apperrors.ErrConflict when the account is not PENDING.
	Activate(tx *gorm.DB, userID uuid.UUID) error
	// DeletePendingBefore removes accounts still PENDING that were created
	// before the cutoff. Returns the number of rows removed.
	DeletePendingBefore(cutoff time.Time) (int64, error)
	// List returns users filtered by status ("" = all) with pagination,
	// plus the total count for the filter.
	List(status entity.AccountStatus, limit, offset int) ([]entity.User, int64, error)
}
