package postgres

import (
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/yourusername/credit-api/internal/domain/entity"
	apperrors "github.com/yourusername/credit-api/internal/pkg/errors"
)

// UserRepo implements repository.UserRepository on PostgreSQL.
type UserRepo struct {
	db *gorm.DB
}

// NewUserRepo creates a new user repository.
func NewUserRepo(db *gorm.DB) *UserRepo {
	return &UserRepo{db: db}
}

// Create creates a new user.
func (r *UserRepo) Create(user *entity.User) error {
	return r.CreateTx(r.db, user)
}

// CreateTx creates a new user inside an existing transaction.
func (r *UserRepo) CreateTx(tx *gorm.DB, user *entity.User) error {
	if err := tx.Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperrors.ErrConflict
		}
		return err
	}
	return nil
}

// GetByID returns a user by ID.
func (r *UserRepo) GetByID(id uuid.UUID) (*entity.User, error) {
	var user entity.User
	err := r.db.Where("id = ?", id).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetByEmail returns a user by email.
func (r *UserRepo) GetByEmail(email string) (*entity.User, error) {
	var user entity.User
	err := r.db.Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetByIdentification returns a user by identification number.
func (r *UserRepo) GetByIdentification(identification string) (*entity.User, error) {
	var user entity.User
	err := r.db.Where("identification = ?", identification).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// Update saves the full user record.
func (r *UserRepo) Update(user *entity.User) error {
	return r.db.Save(user).Error
}

// UpdateProfile updates the given columns without touching the password.
func (r *UserRepo) UpdateProfile(userID uuid.UUID, updates map[string]interface{}) error {
	delete(updates, "password_hash")
	updates["updated_at"] = time.Now()

	return r.db.Model(&entity.User{}).Where("id = ?", userID).Updates(updates).Error
}

// UpdatePassword hashes and stores a new password.
// Hashing happens here, via direct SQL, to bypass the BeforeSave hook and
// avoid double hashing.
func (r *UserRepo) UpdatePassword(userID uuid.UUID, newPassword string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("[UserRepo.UpdatePassword] failed to hash password: %v", err)
		return err
	}

	result := r.db.Exec(
		"UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?",
		string(hashedPassword),
		time.Now(),
		userID,
	)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// Activate flips a PENDING account to ACTIVE and marks the email verified.
// The status filter in the WHERE clause makes the transition atomic: a
// concurrent activation or a sweeper delete leaves zero affected rows.
func (r *UserRepo) Activate(tx *gorm.DB, userID uuid.UUID) error {
	if tx == nil {
		tx = r.db
	}
	result := tx.Model(&entity.User{}).
		Where("id = ? AND status = ?", userID, entity.AccountPending).
		Updates(map[string]interface{}{
			"status":         entity.AccountActive,
			"email_verified": true,
			"updated_at":     time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrConflict
	}
	return nil
}

// DeletePendingBefore removes accounts still PENDING created before the cutoff.
// Verification codes are removed by the ON DELETE CASCADE on the FK.
func (r *UserRepo) DeletePendingBefore(cutoff time.Time) (int64, error) {
	result := r.db.
		Where("status = ? AND created_at <= ?", entity.AccountPending, cutoff).
		Delete(&entity.User{})
	return result.RowsAffected, result.Error
}

// List returns users filtered by status with pagination, plus the total count.
func (r *UserRepo) List(status entity.AccountStatus, limit, offset int) ([]entity.User, int64, error) {
	var users []entity.User
	var total int64

	query := r.db.Model(&entity.User{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("created_at DESC, id ASC").
		Limit(limit).
		Offset(offset).
		Find(&users).Error
	if err != nil {
		return nil, 0, err
	}

	return users, total, nil
}
