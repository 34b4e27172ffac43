package postgres

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yourusername/credit-api/internal/domain/entity"
	apperrors "github.com/yourusername/credit-api/internal/pkg/errors"
)

// VerificationCodeRepo implements repository.VerificationCodeRepository on PostgreSQL.
type VerificationCodeRepo struct {
	db *gorm.DB
}

func NewVerificationCodeRepo(db *gorm.DB) *VerificationCodeRepo {
	return &VerificationCodeRepo{db: db}
}

func (r *VerificationCodeRepo) Create(code *entity.VerificationCode) error {
	return r.db.Create(code).Error
}

func (r *VerificationCodeRepo) CreateTx(tx *gorm.DB, code *entity.VerificationCode) error {
	return tx.Create(code).Error
}

// GetLatestByUserID returns the most recently issued code for the user,
// regardless of state. Re-issued codes supersede older ones, so validation
// must only ever look at this row.
func (r *VerificationCodeRepo) GetLatestByUserID(userID uuid.UUID, channel string) (*entity.VerificationCode, error) {
	var code entity.VerificationCode
	err := r.db.
		Where("user_id = ? AND channel = ?", userID, channel).
		Order("issued_at DESC, created_at DESC").
		First(&code).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get latest verification code: %w", err)
	}
	return &code, nil
}

func (r *VerificationCodeRepo) IncrementAttempts(id uuid.UUID) error {
	return r.db.Model(&entity.VerificationCode{}).
		Where("id = ?", id).
		Update("attempt_count", gorm.Expr("attempt_count + 1")).Error
}

// MarkExpired transitions a PENDING code to EXPIRED. The state filter keeps
// the transition one-way; marking an already terminal row is a no-op.
func (r *VerificationCodeRepo) MarkExpired(id uuid.UUID) error {
	return r.db.Model(&entity.VerificationCode{}).
		Where("id = ? AND state = ?", id, entity.CodePending).
		Update("state", entity.CodeExpired).Error
}

// MarkVerified transitions the code PENDING -> VERIFIED. The conditional
// update is the race guard: of two concurrent validators only one sees an
// affected row; the loser gets ErrConflict.
func (r *VerificationCodeRepo) MarkVerified(tx *gorm.DB, id uuid.UUID) error {
	if tx == nil {
		tx = r.db
	}
	now := time.Now()
	result := tx.Model(&entity.VerificationCode{}).
		Where("id = ? AND state = ?", id, entity.CodePending).
		Updates(map[string]interface{}{
			"state":   entity.CodeVerified,
			"used_at": now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrConflict
	}
	return nil
}

func (r *VerificationCodeRepo) DeleteByUserID(userID uuid.UUID) error {
	return r.db.Where("user_id = ?", userID).Delete(&entity.VerificationCode{}).Error
}
