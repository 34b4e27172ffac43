package postgres

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yourusername/credit-api/internal/domain/entity"
	apperrors "github.com/yourusername/credit-api/internal/pkg/errors"
)

// ReferenceRepo implements repository.ReferenceRepository on PostgreSQL.
type ReferenceRepo struct {
	db *gorm.DB
}

func NewReferenceRepo(db *gorm.DB) *ReferenceRepo {
	return &ReferenceRepo{db: db}
}

func (r *ReferenceRepo) Create(ref *entity.UserReference) error {
	if err := r.db.Create(ref).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperrors.ErrConflict
		}
		return err
	}
	return nil
}

func (r *ReferenceRepo) GetByID(id uuid.UUID) (*entity.UserReference, error) {
	var ref entity.UserReference
	err := r.db.Where("id = ?", id).First(&ref).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &ref, nil
}

func (r *ReferenceRepo) GetByUserID(userID uuid.UUID) ([]entity.UserReference, error) {
	var refs []entity.UserReference
	err := r.db.Where("user_id = ?", userID).Order("type ASC").Find(&refs).Error
	return refs, err
}

func (r *ReferenceRepo) GetByUserAndType(userID uuid.UUID, refType entity.ReferenceType) (*entity.UserReference, error) {
	var ref entity.UserReference
	err := r.db.Where("user_id = ? AND type = ?", userID, refType).First(&ref).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &ref, nil
}

func (r *ReferenceRepo) Update(ref *entity.UserReference) error {
	return r.db.Save(ref).Error
}

func (r *ReferenceRepo) Delete(id uuid.UUID) error {
	return r.db.Where("id = ?", id).Delete(&entity.UserReference{}).Error
}
