package repository

import (
	"github.com/google/uuid"

	"github.com/yourusername/credit-api/internal/domain/entity"
)

// ReferenceRepository persists user contact references.
type ReferenceRepository interface {
	Create(ref *entity.UserReference) error
	GetByID(id uuid.UUID) (*entity.UserReference, error)
	GetByUserID(userID uuid.UUID) ([]entity.UserReference, error)
	GetByUserAndType(userID uuid.UUID, refType entity.ReferenceType) (*entity.UserReference, error)
	Update(ref *entity.UserReference) error
	Delete(id uuid.UUID) error
}
