package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/yourusername/credit-api/internal/domain/entity"
	"github.com/yourusername/credit-api/internal/domain/repository"
	apperrors "github.com/yourusername/credit-api/internal/pkg/errors"
)

// ReferenceInput carries the fields of a contact reference form.
type ReferenceInput struct {
	Type         string
	FullName     string
	Phone        string
	Relationship string
}

// ReferenceService manages a user's contact references. Each user holds at
// most one reference per type.
type ReferenceService struct {
	referenceRepo repository.ReferenceRepository
}

// NewReferenceService creates the reference service.
func NewReferenceService(referenceRepo repository.ReferenceRepository) *ReferenceService {
	return &ReferenceService{referenceRepo: referenceRepo}
}

func validateReferenceInput(refType entity.ReferenceType, input ReferenceInput) error {
	if !refType.Valid() {
		return fmt.Errorf("%w: unknown reference type %q", apperrors.ErrValidation, string(refType))
	}
	if strings.TrimSpace(input.FullName) == "" || strings.TrimSpace(input.Phone) == "" {
		return fmt.Errorf("%w: full name and phone are required", apperrors.ErrValidation)
	}
	if refType == entity.ReferenceFamily && strings.TrimSpace(input.Relationship) == "" {
		return fmt.Errorf("%w: relationship is required for family references", apperrors.ErrValidation)
	}
	return nil
}

// Create adds the user's reference for the given type. The slot must be
// free; a second reference of the same type is a conflict.
func (s *ReferenceService) Create(userID uuid.UUID, input ReferenceInput) (*entity.UserReference, error) {
	refType := entity.ReferenceType(strings.ToUpper(strings.TrimSpace(input.Type)))
	if err := validateReferenceInput(refType, input); err != nil {
		return nil, err
	}

	if _, err := s.referenceRepo.GetByUserAndType(userID, refType); err == nil {
		return nil, fmt.Errorf("%w: a %s reference already exists", apperrors.ErrConflict, refType)
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	ref := &entity.UserReference{
		UserID:       userID,
		Type:         refType,
		FullName:     strings.TrimSpace(input.FullName),
		Phone:        strings.TrimSpace(input.Phone),
		Relationship: strings.TrimSpace(input.Relationship),
	}
	if err := s.referenceRepo.Create(ref); err != nil {
		return nil, err
	}
	return ref, nil
}

// Update rewrites an existing reference; the reference must belong to the
// user and keeps its type.
func (s *ReferenceService) Update(userID, refID uuid.UUID, input ReferenceInput) (*entity.UserReference, error) {
	ref, err := s.referenceRepo.GetByID(refID)
	if err != nil {
		return nil, err
	}
	if ref.UserID != userID {
		return nil, fmt.Errorf("%w: reference belongs to another user", apperrors.ErrForbidden)
	}

	if err := validateReferenceInput(ref.Type, input); err != nil {
		return nil, err
	}

	ref.FullName = strings.TrimSpace(input.FullName)
	ref.Phone = strings.TrimSpace(input.Phone)
	ref.Relationship = strings.TrimSpace(input.Relationship)
	if err := s.referenceRepo.Update(ref); err != nil {
		return nil, err
	}
	return ref, nil
}

// List returns all references for the user.
func (s *ReferenceService) List(userID uuid.UUID) ([]entity.UserReference, error) {
	return s.referenceRepo.GetByUserID(userID)
}

// Delete removes a reference; the reference must belong to the user.
func (s *ReferenceService) Delete(userID, refID uuid.UUID) error {
	ref, err := s.referenceRepo.GetByID(refID)
	if err != nil {
		return err
	}
	if ref.UserID != userID {
		return fmt.Errorf("%w: reference belongs to another user", apperrors.ErrForbidden)
	}
	return s.referenceRepo.Delete(refID)
}
