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

// Profile is a user joined with its city and department names.
type Profile struct {
	User       *entity.User
	City       *entity.City
	Department *entity.Department
}

// ProfileUpdateInput holds the fields a user may change on their own profile.
type ProfileUpdateInput struct {
	Phone  *string
	Gender *string
	CityID *int
}

// UserService handles profile reads and updates.
type UserService struct {
	userRepo     repository.UserRepository
	locationRepo repository.LocationRepository
}

// NewUserService creates the user profile service.
func NewUserService(userRepo repository.UserRepository, locationRepo repository.LocationRepository) *UserService {
	return &UserService{
		userRepo:     userRepo,
		locationRepo: locationRepo,
	}
}

// GetProfile returns the user with its location resolved. A stale city
// reference degrades to a profile without location rather than an error.
func (s *UserService) GetProfile(userID uuid.UUID) (*Profile, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}

	profile := &Profile{User: user}
	if user.CityID != nil {
		city, err := s.locationRepo.GetCityByID(*user.CityID)
		if err == nil {
			profile.City = city
			profile.Department = &city.Department
		} else if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
	}
	return profile, nil
}

// UpdateProfile applies the provided fields to the user's profile.
func (s *UserService) UpdateProfile(userID uuid.UUID, input ProfileUpdateInput) (*Profile, error) {
	updates := map[string]interface{}{}
	if input.Phone != nil {
		updates["phone"] = strings.TrimSpace(*input.Phone)
	}
	if input.Gender != nil {
		updates["gender"] = strings.TrimSpace(*input.Gender)
	}
	if input.CityID != nil {
		if _, err := s.locationRepo.GetCityByID(*input.CityID); err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, fmt.Errorf("%w: unknown city", apperrors.ErrValidation)
			}
			return nil, err
		}
		updates["city_id"] = *input.CityID
	}

	if len(updates) > 0 {
		if err := s.userRepo.UpdateProfile(userID, updates); err != nil {
			return nil, err
		}
	}
	return s.GetProfile(userID)
}

// ListUsers returns a page of users, optionally filtered by status,
// together with the total count for the filter. Admin only.
func (s *UserService) ListUsers(status string, page, pageSize int) ([]entity.User, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	var filter entity.AccountStatus
	if status != "" {
		filter = entity.AccountStatus(strings.ToUpper(strings.TrimSpace(status)))
		if !filter.Valid() {
			return nil, 0, fmt.Errorf("%w: unknown status %q", apperrors.ErrValidation, status)
		}
	}

	return s.userRepo.List(filter, pageSize, (page-1)*pageSize)
}

// ChangePassword verifies the current password before setting a new one.
func (s *UserService) ChangePassword(userID uuid.UUID, currentPassword, newPassword string) error {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return err
	}

	if !user.CheckPassword(currentPassword) {
		return fmt.Errorf("%w: current password is incorrect", apperrors.ErrUnauthorized)
	}

	if len(newPassword) < 8 {
		return fmt.Errorf("%w: password must be at least 8 characters", apperrors.ErrValidation)
	}
	if newPassword == currentPassword {
		return fmt.Errorf("%w: new password must differ from the current one", apperrors.ErrValidation)
	}

	return s.userRepo.UpdatePassword(userID, newPassword)
}
