package service

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/yourusername/credit-api/internal/domain/entity"
	"github.com/yourusername/credit-api/internal/domain/repository"
	apperrors "github.com/yourusername/credit-api/internal/pkg/errors"
)

const (
	citySearchCacheTTL = 6 * time.Hour
	citySearchMinChars = 2
)

// LocationService serves the city/department catalog used by the signup and
// profile forms. Search results are cached; the catalog changes rarely.
type LocationService struct {
	locationRepo repository.LocationRepository
	cacheRepo    repository.CacheRepository
}

// NewLocationService creates the location search service.
func NewLocationService(locationRepo repository.LocationRepository, cacheRepo repository.CacheRepository) *LocationService {
	return &LocationService{
		locationRepo: locationRepo,
		cacheRepo:    cacheRepo,
	}
}

// SearchCities finds cities whose name or department name matches the query.
// Cache failures fall through to the database.
func (s *LocationService) SearchCities(query string, limit int) ([]entity.CityWithDepartment, error) {
	query = strings.TrimSpace(query)
	if len(query) < citySearchMinChars {
		return nil, fmt.Errorf("%w: query must be at least %d characters", apperrors.ErrValidation, citySearchMinChars)
	}

	cacheKey := fmt.Sprintf("cities:search:%s:%d", strings.ToLower(query), limit)

	var cached []entity.CityWithDepartment
	if err := s.cacheRepo.GetJSON(cacheKey, &cached); err == nil {
		return cached, nil
	}

	cities, err := s.locationRepo.SearchCities(query, limit)
	if err != nil {
		return nil, err
	}

	if err := s.cacheRepo.SetJSON(cacheKey, cities, citySearchCacheTTL); err != nil {
		log.Printf("[LocationService] Failed to cache search results: %v", err)
	}

	return cities, nil
}

// GetCity returns a city with its department.
func (s *LocationService) GetCity(id int) (*entity.City, error) {
	return s.locationRepo.GetCityByID(id)
}
