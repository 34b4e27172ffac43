package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/credit-api/internal/domain/entity"
	apperrors "github.com/yourusername/credit-api/internal/pkg/errors"
)

// MockLocationRepository implements repository.LocationRepository
type MockLocationRepository struct {
	mock.Mock
}

func (m *MockLocationRepository) SearchCities(query string, limit int) ([]entity.CityWithDepartment, error) {
	args := m.Called(query, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.CityWithDepartment), args.Error(1)
}

func (m *MockLocationRepository) GetCityByID(id int) (*entity.City, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.City), args.Error(1)
}

// MockCacheRepository implements repository.CacheRepository
type MockCacheRepository struct {
	mock.Mock
}

func (m *MockCacheRepository) Get(key string) (string, error) {
	args := m.Called(key)
	return args.String(0), args.Error(1)
}

func (m *MockCacheRepository) Set(key string, value interface{}, expiration time.Duration) error {
	args := m.Called(key, value, expiration)
	return args.Error(0)
}

func (m *MockCacheRepository) Delete(key string) error {
	args := m.Called(key)
	return args.Error(0)
}

func (m *MockCacheRepository) GetJSON(key string, dest interface{}) error {
	args := m.Called(key, dest)
	return args.Error(0)
}

func (m *MockCacheRepository) SetJSON(key string, value interface{}, expiration time.Duration) error {
	args := m.Called(key, value, expiration)
	return args.Error(0)
}

func TestSearchCities_CacheMissQueriesDatabase(t *testing.T) {
	locationRepo := new(MockLocationRepository)
	cacheRepo := new(MockCacheRepository)
	svc := NewLocationService(locationRepo, cacheRepo)

	results := []entity.CityWithDepartment{
		{ID: 1, Name: "Medellín", Department: "Antioquia"},
	}

	cacheRepo.On("GetJSON", "cities:search:mede:20", mock.Anything).Return(apperrors.ErrNotFound)
	locationRepo.On("SearchCities", "Mede", 20).Return(results, nil)
	cacheRepo.On("SetJSON", "cities:search:mede:20", results, citySearchCacheTTL).Return(nil)

	got, err := svc.SearchCities("Mede", 20)

	require.NoError(t, err)
	assert.Equal(t, results, got)
	locationRepo.AssertExpectations(t)
	cacheRepo.AssertExpectations(t)
}

func TestSearchCities_CacheHitSkipsDatabase(t *testing.T) {
	locationRepo := new(MockLocationRepository)
	cacheRepo := new(MockCacheRepository)
	svc := NewLocationService(locationRepo, cacheRepo)

	cacheRepo.On("GetJSON", "cities:search:mede:20", mock.Anything).
		Run(func(args mock.Arguments) {
			dest := args.Get(1).(*[]entity.CityWithDepartment)
			*dest = []entity.CityWithDepartment{{ID: 1, Name: "Medellín"}}
		}).
		Return(nil)

	got, err := svc.SearchCities("Mede", 20)

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Medellín", got[0].Name)
	locationRepo.AssertNotCalled(t, "SearchCities", mock.Anything, mock.Anything)
}

func TestSearchCities_QueryTooShort(t *testing.T) {
	svc := NewLocationService(new(MockLocationRepository), new(MockCacheRepository))

	_, err := svc.SearchCities(" m ", 20)

	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestSearchCities_CacheWriteFailureIsIgnored(t *testing.T) {
	locationRepo := new(MockLocationRepository)
	cacheRepo := new(MockCacheRepository)
	svc := NewLocationService(locationRepo, cacheRepo)

	results := []entity.CityWithDepartment{{ID: 6, Name: "Bogotá"}}

	cacheRepo.On("GetJSON", mock.Anything, mock.Anything).Return(apperrors.ErrNotFound)
	locationRepo.On("SearchCities", "Bogo", 10).Return(results, nil)
	cacheRepo.On("SetJSON", mock.Anything, mock.Anything, mock.Anything).Return(assert.AnError)

	got, err := svc.SearchCities("Bogo", 10)

	require.NoError(t, err)
	assert.Equal(t, results, got)
}
