package repository

import "github.com/yourusername/credit-api/internal/domain/entity"

// LocationRepository reads the seeded city/department reference data.
type LocationRepository interface {
	// SearchCities matches the query against city and department names
	// (case-insensitive substring); an empty query lists all cities up to limit.
	SearchCities(query string, limit int) ([]entity.CityWithDepartment, error)
	GetCityByID(id int) (*entity.City, error)
}
