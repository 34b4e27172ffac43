package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/yourusername/credit-api/internal/domain/entity"
	apperrors "github.com/yourusername/credit-api/internal/pkg/errors"
)

// LocationRepo implements repository.LocationRepository on PostgreSQL.
type LocationRepo struct {
	db *gorm.DB
}

func NewLocationRepo(db *gorm.DB) *LocationRepo {
	return &LocationRepo{db: db}
}

// SearchCities matches the query against city and department names.
func (r *LocationRepo) SearchCities(query string, limit int) ([]entity.CityWithDepartment, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	tx := r.db.Table("cities").
		Select("cities.id, cities.name, departments.name AS department").
		Joins("JOIN departments ON departments.id = cities.department_id")

	if query != "" {
		pattern := "%" + query + "%"
		tx = tx.Where("cities.name ILIKE ? OR departments.name ILIKE ?", pattern, pattern)
	}

	var results []entity.CityWithDepartment
	err := tx.Order("cities.name ASC").Limit(limit).Scan(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (r *LocationRepo) GetCityByID(id int) (*entity.City, error) {
	var city entity.City
	err := r.db.Preload("Department").First(&city, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &city, nil
}
