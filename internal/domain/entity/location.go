package entity

// Department is a top-level administrative region. Seeded by migration.
type Department struct {
	ID   int    `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:100;not null;uniqueIndex" json:"name"`
}

func (Department) TableName() string {
	return "departments"
}

// City belongs to a department. Seeded by migration.
type City struct {
	ID           int        `gorm:"primaryKey" json:"id"`
	DepartmentID int        `gorm:"not null;index" json:"department_id"`
	Name         string     `gorm:"size:100;not null" json:"name"`
	Department   Department `gorm:"foreignKey:DepartmentID" json:"department"`
}

func (City) TableName() string {
	return "cities"
}

// CityWithDepartment is the flattened search result returned to clients.
type CityWithDepartment struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	Department string `json:"department"`
}
