package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/credit-api/internal/domain/entity"
	"github.com/yourusername/credit-api/internal/service"
)

// LocationDTO is the resolved city/department pair on a profile.
type LocationDTO struct {
	CityID         int    `json:"city_id"`
	CityName       string `json:"city_name"`
	DepartmentID   int    `json:"department_id"`
	DepartmentName string `json:"department_name"`
}

// ProfileResponse is a user profile in client format.
type ProfileResponse struct {
	ID                 uuid.UUID    `json:"id"`
	FirstNames         string       `json:"first_names"`
	FirstSurname       string       `json:"first_surname"`
	SecondSurname      string       `json:"second_surname,omitempty"`
	FullName           string       `json:"full_name"`
	IdentificationType string       `json:"identification_type"`
	Identification     string       `json:"identification"`
	Email              string       `json:"email"`
	Phone              string       `json:"phone"`
	Gender             string       `json:"gender,omitempty"`
	Role               string       `json:"role"`
	Status             string       `json:"status"`
	Location           *LocationDTO `json:"location,omitempty"`
	CreatedAt          time.Time    `json:"created_at"`
	UpdatedAt          time.Time    `json:"updated_at"`
}

// NewProfileResponse builds the profile DTO from a service profile.
func NewProfileResponse(p *service.Profile) *ProfileResponse {
	resp := &ProfileResponse{
		ID:                 p.User.ID,
		FirstNames:         p.User.FirstNames,
		FirstSurname:       p.User.FirstSurname,
		SecondSurname:      p.User.SecondSurname,
		FullName:           p.User.FullName(),
		IdentificationType: p.User.IdentificationType,
		Identification:     p.User.Identification,
		Email:              p.User.Email,
		Phone:              p.User.Phone,
		Gender:             p.User.Gender,
		Role:               p.User.Role,
		Status:             string(p.User.Status),
		CreatedAt:          p.User.CreatedAt,
		UpdatedAt:          p.User.UpdatedAt,
	}
	if p.City != nil && p.Department != nil {
		resp.Location = &LocationDTO{
			CityID:         p.City.ID,
			CityName:       p.City.Name,
			DepartmentID:   p.Department.ID,
			DepartmentName: p.Department.Name,
		}
	}
	return resp
}

// UserListItem is one row of the admin user list.
type UserListItem struct {
	ID             uuid.UUID `json:"id"`
	FullName       string    `json:"full_name"`
	Identification string    `json:"identification"`
	Email          string    `json:"email"`
	Phone          string    `json:"phone"`
	Status         string    `json:"status"`
	Role           string    `json:"role"`
	CreatedAt      time.Time `json:"created_at"`
}

// PaginatedUserResponse is the admin user list page.
type PaginatedUserResponse struct {
	Users   []*UserListItem `json:"users"`
	Total   int64           `json:"total"`
	Page    int             `json:"page"`
	PerPage int             `json:"per_page"`
}

// NewUserListItem builds one admin list row.
func NewUserListItem(u *entity.User) *UserListItem {
	return &UserListItem{
		ID:             u.ID,
		FullName:       u.FullName(),
		Identification: u.Identification,
		Email:          u.Email,
		Phone:          u.Phone,
		Status:         string(u.Status),
		Role:           u.Role,
		CreatedAt:      u.CreatedAt,
	}
}
