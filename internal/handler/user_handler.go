package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yourusername/credit-api/internal/handler/dto"
	"github.com/yourusername/credit-api/internal/middleware"
	"github.com/yourusername/credit-api/internal/service"
)

// UserHandler handles the authenticated user's profile and references.
type UserHandler struct {
	userService      *service.UserService
	referenceService *service.ReferenceService
}

// NewUserHandler creates a new user handler.
func NewUserHandler(userService *service.UserService, referenceService *service.ReferenceService) *UserHandler {
	return &UserHandler{
		userService:      userService,
		referenceService: referenceService,
	}
}

// UpdateProfileRequest carries the profile fields a user may change.
type UpdateProfileRequest struct {
	Phone  *string `json:"phone" binding:"omitempty,min=7,max=20"`
	Gender *string `json:"gender" binding:"omitempty,max=20"`
	CityID *int    `json:"city_id" binding:"omitempty,gt=0"`
}

// ChangePasswordRequest carries the password change payload.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8,max=72"`
}

// ReferenceRequest carries a contact reference form.
type ReferenceRequest struct {
	Type         string `json:"type" binding:"required,oneof=FAMILY PERSONAL family personal"`
	FullName     string `json:"full_name" binding:"required,min=2,max=200"`
	Phone        string `json:"phone" binding:"required,min=7,max=20"`
	Relationship string `json:"relationship" binding:"omitempty,max=50"`
}

// GetProfile returns the caller's profile with its resolved location.
func (h *UserHandler) GetProfile(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized", "error_type": "unauthorized"})
		return
	}

	profile, err := h.userService.GetProfile(userID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewProfileResponse(profile))
}

// UpdateProfile applies partial updates to the caller's profile.
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized", "error_type": "unauthorized"})
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": err.Error()})
		return
	}

	profile, err := h.userService.UpdateProfile(userID, service.ProfileUpdateInput{
		Phone:  req.Phone,
		Gender: req.Gender,
		CityID: req.CityID,
	})
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewProfileResponse(profile))
}

// ChangePassword changes the caller's password after verifying the current
// one.
func (h *UserHandler) ChangePassword(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized", "error_type": "unauthorized"})
		return
	}

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": err.Error()})
		return
	}

	if err := h.userService.ChangePassword(userID, req.CurrentPassword, req.NewPassword); err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password changed"})
}

// CreateReference adds a reference for the caller. Each type slot may be
// filled once.
func (h *UserHandler) CreateReference(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized", "error_type": "unauthorized"})
		return
	}

	var req ReferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": err.Error()})
		return
	}

	ref, err := h.referenceService.Create(userID, service.ReferenceInput{
		Type:         req.Type,
		FullName:     req.FullName,
		Phone:        req.Phone,
		Relationship: req.Relationship,
	})
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"reference": ref})
}

// UpdateReference rewrites one of the caller's references in place.
func (h *UserHandler) UpdateReference(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized", "error_type": "unauthorized"})
		return
	}

	refID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid reference id", "error_type": "validation_error"})
		return
	}

	var req ReferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": err.Error()})
		return
	}

	ref, err := h.referenceService.Update(userID, refID, service.ReferenceInput{
		Type:         req.Type,
		FullName:     req.FullName,
		Phone:        req.Phone,
		Relationship: req.Relationship,
	})
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"reference": ref})
}

// ListReferences returns all of the caller's references.
func (h *UserHandler) ListReferences(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized", "error_type": "unauthorized"})
		return
	}

	refs, err := h.referenceService.List(userID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"references": refs})
}

// DeleteReference removes one of the caller's references.
func (h *UserHandler) DeleteReference(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized", "error_type": "unauthorized"})
		return
	}

	refID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid reference id", "error_type": "validation_error"})
		return
	}

	if err := h.referenceService.Delete(userID, refID); err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Reference deleted"})
}
