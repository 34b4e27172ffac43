package handler

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/credit-api/internal/service"
)

// AuthHandler handles registration, activation and login requests.
type AuthHandler struct {
	authService *service.AuthService
	tokenExpiry int
}

// NewAuthHandler creates a new authentication handler.
func NewAuthHandler(authService *service.AuthService, tokenExpirySeconds int) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		tokenExpiry: tokenExpirySeconds,
	}
}

// RegisterRequest is the signup payload.
type RegisterRequest struct {
	FirstNames         string `json:"first_names" binding:"required,min=2,max=100"`
	FirstSurname       string `json:"first_surname" binding:"required,min=2,max=60"`
	SecondSurname      string `json:"second_surname" binding:"omitempty,max=60"`
	IdentificationType string `json:"identification_type" binding:"required,oneof=CC CE PASSPORT cc ce passport"`
	Identification     string `json:"identification" binding:"required,min=5,max=20"`
	Email              string `json:"email" binding:"required,email"`
	Phone              string `json:"phone" binding:"required,min=7,max=20"`
	Gender             string `json:"gender" binding:"omitempty,max=20"`
	Password           string `json:"password" binding:"required,min=8,max=72"`
	CityID             *int   `json:"city_id" binding:"omitempty,gt=0"`
}

// ActivateRequest carries the activation code submitted by the user.
type ActivateRequest struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"required,len=6,numeric"`
}

// LoginRequest is the login payload.
type LoginRequest struct {
	Identification string `json:"identification" binding:"required"`
	Password       string `json:"password" binding:"required"`
}

// Register creates a PENDING account and emails its activation code.
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": err.Error()})
		return
	}

	user, err := h.authService.Register(c.Request.Context(), service.RegisterInput{
		FirstNames:         req.FirstNames,
		FirstSurname:       req.FirstSurname,
		SecondSurname:      req.SecondSurname,
		IdentificationType: req.IdentificationType,
		Identification:     req.Identification,
		Email:              req.Email,
		Phone:              req.Phone,
		Gender:             req.Gender,
		Password:           req.Password,
		CityID:             req.CityID,
	})
	if err != nil {
		handleError(c, err)
		return
	}

	log.Printf("[AuthHandler] User %s registered, activation pending", user.ID)

	c.JSON(http.StatusCreated, gin.H{
		"user":    user,
		"message": "Account created. Check your email for the activation code.",
	})
}

// Activate validates the emailed code and activates the account.
func (h *AuthHandler) Activate(c *gin.Context) {
	var req ActivateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": err.Error()})
		return
	}

	if err := h.authService.Activate(c.Request.Context(), req.Email, req.Code); err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Account activated"})
}

// Login authenticates by identification number and password.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": err.Error()})
		return
	}

	token, user, err := h.authService.Login(c.Request.Context(), req.Identification, req.Password)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":        user,
		"accessToken": token,
		"tokenType":   "Bearer",
		"expiresIn":   h.tokenExpiry,
	})
}
