package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/yourusername/credit-api/internal/domain/entity"
	"github.com/yourusername/credit-api/internal/domain/repository"
	apperrors "github.com/yourusername/credit-api/internal/pkg/errors"
	"github.com/yourusername/credit-api/pkg/auth"
)

// RegisterInput carries the fields collected by the signup form.
type RegisterInput struct {
	FirstNames         string
	FirstSurname       string
	SecondSurname      string
	IdentificationType string
	Identification     string
	Email              string
	Phone              string
	Gender             string
	Password           string
	CityID             *int
}

// AuthService handles registration, account activation and login.
type AuthService struct {
	tx           TxRunner
	userRepo     repository.UserRepository
	verification *VerificationService
	emailService EmailService
	jwtService   *auth.JWTService
	sendTimeout  time.Duration
}

// NewAuthService creates the authentication service.
func NewAuthService(
	tx TxRunner,
	userRepo repository.UserRepository,
	verification *VerificationService,
	emailService EmailService,
	jwtService *auth.JWTService,
	sendTimeout time.Duration,
) *AuthService {
	if sendTimeout <= 0 {
		sendTimeout = 15 * time.Second
	}
	return &AuthService{
		tx:           tx,
		userRepo:     userRepo,
		verification: verification,
		emailService: emailService,
		jwtService:   jwtService,
		sendTimeout:  sendTimeout,
	}
}

// Register creates a PENDING account and issues its first activation code in
// a single transaction, then dispatches the code by email off the request
// path. Delivery failures are logged and never surfaced to the caller.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*entity.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	identification := strings.TrimSpace(input.Identification)

	if _, err := s.userRepo.GetByEmail(email); err == nil {
		return nil, fmt.Errorf("%w: email already registered", apperrors.ErrConflict)
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}
	if _, err := s.userRepo.GetByIdentification(identification); err == nil {
		return nil, fmt.Errorf("%w: identification already registered", apperrors.ErrConflict)
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	user := &entity.User{
		FirstNames:         strings.TrimSpace(input.FirstNames),
		FirstSurname:       strings.TrimSpace(input.FirstSurname),
		SecondSurname:      strings.TrimSpace(input.SecondSurname),
		IdentificationType: strings.ToUpper(strings.TrimSpace(input.IdentificationType)),
		Identification:     identification,
		Email:              email,
		Phone:              strings.TrimSpace(input.Phone),
		Gender:             strings.TrimSpace(input.Gender),
		Password:           input.Password,
		CityID:             input.CityID,
		Role:               entity.RoleClient,
		Status:             entity.AccountPending,
	}

	var plainCode string
	err := s.tx.Transaction(func(tx *gorm.DB) error {
		if err := s.userRepo.CreateTx(tx, user); err != nil {
			return err
		}
		code, _, err := s.verification.IssueTx(tx, user.ID)
		if err != nil {
			return err
		}
		plainCode = code
		return nil
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return nil, fmt.Errorf("%w: account already registered", apperrors.ErrConflict)
		}
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	s.dispatchActivationCode(user, plainCode)

	return user, nil
}

// Activate validates the submitted code for the account registered under
// email and, on success, transitions the account to ACTIVE.
func (s *AuthService) Activate(ctx context.Context, email, code string) error {
	user, err := s.userRepo.GetByEmail(strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			// Unknown addresses get the same answer as wrong codes.
			return ErrInvalidVerificationCode
		}
		return err
	}
	if user.Status == entity.AccountActive {
		return ErrNoPendingVerificationCode
	}

	return s.verification.Validate(ctx, user.ID, code)
}

// Login authenticates by identification number and password and returns a
// signed token. Unknown identifications and wrong passwords produce the same
// error; only an activated account with correct credentials may log in.
func (s *AuthService) Login(ctx context.Context, identification, password string) (string, *entity.User, error) {
	user, err := s.userRepo.GetByIdentification(strings.TrimSpace(identification))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return "", nil, fmt.Errorf("%w: invalid credentials", apperrors.ErrUnauthorized)
		}
		return "", nil, err
	}

	if !user.CheckPassword(password) {
		return "", nil, fmt.Errorf("%w: invalid credentials", apperrors.ErrUnauthorized)
	}

	if !user.IsActive() {
		return "", nil, ErrAccountInactive
	}

	token, err := s.jwtService.GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return token, user, nil
}

// dispatchActivationCode sends the code on its own goroutine with a bounded
// timeout so a slow provider cannot hold the registration response.
func (s *AuthService) dispatchActivationCode(user *entity.User, code string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.sendTimeout)
		defer cancel()

		if err := s.emailService.SendActivationCode(ctx, user.Email, user.FullName(), code, s.verification.CodeTTL()); err != nil {
			log.Printf("[AuthService] Failed to send activation code to %s: %v", user.Email, err)
		}
	}()
}
