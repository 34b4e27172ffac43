package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yourusername/credit-api/internal/domain/entity"
	"github.com/yourusername/credit-api/internal/domain/repository"
	apperrors "github.com/yourusername/credit-api/internal/pkg/errors"
)

// TxRunner abstracts gorm's transaction entrypoint so services can be
// exercised against mock stores in tests. *gorm.DB satisfies it.
type TxRunner interface {
	Transaction(fc func(tx *gorm.DB) error, opts ...*sql.TxOptions) error
}

// VerificationService owns the one-time-code state machine: issuance,
// validation and the atomic activation of the owning account.
type VerificationService struct {
	tx             TxRunner
	codeRepo       repository.VerificationCodeRepository
	userRepo       repository.UserRepository
	codeTTL        time.Duration
	maxAttempts    int
	resendCooldown time.Duration
	codePepper     string
}

// NewVerificationService creates the OTP issuer/validator.
func NewVerificationService(
	tx TxRunner,
	codeRepo repository.VerificationCodeRepository,
	userRepo repository.UserRepository,
	codeTTL time.Duration,
	maxAttempts int,
	resendCooldown time.Duration,
	codePepper string,
) (*VerificationService, error) {
	if tx == nil {
		return nil, fmt.Errorf("transaction runner is required")
	}
	if codeRepo == nil {
		return nil, fmt.Errorf("verification code repository is required")
	}
	if userRepo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if codeTTL <= 0 {
		codeTTL = 10 * time.Minute
	}
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	if resendCooldown <= 0 {
		resendCooldown = 60 * time.Second
	}

	return &VerificationService{
		tx:             tx,
		codeRepo:       codeRepo,
		userRepo:       userRepo,
		codeTTL:        codeTTL,
		maxAttempts:    maxAttempts,
		resendCooldown: resendCooldown,
		codePepper:     codePepper,
	}, nil
}

// CodeTTL returns the configured code lifetime.
func (s *VerificationService) CodeTTL() time.Duration {
	return s.codeTTL
}

// IssueTx creates a new one-time code for the user inside the given
// transaction and returns the plaintext exactly once, for immediate
// out-of-band delivery. Prior codes are left untouched; validation only
// ever considers the most recently issued one.
func (s *VerificationService) IssueTx(tx *gorm.DB, userID uuid.UUID) (string, *entity.VerificationCode, error) {
	now := time.Now()

	latest, err := s.codeRepo.GetLatestByUserID(userID, entity.ChannelEmail)
	if err == nil && latest != nil && now.Before(latest.IssuedAt.Add(s.resendCooldown)) {
		return "", nil, fmt.Errorf("%w: please wait before requesting a new code", ErrVerificationResendCooldown)
	}

	code, err := generateVerificationCode()
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate verification code: %w", err)
	}
	salt, err := generateVerificationSalt()
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate verification salt: %w", err)
	}

	record := &entity.VerificationCode{
		UserID:       userID,
		Channel:      entity.ChannelEmail,
		CodeHash:     hashVerificationCode(code, salt, s.codePepper),
		CodeSalt:     salt,
		State:        entity.CodePending,
		IssuedAt:     now,
		ExpiresAt:    now.Add(s.codeTTL),
		AttemptCount: 0,
		MaxAttempts:  s.maxAttempts,
	}
	if err := s.codeRepo.CreateTx(tx, record); err != nil {
		return "", nil, fmt.Errorf("failed to create verification code: %w", err)
	}

	return code, record, nil
}

// Validate checks the submitted code against the live (most recent) code for
// the account and on success atomically marks the code VERIFIED and the
// account ACTIVE. Outcomes are the sentinel errors in auth_errors.go; a nil
// return means the code was accepted.
func (s *VerificationService) Validate(ctx context.Context, userID uuid.UUID, submitted string) error {
	if strings.TrimSpace(submitted) == "" {
		return fmt.Errorf("%w: empty verification code", apperrors.ErrValidation)
	}

	record, err := s.codeRepo.GetLatestByUserID(userID, entity.ChannelEmail)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return ErrNoPendingVerificationCode
		}
		return err
	}
	if !record.IsPending() {
		return ErrNoPendingVerificationCode
	}

	now := time.Now()
	if record.IsExpired(now) {
		// Lazy expiry marking; the stored state only matters for bookkeeping.
		if markErr := s.codeRepo.MarkExpired(record.ID); markErr != nil {
			return fmt.Errorf("failed to mark code expired: %w", markErr)
		}
		return ErrVerificationExpired
	}
	if record.AttemptsExhausted() {
		return ErrVerificationAttemptsExceeded
	}

	expectedHash := hashVerificationCode(submitted, record.CodeSalt, s.codePepper)
	if subtle.ConstantTimeCompare([]byte(expectedHash), []byte(record.CodeHash)) != 1 {
		_ = s.codeRepo.IncrementAttempts(record.ID)
		if record.AttemptCount+1 >= record.MaxAttempts {
			return ErrVerificationAttemptsExceeded
		}
		return ErrInvalidVerificationCode
	}

	// Both transitions commit together or not at all. The conditional
	// updates underneath guarantee a single winner under concurrency.
	err = s.tx.Transaction(func(tx *gorm.DB) error {
		if err := s.codeRepo.MarkVerified(tx, record.ID); err != nil {
			return err
		}
		return s.userRepo.Activate(tx, userID)
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			// A concurrent validation won, or the sweeper removed the account.
			return ErrNoPendingVerificationCode
		}
		return fmt.Errorf("failed to activate account: %w", err)
	}
	return nil
}

func generateVerificationCode() (string, error) {
	max := big.NewInt(1000000)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func generateVerificationSalt() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func hashVerificationCode(code, salt, pepper string) string {
	sum := sha256.Sum256([]byte(pepper + ":" + salt + ":" + code))
	return hex.EncodeToString(sum[:])
}
