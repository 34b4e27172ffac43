package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/yourusername/credit-api/internal/domain/entity"
	apperrors "github.com/yourusername/credit-api/internal/pkg/errors"
)

// ============================================================================
// Mocks
// ============================================================================

// mockTxRunner runs the transaction body directly; the repos under test are
// mocks and ignore the tx argument.
type mockTxRunner struct{}

func (m *mockTxRunner) Transaction(fc func(tx *gorm.DB) error, opts ...*sql.TxOptions) error {
	return fc(nil)
}

// MockUserRepository implements repository.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(user *entity.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) CreateTx(tx *gorm.DB, user *entity.User) error {
	args := m.Called(tx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(id uuid.UUID) (*entity.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(email string) (*entity.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepository) GetByIdentification(identification string) (*entity.User, error) {
	args := m.Called(identification)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepository) Update(user *entity.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateProfile(userID uuid.UUID, updates map[string]interface{}) error {
	args := m.Called(userID, updates)
	return args.Error(0)
}

func (m *MockUserRepository) UpdatePassword(userID uuid.UUID, newPassword string) error {
	args := m.Called(userID, newPassword)
	return args.Error(0)
}

func (m *MockUserRepository) Activate(tx *gorm.DB, userID uuid.UUID) error {
	args := m.Called(tx, userID)
	return args.Error(0)
}

func (m *MockUserRepository) DeletePendingBefore(cutoff time.Time) (int64, error) {
	args := m.Called(cutoff)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) List(status entity.AccountStatus, limit, offset int) ([]entity.User, int64, error) {
	args := m.Called(status, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]entity.User), args.Get(1).(int64), args.Error(2)
}

// MockVerificationCodeRepository implements repository.VerificationCodeRepository
type MockVerificationCodeRepository struct {
	mock.Mock
}

func (m *MockVerificationCodeRepository) Create(code *entity.VerificationCode) error {
	args := m.Called(code)
	return args.Error(0)
}

func (m *MockVerificationCodeRepository) CreateTx(tx *gorm.DB, code *entity.VerificationCode) error {
	args := m.Called(tx, code)
	return args.Error(0)
}

func (m *MockVerificationCodeRepository) GetLatestByUserID(userID uuid.UUID, channel string) (*entity.VerificationCode, error) {
	args := m.Called(userID, channel)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.VerificationCode), args.Error(1)
}

func (m *MockVerificationCodeRepository) IncrementAttempts(id uuid.UUID) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockVerificationCodeRepository) MarkExpired(id uuid.UUID) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockVerificationCodeRepository) MarkVerified(tx *gorm.DB, id uuid.UUID) error {
	args := m.Called(tx, id)
	return args.Error(0)
}

func (m *MockVerificationCodeRepository) DeleteByUserID(userID uuid.UUID) error {
	args := m.Called(userID)
	return args.Error(0)
}

// ============================================================================
// Helpers
// ============================================================================

const testPepper = "test-pepper"

func newTestVerificationService(t *testing.T, codeRepo *MockVerificationCodeRepository, userRepo *MockUserRepository) *VerificationService {
	t.Helper()
	svc, err := NewVerificationService(&mockTxRunner{}, codeRepo, userRepo, 10*time.Minute, 5, 60*time.Second, testPepper)
	require.NoError(t, err)
	return svc
}

// pendingCode builds a live PENDING record for the given plaintext code.
func pendingCode(userID uuid.UUID, plaintext string) *entity.VerificationCode {
	salt := "0123456789abcdef"
	now := time.Now()
	return &entity.VerificationCode{
		ID:           uuid.New(),
		UserID:       userID,
		Channel:      entity.ChannelEmail,
		CodeHash:     hashVerificationCode(plaintext, salt, testPepper),
		CodeSalt:     salt,
		State:        entity.CodePending,
		IssuedAt:     now.Add(-1 * time.Minute),
		ExpiresAt:    now.Add(9 * time.Minute),
		AttemptCount: 0,
		MaxAttempts:  5,
	}
}

// ============================================================================
// Validate
// ============================================================================

func TestValidate_CorrectCodeActivatesAccount(t *testing.T) {
	codeRepo := new(MockVerificationCodeRepository)
	userRepo := new(MockUserRepository)
	svc := newTestVerificationService(t, codeRepo, userRepo)

	userID := uuid.New()
	record := pendingCode(userID, "123456")

	codeRepo.On("GetLatestByUserID", userID, entity.ChannelEmail).Return(record, nil)
	codeRepo.On("MarkVerified", mock.Anything, record.ID).Return(nil)
	userRepo.On("Activate", mock.Anything, userID).Return(nil)

	err := svc.Validate(context.Background(), userID, "123456")

	assert.NoError(t, err)
	codeRepo.AssertExpectations(t)
	userRepo.AssertExpectations(t)
}

func TestValidate_ExpiredCode(t *testing.T) {
	codeRepo := new(MockVerificationCodeRepository)
	userRepo := new(MockUserRepository)
	svc := newTestVerificationService(t, codeRepo, userRepo)

	userID := uuid.New()
	record := pendingCode(userID, "123456")
	record.ExpiresAt = time.Now().Add(-1 * time.Second)

	codeRepo.On("GetLatestByUserID", userID, entity.ChannelEmail).Return(record, nil)
	codeRepo.On("MarkExpired", record.ID).Return(nil)

	err := svc.Validate(context.Background(), userID, "123456")

	assert.ErrorIs(t, err, ErrVerificationExpired)
	codeRepo.AssertCalled(t, "MarkExpired", record.ID)
	userRepo.AssertNotCalled(t, "Activate", mock.Anything, mock.Anything)
}

func TestValidate_WrongCodeIncrementsAttempts(t *testing.T) {
	codeRepo := new(MockVerificationCodeRepository)
	userRepo := new(MockUserRepository)
	svc := newTestVerificationService(t, codeRepo, userRepo)

	userID := uuid.New()
	record := pendingCode(userID, "123456")

	codeRepo.On("GetLatestByUserID", userID, entity.ChannelEmail).Return(record, nil)
	codeRepo.On("IncrementAttempts", record.ID).Return(nil)

	err := svc.Validate(context.Background(), userID, "654321")

	assert.ErrorIs(t, err, ErrInvalidVerificationCode)
	codeRepo.AssertCalled(t, "IncrementAttempts", record.ID)
	userRepo.AssertNotCalled(t, "Activate", mock.Anything, mock.Anything)
}

func TestValidate_ConsumedCodeIsRejected(t *testing.T) {
	codeRepo := new(MockVerificationCodeRepository)
	userRepo := new(MockUserRepository)
	svc := newTestVerificationService(t, codeRepo, userRepo)

	userID := uuid.New()
	record := pendingCode(userID, "123456")
	record.State = entity.CodeVerified

	codeRepo.On("GetLatestByUserID", userID, entity.ChannelEmail).Return(record, nil)

	// Replaying the correct code after consumption must fail.
	err := svc.Validate(context.Background(), userID, "123456")

	assert.ErrorIs(t, err, ErrNoPendingVerificationCode)
}

func TestValidate_NoCodeIssued(t *testing.T) {
	codeRepo := new(MockVerificationCodeRepository)
	userRepo := new(MockUserRepository)
	svc := newTestVerificationService(t, codeRepo, userRepo)

	userID := uuid.New()
	codeRepo.On("GetLatestByUserID", userID, entity.ChannelEmail).Return(nil, apperrors.ErrNotFound)

	err := svc.Validate(context.Background(), userID, "123456")

	assert.ErrorIs(t, err, ErrNoPendingVerificationCode)
}

func TestValidate_AttemptCap(t *testing.T) {
	codeRepo := new(MockVerificationCodeRepository)
	userRepo := new(MockUserRepository)
	svc := newTestVerificationService(t, codeRepo, userRepo)

	userID := uuid.New()

	t.Run("last attempt exhausts the cap", func(t *testing.T) {
		record := pendingCode(userID, "123456")
		record.AttemptCount = 4

		codeRepo.On("GetLatestByUserID", userID, entity.ChannelEmail).Return(record, nil).Once()
		codeRepo.On("IncrementAttempts", record.ID).Return(nil).Once()

		err := svc.Validate(context.Background(), userID, "000000")
		assert.ErrorIs(t, err, ErrVerificationAttemptsExceeded)
	})

	t.Run("exhausted code rejects even the correct value", func(t *testing.T) {
		record := pendingCode(userID, "123456")
		record.AttemptCount = 5

		codeRepo.On("GetLatestByUserID", userID, entity.ChannelEmail).Return(record, nil).Once()

		err := svc.Validate(context.Background(), userID, "123456")
		assert.ErrorIs(t, err, ErrVerificationAttemptsExceeded)
		userRepo.AssertNotCalled(t, "Activate", mock.Anything, mock.Anything)
	})
}

func TestValidate_ConcurrentWinnerConflict(t *testing.T) {
	codeRepo := new(MockVerificationCodeRepository)
	userRepo := new(MockUserRepository)
	svc := newTestVerificationService(t, codeRepo, userRepo)

	userID := uuid.New()
	record := pendingCode(userID, "123456")

	codeRepo.On("GetLatestByUserID", userID, entity.ChannelEmail).Return(record, nil)
	// Another request consumed the row between our read and our write.
	codeRepo.On("MarkVerified", mock.Anything, record.ID).Return(apperrors.ErrConflict)

	err := svc.Validate(context.Background(), userID, "123456")

	assert.ErrorIs(t, err, ErrNoPendingVerificationCode)
	userRepo.AssertNotCalled(t, "Activate", mock.Anything, mock.Anything)
}

func TestValidate_EmptyCode(t *testing.T) {
	codeRepo := new(MockVerificationCodeRepository)
	userRepo := new(MockUserRepository)
	svc := newTestVerificationService(t, codeRepo, userRepo)

	err := svc.Validate(context.Background(), uuid.New(), "   ")

	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

// ============================================================================
// IssueTx
// ============================================================================

func TestIssueTx_CreatesHashedCode(t *testing.T) {
	codeRepo := new(MockVerificationCodeRepository)
	userRepo := new(MockUserRepository)
	svc := newTestVerificationService(t, codeRepo, userRepo)

	userID := uuid.New()
	codeRepo.On("GetLatestByUserID", userID, entity.ChannelEmail).Return(nil, apperrors.ErrNotFound)
	codeRepo.On("CreateTx", mock.Anything, mock.AnythingOfType("*entity.VerificationCode")).Return(nil)

	before := time.Now()
	plaintext, record, err := svc.IssueTx(nil, userID)

	require.NoError(t, err)
	assert.Len(t, plaintext, 6)
	assert.Regexp(t, `^\d{6}$`, plaintext)

	require.NotNil(t, record)
	assert.Equal(t, entity.CodePending, record.State)
	assert.Equal(t, 5, record.MaxAttempts)
	assert.Equal(t, 0, record.AttemptCount)
	// The plaintext never lands in the record.
	assert.NotContains(t, record.CodeHash, plaintext)
	assert.Equal(t, hashVerificationCode(plaintext, record.CodeSalt, testPepper), record.CodeHash)
	assert.WithinDuration(t, before.Add(10*time.Minute), record.ExpiresAt, 2*time.Second)
}

func TestIssueTx_ResendCooldown(t *testing.T) {
	codeRepo := new(MockVerificationCodeRepository)
	userRepo := new(MockUserRepository)
	svc := newTestVerificationService(t, codeRepo, userRepo)

	userID := uuid.New()
	recent := pendingCode(userID, "123456")
	recent.IssuedAt = time.Now().Add(-5 * time.Second)

	codeRepo.On("GetLatestByUserID", userID, entity.ChannelEmail).Return(recent, nil)

	_, _, err := svc.IssueTx(nil, userID)

	assert.ErrorIs(t, err, ErrVerificationResendCooldown)
	codeRepo.AssertNotCalled(t, "CreateTx", mock.Anything, mock.Anything)
}

func TestIssueTx_MostRecentCodeWins(t *testing.T) {
	codeRepo := new(MockVerificationCodeRepository)
	userRepo := new(MockUserRepository)
	svc := newTestVerificationService(t, codeRepo, userRepo)

	userID := uuid.New()
	old := pendingCode(userID, "111111")
	old.IssuedAt = time.Now().Add(-2 * time.Minute)

	codeRepo.On("GetLatestByUserID", userID, entity.ChannelEmail).Return(old, nil).Once()
	codeRepo.On("CreateTx", mock.Anything, mock.AnythingOfType("*entity.VerificationCode")).Return(nil)

	plaintext, record, err := svc.IssueTx(nil, userID)
	require.NoError(t, err)

	// Validation now sees only the new record; the old code is dead.
	codeRepo.On("GetLatestByUserID", userID, entity.ChannelEmail).Return(record, nil)
	codeRepo.On("IncrementAttempts", record.ID).Return(nil)
	codeRepo.On("MarkVerified", mock.Anything, record.ID).Return(nil)
	userRepo.On("Activate", mock.Anything, userID).Return(nil)

	assert.ErrorIs(t, svc.Validate(context.Background(), userID, "111111"), ErrInvalidVerificationCode)
	assert.NoError(t, svc.Validate(context.Background(), userID, plaintext))
}

func TestGenerateVerificationCode_Format(t *testing.T) {
	for i := 0; i < 50; i++ {
		code, err := generateVerificationCode()
		require.NoError(t, err)
		assert.Regexp(t, `^\d{6}$`, code)
	}
}
