package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/yourusername/credit-api/internal/domain/entity"
	apperrors "github.com/yourusername/credit-api/internal/pkg/errors"
	"github.com/yourusername/credit-api/pkg/auth"
)

// recordingEmailService captures dispatches so async sends can be awaited.
type recordingEmailService struct {
	sent chan string
	err  error
}

func newRecordingEmailService(err error) *recordingEmailService {
	return &recordingEmailService{sent: make(chan string, 1), err: err}
}

func (s *recordingEmailService) SendActivationCode(ctx context.Context, toEmail, fullName, code string, ttl time.Duration) error {
	s.sent <- code
	return s.err
}

func newTestAuthService(t *testing.T, userRepo *MockUserRepository, codeRepo *MockVerificationCodeRepository, email EmailService) *AuthService {
	t.Helper()
	verification, err := NewVerificationService(&mockTxRunner{}, codeRepo, userRepo, 10*time.Minute, 5, 60*time.Second, testPepper)
	require.NoError(t, err)
	jwtService, err := auth.NewJWTService("test-secret", 60)
	require.NoError(t, err)
	return NewAuthService(&mockTxRunner{}, userRepo, verification, email, jwtService, time.Second)
}

func validRegisterInput() RegisterInput {
	return RegisterInput{
		FirstNames:         "Laura",
		FirstSurname:       "Gomez",
		IdentificationType: "CC",
		Identification:     "1020304050",
		Email:              "Laura.Gomez@example.com",
		Phone:              "3001234567",
		Password:           "secret-password",
	}
}

func TestRegister_CreatesPendingAccountAndSendsCode(t *testing.T) {
	userRepo := new(MockUserRepository)
	codeRepo := new(MockVerificationCodeRepository)
	email := newRecordingEmailService(nil)
	svc := newTestAuthService(t, userRepo, codeRepo, email)

	userRepo.On("GetByEmail", "laura.gomez@example.com").Return(nil, apperrors.ErrNotFound)
	userRepo.On("GetByIdentification", "1020304050").Return(nil, apperrors.ErrNotFound)
	userRepo.On("CreateTx", mock.Anything, mock.AnythingOfType("*entity.User")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*entity.User).ID = uuid.New()
		}).
		Return(nil)
	codeRepo.On("GetLatestByUserID", mock.Anything, entity.ChannelEmail).Return(nil, apperrors.ErrNotFound)
	codeRepo.On("CreateTx", mock.Anything, mock.AnythingOfType("*entity.VerificationCode")).Return(nil)

	user, err := svc.Register(context.Background(), validRegisterInput())

	require.NoError(t, err)
	assert.Equal(t, entity.AccountPending, user.Status)
	assert.Equal(t, "laura.gomez@example.com", user.Email)
	assert.Equal(t, "client", user.Role)

	select {
	case code := <-email.sent:
		assert.Regexp(t, `^\d{6}$`, code)
	case <-time.After(2 * time.Second):
		t.Fatal("activation code was never dispatched")
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	userRepo := new(MockUserRepository)
	codeRepo := new(MockVerificationCodeRepository)
	svc := newTestAuthService(t, userRepo, codeRepo, newRecordingEmailService(nil))

	existing := &entity.User{ID: uuid.New(), Email: "laura.gomez@example.com"}
	userRepo.On("GetByEmail", "laura.gomez@example.com").Return(existing, nil)

	_, err := svc.Register(context.Background(), validRegisterInput())

	assert.ErrorIs(t, err, apperrors.ErrConflict)
	userRepo.AssertNotCalled(t, "CreateTx", mock.Anything, mock.Anything)
}

func TestRegister_DuplicateIdentification(t *testing.T) {
	userRepo := new(MockUserRepository)
	codeRepo := new(MockVerificationCodeRepository)
	svc := newTestAuthService(t, userRepo, codeRepo, newRecordingEmailService(nil))

	userRepo.On("GetByEmail", "laura.gomez@example.com").Return(nil, apperrors.ErrNotFound)
	existing := &entity.User{ID: uuid.New(), Identification: "1020304050"}
	userRepo.On("GetByIdentification", "1020304050").Return(existing, nil)

	_, err := svc.Register(context.Background(), validRegisterInput())

	assert.ErrorIs(t, err, apperrors.ErrConflict)
	userRepo.AssertNotCalled(t, "CreateTx", mock.Anything, mock.Anything)
}

func TestRegister_EmailFailureIsNotFatal(t *testing.T) {
	userRepo := new(MockUserRepository)
	codeRepo := new(MockVerificationCodeRepository)
	email := newRecordingEmailService(errors.New("provider down"))
	svc := newTestAuthService(t, userRepo, codeRepo, email)

	userRepo.On("GetByEmail", mock.Anything).Return(nil, apperrors.ErrNotFound)
	userRepo.On("GetByIdentification", mock.Anything).Return(nil, apperrors.ErrNotFound)
	userRepo.On("CreateTx", mock.Anything, mock.AnythingOfType("*entity.User")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*entity.User).ID = uuid.New()
		}).
		Return(nil)
	codeRepo.On("GetLatestByUserID", mock.Anything, entity.ChannelEmail).Return(nil, apperrors.ErrNotFound)
	codeRepo.On("CreateTx", mock.Anything, mock.AnythingOfType("*entity.VerificationCode")).Return(nil)

	user, err := svc.Register(context.Background(), validRegisterInput())

	require.NoError(t, err)
	assert.Equal(t, entity.AccountPending, user.Status)

	select {
	case <-email.sent:
	case <-time.After(2 * time.Second):
		t.Fatal("dispatch was never attempted")
	}
}

func TestLogin_ActiveAccountReturnsToken(t *testing.T) {
	userRepo := new(MockUserRepository)
	codeRepo := new(MockVerificationCodeRepository)
	svc := newTestAuthService(t, userRepo, codeRepo, newRecordingEmailService(nil))

	hash, err := bcrypt.GenerateFromPassword([]byte("secret-password"), bcrypt.DefaultCost)
	require.NoError(t, err)

	user := &entity.User{
		ID:             uuid.New(),
		Identification: "1020304050",
		Email:          "laura.gomez@example.com",
		Password:       string(hash),
		Role:           "client",
		Status:         entity.AccountActive,
	}
	userRepo.On("GetByIdentification", "1020304050").Return(user, nil)

	token, got, err := svc.Login(context.Background(), "1020304050", "secret-password")

	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, user.ID, got.ID)
}

func TestLogin_PendingAccountIsRejectedDistinctly(t *testing.T) {
	userRepo := new(MockUserRepository)
	codeRepo := new(MockVerificationCodeRepository)
	svc := newTestAuthService(t, userRepo, codeRepo, newRecordingEmailService(nil))

	hash, err := bcrypt.GenerateFromPassword([]byte("secret-password"), bcrypt.DefaultCost)
	require.NoError(t, err)

	user := &entity.User{
		ID:             uuid.New(),
		Identification: "1020304050",
		Password:       string(hash),
		Status:         entity.AccountPending,
	}
	userRepo.On("GetByIdentification", "1020304050").Return(user, nil)

	_, _, err = svc.Login(context.Background(), "1020304050", "secret-password")

	// Correct credentials on an unactivated account must not read as
	// bad credentials.
	assert.ErrorIs(t, err, ErrAccountInactive)
	assert.NotErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestLogin_BadCredentialsAreIndistinguishable(t *testing.T) {
	userRepo := new(MockUserRepository)
	codeRepo := new(MockVerificationCodeRepository)
	svc := newTestAuthService(t, userRepo, codeRepo, newRecordingEmailService(nil))

	hash, err := bcrypt.GenerateFromPassword([]byte("secret-password"), bcrypt.DefaultCost)
	require.NoError(t, err)

	user := &entity.User{
		ID:             uuid.New(),
		Identification: "1020304050",
		Password:       string(hash),
		Status:         entity.AccountActive,
	}
	userRepo.On("GetByIdentification", "1020304050").Return(user, nil)
	userRepo.On("GetByIdentification", "9999999999").Return(nil, apperrors.ErrNotFound)

	_, _, wrongPassword := svc.Login(context.Background(), "1020304050", "wrong")
	_, _, unknownUser := svc.Login(context.Background(), "9999999999", "whatever")

	assert.ErrorIs(t, wrongPassword, apperrors.ErrUnauthorized)
	assert.ErrorIs(t, unknownUser, apperrors.ErrUnauthorized)
}

func TestActivate_UnknownEmailLooksLikeWrongCode(t *testing.T) {
	userRepo := new(MockUserRepository)
	codeRepo := new(MockVerificationCodeRepository)
	svc := newTestAuthService(t, userRepo, codeRepo, newRecordingEmailService(nil))

	userRepo.On("GetByEmail", "nobody@example.com").Return(nil, apperrors.ErrNotFound)

	err := svc.Activate(context.Background(), "nobody@example.com", "123456")

	assert.ErrorIs(t, err, ErrInvalidVerificationCode)
}

func TestActivate_AlreadyActiveAccount(t *testing.T) {
	userRepo := new(MockUserRepository)
	codeRepo := new(MockVerificationCodeRepository)
	svc := newTestAuthService(t, userRepo, codeRepo, newRecordingEmailService(nil))

	user := &entity.User{ID: uuid.New(), Email: "laura.gomez@example.com", Status: entity.AccountActive}
	userRepo.On("GetByEmail", "laura.gomez@example.com").Return(user, nil)

	err := svc.Activate(context.Background(), "laura.gomez@example.com", "123456")

	assert.ErrorIs(t, err, ErrNoPendingVerificationCode)
}

func TestActivate_ValidCode(t *testing.T) {
	userRepo := new(MockUserRepository)
	codeRepo := new(MockVerificationCodeRepository)
	svc := newTestAuthService(t, userRepo, codeRepo, newRecordingEmailService(nil))

	user := &entity.User{ID: uuid.New(), Email: "laura.gomez@example.com", Status: entity.AccountPending}
	record := pendingCode(user.ID, "123456")

	userRepo.On("GetByEmail", "laura.gomez@example.com").Return(user, nil)
	codeRepo.On("GetLatestByUserID", user.ID, entity.ChannelEmail).Return(record, nil)
	codeRepo.On("MarkVerified", mock.Anything, record.ID).Return(nil)
	userRepo.On("Activate", mock.Anything, user.ID).Return(nil)

	err := svc.Activate(context.Background(), "Laura.Gomez@example.com", "123456")

	assert.NoError(t, err)
	userRepo.AssertCalled(t, "Activate", mock.Anything, user.ID)
}
