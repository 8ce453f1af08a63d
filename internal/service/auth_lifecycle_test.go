package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"markethub/internal/auth"
	apperrors "markethub/internal/errors"
	"markethub/internal/events"
	"markethub/internal/model"
	"markethub/internal/notify"
	"markethub/internal/repository"
)

func newAuthServiceWithRepo(repo repository.UserRepository, sender notify.Sender) AuthService {
	jwtService := auth.NewJWTService("test-secret", "markethub-users", "markethub")
	return NewAuthService(repo, jwtService, auth.NewPasswordHasher(), sender, events.NoopPublisher{}, testLogger())
}

// fakeUserStore is an in-memory credential store with the same conditional
// update semantics as the MySQL repository. It backs the full lifecycle and
// rotation-race tests.
type fakeUserStore struct {
	mu     sync.Mutex
	nextID uint
	users  map[uint]*model.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{nextID: 1, users: make(map[uint]*model.User)}
}

func (f *fakeUserStore) Create(ctx context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == user.Email {
			return apperrors.ErrDuplicateEmail
		}
	}
	user.ID = f.nextID
	f.nextID++
	clone := *user
	f.users[user.ID] = &clone
	return nil
}

func (f *fakeUserStore) Update(ctx context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[user.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	clone := *user
	f.users[user.ID] = &clone
	return nil
}

func (f *fakeUserStore) Delete(ctx context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.users, user.ID)
	return nil
}

func (f *fakeUserStore) FindByID(ctx context.Context, id uint) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[id]; ok {
		clone := *u
		return &clone, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserStore) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserStore) FindByRefreshToken(ctx context.Context, token string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.RefreshToken != nil && *u.RefreshToken == token {
			clone := *u
			return &clone, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserStore) List(ctx context.Context) ([]model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	users := make([]model.User, 0, len(f.users))
	for _, u := range f.users {
		users = append(users, *u)
	}
	return users, nil
}

func (f *fakeUserStore) SetRefreshToken(ctx context.Context, userID uint, token string, expires time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.RefreshToken = &token
	u.RefreshTokenExpires = &expires
	return nil
}

func (f *fakeUserStore) RotateRefreshToken(ctx context.Context, oldToken, newToken string, expires time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.RefreshToken != nil && *u.RefreshToken == oldToken {
			u.RefreshToken = &newToken
			u.RefreshTokenExpires = &expires
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeUserStore) ConsumeConfirmationToken(ctx context.Context, userID uint, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok || u.EmailConfirmationToken == nil || *u.EmailConfirmationToken != token {
		return gorm.ErrRecordNotFound
	}
	u.EmailConfirmationToken = nil
	u.IsActive = true
	return nil
}

func (f *fakeUserStore) SetPasswordResetToken(ctx context.Context, userID uint, token string, expires time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.PasswordResetToken = &token
	u.PasswordResetExpires = &expires
	return nil
}

func (f *fakeUserStore) ConsumePasswordResetToken(ctx context.Context, email, token, newHash string, now time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email && u.PasswordResetToken != nil && *u.PasswordResetToken == token &&
			u.PasswordResetExpires != nil && u.PasswordResetExpires.After(now) {
			u.PasswordHash = newHash
			u.PasswordResetToken = nil
			u.PasswordResetExpires = nil
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func TestAuthService_FullLifecycle(t *testing.T) {
	ctx := context.Background()
	store := newFakeUserStore()
	svc := newAuthServiceWithRepo(store, &recordingSender{})

	// Register: account exists, inactive, holds a confirmation token.
	userID, err := svc.Register(ctx, "Alice", "a@x.com", "Passw0rd")
	require.NoError(t, err)
	assert.Equal(t, uint(1), userID)

	created, err := store.FindByID(ctx, userID)
	require.NoError(t, err)
	assert.False(t, created.IsActive)
	require.NotNil(t, created.EmailConfirmationToken)

	// A second registration with the same email loses to the uniqueness rule.
	_, err = svc.Register(ctx, "Mallory", "a@x.com", "Passw0rd")
	assert.ErrorIs(t, err, apperrors.ErrDuplicateEmail)

	// Login is rejected until the email is confirmed.
	_, _, err = svc.Login(ctx, "a@x.com", "Passw0rd")
	assert.ErrorIs(t, err, apperrors.ErrEmailNotConfirmed)

	// Confirm with the issued token; replays fail.
	token := *created.EmailConfirmationToken
	require.NoError(t, svc.ConfirmEmail(ctx, userID, token))
	assert.ErrorIs(t, svc.ConfirmEmail(ctx, userID, token), apperrors.ErrInvalidToken)

	confirmed, err := store.FindByID(ctx, userID)
	require.NoError(t, err)
	assert.True(t, confirmed.IsActive)
	assert.Nil(t, confirmed.EmailConfirmationToken)

	// Login returns a pair; the stored refresh token equals the returned one.
	access, refresh, err := svc.Login(ctx, "a@x.com", "Passw0rd")
	require.NoError(t, err)
	assert.NotEmpty(t, access)

	loggedIn, err := store.FindByID(ctx, userID)
	require.NoError(t, err)
	require.NotNil(t, loggedIn.RefreshToken)
	assert.Equal(t, refresh, *loggedIn.RefreshToken)

	// Rotation invalidates the old refresh token.
	access2, refresh2, err := svc.RefreshToken(ctx, refresh)
	require.NoError(t, err)
	assert.NotEmpty(t, access2)
	assert.NotEqual(t, refresh, refresh2)

	_, _, err = svc.RefreshToken(ctx, refresh)
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)

	// Password reset round trip.
	require.NoError(t, svc.ForgotPassword(ctx, "a@x.com"))
	withReset, err := store.FindByID(ctx, userID)
	require.NoError(t, err)
	require.NotNil(t, withReset.PasswordResetToken)

	require.NoError(t, svc.ResetPassword(ctx, "a@x.com", *withReset.PasswordResetToken, "Fresh3rPass"))
	_, _, err = svc.Login(ctx, "a@x.com", "Passw0rd")
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	_, _, err = svc.Login(ctx, "a@x.com", "Fresh3rPass")
	assert.NoError(t, err)
}

func TestAuthService_ResetPassword_ExpiredToken(t *testing.T) {
	ctx := context.Background()
	store := newFakeUserStore()
	svc := newAuthServiceWithRepo(store, &recordingSender{})

	userID, err := svc.Register(ctx, "Alice", "a@x.com", "Passw0rd")
	require.NoError(t, err)

	// Plant a reset token that expired an hour ago.
	expired := time.Now().Add(-time.Hour)
	require.NoError(t, store.SetPasswordResetToken(ctx, userID, "stale-token", expired))

	err = svc.ResetPassword(ctx, "a@x.com", "stale-token", "NewPassw0rd")
	assert.ErrorIs(t, err, apperrors.ErrInvalidOrExpiredToken)
}

func TestAuthService_RefreshToken_ConcurrentRotation(t *testing.T) {
	ctx := context.Background()
	store := newFakeUserStore()
	svc := newAuthServiceWithRepo(store, &recordingSender{})

	userID, err := svc.Register(ctx, "Alice", "a@x.com", "Passw0rd")
	require.NoError(t, err)

	created, err := store.FindByID(ctx, userID)
	require.NoError(t, err)
	require.NoError(t, svc.ConfirmEmail(ctx, userID, *created.EmailConfirmationToken))

	_, refresh, err := svc.Login(ctx, "a@x.com", "Passw0rd")
	require.NoError(t, err)

	const callers = 8
	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _, errs[i] = svc.RefreshToken(ctx, refresh)
		}(i)
	}
	wg.Wait()

	var succeeded int
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
		}
	}
	assert.Equal(t, 1, succeeded, "exactly one rotation may win")
}

func TestAuthService_ConcurrentDuplicateRegistration(t *testing.T) {
	ctx := context.Background()
	store := newFakeUserStore()
	svc := newAuthServiceWithRepo(store, &recordingSender{})

	const callers = 8
	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Register(ctx, "Alice", "same@x.com", "Passw0rd")
		}(i)
	}
	wg.Wait()

	var succeeded int
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, apperrors.ErrDuplicateEmail)
		}
	}
	assert.Equal(t, 1, succeeded, "exactly one registration may win")
}
