package services

import (
	"context"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/shopsphere/internal/cache"
	"github.com/example/shopsphere/internal/models"
	"github.com/example/shopsphere/internal/utils"
)

type fakeIdentityProvider struct {
	identity *Identity
}

func (p *fakeIdentityProvider) Verify(_ context.Context, _, accessToken string) (*Identity, error) {
	if accessToken != "good-token" || p.identity == nil {
		return nil, ErrInvalidOAuthToken
	}
	return p.identity, nil
}

func newAuthService(t *testing.T, identity IdentityProvider) (*AuthService, *cache.Memory) {
	t.Helper()
	store := cache.NewMemory()
	return NewAuthService(newTestDB(t), store, testConfig(), identity), store
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newAuthService(t, nil)
	ctx := context.Background()

	_, err := svc.Register(ctx, "not-an-email", "hunter2222", "Alice")
	assert.True(t, IsValidation(err))

	_, err = svc.Register(ctx, "alice@example.com", "short", "Alice")
	assert.True(t, IsValidation(err))

	_, err = svc.Register(ctx, "alice@example.com", "hunter2222", "")
	assert.True(t, IsValidation(err))
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newAuthService(t, nil)
	ctx := context.Background()

	userID, err := svc.Register(ctx, "alice@example.com", "hunter22", "Alice")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "alice@example.com", "different9", "Mallory")
	assert.ErrorIs(t, err, ErrEmailTaken)

	// the first account must be untouched
	var users []models.User
	require.NoError(t, svc.db.Find(&users).Error)
	require.Len(t, users, 1)
	assert.Equal(t, userID, users[0].ID)
	assert.Equal(t, "Alice", users[0].Name)
}

func TestRegisterProvisionsDisabledMFA(t *testing.T) {
	svc, _ := newAuthService(t, nil)

	userID, err := svc.Register(context.Background(), "alice@example.com", "hunter22", "Alice")
	require.NoError(t, err)

	var user models.User
	require.NoError(t, svc.db.First(&user, "id = ?", userID).Error)
	assert.NotEmpty(t, user.MFASecret)
	assert.False(t, user.MFAEnabled)
	assert.NotEqual(t, "hunter22", user.PasswordHash)
}

func TestLoginInvalidCredentials(t *testing.T) {
	svc, _ := newAuthService(t, nil)
	ctx := context.Background()

	_, err := svc.Login(ctx, "nobody@example.com", "whatever99", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Register(ctx, "alice@example.com", "hunter22", "Alice")
	require.NoError(t, err)

	_, err = svc.Login(ctx, "alice@example.com", "wrong-password", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginIssuesSession(t *testing.T) {
	svc, store := newAuthService(t, nil)
	ctx := context.Background()

	userID, err := svc.Register(ctx, "alice@example.com", "hunter22", "Alice")
	require.NoError(t, err)

	session, err := svc.Login(ctx, "alice@example.com", "hunter22", "")
	require.NoError(t, err)
	require.NotNil(t, session.User)
	assert.Equal(t, userID, session.User.ID)

	parsed, err := utils.ParseToken("test-secret", session.Token)
	require.NoError(t, err)
	assert.Equal(t, userID, parsed)

	_, cached := store.Get(ctx, "session_"+session.Token)
	assert.True(t, cached, "session record must be cached")
}

func TestLoginWithMFA(t *testing.T) {
	svc, _ := newAuthService(t, nil)
	ctx := context.Background()

	userID, err := svc.Register(ctx, "alice@example.com", "hunter22", "Alice")
	require.NoError(t, err)

	var user models.User
	require.NoError(t, svc.db.First(&user, "id = ?", userID).Error)

	code, err := totp.GenerateCode(user.MFASecret, time.Now())
	require.NoError(t, err)
	require.NoError(t, svc.EnableMFA(ctx, userID, code))

	_, err = svc.Login(ctx, "alice@example.com", "hunter22", "")
	assert.ErrorIs(t, err, ErrMFARequired)

	wrong := flipLastDigit(code)
	_, err = svc.Login(ctx, "alice@example.com", "hunter22", wrong)
	assert.ErrorIs(t, err, ErrInvalidMFACode)

	code, err = totp.GenerateCode(user.MFASecret, time.Now())
	require.NoError(t, err)
	session, err := svc.Login(ctx, "alice@example.com", "hunter22", code)
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)
}

func TestEnableMFARejectsBadCode(t *testing.T) {
	svc, _ := newAuthService(t, nil)
	ctx := context.Background()

	userID, err := svc.Register(ctx, "alice@example.com", "hunter22", "Alice")
	require.NoError(t, err)

	var user models.User
	require.NoError(t, svc.db.First(&user, "id = ?", userID).Error)
	code, err := totp.GenerateCode(user.MFASecret, time.Now())
	require.NoError(t, err)

	assert.ErrorIs(t, svc.EnableMFA(ctx, userID, flipLastDigit(code)), ErrInvalidMFACode)

	require.NoError(t, svc.db.First(&user, "id = ?", userID).Error)
	assert.False(t, user.MFAEnabled)
}

func TestOAuthLoginCreatesAndReusesAccount(t *testing.T) {
	provider := &fakeIdentityProvider{identity: &Identity{
		Subject: "sub-123",
		Email:   "bob@example.com",
		Name:    "Bob",
	}}
	svc, _ := newAuthService(t, provider)
	ctx := context.Background()

	_, err := svc.OAuthLogin(ctx, "google", "bad-token")
	assert.ErrorIs(t, err, ErrInvalidOAuthToken)

	session, err := svc.OAuthLogin(ctx, "google", "good-token")
	require.NoError(t, err)
	assert.Equal(t, "bob@example.com", session.User.Email)
	assert.Empty(t, session.User.PasswordHash, "oauth accounts carry no password")

	again, err := svc.OAuthLogin(ctx, "google", "good-token")
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, again.User.ID)

	var users int64
	require.NoError(t, svc.db.Model(&models.User{}).Count(&users).Error)
	assert.EqualValues(t, 1, users)

	// password login against an oauth-only account must fail
	_, err = svc.Login(ctx, "bob@example.com", "anything99", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestOAuthLoginLinksExistingEmail(t *testing.T) {
	provider := &fakeIdentityProvider{identity: &Identity{
		Subject: "sub-456",
		Email:   "alice@example.com",
		Name:    "Alice",
	}}
	svc, _ := newAuthService(t, provider)
	ctx := context.Background()

	userID, err := svc.Register(ctx, "alice@example.com", "hunter22", "Alice")
	require.NoError(t, err)

	session, err := svc.OAuthLogin(ctx, "google", "good-token")
	require.NoError(t, err)
	assert.Equal(t, userID, session.User.ID, "same email must link, not duplicate")

	var users int64
	require.NoError(t, svc.db.Model(&models.User{}).Count(&users).Error)
	assert.EqualValues(t, 1, users)
}

func TestLogoutIsIdempotent(t *testing.T) {
	svc, store := newAuthService(t, nil)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice@example.com", "hunter22", "Alice")
	require.NoError(t, err)
	session, err := svc.Login(ctx, "alice@example.com", "hunter22", "")
	require.NoError(t, err)

	svc.Logout(ctx, session.Token)
	_, cached := store.Get(ctx, "session_"+session.Token)
	assert.False(t, cached)

	// logging out twice, or with an empty token, is fine
	svc.Logout(ctx, session.Token)
	svc.Logout(ctx, "")
}

func flipLastDigit(code string) string {
	last := code[len(code)-1]
	flipped := byte('0') + (last-'0'+1)%10
	return code[:len(code)-1] + string(flipped)
}
