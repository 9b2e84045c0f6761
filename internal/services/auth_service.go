package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/mail"
	"time"

	"github.com/google/uuid"
	"github.com/pquerna/otp/totp"
	"gorm.io/gorm"

	"github.com/example/shopsphere/internal/cache"
	"github.com/example/shopsphere/internal/config"
	"github.com/example/shopsphere/internal/models"
	"github.com/example/shopsphere/internal/utils"
)

const maxNameLength = 100

// AuthService handles registration, password and OAuth logins, MFA and
// session issuance. Every operation takes the acting user explicitly;
// nothing here depends on ambient request state.
type AuthService struct {
	db       *gorm.DB
	cache    cache.Cache
	cfg      *config.Config
	identity IdentityProvider
}

// NewAuthService constructs an AuthService.
func NewAuthService(db *gorm.DB, c cache.Cache, cfg *config.Config, identity IdentityProvider) *AuthService {
	return &AuthService{db: db, cache: c, cfg: cfg, identity: identity}
}

// Session is an issued login: an opaque bearer token plus the user it
// belongs to.
type Session struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

type sessionRecord struct {
	UserID   string    `json:"user_id"`
	Email    string    `json:"email"`
	Name     string    `json:"name"`
	IssuedAt time.Time `json:"issued_at"`
}

// Register creates a password account. An MFA secret is provisioned at
// registration time but stays disabled until the user verifies a code.
func (s *AuthService) Register(ctx context.Context, email, password, name string) (uuid.UUID, error) {
	if _, err := mail.ParseAddress(email); err != nil {
		return uuid.Nil, Invalid("invalid email address")
	}
	if len(password) < s.cfg.PasswordMinLength {
		return uuid.Nil, Invalid("password is too short")
	}
	if name == "" || len(name) > maxNameLength {
		return uuid.Nil, Invalid("name must be between 1 and 100 characters")
	}

	passwordHash, err := utils.HashPassword(password, s.cfg.BcryptCost)
	if err != nil {
		return uuid.Nil, err
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      "ShopSphere",
		AccountName: email,
	})
	if err != nil {
		return uuid.Nil, err
	}

	user := models.User{
		Email:        email,
		Name:         name,
		PasswordHash: passwordHash,
		MFASecret:    key.Secret(),
		MFAEnabled:   false,
	}
	// the unique index is the only duplicate guard, so concurrent
	// registrations cannot race past a separate existence check
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if isDuplicateKey(err) {
			return uuid.Nil, ErrEmailTaken
		}
		return uuid.Nil, err
	}

	return user.ID, nil
}

// Login verifies credentials and, when the account has MFA enabled, the
// TOTP code. A missing or wrong code fails distinctly from a bad password
// so clients can prompt for the second factor.
func (s *AuthService) Login(ctx context.Context, email, password, mfaCode string) (*Session, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	// OAuth-created accounts have no password to check against.
	if user.PasswordHash == "" || !utils.CheckPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	if user.MFAEnabled {
		if mfaCode == "" {
			return nil, ErrMFARequired
		}
		if !totp.Validate(mfaCode, user.MFASecret) {
			return nil, ErrInvalidMFACode
		}
	}

	return s.issueSession(ctx, &user)
}

// OAuthLogin verifies the access token with the named identity provider,
// then finds or creates the matching account. Accounts created this way
// carry no password hash.
func (s *AuthService) OAuthLogin(ctx context.Context, provider, accessToken string) (*Session, error) {
	identity, err := s.identity.Verify(ctx, provider, accessToken)
	if err != nil {
		return nil, err
	}

	var user models.User
	err = s.db.WithContext(ctx).
		Where("oauth_provider = ? AND oauth_subject = ?", provider, identity.Subject).
		First(&user).Error
	switch {
	case err == nil:
		// known federated account
	case errors.Is(err, gorm.ErrRecordNotFound):
		user, err = s.linkOrCreateOAuthUser(ctx, provider, identity)
		if err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	return s.issueSession(ctx, &user)
}

func (s *AuthService) linkOrCreateOAuthUser(ctx context.Context, provider string, identity *Identity) (models.User, error) {
	var user models.User

	// An existing password account with the same email gets the provider
	// attached instead of colliding on the unique email column.
	err := s.db.WithContext(ctx).Where("email = ?", identity.Email).First(&user).Error
	if err == nil {
		if err := s.db.WithContext(ctx).Model(&user).Updates(map[string]interface{}{
			"oauth_provider": provider,
			"oauth_subject":  identity.Subject,
		}).Error; err != nil {
			return models.User{}, err
		}
		user.OAuthProvider = provider
		user.OAuthSubject = identity.Subject
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.User{}, err
	}

	user = models.User{
		Email:         identity.Email,
		Name:          identity.Name,
		OAuthProvider: provider,
		OAuthSubject:  identity.Subject,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return models.User{}, err
	}
	return user, nil
}

// EnableMFA turns on MFA for a user after they prove possession of the
// provisioned secret with a valid code.
func (s *AuthService) EnableMFA(ctx context.Context, userID uuid.UUID, code string) error {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidCredentials
		}
		return err
	}

	if !totp.Validate(code, user.MFASecret) {
		return ErrInvalidMFACode
	}

	return s.db.WithContext(ctx).Model(&user).Update("mfa_enabled", true).Error
}

// Logout drops the cached session record for the token. Logging out an
// unknown token is a no-op.
func (s *AuthService) Logout(ctx context.Context, token string) {
	if token == "" {
		return
	}
	s.cache.Delete(ctx, sessionCacheKey(token))
}

func (s *AuthService) issueSession(ctx context.Context, user *models.User) (*Session, error) {
	token, err := utils.GenerateToken(s.cfg.JWTSecret, user.ID, s.cfg.TokenExpires)
	if err != nil {
		return nil, err
	}

	record := sessionRecord{
		UserID:   user.ID.String(),
		Email:    user.Email,
		Name:     user.Name,
		IssuedAt: time.Now(),
	}
	if body, err := json.Marshal(record); err == nil {
		s.cache.Set(ctx, sessionCacheKey(token), string(body), s.cfg.SessionTTL)
	}

	return &Session{Token: token, User: user}, nil
}

func sessionCacheKey(token string) string {
	return "session_" + token
}
