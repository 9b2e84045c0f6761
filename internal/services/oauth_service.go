package services

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"
)

// Identity is a verified external identity returned by a provider.
type Identity struct {
	Subject string
	Email   string
	Name    string
}

// IdentityProvider verifies an OAuth access token with a named provider
// and returns the identity it belongs to, or ErrInvalidOAuthToken.
type IdentityProvider interface {
	Verify(ctx context.Context, provider, accessToken string) (*Identity, error)
}

var userinfoEndpoints = map[string]string{
	"google": "https://www.googleapis.com/oauth2/v3/userinfo",
	"github": "https://api.github.com/user",
}

// HTTPIdentityProvider resolves access tokens against the provider's
// userinfo endpoint.
type HTTPIdentityProvider struct {
	client *http.Client
}

// NewHTTPIdentityProvider constructs an HTTPIdentityProvider.
func NewHTTPIdentityProvider() *HTTPIdentityProvider {
	return &HTTPIdentityProvider{
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

type userinfoResponse struct {
	Sub   string      `json:"sub"`
	ID    json.Number `json:"id"`
	Email string      `json:"email"`
	Name  string      `json:"name"`
	Login string      `json:"login"`
}

// Verify implements IdentityProvider.
func (p *HTTPIdentityProvider) Verify(ctx context.Context, provider, accessToken string) (*Identity, error) {
	endpoint, ok := userinfoEndpoints[provider]
	if !ok {
		return nil, Invalid("unknown oauth provider")
	}
	if accessToken == "" {
		return nil, ErrInvalidOAuthToken
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		log.Printf("[OAuth] userinfo request to %s failed: %v", provider, err)
		return nil, ErrInvalidOAuthToken
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, ErrInvalidOAuthToken
	}

	var info userinfoResponse
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, ErrInvalidOAuthToken
	}

	subject := info.Sub
	if subject == "" {
		subject = info.ID.String()
	}
	if subject == "" {
		return nil, ErrInvalidOAuthToken
	}

	name := info.Name
	if name == "" {
		name = info.Login
	}

	return &Identity{Subject: subject, Email: info.Email, Name: name}, nil
}
