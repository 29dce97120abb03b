// Package amadeus implements the HTTP client for the Amadeus self-service
// flight APIs: offer search (with flexible-date retries), firm pricing, and
// the location/airline reference lookups. Authentication uses the OAuth2
// client-credentials grant with a process-wide cached token.
package amadeus

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// refreshMargin is how long before the stated expiry a cached token is
// refreshed proactively.
const refreshMargin = 60 * time.Second

// TokenProvider supplies a bearer token for outbound provider calls. It is
// the seam that lets tests substitute a static token for the real OAuth2
// client-credentials exchange.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}

// StaticTokenProvider always returns the same token. Intended for tests.
type StaticTokenProvider string

// Token returns the fixed token.
func (s StaticTokenProvider) Token(context.Context) (string, error) { return string(s), nil }

// clientCredentialsProvider caches the token obtained via the OAuth2
// client-credentials grant and refreshes it refreshMargin before expiry.
// Safe for concurrent use; concurrent refreshes are idempotent (both tokens
// are valid, last write wins).
type clientCredentialsProvider struct {
	conf *clientcredentials.Config

	mu  sync.Mutex
	tok *oauth2.Token
}

// NewTokenProvider builds a TokenProvider performing the client-credentials
// exchange against baseURL's token endpoint.
func NewTokenProvider(baseURL, clientID, clientSecret string) (TokenProvider, error) {
	if clientID == "" || clientSecret == "" {
		return nil, errors.New("amadeus: API credentials are not set")
	}
	return &clientCredentialsProvider{
		conf: &clientcredentials.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			TokenURL:     baseURL + "/v1/security/oauth2/token",
			AuthStyle:    oauth2.AuthStyleInParams,
		},
	}, nil
}

// Token returns the cached access token, fetching a fresh one when absent
// or within refreshMargin of expiry.
func (p *clientCredentialsProvider) Token(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.tok != nil && p.tok.AccessToken != "" && time.Until(p.tok.Expiry) > refreshMargin {
		return p.tok.AccessToken, nil
	}

	tok, err := p.conf.Token(ctx)
	if err != nil {
		return "", fmt.Errorf("amadeus auth: %w", err)
	}
	p.tok = tok
	return tok.AccessToken, nil
}
