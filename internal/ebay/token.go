package ebay

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	ProductionTokenURL = "https://api.ebay.com/identity/v1/oauth2/token"
	SandboxTokenURL    = "https://api.sandbox.ebay.com/identity/v1/oauth2/token"

	browseScope = "https://api.ebay.com/oauth/api_scope"
)

// TokenProvider supplies an OAuth bearer token for Browse API calls.
// Invalidate discards any cached token so the next Token call fetches a
// fresh one; the client calls it once after a 401 before retrying.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
	Invalidate()
}

// ClientCredentialsProvider implements TokenProvider with the OAuth2
// client-credentials grant eBay uses for application tokens. Tokens are
// cached by the underlying token source until they expire.
type ClientCredentialsProvider struct {
	conf *clientcredentials.Config

	mu     sync.Mutex
	source oauth2.TokenSource
}

// NewClientCredentialsProvider builds a provider for the given app
// credentials and token endpoint.
func NewClientCredentialsProvider(clientID, clientSecret, tokenURL string) *ClientCredentialsProvider {
	return &ClientCredentialsProvider{
		conf: &clientcredentials.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			TokenURL:     tokenURL,
			Scopes:       []string{browseScope},
			AuthStyle:    oauth2.AuthStyleInHeader,
		},
	}
}

// Token returns a valid bearer token, fetching one if needed.
func (p *ClientCredentialsProvider) Token(ctx context.Context) (string, error) {
	p.mu.Lock()
	if p.source == nil {
		// The token source outlives any single request, so it is bound to
		// the background context rather than the caller's.
		p.source = p.conf.TokenSource(context.Background())
	}
	source := p.source
	p.mu.Unlock()

	token, err := source.Token()
	if err != nil {
		return "", fmt.Errorf("failed to obtain ebay token: %w", err)
	}
	return token.AccessToken, nil
}

// Invalidate drops the cached token source so the next Token call performs
// a fresh client-credentials exchange.
func (p *ClientCredentialsProvider) Invalidate() {
	p.mu.Lock()
	p.source = nil
	p.mu.Unlock()
}
