package oauth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/oauth2"
)

// TokenSource returns a valid token.
// It is safe for concurrent use by multiple goroutines.
type TokenSource interface {
	Token(context.Context) (*oauth2.Token, error)
	ForceRefresh(context.Context) (*oauth2.Token, error)
}

// RefreshFunc persists a token obtained by a refresh.
type RefreshFunc func(ctx context.Context, token *oauth2.Token) error

// Credentials identify the registered API application.
type Credentials struct {
	ClientID     string
	ClientSecret string
	TokenURL     string
}

// RefreshingTokenSource holds one account's token in memory and refreshes it
// with the refresh_token grant when it expires or when forced.
type RefreshingTokenSource struct {
	config    *oauth2.Config
	onRefresh RefreshFunc
	logger    *slog.Logger

	mu      sync.Mutex
	current *oauth2.Token
}

// NewRefreshingTokenSource creates a token source seeded with initial.
// onRefresh may be nil.
func NewRefreshingTokenSource(creds Credentials, initial *oauth2.Token, onRefresh RefreshFunc, logger *slog.Logger) *RefreshingTokenSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &RefreshingTokenSource{
		config: &oauth2.Config{
			ClientID:     creds.ClientID,
			ClientSecret: creds.ClientSecret,
			// Strava requires client_id/secret in the form body.
			Endpoint: oauth2.Endpoint{
				TokenURL:  creds.TokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		onRefresh: onRefresh,
		logger:    logger,
		current:   initial,
	}
}

// Token returns the cached token, refreshing it first if it has expired.
// Tokens without an expiry never expire proactively.
func (s *RefreshingTokenSource) Token(ctx context.Context) (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current.Valid() {
		return s.current, nil
	}
	return s.refresh(ctx)
}

// ForceRefresh refreshes regardless of expiry.
func (s *RefreshingTokenSource) ForceRefresh(ctx context.Context) (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.refresh(ctx)
}

func (s *RefreshingTokenSource) refresh(ctx context.Context) (*oauth2.Token, error) {
	if s.current == nil || s.current.RefreshToken == "" {
		return nil, errors.New("no refresh token available")
	}
	if s.config.ClientID == "" || s.config.ClientSecret == "" {
		return nil, errors.New("client credentials are required to refresh tokens")
	}

	// Expired copy so the oauth2 package always hits the token endpoint.
	stale := &oauth2.Token{RefreshToken: s.current.RefreshToken}
	tok, err := s.config.TokenSource(ctx, stale).Token()
	if err != nil {
		return nil, fmt.Errorf("refresh token: %w", err)
	}
	if tok.RefreshToken == "" {
		tok.RefreshToken = s.current.RefreshToken
	}
	s.current = tok

	s.logger.Info("Refreshed access token", "expiry", tok.Expiry)

	if s.onRefresh != nil {
		if err := s.onRefresh(ctx, tok); err != nil {
			// The new token is still usable for this run.
			s.logger.Warn("Failed to persist refreshed token", "error", err)
		}
	}
	return tok, nil
}
