package social

import (
	"context"
	"fmt"
	"time"

	"github.com/postpilot/postpilot/app/models"
)

// PlatformClient is the social platform surface the services depend on.
// Satisfied by *LinkedInClient.
type PlatformClient interface {
	AuthorizeURL(redirectURI, state string) string
	ExchangeCode(ctx context.Context, code, redirectURI string) (*TokenResponse, error)
	GetProfile(ctx context.Context, accessToken string) (*Profile, error)
	CreatePost(ctx context.Context, accessToken, externalAccountID, content string) (*PostResult, error)
}

// ExchangeResult is the outcome of one server-side code exchange: the token
// plus the profile snapshot stored on the connection.
type ExchangeResult struct {
	AccessToken       string
	ExpiresAt         time.Time
	ExternalAccountID string
	ProfileName       string
	ProfilePicture    string
	Email             string
}

// Service manages the connection lifecycle: begin, callback, disconnect.
type Service struct {
	repo   Repository
	client PlatformClient
	states StateStore

	now func() time.Time
}

func NewService(repo Repository, client PlatformClient, states StateStore) *Service {
	return &Service{
		repo:   repo,
		client: client,
		states: states,
		now:    time.Now,
	}
}

// BeginConnect starts the authorization-code flow for a user: a fresh state
// value is stored one-shot and baked into the returned authorize URL.
func (s *Service) BeginConnect(ctx context.Context, userID uint, redirectURI string) (string, error) {
	state, err := NewState()
	if err != nil {
		return "", fmt.Errorf("generate oauth state: %w", err)
	}
	if err := s.states.Put(ctx, state, userID); err != nil {
		return "", err
	}
	return s.client.AuthorizeURL(redirectURI, state), nil
}

// CompleteConnect handles the callback redirect. The state is consumed
// exactly once before any exchange; a replayed callback fails with
// ErrStateMismatch and performs no exchange.
func (s *Service) CompleteConnect(ctx context.Context, state, code, redirectURI string) (uint, *models.SocialConnection, error) {
	userID, err := s.states.Consume(ctx, state)
	if err != nil {
		return 0, nil, err
	}

	result, err := s.Exchange(ctx, code, redirectURI)
	if err != nil {
		return userID, nil, err
	}

	conn, err := s.SaveConnection(userID, result)
	if err != nil {
		return userID, nil, err
	}
	return userID, conn, nil
}

// Exchange trades a code for a token and fetches the profile. Trusted
// backend only; the token never transits untrusted client code.
func (s *Service) Exchange(ctx context.Context, code, redirectURI string) (*ExchangeResult, error) {
	token, err := s.client.ExchangeCode(ctx, code, redirectURI)
	if err != nil {
		return nil, err
	}

	profile, err := s.client.GetProfile(ctx, token.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("profile fetch after exchange: %w", err)
	}

	return &ExchangeResult{
		AccessToken:       token.AccessToken,
		ExpiresAt:         s.now().Add(time.Duration(token.ExpiresIn) * time.Second),
		ExternalAccountID: profile.Sub,
		ProfileName:       profile.Name,
		ProfilePicture:    profile.Picture,
		Email:             profile.Email,
	}, nil
}

// SaveConnection replaces the user's connection wholesale with the exchange
// outcome. A reconnect fully overwrites the prior record, last_used_at
// included.
func (s *Service) SaveConnection(userID uint, result *ExchangeResult) (*models.SocialConnection, error) {
	conn := &models.SocialConnection{
		UserID:            userID,
		Provider:          models.SocialProviderLinkedIn,
		ExternalAccountID: result.ExternalAccountID,
		AccessToken:       result.AccessToken,
		ExpiresAt:         result.ExpiresAt,
		ProfileName:       result.ProfileName,
		ProfilePicture:    result.ProfilePicture,
		ConnectedAt:       s.now(),
		LastUsedAt:        nil,
	}
	if err := s.repo.ReplaceConnection(conn); err != nil {
		return nil, fmt.Errorf("save connection: %w", err)
	}
	return conn, nil
}

// GetConnection returns the user's active connection, ErrNotConnected when
// there is none.
func (s *Service) GetConnection(userID uint) (*models.SocialConnection, error) {
	return s.repo.GetConnectionByUser(userID)
}

// Disconnect deletes the stored connection. Publishing requires a full
// reconnect afterwards.
func (s *Service) Disconnect(userID uint) error {
	return s.repo.DeleteConnection(userID)
}

// ListPublishAttempts returns the newest audit rows for the user.
func (s *Service) ListPublishAttempts(userID uint, limit int) ([]models.PublishAttempt, error) {
	return s.repo.ListPublishAttempts(userID, limit)
}
