package social

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/postpilot/postpilot/app/models"
)

func newTestService(repo Repository, platform PlatformClient) *Service {
	svc := NewService(repo, platform, NewMemoryStateStore())
	svc.now = func() time.Time { return time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC) }
	return svc
}

func TestBeginConnectStoresState(t *testing.T) {
	repo := newFakeRepo()
	platform := &fakePlatform{}
	svc := newTestService(repo, platform)

	authorizeURL, err := svc.BeginConnect(context.Background(), 42, "https://app.example.com/callback")
	require.NoError(t, err)
	assert.Contains(t, authorizeURL, "state=")
}

func TestCompleteConnectHappyPath(t *testing.T) {
	repo := newFakeRepo()
	platform := &fakePlatform{
		token:   &TokenResponse{AccessToken: "token-abc", ExpiresIn: 3600},
		profile: &Profile{Sub: "acct-123", Name: "Pat Example", Picture: "https://cdn.example.com/p.jpg"},
	}
	states := NewMemoryStateStore()
	svc := NewService(repo, platform, states)
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	require.NoError(t, states.Put(context.Background(), "state-abc", 42))

	userID, conn, err := svc.CompleteConnect(context.Background(), "state-abc", "auth-code", "https://app.example.com/callback")
	require.NoError(t, err)
	assert.Equal(t, uint(42), userID)
	assert.Equal(t, "acct-123", conn.ExternalAccountID)
	assert.Equal(t, "token-abc", conn.AccessToken)
	assert.Equal(t, now.Add(time.Hour), conn.ExpiresAt)
	assert.Equal(t, models.SocialProviderLinkedIn, conn.Provider)
	assert.Nil(t, conn.LastUsedAt)

	stored, err := repo.GetConnectionByUser(42)
	require.NoError(t, err)
	assert.Equal(t, "acct-123", stored.ExternalAccountID)
}

func TestCompleteConnectRejectsReplayedState(t *testing.T) {
	repo := newFakeRepo()
	platform := &fakePlatform{
		token:   &TokenResponse{AccessToken: "token-abc", ExpiresIn: 3600},
		profile: &Profile{Sub: "acct-123"},
	}
	states := NewMemoryStateStore()
	svc := NewService(repo, platform, states)

	require.NoError(t, states.Put(context.Background(), "state-abc", 42))

	_, _, err := svc.CompleteConnect(context.Background(), "state-abc", "auth-code", "uri")
	require.NoError(t, err)

	// Back-button replay: same state arrives again. No second exchange.
	_, _, err = svc.CompleteConnect(context.Background(), "state-abc", "auth-code", "uri")
	assert.True(t, errors.Is(err, ErrStateMismatch))
	assert.Equal(t, 1, platform.exchangeCalls)
}

func TestCompleteConnectUnknownState(t *testing.T) {
	platform := &fakePlatform{}
	svc := newTestService(newFakeRepo(), platform)

	_, _, err := svc.CompleteConnect(context.Background(), "forged-state", "auth-code", "uri")
	assert.True(t, errors.Is(err, ErrStateMismatch))
	assert.Zero(t, platform.exchangeCalls, "no exchange may happen on state mismatch")
}

func TestReconnectReplacesWholesale(t *testing.T) {
	repo := newFakeRepo()
	used := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	repo.connections[42] = &models.SocialConnection{
		UserID:            42,
		ExternalAccountID: "acct-old",
		AccessToken:       "token-old",
		LastUsedAt:        &used,
	}
	svc := newTestService(repo, &fakePlatform{})

	_, err := svc.SaveConnection(42, &ExchangeResult{
		AccessToken:       "token-new",
		ExpiresAt:         time.Date(2026, 8, 1, 13, 0, 0, 0, time.UTC),
		ExternalAccountID: "acct-new",
		ProfileName:       "Pat Example",
	})
	require.NoError(t, err)

	stored, err := repo.GetConnectionByUser(42)
	require.NoError(t, err)
	assert.Equal(t, "acct-new", stored.ExternalAccountID)
	assert.Equal(t, "token-new", stored.AccessToken)
	assert.Nil(t, stored.LastUsedAt, "reconnect clears last_used_at")
}

func TestExchangeComputesExpiry(t *testing.T) {
	platform := &fakePlatform{
		token:   &TokenResponse{AccessToken: "token-abc", ExpiresIn: 1800},
		profile: &Profile{Sub: "acct-123", Email: "pat@example.com"},
	}
	svc := newTestService(newFakeRepo(), platform)

	result, err := svc.Exchange(context.Background(), "auth-code", "uri")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 8, 1, 12, 30, 0, 0, time.UTC), result.ExpiresAt)
	assert.Equal(t, "pat@example.com", result.Email)
}

func TestExchangeProfileFailure(t *testing.T) {
	platform := &fakePlatform{
		token:      &TokenResponse{AccessToken: "token-abc", ExpiresIn: 3600},
		profileErr: errors.New("userinfo unavailable"),
	}
	svc := newTestService(newFakeRepo(), platform)

	_, err := svc.Exchange(context.Background(), "auth-code", "uri")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "userinfo unavailable")
}

func TestDisconnect(t *testing.T) {
	repo := newFakeRepo()
	repo.connections[42] = &models.SocialConnection{UserID: 42}
	svc := newTestService(repo, &fakePlatform{})

	require.NoError(t, svc.Disconnect(42))
	_, err := svc.GetConnection(42)
	assert.True(t, errors.Is(err, ErrNotConnected))
}
