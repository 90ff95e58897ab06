package social

import (
	"context"
	"time"

	"github.com/postpilot/postpilot/app/models"
)

type fakeRepo struct {
	connections map[uint]*models.SocialConnection
	attempts    []*models.PublishAttempt
	touched     []time.Time

	replaceErr error
	attemptErr error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{connections: map[uint]*models.SocialConnection{}}
}

func (f *fakeRepo) GetConnectionByUser(userID uint) (*models.SocialConnection, error) {
	conn, ok := f.connections[userID]
	if !ok {
		return nil, ErrNotConnected
	}
	return conn, nil
}

func (f *fakeRepo) ReplaceConnection(conn *models.SocialConnection) error {
	if f.replaceErr != nil {
		return f.replaceErr
	}
	f.connections[conn.UserID] = conn
	return nil
}

func (f *fakeRepo) DeleteConnection(userID uint) error {
	delete(f.connections, userID)
	return nil
}

func (f *fakeRepo) TouchLastUsed(userID uint, at time.Time) error {
	if conn, ok := f.connections[userID]; ok {
		conn.LastUsedAt = &at
	}
	f.touched = append(f.touched, at)
	return nil
}

func (f *fakeRepo) CreatePublishAttempt(ctx context.Context, attempt *models.PublishAttempt) error {
	if f.attemptErr != nil {
		return f.attemptErr
	}
	f.attempts = append(f.attempts, attempt)
	return nil
}

func (f *fakeRepo) ListPublishAttempts(userID uint, limit int) ([]models.PublishAttempt, error) {
	var out []models.PublishAttempt
	for _, a := range f.attempts {
		if a.UserID == userID {
			out = append(out, *a)
		}
	}
	return out, nil
}

type fakePlatform struct {
	token      *TokenResponse
	exchangeErr error
	profile    *Profile
	profileErr error
	post       *PostResult
	postErr    error

	exchangeCalls int
	profileCalls  int
	postCalls     int
}

func (f *fakePlatform) AuthorizeURL(redirectURI, state string) string {
	return "https://auth.example.com/authorization?state=" + state
}

func (f *fakePlatform) ExchangeCode(ctx context.Context, code, redirectURI string) (*TokenResponse, error) {
	f.exchangeCalls++
	if f.exchangeErr != nil {
		return nil, f.exchangeErr
	}
	return f.token, nil
}

func (f *fakePlatform) GetProfile(ctx context.Context, accessToken string) (*Profile, error) {
	f.profileCalls++
	if f.profileErr != nil {
		return nil, f.profileErr
	}
	return f.profile, nil
}

func (f *fakePlatform) CreatePost(ctx context.Context, accessToken, externalAccountID, content string) (*PostResult, error) {
	f.postCalls++
	if f.postErr != nil {
		return nil, f.postErr
	}
	return f.post, nil
}
