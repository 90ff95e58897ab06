package social

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// stateTTL bounds how long a started OAuth flow stays valid.
const stateTTL = 10 * time.Minute

// StateStore holds one-shot OAuth state values. A state is written once when
// the flow begins and consumed exactly once on callback; a second arrival
// with the same state must fail.
type StateStore interface {
	Put(ctx context.Context, state string, userID uint) error
	// Consume returns the user the state belongs to and invalidates it
	// atomically. ErrStateMismatch when unknown or already consumed.
	Consume(ctx context.Context, state string) (uint, error)
}

// NewState generates a random state value for the authorization redirect.
func NewState() (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

type redisStateStore struct {
	client *redis.Client
}

// NewRedisStateStore backs one-shot states with redis. SetNX rejects a
// duplicate state value, GetDel makes consumption atomic across instances.
func NewRedisStateStore(client *redis.Client) StateStore {
	return &redisStateStore{client: client}
}

func stateKey(state string) string {
	return "oauth_state:" + state
}

func (s *redisStateStore) Put(ctx context.Context, state string, userID uint) error {
	ok, err := s.client.SetNX(ctx, stateKey(state), strconv.FormatUint(uint64(userID), 10), stateTTL).Result()
	if err != nil {
		return fmt.Errorf("store oauth state: %w", err)
	}
	if !ok {
		return fmt.Errorf("oauth state collision")
	}
	return nil
}

func (s *redisStateStore) Consume(ctx context.Context, state string) (uint, error) {
	val, err := s.client.GetDel(ctx, stateKey(state)).Result()
	if err == redis.Nil {
		return 0, ErrStateMismatch
	}
	if err != nil {
		return 0, fmt.Errorf("consume oauth state: %w", err)
	}
	userID, err := strconv.ParseUint(val, 10, 32)
	if err != nil {
		return 0, ErrStateMismatch
	}
	return uint(userID), nil
}

type memoryStateEntry struct {
	userID    uint
	expiresAt time.Time
}

// MemoryStateStore is the in-process implementation used by tests.
type MemoryStateStore struct {
	mu     sync.Mutex
	states map[string]memoryStateEntry
}

func NewMemoryStateStore() *MemoryStateStore {
	return &MemoryStateStore{states: map[string]memoryStateEntry{}}
}

func (s *MemoryStateStore) Put(ctx context.Context, state string, userID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.states[state]; exists {
		return fmt.Errorf("oauth state collision")
	}
	s.states[state] = memoryStateEntry{userID: userID, expiresAt: time.Now().Add(stateTTL)}
	return nil
}

func (s *MemoryStateStore) Consume(ctx context.Context, state string) (uint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.states[state]
	delete(s.states, state)
	if !ok || time.Now().After(entry.expiresAt) {
		return 0, ErrStateMismatch
	}
	return entry.userID, nil
}
