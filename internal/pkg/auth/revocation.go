package auth

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RevocationStore remembers token ids that were signed out before expiry, and
// per-account cutoffs before which every token of the account is void.
type RevocationStore interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
	RevokeAccount(ctx context.Context, accountID int64, cutoff time.Time) error
	IsAccountRevoked(ctx context.Context, accountID int64, issuedAt time.Time) (bool, error)
}

// issuedBefore reports whether a token issued at issuedAt falls under cutoff.
// Token timestamps have second precision, so a token from the cutoff's second counts.
func issuedBefore(issuedAt, cutoff time.Time) bool {
	return !issuedAt.After(cutoff)
}

// NoopRevocationStore is used when no Redis instance is configured; logout only clears the cookie.
type NoopRevocationStore struct{}

// Revoke implements RevocationStore
func (NoopRevocationStore) Revoke(context.Context, string, time.Time) error { return nil }

// IsRevoked implements RevocationStore
func (NoopRevocationStore) IsRevoked(context.Context, string) (bool, error) { return false, nil }

// RevokeAccount implements RevocationStore
func (NoopRevocationStore) RevokeAccount(context.Context, int64, time.Time) error { return nil }

// IsAccountRevoked implements RevocationStore
func (NoopRevocationStore) IsAccountRevoked(context.Context, int64, time.Time) (bool, error) {
	return false, nil
}

// MemoryRevocationStore keeps revoked token ids in process memory. It backs the
// memory database driver.
type MemoryRevocationStore struct {
	mu       sync.Mutex
	revoked  map[string]time.Time
	accounts map[int64]time.Time
	now      func() time.Time
}

// NewMemoryRevocationStore creates an empty in-process revocation store
func NewMemoryRevocationStore() *MemoryRevocationStore {
	return &MemoryRevocationStore{
		revoked:  map[string]time.Time{},
		accounts: map[int64]time.Time{},
		now:      time.Now,
	}
}

// Revoke implements RevocationStore
func (s *MemoryRevocationStore) Revoke(_ context.Context, tokenID string, until time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for id, exp := range s.revoked {
		if !exp.After(now) {
			delete(s.revoked, id)
		}
	}
	if until.After(now) {
		s.revoked[tokenID] = until
	}
	return nil
}

// IsRevoked implements RevocationStore
func (s *MemoryRevocationStore) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	exp, ok := s.revoked[tokenID]
	return ok && exp.After(s.now()), nil
}

// RevokeAccount voids every token of the account issued up to cutoff
func (s *MemoryRevocationStore) RevokeAccount(_ context.Context, accountID int64, cutoff time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for id, c := range s.accounts {
		if !c.Add(TokenTTL).After(now) {
			delete(s.accounts, id)
		}
	}
	if current, ok := s.accounts[accountID]; !ok || cutoff.After(current) {
		s.accounts[accountID] = cutoff
	}
	return nil
}

// IsAccountRevoked reports whether a token issued at issuedAt predates the account cutoff
func (s *MemoryRevocationStore) IsAccountRevoked(_ context.Context, accountID int64, issuedAt time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff, ok := s.accounts[accountID]
	return ok && issuedBefore(issuedAt, cutoff), nil
}

const (
	revokedKeyPrefix = "session:revoked:"
	accountKeyPrefix = "session:account:"
)

// RedisRevocationStore keeps revoked token ids in Redis until their natural expiry
type RedisRevocationStore struct {
	client *redis.Client
}

// NewRedisRevocationStore creates a Redis-backed revocation store
func NewRedisRevocationStore(client *redis.Client) *RedisRevocationStore {
	return &RedisRevocationStore{client: client}
}

// Revoke stores the token id until the given expiry
func (s *RedisRevocationStore) Revoke(ctx context.Context, tokenID string, until time.Time) error {
	ttl := time.Until(until)
	if ttl <= 0 {
		return nil
	}
	return s.client.Set(ctx, revokedKeyPrefix+tokenID, "1", ttl).Err()
}

// IsRevoked reports whether the token id was revoked
func (s *RedisRevocationStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	err := s.client.Get(ctx, revokedKeyPrefix+tokenID).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// RevokeAccount stores the cutoff for as long as a token issued before it can live
func (s *RedisRevocationStore) RevokeAccount(ctx context.Context, accountID int64, cutoff time.Time) error {
	return s.client.Set(ctx, accountKey(accountID), strconv.FormatInt(cutoff.UnixNano(), 10), TokenTTL).Err()
}

// IsAccountRevoked reports whether a token issued at issuedAt predates the account cutoff
func (s *RedisRevocationStore) IsAccountRevoked(ctx context.Context, accountID int64, issuedAt time.Time) (bool, error) {
	nanos, err := s.client.Get(ctx, accountKey(accountID)).Int64()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return issuedBefore(issuedAt, time.Unix(0, nanos)), nil
}

func accountKey(accountID int64) string {
	return accountKeyPrefix + strconv.FormatInt(accountID, 10)
}
