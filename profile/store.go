package profile

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrStoreUnavailable wraps Redis transport failures.
var ErrStoreUnavailable = errors.New("profile store unavailable")

// Store is a Redis-backed multi-user profile store. Safe for concurrent use.
type Store struct {
	client *redis.Client
	prefix string
}

// NewStore creates a Store. prefix namespaces all keys; it defaults to "ag".
func NewStore(client *redis.Client, prefix string) *Store {
	if prefix == "" {
		prefix = "ag"
	}
	return &Store{client: client, prefix: prefix}
}

func (s *Store) attrsKey(userID string) string {
	return fmt.Sprintf("%s:profile:attrs:%s", s.prefix, userID)
}

func (s *Store) updatedKey(userID string) string {
	return fmt.Sprintf("%s:profile:updated:%s", s.prefix, userID)
}

// Attributes reads the full attribute map for one user. A missing user
// yields an empty map, not an error.
func (s *Store) Attributes(ctx context.Context, userID string) (map[string]string, error) {
	attrs, err := s.client.HGetAll(ctx, s.attrsKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return attrs, nil
}

// SetAttributes writes (merges) attribute values for one user.
func (s *Store) SetAttributes(ctx context.Context, userID string, attrs map[string]string) error {
	if len(attrs) == 0 {
		return nil
	}
	flat := make([]any, 0, len(attrs)*2)
	for k, v := range attrs {
		flat = append(flat, k, v)
	}
	if err := s.client.HSet(ctx, s.attrsKey(userID), flat...).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// LastProfileUpdate reads the mutation marker for one user; zero time when
// no mutation has been recorded.
func (s *Store) LastProfileUpdate(ctx context.Context, userID string) (time.Time, error) {
	raw, err := s.client.Get(ctx, s.updatedKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	nanos, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("corrupt profile update marker %q", raw)
	}
	return time.Unix(0, nanos), nil
}

// RecordProfileUpdate writes the mutation marker for one user.
func (s *Store) RecordProfileUpdate(ctx context.Context, userID string, at time.Time) error {
	value := strconv.FormatInt(at.UnixNano(), 10)
	if err := s.client.Set(ctx, s.updatedKey(userID), value, 0).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// ForUser binds the store to a single user, yielding per-session views that
// satisfy the engine's ProfileSource and ProfileRecorder interfaces.
func (s *Store) ForUser(userID string) *UserProfile {
	return &UserProfile{store: s, userID: userID}
}

// UserProfile is a single-user view over a Store.
type UserProfile struct {
	store  *Store
	userID string
}

// FetchAttributes implements the engine's ProfileSource.
func (u *UserProfile) FetchAttributes(ctx context.Context) (map[string]string, error) {
	return u.store.Attributes(ctx, u.userID)
}

// LastProfileUpdate implements the engine's ProfileSource.
func (u *UserProfile) LastProfileUpdate(ctx context.Context) (time.Time, error) {
	return u.store.LastProfileUpdate(ctx, u.userID)
}

// RecordProfileUpdate implements the engine's ProfileRecorder.
func (u *UserProfile) RecordProfileUpdate(ctx context.Context, at time.Time) error {
	return u.store.RecordProfileUpdate(ctx, u.userID, at)
}
