package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	emodel "github.com/yungbote/pulseboard-backend/internal/domain/engagement"
)

// ModelStore keeps the latest engagement model per user. Put replaces the
// previous model wholesale; Get returns nil, nil when none exists.
type ModelStore interface {
	Get(ctx context.Context, userID uuid.UUID) (*emodel.Model, error)
	Put(ctx context.Context, userID uuid.UUID, m *emodel.Model) error
	Delete(ctx context.Context, userID uuid.UUID) error
}

// TrainingLock admits one training run per user at a time.
type TrainingLock interface {
	TryLock(ctx context.Context, userID uuid.UUID) (release func(), ok bool, err error)
}

type memoryModelStore struct {
	mu     sync.RWMutex
	models map[uuid.UUID]*emodel.Model
}

func NewMemoryModelStore() ModelStore {
	return &memoryModelStore{models: make(map[uuid.UUID]*emodel.Model)}
}

func (s *memoryModelStore) Get(ctx context.Context, userID uuid.UUID) (*emodel.Model, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.models[userID].Clone(), nil
}

func (s *memoryModelStore) Put(ctx context.Context, userID uuid.UUID, m *emodel.Model) error {
	if m == nil {
		return errors.New("nil model")
	}
	s.mu.Lock()
	s.models[userID] = m.Clone()
	s.mu.Unlock()
	return nil
}

func (s *memoryModelStore) Delete(ctx context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	delete(s.models, userID)
	s.mu.Unlock()
	return nil
}

type redisModelStore struct {
	rdb    goredis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewRedisModelStore stores models as JSON under prefix+userID. A zero ttl
// keeps them until replaced.
func NewRedisModelStore(rdb goredis.UniversalClient, prefix string, ttl time.Duration) ModelStore {
	if prefix == "" {
		prefix = "pulseboard:engagement-model:"
	}
	return &redisModelStore{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (s *redisModelStore) key(userID uuid.UUID) string { return s.prefix + userID.String() }

func (s *redisModelStore) Get(ctx context.Context, userID uuid.UUID) (*emodel.Model, error) {
	raw, err := s.rdb.Get(ctx, s.key(userID)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get model: %w", err)
	}
	var m emodel.Model
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("decode model: %w", err)
	}
	return &m, nil
}

func (s *redisModelStore) Put(ctx context.Context, userID uuid.UUID, m *emodel.Model) error {
	if m == nil {
		return errors.New("nil model")
	}
	raw, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode model: %w", err)
	}
	return s.rdb.Set(ctx, s.key(userID), raw, s.ttl).Err()
}

func (s *redisModelStore) Delete(ctx context.Context, userID uuid.UUID) error {
	return s.rdb.Del(ctx, s.key(userID)).Err()
}

type memoryTrainingLock struct {
	mu   sync.Mutex
	held map[uuid.UUID]struct{}
}

func NewMemoryTrainingLock() TrainingLock {
	return &memoryTrainingLock{held: make(map[uuid.UUID]struct{})}
}

func (l *memoryTrainingLock) TryLock(ctx context.Context, userID uuid.UUID) (func(), bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, busy := l.held[userID]; busy {
		return nil, false, nil
	}
	l.held[userID] = struct{}{}
	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.held, userID)
			l.mu.Unlock()
		})
	}, true, nil
}

type redisTrainingLock struct {
	rdb    goredis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewRedisTrainingLock uses SET NX with ttl so a crashed instance cannot
// hold a user's lock forever.
func NewRedisTrainingLock(rdb goredis.UniversalClient, ttl time.Duration) TrainingLock {
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	return &redisTrainingLock{rdb: rdb, prefix: "pulseboard:training-lock:", ttl: ttl}
}

func (l *redisTrainingLock) TryLock(ctx context.Context, userID uuid.UUID) (func(), bool, error) {
	key := l.prefix + userID.String()
	token := uuid.NewString()
	ok, err := l.rdb.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("redis lock: %w", err)
	}
	if !ok {
		return nil, false, nil
	}
	var once sync.Once
	return func() {
		once.Do(func() {
			// Only delete the key if it still carries our token.
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = releaseScript.Run(ctx, l.rdb, []string{key}, token).Err()
		})
	}, true, nil
}

var releaseScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)
