package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrVerificationNotFound = errors.New("verification request not found or expired")

type Verification struct {
	Email string
	Code  string
}

// VerificationStore keeps pending email verification codes until they expire.
type VerificationStore interface {
	Save(ctx context.Context, id string, v Verification, ttl time.Duration) error
	Get(ctx context.Context, id string) (*Verification, error)
	Delete(ctx context.Context, id string) error
}

type redisVerificationStore struct {
	rdb *redis.Client
}

func NewRedisVerificationStore(rdb *redis.Client) VerificationStore {
	return &redisVerificationStore{rdb: rdb}
}

func verificationKey(id string) string {
	return fmt.Sprintf("verify:email:%s", id)
}

func (s *redisVerificationStore) Save(ctx context.Context, id string, v Verification, ttl time.Duration) error {
	key := verificationKey(id)

	pipe := s.rdb.TxPipeline()
	pipe.HSet(ctx, key, "email", v.Email, "code", v.Code)
	pipe.Expire(ctx, key, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store verification code: %w", err)
	}
	return nil
}

func (s *redisVerificationStore) Get(ctx context.Context, id string) (*Verification, error) {
	values, err := s.rdb.HGetAll(ctx, verificationKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load verification code: %w", err)
	}
	if len(values) == 0 {
		return nil, ErrVerificationNotFound
	}
	return &Verification{Email: values["email"], Code: values["code"]}, nil
}

func (s *redisVerificationStore) Delete(ctx context.Context, id string) error {
	return s.rdb.Del(ctx, verificationKey(id)).Err()
}
