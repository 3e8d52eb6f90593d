package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"github.com/redis/go-redis/v9"
)

// 古いトークンを消してから新しいトークンを登録する
var issueTokenScript = redis.NewScript(`
local old = redis.call('GET', KEYS[2])
if old then
	redis.call('DEL', ARGV[3] .. old)
end
local ttl = tonumber(ARGV[4])
redis.call('SET', KEYS[1], ARGV[1], 'PX', ttl)
redis.call('SET', KEYS[2], ARGV[2], 'PX', ttl)
return 1
`)

// 取得と削除を1回で行う（同じトークンの二重使用を防ぐ）
var consumeTokenScript = redis.NewScript(`
local uid = redis.call('GET', KEYS[1])
if not uid then
	return false
end
redis.call('DEL', KEYS[1])
local userKey = ARGV[1] .. uid
if redis.call('GET', userKey) == ARGV[2] then
	redis.call('DEL', userKey)
end
return uid
`)

type tokenRedisStore struct {
	client *redis.Client
}

func NewTokenRedisStore(client *redis.Client) repo.TokenStore {
	return &tokenRedisStore{client: client}
}

func tokenKeyPrefix(purpose model.TokenPurpose) string {
	return fmt.Sprintf("token:%s:", purpose)
}

func tokenUserKeyPrefix(purpose model.TokenPurpose) string {
	return fmt.Sprintf("token:%s:user:", purpose)
}

func (s *tokenRedisStore) Issue(ctx context.Context, purpose model.TokenPurpose, userID int64, token string, ttl time.Duration) error {
	h := hashToken(token)
	uid := strconv.FormatInt(userID, 10)
	keys := []string{
		tokenKeyPrefix(purpose) + h,
		tokenUserKeyPrefix(purpose) + uid,
	}
	err := issueTokenScript.Run(ctx, s.client, keys, uid, h, tokenKeyPrefix(purpose), ttl.Milliseconds()).Err()
	if err != nil {
		return fmt.Errorf("redis issue token failed: %w", err)
	}
	return nil
}

func (s *tokenRedisStore) Consume(ctx context.Context, purpose model.TokenPurpose, token string) (int64, error) {
	h := hashToken(token)
	keys := []string{tokenKeyPrefix(purpose) + h}

	uid, err := consumeTokenScript.Run(ctx, s.client, keys, tokenUserKeyPrefix(purpose), h).Text()
	if errors.Is(err, redis.Nil) {
		return 0, repo.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("redis consume token failed: %w", err)
	}

	userID, err := strconv.ParseInt(uid, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid token owner %q: %w", uid, err)
	}
	return userID, nil
}
