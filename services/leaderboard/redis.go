// Package lbsvc keeps an XP leaderboard in a Redis sorted set.
package lbsvc

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"

	"github.com/trezcool/maendeleo/core"
	"github.com/trezcool/maendeleo/core/progression"
)

const leaderboardKey = "progression:leaderboard"

type Entry struct {
	UserID  string `json:"user_id"`
	TotalXP int    `json:"total_xp"`
	Rank    int    `json:"rank"` // 1-based
}

type RedisLeaderboard struct {
	client *redis.Client
}

var _ progression.Leaderboard = (*RedisLeaderboard)(nil)

// NewRedisLeaderboard connects to Redis, retrying with exponential backoff
// until the server is reachable.
func NewRedisLeaderboard(ctx context.Context, conf *core.Config) (*RedisLeaderboard, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         conf.Redis.Address(),
		Password:     conf.Redis.Password,
		DB:           conf.Redis.DB,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	b := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 5)
	err := backoff.Retry(
		func() error {
			return client.Ping(ctx).Err()
		},
		backoff.WithContext(b, ctx),
	)
	if err != nil {
		return nil, errors.Wrap(err, "connecting to redis")
	}
	return &RedisLeaderboard{client: client}, nil
}

// NewRedisLeaderboardFromClient wraps an existing client; used in tests.
func NewRedisLeaderboardFromClient(client *redis.Client) *RedisLeaderboard {
	return &RedisLeaderboard{client: client}
}

func (lb *RedisLeaderboard) RecordXP(ctx context.Context, userID string, totalXP int) error {
	err := lb.client.ZAdd(ctx, leaderboardKey, &redis.Z{
		Score:  float64(totalXP),
		Member: userID,
	}).Err()
	return errors.Wrap(err, "recording XP")
}

// Top returns the n highest ranked users.
func (lb *RedisLeaderboard) Top(ctx context.Context, n int) ([]Entry, error) {
	if n < 1 {
		return nil, nil
	}
	zs, err := lb.client.ZRevRangeWithScores(ctx, leaderboardKey, 0, int64(n-1)).Result()
	if err != nil {
		return nil, errors.Wrap(err, "querying leaderboard")
	}

	entries := make([]Entry, 0, len(zs))
	for i, z := range zs {
		userID, _ := z.Member.(string)
		entries = append(entries, Entry{
			UserID:  userID,
			TotalXP: int(z.Score),
			Rank:    i + 1,
		})
	}
	return entries, nil
}

// Rank returns the user's leaderboard entry, or ok=false when the user has
// never recorded any XP.
func (lb *RedisLeaderboard) Rank(ctx context.Context, userID string) (Entry, bool, error) {
	rank, err := lb.client.ZRevRank(ctx, leaderboardKey, userID).Result()
	if err == redis.Nil {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, errors.Wrap(err, "querying rank")
	}

	score, err := lb.client.ZScore(ctx, leaderboardKey, userID).Result()
	if err != nil {
		return Entry{}, false, errors.Wrap(err, "querying score")
	}

	return Entry{
		UserID:  userID,
		TotalXP: int(score),
		Rank:    int(rank) + 1,
	}, true, nil
}

func (lb *RedisLeaderboard) Close() error {
	return lb.client.Close()
}
