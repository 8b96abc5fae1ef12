package repository

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/gomoku-backend/internal/entity"
)

const leaderboardKey = "leaderboard:wins"

type LeaderboardRepository interface {
	RecordWin(ctx context.Context, username string) error
	Top(ctx context.Context, limit int) ([]entity.PlayerScore, error)
}

type leaderboardRepository struct {
	client *redis.Client
}

func NewLeaderboardRepository(client *redis.Client) LeaderboardRepository {
	return &leaderboardRepository{
		client: client,
	}
}

func (that *leaderboardRepository) RecordWin(ctx context.Context, username string) error {
	if err := that.client.ZIncrBy(ctx, leaderboardKey, 1, username).Err(); err != nil {
		return fmt.Errorf("failed to record win: %w", err)
	}

	return nil
}

func (that *leaderboardRepository) Top(ctx context.Context, limit int) ([]entity.PlayerScore, error) {
	entries, err := that.client.ZRevRangeWithScores(ctx, leaderboardKey, 0, int64(limit)-1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get leaderboard: %w", err)
	}

	scores := make([]entity.PlayerScore, 0, len(entries))
	for _, entry := range entries {
		username, ok := entry.Member.(string)
		if !ok {
			continue
		}

		scores = append(scores, entity.PlayerScore{
			Username: username,
			Wins:     int64(entry.Score),
		})
	}

	return scores, nil
}
