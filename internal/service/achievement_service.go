package service

import (
	"context"
	"fmt"

	"tictactoe_server/internal/domain"
	"tictactoe_server/internal/logger"
)

type AchievementStore interface {
	Wins(ctx context.Context, userID int64) (int64, error)
	TryUnlock(ctx context.Context, userID, achievementID int64) (bool, error)
	ListForUser(ctx context.Context, userID int64) ([]*domain.Achievement, error)
}

type AchievementService struct {
	store AchievementStore
}

func NewAchievementService(store AchievementStore) *AchievementService {
	return &AchievementService{store: store}
}

// Evaluate unlocks every win threshold the user has reached and returns the
// ids unlocked by this call. Calling it again unlocks nothing new.
func (s *AchievementService) Evaluate(ctx context.Context, userID int64) ([]int64, error) {
	wins, err := s.store.Wins(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("wins of user %d: %w", userID, err)
	}

	var unlocked []int64
	for _, a := range domain.WinAchievements {
		if wins < a.Wins {
			continue
		}
		ok, err := s.store.TryUnlock(ctx, userID, a.ID)
		if err != nil {
			return unlocked, err
		}
		if ok {
			unlocked = append(unlocked, a.ID)
			logger.WithContext(ctx).Info("achievement unlocked", "user_id", userID, "achievement_id", a.ID)
		}
	}
	return unlocked, nil
}

func (s *AchievementService) List(ctx context.Context, userID int64) ([]*domain.Achievement, error) {
	return s.store.ListForUser(ctx, userID)
}
