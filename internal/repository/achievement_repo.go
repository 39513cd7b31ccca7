package repository

import (
	"context"

	"tictactoe_server/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type AchievementRepository struct {
	db *pgxpool.Pool
}

func NewAchievementRepository(db *pgxpool.Pool) *AchievementRepository {
	return &AchievementRepository{db: db}
}

func (r *AchievementRepository) Wins(ctx context.Context, userID int64) (int64, error) {
	var wins int64
	err := r.db.QueryRow(ctx, `SELECT wins FROM users WHERE user_id = $1`, userID).Scan(&wins)
	return wins, err
}

// TryUnlock records the achievement once; false when it was already unlocked.
func (r *AchievementRepository) TryUnlock(ctx context.Context, userID, achievementID int64) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		INSERT INTO user_achievements (user_id, achievement_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, achievement_id) DO NOTHING
	`, userID, achievementID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// every achievement, with unlocked_at set for the ones the user holds
func (r *AchievementRepository) ListForUser(ctx context.Context, userID int64) ([]*domain.Achievement, error) {
	rows, err := r.db.Query(ctx, `
		SELECT a.achievement_id, a.name, a.description, a.threshold, ua.unlocked_at
		FROM achievements a
		LEFT JOIN user_achievements ua
			ON ua.achievement_id = a.achievement_id AND ua.user_id = $1
		ORDER BY a.achievement_id
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Achievement
	for rows.Next() {
		var a domain.Achievement
		if err := rows.Scan(&a.ID, &a.Name, &a.Description, &a.Threshold, &a.UnlockedAt); err != nil {
			return nil, err
		}
		out = append(out, &a)
	}
	return out, rows.Err()
}
