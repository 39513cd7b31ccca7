package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tictactoe_server/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `user_id, username, email, password, coins, wins, losses, draws, created_at, last_login`

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Coins,
		&u.Wins, &u.Losses, &u.Draws, &u.CreatedAt, &u.LastLogin)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

// inserts a user and fills the generated id, balance and creation time
func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO users (username, email, password, coins)
		VALUES ($1, $2, $3, $4)
		RETURNING user_id, coins, created_at
	`, u.Username, u.Email, u.PasswordHash, domain.StartingCoins).Scan(&u.ID, &u.Coins, &u.CreatedAt)
}

// returns nil, nil when the user does not exist
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE user_id = $1`, id))
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username))
}

func (r *UserRepository) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM users WHERE username = $1 OR email = $2)
	`, username, email).Scan(&exists)
	return exists, err
}

func (r *UserRepository) UpdateLastLogin(ctx context.Context, id int64, at time.Time) error {
	_, err := r.db.Exec(ctx, `UPDATE users SET last_login = $1 WHERE user_id = $2`, at, id)
	return err
}

// top players by wins*3 + draws
func (r *UserRepository) Leaderboard(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	rows, err := r.db.Query(ctx, `
		SELECT username, wins, losses, draws, wins * 3 + draws AS score
		FROM users
		ORDER BY score DESC, wins DESC, user_id
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]domain.LeaderboardEntry, 0, limit)
	for rows.Next() {
		var e domain.LeaderboardEntry
		if err := rows.Scan(&e.Username, &e.Wins, &e.Losses, &e.Draws, &e.Score); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// locks the user row and returns its balance
func (r *UserRepository) GetCoinsForUpdate(ctx context.Context, tx pgx.Tx, id int64) (int64, error) {
	var coins int64
	err := tx.QueryRow(ctx, `SELECT coins FROM users WHERE user_id = $1 FOR UPDATE`, id).Scan(&coins)
	return coins, err
}

func (r *UserRepository) AddCoinsWithTx(ctx context.Context, tx pgx.Tx, id, delta int64) (int64, error) {
	var coins int64
	err := tx.QueryRow(ctx, `
		UPDATE users SET coins = coins + $1 WHERE user_id = $2 RETURNING coins
	`, delta, id).Scan(&coins)
	return coins, err
}

// TallyUpdate adds one to a tally column and coinDelta to the balance of a user.
type TallyUpdate struct {
	UserID int64
	Field  domain.TallyField
	Coins  int64
}

func addTally(ctx context.Context, tx pgx.Tx, t TallyUpdate) error {
	var column string
	switch t.Field {
	case domain.TallyWins, domain.TallyLosses, domain.TallyDraws:
		column = string(t.Field)
	default:
		return fmt.Errorf("unknown tally field %q", t.Field)
	}

	tag, err := tx.Exec(ctx, `
		UPDATE users SET `+column+` = `+column+` + 1, coins = coins + $1 WHERE user_id = $2
	`, t.Coins, t.UserID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("tally for user %d: %w", t.UserID, pgx.ErrNoRows)
	}
	return nil
}
