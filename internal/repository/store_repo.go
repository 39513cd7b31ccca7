package repository

import (
	"context"
	"errors"

	"tictactoe_server/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type StoreRepository struct {
	db *pgxpool.Pool
}

func NewStoreRepository(db *pgxpool.Pool) *StoreRepository {
	return &StoreRepository{db: db}
}

func (r *StoreRepository) ListAvailable(ctx context.Context) ([]*domain.StoreItem, error) {
	rows, err := r.db.Query(ctx, `
		SELECT item_id, name, description, price, available
		FROM store_items
		WHERE available = true
		ORDER BY price, item_id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.StoreItem
	for rows.Next() {
		var it domain.StoreItem
		if err := rows.Scan(&it.ID, &it.Name, &it.Description, &it.Price, &it.Available); err != nil {
			return nil, err
		}
		out = append(out, &it)
	}
	return out, rows.Err()
}

// returns nil, nil when the item does not exist
func (r *StoreRepository) GetItemWithTx(ctx context.Context, tx pgx.Tx, itemID int64) (*domain.StoreItem, error) {
	var it domain.StoreItem
	err := tx.QueryRow(ctx, `
		SELECT item_id, name, description, price, available
		FROM store_items
		WHERE item_id = $1
	`, itemID).Scan(&it.ID, &it.Name, &it.Description, &it.Price, &it.Available)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &it, nil
}

func (r *StoreRepository) CreatePurchaseWithTx(ctx context.Context, tx pgx.Tx, p *domain.Purchase) error {
	return tx.QueryRow(ctx, `
		INSERT INTO user_purchases (user_id, item_id)
		VALUES ($1, $2)
		RETURNING purchase_id, purchased_at
	`, p.UserID, p.ItemID).Scan(&p.ID, &p.PurchasedAt)
}
