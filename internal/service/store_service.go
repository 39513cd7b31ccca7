package service

import (
	"context"
	"errors"

	"tictactoe_server/internal/domain"
	"tictactoe_server/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrItemNotFound      = errors.New("item not found")
	ErrInsufficientCoins = errors.New("insufficient coins")
)

// StoreService sells cosmetic items for coins.
type StoreService struct {
	db    *pgxpool.Pool
	items *repository.StoreRepository
	users *repository.UserRepository
	audit *AuditService
}

func NewStoreService(db *pgxpool.Pool, audit *AuditService) *StoreService {
	return &StoreService{
		db:    db,
		items: repository.NewStoreRepository(db),
		users: repository.NewUserRepository(db),
		audit: audit,
	}
}

func (s *StoreService) Items(ctx context.Context) ([]*domain.StoreItem, error) {
	return s.items.ListAvailable(ctx)
}

// Purchase debits the item price and records the purchase in one transaction.
func (s *StoreService) Purchase(ctx context.Context, userID, itemID int64, meta RequestMeta) (*domain.Purchase, int64, error) {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, 0, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	item, err := s.items.GetItemWithTx(ctx, tx, itemID)
	if err != nil {
		return nil, 0, err
	}
	if item == nil || !item.Available {
		return nil, 0, ErrItemNotFound
	}

	// lock the balance so concurrent purchases cannot overspend
	coins, err := s.users.GetCoinsForUpdate(ctx, tx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, 0, ErrUserNotFound
		}
		return nil, 0, err
	}
	if coins < item.Price {
		return nil, 0, ErrInsufficientCoins
	}

	balance, err := s.users.AddCoinsWithTx(ctx, tx, userID, -item.Price)
	if err != nil {
		return nil, 0, err
	}

	purchase := &domain.Purchase{UserID: userID, ItemID: item.ID}
	if err := s.items.CreatePurchaseWithTx(ctx, tx, purchase); err != nil {
		return nil, 0, err
	}
	s.audit.LogPurchaseWithTx(ctx, tx, userID, item.ID, item.Price, balance, meta)

	if err := tx.Commit(ctx); err != nil {
		return nil, 0, err
	}
	return purchase, balance, nil
}
