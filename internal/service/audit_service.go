package service

import (
	"context"

	"tictactoe_server/internal/domain"
	"tictactoe_server/internal/logger"

	"github.com/jackc/pgx/v5"
)

type AuditStore interface {
	Create(ctx context.Context, entry *domain.AuditLog) error
	CreateWithTx(ctx context.Context, tx pgx.Tx, entry *domain.AuditLog) error
	ListForUser(ctx context.Context, userID int64, limit int) ([]*domain.AuditLog, error)
}

// RequestMeta identifies where an audited request came from.
type RequestMeta struct {
	IP        string
	UserAgent string
}

// AuditService writes account audit rows. Write failures are logged, never
// returned: auditing must not break the action being audited.
type AuditService struct {
	repo AuditStore
}

func NewAuditService(repo AuditStore) *AuditService {
	return &AuditService{repo: repo}
}

func newAuditEntry(userID int64, action, category string, meta RequestMeta, details map[string]interface{}) *domain.AuditLog {
	return &domain.AuditLog{
		UserID:    userID,
		Action:    action,
		Category:  category,
		Details:   details,
		IP:        meta.IP,
		UserAgent: meta.UserAgent,
	}
}

func (s *AuditService) Log(ctx context.Context, userID int64, action, category string, meta RequestMeta, details map[string]interface{}) {
	if s == nil || s.repo == nil {
		return
	}
	if err := s.repo.Create(ctx, newAuditEntry(userID, action, category, meta, details)); err != nil {
		logger.WithContext(ctx).Error("audit write failed", "error", err, "action", action, "user_id", userID)
	}
}

// LogWithTx writes the entry inside tx, so it commits or rolls back with the
// audited change. The insert runs under a savepoint: a failed audit write is
// logged and leaves tx usable.
func (s *AuditService) LogWithTx(ctx context.Context, tx pgx.Tx, userID int64, action, category string, meta RequestMeta, details map[string]interface{}) {
	if s == nil || s.repo == nil {
		return
	}
	log := logger.WithContext(ctx)

	sp, err := tx.Begin(ctx)
	if err != nil {
		log.Error("audit savepoint failed", "error", err, "action", action, "user_id", userID)
		return
	}
	if err := s.repo.CreateWithTx(ctx, sp, newAuditEntry(userID, action, category, meta, details)); err != nil {
		_ = sp.Rollback(ctx)
		log.Error("audit write failed", "error", err, "action", action, "user_id", userID)
		return
	}
	if err := sp.Commit(ctx); err != nil {
		log.Error("audit savepoint release failed", "error", err, "action", action, "user_id", userID)
	}
}

func (s *AuditService) LogRegister(ctx context.Context, userID int64, username string, meta RequestMeta) {
	s.Log(ctx, userID, domain.AuditActionRegister, domain.AuditCategoryAuth, meta, map[string]interface{}{
		"username": username,
	})
}

func (s *AuditService) LogLogin(ctx context.Context, userID int64, meta RequestMeta) {
	s.Log(ctx, userID, domain.AuditActionLogin, domain.AuditCategoryAuth, meta, nil)
}

// LogPurchaseWithTx records a purchase as part of the purchase transaction.
func (s *AuditService) LogPurchaseWithTx(ctx context.Context, tx pgx.Tx, userID, itemID, price, balance int64, meta RequestMeta) {
	s.LogWithTx(ctx, tx, userID, domain.AuditActionPurchase, domain.AuditCategoryStore, meta, map[string]interface{}{
		"item_id":     itemID,
		"price":       price,
		"new_balance": balance,
	})
}

// latest audit entries of a user
func (s *AuditService) Activity(ctx context.Context, userID int64, limit int) ([]*domain.AuditLog, error) {
	return s.repo.ListForUser(ctx, userID, limit)
}
