package service

import (
	"context"
	"errors"
	"testing"

	"tictactoe_server/internal/domain"

	"github.com/jackc/pgx/v5"
)

// fakeTx records how a transaction was finished. Begin opens a savepoint.
type fakeTx struct {
	pgx.Tx
	savepoints []*fakeTx
	committed  bool
	rolledBack bool
}

func (tx *fakeTx) Begin(context.Context) (pgx.Tx, error) {
	sp := &fakeTx{}
	tx.savepoints = append(tx.savepoints, sp)
	return sp, nil
}

func (tx *fakeTx) Commit(context.Context) error {
	tx.committed = true
	return nil
}

func (tx *fakeTx) Rollback(context.Context) error {
	tx.rolledBack = true
	return nil
}

func TestLogPurchaseWithTx(t *testing.T) {
	store := &fakeAudit{}
	audit := NewAuditService(store)
	tx := &fakeTx{}

	audit.LogPurchaseWithTx(context.Background(), tx, 3, 2, 150, 850, RequestMeta{IP: "10.0.0.1"})

	if len(tx.savepoints) != 1 || !tx.savepoints[0].committed {
		t.Fatalf("audit row not written under a released savepoint: %+v", tx.savepoints)
	}
	if len(store.txs) != 1 || store.txs[0] != tx.savepoints[0] {
		t.Fatal("audit row not written through the savepoint")
	}
	e := store.entries[0]
	if e.Action != domain.AuditActionPurchase || e.UserID != 3 || e.IP != "10.0.0.1" || e.Details["new_balance"] != int64(850) {
		t.Fatalf("unexpected entry %+v", e)
	}
	if tx.committed || tx.rolledBack {
		t.Fatal("the caller's transaction must be left to the caller")
	}
}

func TestLogWithTxFailureRollsBackSavepointOnly(t *testing.T) {
	store := &fakeAudit{txErr: errors.New("audit_logs unavailable")}
	tx := &fakeTx{}

	NewAuditService(store).LogPurchaseWithTx(context.Background(), tx, 3, 2, 150, 850, RequestMeta{})

	sp := tx.savepoints[0]
	if !sp.rolledBack || sp.committed {
		t.Fatalf("failed audit write must roll back its savepoint: %+v", sp)
	}
	if tx.committed || tx.rolledBack || len(store.entries) != 0 {
		t.Fatal("outer transaction must stay usable and untouched")
	}
}

func TestNilAuditServiceIsNoop(t *testing.T) {
	var audit *AuditService
	audit.LogPurchaseWithTx(context.Background(), &fakeTx{}, 1, 1, 1, 1, RequestMeta{})
	audit.LogLogin(context.Background(), 1, RequestMeta{})
}
