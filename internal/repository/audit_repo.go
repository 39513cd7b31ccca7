package repository

import (
	"context"
	"encoding/json"

	"tictactoe_server/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AuditRepository struct {
	db *pgxpool.Pool
}

func NewAuditRepository(db *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{db: db}
}

// satisfied by both the pool and a transaction
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func (r *AuditRepository) Create(ctx context.Context, entry *domain.AuditLog) error {
	return insertAudit(ctx, r.db, entry)
}

// same as Create, inside a caller transaction
func (r *AuditRepository) CreateWithTx(ctx context.Context, tx pgx.Tx, entry *domain.AuditLog) error {
	return insertAudit(ctx, tx, entry)
}

func insertAudit(ctx context.Context, db execer, entry *domain.AuditLog) error {
	details, err := json.Marshal(entry.Details)
	if err != nil || entry.Details == nil {
		details = []byte("{}")
	}
	_, err = db.Exec(ctx, `
		INSERT INTO audit_logs (user_id, action, category, details, ip, user_agent)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, entry.UserID, entry.Action, entry.Category, details, entry.IP, entry.UserAgent)
	return err
}

// latest entries of a user, newest first
func (r *AuditRepository) ListForUser(ctx context.Context, userID int64, limit int) ([]*domain.AuditLog, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, action, category, details, ip, user_agent, created_at
		FROM audit_logs
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.AuditLog
	for rows.Next() {
		var entry domain.AuditLog
		var details []byte
		if err := rows.Scan(&entry.ID, &entry.UserID, &entry.Action, &entry.Category,
			&details, &entry.IP, &entry.UserAgent, &entry.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(details, &entry.Details); err != nil {
			entry.Details = map[string]interface{}{}
		}
		out = append(out, &entry)
	}
	return out, rows.Err()
}
