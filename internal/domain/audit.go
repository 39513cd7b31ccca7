package domain

import "time"

// important account actions, kept for support and abuse review
type AuditLog struct {
	ID        int64                  `db:"id" json:"id"`
	UserID    int64                  `db:"user_id" json:"user_id"`
	Action    string                 `db:"action" json:"action"`
	Category  string                 `db:"category" json:"category"`
	Details   map[string]interface{} `db:"details" json:"details"`
	IP        string                 `db:"ip" json:"ip,omitempty"`
	UserAgent string                 `db:"user_agent" json:"user_agent,omitempty"`
	CreatedAt time.Time              `db:"created_at" json:"created_at"`
}

const (
	AuditCategoryAuth  = "auth"
	AuditCategoryStore = "store"
)

const (
	AuditActionRegister = "register"
	AuditActionLogin    = "login"
	AuditActionPurchase = "purchase"
)
