package handlers

import (
	"context"

	"tictactoe_server/internal/domain"
	"tictactoe_server/internal/service"

	"github.com/gin-gonic/gin"
)

type Accounts interface {
	Register(ctx context.Context, username, email, password string, meta service.RequestMeta) (*domain.User, error)
	Login(ctx context.Context, username, password string, meta service.RequestMeta) (string, *domain.User, error)
	Profile(ctx context.Context, userID int64) (*domain.User, error)
	Leaderboard(ctx context.Context) ([]domain.LeaderboardEntry, error)
}

type Achievements interface {
	List(ctx context.Context, userID int64) ([]*domain.Achievement, error)
}

type Store interface {
	Items(ctx context.Context) ([]*domain.StoreItem, error)
	Purchase(ctx context.Context, userID, itemID int64, meta service.RequestMeta) (*domain.Purchase, int64, error)
}

type Activity interface {
	Activity(ctx context.Context, userID int64, limit int) ([]*domain.AuditLog, error)
}

type History interface {
	Recent(ctx context.Context, userID int64) ([]*domain.GameSession, error)
	Session(ctx context.Context, userID int64, sessionID string) (*service.SessionDetail, error)
}

// Handler serves the REST API.
type Handler struct {
	Accounts     Accounts
	Achievements Achievements
	Store        Store
	Activity     Activity
	History      History
}

// set by the JWT middleware
const (
	ContextUserID   = "user_id"
	ContextUsername = "username"
)

func getUserID(c *gin.Context) (int64, bool) {
	v, ok := c.Get(ContextUserID)
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok && id > 0
}

func requestMeta(c *gin.Context) service.RequestMeta {
	return service.RequestMeta{IP: c.ClientIP(), UserAgent: c.Request.UserAgent()}
}
