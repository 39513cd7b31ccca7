package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"tictactoe_server/internal/domain"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidInput       = errors.New("username, email and password are required")
	ErrUserExists         = errors.New("username or email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
)

const leaderboardSize = 10

type UserStore interface {
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)
	UpdateLastLogin(ctx context.Context, id int64, at time.Time) error
	Leaderboard(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error)
}

// AccountService handles registration, login and profile reads.
type AccountService struct {
	users  UserStore
	tokens *JWTManager
	audit  *AuditService
	cost   int
	now    func() time.Time
}

func NewAccountService(users UserStore, tokens *JWTManager, audit *AuditService) *AccountService {
	return &AccountService{
		users:  users,
		tokens: tokens,
		audit:  audit,
		cost:   bcrypt.DefaultCost,
		now:    time.Now,
	}
}

func (s *AccountService) Register(ctx context.Context, username, email, password string, meta RequestMeta) (*domain.User, error) {
	username, email = strings.TrimSpace(username), strings.TrimSpace(email)
	if username == "" || email == "" || password == "" {
		return nil, ErrInvalidInput
	}

	exists, err := s.users.ExistsByUsernameOrEmail(ctx, username, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrUserExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.audit.LogRegister(ctx, user.ID, user.Username, meta)
	return user, nil
}

// Login checks the password and returns a fresh token.
func (s *AccountService) Login(ctx context.Context, username, password string, meta RequestMeta) (string, *domain.User, error) {
	user, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return "", nil, err
	}
	if user == nil {
		return "", nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	now := s.now()
	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		return "", nil, err
	}
	user.LastLogin = &now

	token, err := s.tokens.Issue(user.ID, user.Username)
	if err != nil {
		return "", nil, err
	}

	s.audit.LogLogin(ctx, user.ID, meta)
	return token, user, nil
}

func (s *AccountService) Profile(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *AccountService) Leaderboard(ctx context.Context) ([]domain.LeaderboardEntry, error) {
	return s.users.Leaderboard(ctx, leaderboardSize)
}
