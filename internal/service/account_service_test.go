package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"tictactoe_server/internal/domain"

	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"
)

type fakeUsers struct {
	mu      sync.Mutex
	byID    map[int64]*domain.User
	nextID  int64
	logins  map[int64]time.Time
	ranking []domain.LeaderboardEntry
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byID: map[int64]*domain.User{}, logins: map[int64]time.Time{}}
}

func (f *fakeUsers) Create(_ context.Context, u *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	u.ID = f.nextID
	u.Coins = domain.StartingCoins
	u.CreatedAt = time.Now()
	cp := *u
	f.byID[u.ID] = &cp
	return nil
}

func (f *fakeUsers) GetByID(_ context.Context, id int64) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeUsers) ExistsByUsernameOrEmail(_ context.Context, username, email string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Username == username || u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUsers) UpdateLastLogin(_ context.Context, id int64, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logins[id] = at
	return nil
}

func (f *fakeUsers) Leaderboard(_ context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	if len(f.ranking) > limit {
		return f.ranking[:limit], nil
	}
	return f.ranking, nil
}

type fakeAudit struct {
	mu      sync.Mutex
	entries []*domain.AuditLog
	txs     []pgx.Tx
	txErr   error
}

func (f *fakeAudit) Create(_ context.Context, entry *domain.AuditLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeAudit) CreateWithTx(ctx context.Context, tx pgx.Tx, entry *domain.AuditLog) error {
	f.mu.Lock()
	f.txs = append(f.txs, tx)
	fail := f.txErr
	f.mu.Unlock()
	if fail != nil {
		return fail
	}
	return f.Create(ctx, entry)
}

func (f *fakeAudit) ListForUser(_ context.Context, userID int64, limit int) ([]*domain.AuditLog, error) {
	var out []*domain.AuditLog
	for _, e := range f.entries {
		if e.UserID == userID && len(out) < limit {
			out = append(out, e)
		}
	}
	return out, nil
}

func newTestAccounts() (*AccountService, *fakeUsers, *fakeAudit) {
	users, audit := newFakeUsers(), &fakeAudit{}
	s := NewAccountService(users, NewJWTManager("secret", time.Hour), NewAuditService(audit))
	s.cost = bcrypt.MinCost
	return s, users, audit
}

func TestRegisterAndLogin(t *testing.T) {
	s, users, audit := newTestAccounts()
	ctx := context.Background()
	meta := RequestMeta{IP: "10.0.0.1", UserAgent: "test"}

	u, err := s.Register(ctx, " alice ", "alice@example.com", "pw", meta)
	if err != nil {
		t.Fatal(err)
	}
	if u.ID == 0 || u.Coins != domain.StartingCoins || u.Username != "alice" {
		t.Fatalf("unexpected user %+v", u)
	}
	if stored := users.byID[u.ID]; stored.PasswordHash == "pw" || stored.PasswordHash == "" {
		t.Fatal("password stored in clear")
	}

	token, logged, err := s.Login(ctx, "alice", "pw", meta)
	if err != nil {
		t.Fatal(err)
	}
	if logged.ID != u.ID || logged.LastLogin == nil {
		t.Fatalf("unexpected login user %+v", logged)
	}
	if _, ok := users.logins[u.ID]; !ok {
		t.Fatal("last login not updated")
	}
	if id, err := s.tokens.Verify(ctx, token); err != nil || id != domain.IdentityFromUserID(u.ID) {
		t.Fatalf("token does not verify to the user: %q %v", id, err)
	}

	if len(audit.entries) != 2 ||
		audit.entries[0].Action != domain.AuditActionRegister ||
		audit.entries[1].Action != domain.AuditActionLogin ||
		audit.entries[1].IP != "10.0.0.1" {
		t.Fatalf("unexpected audit trail %+v", audit.entries)
	}
}

func TestRegisterErrors(t *testing.T) {
	s, _, _ := newTestAccounts()
	ctx := context.Background()

	if _, err := s.Register(ctx, "", "x@example.com", "pw", RequestMeta{}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := s.Register(ctx, "bob", "bob@example.com", "pw", RequestMeta{}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Register(ctx, "bob", "other@example.com", "pw", RequestMeta{}); !errors.Is(err, ErrUserExists) {
		t.Fatalf("expected ErrUserExists for username, got %v", err)
	}
	if _, err := s.Register(ctx, "bobby", "bob@example.com", "pw", RequestMeta{}); !errors.Is(err, ErrUserExists) {
		t.Fatalf("expected ErrUserExists for email, got %v", err)
	}
}

func TestLoginErrors(t *testing.T) {
	s, _, _ := newTestAccounts()
	ctx := context.Background()
	s.Register(ctx, "carol", "carol@example.com", "right", RequestMeta{})

	if _, _, err := s.Login(ctx, "carol", "wrong", RequestMeta{}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, _, err := s.Login(ctx, "nobody", "right", RequestMeta{}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestProfile(t *testing.T) {
	s, _, _ := newTestAccounts()
	ctx := context.Background()
	u, _ := s.Register(ctx, "dave", "dave@example.com", "pw", RequestMeta{})

	got, err := s.Profile(ctx, u.ID)
	if err != nil || got.Username != "dave" {
		t.Fatalf("unexpected profile %+v (%v)", got, err)
	}
	if _, err := s.Profile(ctx, 999); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestLeaderboardLimit(t *testing.T) {
	s, users, _ := newTestAccounts()
	for i := 0; i < 15; i++ {
		users.ranking = append(users.ranking, domain.LeaderboardEntry{Username: "p", Score: int64(100 - i)})
	}
	got, err := s.Leaderboard(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 10 || got[0].Score != 100 {
		t.Fatalf("unexpected leaderboard %v", got)
	}
}
