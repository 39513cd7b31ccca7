package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"tictactoe_server/internal/domain"
	"tictactoe_server/internal/game"
	"tictactoe_server/internal/logger"
	"tictactoe_server/internal/metrics"

	"github.com/google/uuid"
)

// ErrNotAuthenticated marks gameplay messages from connections without a bound identity.
var ErrNotAuthenticated = errors.New("not authenticated")

// Verifier turns a caller-supplied token into a stable identity.
type Verifier interface {
	Verify(ctx context.Context, token string) (domain.Identity, error)
}

// Recorder is the durable side of the session lifecycle.
type Recorder interface {
	RecordSessionCreated(ctx context.Context, sessionID string, first, second domain.Identity) error
	RecordSessionResult(ctx context.Context, result domain.SessionResult) error
	RecordChatLine(ctx context.Context, line domain.ChatMessage) error
}

// Archive keeps snapshots of sessions evicted from memory.
type Archive interface {
	Save(ctx context.Context, sess game.Session) error
}

type Options struct {
	Verifier Verifier
	Recorder Recorder
	Archive  Archive // optional

	SessionRetention     time.Duration
	AbandonTimeout       time.Duration
	SweepInterval        time.Duration
	PersistMaxTries      uint
	PersistRetryInterval time.Duration

	Now func() time.Time
}

const (
	defaultSessionRetention = 2 * time.Minute
	defaultAbandonTimeout   = 30 * time.Second
	defaultSweepInterval    = time.Second
	eventQueueSize          = 256
)

type event interface{}

type joinEvent struct{ client *Client }

type bindEvent struct {
	client   *Client
	identity domain.Identity
}

type messageEvent struct {
	client *Client
	msg    Inbound
}

type leaveEvent struct{ client *Client }

// Hub owns the binding table, the matchmaking queue and the session store.
// Only the Run goroutine touches them; connections talk to it through events,
// so every check-then-mutate step runs without interleaving.
type Hub struct {
	verifier Verifier
	recorder Recorder
	archive  Archive

	bindings *Bindings
	queue    *Queue
	sessions *SessionStore
	clients  map[*Client]struct{}

	events  chan event
	done    chan struct{}
	persist *persister

	retention      time.Duration
	abandonTimeout time.Duration
	sweepInterval  time.Duration
	now            func() time.Time
	log            *slog.Logger
}

func NewHub(opts Options) *Hub {
	if opts.SessionRetention <= 0 {
		opts.SessionRetention = defaultSessionRetention
	}
	if opts.AbandonTimeout <= 0 {
		opts.AbandonTimeout = defaultAbandonTimeout
	}
	if opts.SweepInterval <= 0 {
		opts.SweepInterval = defaultSweepInterval
	}
	if opts.PersistRetryInterval <= 0 {
		opts.PersistRetryInterval = 200 * time.Millisecond
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	log := logger.With("component", "hub")

	return &Hub{
		verifier:       opts.Verifier,
		recorder:       opts.Recorder,
		archive:        opts.Archive,
		bindings:       NewBindings(),
		queue:          NewQueue(),
		sessions:       NewSessionStore(),
		clients:        make(map[*Client]struct{}),
		events:         make(chan event, eventQueueSize),
		done:           make(chan struct{}),
		persist:        newPersister(opts.PersistMaxTries, opts.PersistRetryInterval, log),
		retention:      opts.SessionRetention,
		abandonTimeout: opts.AbandonTimeout,
		sweepInterval:  opts.SweepInterval,
		now:            opts.Now,
		log:            log,
	}
}

// Run processes events until ctx is cancelled, then closes every connection
// and flushes pending durable writes.
func (h *Hub) Run(ctx context.Context) {
	go h.persist.run()

	ticker := time.NewTicker(h.sweepInterval)
	defer func() {
		ticker.Stop()
		close(h.done)
		for c := range h.clients {
			c.close()
		}
		h.persist.close()
		h.log.Info("hub stopped")
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-h.events:
			h.handle(ev)
		case <-ticker.C:
			h.sweep(h.now())
		}
	}
}

// submit hands an event to the hub; false once the hub stopped.
func (h *Hub) submit(ev event) bool {
	select {
	case h.events <- ev:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) handle(ev event) {
	switch e := ev.(type) {
	case joinEvent:
		h.clients[e.client] = struct{}{}
		metrics.ConnectionsActive.Inc()
	case bindEvent:
		h.handleBind(e.client, e.identity)
	case messageEvent:
		h.handleMessage(e.client, e.msg)
	case leaveEvent:
		h.handleLeave(e.client)
	}
}

func (h *Hub) handleBind(c *Client, id domain.Identity) {
	if _, open := h.clients[c]; !open {
		return
	}
	if prev, ok := h.bindings.IdentityOf(c); ok && prev != id {
		h.detach(c, prev)
	}

	if replaced := h.bindings.Bind(id, c); replaced != nil {
		h.log.Info("identity bound to a new connection", "user_id", id)
		replaced.sendJSON(errorMsg{Type: TypeError, Reason: "signed in elsewhere"})
	}
	h.queue.Rebind(id, c)
	h.sessions.MarkBack(id)

	c.sendJSON(authenticatedMsg{Type: TypeAuthenticated, UserID: id})
	h.log.Debug("authenticated", "user_id", id)
}

func (h *Hub) handleLeave(c *Client) {
	if _, open := h.clients[c]; !open {
		return
	}
	delete(h.clients, c)
	metrics.ConnectionsActive.Dec()

	if id, ok := h.bindings.IdentityOf(c); ok {
		h.detach(c, id)
	}
	c.close()
}

// detach forgets c as the connection of id: its waiting entry goes away and an
// active session starts counting towards abandonment.
func (h *Hub) detach(c *Client, id domain.Identity) {
	if _, ok := h.queue.RemoveClient(c); ok {
		metrics.QueueLength.Set(float64(h.queue.Len()))
		h.log.Debug("left the queue", "user_id", id)
	}
	h.bindings.Unbind(c)
	if _, live := h.bindings.Lookup(id); live {
		return
	}
	if sess, ok := h.sessions.ActiveFor(id); ok {
		h.sessions.MarkGone(id, h.now())
		h.log.Info("participant disconnected", "session_id", sess.ID, "user_id", id)
	}
}

func (h *Hub) handleMessage(c *Client, in Inbound) {
	id, ok := h.bindings.IdentityOf(c)
	if !ok {
		h.log.Debug("message dropped", "type", in.Type, "error", ErrNotAuthenticated)
		return
	}

	switch in.Type {
	case TypeFindMatch:
		h.findMatch(c, id)
	case TypeMakeMove:
		h.makeMove(id, in)
	case TypeSendMessage:
		h.chat(id, in)
	default:
		h.log.Debug("unknown message type dropped", "type", in.Type, "user_id", id)
	}
}

func (h *Hub) findMatch(c *Client, id domain.Identity) {
	if _, busy := h.sessions.ActiveFor(id); busy {
		c.sendJSON(errorMsg{Type: TypeError, Reason: "already in a game"})
		return
	}
	if err := h.queue.Enqueue(id, c); err != nil {
		c.sendJSON(errorMsg{Type: TypeError, Reason: err.Error()})
		return
	}

	first, second, paired := h.queue.PopPair()
	metrics.QueueLength.Set(float64(h.queue.Len()))
	if !paired {
		c.sendJSON(searchingMsg{Type: TypeSearching})
		return
	}
	h.startSession(first, second)
}

func (h *Hub) startSession(first, second WaitingEntry) {
	sess := game.NewSession("session_"+uuid.NewString(), first.Identity, second.Identity, h.now())
	h.sessions.Add(sess)
	metrics.MatchesTotal.Inc()
	metrics.SessionsActive.Set(float64(h.sessions.ActiveCount()))

	sessionID, a, b := sess.ID, first.Identity, second.Identity
	h.persist.enqueue("session_created", func(ctx context.Context) error {
		return h.recorder.RecordSessionCreated(ctx, sessionID, a, b)
	})

	for i, p := range sess.Players {
		h.sendTo(p, matchFoundMsg{
			Type:        TypeMatchFound,
			SessionID:   sess.ID,
			Symbol:      sess.MarkOf(p),
			OpponentID:  sess.Opponent(p),
			CurrentTurn: i == 0,
		})
	}
	h.log.Info("match found", "session_id", sess.ID, "x", a, "o", b)
}

func (h *Hub) makeMove(id domain.Identity, in Inbound) {
	sess, ok := h.sessions.Get(in.SessionID)
	if !ok || in.Position == nil {
		metrics.MovesTotal.WithLabelValues("rejected").Inc()
		return
	}

	res, err := sess.ApplyMove(id, *in.Position, h.now())
	if err != nil {
		metrics.MovesTotal.WithLabelValues("rejected").Inc()
		h.log.Debug("move rejected", "session_id", sess.ID, "user_id", id, "position", *in.Position, "error", err)
		return
	}
	metrics.MovesTotal.WithLabelValues("accepted").Inc()

	if res.Kind == game.Advanced {
		h.broadcast(sess, moveMadeMsg{
			Type:          TypeMoveMade,
			SessionID:     sess.ID,
			Board:         sess.Board,
			CurrentPlayer: sess.CurrentPlayer,
		})
		return
	}
	h.finish(sess, "")
}

// finish takes an ended session out of play, records it and tells both sides.
func (h *Hub) finish(sess *game.Session, reason string) {
	h.sessions.Ended(sess)
	metrics.SessionsActive.Set(float64(h.sessions.ActiveCount()))

	result := sess.Result()
	metrics.GamesFinishedTotal.WithLabelValues(string(result.Outcome)).Inc()
	h.persist.enqueue("session_result", func(ctx context.Context) error {
		return h.recorder.RecordSessionResult(ctx, result)
	})

	h.broadcast(sess, newGameOver(sess, reason))
	h.log.Info("game over", "session_id", sess.ID, "outcome", result.Outcome, "winner", result.Winner, "moves", sess.Moves)
}

func (h *Hub) chat(id domain.Identity, in Inbound) {
	sess, ok := h.sessions.Get(in.SessionID)
	if !ok || !sess.IsParticipant(id) {
		return
	}
	text := truncate(strings.TrimSpace(in.Message), domain.MaxChatLength)
	if text == "" {
		return
	}

	line := domain.ChatMessage{
		LineID:    uuid.NewString(),
		SessionID: sess.ID,
		UserID:    id,
		Message:   text,
		CreatedAt: h.now(),
	}
	h.persist.enqueue("chat_line", func(ctx context.Context) error {
		return h.recorder.RecordChatLine(ctx, line)
	})

	h.broadcast(sess, chatMsg{
		Type:      TypeChatMessage,
		SessionID: sess.ID,
		UserID:    id,
		Message:   text,
		Timestamp: line.CreatedAt,
	})
}

// sweep forfeits sessions whose participant stayed away too long and evicts
// finished sessions past their retention.
func (h *Hub) sweep(now time.Time) {
	for _, sess := range h.sessions.Overdue(now, h.abandonTimeout) {
		var stayed domain.Identity
		for _, p := range sess.Players {
			if _, live := h.bindings.Lookup(p); live && !h.sessions.IsGone(p) {
				stayed = p
			}
		}
		if _, err := sess.Abandon(stayed, now); err != nil {
			continue
		}
		reason := ReasonAbandoned
		if stayed != "" {
			reason = ReasonOpponentLeft
		}
		h.finish(sess, reason)
	}

	for _, sess := range h.sessions.Expired(now, h.retention) {
		h.log.Debug("session evicted", "session_id", sess.ID)
		if h.archive == nil {
			continue
		}
		snapshot := *sess
		h.persist.enqueue("session_archive", func(ctx context.Context) error {
			return h.archive.Save(ctx, snapshot)
		})
	}
}

// broadcast delivers msg to every participant that has a live connection.
// Delivery is best effort: absent or saturated connections miss it.
func (h *Hub) broadcast(sess *game.Session, msg any) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.log.Error("marshal failed", "session_id", sess.ID, "error", err)
		return
	}
	for _, p := range sess.Players {
		h.deliver(p, data)
	}
}

func (h *Hub) sendTo(id domain.Identity, msg any) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.log.Error("marshal failed", "user_id", id, "error", err)
		return
	}
	h.deliver(id, data)
}

func (h *Hub) deliver(id domain.Identity, data []byte) {
	c, ok := h.bindings.Lookup(id)
	if !ok {
		return
	}
	if !c.send(data) {
		h.log.Warn("send buffer full, message dropped", "user_id", id)
	}
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}
