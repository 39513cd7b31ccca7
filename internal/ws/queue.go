package ws

import (
	"errors"

	"tictactoe_server/internal/domain"
)

var ErrAlreadyQueued = errors.New("already searching")

// WaitingEntry is a bound connection looking for an opponent.
type WaitingEntry struct {
	Identity domain.Identity
	Client   *Client
}

// Queue is the FIFO matchmaking list. Owned by the hub goroutine.
type Queue struct {
	entries []WaitingEntry
}

func NewQueue() *Queue {
	return &Queue{}
}

// Enqueue appends an entry; one identity holds at most one entry.
func (q *Queue) Enqueue(id domain.Identity, c *Client) error {
	if q.Contains(id) {
		return ErrAlreadyQueued
	}
	q.entries = append(q.entries, WaitingEntry{Identity: id, Client: c})
	return nil
}

// PopPair removes and returns the two oldest entries when at least two wait.
func (q *Queue) PopPair() (WaitingEntry, WaitingEntry, bool) {
	if len(q.entries) < 2 {
		return WaitingEntry{}, WaitingEntry{}, false
	}
	a, b := q.entries[0], q.entries[1]
	q.entries = append(q.entries[:0:0], q.entries[2:]...)
	return a, b, true
}

func (q *Queue) Contains(id domain.Identity) bool {
	return q.index(id) >= 0
}

// RemoveClient drops the entry owned by connection c, if any.
func (q *Queue) RemoveClient(c *Client) (domain.Identity, bool) {
	for i, e := range q.entries {
		if e.Client == c {
			q.entries = append(q.entries[:i], q.entries[i+1:]...)
			return e.Identity, true
		}
	}
	return "", false
}

// Rebind moves id's waiting entry onto its new connection.
func (q *Queue) Rebind(id domain.Identity, c *Client) {
	if i := q.index(id); i >= 0 {
		q.entries[i].Client = c
	}
}

func (q *Queue) Len() int {
	return len(q.entries)
}

func (q *Queue) index(id domain.Identity) int {
	for i, e := range q.entries {
		if e.Identity == id {
			return i
		}
	}
	return -1
}
