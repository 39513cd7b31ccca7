package ws

import "tictactoe_server/internal/domain"

// Bindings maps each verified identity to its one live connection.
// Owned by the hub goroutine; not safe for concurrent use.
type Bindings struct {
	byIdentity map[domain.Identity]*Client
	byClient   map[*Client]domain.Identity
}

func NewBindings() *Bindings {
	return &Bindings{
		byIdentity: make(map[domain.Identity]*Client),
		byClient:   make(map[*Client]domain.Identity),
	}
}

// Bind records id -> c. The last bind wins: a previous connection of id is
// returned so the caller can tell it, and it loses its identity.
// A connection re-authenticating as someone else drops its old identity too.
func (b *Bindings) Bind(id domain.Identity, c *Client) (replaced *Client) {
	if prevID, ok := b.byClient[c]; ok && prevID != id {
		delete(b.byIdentity, prevID)
	}
	if prev, ok := b.byIdentity[id]; ok && prev != c {
		delete(b.byClient, prev)
		replaced = prev
	}
	b.byIdentity[id] = c
	b.byClient[c] = id
	return replaced
}

// Unbind removes the binding of c. The identity entry is only removed while it
// still points at c, so a stale close never undoes a newer bind.
func (b *Bindings) Unbind(c *Client) (domain.Identity, bool) {
	id, ok := b.byClient[c]
	if !ok {
		return "", false
	}
	delete(b.byClient, c)
	if b.byIdentity[id] == c {
		delete(b.byIdentity, id)
	}
	return id, true
}

// Lookup returns the live connection of id.
func (b *Bindings) Lookup(id domain.Identity) (*Client, bool) {
	c, ok := b.byIdentity[id]
	return c, ok
}

// IdentityOf returns the identity c is bound to.
func (b *Bindings) IdentityOf(c *Client) (domain.Identity, bool) {
	id, ok := b.byClient[c]
	return id, ok
}

func (b *Bindings) Len() int {
	return len(b.byIdentity)
}
