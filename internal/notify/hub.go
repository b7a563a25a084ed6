// Package notify carries change signals from the product store to whoever is
// displaying products. A signal only says "re-fetch this scope"; it never
// carries row data.
package notify

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
)

const collectionPath = "products"

// Scope identifies what may have changed: the whole collection or one row.
type Scope struct {
	id int64
}

func Collection() Scope { return Scope{} }

func Row(id int64) Scope { return Scope{id: id} }

func (s Scope) IsCollection() bool { return s.id == 0 }

// RowID returns the row id, or 0 for the collection scope.
func (s Scope) RowID() int64 { return s.id }

// String renders the addressing form: "products" or "products/<id>".
func (s Scope) String() string {
	if s.IsCollection() {
		return collectionPath
	}
	return collectionPath + "/" + strconv.FormatInt(s.id, 10)
}

// ParseScope is the inverse of String.
func ParseScope(s string) (Scope, error) {
	s = strings.Trim(s, "/")
	if s == collectionPath || s == "" {
		return Collection(), nil
	}
	rest, ok := strings.CutPrefix(s, collectionPath+"/")
	if !ok {
		return Scope{}, fmt.Errorf("unknown scope %q", s)
	}
	id, err := strconv.ParseInt(rest, 10, 64)
	if err != nil || id <= 0 {
		return Scope{}, fmt.Errorf("invalid row id in scope %q", s)
	}
	return Row(id), nil
}

// covers reports whether a change to changed is relevant to a watcher of s.
func (s Scope) covers(changed Scope) bool {
	return s.IsCollection() || changed.IsCollection() || s.id == changed.id
}

// Notifier is what writers depend on.
type Notifier interface {
	Notify(scope Scope)
}

// Hub fans change signals out to subscribers. The zero value is not usable;
// build one with NewHub.
type Hub struct {
	mu   sync.RWMutex
	subs map[*Subscription]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[*Subscription]struct{})}
}

// Subscription receives signals for its scope until Close is called.
type Subscription struct {
	hub   *Hub
	scope Scope
	ch    chan Scope
	once  sync.Once
}

// Subscribe registers a watcher of scope.
func (h *Hub) Subscribe(scope Scope) *Subscription {
	sub := &Subscription{
		hub:   h,
		scope: scope,
		ch:    make(chan Scope, 1),
	}
	h.mu.Lock()
	h.subs[sub] = struct{}{}
	h.mu.Unlock()
	return sub
}

// Notify never blocks. A subscriber that has not drained its previous signal
// keeps that one; signals coalesce because they only mean "re-fetch".
func (h *Hub) Notify(scope Scope) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.subs {
		if !sub.scope.covers(scope) {
			continue
		}
		select {
		case sub.ch <- scope:
		default:
		}
	}
}

// Subscribers returns the number of attached subscriptions.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// C delivers the scope of each change. It is closed by Close.
func (s *Subscription) C() <-chan Scope { return s.ch }

func (s *Subscription) Scope() Scope { return s.scope }

func (s *Subscription) Close() {
	s.once.Do(func() {
		s.hub.mu.Lock()
		delete(s.hub.subs, s)
		s.hub.mu.Unlock()
		close(s.ch)
	})
}

// Discard drops every signal. Useful where nobody is watching.
var Discard Notifier = discard{}

type discard struct{}

func (discard) Notify(Scope) {}
