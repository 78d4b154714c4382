package session

import "sync"

// Store is the keyed session registry: user ID → product ID → live session
// plus the retained history of closed ones. Mutation is serialized per key
// so the same (user, product) pair racing from two channels cannot lose
// turn-count or status updates.
type Store struct {
	mu    sync.Mutex
	users map[string]map[int64]*entry
}

// entry guards one (user, product) negotiation thread.
type entry struct {
	mu      sync.Mutex
	live    *Session
	history []*Session
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{users: make(map[string]map[int64]*entry)}
}

// lockEntry returns the entry for the pair with its lock held.
func (st *Store) lockEntry(userID string, productID int64) *entry {
	st.mu.Lock()
	products, ok := st.users[userID]
	if !ok {
		products = make(map[int64]*entry)
		st.users[userID] = products
	}
	e, ok := products[productID]
	if !ok {
		e = &entry{}
		products[productID] = e
	}
	st.mu.Unlock()

	e.mu.Lock()
	return e
}

// Apply runs fn against the live session for the pair under the per-key
// lock, opening a fresh session first if none is live (terminal sessions
// are retired to history, never reused). Returns a snapshot of the session
// after fn; if fn fails the snapshot reflects whatever state survived -
// the engine-failure contract is that fn leaves the session untouched.
func (st *Store) Apply(userID string, productID int64, fn func(*Session) error) (Session, error) {
	e := st.lockEntry(userID, productID)
	defer e.mu.Unlock()

	if e.live == nil || e.live.Terminal() {
		if e.live != nil {
			e.history = append(e.history, e.live)
		}
		e.live = newSession(userID, productID)
	}

	err := fn(e.live)
	return *e.live, err
}

// Get returns a snapshot of the live session for the pair.
func (st *Store) Get(userID string, productID int64) (Session, bool) {
	e := st.lockEntry(userID, productID)
	defer e.mu.Unlock()

	if e.live == nil {
		return Session{}, false
	}
	return *e.live, true
}

// History returns snapshots of every session ever opened for the pair,
// oldest first, including the live one. Retained for audit.
func (st *Store) History(userID string, productID int64) []Session {
	e := st.lockEntry(userID, productID)
	defer e.mu.Unlock()

	out := make([]Session, 0, len(e.history)+1)
	for _, s := range e.history {
		out = append(out, *s)
	}
	if e.live != nil {
		out = append(out, *e.live)
	}
	return out
}

// AbandonExcept abandons every open session the user holds on other
// products. Called when the conversation context switches, so stale
// counter-offers cannot be silently accepted later.
func (st *Store) AbandonExcept(userID string, productID int64) {
	st.mu.Lock()
	entries := make([]*entry, 0)
	for pid, e := range st.users[userID] {
		if pid != productID {
			entries = append(entries, e)
		}
	}
	st.mu.Unlock()

	for _, e := range entries {
		e.mu.Lock()
		if e.live != nil {
			e.live.Abandon()
		}
		e.mu.Unlock()
	}
}
