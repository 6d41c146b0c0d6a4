package connection

import (
	"sync"
	"time"

	"azdoctl/pkg/logging"
)

// Store provides thread-safe in-memory storage for a single connection
// session. Sessions are deep-copied on the way in and on the way out, so
// no caller ever shares memory with the slot.
type Store struct {
	mu      sync.Mutex
	session *Session
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{}
}

// Write validates and caches the session, replacing any previous one
// atomically. Structurally incomplete sessions and sessions whose token
// has already expired are rejected with a StoreError and leave the slot
// untouched.
func (s *Store) Write(session *Session) error {
	if session == nil {
		return &StoreError{Reason: "session is nil"}
	}
	if field := missingField(session); field != "" {
		return &StoreError{Reason: field + " is missing"}
	}
	if !session.TokenExpiry.After(time.Now()) {
		return &StoreError{Reason: "token expiry is not in the future"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.session = session.Clone()
	logging.Debug("Store", "Cached session for %s (token expires %s)",
		session.OrganizationName, session.TokenExpiry.Format(time.RFC3339))
	return nil
}

// Read returns a copy of the cached session when one is present and still
// usable. A slot that turns out to be incomplete or within the expiry
// buffer is cleared on sight, so a failed read leaves the store empty
// rather than poisoned.
func (s *Store) Read() (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		return nil, false
	}

	if field := missingField(s.session); field != "" {
		logging.Warn("Store", "Cached session is missing %s, clearing slot", field)
		s.clearLocked()
		return nil, false
	}

	if s.session.ExpiresWithin(SessionExpiryBuffer) {
		logging.Debug("Store", "Cached session for %s is inside the %s expiry buffer, clearing slot",
			s.session.OrganizationName, SessionExpiryBuffer)
		s.clearLocked()
		return nil, false
	}

	return s.session.Clone(), true
}

// Clear removes any cached session. Clearing an empty store is a no-op.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearLocked()
}

// clearLocked wipes the slot's token buffer before dropping the session.
// Callers must hold s.mu.
func (s *Store) clearLocked() {
	if s.session == nil {
		return
	}
	s.session.AccessToken.Wipe()
	s.session = nil
	logging.Debug("Store", "Cleared cached session")
}

// missingField returns the name of the first required session field that
// is absent, or "" when the session is structurally complete.
func missingField(session *Session) string {
	switch {
	case session.OrganizationURL == "":
		return "organization URL"
	case session.AccessToken.IsEmpty():
		return "access token"
	case session.TokenExpiry.IsZero():
		return "token expiry"
	case session.TenantID == "":
		return "tenant ID"
	case session.ClientID == "":
		return "client ID"
	}
	return ""
}
