package sessions

import (
	"fmt"
	"net/http"
	"sync"

	tmerrors "github.com/jrsteele09/tripmate-client/internal/errors"
	"github.com/jrsteele09/tripmate-client/users"
)

// State is the lifecycle position of a Session
type State int

const (
	StateInit          State = iota // Nothing known yet
	StateAuthenticated              // Credentials or cookie session accepted by the server
	StateExpired                    // Server rejected the session and refresh did not help
	StateCleared                    // Logged out; credentials destroyed
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateAuthenticated:
		return "authenticated"
	case StateExpired:
		return "expired"
	case StateCleared:
		return "cleared"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Snapshot is a copy of the session taken under lock
type Snapshot struct {
	State          State
	User           *users.User
	HasCredentials bool
	Credentials    *Credentials
}

// Session is the single client-side session. It is created once and handed to
// every component that needs the user or the credentials.
type Session struct {
	lock  sync.RWMutex
	state State
	user  *users.User
	creds *Credentials
	repo  Repo
}

// New creates a session in the init state. repo may be nil, in which case
// credentials live only as long as the process.
func New(repo Repo) *Session {
	return &Session{
		state: StateInit,
		repo:  repo,
	}
}

// Restore loads persisted credentials. A missing pair leaves the session in init.
func (s *Session) Restore() error {
	if s.repo == nil {
		return nil
	}
	creds, err := s.repo.Load()
	if tmerrors.Is(err, tmerrors.ErrNoCredentials) {
		return nil
	}
	if err != nil {
		return tmerrors.Wrapf(err, "[Session Restore] failed to load credentials")
	}

	s.lock.Lock()
	defer s.lock.Unlock()
	s.creds = creds
	if creds.Valid() {
		s.state = StateAuthenticated
	} else {
		s.state = StateExpired
	}
	return nil
}

// Authenticate installs a fresh credential pair after login. user may be nil
// when the profile has not been fetched yet.
func (s *Session) Authenticate(creds *Credentials, user *users.User) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if err := s.persist(creds); err != nil {
		return err
	}
	s.creds = creds.clone()
	if user != nil {
		s.user = cloneUser(user)
	}
	s.state = StateAuthenticated
	return nil
}

// Replace swaps in refreshed credentials. An empty refresh credential keeps
// the previous one, as servers that do not rotate omit it.
func (s *Session) Replace(creds *Credentials) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	next := creds.clone()
	if next != nil && next.Refresh == "" && s.creds != nil {
		next.Refresh = s.creds.Refresh
	}
	if err := s.persist(next); err != nil {
		return err
	}
	s.creds = next
	s.state = StateAuthenticated
	return nil
}

// MarkRefreshed records a successful cookie-only refresh
func (s *Session) MarkRefreshed() {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.state = StateAuthenticated
}

// SetUser replaces the profile. A successful profile fetch also proves the
// session is live.
func (s *Session) SetUser(user *users.User) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.user = cloneUser(user)
	if user != nil {
		s.state = StateAuthenticated
	}
}

// Expire marks the session as rejected by the server. Credentials are kept so
// a later refresh can still revive it.
func (s *Session) Expire() {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.state == StateCleared {
		return
	}
	s.state = StateExpired
}

// Clear destroys the credentials and the profile
func (s *Session) Clear() error {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.creds = nil
	s.user = nil
	s.state = StateCleared
	if s.repo == nil {
		return nil
	}
	if err := s.repo.Delete(); err != nil && !tmerrors.Is(err, tmerrors.ErrNoCredentials) {
		return tmerrors.Wrapf(err, "[Session Clear] failed to delete credentials")
	}
	return nil
}

// Authorize attaches the bearer credential to r when one is held and not
// known to be expired. Without it the request relies on the cookie session.
func (s *Session) Authorize(r *http.Request) error {
	s.lock.RLock()
	defer s.lock.RUnlock()
	if s.creds.Valid() {
		s.creds.SetAuthHeader(r)
	}
	return nil
}

func (s *Session) State() State {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.state
}

// User returns a copy of the current profile, or nil
func (s *Session) User() *users.User {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return cloneUser(s.user)
}

// Credentials returns a copy of the current pair, or nil
func (s *Session) Credentials() *Credentials {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.creds.clone()
}

func (s *Session) Current() Snapshot {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return Snapshot{
		State:          s.state,
		User:           cloneUser(s.user),
		HasCredentials: s.creds != nil,
		Credentials:    s.creds.clone(),
	}
}

func (s *Session) persist(creds *Credentials) error {
	if s.repo == nil || creds == nil {
		return nil
	}
	if err := s.repo.Save(creds); err != nil {
		return tmerrors.Wrapf(err, "[Session] failed to save credentials")
	}
	return nil
}

func cloneUser(u *users.User) *users.User {
	if u == nil {
		return nil
	}
	cp := *u
	return &cp
}
