package memrepo

import (
	"sync"

	tmerrors "github.com/jrsteele09/tripmate-client/internal/errors"
	"github.com/jrsteele09/tripmate-client/sessions"
)

var _ sessions.Repo = (*MemRepo)(nil)

// MemRepo keeps the credential pair in process memory
type MemRepo struct {
	creds *sessions.Credentials
	lock  sync.RWMutex
}

func New() *MemRepo {
	return &MemRepo{}
}

func (m *MemRepo) Load() (*sessions.Credentials, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()
	if m.creds == nil {
		return nil, tmerrors.ErrNoCredentials
	}
	cp := *m.creds
	return &cp, nil
}

func (m *MemRepo) Save(creds *sessions.Credentials) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	cp := *creds
	m.creds = &cp
	return nil
}

func (m *MemRepo) Delete() error {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.creds = nil
	return nil
}
