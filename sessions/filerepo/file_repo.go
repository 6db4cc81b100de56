package filerepo

import (
	"bytes"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	tmerrors "github.com/jrsteele09/tripmate-client/internal/errors"
	"github.com/jrsteele09/tripmate-client/sessions"
	"golang.org/x/crypto/nacl/secretbox"
	"golang.org/x/crypto/scrypt"
)

var _ sessions.Repo = (*FileRepo)(nil)

const (
	saltLen  = 16
	nonceLen = 24
	keyLen   = 32

	// scrypt parameters recommended for interactive logins
	scryptN = 1 << 15
	scryptR = 8
	scryptP = 1
)

// sealedMagic prefixes files written with a passphrase
var sealedMagic = []byte("TMS1")

var ErrWrongPassphrase = errors.New("credentials file cannot be opened with this passphrase")

// FileRepo stores the credential pair as JSON in a single file. With a
// passphrase the JSON is sealed with secretbox under an scrypt-derived key.
type FileRepo struct {
	path       string
	passphrase []byte
	lock       sync.Mutex
}

func New(path, passphrase string) *FileRepo {
	r := &FileRepo{path: path}
	if passphrase != "" {
		r.passphrase = []byte(passphrase)
	}
	return r
}

func (r *FileRepo) Load() (*sessions.Credentials, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	data, err := os.ReadFile(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, tmerrors.ErrNoCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("[FileRepo Load] %w", err)
	}

	if bytes.HasPrefix(data, sealedMagic) {
		if r.passphrase == nil {
			return nil, ErrWrongPassphrase
		}
		if data, err = r.open(data[len(sealedMagic):]); err != nil {
			return nil, err
		}
	}

	var creds sessions.Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("[FileRepo Load] corrupt credentials file: %w", err)
	}
	return &creds, nil
}

func (r *FileRepo) Save(creds *sessions.Credentials) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	data, err := json.Marshal(creds)
	if err != nil {
		return fmt.Errorf("[FileRepo Save] %w", err)
	}
	if r.passphrase != nil {
		sealed, err := r.seal(data)
		if err != nil {
			return err
		}
		data = append(append([]byte{}, sealedMagic...), sealed...)
	}

	if err := os.MkdirAll(filepath.Dir(r.path), 0o700); err != nil {
		return fmt.Errorf("[FileRepo Save] %w", err)
	}
	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("[FileRepo Save] %w", err)
	}
	if err := os.Rename(tmp, r.path); err != nil {
		return fmt.Errorf("[FileRepo Save] %w", err)
	}
	return nil
}

func (r *FileRepo) Delete() error {
	r.lock.Lock()
	defer r.lock.Unlock()

	err := os.Remove(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return tmerrors.ErrNoCredentials
	}
	return err
}

// seal returns salt || nonce || box
func (r *FileRepo) seal(plain []byte) ([]byte, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate random bytes: %w", err)
	}
	var nonce [nonceLen]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return nil, fmt.Errorf("failed to generate random bytes: %w", err)
	}
	key, err := r.deriveKey(salt)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, saltLen+nonceLen+len(plain)+secretbox.Overhead)
	out = append(out, salt...)
	out = append(out, nonce[:]...)
	return secretbox.Seal(out, plain, &nonce, key), nil
}

func (r *FileRepo) open(sealed []byte) ([]byte, error) {
	if len(sealed) < saltLen+nonceLen+secretbox.Overhead {
		return nil, fmt.Errorf("[FileRepo Load] credentials file truncated")
	}
	salt := sealed[:saltLen]
	var nonce [nonceLen]byte
	copy(nonce[:], sealed[saltLen:saltLen+nonceLen])

	key, err := r.deriveKey(salt)
	if err != nil {
		return nil, err
	}
	plain, ok := secretbox.Open(nil, sealed[saltLen+nonceLen:], &nonce, key)
	if !ok {
		return nil, ErrWrongPassphrase
	}
	return plain, nil
}

func (r *FileRepo) deriveKey(salt []byte) (*[keyLen]byte, error) {
	k, err := scrypt.Key(r.passphrase, salt, scryptN, scryptR, scryptP, keyLen)
	if err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}
	var key [keyLen]byte
	copy(key[:], k)
	return &key, nil
}
