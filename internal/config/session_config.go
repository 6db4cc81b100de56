package config

import (
	"os"
	"path/filepath"
)

const (
	tokenFileVar       = "TRIPMATE_TOKEN_FILE"
	tokenPassphraseVar = "TRIPMATE_TOKEN_PASSPHRASE"
)

type Session struct {
	src *sources
}

var _ SessionConfig = Session{}

// GetTokenFile returns where the bearer credential pair is persisted.
// An empty result means credentials are kept in memory only.
func (s Session) GetTokenFile() string {
	if f := s.src.get(tokenFileVar, ""); f != "" {
		return f
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".tripmate", "credentials")
}

func (s Session) GetTokenPassphrase() string {
	return s.src.get(tokenPassphraseVar, "")
}
