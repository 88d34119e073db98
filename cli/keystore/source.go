package keystore

import (
	"crypto/sha256"
	"errors"
	"os"
)

// MasterKeyEnv names the variable that overrides the machine-derived
// master key.
const MasterKeyEnv = "COVERKIT_MASTER_KEY"

// MasterKeySource supplies the secret the file encryption key is derived from.
type MasterKeySource interface {
	MasterKey() ([]byte, error)
}

// StaticMasterKey is a fixed master key.
type StaticMasterKey []byte

// MasterKey returns k.
func (k StaticMasterKey) MasterKey() ([]byte, error) {
	if len(k) == 0 {
		return nil, errors.New("empty master key")
	}
	return k, nil
}

// EnvMasterKey reads the master key from an environment variable and
// falls back to Fallback when it is unset.
type EnvMasterKey struct {
	Var      string
	Fallback MasterKeySource
}

// MasterKey returns the variable's value or the fallback's key.
func (e EnvMasterKey) MasterKey() ([]byte, error) {
	if v := os.Getenv(e.Var); v != "" {
		return []byte(v), nil
	}
	if e.Fallback == nil {
		return nil, errors.New(e.Var + " is not set")
	}
	return e.Fallback.MasterKey()
}

// MachineMasterKey derives a key from the hostname and user name. It only
// keeps the file unreadable on other machines; anyone with shell access as
// the same user can recompute it.
type MachineMasterKey struct{}

// MasterKey returns the machine-derived key.
func (MachineMasterKey) MasterKey() ([]byte, error) {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	username := os.Getenv("USER")
	if username == "" {
		username = os.Getenv("USERNAME")
	}
	sum := sha256.Sum256([]byte(hostname + ":" + username + ":coverkit-keystore"))
	return sum[:], nil
}

// DefaultMasterKeySource prefers COVERKIT_MASTER_KEY and falls back to the
// machine-derived key.
func DefaultMasterKeySource() MasterKeySource {
	return EnvMasterKey{Var: MasterKeyEnv, Fallback: MachineMasterKey{}}
}
