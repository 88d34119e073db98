// Package keystore provides encrypted local storage for the API credential.
package keystore

import (
	"os"
	"path/filepath"
	"runtime"
)

// Keystore defines the interface for secure key storage.
type Keystore interface {
	// Set stores a key-value pair.
	Set(name, value string) error
	// Get retrieves a value by name. Returns *ErrKeyNotFound if absent.
	Get(name string) (string, error)
	// Delete removes a key by name.
	Delete(name string) error
	// List returns all stored key names.
	List() ([]string, error)
}

// ErrKeyNotFound is returned when a requested key does not exist.
type ErrKeyNotFound struct {
	Name string
}

func (e *ErrKeyNotFound) Error() string {
	return "key not found: " + e.Name
}

// HomeDir returns the coverkit state directory.
// - macOS/Linux: ~/.coverkit
// - Windows: %USERPROFILE%\.coverkit
func HomeDir() string {
	var home string
	if runtime.GOOS == "windows" {
		home = os.Getenv("USERPROFILE")
	} else {
		home = os.Getenv("HOME")
	}
	if home == "" {
		return ".coverkit"
	}
	return filepath.Join(home, ".coverkit")
}

// DefaultKeystorePath returns the default keystore file path.
func DefaultKeystorePath() string {
	return filepath.Join(HomeDir(), "keys.enc")
}

// NewKeystore opens the default file keystore.
func NewKeystore() (Keystore, error) {
	return NewFileKeystore(DefaultKeystorePath(), DefaultMasterKeySource())
}
