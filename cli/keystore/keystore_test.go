package keystore

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

var testSource = StaticMasterKey("test-master-key")

func newTestKeystore(t *testing.T) (*FileKeystore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "keys.enc")
	ks, err := NewFileKeystore(path, testSource)
	if err != nil {
		t.Fatalf("NewFileKeystore() error = %v", err)
	}
	return ks, path
}

func TestFileKeystoreSetAndGet(t *testing.T) {
	ks, _ := newTestKeystore(t)

	if err := ks.Set("GEMINI_API_KEY", "AIzaSyTest12345"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	value, err := ks.Get("GEMINI_API_KEY")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if value != "AIzaSyTest12345" {
		t.Errorf("Get() = %q, want AIzaSyTest12345", value)
	}
}

func TestFileKeystoreNotFound(t *testing.T) {
	ks, _ := newTestKeystore(t)

	_, err := ks.Get("nonexistent")
	var nf *ErrKeyNotFound
	if !errors.As(err, &nf) {
		t.Errorf("Get() error type = %T, want *ErrKeyNotFound", err)
	}

	if err := ks.Delete("nonexistent"); !errors.As(err, &nf) {
		t.Errorf("Delete() error type = %T, want *ErrKeyNotFound", err)
	}
}

func TestFileKeystoreDeleteAndList(t *testing.T) {
	ks, _ := newTestKeystore(t)

	for _, name := range []string{"b", "a", "c"} {
		if err := ks.Set(name, "v-"+name); err != nil {
			t.Fatalf("Set(%q) error = %v", name, err)
		}
	}
	if err := ks.Delete("b"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	names, err := ks.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(names) != 2 || names[0] != "a" || names[1] != "c" {
		t.Errorf("List() = %v, want [a c]", names)
	}
}

func TestFileKeystorePersistence(t *testing.T) {
	ks, path := newTestKeystore(t)
	if err := ks.Set("GEMINI_API_KEY", "AIza-persistent"); err != nil {
		t.Fatal(err)
	}

	reopened, err := NewFileKeystore(path, testSource)
	if err != nil {
		t.Fatal(err)
	}
	value, err := reopened.Get("GEMINI_API_KEY")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if value != "AIza-persistent" {
		t.Errorf("Get() = %q, want AIza-persistent", value)
	}
}

func TestFileKeystoreWrongMasterKey(t *testing.T) {
	ks, path := newTestKeystore(t)
	if err := ks.Set("k", "v"); err != nil {
		t.Fatal(err)
	}

	other, err := NewFileKeystore(path, StaticMasterKey("different"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := other.Get("k"); err == nil {
		t.Error("Get() with wrong master key should fail")
	}
}

func TestFileKeystoreBadFormat(t *testing.T) {
	ks, path := newTestKeystore(t)
	if err := os.WriteFile(path, []byte(`{"k":"plaintext"}`), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := ks.Get("k"); !errors.Is(err, ErrBadFormat) {
		t.Errorf("Get() error = %v, want ErrBadFormat", err)
	}
}

func TestFileKeystoreEncryptedOnDisk(t *testing.T) {
	ks, path := newTestKeystore(t)
	secret := "AIzaSy-this-should-be-encrypted"
	if err := ks.Set("GEMINI_API_KEY", secret); err != nil {
		t.Fatal(err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if bytes.Contains(contents, []byte(secret)) {
		t.Error("file contains the plaintext key")
	}
	if !bytes.HasPrefix(contents, []byte(magicHeader)) {
		t.Errorf("file should start with %q", magicHeader)
	}
}

func TestFileKeystoreFilePermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("file permissions not supported on Windows")
	}

	path := filepath.Join(t.TempDir(), "nested", "dir", "keys.enc")
	ks, err := NewFileKeystore(path, testSource)
	if err != nil {
		t.Fatal(err)
	}
	if err := ks.Set("test", "value"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if mode := info.Mode().Perm(); mode != 0o600 {
		t.Errorf("File permissions = %o, want 0600", mode)
	}
}

func TestEnvMasterKey(t *testing.T) {
	t.Setenv("COVERKIT_TEST_MASTER", "from-env")
	src := EnvMasterKey{Var: "COVERKIT_TEST_MASTER", Fallback: StaticMasterKey("fallback")}
	key, err := src.MasterKey()
	if err != nil || string(key) != "from-env" {
		t.Errorf("MasterKey() = %q, %v, want from-env", key, err)
	}

	t.Setenv("COVERKIT_TEST_MASTER", "")
	key, err = src.MasterKey()
	if err != nil || string(key) != "fallback" {
		t.Errorf("MasterKey() = %q, %v, want fallback", key, err)
	}

	if _, err := (EnvMasterKey{Var: "COVERKIT_TEST_MASTER"}).MasterKey(); err == nil {
		t.Error("MasterKey() without fallback should fail when unset")
	}
}

func TestMemoryKeystore(t *testing.T) {
	ks := NewMemoryKeystore()
	if err := ks.Set("k", "v"); err != nil {
		t.Fatal(err)
	}
	if v, err := ks.Get("k"); err != nil || v != "v" {
		t.Errorf("Get() = %q, %v, want v", v, err)
	}
	if err := ks.Delete("k"); err != nil {
		t.Fatal(err)
	}
	var nf *ErrKeyNotFound
	if _, err := ks.Get("k"); !errors.As(err, &nf) {
		t.Errorf("Get() after Delete error = %v, want *ErrKeyNotFound", err)
	}
}

func TestDefaultKeystorePath(t *testing.T) {
	t.Setenv("HOME", "/home/tester")
	t.Setenv("USERPROFILE", `C:\Users\tester`)

	path := DefaultKeystorePath()
	if filepath.Base(path) != "keys.enc" {
		t.Errorf("DefaultKeystorePath() = %q, should end with keys.enc", path)
	}
	if filepath.Base(filepath.Dir(path)) != ".coverkit" {
		t.Errorf("DefaultKeystorePath() = %q, should be in .coverkit", path)
	}
}

func TestErrKeyNotFoundError(t *testing.T) {
	err := &ErrKeyNotFound{Name: "GEMINI_API_KEY"}
	if err.Error() != "key not found: GEMINI_API_KEY" {
		t.Errorf("Error() = %q", err.Error())
	}
}
