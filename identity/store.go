package identity

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// KeyStore is a simple local-first key store for tooling.
//
// Features:
// - Supports Ed25519 keys only
// - Stores seeds on the local filesystem, hex-encoded, one file per party
// - No external dependencies
//
// This is a tooling convenience, not part of the ledger core.
type KeyStore struct {
	Directory string
}

// ErrKeyNotFound is returned when a named key does not exist in the store.
var ErrKeyNotFound = errors.New("identity: key not found")

// OpenKeyStore opens (creating if needed) a key store rooted at directory.
func OpenKeyStore(directory string) (*KeyStore, error) {
	if directory == "" {
		return nil, errors.New("identity: key store directory is required")
	}
	if err := os.MkdirAll(directory, 0o700); err != nil {
		return nil, err
	}
	return &KeyStore{Directory: directory}, nil
}

func (ks *KeyStore) pathFor(name string) string {
	return filepath.Join(ks.Directory, name+".key")
}

// Generate creates and persists a fresh ed25519 keypair under name.
// It fails if a key with that name already exists.
func (ks *KeyStore) Generate(name string) (*Keypair, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}
	if _, err := os.Stat(ks.pathFor(name)); err == nil {
		return nil, fmt.Errorf("identity: key %q already exists", name)
	}
	seed := make([]byte, ed25519.SeedSize)
	if _, err := rand.Read(seed); err != nil {
		return nil, err
	}
	kp, err := NewKeypairFromSeed(seed)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(ks.pathFor(name), []byte(hex.EncodeToString(seed)+"\n"), 0o600); err != nil {
		return nil, err
	}
	return kp, nil
}

// Load reads the keypair stored under name.
func (ks *KeyStore) Load(name string) (*Keypair, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}
	b, err := os.ReadFile(ks.pathFor(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %q", ErrKeyNotFound, name)
		}
		return nil, err
	}
	seed, err := hex.DecodeString(strings.TrimSpace(string(b)))
	if err != nil {
		return nil, fmt.Errorf("identity: key %q is corrupt: %w", name, err)
	}
	return NewKeypairFromSeed(seed)
}

// LoadOrGenerate loads name, generating it on first use.
func (ks *KeyStore) LoadOrGenerate(name string) (*Keypair, error) {
	kp, err := ks.Load(name)
	if errors.Is(err, ErrKeyNotFound) {
		return ks.Generate(name)
	}
	return kp, err
}

// List returns the stored key names, sorted.
func (ks *KeyStore) List() ([]string, error) {
	entries, err := os.ReadDir(ks.Directory)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".key") {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ".key"))
	}
	sort.Strings(names)
	return names, nil
}

func checkName(name string) error {
	if name == "" {
		return errors.New("identity: key name is required")
	}
	if strings.ContainsAny(name, "/\\") || name == "." || name == ".." {
		return fmt.Errorf("identity: invalid key name %q", name)
	}
	return nil
}
