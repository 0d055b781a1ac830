package identity

import (
	"errors"
	"fmt"
	"sync"
)

// Verification errors. Callers should branch with errors.Is rather than
// matching messages.
var (
	ErrUnknownSigner = errors.New("identity: no public key registered for address")
	ErrBadSignature  = errors.New("identity: signature does not verify")
)

// Verifier checks that sig was produced over payload by the key bound to addr.
//
// The ledger only ever sees this interface; swapping the signature scheme
// (or faking it in tests) never touches ledger code.
type Verifier interface {
	Verify(addr Address, payload, sig []byte) error
}

// Directory maps addresses to registered public keys and implements Verifier.
// It is safe for concurrent use.
type Directory struct {
	mu      sync.RWMutex
	entries map[Address]dirEntry
}

type dirEntry struct {
	scheme Scheme
	pub    []byte
}

// NewDirectory returns an empty directory.
func NewDirectory() *Directory {
	return &Directory{entries: make(map[Address]dirEntry)}
}

// Register binds a public key and returns the derived address.
// Re-registering the same key is a no-op; a different key hashing to an
// already-registered address is rejected.
func (d *Directory) Register(scheme Scheme, pub []byte) (Address, error) {
	switch scheme {
	case SchemeEd25519, SchemeDilithium3:
	default:
		return Zero, fmt.Errorf("identity: unsupported scheme %q", scheme)
	}
	if len(pub) == 0 {
		return Zero, errors.New("identity: empty public key")
	}
	addr := AddressFromPublicKey(pub)

	d.mu.Lock()
	defer d.mu.Unlock()
	if prev, ok := d.entries[addr]; ok {
		if prev.scheme != scheme || string(prev.pub) != string(pub) {
			return Zero, fmt.Errorf("identity: address %s already bound to a different key", addr)
		}
		return addr, nil
	}
	keyCopy := make([]byte, len(pub))
	copy(keyCopy, pub)
	d.entries[addr] = dirEntry{scheme: scheme, pub: keyCopy}
	return addr, nil
}

// RegisterKeypair binds kp's public key and returns its address.
func (d *Directory) RegisterKeypair(kp *Keypair) (Address, error) {
	return d.Register(kp.Scheme, kp.Public)
}

// Verify implements Verifier.
func (d *Directory) Verify(addr Address, payload, sig []byte) error {
	d.mu.RLock()
	e, ok := d.entries[addr]
	d.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSigner, addr)
	}
	ok, err := verifyWithScheme(e.scheme, e.pub, payload, sig)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrBadSignature, addr)
	}
	return nil
}
