package identity

import (
	"crypto/ed25519"
	"fmt"
	"io"

	"github.com/cloudflare/circl/sign/dilithium/mode3"
	"golang.org/x/crypto/sha3"
)

// Scheme names a supported signature scheme.
type Scheme string

const (
	// SchemeEd25519 is the default scheme.
	SchemeEd25519 Scheme = "ed25519"
	// SchemeDilithium3 is the post-quantum option.
	SchemeDilithium3 Scheme = "dilithium3"
)

// Digest returns the SHA3-256 digest a signature covers.
//
// Signatures are always made over Digest(payload), never over the raw
// payload, so payload length does not leak into scheme internals.
func Digest(payload []byte) []byte {
	sum := sha3.Sum256(payload)
	return sum[:]
}

// Keypair holds a party's signing key material.
type Keypair struct {
	Scheme Scheme
	Public []byte

	edPriv ed25519.PrivateKey
	dlPriv *mode3.PrivateKey
}

// GenerateKeypair creates a fresh keypair for the given scheme.
func GenerateKeypair(scheme Scheme, rand io.Reader) (*Keypair, error) {
	switch scheme {
	case SchemeEd25519:
		pub, priv, err := ed25519.GenerateKey(rand)
		if err != nil {
			return nil, err
		}
		return &Keypair{Scheme: scheme, Public: pub, edPriv: priv}, nil
	case SchemeDilithium3:
		pub, priv, err := mode3.GenerateKey(rand)
		if err != nil {
			return nil, err
		}
		pk := make([]byte, mode3.PublicKeySize)
		pub.Pack((*[mode3.PublicKeySize]byte)(pk))
		return &Keypair{Scheme: scheme, Public: pk, dlPriv: priv}, nil
	default:
		return nil, fmt.Errorf("identity: unsupported scheme %q", scheme)
	}
}

// NewKeypairFromSeed builds a deterministic ed25519 keypair from a 32-byte seed.
func NewKeypairFromSeed(seed []byte) (*Keypair, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("identity: seed must be %d bytes, got %d", ed25519.SeedSize, len(seed))
	}
	priv := ed25519.NewKeyFromSeed(seed)
	pub := priv.Public().(ed25519.PublicKey)
	return &Keypair{Scheme: SchemeEd25519, Public: pub, edPriv: priv}, nil
}

// Address returns the address derived from the public key.
func (k *Keypair) Address() Address {
	return AddressFromPublicKey(k.Public)
}

// Sign signs SHA3-256(payload).
func (k *Keypair) Sign(payload []byte) ([]byte, error) {
	digest := Digest(payload)
	switch k.Scheme {
	case SchemeEd25519:
		return ed25519.Sign(k.edPriv, digest), nil
	case SchemeDilithium3:
		if k.dlPriv == nil {
			return nil, fmt.Errorf("identity: missing private key")
		}
		sig := make([]byte, mode3.SignatureSize)
		mode3.SignTo(k.dlPriv, digest, sig)
		return sig, nil
	default:
		return nil, fmt.Errorf("identity: unsupported scheme %q", k.Scheme)
	}
}

// Seed returns the ed25519 seed for persistence. Dilithium3 keys are not
// exportable through the keystore.
func (k *Keypair) Seed() ([]byte, error) {
	if k.Scheme != SchemeEd25519 {
		return nil, fmt.Errorf("identity: seed export supports ed25519 only, have %q", k.Scheme)
	}
	return k.edPriv.Seed(), nil
}

func verifyWithScheme(scheme Scheme, pub, payload, sig []byte) (bool, error) {
	digest := Digest(payload)
	switch scheme {
	case SchemeEd25519:
		if len(pub) != ed25519.PublicKeySize {
			return false, fmt.Errorf("identity: ed25519 public key must be %d bytes", ed25519.PublicKeySize)
		}
		return ed25519.Verify(ed25519.PublicKey(pub), digest, sig), nil
	case SchemeDilithium3:
		if len(pub) != mode3.PublicKeySize {
			return false, fmt.Errorf("identity: dilithium3 public key must be %d bytes", mode3.PublicKeySize)
		}
		var pk mode3.PublicKey
		pk.Unpack((*[mode3.PublicKeySize]byte)(pub))
		return mode3.Verify(&pk, digest, sig), nil
	default:
		return false, fmt.Errorf("identity: unsupported scheme %q", scheme)
	}
}
