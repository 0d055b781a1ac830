package identity

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/sha3"
)

// AddressSize is the length of an address in bytes.
const AddressSize = 20

// Address identifies a party (certifier, producer, transporter, recipient).
//
// An address is the last 20 bytes of SHA3-256 over the party's public key,
// rendered as 0x-prefixed lowercase hex. The zero address is never a valid
// party and is rejected by every operation that names one.
type Address [AddressSize]byte

// Zero is the zero address.
var Zero Address

// AddressFromPublicKey derives the address bound to a public key.
func AddressFromPublicKey(pub []byte) Address {
	sum := sha3.Sum256(pub)
	var a Address
	copy(a[:], sum[len(sum)-AddressSize:])
	return a
}

// ParseAddress parses a 0x-prefixed hex address.
func ParseAddress(s string) (Address, error) {
	var a Address
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		return a, fmt.Errorf("identity: address %q missing 0x prefix", s)
	}
	b, err := hex.DecodeString(s[2:])
	if err != nil {
		return a, fmt.Errorf("identity: address %q is not hex: %w", s, err)
	}
	if len(b) != AddressSize {
		return a, fmt.Errorf("identity: address %q has %d bytes, want %d", s, len(b), AddressSize)
	}
	copy(a[:], b)
	return a, nil
}

func (a Address) String() string {
	return "0x" + hex.EncodeToString(a[:])
}

// IsZero reports whether a is the zero address.
func (a Address) IsZero() bool {
	return bytes.Equal(a[:], Zero[:])
}

// MarshalText implements encoding.TextMarshaler (hex form, JSON-friendly).
func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Address) UnmarshalText(text []byte) error {
	parsed, err := ParseAddress(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
