package identity

import (
	"strings"
	"testing"
)

func TestAddressRoundTrip(t *testing.T) {
	kp, err := NewKeypairFromSeed(make([]byte, 32))
	if err != nil {
		t.Fatalf("NewKeypairFromSeed: %v", err)
	}
	addr := kp.Address()
	if addr.IsZero() {
		t.Fatalf("derived address is zero")
	}

	s := addr.String()
	if !strings.HasPrefix(s, "0x") || len(s) != 2+2*AddressSize {
		t.Fatalf("unexpected address form %q", s)
	}

	parsed, err := ParseAddress(s)
	if err != nil {
		t.Fatalf("ParseAddress(%q): %v", s, err)
	}
	if parsed != addr {
		t.Fatalf("round trip mismatch: %s != %s", parsed, addr)
	}
}

func TestParseAddressRejectsMalformed(t *testing.T) {
	cases := []string{
		"",
		"abcdef",
		"0x1234",
		"0x" + strings.Repeat("zz", AddressSize),
		"0x" + strings.Repeat("00", AddressSize+1),
	}
	for _, c := range cases {
		if _, err := ParseAddress(c); err == nil {
			t.Errorf("ParseAddress(%q) succeeded, want error", c)
		}
	}
}

func TestAddressTextMarshaling(t *testing.T) {
	kp, _ := NewKeypairFromSeed(make([]byte, 32))
	addr := kp.Address()

	text, err := addr.MarshalText()
	if err != nil {
		t.Fatalf("MarshalText: %v", err)
	}
	var back Address
	if err := back.UnmarshalText(text); err != nil {
		t.Fatalf("UnmarshalText: %v", err)
	}
	if back != addr {
		t.Fatalf("marshal round trip mismatch")
	}
}
