package solana

import (
	"crypto/ed25519"
	"testing"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

func TestIsValidAddress_GeneratedKey(t *testing.T) {
	pub, _, err := ed25519.GenerateKey(nil)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}

	addr := base58.Encode(pub)
	if !IsValidAddress(addr) {
		t.Errorf("expected %s to be valid", addr)
	}
}

func TestIsValidAddress_SystemProgram(t *testing.T) {
	// 32 zero bytes decode to y=0, which is a valid curve point.
	if !IsValidAddress("11111111111111111111111111111111") {
		t.Error("expected system program address to be valid")
	}
}

func TestIsValidAddress_OffCurve(t *testing.T) {
	var offCurve []byte
	for i := 1; i < 256 && offCurve == nil; i++ {
		candidate := make([]byte, PublicKeyLength)
		candidate[0] = byte(i)
		candidate[1] = 0x5a
		if _, err := new(edwards25519.Point).SetBytes(candidate); err != nil {
			offCurve = candidate
		}
	}
	if offCurve == nil {
		t.Fatal("no off-curve candidate found")
	}

	if IsValidAddress(base58.Encode(offCurve)) {
		t.Error("expected off-curve point to be rejected")
	}
}

func TestIsValidAddress_Malformed(t *testing.T) {
	tests := []struct {
		name string
		addr string
	}{
		{"empty", ""},
		{"invalid alphabet", "0OIl0OIl0OIl0OIl0OIl0OIl0OIl0OIl"},
		{"too short", "ABC123"},
		{"too long", base58.Encode(make([]byte, 64))},
		{"plain text", "hello world"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if IsValidAddress(tt.addr) {
				t.Errorf("expected %q to be invalid", tt.addr)
			}
		})
	}
}
