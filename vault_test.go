package curvecp

import "testing"

func TestLocalVaultBoxRoundTrip(t *testing.T) {
	var aSecret, bSecret [32]byte
	aSecret[0] = 1
	bSecret[0] = 2
	a := NewLocalVault(aSecret)
	b := NewLocalVault(bSecret)

	nonce := cookieNonce(make([]byte, 16))
	aPub := a.PublicKey()
	bPub := b.PublicKey()

	sealed := a.Box([]byte("hello"), nonce, &bPub)
	plain, err := b.BoxOpen(sealed, nonce, &aPub)
	if err != nil {
		t.Fatalf("BoxOpen: %v", err)
	}
	if string(plain) != "hello" {
		t.Errorf("plain = %q, want %q", plain, "hello")
	}
}

func TestLocalVaultBoxOpenRejectsTampering(t *testing.T) {
	var aSecret, bSecret [32]byte
	aSecret[0] = 1
	bSecret[0] = 2
	a := NewLocalVault(aSecret)
	b := NewLocalVault(bSecret)

	nonce := cookieNonce(make([]byte, 16))
	bPub := b.PublicKey()
	sealed := a.Box([]byte("hello"), nonce, &bPub)
	sealed[0] ^= 0xFF

	aPub := a.PublicKey()
	if _, err := b.BoxOpen(sealed, nonce, &aPub); err != ErrVerifyFailed {
		t.Fatalf("err = %v, want ErrVerifyFailed", err)
	}
}

func TestSafeNonceNeverRepeatsAcrossCalls(t *testing.T) {
	var secret [32]byte
	v := NewLocalVault(secret)
	seen := make(map[[16]byte]bool)
	for i := 0; i < 1000; i++ {
		n := v.SafeNonce()
		if seen[n] {
			t.Fatalf("SafeNonce repeated at iteration %d", i)
		}
		seen[n] = true
	}
}
