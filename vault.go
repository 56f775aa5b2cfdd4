package curvecp

import (
	"crypto/rand"
	"io"
	"sync/atomic"

	"golang.org/x/crypto/curve25519"
	"golang.org/x/crypto/nacl/box"
)

// Vault is the holder of a server's long-term private key. It is the sole
// component that ever touches that secret; the handshake FSM calls
// through this interface instead of holding the key itself, so that
// different test doubles can be swapped in per connection and so that
// SafeNonce's uniqueness is independently testable (spec §9).
//
// Implementations MUST be safe for concurrent use: many connection
// actors may share one Vault.
type Vault interface {
	// Box seals plaintext to peerPublicKey under the vault's long-term
	// secret key using nonce.
	Box(plaintext []byte, nonce *[24]byte, peerPublicKey *[32]byte) []byte

	// BoxOpen opens ciphertext sealed by peerPublicKey's long-term secret
	// key to the vault's long-term public key, using nonce. It returns
	// ErrVerifyFailed if authentication fails.
	BoxOpen(ciphertext []byte, nonce *[24]byte, peerPublicKey *[32]byte) ([]byte, error)

	// PublicKey returns the vault's long-term public key.
	PublicKey() [32]byte

	// SafeNonce returns 16 bytes guaranteed never to repeat across the
	// vault's lifetime.
	SafeNonce() [16]byte
}

// LocalVault is the default Vault, backed by an in-process long-term
// secret key. SafeNonce fills a buffer from crypto/rand and overwrites its
// low 8 bytes with a monotonic atomic counter: repetition would
// require both a CSPRNG collision on the high 8 bytes and this vault's
// counter wrapping back to the same value in the same lifetime, which for
// a uint64 counter does not happen in practice. This is the generator
// spec §9 requires implementers to document.
type LocalVault struct {
	secretKey [32]byte
	publicKey [32]byte
	nonceCtr  uint64
	rand      io.Reader
}

// NewLocalVault derives the matching public key from secretKey via
// Curve25519 scalar multiplication and returns a ready-to-use Vault.
func NewLocalVault(secretKey [32]byte) *LocalVault {
	v := &LocalVault{secretKey: secretKey, rand: rand.Reader}
	curve25519.ScalarBaseMult(&v.publicKey, &v.secretKey)
	return v
}

func (v *LocalVault) Box(plaintext []byte, nonce *[24]byte, peerPublicKey *[32]byte) []byte {
	return box.Seal(nil, plaintext, nonce, peerPublicKey, &v.secretKey)
}

func (v *LocalVault) BoxOpen(ciphertext []byte, nonce *[24]byte, peerPublicKey *[32]byte) ([]byte, error) {
	out, ok := box.Open(nil, ciphertext, nonce, peerPublicKey, &v.secretKey)
	if !ok {
		return nil, ErrVerifyFailed
	}
	return out, nil
}

func (v *LocalVault) PublicKey() [32]byte {
	return v.publicKey
}

func (v *LocalVault) SafeNonce() [16]byte {
	var n [16]byte
	if _, err := io.ReadFull(v.rand, n[:]); err != nil {
		panic("curvecp: out of randomness")
	}
	ctr := atomic.AddUint64(&v.nonceCtr, 1)
	for i := 0; i < 8; i++ {
		n[8+i] = byte(ctr >> (56 - 8*i))
	}
	return n
}
