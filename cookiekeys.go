package curvecp

import (
	"crypto/rand"
	"io"
	"log"
	"sync"
	"time"

	"golang.org/x/crypto/nacl/secretbox"
)

// CookieKeySource supplies the symmetric minute keys a server uses to
// seal and later open cookies. RecentKeys' head is always equal to
// CurrentKey; its tail holds keys rotated out recently enough that
// in-flight cookies sealed under them must still validate.
type CookieKeySource interface {
	CurrentKey() [32]byte
	RecentKeys() [][32]byte
}

// RotatingCookieKeys is the default CookieKeySource: one current key and
// one previous key, rotated on a fixed interval. Grounded on
// jchv-curvecp/server.go's minuteKey/prevMinuteKey pair and its
// 30-second rotation ticker.
type RotatingCookieKeys struct {
	mu       sync.RWMutex
	current  [32]byte
	previous [32]byte

	ticker *time.Ticker
	stop   chan struct{}
	logger *log.Logger
}

// NewRotatingCookieKeys starts a key source that rotates its minute key
// every interval, moving the outgoing current key to the previous slot
// and discarding the key that was there. logger
// may be nil, in which case rotation is silent.
func NewRotatingCookieKeys(interval time.Duration, logger *log.Logger) *RotatingCookieKeys {
	if logger == nil {
		logger = discardLogger
	}
	k := &RotatingCookieKeys{stop: make(chan struct{}), logger: logger}
	randKey(&k.current)
	randKey(&k.previous)
	k.ticker = time.NewTicker(interval)
	go k.rotateLoop()
	return k
}

func (k *RotatingCookieKeys) rotateLoop() {
	for {
		select {
		case <-k.ticker.C:
			k.mu.Lock()
			k.previous = k.current
			randKey(&k.current)
			k.mu.Unlock()
			k.logger.Printf("cookie key rotated")
		case <-k.stop:
			k.ticker.Stop()
			return
		}
	}
}

// Close stops key rotation.
func (k *RotatingCookieKeys) Close() {
	close(k.stop)
}

func (k *RotatingCookieKeys) CurrentKey() [32]byte {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.current
}

func (k *RotatingCookieKeys) RecentKeys() [][32]byte {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return [][32]byte{k.current, k.previous}
}

func randKey(k *[32]byte) {
	if _, err := io.ReadFull(rand.Reader, k[:]); err != nil {
		panic("curvecp: out of randomness")
	}
}

// sealCookie builds the 96-byte cookie body K = safeNonceTail(16) ||
// secretbox(ec || esSecret) under minuteKey, per spec §4.5 step 3.
func sealCookie(ec [32]byte, esSecret [32]byte, safeNonceTail [16]byte, minuteKey [32]byte) [96]byte {
	var k [96]byte
	copy(k[:16], safeNonceTail[:])
	inner := append(append([]byte{}, ec[:]...), esSecret[:]...)
	sealed := secretbox.Seal(nil, inner, minuteKeyNonce(safeNonceTail[:]), &minuteKey)
	copy(k[16:], sealed)
	return k
}

// openCookie tries each of keys in order (current first) to open K,
// returning ErrCookie if none succeed.
func openCookie(k [96]byte, keys [][32]byte) (ec [32]byte, esSecret [32]byte, err error) {
	tail := k[:16]
	inner := k[16:]
	for _, key := range keys {
		key := key
		plain, ok := secretbox.Open(nil, inner, minuteKeyNonce(tail), &key)
		if ok {
			copy(ec[:], plain[:32])
			copy(esSecret[:], plain[32:64])
			return ec, esSecret, nil
		}
	}
	return ec, esSecret, ErrCookie
}
