package curvecp

import (
	"testing"
	"time"
)

func TestSealOpenCookieRoundTrip(t *testing.T) {
	var ec, esSecret, minuteKey [32]byte
	ec[0] = 1
	esSecret[0] = 2
	minuteKey[0] = 3
	var tail [16]byte
	tail[0] = 9

	k := sealCookie(ec, esSecret, tail, minuteKey)

	gotEC, gotES, err := openCookie(k, [][32]byte{minuteKey})
	if err != nil {
		t.Fatalf("openCookie: %v", err)
	}
	if gotEC != ec || gotES != esSecret {
		t.Errorf("openCookie returned wrong values: ec=%x es=%x", gotEC, gotES)
	}
}

func TestOpenCookieWithPreviousKeySucceeds(t *testing.T) {
	var ec, esSecret, oldKey, newKey [32]byte
	ec[0] = 1
	esSecret[0] = 2
	oldKey[0] = 0xAA
	newKey[0] = 0xBB
	var tail [16]byte

	k := sealCookie(ec, esSecret, tail, oldKey)

	// Rotation has since happened: current is newKey, but oldKey is still
	// in the recent list, so a cookie sealed under it must still open.
	if _, _, err := openCookie(k, [][32]byte{newKey, oldKey}); err != nil {
		t.Fatalf("openCookie with recent key: %v", err)
	}
}

func TestOpenCookieWithStaleKeyFails(t *testing.T) {
	var ec, esSecret, staleKey, currentKey [32]byte
	ec[0] = 1
	esSecret[0] = 2
	staleKey[0] = 0xAA
	currentKey[0] = 0xBB
	var tail [16]byte

	k := sealCookie(ec, esSecret, tail, staleKey)

	// staleKey has rotated out of the recent window entirely.
	if _, _, err := openCookie(k, [][32]byte{currentKey}); err != ErrCookie {
		t.Fatalf("err = %v, want ErrCookie", err)
	}
}

func TestRotatingCookieKeysRecentKeys(t *testing.T) {
	rk := NewRotatingCookieKeys(time.Hour, nil) // won't rotate within the test
	defer rk.Close()

	cur := rk.CurrentKey()
	recent := rk.RecentKeys()
	if len(recent) != 2 {
		t.Fatalf("len(recent) = %d, want 2", len(recent))
	}
	if recent[0] != cur {
		t.Errorf("recent[0] != CurrentKey")
	}
}
