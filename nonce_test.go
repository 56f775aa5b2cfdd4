package curvecp

import "testing"

func TestShortTermNonceLayout(t *testing.T) {
	n := shortTermNonce(prefixHelloClient, 0x0102030405060708)
	if len(n) != 24 {
		t.Fatalf("len = %d, want 24", len(n))
	}
	if string(n[:16]) != string(prefixHelloClient) {
		t.Errorf("prefix mismatch")
	}
	want := []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08}
	for i, b := range want {
		if n[16+i] != b {
			t.Errorf("counter byte %d = %x, want %x", i, n[16+i], b)
		}
	}
}

func TestLongTermNonceLayout(t *testing.T) {
	tail := make([]byte, 16)
	for i := range tail {
		tail[i] = byte(i)
	}
	n := longTermNonce(prefixCookie, tail)
	if string(n[:8]) != string(prefixCookie) {
		t.Errorf("prefix mismatch")
	}
	for i, b := range tail {
		if n[8+i] != b {
			t.Errorf("tail byte %d = %x, want %x", i, n[8+i], b)
		}
	}
}

func TestShortTermNonceWrongPrefixPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on short prefix")
		}
	}()
	shortTermNonce([]byte("tooshort"), 0)
}

func TestNonceVariantsDiffer(t *testing.T) {
	a := helloNonce(sideClient, 0)
	b := helloNonce(sideServer, 0)
	if *a == *b {
		t.Errorf("client/server hello nonces collide")
	}
	c := msgNonce(sideClient, 0)
	d := msgNonce(sideServer, 0)
	if *c == *d {
		t.Errorf("client/server message nonces collide")
	}
	if *a == *c {
		t.Errorf("hello and message nonces collide for same side/counter")
	}
}

func TestSideOpposite(t *testing.T) {
	if sideClient.opposite() != sideServer {
		t.Errorf("sideClient.opposite() != sideServer")
	}
	if sideServer.opposite() != sideClient {
		t.Errorf("sideServer.opposite() != sideClient")
	}
}
