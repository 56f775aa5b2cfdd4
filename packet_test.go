package curvecp

import (
	"bytes"
	"testing"
)

func TestEncodeDecodeHello(t *testing.T) {
	var ec [32]byte
	ec[0] = 1
	box := bytes.Repeat([]byte{0xAB}, 80)
	raw := encodeHello(ec, 0, box)

	pkt, err := decodePacket(raw)
	if err != nil {
		t.Fatalf("decodePacket: %v", err)
	}
	if pkt.typ != frameHello {
		t.Fatalf("typ = %v, want frameHello", pkt.typ)
	}
	if pkt.ec != ec {
		t.Errorf("ec mismatch")
	}
	if pkt.n != 0 {
		t.Errorf("n = %d, want 0", pkt.n)
	}
	if !bytes.Equal(pkt.box, box) {
		t.Errorf("box mismatch")
	}
}

func TestEncodeDecodeCookie(t *testing.T) {
	var tail [16]byte
	tail[0] = 9
	box := bytes.Repeat([]byte{0xCD}, 144)
	raw := encodeCookie(tail, box)

	pkt, err := decodePacket(raw)
	if err != nil {
		t.Fatalf("decodePacket: %v", err)
	}
	if pkt.typ != frameCookie {
		t.Fatalf("typ = %v, want frameCookie", pkt.typ)
	}
	if pkt.cookieNonceTail != tail {
		t.Errorf("cookieNonceTail mismatch")
	}
	if !bytes.Equal(pkt.box, box) {
		t.Errorf("box mismatch")
	}
}

func TestEncodeDecodeVouch(t *testing.T) {
	var kookie [96]byte
	kookie[0] = 3
	box := bytes.Repeat([]byte{0xEF}, 112)
	raw := encodeVouch(kookie, 1, box)

	pkt, err := decodePacket(raw)
	if err != nil {
		t.Fatalf("decodePacket: %v", err)
	}
	if pkt.typ != frameVouch {
		t.Fatalf("typ = %v, want frameVouch", pkt.typ)
	}
	if pkt.kookie != kookie {
		t.Errorf("kookie mismatch")
	}
	if pkt.n != 1 {
		t.Errorf("n = %d, want 1", pkt.n)
	}
	if !bytes.Equal(pkt.box, box) {
		t.Errorf("box mismatch")
	}
}

func TestEncodeDecodeReadyAndMessage(t *testing.T) {
	box := bytes.Repeat([]byte{0x11}, 17)

	raw := encodeReady(2, box)
	pkt, err := decodePacket(raw)
	if err != nil {
		t.Fatalf("decodePacket(ready): %v", err)
	}
	if pkt.typ != frameReady || pkt.n != 2 || !bytes.Equal(pkt.box, box) {
		t.Errorf("ready decode mismatch: %+v", pkt)
	}

	raw = encodeMessage(5, box)
	pkt, err = decodePacket(raw)
	if err != nil {
		t.Fatalf("decodePacket(message): %v", err)
	}
	if pkt.typ != frameMessage || pkt.n != 5 || !bytes.Equal(pkt.box, box) {
		t.Errorf("message decode mismatch: %+v", pkt)
	}
}

func TestEncodeDecodeMessageWithEmptyPayloadBox(t *testing.T) {
	// A sealed empty plaintext is exactly nacl box/secretbox overhead (16
	// bytes) — the minimum legal Message/Ready box, used when a side's
	// metadata or application payload is empty.
	box := bytes.Repeat([]byte{0x22}, 16)
	raw := encodeMessage(7, box)
	pkt, err := decodePacket(raw)
	if err != nil {
		t.Fatalf("decodePacket: %v", err)
	}
	if pkt.typ != frameMessage || pkt.n != 7 || !bytes.Equal(pkt.box, box) {
		t.Errorf("decode mismatch: %+v", pkt)
	}
}

func TestDecodeUnknownMagic(t *testing.T) {
	raw := append([]byte{0, 1, 2, 3, 4, 5, 6, 7}, bytes.Repeat([]byte{0}, 20)...)
	pkt, err := decodePacket(raw)
	if err != nil {
		t.Fatalf("decodePacket: %v", err)
	}
	if pkt.typ != frameUnknown {
		t.Errorf("typ = %v, want frameUnknown", pkt.typ)
	}
}

func TestDecodeShortFrame(t *testing.T) {
	if _, err := decodePacket([]byte{1, 2, 3}); err != ErrShortFrame {
		t.Fatalf("err = %v, want ErrShortFrame", err)
	}
	if _, err := decodePacket(magicHello); err != ErrShortFrame {
		t.Fatalf("truncated hello: err = %v, want ErrShortFrame", err)
	}
}
