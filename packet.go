package curvecp

import (
	"bytes"
)

// frameType tags a decoded packet by its wire magic.
type frameType int

const (
	frameUnknown frameType = iota
	frameHello
	frameCookie
	frameVouch // also "Initiate"
	frameReady
	frameMessage
)

var (
	magicHello   = []byte{0x6C, 0x09, 0xAF, 0xB2, 0x8A, 0xA9, 0xFA, 0xFC}
	magicCookie  = []byte{0x1C, 0x45, 0xDC, 0xB9, 0x41, 0xC0, 0xE3, 0xF6}
	magicVouch   = []byte{0x6C, 0x09, 0xAF, 0xB2, 0x8A, 0xA9, 0xFA, 0xFD}
	magicReady   = []byte{0x6D, 0x09, 0xAF, 0xB2, 0x8A, 0xA9, 0xFA, 0xFD}
	magicMessage = []byte{0x6D, 0x1B, 0x39, 0xCB, 0xF6, 0x5A, 0x11, 0xB4}
)

const magicLen = 8

// packet is the decoded shape of one of the five wire frames. Only the
// fields relevant to the packet's frameType are populated.
type packet struct {
	typ frameType

	ec  [32]byte // Hello: client short-term public key
	n   uint64   // Hello/Vouch/Ready/Message: nonce counter
	box []byte   // Hello/Cookie/Vouch/Ready/Message: box ciphertext

	cookieNonceTail [16]byte // Cookie: server safe nonce tail

	kookie [96]byte // Vouch/Initiate: the cookie K
}

func encodeHello(ec [32]byte, n uint64, box []byte) []byte {
	out := make([]byte, 0, magicLen+32+8+len(box))
	out = append(out, magicHello...)
	out = append(out, ec[:]...)
	out = appendU64(out, n)
	out = append(out, box...)
	return out
}

func encodeCookie(nonceTail [16]byte, box []byte) []byte {
	out := make([]byte, 0, magicLen+16+len(box))
	out = append(out, magicCookie...)
	out = append(out, nonceTail[:]...)
	out = append(out, box...)
	return out
}

func encodeVouch(kookie [96]byte, n uint64, box []byte) []byte {
	out := make([]byte, 0, magicLen+96+8+len(box))
	out = append(out, magicVouch...)
	out = append(out, kookie[:]...)
	out = appendU64(out, n)
	out = append(out, box...)
	return out
}

func encodeReady(n uint64, box []byte) []byte {
	return encodeCounterBox(magicReady, n, box)
}

func encodeMessage(n uint64, box []byte) []byte {
	return encodeCounterBox(magicMessage, n, box)
}

func encodeCounterBox(magic []byte, n uint64, box []byte) []byte {
	out := make([]byte, 0, magicLen+8+len(box))
	out = append(out, magic...)
	out = appendU64(out, n)
	out = append(out, box...)
	return out
}

func appendU64(out []byte, v uint64) []byte {
	var b [8]byte
	for i := 7; i >= 0; i-- {
		b[i] = byte(v)
		v >>= 8
	}
	return append(out, b[:]...)
}

func readU64(b []byte) uint64 {
	var v uint64
	for i := 0; i < 8; i++ {
		v = v<<8 | uint64(b[i])
	}
	return v
}

// decodePacket parses the raw bytes of one frame (the length-prefix has
// already been stripped by the framing layer) into a typed packet.
// Unknown magics decode to frameUnknown rather than erroring; the caller
// (handshake/data-plane dispatch) treats frameUnknown as fatal in every
// state, per spec §4.2.
func decodePacket(b []byte) (*packet, error) {
	if len(b) < magicLen {
		return nil, ErrShortFrame
	}
	magic, body := b[:magicLen], b[magicLen:]

	switch {
	case bytes.Equal(magic, magicHello):
		if len(body) < 32+8+80 {
			return nil, ErrShortFrame
		}
		p := &packet{typ: frameHello}
		copy(p.ec[:], body[:32])
		p.n = readU64(body[32:40])
		p.box = body[40:]
		return p, nil

	case bytes.Equal(magic, magicCookie):
		if len(body) < 16+144 {
			return nil, ErrShortFrame
		}
		p := &packet{typ: frameCookie}
		copy(p.cookieNonceTail[:], body[:16])
		p.box = body[16:]
		return p, nil

	case bytes.Equal(magic, magicVouch):
		if len(body) < 96+8+112 {
			return nil, ErrShortFrame
		}
		p := &packet{typ: frameVouch}
		copy(p.kookie[:], body[:96])
		p.n = readU64(body[96:104])
		p.box = body[104:]
		return p, nil

	case bytes.Equal(magic, magicReady):
		if len(body) < 8+16 {
			return nil, ErrShortFrame
		}
		p := &packet{typ: frameReady}
		p.n = readU64(body[:8])
		p.box = body[8:]
		return p, nil

	case bytes.Equal(magic, magicMessage):
		if len(body) < 8+16 {
			return nil, ErrShortFrame
		}
		p := &packet{typ: frameMessage}
		p.n = readU64(body[:8])
		p.box = body[8:]
		return p, nil

	default:
		return &packet{typ: frameUnknown}, nil
	}
}
