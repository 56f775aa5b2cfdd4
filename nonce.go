package curvecp

import "encoding/binary"

// Nonce prefixes, byte-for-byte part of the wire contract (spec §4.1).
// Short-term prefixes are 16 bytes and are followed by an 8-byte
// big-endian counter; long-term prefixes are 8 bytes and are followed by
// a 16-byte random tail.
var (
	prefixHelloClient    = []byte("CurveCP-client-H")
	prefixInitiateClient = []byte("CurveCP-client-I")
	prefixMsgClient      = []byte("CurveCP-client-M")
	prefixHelloServer    = []byte("CurveCP-server-H")
	prefixInitiateServer = []byte("CurveCP-server-I")
	prefixMsgServer      = []byte("CurveCP-server-M")
	prefixReadyServer    = []byte("CurveCP-server-R")

	prefixMinuteKey = []byte("minute-k")
	prefixVouch     = []byte("CurveCPV")
	prefixCookie    = []byte("CurveCPK")
)

// side identifies which endpoint of a connection we are.
type side byte

const (
	sideClient side = iota
	sideServer
)

func (s side) opposite() side {
	if s == sideClient {
		return sideServer
	}
	return sideClient
}

// shortTermNonce builds a 24-byte counter-based nonce: prefix(16) ||
// counter(8, big-endian).
func shortTermNonce(prefix []byte, counter uint64) *[24]byte {
	if len(prefix) != 16 {
		panic("curvecp: short-term nonce prefix must be 16 bytes")
	}
	var n [24]byte
	copy(n[:16], prefix)
	binary.BigEndian.PutUint64(n[16:], counter)
	return &n
}

// longTermNonce builds a 24-byte random-tail nonce: prefix(8) || tail(16).
func longTermNonce(prefix []byte, tail []byte) *[24]byte {
	if len(prefix) != 8 {
		panic("curvecp: long-term nonce prefix must be 8 bytes")
	}
	if len(tail) != 16 {
		panic("curvecp: long-term nonce tail must be 16 bytes")
	}
	var n [24]byte
	copy(n[:8], prefix)
	copy(n[8:], tail)
	return &n
}

// helloNonce, initiateNonce and msgNonce pick the client/server variant of
// the short-term prefix for the given side.
func helloNonce(s side, counter uint64) *[24]byte {
	if s == sideClient {
		return shortTermNonce(prefixHelloClient, counter)
	}
	return shortTermNonce(prefixHelloServer, counter)
}

func initiateNonce(s side, counter uint64) *[24]byte {
	if s == sideClient {
		return shortTermNonce(prefixInitiateClient, counter)
	}
	return shortTermNonce(prefixInitiateServer, counter)
}

func msgNonce(s side, counter uint64) *[24]byte {
	if s == sideClient {
		return shortTermNonce(prefixMsgClient, counter)
	}
	return shortTermNonce(prefixMsgServer, counter)
}

func readyNonce(counter uint64) *[24]byte {
	return shortTermNonce(prefixReadyServer, counter)
}

func minuteKeyNonce(tail []byte) *[24]byte {
	return longTermNonce(prefixMinuteKey, tail)
}

func vouchNonce(tail []byte) *[24]byte {
	return longTermNonce(prefixVouch, tail)
}

func cookieNonce(tail []byte) *[24]byte {
	return longTermNonce(prefixCookie, tail)
}
