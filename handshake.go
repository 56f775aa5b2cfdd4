package curvecp

import (
	"crypto/subtle"

	"golang.org/x/crypto/curve25519"
	"golang.org/x/crypto/nacl/box"
)

var zero64 = make([]byte, 64)

// startClient runs spec §4.5 "ready + start(client, ...)": it generates
// an ephemeral keypair, seals a Hello, and arms for the Cookie reply.
func (c *Conn) startClient() error {
	if err := c.generateEphemeral(); err != nil {
		return err
	}
	nonce := helloNonce(sideClient, 0)
	sealed := box.Seal(nil, zero64, nonce, c.peerLTPublicKey, &c.secretKey)
	if err := c.fc.WriteFrame(encodeHello(c.publicKey, 0, sealed)); err != nil {
		return err
	}
	c.arm()
	c.state = stateAwaitingCookie
	return nil
}

// startServer runs spec §4.5 "ready + start(server, ...)".
func (c *Conn) startServer() {
	c.arm()
	c.state = stateAwaitingHello
}

// onHello handles the server's awaiting_hello -> awaiting_vouch
// transition (spec §4.5). The server intentionally does not retain the
// ephemeral keypair it generates here in conn state beyond this call and
// onVouch recovering it from the cookie itself.
func (c *Conn) onHello(pkt *packet) {
	plain, err := c.vault.BoxOpen(pkt.box, helloNonce(sideClient, pkt.n), &pkt.ec)
	if err != nil || !allZero(plain) {
		c.fail(ErrVerifyFailed)
		return
	}

	if err := c.generateEphemeral(); err != nil {
		c.fail(err)
		return
	}
	esPub, esSecret := c.publicKey, c.secretKey

	safeNonceA := c.vault.SafeNonce()
	kookie := sealCookie(pkt.ec, esSecret, safeNonceA, c.cookieKeys.CurrentKey())

	safeNonceB := c.vault.SafeNonce()
	cookiePlain := make([]byte, 0, 32+96)
	cookiePlain = append(cookiePlain, esPub[:]...)
	cookiePlain = append(cookiePlain, kookie[:]...)
	cookieBox := c.vault.Box(cookiePlain, cookieNonce(safeNonceB[:]), &pkt.ec)

	if err := c.fc.WriteFrame(encodeCookie(safeNonceB, cookieBox)); err != nil {
		c.fail(err)
		return
	}

	// The ephemeral keypair lives only inside the cookie from here on;
	// onVouch recovers esSecret from the cookie it gets handed back.
	c.publicKey = [32]byte{}
	c.secretKey = [32]byte{}

	c.arm()
	c.state = stateAwaitingVouch
}

// onCookie handles the client's awaiting_cookie -> awaiting_ready
// transition (spec §4.5).
func (c *Conn) onCookie(pkt *packet) {
	plain, ok := box.Open(nil, pkt.box, cookieNonce(pkt.cookieNonceTail[:]), c.peerLTPublicKey, &c.secretKey)
	if !ok || len(plain) != 32+96 {
		c.fail(ErrVerifyFailed)
		return
	}
	var es [32]byte
	copy(es[:], plain[:32])
	var kookie [96]byte
	copy(kookie[:], plain[32:])

	mdBytes, err := encodeMetadata(c.md)
	if err != nil {
		c.fail(err)
		return
	}

	safeNonceC := c.vault.SafeNonce()
	vouchInner := c.vault.Box(c.publicKey[:], vouchNonce(safeNonceC[:]), c.peerLTPublicKey)
	clientLTPublic := c.vault.PublicKey()

	initiatePlain := make([]byte, 0, 32+16+len(vouchInner)+len(mdBytes))
	initiatePlain = append(initiatePlain, clientLTPublic[:]...)
	initiatePlain = append(initiatePlain, safeNonceC[:]...)
	initiatePlain = append(initiatePlain, vouchInner...)
	initiatePlain = append(initiatePlain, mdBytes...)

	initiateBox := box.Seal(nil, initiatePlain, initiateNonce(sideClient, 1), &es, &c.secretKey)

	if err := c.fc.WriteFrame(encodeVouch(kookie, 1, initiateBox)); err != nil {
		c.fail(err)
		return
	}

	c.peerPublicKey = es
	c.c = 2
	c.rc = 2
	c.arm()
	c.state = stateAwaitingReady
}

// onVouch handles the server's awaiting_vouch -> connected transition
// (spec §4.5), optionally sending a Ready frame first.
func (c *Conn) onVouch(pkt *packet) {
	ec, esSecret, err := openCookie(pkt.kookie, c.cookieKeys.RecentKeys())
	if err != nil {
		c.fail(err)
		return
	}

	plain, ok := box.Open(nil, pkt.box, initiateNonce(sideClient, pkt.n), &ec, &esSecret)
	if !ok || len(plain) < 32+16+48 {
		c.fail(ErrVerifyFailed)
		return
	}
	var clientLT [32]byte
	copy(clientLT[:], plain[:32])
	var safeNonceC [16]byte
	copy(safeNonceC[:], plain[32:48])
	vouchBox := plain[48:96]
	mdBytes := plain[96:]

	if !c.registry.Verify(c.rawConn, clientLT) {
		c.fail(ErrRegistryRejected)
		return
	}

	vouchedEC, err := c.vault.BoxOpen(vouchBox, vouchNonce(safeNonceC[:]), &clientLT)
	if err != nil || len(vouchedEC) != 32 || subtle.ConstantTimeCompare(vouchedEC, ec[:]) != 1 {
		c.fail(ErrVerifyFailed)
		return
	}

	// No Ready is sent below when mdBytes is empty, so the client's rc
	// stays at 2 (set in onCookie) until the first Message; c starts at 2
	// to match. The
	// Ready-sending branch below bumps c to 3 once it has actually used
	// up N=2 on the Ready frame itself.
	c.c = 2
	c.rc = 2
	c.peerPublicKey = ec
	c.secretKey = esSecret
	curve25519.ScalarBaseMult(&c.publicKey, &esSecret)

	if len(mdBytes) == 0 {
		c.state = stateConnected
		c.finishStart(nil)
		return
	}

	md, err := decodeMetadata(mdBytes)
	if err != nil {
		c.fail(err)
		return
	}
	c.rmd = md

	outBytes, err := encodeMetadata(c.md)
	if err != nil {
		c.fail(err)
		return
	}
	readyBox := box.Seal(nil, outBytes, readyNonce(2), &ec, &esSecret)
	if err := c.fc.WriteFrame(encodeReady(2, readyBox)); err != nil {
		c.fail(err)
		return
	}

	c.c = 3
	c.state = stateConnected
	c.finishStart(nil)
}

// onReady handles the client's awaiting_ready -> connected transition on
// an actual Ready frame (spec §4.5).
func (c *Conn) onReady(pkt *packet) {
	plain, ok := box.Open(nil, pkt.box, readyNonce(pkt.n), &c.peerPublicKey, &c.secretKey)
	if !ok {
		c.fail(ErrVerifyFailed)
		return
	}
	md, err := decodeMetadata(plain)
	if err != nil {
		c.fail(err)
		return
	}
	c.rmd = md
	c.rc = 3
	c.arm()
	c.state = stateConnected
	c.finishStart(nil)
}

func allZero(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}
	return true
}

