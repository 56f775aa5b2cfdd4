package curvecp

import "golang.org/x/crypto/nacl/box"

// sendMessage implements spec §4.6 Send(M): seal M under the next
// outbound counter and write it as a Message frame. Called only from the
// actor goroutine while in stateConnected.
func (c *Conn) sendMessage(payload []byte) error {
	if c.c >= maxCounter {
		c.fail(ErrCounterLimit)
		return ErrCounterLimit
	}
	nonce := msgNonce(c.sd, c.c)
	sealed := box.Seal(nil, payload, nonce, &c.peerPublicKey, &c.secretKey)
	if err := c.fc.WriteFrame(encodeMessage(c.c, sealed)); err != nil {
		c.fail(err)
		return err
	}
	c.c++
	return nil
}

// maxCounter is 2^64-1; reaching it terminates the connection (spec
// invariant 1, design note "counter overflow").
const maxCounter = ^uint64(0)

// onMessage implements spec §4.6's receive path: validate the counter
// and open the box, then hand the plaintext to the receive queue.
func (c *Conn) onMessage(pkt *packet) {
	if pkt.n != c.rc || c.buf != nil {
		c.fail(ErrOutOfOrder)
		return
	}
	if c.rc >= maxCounter {
		c.fail(ErrCounterLimit)
		return
	}
	nonce := msgNonce(c.sd.opposite(), pkt.n)
	plain, ok := box.Open(nil, pkt.box, nonce, &c.peerPublicKey, &c.secretKey)
	if !ok {
		c.fail(ErrVerifyFailed)
		return
	}
	c.buf = plain
	c.rc++
	c.processRecvQueue()
}
