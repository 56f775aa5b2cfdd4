package curvecp

import (
	"errors"
	"log"
	"net"
	"time"
)

// ConnectOptions configures an outbound connection.
type ConnectOptions struct {
	// PeerPublicKey is the server's long-term public key. Required.
	PeerPublicKey [32]byte

	// Vault performs this side's long-term box operations. Required.
	Vault Vault

	// Metadata is sent to the server once during the handshake.
	Metadata Metadata

	// Timeout bounds the handshake. Zero means no deadline.
	Timeout time.Duration

	// Controller receives asynchronous notifications for this
	// connection. Defaults to a fresh Controller with a small buffer.
	Controller *Controller

	// Logger receives terse fatal/close notices. Defaults to silent.
	Logger *log.Logger
}

// Connect dials addr over TCP and runs the client side of the handshake
// to completion before returning.
func Connect(network, addr string, opts ConnectOptions) (*Conn, error) {
	if opts.Vault == nil {
		return nil, errors.New("curvecp: ConnectOptions.Vault is required")
	}
	raw, err := net.Dial(network, addr)
	if err != nil {
		return nil, err
	}
	peer := opts.PeerPublicKey
	c, err := Start(raw, Options{
		Mode:          ModeClient,
		PeerPublicKey: &peer,
		Metadata:      opts.Metadata,
		Timeout:       opts.Timeout,
		Vault:         opts.Vault,
		Controller:    opts.Controller,
		Logger:        opts.Logger,
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Start wraps an already-obtained byte stream (e.g. one dialed or
// accepted outside this package) and runs its handshake to completion
// before returning, per spec §6's "start(byte_stream_handle, options)".
// Listen/Accept and Connect are thin conveniences built on top of it.
func Start(rawConn net.Conn, opts Options) (*Conn, error) {
	if opts.Vault == nil {
		return nil, errors.New("curvecp: Options.Vault is required")
	}
	if opts.Mode == ModeClient && opts.PeerPublicKey == nil {
		return nil, errors.New("curvecp: Options.PeerPublicKey is required for ModeClient")
	}
	if opts.Mode == ModeServer && opts.CookieKeys == nil {
		return nil, errors.New("curvecp: Options.CookieKeys is required for ModeServer")
	}
	c := newConn(rawConn, opts)
	if err := <-c.startReply; err != nil {
		return nil, err
	}
	return c, nil
}

// Send queues payload as the next Message frame. It blocks until the
// actor has sealed and written it, or the connection is closed.
func (c *Conn) Send(payload []byte) error {
	reply := make(chan error, 1)
	select {
	case c.reqCh <- sendRequest{payload: payload, reply: reply}:
	case <-c.closedCh:
		return ErrClosed
	}
	select {
	case err := <-reply:
		return err
	case <-c.closedCh:
		return ErrClosed
	}
}

// Recv blocks until the next inbound message arrives, the connection
// closes, or timeout elapses (zero means no timeout).
func (c *Conn) Recv(timeout time.Duration) ([]byte, error) {
	reply := make(chan recvResult, 1)
	select {
	case c.reqCh <- recvRequest{timeout: timeout, reply: reply}:
	case <-c.closedCh:
		return nil, ErrClosed
	}
	select {
	case res := <-reply:
		return res.payload, res.err
	case <-c.closedCh:
		return nil, ErrClosed
	}
}

// AsyncRecv registers an asynchronous receiver and returns its
// reference immediately; the payload (or timeout) is delivered later as
// an Event on the connection's Controller.
func (c *Conn) AsyncRecv(timeout time.Duration) (uint64, error) {
	reply := make(chan asyncRecvResult, 1)
	select {
	case c.reqCh <- asyncRecvRequest{timeout: timeout, reply: reply}:
	case <-c.closedCh:
		return 0, ErrClosed
	}
	select {
	case res := <-reply:
		return res.ref, res.err
	case <-c.closedCh:
		return 0, ErrClosed
	}
}

// AsyncCancel removes a pending async receiver registered by
// AsyncRecv. It is a no-op if ref has already been delivered or does
// not exist.
func (c *Conn) AsyncCancel(ref uint64) {
	reply := make(chan struct{}, 1)
	select {
	case c.reqCh <- asyncCancelRequest{ref: ref, reply: reply}:
		<-reply
	case <-c.closedCh:
	}
}

// Metadata returns the metadata the peer presented during the
// handshake.
func (c *Conn) Metadata() Metadata {
	reply := make(chan Metadata, 1)
	select {
	case c.reqCh <- metadataRequest{reply: reply}:
		return <-reply
	case <-c.closedCh:
		return nil
	}
}

// ControllingProcess reassigns the connection's controller, the owner
// of its asynchronous notifications. caller must be the current
// controller or the call fails with ErrNotOwner.
func (c *Conn) ControllingProcess(caller, newController *Controller) error {
	reply := make(chan error, 1)
	select {
	case c.reqCh <- controllingProcessRequest{caller: caller, newController: newController, reply: reply}:
	case <-c.closedCh:
		return ErrClosed
	}
	select {
	case err := <-reply:
		return err
	case <-c.closedCh:
		return ErrClosed
	}
}

// Close tears the connection down. It is idempotent and always returns
// nil.
func (c *Conn) Close() error {
	reply := make(chan struct{}, 1)
	select {
	case c.reqCh <- closeRequest{reply: reply}:
		<-reply
	case <-c.closedCh:
	}
	return nil
}
