package curvecp

import (
	"container/list"
	"crypto/rand"
	"io"
	"log"
	"net"
	"sync/atomic"
	"time"

	"golang.org/x/crypto/nacl/box"
)

// connState is the handshake FSM's current state (spec §4.5).
type connState int

const (
	stateReady connState = iota
	stateAwaitingCookie
	stateAwaitingHello
	stateAwaitingVouch
	stateAwaitingReady
	stateConnected
	stateTerminal
)

var nextConnID uint64

// Conn is one CurveCP connection: a single-threaded cooperative actor
// (spec §5) that owns a framed byte stream and all per-connection state.
// Every exported method hands a request to the actor goroutine over a
// channel and waits for its reply; there is no lock on Conn's fields,
// because only the actor goroutine ever touches them, per the teacher's
// conn.go/server.go pump pattern (a single select loop dispatching every
// mutation).
type Conn struct {
	id uint64

	mode Mode
	sd   side

	rawConn net.Conn
	fc      *frameReadWriter

	vault      Vault
	cookieKeys CookieKeySource // server only
	registry   ClientRegistry  // server only

	peerLTPublicKey *[32]byte // client only, input (S)
	publicKey       [32]byte  // our ephemeral public key (EC or ES)
	secretKey       [32]byte  // our ephemeral secret key
	peerPublicKey   [32]byte  // peer's ephemeral public key

	c  uint64 // outbound short-term nonce counter
	rc uint64 // expected inbound short-term nonce counter

	md  Metadata
	rmd Metadata

	buf []byte // one-slot decrypted inbound payload; nil means empty

	recvQueue  *list.List // of *pendingReceiver
	nextRecvID uint64

	state connState

	controller *Controller

	reqCh             chan any
	frameCh           chan frameEvent
	armCh             chan struct{}
	readerStop        chan struct{}
	receiverTimeoutCh chan uint64
	closedCh          chan struct{}

	handshakeTimer *time.Timer
	startReply     chan error

	localAddr, remoteAddr net.Addr

	logger *log.Logger
}

// frameEvent is what the reader goroutine posts: either a decoded raw
// frame, or the error that ended the read loop.
type frameEvent struct {
	raw []byte
	err error
}

// Mode selects which end of the handshake a Conn plays.
type Mode int

const (
	ModeClient Mode = iota
	ModeServer
)

// Options configures a connection or listener (spec §6). Fields left at
// their zero value are either inapplicable to the mode in use or take
// the stated default.
type Options struct {
	Mode Mode

	// PeerPublicKey is the server's long-term public key. Required for
	// ModeClient, ignored for ModeServer.
	PeerPublicKey *[32]byte

	// Metadata is sent to the peer once during the handshake.
	Metadata Metadata

	// Timeout bounds the handshake. Zero means no deadline.
	Timeout time.Duration

	// Vault performs this side's long-term box operations. Required.
	Vault Vault

	// CookieKeys supplies minute keys for cookie sealing. Required for
	// ModeServer, ignored for ModeClient.
	CookieKeys CookieKeySource

	// Registry verifies presenting client keys. Defaults to
	// AllowAllRegistry when nil. ModeServer only.
	Registry ClientRegistry

	// Controller receives asynchronous notifications for this
	// connection. Defaults to a fresh Controller with a small buffer.
	Controller *Controller

	// Logger receives terse one-line notices for fatal handshake aborts
	// and close events. Defaults to a discarding logger; curve-tun never
	// logs at data-plane, per-message granularity.
	Logger *log.Logger
}

var discardLogger = log.New(io.Discard, "", 0)

func newConn(rawConn net.Conn, opts Options) *Conn {
	registry := opts.Registry
	if registry == nil {
		registry = AllowAllRegistry{}
	}
	controller := opts.Controller
	if controller == nil {
		controller = NewController(16)
	}
	logger := opts.Logger
	if logger == nil {
		logger = discardLogger
	}
	c := &Conn{
		id:                atomic.AddUint64(&nextConnID, 1),
		mode:              opts.Mode,
		rawConn:           rawConn,
		fc:                newFrameReadWriter(rawConn),
		vault:             opts.Vault,
		cookieKeys:        opts.CookieKeys,
		registry:          registry,
		peerLTPublicKey:   opts.PeerPublicKey,
		md:                opts.Metadata,
		recvQueue:         list.New(),
		state:             stateReady,
		controller:        controller,
		reqCh:             make(chan any),
		frameCh:           make(chan frameEvent, 1),
		armCh:             make(chan struct{}, 1),
		readerStop:        make(chan struct{}),
		receiverTimeoutCh: make(chan uint64, 8),
		closedCh:          make(chan struct{}),
		startReply:        make(chan error, 1),
		localAddr:         rawConn.LocalAddr(),
		remoteAddr:        rawConn.RemoteAddr(),
		logger:            logger,
	}
	if opts.Mode == ModeClient {
		c.sd = sideClient
	} else {
		c.sd = sideServer
	}
	if opts.Timeout > 0 {
		c.handshakeTimer = time.NewTimer(opts.Timeout)
	}
	go c.readerLoop()
	go c.run()
	return c
}

// readerLoop reads exactly one frame per arm signal, forwarding the
// result to frameCh. It exits on the first transport error, since a
// broken stream cannot usefully be re-armed.
func (c *Conn) readerLoop() {
	for {
		select {
		case <-c.armCh:
		case <-c.readerStop:
			return
		}
		raw, err := c.fc.ReadFrame()
		if err != nil {
			select {
			case c.frameCh <- frameEvent{err: err}:
			case <-c.readerStop:
			}
			return
		}
		select {
		case c.frameCh <- frameEvent{raw: raw}:
		case <-c.readerStop:
			return
		}
	}
}

func (c *Conn) arm() {
	select {
	case c.armCh <- struct{}{}:
	default:
	}
}

// run is the actor's event loop: exactly one event is handled per
// iteration, drawn from a control request, an inbound frame, the
// handshake timer, a per-receiver timer, or the controller dying (spec
// §5).
func (c *Conn) run() {
	defer c.teardown()

	if c.mode == ModeClient {
		if err := c.startClient(); err != nil {
			c.finishStart(err)
			return
		}
	} else {
		c.startServer()
	}

	for c.state != stateTerminal {
		var handshakeTimeoutCh <-chan time.Time
		if c.handshakeTimer != nil && c.state != stateConnected {
			handshakeTimeoutCh = c.handshakeTimer.C
		}
		var controllerDone <-chan struct{}
		if c.controller != nil {
			controllerDone = c.controller.done
		}

		select {
		case req := <-c.reqCh:
			c.handleRequest(req)
		case fe := <-c.frameCh:
			c.handleFrameEvent(fe)
		case <-handshakeTimeoutCh:
			c.finishStart(ErrTimeout)
			return
		case <-controllerDone:
			return
		case id := <-c.receiverTimeoutCh:
			c.handleReceiverTimeout(id)
		}
	}
}

func (c *Conn) handleFrameEvent(fe frameEvent) {
	if fe.err != nil {
		c.fail(fe.err)
		return
	}
	pkt, err := decodePacket(fe.raw)
	if err != nil {
		c.fail(err)
		return
	}
	c.dispatch(pkt)
}

// dispatch routes a decoded packet to the handler for the current state,
// per spec §4.5: any mismatch between a frame's type and the state's
// expected type is fatal.
func (c *Conn) dispatch(pkt *packet) {
	if pkt.typ == frameUnknown {
		c.fail(ErrUnknownFrame)
		return
	}
	switch c.state {
	case stateAwaitingHello:
		if pkt.typ != frameHello {
			c.fail(ErrUnexpectedFrame)
			return
		}
		c.onHello(pkt)
	case stateAwaitingCookie:
		if pkt.typ != frameCookie {
			c.fail(ErrUnexpectedFrame)
			return
		}
		c.onCookie(pkt)
	case stateAwaitingVouch:
		if pkt.typ != frameVouch {
			c.fail(ErrUnexpectedFrame)
			return
		}
		c.onVouch(pkt)
	case stateAwaitingReady:
		// Open question: when the server sent no Ready (the client's Vouch
		// carried no metadata), the first thing the client sees after Vouch is a
		// data-plane Message at N=2, not a Ready. Accept either.
		switch pkt.typ {
		case frameReady:
			c.onReady(pkt)
		case frameMessage:
			c.state = stateConnected
			c.finishStart(nil)
			c.onMessage(pkt)
		default:
			c.fail(ErrUnexpectedFrame)
		}
	case stateConnected:
		if pkt.typ != frameMessage {
			c.fail(ErrUnexpectedFrame)
			return
		}
		c.onMessage(pkt)
	default:
		c.fail(ErrUnexpectedFrame)
	}
}

// fail is the single exit path for any fatal handshake or steady-state
// error: it replies to a pending starter if one exists, then tears the
// connection down.
func (c *Conn) fail(err error) {
	c.logger.Printf("conn %d: fatal: %v", c.id, err)
	c.finishStart(err)
	c.state = stateTerminal
}

func (c *Conn) finishStart(err error) {
	select {
	case c.startReply <- err:
	default:
	}
}

// teardown runs exactly once, regardless of why the actor exited: it
// releases the socket, fails every pending sync receiver, and posts at
// most one closed notification (spec invariant 6).
func (c *Conn) teardown() {
	close(c.readerStop)
	c.rawConn.Close()
	close(c.closedCh)

	if c.handshakeTimer != nil {
		c.handshakeTimer.Stop()
	}

	hadAsync := false
	for e := c.recvQueue.Front(); e != nil; e = e.Next() {
		r := e.Value.(*pendingReceiver)
		if r.timer != nil {
			r.timer.Stop()
		}
		switch r.kind {
		case receiverSync:
			select {
			case r.reply <- recvResult{err: ErrClosed}:
			default:
			}
		case receiverAsync:
			hadAsync = true
		}
	}
	c.recvQueue.Init()

	if hadAsync && c.controller != nil {
		select {
		case c.controller.events <- Event{Kind: EventClosed, ConnID: c.id}:
		case <-c.controller.done:
		}
	}
	c.logger.Printf("conn %d: closed", c.id)

	c.state = stateTerminal
	c.finishStart(ErrClosed)
}

// generateEphemeral creates a fresh Curve25519 keypair for this
// connection's ephemeral role, grounded in box.GenerateKey usage shared
// by both teacher repos.
func (c *Conn) generateEphemeral() error {
	pub, priv, err := box.GenerateKey(rand.Reader)
	if err != nil {
		return err
	}
	c.publicKey = *pub
	c.secretKey = *priv
	return nil
}

// LocalAddr returns the local address of the underlying byte stream.
func (c *Conn) LocalAddr() net.Addr { return c.localAddr }

// RemoteAddr returns the remote address of the underlying byte stream.
func (c *Conn) RemoteAddr() net.Addr { return c.remoteAddr }

// ID returns the connection's opaque identifier, the socket_id carried
// in async Controller notifications.
func (c *Conn) ID() uint64 { return c.id }
