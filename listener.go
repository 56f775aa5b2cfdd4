package curvecp

import (
	"log"
	"net"
	"time"
)

// Listener accepts incoming connections and runs the server side of the
// handshake on each, mirroring the teacher's accept-loop-per-conn shape
// in jchv-curvecp/server.go but over net.Listener instead of a raw UDP
// socket demultiplexed by peer address.
type Listener struct {
	ln   net.Listener
	opts Options
}

// ListenOptions configures a Listener. Vault and CookieKeys are
// required; Registry defaults to AllowAllRegistry.
type ListenOptions struct {
	Vault      Vault
	CookieKeys CookieKeySource
	Registry   ClientRegistry
	Metadata   Metadata
	Timeout    time.Duration
	Controller *Controller
	Logger     *log.Logger
}

// Listen wraps an already-bound net.Listener (e.g. from net.Listen("tcp",
// addr)) to accept CurveCP connections.
func Listen(ln net.Listener, opts ListenOptions) *Listener {
	return &Listener{
		ln: ln,
		opts: Options{
			Mode:       ModeServer,
			Metadata:   opts.Metadata,
			Timeout:    opts.Timeout,
			Vault:      opts.Vault,
			CookieKeys: opts.CookieKeys,
			Registry:   opts.Registry,
			Controller: opts.Controller,
			Logger:     opts.Logger,
		},
	}
}

// Accept blocks for the next inbound TCP connection, runs the server
// handshake to completion (or failure), and returns the resulting Conn.
// Unlike net.Listener.Accept, the returned Conn is already connected:
// the handshake happens here, not lazily on first use, matching the
// teacher's server.go which completes its handshake before handing the
// connection to the application.
func (l *Listener) Accept() (*Conn, error) {
	raw, err := l.ln.Accept()
	if err != nil {
		return nil, err
	}
	return Start(raw, l.opts)
}

// Close stops accepting new connections. In-flight connections are
// unaffected.
func (l *Listener) Close() error {
	return l.ln.Close()
}

// Addr returns the listener's bound address.
func (l *Listener) Addr() net.Addr {
	return l.ln.Addr()
}
