package curvecp

import "errors"

// Sentinel errors returned by the public API and surfaced to pending
// receivers. Handshake failures are always fatal: the connection actor
// tears itself down before returning one of these.
var (
	// ErrClosed is returned by Send/Recv/AsyncRecv/ControllingProcess once
	// the connection has been closed, locally or by the peer. Close itself
	// always returns nil, and Metadata returns a nil list instead.
	ErrClosed = errors.New("curvecp: connection closed")

	// ErrTimeout is returned when a handshake deadline or a per-receiver
	// timeout expires before the expected event occurs.
	ErrTimeout = errors.New("curvecp: timeout")

	// ErrNotOwner is returned by ControllingProcess when the caller is not
	// the current controller.
	ErrNotOwner = errors.New("curvecp: not owner")

	// ErrCookie is returned when a Vouch/Initiate's cookie cannot be opened
	// under the current or any recent minute key.
	ErrCookie = errors.New("curvecp: bad cookie")

	// ErrVerifyFailed covers any NaCl box open failure on a handshake or
	// Message frame that was expected to be well-formed. A cookie that
	// fails to open is reported as ErrCookie instead.
	ErrVerifyFailed = errors.New("curvecp: verification failed")

	// ErrUnexpectedFrame is returned when a frame's type does not match
	// what the current handshake state expects.
	ErrUnexpectedFrame = errors.New("curvecp: unexpected frame for state")

	// ErrRegistryRejected is returned when the client registry refuses a
	// presenting client's long-term public key.
	ErrRegistryRejected = errors.New("curvecp: client rejected by registry")

	// ErrCounterLimit is returned when a send or receive counter would
	// reach 2^64-1.
	ErrCounterLimit = errors.New("curvecp: nonce counter limit reached")

	// ErrMetadataTooLarge is returned by the metadata codec when a list
	// exceeds the wire limits (255 entries, 255-byte keys, 65535-byte
	// values).
	ErrMetadataTooLarge = errors.New("curvecp: metadata exceeds wire limits")

	// ErrUnknownFrame is returned when a frame's magic prefix doesn't
	// match one of the five known frame types.
	ErrUnknownFrame = errors.New("curvecp: unknown frame type")

	// ErrShortFrame is returned by the packet decoder when a frame is
	// too short to contain its fixed fields, and by the metadata decoder
	// when an encoded list is truncated.
	ErrShortFrame = errors.New("curvecp: frame too short")

	// ErrOutOfOrder is fatal: an inbound Message's counter did not equal
	// the expected receive counter, or the one-slot buffer was already
	// occupied.
	ErrOutOfOrder = errors.New("curvecp: message out of order")
)
