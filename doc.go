// Package curvecp implements the core of a CurveCP-based secure transport
// over a reliable byte stream (net.Conn). Two endpoints perform a
// mutually-authenticated handshake using long-term and ephemeral
// Curve25519 keys, then exchange authenticated, encrypted,
// length-prefixed application messages until either side closes.
//
// Wire frames, all length-prefixed on the stream by a 16-bit big-endian
// frame length ahead of the bytes described below:
//
// HELLO (client -> server), 8-byte magic + 32 + 8 + 80:
//
//	0  : 8  : magic
//	8  : 32 : client short-term public key (EC)
//	40 : 8  : nonce counter N (big-endian)
//	48 : 80 : box(zeroes(64)) under stN(hello,client,N), EC -> S
//
// COOKIE (server -> client), 8-byte magic + 16 + 144:
//
//	0  : 8   : magic
//	8  : 16  : server safe nonce tail
//	24 : 144 : box(ES(32) || K(96)) under ltN(server, nonce), S -> EC
//
// VOUCH / INITIATE (client -> server), 8-byte magic + 96 + 8 + >=112:
//
//	0   : 8    : magic
//	8   : 96   : K, the cookie returned by the server
//	104 : 8    : nonce counter N (big-endian)
//	112 : >=112: box(C || safe_nonce_C || vouch(48) || metadata) under
//	             stN(initiate,client,N), EC -> ES
//
// READY (server -> client), 8-byte magic + 8 + >=16:
//
//	0  : 8    : magic
//	8  : 8    : nonce counter N (big-endian)
//	16 : >=16 : box(metadata) under stN(ready,server,N), ES -> EC
//
// MESSAGE (either direction), 8-byte magic + 8 + >=16:
//
//	0  : 8    : magic
//	8  : 8    : nonce counter N (big-endian)
//	16 : >=16 : box(payload) under stN(msg,side,N)
//
// The cookie body K (96 bytes) carried inside the Cookie frame's box and
// echoed back verbatim inside Vouch/Initiate is itself:
//
//	0  : 16 : safe nonce tail used to seal the inner secretbox
//	16 : 80 : secretbox(EC || ESs) under the server's current minute key
package curvecp
