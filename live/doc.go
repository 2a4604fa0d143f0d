// Package live defines the wire-message model for the Gemini Live
// (BidiGenerateContent) protocol: every client-to-server and server-to-client
// message shape, constructors for outbound messages, and ParseServerEvent,
// the single decode entry point for inbound frames.
//
// The package performs no I/O and holds no state; every operation is a pure
// transformation, safe for concurrent use. Field names follow the remote
// service's fixed contract and must not be changed.
package live
