// File: rpc/doc.go
// Author: momentics <momentics@gmail.com>

// Package rpc implements the RPC wire format spec.md §6 describes as an
// external interface the transport must honor bit-exactly: a negotiation
// handshake followed by request/response frames carrying a verb type, a
// msg_id, and a length-prefixed payload, with exceptions marshaled as a
// negative-msg_id response.
package rpc
