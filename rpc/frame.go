// File: rpc/frame.go
// Author: momentics <momentics@gmail.com>
//
// Little-endian wire codec for spec.md §6's RPC frames. Decode
// functions follow protocol/frame_codec.go's incremental-parse
// convention: (frame, consumed, nil) on success, (nil, 0, nil) when raw
// does not yet hold a complete frame, (nil, 0, err) on a malformed one.

package rpc

import (
	"encoding/binary"
	"errors"
)

// Magic is the 8-byte negotiation preamble both sides must agree on.
var Magic = [8]byte{'S', 'S', 'T', 'A', 'R', 'R', 'P', 'C'}

// ExceptionType distinguishes the two exception bodies spec.md §6
// defines.
type ExceptionType uint32

const (
	// ExceptionUser carries a UTF-8 error string as its payload.
	ExceptionUser ExceptionType = 0
	// ExceptionUnknownVerb carries the unrecognized u64 verb as its
	// payload.
	ExceptionUnknownVerb ExceptionType = 1
)

// ErrBadMagic is returned when a negotiation frame's magic does not
// match Magic.
var ErrBadMagic = errors.New("rpc: negotiation magic mismatch")

// ErrFeatureMismatch is returned when a peer's required-features word
// cannot be satisfied.
var ErrFeatureMismatch = errors.New("rpc: required feature mismatch")

// Negotiation is the handshake frame exchanged by both sides before any
// request/response traffic.
type Negotiation struct {
	RequiredFeatures uint32
	OptionalFeatures uint32
	Data             []byte
}

// EncodeNegotiation serializes n per spec.md §6: magic, u32 required,
// u32 optional, u32 len, len bytes.
func EncodeNegotiation(n Negotiation) []byte {
	buf := make([]byte, 8+4+4+4+len(n.Data))
	copy(buf, Magic[:])
	binary.LittleEndian.PutUint32(buf[8:], n.RequiredFeatures)
	binary.LittleEndian.PutUint32(buf[12:], n.OptionalFeatures)
	binary.LittleEndian.PutUint32(buf[16:], uint32(len(n.Data)))
	copy(buf[20:], n.Data)
	return buf
}

// DecodeNegotiation parses a Negotiation frame from the head of raw.
func DecodeNegotiation(raw []byte) (*Negotiation, int, error) {
	if len(raw) < 20 {
		return nil, 0, nil
	}
	var magic [8]byte
	copy(magic[:], raw[:8])
	if magic != Magic {
		return nil, 0, ErrBadMagic
	}
	required := binary.LittleEndian.Uint32(raw[8:])
	optional := binary.LittleEndian.Uint32(raw[12:])
	dataLen := int(binary.LittleEndian.Uint32(raw[16:]))
	total := 20 + dataLen
	if len(raw) < total {
		return nil, 0, nil
	}
	data := make([]byte, dataLen)
	copy(data, raw[20:total])
	return &Negotiation{RequiredFeatures: required, OptionalFeatures: optional, Data: data}, total, nil
}

// Request is a verb invocation, per spec.md §6: u64 verb_type, i64
// msg_id (positive, never reused), u32 len, len bytes payload.
type Request struct {
	VerbType uint64
	MsgID    int64
	Payload  []byte
}

// EncodeRequest serializes r.
func EncodeRequest(r Request) []byte {
	buf := make([]byte, 8+8+4+len(r.Payload))
	binary.LittleEndian.PutUint64(buf, r.VerbType)
	binary.LittleEndian.PutUint64(buf[8:], uint64(r.MsgID))
	binary.LittleEndian.PutUint32(buf[16:], uint32(len(r.Payload)))
	copy(buf[20:], r.Payload)
	return buf
}

// DecodeRequest parses a Request frame from the head of raw.
func DecodeRequest(raw []byte) (*Request, int, error) {
	if len(raw) < 20 {
		return nil, 0, nil
	}
	verb := binary.LittleEndian.Uint64(raw)
	msgID := int64(binary.LittleEndian.Uint64(raw[8:]))
	payloadLen := int(binary.LittleEndian.Uint32(raw[16:]))
	total := 20 + payloadLen
	if len(raw) < total {
		return nil, 0, nil
	}
	payload := make([]byte, payloadLen)
	copy(payload, raw[20:total])
	return &Request{VerbType: verb, MsgID: msgID, Payload: payload}, total, nil
}

// Response answers a Request, per spec.md §6: i64 msg_id, u32 len, len
// bytes payload. A negative msg_id means the payload is an exception
// body in response to abs(msg_id).
type Response struct {
	MsgID   int64
	Payload []byte
}

// EncodeResponse serializes r.
func EncodeResponse(r Response) []byte {
	buf := make([]byte, 8+4+len(r.Payload))
	binary.LittleEndian.PutUint64(buf, uint64(r.MsgID))
	binary.LittleEndian.PutUint32(buf[8:], uint32(len(r.Payload)))
	copy(buf[12:], r.Payload)
	return buf
}

// DecodeResponse parses a Response frame from the head of raw.
func DecodeResponse(raw []byte) (*Response, int, error) {
	if len(raw) < 12 {
		return nil, 0, nil
	}
	msgID := int64(binary.LittleEndian.Uint64(raw))
	payloadLen := int(binary.LittleEndian.Uint32(raw[8:]))
	total := 12 + payloadLen
	if len(raw) < total {
		return nil, 0, nil
	}
	payload := make([]byte, payloadLen)
	copy(payload, raw[12:total])
	return &Response{MsgID: msgID, Payload: payload}, total, nil
}

// Exception is the body carried by a negative-msg_id Response, per
// spec.md §6: u32 type, u32 len, len bytes.
type Exception struct {
	Type    ExceptionType
	Payload []byte
}

// EncodeException serializes e.
func EncodeException(e Exception) []byte {
	buf := make([]byte, 4+4+len(e.Payload))
	binary.LittleEndian.PutUint32(buf, uint32(e.Type))
	binary.LittleEndian.PutUint32(buf[4:], uint32(len(e.Payload)))
	copy(buf[8:], e.Payload)
	return buf
}

// DecodeException parses an Exception body from raw. Unlike the frame
// decoders above, raw must hold exactly one exception body (it is
// itself a Response's payload, already length-delimited), so a short
// buffer is malformed rather than merely incomplete.
func DecodeException(raw []byte) (*Exception, error) {
	if len(raw) < 8 {
		return nil, errors.New("rpc: truncated exception body")
	}
	typ := ExceptionType(binary.LittleEndian.Uint32(raw))
	payloadLen := int(binary.LittleEndian.Uint32(raw[4:]))
	if len(raw) < 8+payloadLen {
		return nil, errors.New("rpc: truncated exception payload")
	}
	payload := make([]byte, payloadLen)
	copy(payload, raw[8:8+payloadLen])
	return &Exception{Type: typ, Payload: payload}, nil
}

// NewUserException builds a user-exception body carrying msg as a
// UTF-8 error string.
func NewUserException(msg string) Exception {
	return Exception{Type: ExceptionUser, Payload: []byte(msg)}
}

// NewUnknownVerbException builds an unknown-verb exception body
// carrying the unrecognized verb.
func NewUnknownVerbException(verb uint64) Exception {
	payload := make([]byte, 8)
	binary.LittleEndian.PutUint64(payload, verb)
	return Exception{Type: ExceptionUnknownVerb, Payload: payload}
}
