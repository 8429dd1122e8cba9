// File: rpc/errors.go
// Author: momentics <momentics@gmail.com>

package rpc

import (
	"errors"
	"fmt"
)

// ErrIDSpaceExhausted is returned by Client.Call once every positive
// int64 msg_id has been used. spec.md §6 requires msg_id be positive
// and never reused but is silent on overflow; this implementation
// rejects reuse explicitly rather than wrapping back to 1.
var ErrIDSpaceExhausted = errors.New("rpc: msg_id space exhausted")

// ErrConnectionClosed is returned to every Call still pending once the
// underlying connection's read loop ends.
var ErrConnectionClosed = errors.New("rpc: connection closed")

// RemoteError wraps an Exception frame received in response to a Call,
// surfaced to the caller as a runtime-error exception per spec.md §7's
// protocol-error policy.
type RemoteError struct {
	Exception Exception
}

func (e *RemoteError) Error() string {
	if e.Exception.Type == ExceptionUnknownVerb {
		return "rpc: unknown verb (remote)"
	}
	return fmt.Sprintf("rpc: remote error: %s", string(e.Exception.Payload))
}
