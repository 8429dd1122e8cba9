// File: smp/marshal.go
// Author: momentics <momentics@gmail.com>
//
// A work item's error cannot simply cross a ring as a Go error value:
// an arbitrary error implementation might hold pointers back into the
// originating reactor's memory (a wrapped *api.Error with a Context map,
// a wrapped file handle, …), and nothing guarantees the destination
// reactor's goroutine is the right place to ever free it. crossCoreError
// is a flat, self-contained value — plain strings and a copied map, no
// shared backing storage — so ownership crossing cores never ties the
// exception's lifetime to the originating core's allocator.

package smp

import "github.com/momentics/corereactor/api"

// crossCoreError is the type-erased holder an exception is marshaled
// into before crossing a ring, and rehydrated from on the other side.
type crossCoreError struct {
	Code    api.ErrorCode
	Message string
	Context map[string]any
}

func marshalError(err error) *crossCoreError {
	if err == nil {
		return nil
	}
	if e, ok := err.(*api.Error); ok {
		ctx := make(map[string]any, len(e.Context))
		for k, v := range e.Context {
			ctx[k] = v
		}
		return &crossCoreError{Code: e.Code, Message: e.Message, Context: ctx}
	}
	return &crossCoreError{Code: api.ErrCodeInternal, Message: err.Error()}
}

// rehydrate converts a marshaled error back into an ordinary error on
// the receiving core.
func (c *crossCoreError) rehydrate() error {
	if c == nil {
		return nil
	}
	e := api.NewError(c.Code, c.Message)
	for k, v := range c.Context {
		e.WithContext(k, v)
	}
	return e
}
