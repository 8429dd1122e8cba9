// File: smp/message.go
// Author: momentics <momentics@gmail.com>
//
// Everything that travels across a per-pair ring is boxed into a
// *message: either a unit of work to run on the receiving shard, or a
// completion reply to work the receiving shard submitted earlier. Both
// kinds share one ring per ordered pair, since a pair's ring is really
// just "inbox from sender to receiver" regardless of which of the two
// things it is carrying.

package smp

// workItem is a remote call packaged for the destination shard: run it
// and hand the (boxed) result or error to resolve, which the
// destination copies onto the completionItem it replies with (the
// resolver itself never needs to exist on the destination's side, it
// just has to be carried along for the trip back).
type workItem struct {
	run     func() (any, error)
	resolve func(any, *crossCoreError)
}

// completionItem carries a work item's outcome back to its submitter.
// marshalErr, not the original error value, crosses the ring: see
// crossCoreError in marshal.go for why.
type completionItem struct {
	value      any
	marshalErr *crossCoreError
	resolve    func(any, *crossCoreError)
}

type msgKind int

const (
	kindWork msgKind = iota
	kindCompletion
)

type message struct {
	kind       msgKind
	work       *workItem
	completion *completionItem
}
