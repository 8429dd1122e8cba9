// File: stream/consume.go
// Author: momentics <momentics@gmail.com>

package stream

import (
	"github.com/momentics/corereactor/api"
	"github.com/momentics/corereactor/future"
)

// Consume pulls buffers from s, invoking consumer(buf) for each one,
// per spec.md §4.4: a disengaged remainder terminates the loop; an
// engaged remainder is prepended to the data pulled on the next
// iteration before consumer runs again.
func Consume(sched future.Scheduler, s *InputStream, consumer func(api.Buffer) *future.Future[future.Option[api.Buffer]]) *future.Future[struct{}] {
	var pending future.Option[api.Buffer]

	return future.RepeatUntilValue(sched, func() *future.Future[future.Option[struct{}]] {
		return future.ThenCompose(s.Get(), func(buf api.Buffer) *future.Future[future.Option[struct{}]] {
			chunk := append([]byte{}, buf.Bytes()...)
			buf.Release()
			if pending.Valid {
				chunk = append(append([]byte{}, pending.Value.Bytes()...), chunk...)
				pending = future.None[api.Buffer]()
			}
			if len(chunk) == 0 {
				return future.Ready(sched, future.Some(struct{}{}))
			}
			return future.Then(consumer(&rawBytesBuffer{data: chunk}), func(rem future.Option[api.Buffer]) (future.Option[struct{}], error) {
				if !rem.Valid {
					return future.Some(struct{}{}), nil
				}
				pending = rem
				return future.None[struct{}](), nil
			})
		})
	})
}
