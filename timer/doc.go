// File: timer/doc.go
// Author: momentics <momentics@gmail.com>

// Package timer provides the two deadline-ordered clocks a reactor owns:
// a high-resolution wheel for arbitrary deadlines and a low-resolution
// 10ms clock shared lock-free across every reactor. Firing a timer always
// hands the callback to a future.Scheduler rather than running it
// in-line from the background wait goroutine, so callbacks observe the
// same non-inline discipline as future continuations.
package timer
