// File: smp/doc.go
// Author: momentics <momentics@gmail.com>

// Package smp implements the sharded execution model: one reactor per
// selected CPU, a bounded lock-free ring per ordered (src, dst) pair,
// and the submit_to/invoke_on_all/map_reduce0/Distributed collective
// operations built on top of them. Futures and promises never cross a
// ring directly; every cross-core call is wrapped as a workItem and
// reconstituted on the destination reactor.
package smp
