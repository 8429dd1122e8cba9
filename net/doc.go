// File: net/doc.go
// Author: momentics <momentics@gmail.com>

// Package net is the generic socket-shaped I/O surface spec.md §6
// describes: listen/accept/connected_socket/input()/output(), with a
// UDP mirror. It carries no WebSocket framing — that is layered, if at
// all, by a caller using Connection.Input/Output directly.
package net
