package provider

import "errors"

var (
	ErrPoolExhausted = errors.New("provider: no connection became available in time")
	ErrPoolClosed    = errors.New("provider: pool closed")
	ErrReleased      = errors.New("provider: connection already released")

	// ErrProtocol wraps replies the store should never send for a plain
	// GET/SET, e.g. a type mismatch on the key.
	ErrProtocol = errors.New("provider: unexpected store reply")

	// ErrRejected reports a write the store declined, e.g. under memory
	// pressure.
	ErrRejected = errors.New("provider: write rejected by store")
)
