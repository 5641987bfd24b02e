package lights

import "errors"

var (
	// ErrClosed is returned by a Transport when the target connection is
	// no longer writable.
	ErrClosed = errors.New("connection closed")

	// ErrBufferFull is returned by a Transport when a slow connection
	// cannot accept another message without blocking.
	ErrBufferFull = errors.New("send buffer full")
)
