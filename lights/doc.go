// Package lights implements the PhoLight relay core: a rotating host
// password, the registry of live connections and their roles, and the
// dispatcher that turns inbound control messages into deliveries.
//
// Nothing in this package is safe for concurrent use. The caller owns a
// Relay from a single goroutine and feeds it transport events in order.
package lights

// ConnID identifies one live connection. It is never sent to clients.
type ConnID string

// Logf receives diagnostic output. A nil Logf discards it.
type Logf func(format string, args ...any)

func (l Logf) printf(format string, args ...any) {
	if l == nil {
		return
	}

	l(format, args...)
}
