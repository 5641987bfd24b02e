package lights

import (
	"encoding/json"
	"errors"
	"time"
)

// Transport is the persistent-channel boundary the relay writes through.
// Framing, keepalives and compression belong to the implementation.
type Transport interface {
	Send(id ConnID, payload []byte) error
	IsOpen(id ConnID) bool
}

// Stats is a point-in-time summary safe to expose publicly.
type Stats struct {
	Audience          int       `json:"audience"`
	Hosts             int       `json:"hosts"`
	PasswordExpiresAt time.Time `json:"passwordExpiresAt"`
}

// Relay feeds transport events through the router and writes the resulting
// deliveries back out.
type Relay struct {
	transport Transport
	auth      *PasswordAuthority
	registry  *Registry
	router    *Router
	logf      Logf
}

func NewRelay(transport Transport, auth *PasswordAuthority, logf Logf, opts ...RouterOption) *Relay {
	registry := NewRegistry()

	return &Relay{
		transport: transport,
		auth:      auth,
		registry:  registry,
		router:    NewRouter(auth, registry, append([]RouterOption{WithRouterLogger(logf)}, opts...)...),
		logf:      logf,
	}
}

// Connect registers a newly accepted connection as audience.
func (r *Relay) Connect(id ConnID) {
	r.registry.Register(id)
	r.logf.printf("LIGHTS: Client %s connected, total: %d", id, r.registry.Len())

	r.deliver(r.router.counter.Publish())
}

// Message handles one inbound frame from id. Frames that do not parse are
// dropped without a reply.
func (r *Relay) Message(id ConnID, raw []byte) {
	msg, ok := ParseClientMessage(raw)
	if !ok {
		r.logf.printf("LIGHTS: Dropped malformed message from %s", id)

		return
	}

	r.deliver(r.router.Dispatch(id, msg)...)
}

// Disconnect forgets id. Repeated calls are harmless.
func (r *Relay) Disconnect(id ConnID) {
	if !r.registry.Unregister(id) {
		return
	}
	r.logf.printf("LIGHTS: Client %s disconnected, total: %d", id, r.registry.Len())

	r.deliver(r.router.counter.Publish())
}

// Sweep rotates an expired secret that nobody has tried to use.
func (r *Relay) Sweep() bool {
	return r.auth.Sweep()
}

func (r *Relay) Stats() Stats {
	return Stats{
		Audience:          r.registry.Count(Audience),
		Hosts:             r.registry.Count(Host),
		PasswordExpiresAt: r.auth.Expiry(),
	}
}

// deliver is best effort: closed targets are skipped and a failed send
// never stops the remaining ones.
func (r *Relay) deliver(deliveries ...Delivery) {
	for _, d := range deliveries {
		payload, err := json.Marshal(d.Message)
		if err != nil {
			r.logf.printf("LIGHTS: Unable to encode %T: %v", d.Message, err)

			continue
		}

		for _, id := range d.To {
			if !r.transport.IsOpen(id) {
				continue
			}

			err := r.transport.Send(id, payload)
			switch {
			case err == nil:
			case errors.Is(err, ErrBufferFull):
				r.logf.printf("LIGHTS: Dropped message to slow client %s", id)
			default:
				r.logf.printf("LIGHTS: Send to %s failed: %v", id, err)
			}
		}
	}
}
