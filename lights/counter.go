package lights

// Counter derives participant-count updates from a Registry.
type Counter struct {
	registry *Registry
}

func NewCounter(registry *Registry) *Counter {
	return &Counter{registry: registry}
}

// Publish addresses the current audience size to every connection, hosts
// included.
func (c *Counter) Publish() Delivery {
	return Delivery{
		To: c.registry.All(),
		Message: ParticipantCount{
			Type:  TypeParticipantCount,
			Count: c.registry.Count(Audience),
		},
	}
}
