package lights

import (
	"slices"

	"github.com/samber/lo"
)

// Role is what a connection is allowed to do.
type Role int

const (
	// Audience connections receive host commands. Every connection starts here.
	Audience Role = iota
	// Host connections may broadcast and never receive their own commands.
	Host
)

func (r Role) String() string {
	switch r {
	case Audience:
		return "audience"
	case Host:
		return "host"
	default:
		return "unknown"
	}
}

// Registry maps live connections to their role. Iteration follows
// registration order.
type Registry struct {
	roles map[ConnID]Role
	order []ConnID
}

func NewRegistry() *Registry {
	return &Registry{
		roles: make(map[ConnID]Role),
	}
}

// Register adds id as an audience connection. Registering a known id is a
// no-op and keeps its role.
func (r *Registry) Register(id ConnID) {
	if _, ok := r.roles[id]; ok {
		return
	}

	r.roles[id] = Audience
	r.order = append(r.order, id)
}

// Unregister removes id and reports whether it was present.
func (r *Registry) Unregister(id ConnID) bool {
	if _, ok := r.roles[id]; !ok {
		return false
	}

	delete(r.roles, id)
	if i := slices.Index(r.order, id); i >= 0 {
		r.order = slices.Delete(r.order, i, i+1)
	}

	return true
}

// SetRole changes the role of a registered connection and reports whether
// anything changed.
func (r *Registry) SetRole(id ConnID, role Role) bool {
	current, ok := r.roles[id]
	if !ok || current == role {
		return false
	}

	r.roles[id] = role

	return true
}

// Role returns the role of id, if registered.
func (r *Registry) Role(id ConnID) (Role, bool) {
	role, ok := r.roles[id]

	return role, ok
}

// All returns every registered connection.
func (r *Registry) All() []ConnID {
	return slices.Clone(r.order)
}

// Audience returns the connections currently in the Audience role.
func (r *Registry) Audience() []ConnID {
	return r.withRole(Audience)
}

// Hosts returns the connections currently in the Host role.
func (r *Registry) Hosts() []ConnID {
	return r.withRole(Host)
}

// Count returns how many connections hold role.
func (r *Registry) Count(role Role) int {
	return lo.CountBy(r.order, func(id ConnID) bool {
		return r.roles[id] == role
	})
}

// Len returns the number of registered connections.
func (r *Registry) Len() int {
	return len(r.order)
}

func (r *Registry) withRole(role Role) []ConnID {
	return lo.Filter(r.order, func(id ConnID, _ int) bool {
		return r.roles[id] == role
	})
}
