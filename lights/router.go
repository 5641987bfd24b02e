package lights

import (
	"github.com/go-playground/validator/v10"
)

// Delivery is one outbound message and the connections it is addressed to.
type Delivery struct {
	To      []ConnID
	Message any
}

func unicast(id ConnID, msg any) Delivery {
	return Delivery{To: []ConnID{id}, Message: msg}
}

// Router turns inbound client messages into role changes and deliveries.
type Router struct {
	auth     *PasswordAuthority
	registry *Registry
	counter  *Counter
	validate *validator.Validate

	exclusiveHost bool
	logf          Logf
}

// RouterOption customizes a Router.
type RouterOption func(*Router)

// ExclusiveHost makes a successful login demote every other host.
func ExclusiveHost(exclusive bool) RouterOption {
	return func(r *Router) {
		r.exclusiveHost = exclusive
	}
}

// WithRouterLogger sets where dispatch decisions are reported.
func WithRouterLogger(logf Logf) RouterOption {
	return func(r *Router) {
		r.logf = logf
	}
}

func NewRouter(auth *PasswordAuthority, registry *Registry, opts ...RouterOption) *Router {
	r := &Router{
		auth:     auth,
		registry: registry,
		counter:  NewCounter(registry),
		validate: validator.New(),
	}
	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Dispatch applies msg from sender and returns what must be sent, in
// order. Messages from unregistered senders and unknown types yield nothing.
func (r *Router) Dispatch(sender ConnID, msg ClientMessage) []Delivery {
	if _, ok := r.registry.Role(sender); !ok {
		return nil
	}

	switch msg.Type {
	case TypeRequestPassword:
		return []Delivery{unicast(sender, PasswordResponse{
			Type:     TypePasswordResponse,
			Password: r.auth.Current(),
		})}

	case TypeHostLogin:
		return r.login(sender, msg.Password)

	case TypeHostLogout:
		return r.logout(sender)

	case TypeSetHost:
		// Legacy clients claim the host role without a password.
		if !r.registry.SetRole(sender, Host) {
			return nil
		}
		r.logf.printf("LIGHTS: %s set itself as host", sender)

		return []Delivery{r.counter.Publish()}

	case TypeHostColor:
		if !r.mayBroadcast(sender) {
			return nil
		}
		cmd := colorCommand{Color: msg.Color, Mode: msg.Mode}
		if err := r.validate.Struct(cmd); err != nil {
			return nil
		}
		if cmd.Mode == "" {
			cmd.Mode = defaultMode
		}
		r.logf.printf("LIGHTS: Color %s (%s) from %s", cmd.Color, cmd.Mode, sender)

		return []Delivery{{
			To:      r.registry.Audience(),
			Message: HostColor{Type: TypeHostColor, Color: cmd.Color, Mode: cmd.Mode},
		}}

	case TypeHostEffect:
		if !r.mayBroadcast(sender) {
			return nil
		}
		cmd := effectCommand{Effect: msg.Effect, Color: msg.Color}
		if err := r.validate.Struct(cmd); err != nil {
			return nil
		}
		r.logf.printf("LIGHTS: Effect %s (%s) from %s", cmd.Effect, cmd.Color, sender)

		return []Delivery{{
			To:      r.registry.Audience(),
			Message: HostEffect{Type: TypeHostEffect, Effect: cmd.Effect, Color: cmd.Color},
		}}

	default:
		// client-connect and unknown types
		return nil
	}
}

// mayBroadcast reports whether sender's color and effect commands are
// relayed. Any connection may broadcast unless hosts are exclusive, in which
// case a demoted host loses the right along with the role.
func (r *Router) mayBroadcast(sender ConnID) bool {
	if !r.exclusiveHost {
		return true
	}
	if role, _ := r.registry.Role(sender); role != Host {
		r.logf.printf("LIGHTS: Ignored command from non-host %s", sender)

		return false
	}

	return true
}

func (r *Router) login(sender ConnID, password string) []Delivery {
	if !r.auth.Validate(password) {
		r.logf.printf("AUTH: Host login failed for %s", sender)

		return []Delivery{unicast(sender, LoginResult{
			Type:    TypeLoginError,
			Message: loginErrorText,
		})}
	}

	changed := false
	if r.exclusiveHost {
		for _, id := range r.registry.Hosts() {
			if id != sender && r.registry.SetRole(id, Audience) {
				r.logf.printf("AUTH: Demoted host %s", id)
				changed = true
			}
		}
	}
	if r.registry.SetRole(sender, Host) {
		changed = true
	}

	r.logf.printf("AUTH: Host login successful for %s", sender)

	out := []Delivery{unicast(sender, LoginResult{
		Type:    TypeLoginSuccess,
		Message: loginSuccessText,
	})}
	if changed {
		out = append(out, r.counter.Publish())
	}

	return out
}

func (r *Router) logout(sender ConnID) []Delivery {
	if role, _ := r.registry.Role(sender); role != Host {
		return nil
	}

	r.registry.SetRole(sender, Audience)
	newPassword := r.auth.Rotate()

	r.logf.printf("AUTH: Host %s logged out", sender)

	return []Delivery{
		unicast(sender, LogoutSuccess{
			Type:        TypeLogoutSuccess,
			NewPassword: newPassword,
		}),
		r.counter.Publish(),
	}
}
