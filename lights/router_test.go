package lights

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type routerFixture struct {
	auth     *PasswordAuthority
	clock    *fakeClock
	registry *Registry
	router   *Router
}

func newRouterFixture(t *testing.T, ids []ConnID, opts ...RouterOption) *routerFixture {
	t.Helper()

	auth, clock := newTestAuthority(t)
	registry := NewRegistry()
	for _, id := range ids {
		registry.Register(id)
	}

	return &routerFixture{
		auth:     auth,
		clock:    clock,
		registry: registry,
		router:   NewRouter(auth, registry, opts...),
	}
}

func (f *routerFixture) login(t *testing.T, id ConnID) {
	t.Helper()

	out := f.router.Dispatch(id, ClientMessage{Type: TypeHostLogin, Password: f.auth.Current()})
	require.NotEmpty(t, out)
	require.Equal(t, TypeLoginSuccess, out[0].Message.(LoginResult).Type)
}

func TestDispatch_RequestPassword(t *testing.T) {
	t.Parallel()

	f := newRouterFixture(t, []ConnID{"host"})

	out := f.router.Dispatch("host", ClientMessage{Type: TypeRequestPassword})

	assert.Equal(t, []Delivery{{
		To:      []ConnID{"host"},
		Message: PasswordResponse{Type: TypePasswordResponse, Password: f.auth.Current()},
	}}, out)
}

func TestDispatch_LoginWrongPassword(t *testing.T) {
	t.Parallel()

	f := newRouterFixture(t, []ConnID{"host"})

	for _, password := range []string{"wrong", ""} {
		out := f.router.Dispatch("host", ClientMessage{Type: TypeHostLogin, Password: password})

		assert.Equal(t, []Delivery{{
			To:      []ConnID{"host"},
			Message: LoginResult{Type: TypeLoginError, Message: "Invalid or expired password"},
		}}, out)

		role, _ := f.registry.Role("host")
		assert.Equal(t, Audience, role)
	}
}

func TestDispatch_LoginSuccessPublishesCount(t *testing.T) {
	t.Parallel()

	f := newRouterFixture(t, []ConnID{"host", "a"})

	out := f.router.Dispatch("host", ClientMessage{Type: TypeHostLogin, Password: f.auth.Current()})

	require.Len(t, out, 2)
	assert.Equal(t, Delivery{
		To:      []ConnID{"host"},
		Message: LoginResult{Type: TypeLoginSuccess, Message: "Login successful"},
	}, out[0])
	assert.Equal(t, Delivery{
		To:      []ConnID{"host", "a"},
		Message: ParticipantCount{Type: TypeParticipantCount, Count: 1},
	}, out[1])

	role, _ := f.registry.Role("host")
	assert.Equal(t, Host, role)
}

func TestDispatch_LoginWhileHostDoesNotRecount(t *testing.T) {
	t.Parallel()

	f := newRouterFixture(t, []ConnID{"host"})
	f.login(t, "host")

	out := f.router.Dispatch("host", ClientMessage{Type: TypeHostLogin, Password: f.auth.Current()})

	require.Len(t, out, 1)
	assert.Equal(t, TypeLoginSuccess, out[0].Message.(LoginResult).Type)
}

func TestDispatch_LoginWithExpiredPasswordRotates(t *testing.T) {
	t.Parallel()

	f := newRouterFixture(t, []ConnID{"host"})
	f.auth.intn = sequence(0, 0, 0, 5, 5, 5)
	f.auth.Initialize()
	stale := f.auth.Current()

	f.clock.Advance(25 * time.Hour)

	out := f.router.Dispatch("host", ClientMessage{Type: TypeHostLogin, Password: stale})

	require.Len(t, out, 1)
	assert.Equal(t, TypeLoginError, out[0].Message.(LoginResult).Type)
	assert.NotEqual(t, stale, f.auth.Current())

	fresh := f.router.Dispatch("host", ClientMessage{Type: TypeRequestPassword})
	assert.Equal(t, f.auth.Current(), fresh[0].Message.(PasswordResponse).Password)
}

func TestDispatch_Logout(t *testing.T) {
	t.Parallel()

	f := newRouterFixture(t, []ConnID{"host", "a"})
	f.auth.intn = sequence(0, 0, 0, 3, 3, 3)
	f.auth.Initialize()
	previous := f.auth.Current()
	f.login(t, "host")

	out := f.router.Dispatch("host", ClientMessage{Type: TypeHostLogout})

	require.Len(t, out, 2)
	logout := out[0].Message.(LogoutSuccess)
	assert.Equal(t, TypeLogoutSuccess, logout.Type)
	assert.Equal(t, f.auth.Current(), logout.NewPassword)
	assert.NotEqual(t, previous, logout.NewPassword)
	assert.Equal(t, ParticipantCount{Type: TypeParticipantCount, Count: 2}, out[1].Message)

	role, _ := f.registry.Role("host")
	assert.Equal(t, Audience, role)

	relogin := f.router.Dispatch("host", ClientMessage{Type: TypeHostLogin, Password: previous})
	assert.Equal(t, TypeLoginError, relogin[0].Message.(LoginResult).Type)
}

func TestDispatch_LogoutFromAudienceIsIgnored(t *testing.T) {
	t.Parallel()

	f := newRouterFixture(t, []ConnID{"a"})
	secret := f.auth.Current()

	assert.Empty(t, f.router.Dispatch("a", ClientMessage{Type: TypeHostLogout}))
	assert.Equal(t, secret, f.auth.Current())
}

func TestDispatch_SetHostWithoutPassword(t *testing.T) {
	t.Parallel()

	f := newRouterFixture(t, []ConnID{"legacy", "a"})

	out := f.router.Dispatch("legacy", ClientMessage{Type: TypeSetHost})

	require.Len(t, out, 1)
	assert.Equal(t, ParticipantCount{Type: TypeParticipantCount, Count: 1}, out[0].Message)

	role, _ := f.registry.Role("legacy")
	assert.Equal(t, Host, role)

	assert.Empty(t, f.router.Dispatch("legacy", ClientMessage{Type: TypeSetHost}))
}

func TestDispatch_HostColorReachesOnlyAudience(t *testing.T) {
	t.Parallel()

	f := newRouterFixture(t, []ConnID{"a", "host", "b"})
	f.login(t, "host")

	out := f.router.Dispatch("host", ClientMessage{Type: TypeHostColor, Color: "#ff0080", Mode: "static"})

	assert.Equal(t, []Delivery{{
		To:      []ConnID{"a", "b"},
		Message: HostColor{Type: TypeHostColor, Color: "#ff0080", Mode: "static"},
	}}, out)
}

func TestDispatch_HostColorDefaultsMode(t *testing.T) {
	t.Parallel()

	f := newRouterFixture(t, []ConnID{"host", "a"})
	f.login(t, "host")

	out := f.router.Dispatch("host", ClientMessage{Type: TypeHostColor, Color: "#00ff00"})

	require.Len(t, out, 1)
	assert.Equal(t, HostColor{Type: TypeHostColor, Color: "#00ff00", Mode: "static"}, out[0].Message)
}

func TestDispatch_HostColorNeverEchoesToAnyHost(t *testing.T) {
	t.Parallel()

	f := newRouterFixture(t, []ConnID{"h1", "h2", "a"})
	f.login(t, "h1")
	f.login(t, "h2")

	out := f.router.Dispatch("h1", ClientMessage{Type: TypeHostColor, Color: "#123456", Mode: "pulse"})

	require.Len(t, out, 1)
	assert.Equal(t, []ConnID{"a"}, out[0].To)
}

func TestDispatch_HostEffect(t *testing.T) {
	t.Parallel()

	f := newRouterFixture(t, []ConnID{"host", "a"})
	f.login(t, "host")

	out := f.router.Dispatch("host", ClientMessage{Type: TypeHostEffect, Effect: "strobe", Color: "#ffffff"})

	assert.Equal(t, []Delivery{{
		To:      []ConnID{"a"},
		Message: HostEffect{Type: TypeHostEffect, Effect: "strobe", Color: "#ffffff"},
	}}, out)
}

func TestDispatch_IncompleteCommandsAreIgnored(t *testing.T) {
	t.Parallel()

	f := newRouterFixture(t, []ConnID{"host", "a"})
	f.login(t, "host")

	tests := []struct {
		name string
		msg  ClientMessage
	}{
		{name: "color without color", msg: ClientMessage{Type: TypeHostColor, Mode: "static"}},
		{name: "effect without color", msg: ClientMessage{Type: TypeHostEffect, Effect: "strobe"}},
		{name: "effect without effect", msg: ClientMessage{Type: TypeHostEffect, Color: "#ffffff"}},
		{name: "client-connect", msg: ClientMessage{Type: TypeClientConnect}},
		{name: "unknown", msg: ClientMessage{Type: "dance"}},
		{name: "no type", msg: ClientMessage{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Empty(t, f.router.Dispatch("host", tt.msg))
		})
	}
}

func TestDispatch_UnregisteredSenderIsIgnored(t *testing.T) {
	t.Parallel()

	f := newRouterFixture(t, []ConnID{"a"})

	assert.Empty(t, f.router.Dispatch("ghost", ClientMessage{Type: TypeRequestPassword}))
	assert.Empty(t, f.router.Dispatch("ghost", ClientMessage{Type: TypeHostLogin, Password: f.auth.Current()}))
	assert.Equal(t, 0, f.registry.Count(Host))
}

func TestDispatch_PermissiveMultipleHosts(t *testing.T) {
	t.Parallel()

	f := newRouterFixture(t, []ConnID{"h1", "h2", "a"})
	f.login(t, "h1")
	f.login(t, "h2")

	assert.Equal(t, []ConnID{"h1", "h2"}, f.registry.Hosts())
}

func TestDispatch_ExclusiveHostDemotesPrevious(t *testing.T) {
	t.Parallel()

	f := newRouterFixture(t, []ConnID{"h1", "h2", "a"}, ExclusiveHost(true))
	f.login(t, "h1")

	out := f.router.Dispatch("h2", ClientMessage{Type: TypeHostLogin, Password: f.auth.Current()})

	assert.Equal(t, []ConnID{"h2"}, f.registry.Hosts())
	require.Len(t, out, 2)
	assert.Equal(t, ParticipantCount{Type: TypeParticipantCount, Count: 2}, out[1].Message)
}

func TestDispatch_ExclusiveHostSilencesDemotedHost(t *testing.T) {
	t.Parallel()

	f := newRouterFixture(t, []ConnID{"h1", "h2", "a"}, ExclusiveHost(true))
	f.login(t, "h1")
	f.login(t, "h2")

	assert.Empty(t, f.router.Dispatch("h1", ClientMessage{Type: TypeHostColor, Color: "#ffffff"}))
	assert.Empty(t, f.router.Dispatch("h1", ClientMessage{Type: TypeHostEffect, Effect: "strobe", Color: "#ffffff"}))
	assert.Empty(t, f.router.Dispatch("a", ClientMessage{Type: TypeHostColor, Color: "#ffffff"}))

	out := f.router.Dispatch("h2", ClientMessage{Type: TypeHostColor, Color: "#ffffff"})
	require.Len(t, out, 1)
	assert.Equal(t, []ConnID{"h1", "a"}, out[0].To)
}

func TestDispatch_PermissiveAudienceMayBroadcast(t *testing.T) {
	t.Parallel()

	f := newRouterFixture(t, []ConnID{"a", "b"})

	out := f.router.Dispatch("a", ClientMessage{Type: TypeHostColor, Color: "#ffffff"})

	require.Len(t, out, 1)
	assert.Equal(t, []ConnID{"a", "b"}, out[0].To)
}

func TestCounter_MatchesAudienceAfterEveryChange(t *testing.T) {
	t.Parallel()

	f := newRouterFixture(t, nil)
	counter := NewCounter(f.registry)

	check := func() {
		t.Helper()
		d := counter.Publish()
		assert.Equal(t, f.registry.All(), d.To)
		assert.Equal(t, f.registry.Count(Audience), d.Message.(ParticipantCount).Count)
	}

	check()
	for _, id := range []ConnID{"a", "b", "c"} {
		f.registry.Register(id)
		check()
	}
	f.login(t, "b")
	check()
	f.router.Dispatch("b", ClientMessage{Type: TypeHostLogout})
	check()
	f.router.Dispatch("c", ClientMessage{Type: TypeSetHost})
	check()
	f.registry.Unregister("a")
	check()
	f.registry.Unregister("c")
	check()
	assert.Equal(t, 1, counter.Publish().Message.(ParticipantCount).Count)
}
