package lights

import (
	"crypto/subtle"
	"math/rand/v2"
	"strconv"
	"time"
)

// DefaultPasswordTTL is how long a generated secret stays valid.
const DefaultPasswordTTL = 24 * time.Hour

var (
	adjectives = []string{"Happy", "Bright", "Cool", "Wild", "Fun", "Epic", "Amazing", "Awesome", "Super", "Magic"}
	nouns      = []string{"Party", "Light", "Show", "Night", "Dance", "Beat", "Wave", "Glow", "Spark", "Flash"}
)

// PasswordAuthority owns the shared host secret and its expiry.
//
// Secrets are meant to be read aloud at a party, not to resist guessing.
// Expiry is enforced lazily: the first login attempt that presents the
// current secret after it expired rotates it and fails.
type PasswordAuthority struct {
	secret string
	expiry time.Time
	ttl    time.Duration

	now  func() time.Time
	intn func(n int) int
	logf Logf
}

// PasswordOption customizes a PasswordAuthority.
type PasswordOption func(*PasswordAuthority)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) PasswordOption {
	return func(a *PasswordAuthority) {
		a.now = now
	}
}

// WithRand replaces the uniform picker used to build secrets. intn must
// return a value in [0,n).
func WithRand(intn func(n int) int) PasswordOption {
	return func(a *PasswordAuthority) {
		a.intn = intn
	}
}

// WithPasswordLogger sets where rotations are reported.
func WithPasswordLogger(logf Logf) PasswordOption {
	return func(a *PasswordAuthority) {
		a.logf = logf
	}
}

// NewPasswordAuthority returns an authority holding a freshly generated
// secret. A non-positive ttl falls back to DefaultPasswordTTL.
func NewPasswordAuthority(ttl time.Duration, opts ...PasswordOption) *PasswordAuthority {
	if ttl <= 0 {
		ttl = DefaultPasswordTTL
	}

	a := &PasswordAuthority{
		ttl:  ttl,
		now:  time.Now,
		intn: rand.IntN,
	}
	for _, opt := range opts {
		opt(a)
	}

	a.Initialize()

	return a
}

// Generate builds a secret such as "HappyParty482" without storing it.
func (a *PasswordAuthority) Generate() string {
	adjective := adjectives[a.intn(len(adjectives))]
	noun := nouns[a.intn(len(nouns))]
	number := 100 + a.intn(900)

	return adjective + noun + strconv.Itoa(number)
}

// Initialize replaces the secret and restarts its lifetime.
func (a *PasswordAuthority) Initialize() {
	a.secret = a.Generate()
	a.expiry = a.now().Add(a.ttl)

	a.logf.printf("AUTH: Generated new host password %s (expires %s)",
		a.secret,
		a.expiry.Format(time.RFC3339),
	)
}

// Rotate discards the current secret and returns its replacement.
func (a *PasswordAuthority) Rotate() string {
	a.Initialize()

	return a.secret
}

// Current returns the secret in force.
func (a *PasswordAuthority) Current() string {
	return a.secret
}

// Expiry returns the instant after which the current secret is stale.
func (a *PasswordAuthority) Expiry() time.Time {
	return a.expiry
}

// Expired reports whether the current secret is past its expiry.
func (a *PasswordAuthority) Expired() bool {
	return a.now().After(a.expiry)
}

// Validate reports whether candidate is the current, unexpired secret.
// Presenting the current secret after expiry rotates it and fails.
func (a *PasswordAuthority) Validate(candidate string) bool {
	if candidate == "" || subtle.ConstantTimeCompare([]byte(candidate), []byte(a.secret)) != 1 {
		return false
	}

	if a.Expired() {
		a.logf.printf("AUTH: Password expired, generating new one")
		a.Initialize()

		return false
	}

	return true
}

// Sweep rotates the secret if it has expired, whether or not anyone tried
// to use it, and reports whether it did.
func (a *PasswordAuthority) Sweep() bool {
	if !a.Expired() {
		return false
	}

	a.logf.printf("AUTH: Password expired unused, generating new one")
	a.Initialize()

	return true
}
