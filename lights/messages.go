package lights

import (
	"encoding/json"
)

// Inbound message types.
const (
	TypeClientConnect   = "client-connect"
	TypeRequestPassword = "request-password"
	TypeHostLogin       = "host-login"
	TypeHostLogout      = "host-logout"
	TypeSetHost         = "set-host"
	TypeHostColor       = "host-color"
	TypeHostEffect      = "host-effect"
)

// Outbound message types. host-color and host-effect are relayed under
// their inbound names.
const (
	TypePasswordResponse = "password-response"
	TypeLoginSuccess     = "login-success"
	TypeLoginError       = "login-error"
	TypeLogoutSuccess    = "logout-success"
	TypeParticipantCount = "participant-count"
)

const (
	defaultMode = "static"

	loginSuccessText = "Login successful"
	loginErrorText   = "Invalid or expired password"
)

// Messages coming from clients
type ClientMessage struct {
	Type     string `json:"type"`               // see Type* constants
	Password string `json:"password,omitempty"` // host-login
	Color    string `json:"color,omitempty"`    // host-color / host-effect, "#rrggbb"
	Mode     string `json:"mode,omitempty"`     // host-color
	Effect   string `json:"effect,omitempty"`   // host-effect
}

// ParseClientMessage decodes a single text frame. ok is false for anything
// that is not a JSON object with string fields; such frames are dropped.
// Field names must match exactly: "Type" is an unknown key, not "type".
func ParseClientMessage(raw []byte) (msg ClientMessage, ok bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return ClientMessage{}, false
	}

	for key, dst := range map[string]*string{
		"type":     &msg.Type,
		"password": &msg.Password,
		"color":    &msg.Color,
		"mode":     &msg.Mode,
		"effect":   &msg.Effect,
	} {
		value, found := fields[key]
		if !found {
			continue
		}
		if err := json.Unmarshal(value, dst); err != nil {
			return ClientMessage{}, false
		}
	}

	return msg, true
}

type colorCommand struct {
	Color string `validate:"required"`
	Mode  string
}

type effectCommand struct {
	Effect string `validate:"required"`
	Color  string `validate:"required"`
}

// PasswordResponse answers request-password.
type PasswordResponse struct {
	Type     string `json:"type"` // "password-response"
	Password string `json:"password"`
}

// LoginResult is sent to the sender of host-login.
type LoginResult struct {
	Type    string `json:"type"` // "login-success" or "login-error"
	Message string `json:"message"`
}

// LogoutSuccess carries the secret that replaced the one the host used.
type LogoutSuccess struct {
	Type        string `json:"type"` // "logout-success"
	NewPassword string `json:"newPassword"`
}

// ParticipantCount reports the number of audience connections.
type ParticipantCount struct {
	Type  string `json:"type"` // "participant-count"
	Count int    `json:"count"`
}

// HostColor is fanned out to every audience connection.
type HostColor struct {
	Type  string `json:"type"` // "host-color"
	Color string `json:"color"`
	Mode  string `json:"mode"`
}

// HostEffect is fanned out to every audience connection.
type HostEffect struct {
	Type   string `json:"type"` // "host-effect"
	Effect string `json:"effect"`
	Color  string `json:"color"`
}
