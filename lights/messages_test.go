package lights

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseClientMessage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
		want ClientMessage
		ok   bool
	}{
		{
			name: "color",
			raw:  `{"type":"host-color","color":"#ff0080","mode":"pulse"}`,
			want: ClientMessage{Type: TypeHostColor, Color: "#ff0080", Mode: "pulse"},
			ok:   true,
		},
		{
			name: "extra keys ignored",
			raw:  `{"type":"host-login","password":"BrightStar123","id":7}`,
			want: ClientMessage{Type: TypeHostLogin, Password: "BrightStar123"},
			ok:   true,
		},
		{
			name: "capitalized type is not the type",
			raw:  `{"Type":"set-host"}`,
			want: ClientMessage{},
			ok:   true,
		},
		{
			name: "capitalized field is not the field",
			raw:  `{"type":"host-color","COLOR":"#ffffff"}`,
			want: ClientMessage{Type: TypeHostColor},
			ok:   true,
		},
		{name: "non-string field", raw: `{"type":"host-color","color":1}`},
		{name: "array", raw: `[1,2]`},
		{name: "not json", raw: `not json`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, ok := ParseClientMessage([]byte(tt.raw))

			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
