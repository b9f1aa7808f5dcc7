package buildinfo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContextVersion(t *testing.T) {
	tests := []struct {
		name string
		ctx  *Context
		want string
	}{
		{name: "nil context", ctx: nil, want: UnknownValue},
		{name: "empty version", ctx: NewContext("", "2026-01-01"), want: UnknownValue},
		{name: "release", ctx: NewContext("1.0.0", "2026-01-01"), want: "1.0.0"},
		{name: "pre-release", ctx: NewContext("1.0.0-beta.1", ""), want: "1.0.0-beta.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.ctx.GetVersion())
		})
	}
}

func TestContextString(t *testing.T) {
	assert.Equal(t, "1.2.3 (built 2026-01-02)", NewContext("1.2.3", "2026-01-02").String())
	assert.Equal(t, "unknown (built unknown)", (*Context)(nil).String())
}

func TestCurrentWithoutLdflags(t *testing.T) {
	assert.Equal(t, UnknownValue, Current().GetVersion())
}
