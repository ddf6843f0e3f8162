package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeHandle(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"@alice", "alice"},
		{"@Alice", "alice"},
		{"  @@BoB_99 ", "bob_99"},
		{"carol", "carol"},
		{"@", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeHandle(tt.in), tt.in)
	}
}

func TestDisplayHandle(t *testing.T) {
	var missing *User
	assert.Equal(t, "друг", missing.DisplayHandle("друг"))
	assert.Equal(t, "друг", (&User{}).DisplayHandle("друг"))
	assert.Equal(t, "alice", (&User{Username: "alice"}).DisplayHandle("друг"))
}
