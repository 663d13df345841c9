package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	t.Setenv("VTX_TEST_DIR", "/srv/vtx")

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: ""},
		{name: "plain path untouched", in: "/var/lib/vtx.db", want: "/var/lib/vtx.db"},
		{name: "tilde", in: "~/data/vtx.db", want: filepath.Join(home, "data", "vtx.db")},
		{name: "bare tilde", in: "~", want: home},
		{name: "env var", in: "$VTX_TEST_DIR/vtx.db", want: "/srv/vtx/vtx.db"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExpandPath(tt.in))
		})
	}
}

func TestDefaultDatabasePath(t *testing.T) {
	path := DefaultDatabasePath()
	assert.True(t, filepath.IsAbs(path) || path == "vtx.db")
	assert.Contains(t, path, "vtx")
}
