package utils

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsDefaultIgnored(t *testing.T) {
	tests := []struct {
		path     string
		expected bool
	}{
		{"main.go", false},
		{"config/app.yaml", false},
		{".git/HEAD", true},
		{"web/node_modules/react/index.js", true},
		{"logs/app.log", true},
		{"notes.txt~", true},
		{"assets/logo.PNG", true},
		{"./docs/readme.md", false},
		{"distance.go", false},
		{"objects.go", false},
		{"binary.go", false},
		{"robin.txt", false},
		{"cmd/bin/tool", true},
		{"web/dist/app.js", true},
		{"src/obj/out.o", true},
		{"gitconfig.go", false},
		{"pngquant.go", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsDefaultIgnored(tt.path))
		})
	}
}

func TestExpandPaths(t *testing.T) {
	fs := afero.NewMemMapFs()
	for _, path := range []string{
		"/project/main.go",
		"/project/config/app.yaml",
		"/project/.git/HEAD",
		"/project/node_modules/lib/index.js",
		"/project/server.log",
		"/elsewhere/notes.log",
		"/project/distance.go",
		"/project/objects.go",
		"/project/bin/tool",
	} {
		require.NoError(t, afero.WriteFile(fs, path, []byte("x"), 0o644))
	}

	files, err := ExpandPaths(fs, []string{"/project", "/project/main.go", "/elsewhere/notes.log"})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"/elsewhere/notes.log",
		"/project/config/app.yaml",
		"/project/distance.go",
		"/project/main.go",
		"/project/objects.go",
	}, files)
}

func TestExpandPaths_MissingPath(t *testing.T) {
	_, err := ExpandPaths(afero.NewMemMapFs(), []string{"/nope"})
	assert.Error(t, err)
}
