package paths

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayout(t *testing.T) {
	l := New("public/", "./storage")

	assert.Equal(t, filepath.Join("public", "demo"), l.AppDir("demo"))
	assert.Equal(t, filepath.Join("public", "demo", "index.html"), l.ActivePath("demo"))
	assert.Equal(t, filepath.Join("storage", "demo.gz"), l.ArchivePath("demo"))
	assert.Equal(t, []string{"public", "storage"}, l.Roots())
}

func TestNameFromArchive(t *testing.T) {
	tests := []struct {
		base string
		name string
		ok   bool
	}{
		{"demo.gz", "demo", true},
		{"my.app.gz", "my.app", true},
		{".gz", "", false},
		{"demo.txt", "", false},
		{".demo.gz.01J.tmp", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.base, func(t *testing.T) {
			name, ok := NameFromArchive(tt.base)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.name, name)
		})
	}
}

func TestTempName(t *testing.T) {
	tmp := TempName(filepath.Join("public", "demo", "index.html"), "abc")

	assert.Equal(t, filepath.Join("public", "demo", ".index.html.abc.tmp"), tmp)
	assert.True(t, IsTemp(filepath.Base(tmp)))
	assert.False(t, IsTemp("index.html"))
}

func TestContains(t *testing.T) {
	root := filepath.Join("srv", "public")

	require.NoError(t, Contains(root, filepath.Join(root, "demo", "index.html")))
	assert.Error(t, Contains(root, filepath.Join(root, "..", "etc")))
	assert.Error(t, Contains(root, filepath.Join("srv", "storage", "demo.gz")))
}
