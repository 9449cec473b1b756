package archive

import (
	"bytes"
	"crypto/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

func randomBytes(t *testing.T, n int) []byte {
	t.Helper()
	b := make([]byte, n)
	_, err := rand.Read(b)
	require.NoError(t, err)
	return b
}

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", []byte{}},
		{"html", []byte("<html><body><h1>Hello from demo!</h1></body></html>")},
		{"repetitive", bytes.Repeat([]byte("<p>hi</p>\n"), 10000)},
		{"random", randomBytes(t, 256*1024)},
		{"binary zeros", make([]byte, 4096)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			src := filepath.Join(dir, "public", "demo", "index.html")
			arc := filepath.Join(dir, "storage", "demo.gz")
			out := filepath.Join(dir, "restored", "index.html")
			writeFile(t, src, tt.data)
			require.NoError(t, os.MkdirAll(filepath.Dir(arc), 0o755))
			require.NoError(t, os.MkdirAll(filepath.Dir(out), 0o755))

			stats, err := Compress(src, arc, DefaultLevel)
			require.NoError(t, err)
			assert.Equal(t, int64(len(tt.data)), stats.Original)
			assert.Positive(t, stats.Compressed)

			n, err := Verify(arc)
			require.NoError(t, err)
			assert.Equal(t, int64(len(tt.data)), n)

			n, err = Decompress(arc, out, 0)
			require.NoError(t, err)
			assert.Equal(t, int64(len(tt.data)), n)

			got, err := os.ReadFile(out)
			require.NoError(t, err)
			assert.True(t, bytes.Equal(tt.data, got), "content differs after round trip")
		})
	}
}

func TestCompressLevels(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "index.html")
	writeFile(t, src, bytes.Repeat([]byte("<div>glitch</div>"), 2000))

	fast, err := Compress(src, filepath.Join(dir, "fast.gz"), 1)
	require.NoError(t, err)
	best, err := Compress(src, filepath.Join(dir, "best.gz"), 9)
	require.NoError(t, err)

	assert.Less(t, fast.Ratio(), 0.1)
	assert.Less(t, best.Ratio(), 0.1)

	_, err = Compress(src, filepath.Join(dir, "bad.gz"), 42)
	assert.Error(t, err)
	assert.NoFileExists(t, filepath.Join(dir, "bad.gz"))
}

func TestCompressMissingSource(t *testing.T) {
	dir := t.TempDir()
	dst := filepath.Join(dir, "demo.gz")

	_, err := Compress(filepath.Join(dir, "nope.html"), dst, DefaultLevel)
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.False(t, IsCorrupt(err))
	assert.NoFileExists(t, dst)
}

func TestDecompressCorrupt(t *testing.T) {
	valid := func(t *testing.T, dir string) []byte {
		src := filepath.Join(dir, "src.html")
		writeFile(t, src, bytes.Repeat([]byte("<p>content</p>"), 5000))
		arc := filepath.Join(dir, "valid.gz")
		_, err := Compress(src, arc, DefaultLevel)
		require.NoError(t, err)
		data, err := os.ReadFile(arc)
		require.NoError(t, err)
		return data
	}

	tests := []struct {
		name   string
		mangle func(good []byte) []byte
	}{
		{"empty file", func([]byte) []byte { return nil }},
		{"not gzip", func([]byte) []byte { return []byte("<html>plain</html>") }},
		{"truncated mid-stream", func(good []byte) []byte { return good[:len(good)/2] }},
		{"missing trailer", func(good []byte) []byte { return good[:len(good)-4] }},
		{"bad checksum", func(good []byte) []byte {
			bad := append([]byte(nil), good...)
			bad[len(bad)-8] ^= 0xff
			return bad
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			arc := filepath.Join(dir, "demo.gz")
			writeFile(t, arc, tt.mangle(valid(t, dir)))

			outDir := filepath.Join(dir, "out")
			require.NoError(t, os.MkdirAll(outDir, 0o755))
			out := filepath.Join(outDir, "index.html")

			_, err := Decompress(arc, out, 0)
			require.Error(t, err)
			assert.True(t, IsCorrupt(err), "expected corrupt classification, got %v", err)

			assert.NoFileExists(t, out)
			entries, err := os.ReadDir(outDir)
			require.NoError(t, err)
			assert.Empty(t, entries, "no partial output should remain")

			_, err = Verify(arc)
			assert.True(t, IsCorrupt(err))

			assert.FileExists(t, arc, "corrupt archive must be preserved")
		})
	}
}

func TestDecompressKeepsExistingDestination(t *testing.T) {
	dir := t.TempDir()
	arc := filepath.Join(dir, "demo.gz")
	writeFile(t, arc, []byte{0x1f, 0x8b, 0x08, 0x00, 0x00})
	out := filepath.Join(dir, "index.html")
	writeFile(t, out, []byte("current"))

	_, err := Decompress(arc, out, 0)
	require.Error(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "current", string(data))
}

func TestDecompressEnforcesLimit(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "index.html")
	arc := filepath.Join(dir, "demo.gz")
	data := bytes.Repeat([]byte("a"), 4096)
	writeFile(t, src, data)
	_, err := Compress(src, arc, DefaultLevel)
	require.NoError(t, err)

	t.Run("at limit", func(t *testing.T) {
		out := filepath.Join(t.TempDir(), "index.html")
		n, err := Decompress(arc, out, int64(len(data)))
		require.NoError(t, err)
		assert.Equal(t, int64(len(data)), n)
	})

	t.Run("past limit", func(t *testing.T) {
		outDir := t.TempDir()
		out := filepath.Join(outDir, "index.html")
		_, err := Decompress(arc, out, int64(len(data))-1)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrCorrupt)
		assert.True(t, IsCorrupt(err))

		assert.NoFileExists(t, out)
		entries, err := os.ReadDir(outDir)
		require.NoError(t, err)
		assert.Empty(t, entries, "no partial output should remain")
	})
}

func TestSniff(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "index.html")
	writeFile(t, src, []byte("<html></html>"))
	arc := filepath.Join(dir, "demo.gz")
	_, err := Compress(src, arc, DefaultLevel)
	require.NoError(t, err)

	assert.NoError(t, Sniff(arc))

	err = Sniff(src)
	require.Error(t, err)
	assert.True(t, IsCorrupt(err))
	assert.True(t, strings.Contains(err.Error(), "detected"))

	err = Sniff(filepath.Join(dir, "missing.gz"))
	require.Error(t, err)
	assert.False(t, IsCorrupt(err))
}
