package paths

import (
	"fmt"
	"path/filepath"
	"strings"
)

// File names inside the layout
const (
	// IndexFile is the single content file of an active app
	IndexFile = "index.html"

	// ArchiveExt is appended to the app name for its cold archive
	ArchiveExt = ".gz"

	// TempPrefix and TempSuffix bracket in-flight files written beside their target
	TempPrefix = "."
	TempSuffix = ".tmp"

	// TempPattern matches temp files anywhere below a root (doublestar syntax)
	TempPattern = "**/" + TempPrefix + "*" + TempSuffix
)

// Layout resolves on-disk locations for apps
type Layout struct {
	PublicRoot  string
	StorageRoot string
}

// New returns a layout rooted at the given directories
func New(publicRoot, storageRoot string) Layout {
	return Layout{
		PublicRoot:  filepath.Clean(publicRoot),
		StorageRoot: filepath.Clean(storageRoot),
	}
}

// AppDir returns the active directory of an app
func (l Layout) AppDir(name string) string {
	return filepath.Join(l.PublicRoot, name)
}

// ActivePath returns <public-root>/<name>/index.html
func (l Layout) ActivePath(name string) string {
	return filepath.Join(l.PublicRoot, name, IndexFile)
}

// ArchivePath returns <storage-root>/<name>.gz
func (l Layout) ArchivePath(name string) string {
	return filepath.Join(l.StorageRoot, name+ArchiveExt)
}

// Roots returns every directory that must exist before serving
func (l Layout) Roots() []string {
	return []string{l.PublicRoot, l.StorageRoot}
}

// NameFromArchive extracts the app name from an archive file name.
// The second result is false for files that are not archives.
func NameFromArchive(base string) (string, bool) {
	if !strings.HasSuffix(base, ArchiveExt) || strings.HasPrefix(base, TempPrefix) {
		return "", false
	}
	name := strings.TrimSuffix(base, ArchiveExt)
	return name, name != ""
}

// TempName builds a hidden temp file name for target with a unique suffix
func TempName(target, unique string) string {
	dir, base := filepath.Split(target)
	return filepath.Join(dir, TempPrefix+base+"."+unique+TempSuffix)
}

// IsTemp reports whether base looks like a file produced by TempName
func IsTemp(base string) bool {
	return strings.HasPrefix(base, TempPrefix) && strings.HasSuffix(base, TempSuffix)
}

// Contains checks that path stays inside root after cleaning
func Contains(root, path string) error {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return fmt.Errorf("path %q escapes root %q: %w", path, root, err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(rel) {
		return fmt.Errorf("path %q escapes root %q", path, root)
	}
	return nil
}
