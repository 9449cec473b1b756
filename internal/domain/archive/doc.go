// Package archive implements the codec that turns an app's content file into
// a cold gzip archive and back.
//
// All operations stream; memory use does not depend on content size. Output
// is always written through a temp sibling and renamed into place only after
// the stream has been finalized and fsynced, so neither the archive nor the
// restored content file is ever observable half-written.
//
// Corruption (bad magic, bad CRC, truncated stream, invalid deflate data) is
// distinguished from plain I/O failure via IsCorrupt.
package archive
