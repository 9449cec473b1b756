package archive

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"

	"github.com/GriffinCanCode/glitchly/backend/internal/shared/utils"
)

const (
	// DefaultLevel lets the compressor pick its balanced setting
	DefaultLevel = gzip.DefaultCompression

	gzipMIME = "application/gzip"
	filePerm = 0o644
)

// ErrCorrupt marks an archive that cannot be decoded
var ErrCorrupt = errors.New("corrupt archive")

// Error records the codec operation and file that failed
type Error struct {
	Op   string
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("archive %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Stats describes a completed compression
type Stats struct {
	Original   int64
	Compressed int64
}

// Ratio returns compressed/original, or 0 for empty input
func (s Stats) Ratio() float64 {
	if s.Original == 0 {
		return 0
	}
	return float64(s.Compressed) / float64(s.Original)
}

// Compress streams src into a gzip archive at dst.
//
// It returns only after the gzip trailer has been written and the archive
// has been fsynced and renamed into place.
func Compress(src, dst string, level int) (Stats, error) {
	in, err := os.Open(src)
	if err != nil {
		return Stats{}, &Error{Op: "compress", Path: src, Err: err}
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return Stats{}, &Error{Op: "compress", Path: src, Err: err}
	}

	n, err := utils.WriteFileAtomic(dst, filePerm, func(w io.Writer) (int64, error) {
		zw, err := gzip.NewWriterLevel(w, level)
		if err != nil {
			return 0, err
		}
		zw.Name = filepath.Base(src)
		zw.ModTime = info.ModTime()

		n, err := io.Copy(zw, in)
		if err != nil {
			zw.Close()
			return n, err
		}
		// Close flushes the final block and writes the CRC/size trailer
		return n, zw.Close()
	})
	if err != nil {
		return Stats{}, &Error{Op: "compress", Path: dst, Err: err}
	}

	out, err := os.Stat(dst)
	if err != nil {
		return Stats{}, &Error{Op: "compress", Path: dst, Err: err}
	}

	return Stats{Original: n, Compressed: out.Size()}, nil
}

// Decompress restores the archive at src into dst.
//
// dst is replaced atomically once the whole stream, including the CRC
// trailer, has been consumed; on failure dst is untouched. An archive that
// expands past limit bytes is rejected as corrupt; limit <= 0 disables the cap.
func Decompress(src, dst string, limit int64) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, &Error{Op: "decompress", Path: src, Err: err}
	}
	defer in.Close()

	zr, err := newReader(in)
	if err != nil {
		return 0, &Error{Op: "decompress", Path: src, Err: err}
	}
	defer zr.Close()

	n, err := utils.WriteFileAtomic(dst, filePerm, func(w io.Writer) (int64, error) {
		if limit <= 0 {
			return io.Copy(w, zr)
		}
		n, err := io.Copy(w, io.LimitReader(zr, limit+1))
		if err == nil && n > limit {
			err = fmt.Errorf("%w: expands past %d bytes", ErrCorrupt, limit)
		}
		return n, err
	})
	if err != nil {
		return n, &Error{Op: "decompress", Path: src, Err: classify(err)}
	}

	return n, nil
}

// Verify reads the archive to the end, which checks the gzip CRC and length
// trailer, and returns the decompressed size.
func Verify(path string) (int64, error) {
	in, err := os.Open(path)
	if err != nil {
		return 0, &Error{Op: "verify", Path: path, Err: err}
	}
	defer in.Close()

	zr, err := newReader(in)
	if err != nil {
		return 0, &Error{Op: "verify", Path: path, Err: err}
	}
	defer zr.Close()

	n, err := io.Copy(io.Discard, zr)
	if err != nil {
		return n, &Error{Op: "verify", Path: path, Err: classify(err)}
	}

	return n, nil
}

// Sniff checks the file's magic bytes before any decoding is attempted
func Sniff(path string) error {
	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return &Error{Op: "sniff", Path: path, Err: err}
	}
	if !mtype.Is(gzipMIME) {
		return &Error{Op: "sniff", Path: path, Err: fmt.Errorf("%w: detected %s", ErrCorrupt, mtype.String())}
	}
	return nil
}

// IsCorrupt reports whether err means the archive content is unusable, as
// opposed to the file being unreadable.
func IsCorrupt(err error) bool {
	if err == nil {
		return false
	}
	var flateErr flate.CorruptInputError
	return errors.Is(err, ErrCorrupt) ||
		errors.Is(err, gzip.ErrHeader) ||
		errors.Is(err, gzip.ErrChecksum) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.As(err, &flateErr)
}

func newReader(r io.Reader) (*gzip.Reader, error) {
	zr, err := gzip.NewReader(bufio.NewReader(r))
	if err != nil {
		return nil, classify(err)
	}
	return zr, nil
}

// classify folds decoder failures into ErrCorrupt; an empty archive surfaces
// from the gzip reader as a bare io.EOF.
func classify(err error) error {
	if errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: empty stream", ErrCorrupt)
	}
	if IsCorrupt(err) && !errors.Is(err, ErrCorrupt) {
		return fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	return err
}
