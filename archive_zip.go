package archive

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"
)

// Method is the compression method used for zip entries.
type Method int

// Methods supported, Deflate is the default.
const (
	Deflate Method = iota
	Store
	Zstd
)

// zipMethod returns the zip method id.
func (m Method) zipMethod() uint16 {
	switch m {
	case Store:
		return zip.Store
	case Zstd:
		return zstd.ZipMethodWinZip
	default:
		return zip.Deflate
	}
}

// String implementation.
func (m Method) String() string {
	switch m {
	case Store:
		return "store"
	case Deflate:
		return "deflate"
	case Zstd:
		return "zstd"
	default:
		return "unknown"
	}
}

// ParseMethod returns the method named s.
func ParseMethod(s string) (Method, error) {
	switch s {
	case "store":
		return Store, nil
	case "deflate", "":
		return Deflate, nil
	case "zstd":
		return Zstd, nil
	default:
		return 0, errors.Errorf("unknown compression method %q", s)
	}
}

// Writer is the writer interface for archive formats.
type Writer interface {
	Open() error
	Close() error
	Add(os.FileInfo) (io.Writer, error)
}

// newZipWriter returns a new zip writer.
func newZipWriter(w io.Writer, method Method) *zipWriter {
	return &zipWriter{w: w, method: method}
}

// zipWriter is the zip implementation of archive.Writer.
type zipWriter struct {
	w      io.Writer
	method Method
	zip    *zip.Writer
}

// Open implementation.
func (w *zipWriter) Open() error {
	w.zip = zip.NewWriter(w.w)

	w.zip.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, flate.DefaultCompression)
	})

	w.zip.RegisterCompressor(zstd.ZipMethodWinZip, zstd.ZipCompressor())

	return nil
}

// Close implementation.
func (w *zipWriter) Close() error {
	return w.zip.Close()
}

// Add implementation.
func (w *zipWriter) Add(info os.FileInfo) (io.Writer, error) {
	h, err := zip.FileInfoHeader(info)
	if err != nil {
		return nil, err
	}

	h.Name = filepath.ToSlash(info.Name())
	h.Method = w.method.zipMethod()

	return w.zip.CreateHeader(h)
}
