package archive

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/apex/log"
	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

// Format is the kind of archive format.
type Format int

// Formats supported.
const (
	Zip Format = iota
)

// Transformer is the interface used to transform files.
type Transformer interface {
	// Transform a file or its meta-data. Note that the file info
	// is accepted as-is, so if you alter the reader contents
	// you must provide an appropriate .Size and so on.
	Transform(io.Reader, os.FileInfo) (io.Reader, os.FileInfo)
}

// TransformFunc implements the Transformer interface.
type TransformFunc func(io.Reader, os.FileInfo) (io.Reader, os.FileInfo)

// Transform implementation.
func (f TransformFunc) Transform(r io.Reader, i os.FileInfo) (io.Reader, os.FileInfo) {
	return f(r, i)
}

// Stats for an archive.
type Stats struct {
	FilesFiltered    int64
	DirsFiltered     int64
	FilesSkipped     int64
	FilesAdded       int64
	SizeUncompressed int64
}

// New returns a new archive writer.
func New(format Format, w io.Writer) *Archive {
	switch format {
	case Zip:
		return &Archive{
			format: format,
			dst:    w,
			fs:     afero.NewOsFs(),
			method: Deflate,
			log:    log.Log,
		}
	default:
		panic("unsupported format")
	}
}

// NewZip returns a new zip archive.
func NewZip(w io.Writer) *Archive {
	return New(Zip, w)
}

// Archive wraps a format's writer to provide conveniences.
type Archive struct {
	format    Format
	dst       io.Writer
	fs        afero.Fs
	filter    Filter
	transform Transformer
	method    Method
	exclude   map[string]bool
	excluded  []os.FileInfo
	log       log.Interface
	w         Writer
	stats     Stats
}

// Stats returns stats about the archive.
func (a *Archive) Stats() *Stats {
	return &a.stats
}

// WithFilter adds a filter.
func (a *Archive) WithFilter(f Filter) *Archive {
	a.filter = f
	return a
}

// WithTransform adds a transform.
func (a *Archive) WithTransform(t Transformer) *Archive {
	a.transform = t
	return a
}

// WithFs sets the file system directories are read from,
// defaulting to the OS file system.
func (a *Archive) WithFs(fs afero.Fs) *Archive {
	a.fs = fs
	return a
}

// WithMethod sets the compression method, defaulting to Deflate.
// It must be called before Open.
func (a *Archive) WithMethod(m Method) *Archive {
	a.method = m
	return a
}

// WithLog sets the logger.
func (a *Archive) WithLog(l log.Interface) *Archive {
	a.log = l
	return a
}

// excludeFile omits the file at path from AddDir. It is matched
// by absolute path and, when it exists, by identity so links or
// mounts leading into the walked tree are covered too.
func (a *Archive) excludeFile(path string) {
	if abs, err := filepath.Abs(path); err == nil {
		if a.exclude == nil {
			a.exclude = make(map[string]bool)
		}
		a.exclude[abs] = true
	}

	if info, err := a.fs.Stat(path); err == nil {
		a.excluded = append(a.excluded, info)
	}
}

// isExcluded reports whether the file at abs was excluded.
func (a *Archive) isExcluded(abs string, info os.FileInfo) bool {
	if a.exclude[abs] {
		return true
	}

	for _, ex := range a.excluded {
		if os.SameFile(ex, info) {
			return true
		}
	}

	return false
}

// Open the archive.
func (a *Archive) Open() error {
	a.log.WithField("method", a.method).Debug("open")

	switch a.format {
	case Zip:
		a.w = newZipWriter(a.dst, a.method)
	}

	if err := a.w.Open(); err != nil {
		return newError(ErrWriteFailure, "", err, "opening archive")
	}

	return nil
}

// AddDir adds every regular file beneath root. Entries are named
// relative to the parent of root, so "src/a/b.txt" is stored as
// "src/a/b.txt" even when adding "/path/to/src". Directories are
// traversed but not stored, and symlinks or other special files
// beneath it are skipped rather than followed.
func (a *Archive) AddDir(root string) error {
	root = filepath.Clean(root)

	abs, err := filepath.Abs(root)
	if err != nil {
		return newError(ErrSourceNotFound, root, err, "resolving path")
	}

	info, err := a.fs.Stat(root)
	if err != nil {
		return newError(ErrSourceNotFound, root, err, "stat")
	}

	if !info.IsDir() {
		return newError(ErrSourceNotFound, root, errors.New("not a directory"), "")
	}

	prefix := filepath.Base(abs)
	if prefix == string(filepath.Separator) || prefix == "." {
		prefix = ""
	}

	// a trailing separator resolves root when it is a symlink
	walkRoot := root
	if !strings.HasSuffix(walkRoot, string(filepath.Separator)) {
		walkRoot += string(filepath.Separator)
	}

	return afero.Walk(a.fs, walkRoot, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return newError(ErrReadFailure, path, err, "walking")
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return newError(ErrReadFailure, path, err, "relative path")
		}

		if rel == "." {
			return nil
		}

		if a.filter != nil && a.filter.Match(withName(info, rel)) {
			a.log.Debugf("filtered %s – %d", rel, info.Size())

			if info.IsDir() {
				atomic.AddInt64(&a.stats.DirsFiltered, 1)
				return filepath.SkipDir
			}

			atomic.AddInt64(&a.stats.FilesFiltered, 1)
			return nil
		}

		if info.IsDir() {
			return nil
		}

		if !info.Mode().IsRegular() {
			a.log.Debugf("skipped %s – %s", rel, info.Mode())
			atomic.AddInt64(&a.stats.FilesSkipped, 1)
			return nil
		}

		if a.isExcluded(filepath.Join(abs, rel), info) {
			a.log.Debugf("excluded %s", rel)
			return nil
		}

		return a.addFile(path, withName(info, filepath.Join(prefix, rel)))
	})
}

// addFile copies the file at path into the archive as info.
func (a *Archive) addFile(path string, info os.FileInfo) error {
	f, err := a.fs.Open(path)
	if err != nil {
		return newError(ErrReadFailure, path, err, "opening file")
	}
	defer f.Close()

	src := &sourceReader{r: f}

	var r io.Reader = src
	if a.transform != nil {
		r, info = a.transform.Transform(r, info)
	}

	w, err := a.Add(info)
	if err != nil {
		return err
	}

	if _, err := io.Copy(w, r); err != nil {
		if src.err != nil {
			return newError(ErrReadFailure, path, src.err, "reading file")
		}
		return newError(ErrWriteFailure, path, err, "copying file")
	}

	atomic.AddInt64(&a.stats.FilesAdded, 1)
	atomic.AddInt64(&a.stats.SizeUncompressed, info.Size())

	return nil
}

// Add a file, returning the writer for its contents.
func (a *Archive) Add(info os.FileInfo) (io.Writer, error) {
	a.log.Debugf("add %s: size=%d mode=%s", info.Name(), info.Size(), info.Mode())

	w, err := a.w.Add(info)
	if err != nil {
		return nil, newError(ErrWriteFailure, info.Name(), err, "adding file")
	}

	return w, nil
}

// Close the archive.
func (a *Archive) Close() error {
	a.log.WithFields(log.Fields{
		"files_filtered":    a.stats.FilesFiltered,
		"dirs_filtered":     a.stats.DirsFiltered,
		"files_skipped":     a.stats.FilesSkipped,
		"files_added":       a.stats.FilesAdded,
		"size_uncompressed": humanize.Bytes(uint64(a.stats.SizeUncompressed)),
	}).Debug("stats")

	a.log.Debug("close")

	if err := a.w.Close(); err != nil {
		return newError(ErrWriteFailure, "", err, "closing archive")
	}

	return nil
}

// sourceReader records the first read error so copy
// failures can be told apart from write failures.
type sourceReader struct {
	r   io.Reader
	err error
}

// Read implementation.
func (s *sourceReader) Read(b []byte) (int, error) {
	n, err := s.r.Read(b)
	if err != nil && err != io.EOF && s.err == nil {
		s.err = err
	}
	return n, err
}
