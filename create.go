package archive

import (
	"os"
	"path/filepath"

	"github.com/apex/log"
	"github.com/spf13/afero"
)

// DefaultMode is the permission of new archives written by Create.
const DefaultMode os.FileMode = 0644

// Options for Create.
type Options struct {
	// Fs is the file system used for both the source directory
	// and the archive, defaulting to the OS file system.
	Fs afero.Fs

	// Filter omits matching files, by default none are.
	Filter Filter

	// Method is the compression method, defaulting to Deflate.
	Method Method

	// Mode is the permission of the archive. When zero an existing
	// archive keeps its permission, and new ones get DefaultMode.
	// It is applied as-is, without the umask.
	Mode os.FileMode

	// Log is the logger, defaulting to log.Log.
	Log log.Interface
}

// Create writes a zip archive of every regular file beneath dir to path,
// with entries named relative to the parent of dir. The archive is written
// to a temporary file next to path and renamed into place on success, so an
// existing file at path is replaced only by a complete archive, and a failed
// call leaves nothing behind.
func Create(path, dir string, opts Options) (*Stats, error) {
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}

	if opts.Log == nil {
		opts.Log = log.Log
	}

	fs := opts.Fs
	ctx := opts.Log.WithFields(log.Fields{
		"archive": path,
		"source":  dir,
	})

	info, err := fs.Stat(dir)
	if err != nil {
		return nil, newError(ErrSourceNotFound, dir, err, "stat")
	}

	if !info.IsDir() {
		return nil, &Error{Kind: ErrSourceNotFound, Path: dir}
	}

	tmp, err := afero.TempFile(fs, filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return nil, newError(ErrDestinationUnwritable, path, err, "creating temporary file")
	}

	done := false
	defer func() {
		if done {
			return
		}
		tmp.Close()
		if err := fs.Remove(tmp.Name()); err != nil {
			ctx.WithError(err).Warn("removing temporary file")
		}
	}()

	a := NewZip(tmp).
		WithFs(fs).
		WithFilter(opts.Filter).
		WithMethod(opts.Method).
		WithLog(ctx)

	a.excludeFile(path)
	a.excludeFile(tmp.Name())

	if err := a.Open(); err != nil {
		return nil, err
	}

	err = a.AddDir(dir)

	if cerr := a.Close(); err == nil {
		err = cerr
	}

	if err != nil {
		return nil, err
	}

	if err := tmp.Close(); err != nil {
		return nil, newError(ErrWriteFailure, tmp.Name(), err, "closing temporary file")
	}

	mode := opts.Mode
	if mode == 0 {
		mode = DefaultMode
		if prev, err := fs.Stat(path); err == nil {
			mode = prev.Mode().Perm()
		}
	}

	if err := fs.Chmod(tmp.Name(), mode); err != nil {
		return nil, newError(ErrDestinationUnwritable, tmp.Name(), err, "chmod")
	}

	if err := fs.Rename(tmp.Name(), path); err != nil {
		return nil, newError(ErrDestinationUnwritable, path, err, "renaming temporary file")
	}

	done = true
	ctx.WithField("files", a.Stats().FilesAdded).Debug("created")

	return a.Stats(), nil
}
