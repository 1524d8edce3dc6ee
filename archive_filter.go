package archive

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/denormal/go-gitignore"
	"github.com/pkg/errors"
)

// Filter is the interface used to filter on files. The info
// name is the path relative to the directory being added.
type Filter interface {
	// Match on the given file info, if the function
	// returns true then the file is omitted.
	Match(os.FileInfo) bool
}

// FilterFunc implements the Filter interface.
type FilterFunc func(os.FileInfo) bool

// Match implementation.
func (f FilterFunc) Match(i os.FileInfo) bool {
	return f(i)
}

// FilterAny omits files matched by any of the given filters.
func FilterAny(filters ...Filter) Filter {
	return FilterFunc(func(info os.FileInfo) bool {
		for _, f := range filters {
			if f.Match(info) {
				return true
			}
		}
		return false
	})
}

// FilterDotfiles filters dotfiles, and anything within a dot directory.
var FilterDotfiles = FilterFunc(func(info os.FileInfo) bool {
	for _, s := range strings.Split(filepath.ToSlash(info.Name()), "/") {
		if isDot(s) {
			return true
		}
	}
	return false
})

// isDot returns true if there's a leading dot.
func isDot(s string) bool {
	return len(s) > 0 && s[0] == '.'
}

// FilterPatterns filters on the gitignore patterns read from r.
func FilterPatterns(r io.Reader) (Filter, error) {
	filter := gitignore.New(r, ".", func(e gitignore.Error) bool {
		return true
	})

	return FilterFunc(func(info os.FileInfo) bool {
		if m := filter.Relative(info.Name(), info.IsDir()); m != nil {
			return m.Ignore()
		}
		return false
	}), nil
}

// FilterPatternFiles filters from the given files, ignoring
// any which do not exist, combining the patterns in order.
func FilterPatternFiles(files ...string) (Filter, error) {
	var r io.Reader = strings.NewReader("")

	for _, path := range files {
		b, err := os.ReadFile(path)

		if os.IsNotExist(err) {
			continue
		}

		if err != nil {
			return nil, errors.Wrapf(err, "reading %s", path)
		}

		r = io.MultiReader(r,
			strings.NewReader(fmt.Sprintf("# %s\n", path)),
			bytes.NewReader(b),
			strings.NewReader("\n"))
	}

	return FilterPatterns(r)
}
