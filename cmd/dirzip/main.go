package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/apex/log"
	"github.com/apex/log/handlers/cli"
	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"

	archive "github.com/tj/go-dirzip"
	"github.com/tj/go-dirzip/internal/config"
)

// usageError is returned for bad invocations, exiting with 2.
type usageError struct {
	error
}

// stringsFlag is a repeatable string flag.
type stringsFlag []string

// String implementation.
func (s *stringsFlag) String() string {
	return strings.Join(*s, ",")
}

// Set implementation.
func (s *stringsFlag) Set(v string) error {
	*s = append(*s, v)
	return nil
}

func main() {
	log.SetHandler(cli.New(os.Stderr))

	if err := run(os.Args[1:]); err != nil {
		log.WithError(err).Error("dirzip")
		if _, ok := err.(usageError); ok {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

// run parses args and creates the archive.
func run(args []string) error {
	fs := flag.NewFlagSet("dirzip", flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "Usage:")
		fmt.Fprintln(fs.Output(), "  dirzip [flags] <output.zip> <source-dir>")
		fmt.Fprintln(fs.Output(), "  dirzip [flags] --output <output.zip> --source <source-dir>")
		fmt.Fprintln(fs.Output())
		fs.PrintDefaults()
	}

	var ignore stringsFlag
	configPath := fs.String("config", "", "YAML config `file`")
	output := fs.String("output", "", "archive `path`")
	source := fs.String("source", "", "source `directory`")
	method := fs.String("method", "", "compression method: deflate, store or zstd")
	noDotfiles := fs.Bool("no-dotfiles", false, "omit dotfiles")
	verbose := fs.Bool("verbose", false, "enable debug logging")
	fs.Var(&ignore, "ignore", "gitignore-style pattern `file`, may be repeated")

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil
		}
		return usageError{err}
	}

	c := config.Default()
	if *configPath != "" {
		if err := config.Load(*configPath, &c); err != nil {
			return usageError{err}
		}
	}

	// flags given explicitly take precedence over the config file
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "output":
			c.Output = *output
		case "source":
			c.Source = *source
		case "method":
			c.Method = *method
		case "no-dotfiles":
			c.Dotfiles = !*noDotfiles
		case "verbose":
			c.Verbose = *verbose
		case "ignore":
			c.Ignore = append(c.Ignore, ignore...)
		}
	})

	switch fs.NArg() {
	case 0:
	case 2:
		c.Output, c.Source = fs.Arg(0), fs.Arg(1)
	default:
		fs.Usage()
		return usageError{errors.New("expected <output.zip> <source-dir>")}
	}

	if err := c.Validate(); err != nil {
		fs.Usage()
		return usageError{err}
	}

	if c.Verbose {
		log.SetLevel(log.DebugLevel)
	}

	opts, err := options(c)
	if err != nil {
		return usageError{err}
	}

	stats, err := archive.Create(c.Output, c.Source, opts)
	if err != nil {
		return err
	}

	log.Infof("wrote %s (%d files, %s uncompressed)",
		c.Output,
		stats.FilesAdded,
		humanize.Bytes(uint64(stats.SizeUncompressed)))

	return nil
}

// options returns the archive options for c.
func options(c config.Config) (archive.Options, error) {
	var opts archive.Options

	m, err := archive.ParseMethod(c.Method)
	if err != nil {
		return opts, err
	}
	opts.Method = m

	var filters []archive.Filter

	if !c.Dotfiles {
		filters = append(filters, archive.FilterDotfiles)
	}

	if len(c.Ignore) > 0 {
		var files []string
		for _, f := range c.Ignore {
			files = append(files, filepath.Clean(f))
		}

		f, err := archive.FilterPatternFiles(files...)
		if err != nil {
			return opts, err
		}
		filters = append(filters, f)
	}

	if len(filters) > 0 {
		opts.Filter = archive.FilterAny(filters...)
	}

	return opts, nil
}
