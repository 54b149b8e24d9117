// Package discover scans a workspace for extension modules and generates
// the per-resource aggregator modules the rewriter's imports point at.
package discover

import (
	"context"
	"io/fs"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"graft/internal/diag"
	"graft/internal/parser"
	"graft/internal/source"
)

// Options tunes one scan.
type Options struct {
	// Suffix marks extension modules; default ".extension".
	Suffix   string
	Jobs     int
	Reporter diag.Reporter
	// FileSet receives the descriptor modules so reported spans stay
	// resolvable by the caller. Nil means a scan-private set.
	FileSet *source.FileSet
}

// Scan walks root for extension modules, parses their descriptors in
// parallel, and builds the index the rewriter consults. Broken descriptor
// modules are reported and skipped; only I/O and context failures abort.
func Scan(ctx context.Context, root string, opts Options) (*Index, error) {
	if opts.Suffix == "" {
		opts.Suffix = ".extension"
	}
	if opts.Reporter == nil {
		opts.Reporter = diag.NopReporter{}
	}
	files, err := listExtensionModules(root, opts.Suffix)
	if err != nil {
		return nil, err
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	results := make([]*Extension, len(files))
	fset := opts.FileSet
	if fset == nil {
		fset = source.NewFileSetWithBase(root)
	}
	var fsetMu sync.Mutex
	var repMu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, max(len(files), 1)))
	for i, path := range files {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			fsetMu.Lock()
			fileID, err := fset.Load(path)
			var file *source.File
			if err == nil {
				file = fset.Get(fileID)
			}
			fsetMu.Unlock()
			if err != nil {
				repMu.Lock()
				diag.ReportError(opts.Reporter, diag.IOLoadFileError, source.Span{},
					"failed to load "+path+": "+err.Error())
				repMu.Unlock()
				return nil
			}

			bag := diag.NewBag(32)
			mod := parser.Parse(file, parser.Options{Reporter: diag.BagReporter{Bag: bag}})

			repMu.Lock()
			for _, d := range bag.Items() {
				opts.Reporter.Report(d.Code, d.Severity, d.Primary, d.Message, d.Notes)
			}
			if !bag.HasErrors() {
				if ext, ok := parseDescriptor(mod, path, opts.Reporter); ok {
					results[i] = &ext
				}
			}
			repMu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ix := newIndex(root)
	for _, ext := range results {
		if ext != nil {
			ix.add(*ext)
		}
	}
	return ix, nil
}

// listExtensionModules returns the sorted extension-module paths under
// root, skipping dependency trees, generated output, and dot directories.
func listExtensionModules(root, suffix string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if path != root && (name == "node_modules" || strings.HasPrefix(name, ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		if isExtensionModule(d.Name(), suffix) {
			abs, err := filepath.Abs(path)
			if err != nil {
				return err
			}
			files = append(files, abs)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}
