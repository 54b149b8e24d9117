// Package driver orchestrates a workspace build: discovery, aggregator
// generation, and the parallel rewrite of every eligible module.
package driver

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"graft/internal/diag"
	"graft/internal/discover"
	"graft/internal/resource"
	"graft/internal/rewrite"
	"graft/internal/source"
)

// Options configures one build invocation.
type Options struct {
	// Root is the workspace directory to build.
	Root string
	// OutDir mirrors rewritten modules under a separate tree instead of
	// editing in place.
	OutDir string
	// InstrumentAll wraps every eligible export regardless of discovered
	// extension sets.
	InstrumentAll bool
	// DryRun skips all writes: aggregators, outputs, and cache entries.
	DryRun bool
	Jobs   int
	// MaxDiagnostics caps each file's bag. Zero means a sensible default.
	MaxDiagnostics int
	// Cache may be nil to disable the disk cache.
	Cache *DiskCache
	// Events receives per-file progress when non-nil.
	Events chan<- Event
}

// Event is one unit of build progress.
type Event struct {
	Path    string
	Done    int
	Total   int
	Changed bool
	Cached  bool
	Failed  bool
}

// FileResult is the outcome for one module. FSet resolves the spans in Bag.
type FileResult struct {
	Path    string
	Changed bool
	Cached  bool
	Bag     *diag.Bag
	FSet    *source.FileSet
	Err     error
}

// Result aggregates a whole build.
type Result struct {
	Index       *discover.Index
	Aggregators []string
	Files       []FileResult
	// WorkspaceBag holds diagnostics not tied to one rewritten module
	// (discovery, I/O); WorkspaceFSet resolves their spans.
	WorkspaceBag  *diag.Bag
	WorkspaceFSet *source.FileSet
	Changed       int
	Failed        int
}

// HasErrors reports whether any file failed or produced error diagnostics.
func (r *Result) HasErrors() bool {
	if r.Failed > 0 || r.WorkspaceBag.HasErrors() {
		return true
	}
	for _, f := range r.Files {
		if f.Bag != nil && f.Bag.HasErrors() {
			return true
		}
	}
	return false
}

// Build runs discovery and rewrites the workspace. Per-module failures are
// collected, not returned; the error covers infrastructure problems only.
func Build(ctx context.Context, opts Options) (*Result, error) {
	root, err := filepath.Abs(opts.Root)
	if err != nil {
		return nil, err
	}
	if opts.MaxDiagnostics <= 0 {
		opts.MaxDiagnostics = 64
	}
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	resolver := resource.NewResolver()
	cfg, err := resolver.ConfigFor(root)
	if err != nil {
		return nil, err
	}

	wsBag := diag.NewBag(opts.MaxDiagnostics)
	wsFSet := source.NewFileSetWithBase(root)
	result := &Result{WorkspaceBag: wsBag, WorkspaceFSet: wsFSet}

	index, err := discover.Scan(ctx, root, discover.Options{
		Suffix:   cfg.Discover.Suffix,
		Jobs:     jobs,
		Reporter: diag.BagReporter{Bag: wsBag},
		FileSet:  wsFSet,
	})
	if err != nil {
		return nil, err
	}
	result.Index = index

	aggDir := filepath.Join(aggregatorRoot(resolver, root), cfg.Discover.Dir)
	if !opts.DryRun && index.Len() > 0 {
		written, err := index.WriteAggregators(aggDir)
		if err != nil {
			return nil, err
		}
		result.Aggregators = written
	}

	files, err := listModules(root, cfg.Discover.Suffix)
	if err != nil {
		return nil, err
	}
	result.Files = make([]FileResult, len(files))

	var done atomic.Int64
	var writeMu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, max(len(files), 1)))
	for i, path := range files {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			fr := buildOne(resolver, index, opts, root, aggDir, path, &writeMu)
			result.Files[i] = fr

			if opts.Events != nil {
				opts.Events <- Event{
					Path:    fr.Path,
					Done:    int(done.Add(1)),
					Total:   len(files),
					Changed: fr.Changed,
					Cached:  fr.Cached,
					Failed:  fr.Err != nil,
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return result, err
	}

	for _, fr := range result.Files {
		if fr.Changed {
			result.Changed++
		}
		if fr.Err != nil {
			result.Failed++
		}
	}
	return result, nil
}

// buildOne rewrites a single module, consulting and feeding the cache.
// aggDir is the directory the build wrote aggregators to; modules in nested
// packages must point their imports there, not at their own package root.
func buildOne(resolver *resource.Resolver, index *discover.Index, opts Options, root, aggDir, path string, writeMu *sync.Mutex) FileResult {
	bag := diag.NewBag(opts.MaxDiagnostics)
	fr := FileResult{Path: path, Bag: bag, FSet: source.NewFileSetWithBase(root)}

	content, err := os.ReadFile(path)
	if err != nil {
		diag.ReportError(diag.BagReporter{Bag: bag}, diag.IOLoadFileError, source.Span{},
			"failed to read "+path+": "+err.Error())
		fr.Err = err
		return fr
	}

	key := cacheKey(content, opts.InstrumentAll, aggDir)
	var payload cachePayload
	if hit, _ := opts.Cache.Get(key, &payload); hit && setsStillValid(index, &payload) {
		fr.Cached = true
		fr.Changed = payload.Changed
		if payload.Changed {
			fr.Err = writeOutput(opts, root, path, payload.Output, writeMu)
		}
		return fr
	}

	rw := rewrite.New(resolver, rewrite.Options{
		HasExtensions: index.HasExtensions,
		InstrumentAll: opts.InstrumentAll,
		AggDir:        aggDir,
		Reporter:      diag.BagReporter{Bag: bag},
	})
	res, err := rw.Rewrite(fr.FSet, path, string(content))
	if err != nil {
		fr.Err = err
		return fr
	}
	fr.Changed = res.Changed

	if res.Changed {
		if werr := writeOutput(opts, root, path, []byte(res.Output), writeMu); werr != nil {
			fr.Err = werr
			return fr
		}
	}

	if !opts.DryRun {
		ids, hashes := recordSets(index, res.Records)
		_ = opts.Cache.Put(key, &cachePayload{
			Schema:    diskCacheSchemaVersion,
			Changed:   res.Changed,
			Output:    []byte(res.Output),
			IDs:       ids,
			SetHashes: hashes,
		})
	}
	return fr
}

// setsStillValid re-checks the extension sets a cached rewrite depended on.
func setsStillValid(index *discover.Index, payload *cachePayload) bool {
	if len(payload.IDs) != len(payload.SetHashes) {
		return false
	}
	for i, id := range payload.IDs {
		if index.SetHash(resource.ID(id)) != payload.SetHashes[i] {
			return false
		}
	}
	return true
}

func recordSets(index *discover.Index, records []rewrite.ExportRecord) (ids, hashes []string) {
	seen := make(map[resource.ID]bool, len(records))
	for _, rec := range records {
		if seen[rec.ID] {
			continue
		}
		seen[rec.ID] = true
		ids = append(ids, rec.ID.String())
		hashes = append(hashes, index.SetHash(rec.ID))
	}
	return ids, hashes
}

// writeOutput stores a rewritten module in place or mirrored under OutDir.
func writeOutput(opts Options, root, path string, output []byte, writeMu *sync.Mutex) error {
	if opts.DryRun {
		return nil
	}
	target := path
	if opts.OutDir != "" {
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		target = filepath.Join(opts.OutDir, rel)
	}
	writeMu.Lock()
	defer writeMu.Unlock()
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(target, output, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", target, err)
	}
	return nil
}

// aggregatorRoot anchors the aggregator directory at the package root when
// one exists above the build root.
func aggregatorRoot(resolver *resource.Resolver, root string) string {
	if pr, err := resolver.PackageRoot(filepath.Join(root, "_probe")); err == nil {
		return pr
	}
	return root
}

// ListModules returns the rewrite-eligible module paths under root, sorted.
// The workspace config decides which files count as extension modules.
func ListModules(root string) ([]string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	cfg, err := resource.NewResolver().ConfigFor(abs)
	if err != nil {
		cfg = resource.DefaultConfig()
	}
	return listModules(abs, cfg.Discover.Suffix)
}

func listModules(root, extensionSuffix string) ([]string, error) {
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
		name := d.Name()
		if !hasModuleExt(name) || strings.HasSuffix(name, ".d.ts") {
			return nil
		}
		// Extension modules register behavior; they are not rewritten.
		if isExtensionName(name, extensionSuffix) {
			return nil
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			return err
		}
		files = append(files, abs)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

func hasModuleExt(name string) bool {
	for _, ext := range []string{".js", ".jsx", ".ts", ".tsx"} {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

func isExtensionName(name, suffix string) bool {
	for _, ext := range []string{".js", ".jsx", ".ts", ".tsx"} {
		if strings.HasSuffix(name, suffix+ext) {
			return true
		}
	}
	return false
}
