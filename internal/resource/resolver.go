package resource

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
)

// Resolver derives canonical resource ids from filesystem state. Manifest
// names and config base roots are pure functions of file content, so both
// are memoized per file path. Safe for concurrent use.
type Resolver struct {
	mu    sync.Mutex
	names map[string]string // package.json path -> package name
	bases map[string]Config // graft.toml path -> decoded config
	dirs  map[string]dirInfo
}

type dirInfo struct {
	manifest string // nearest package.json, "" if none
	config   string // nearest graft.toml, "" if none
}

func NewResolver() *Resolver {
	return &Resolver{
		names: make(map[string]string),
		bases: make(map[string]Config),
		dirs:  make(map[string]dirInfo),
	}
}

// Resolve maps an absolute module path plus an export to its resource id.
// A default export omits the name. Failure to find a package manifest
// anywhere up the tree is fatal for the module being rewritten.
func (r *Resolver) Resolve(absPath, exportName string, isDefault bool) (ID, error) {
	if !filepath.IsAbs(absPath) {
		return "", fmt.Errorf("%s: resource path must be absolute", absPath)
	}
	dir := filepath.Dir(absPath)

	info, err := r.dirInfo(dir)
	if err != nil {
		return "", err
	}
	if info.manifest == "" {
		return "", fmt.Errorf("%s: no %s found in any parent directory", absPath, ManifestFileName)
	}

	pkg, err := r.packageName(info.manifest)
	if err != nil {
		return "", err
	}

	base := "."
	if info.config != "" {
		cfg, err := r.config(info.config)
		if err != nil {
			return "", err
		}
		base = cfg.Base
	}

	root := filepath.Join(filepath.Dir(info.manifest), base)
	rel, err := filepath.Rel(root, absPath)
	if err != nil || strings.HasPrefix(rel, "..") {
		// The file sits outside the configured base root; fall back to
		// the package directory so the id stays derivable.
		rel, err = filepath.Rel(filepath.Dir(info.manifest), absPath)
		if err != nil {
			return "", fmt.Errorf("%s: cannot relativize against %s: %w", absPath, root, err)
		}
	}

	if isDefault {
		exportName = ""
	}
	return Make(pkg, canonicalRelPath(rel), exportName), nil
}

// PackageRoot returns the directory of the nearest package.json above
// absPath. Aggregator modules and relative import paths are anchored to it.
func (r *Resolver) PackageRoot(absPath string) (string, error) {
	info, err := r.dirInfo(filepath.Dir(absPath))
	if err != nil {
		return "", err
	}
	if info.manifest == "" {
		return "", fmt.Errorf("%s: no %s found in any parent directory", absPath, ManifestFileName)
	}
	return filepath.Dir(info.manifest), nil
}

// ConfigFor returns the decoded graft.toml governing dir, or defaults when
// none exists up the tree.
func (r *Resolver) ConfigFor(dir string) (Config, error) {
	info, err := r.dirInfo(dir)
	if err != nil {
		return Config{}, err
	}
	if info.config == "" {
		return DefaultConfig(), nil
	}
	return r.config(info.config)
}

func (r *Resolver) dirInfo(dir string) (dirInfo, error) {
	r.mu.Lock()
	info, ok := r.dirs[dir]
	r.mu.Unlock()
	if ok {
		return info, nil
	}

	manifest, _, err := FindUp(dir, ManifestFileName)
	if err != nil {
		return dirInfo{}, err
	}
	config, _, err := FindUp(dir, ConfigFileName)
	if err != nil {
		return dirInfo{}, err
	}
	info = dirInfo{manifest: manifest, config: config}

	r.mu.Lock()
	r.dirs[dir] = info
	r.mu.Unlock()
	return info, nil
}

func (r *Resolver) packageName(manifestPath string) (string, error) {
	r.mu.Lock()
	name, ok := r.names[manifestPath]
	r.mu.Unlock()
	if ok {
		return name, nil
	}

	name, err := loadPackageName(manifestPath)
	if err != nil {
		return "", err
	}

	r.mu.Lock()
	r.names[manifestPath] = name
	r.mu.Unlock()
	return name, nil
}

func (r *Resolver) config(configPath string) (Config, error) {
	r.mu.Lock()
	cfg, ok := r.bases[configPath]
	r.mu.Unlock()
	if ok {
		return cfg, nil
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		return Config{}, err
	}

	r.mu.Lock()
	r.bases[configPath] = cfg
	r.mu.Unlock()
	return cfg, nil
}

// sourceExts are the extensions stripped from a resource path.
var sourceExts = []string{".tsx", ".jsx", ".mts", ".cts", ".ts", ".js", ".mjs", ".cjs"}

// canonicalRelPath normalizes an OS-relative path into the slash-separated,
// extension-free form resource ids carry. A trailing "index" segment is
// collapsed away so a directory module and its index file share an id.
func canonicalRelPath(rel string) string {
	rel = filepath.ToSlash(rel)
	for _, ext := range sourceExts {
		if strings.HasSuffix(rel, ext) {
			rel = rel[:len(rel)-len(ext)]
			break
		}
	}
	if rel == "index" {
		return ""
	}
	rel = strings.TrimSuffix(rel, "/index")
	if rel == "." {
		return ""
	}
	return rel
}
