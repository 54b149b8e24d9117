package driver

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/vmihailenco/msgpack/v5"
)

// Bump when the payload format changes.
const diskCacheSchemaVersion uint16 = 1

// Digest is a sha256 cache key.
type Digest [32]byte

// DiskCache stores rewrite results keyed by source content so clean files
// skip the parse-and-splice pass on rebuilds. Thread-safe.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// cachePayload is one cached rewrite outcome. IDs and SetHashes record the
// extension sets the output was produced against; a later build revalidates
// them so a module is reprocessed when any of its sets changed.
type cachePayload struct {
	Schema  uint16
	Changed bool
	Output  []byte

	IDs       []string
	SetHashes []string
}

// OpenDiskCache initializes the cache at the standard user location.
func OpenDiskCache(app string) (*DiskCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	return OpenDiskCacheAt(filepath.Join(base, app))
}

// OpenDiskCacheAt uses an explicit directory, for tests and --cache-dir.
func OpenDiskCacheAt(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

// cacheKey digests everything outside the extension sets that shapes a
// rewrite: the source text, the instrumentation mode, and the aggregator
// directory the output's relative imports were rendered against.
func cacheKey(content []byte, instrumentAll bool, aggDir string) Digest {
	h := sha256.New()
	h.Write(content)
	mode := byte(0)
	if instrumentAll {
		mode = 1
	}
	h.Write([]byte{mode, byte(diskCacheSchemaVersion), byte(diskCacheSchemaVersion >> 8)})
	h.Write([]byte(aggDir))
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}

func (c *DiskCache) pathFor(key Digest) string {
	return filepath.Join(c.dir, "rw", hex.EncodeToString(key[:])+".mp")
}

// Put writes a payload atomically.
func (c *DiskCache) Put(key Digest, payload *cachePayload) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(f.Name())

	if err := msgpack.NewEncoder(f).Encode(payload); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), p)
}

// Get reads a payload. A missing or stale-schema entry is a plain miss.
func (c *DiskCache) Get(key Digest, out *cachePayload) (bool, error) {
	if c == nil {
		return false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer f.Close()

	if err := msgpack.NewDecoder(f).Decode(out); err != nil {
		return false, nil
	}
	if out.Schema != diskCacheSchemaVersion {
		return false, nil
	}
	return true, nil
}
