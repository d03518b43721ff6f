package metasprite

import (
	"context"
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"
)

// Open reads and parses an .ase or .aseprite file.
func Open(path string, opts ...Option) (*File, error) {
	data, err := readAsepriteFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data, opts...)
}

func readAsepriteFile(path string) ([]byte, error) {
	ext := filepath.Ext(path)
	if ext != ".aseprite" && ext != ".ase" {
		return nil, fmt.Errorf("unsupported file type: %s", ext)
	}
	return os.ReadFile(path)
}

// OpenMany parses several files concurrently. Results are in the order of
// paths. The first failure cancels the remaining parses.
//
// Example:
//
//	files, err := metasprite.OpenMany(ctx, []string{"hero.ase", "slime.ase"})
//	if err != nil {
//		return err
//	}
func OpenMany(ctx context.Context, paths []string, opts ...Option) ([]*File, error) {
	if len(paths) == 0 {
		return nil, nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	results := make([]*File, len(paths))
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			file, err := Open(path, opts...)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			results[i] = file
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

type cacheKey struct {
	path string
	sum  [sha256.Size]byte
}

// Loader parses files through an LRU cache keyed by path and content, so
// an edited file is parsed again while an unchanged one is shared.
// Cached Files are read-only and safe to share between goroutines.
type Loader struct {
	cache *lru.Cache[cacheKey, *File]
	opts  []Option
}

// NewLoader creates a Loader holding up to size parsed files.
func NewLoader(size int, opts ...Option) (*Loader, error) {
	cache, err := lru.New[cacheKey, *File](size)
	if err != nil {
		return nil, fmt.Errorf("error creating file cache: %w", err)
	}
	return &Loader{cache: cache, opts: opts}, nil
}

// Load returns the parsed file at path, from cache when its content is
// unchanged.
func (l *Loader) Load(path string) (*File, error) {
	data, err := readAsepriteFile(path)
	if err != nil {
		return nil, err
	}
	key := cacheKey{path: path, sum: sha256.Sum256(data)}
	if f, ok := l.cache.Get(key); ok {
		return f, nil
	}
	f, err := Parse(data, l.opts...)
	if err != nil {
		return nil, err
	}
	l.cache.Add(key, f)
	return f, nil
}

// Len returns the number of cached files.
func (l *Loader) Len() int {
	return l.cache.Len()
}

// Purge drops every cached file.
func (l *Loader) Purge() {
	l.cache.Purge()
}
