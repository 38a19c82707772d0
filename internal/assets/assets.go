// Package assets resolves asset paths against directories and GRF archives and
// turns the bytes into assembled meshes and parsed textures.
package assets

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-assets/internal/engine/model"
	"github.com/Faultbox/midgard-assets/internal/logger"
	"github.com/Faultbox/midgard-assets/pkg/formats"
	"github.com/Faultbox/midgard-assets/pkg/grf"
)

// Asset errors.
var (
	ErrNotFound    = errors.New("asset not found")
	ErrInvalidPath = errors.New("invalid asset path")
)

// Source is a place assets can be read from.
type Source interface {
	Read(path string) ([]byte, error)
	Close() error
}

// DirSource reads assets from a directory tree.
type DirSource struct {
	Root string
}

// Read reads path relative to the root. Paths may use either slash direction.
func (d DirSource) Read(path string) ([]byte, error) {
	rel := filepath.FromSlash(strings.ReplaceAll(path, "\\", "/"))
	if !filepath.IsLocal(rel) {
		return nil, fmt.Errorf("%w: %q escapes %s", ErrInvalidPath, path, d.Root)
	}
	return os.ReadFile(filepath.Join(d.Root, rel))
}

// Close is a no-op.
func (d DirSource) Close() error {
	return nil
}

// Manager handles asset loading from directories and GRF archives.
type Manager struct {
	sources []Source
	cache   *Cache
	mu      sync.RWMutex

	// TextureOptions controls DDS parsing for LoadTexture.
	TextureOptions formats.DDSOptions
}

// NewManager creates a new asset manager.
func NewManager() *Manager {
	return &Manager{
		cache: NewCache(),
	}
}

// AddSource adds a source. Sources are searched in reverse order (last added = highest priority).
func (m *Manager) AddSource(src Source) {
	m.mu.Lock()
	m.sources = append(m.sources, src)
	m.mu.Unlock()
}

// AddDir adds a directory source.
func (m *Manager) AddDir(root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("adding asset dir: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("adding asset dir: %s is not a directory", root)
	}
	m.AddSource(DirSource{Root: root})
	return nil
}

// AddArchive opens a GRF archive and adds it as a source.
func (m *Manager) AddArchive(path string) error {
	archive, err := grf.Open(path)
	if err != nil {
		return fmt.Errorf("opening archive %s: %w", path, err)
	}
	m.AddSource(archive)
	return nil
}

// Load reads the raw bytes of path from the first source that has it.
// The whole file is read before any parsing happens. A source that lacks the
// file passes to the next one; any other source error stops the search.
func (m *Manager) Load(path string) ([]byte, error) {
	if data, ok := m.cache.Get(path); ok {
		return data, nil
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	for i := len(m.sources) - 1; i >= 0; i-- {
		data, err := m.sources[i].Read(path)
		if err == nil {
			m.cache.Set(path, data)
			return data, nil
		}
		if !isMissing(err) {
			return nil, fmt.Errorf("loading %s: %w", path, err)
		}
	}

	return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
}

func isMissing(err error) bool {
	return errors.Is(err, fs.ErrNotExist) || errors.Is(err, grf.ErrNotFound) || errors.Is(err, ErrNotFound)
}

// LoadMesh loads, parses and assembles a mesh description. With indexed set,
// identical vertices are merged into an index buffer.
func (m *Manager) LoadMesh(path string, indexed bool) (*model.Mesh, error) {
	data, err := m.Load(path)
	if err != nil {
		return nil, err
	}

	obj, err := formats.ParseOBJ(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	mesh, err := model.Assemble(obj)
	if err != nil {
		return nil, fmt.Errorf("assembling %s: %w", path, err)
	}
	if indexed {
		mesh = model.Index(mesh)
	}

	logger.Named("assets").Debug("loaded mesh",
		zap.String("path", path),
		zap.Int("triangles", mesh.TriangleCount()),
		zap.Int("vertices", len(mesh.Vertices)))

	return mesh, nil
}

// LoadTexture loads and parses a compressed texture.
func (m *Manager) LoadTexture(path string) (*formats.DDS, error) {
	data, err := m.Load(path)
	if err != nil {
		return nil, err
	}

	dds, err := formats.ParseDDSWithOptions(data, m.TextureOptions)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	logger.Named("assets").Debug("loaded texture",
		zap.String("path", path),
		zap.Stringer("format", dds.Format),
		zap.Int("levels", len(dds.Surfaces)))

	return dds, nil
}

// Stats returns cache statistics.
func (m *Manager) Stats() (hits, misses int) {
	return m.cache.Stats()
}

// Close closes all sources and clears the cache.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var errs []error
	for _, src := range m.sources {
		if err := src.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	m.sources = nil
	m.cache.Clear()

	return errors.Join(errs...)
}

// Cache is a simple in-memory cache for loaded asset bytes.
// Cached slices are shared; callers must not modify them.
type Cache struct {
	data map[string][]byte
	mu   sync.RWMutex

	hits   atomic.Int64
	misses atomic.Int64
}

// NewCache creates a new cache.
func NewCache() *Cache {
	return &Cache{
		data: make(map[string][]byte),
	}
}

// Get retrieves an item from cache.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.RLock()
	data, ok := c.data[key]
	c.mu.RUnlock()

	if ok {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	return data, ok
}

// Set stores an item in cache.
func (c *Cache) Set(key string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = data
}

// Clear clears the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string][]byte)
	c.hits.Store(0)
	c.misses.Store(0)
}

// Stats returns cache statistics.
func (c *Cache) Stats() (hits, misses int) {
	return int(c.hits.Load()), int(c.misses.Load())
}
