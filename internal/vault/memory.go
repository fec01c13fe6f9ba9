package vault

import (
	"fmt"
	"strings"
	"sync"

	"reportsync/internal/report"
)

// memoryRoot is the virtual vault root used by MemoryVault paths.
const memoryRoot = "mem://offline_photos/"

// MemoryVault is an in-memory implementation of report.PhotoVault, useful
// for testing. Source assets are registered with AddSource before being
// persisted. Safe for concurrent use.
type MemoryVault struct {
	mu      sync.Mutex
	files   map[string][]byte // vault path -> content
	sources map[string][]byte // source URI -> content
	seq     int
}

var _ report.PhotoVault = (*MemoryVault)(nil)

func NewMemoryVault() *MemoryVault {
	return &MemoryVault{
		files:   make(map[string][]byte),
		sources: make(map[string][]byte),
	}
}

// AddSource registers a pickable asset at the given URI.
func (m *MemoryVault) AddSource(uri string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sources[uri] = data
}

// Read returns the content behind a vault path or source URI.
func (m *MemoryVault) Read(path string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if data, ok := m.files[path]; ok {
		return data, true
	}
	data, ok := m.sources[path]
	return data, ok
}

func (m *MemoryVault) EnsureDirectory() error { return nil }

func (m *MemoryVault) Persist(sourceURI string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, ok := m.sources[sourceURI]
	if !ok {
		return sourceURI, fmt.Errorf("opening source photo: %s not found", sourceURI)
	}

	m.seq++
	dest := fmt.Sprintf("%sreport_%d.jpg", memoryRoot, m.seq)
	m.files[dest] = data
	return dest, nil
}

func (m *MemoryVault) Validate(uri string) bool {
	if uri == "" || strings.HasPrefix(uri, "http://") || strings.HasPrefix(uri, "https://") {
		return false
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if data, ok := m.files[uri]; ok {
		return len(data) > 0
	}
	if data, ok := m.sources[uri]; ok {
		return len(data) > 0
	}
	return false
}

func (m *MemoryVault) Delete(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.files, path)
	return nil
}

func (m *MemoryVault) Contains(path string) bool {
	return strings.HasPrefix(path, memoryRoot)
}

func (m *MemoryVault) FileSize(path string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if data, ok := m.files[path]; ok {
		return int64(len(data)), nil
	}
	if data, ok := m.sources[path]; ok {
		return int64(len(data)), nil
	}
	return 0, nil
}

func (m *MemoryVault) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files = make(map[string][]byte)
	return nil
}
