package codec

import (
	"strconv"
	"sync"
)

// Registry manages the available band codecs, keyed by both name and UID.
type Registry struct {
	mu     sync.RWMutex
	codecs map[string]Codec
}

var defaultRegistry = &Registry{
	codecs: make(map[string]Codec),
}

// Register registers a codec in the default registry under both its name
// and UID.
func Register(c Codec) {
	defaultRegistry.Register(c)
}

// Get retrieves a codec from the default registry by name or UID string.
func Get(nameOrUID string) (Codec, error) {
	return defaultRegistry.Get(nameOrUID)
}

// GetByUID retrieves a codec from the default registry by its integer UID.
func GetByUID(uid int) (Codec, error) {
	return defaultRegistry.Get(strconv.Itoa(uid))
}

// List returns all codecs registered in the default registry.
func List() []Codec {
	return defaultRegistry.List()
}

// Register registers c under both c.Name() and strconv.Itoa(c.UID()).
func (r *Registry) Register(c Codec) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.codecs[c.Name()] = c
	r.codecs[strconv.Itoa(c.UID())] = c
}

// Get retrieves a codec by name or UID string.
func (r *Registry) Get(nameOrUID string) (Codec, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.codecs[nameOrUID]
	if !ok {
		return nil, ErrCodecNotFound
	}
	return c, nil
}

// List returns all registered codecs, deduplicated.
func (r *Registry) List() []Codec {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[Codec]bool)
	codecs := make([]Codec, 0)

	for _, c := range r.codecs {
		if !seen[c] {
			seen[c] = true
			codecs = append(codecs, c)
		}
	}

	return codecs
}
