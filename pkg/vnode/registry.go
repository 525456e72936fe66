package vnode

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/mod/semver"
)

// Sentinel errors for kind lookup and instantiation.
var (
	// ErrUnknownKind indicates a type tag the registry does not know.
	ErrUnknownKind = errors.New("vnode: unknown kind")

	// ErrNoConstructor indicates a kind that cannot create its host widget
	// in the current host context.
	ErrNoConstructor = errors.New("vnode: no constructor for kind")
)

// Registry is the capability table mapping type tags to kinds. Its
// vocabulary version is a semantic version: a major bump means tags or
// property types were removed or changed.
type Registry struct {
	version string
	mu      sync.RWMutex
	kinds   map[string]*Kind
}

// NewRegistry creates an empty registry for the given vocabulary version
// (e.g. "v1.2.0").
func NewRegistry(version string) *Registry {
	if !semver.IsValid(version) {
		panic(fmt.Sprintf("vnode: invalid vocabulary version %q", version))
	}
	return &Registry{version: version, kinds: make(map[string]*Kind)}
}

// Version returns the vocabulary version.
func (r *Registry) Version() string { return r.version }

// Register adds kinds. Registering a tag twice panics.
func (r *Registry) Register(kinds ...*Kind) *Registry {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, k := range kinds {
		if _, dup := r.kinds[k.tag]; dup {
			panic(fmt.Sprintf("vnode: kind %s registered twice", k.tag))
		}
		r.kinds[k.tag] = k
	}
	return r
}

// Lookup returns the kind for tag.
func (r *Registry) Lookup(tag string) (*Kind, error) {
	r.mu.RLock()
	k, ok := r.kinds[tag]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, tag)
	}
	return k, nil
}

// Tags returns the registered tags in sorted order.
func (r *Registry) Tags() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tags := make([]string, 0, len(r.kinds))
	for tag := range r.kinds {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// Accepts reports whether a tree built against vocabulary version v can be
// materialized by this registry: the major versions must match. Trees from a
// newer minor version are accepted; tags they introduce are still rejected
// individually at decode time.
func (r *Registry) Accepts(v string) bool {
	if !semver.IsValid(v) {
		return false
	}
	return semver.Major(v) == semver.Major(r.version)
}
