package hal

import (
	"strings"
	"sync"
)

// Linker maps relation names to link templates and documentation metadata,
// scoped by a server context.  Implementations must be safe for concurrent
// use, since one Linker is typically shared by every response a server builds.
type Linker interface {
	// Links returns the templates registered for the relation under the
	// given server, in registration order.  An empty return is not an error.
	Links(server, relation string) []Link

	// Docs returns the curie documentation metadata for the relation,
	// if any has been registered.
	Docs(server, relation string) (Docs, bool)

	// Normalize maps a relation name to the canonical relation string used
	// in _links collections, typically by applying the server's curie
	// namespace prefix.
	Normalize(server, relation string) string
}

// Registry is a table-backed Linker.  Relations are registered per server
// context, and each server may carry a curie namespace that Normalize
// prefixes onto unqualified relation names.
type Registry struct {
	lock       sync.RWMutex
	namespaces map[string]string
	links      map[registryKey][]Link
	docs       map[registryKey]Docs
}

type registryKey struct {
	server   string
	relation string
}

func NewRegistry() *Registry {
	return &Registry{
		namespaces: make(map[string]string),
		links:      make(map[registryKey][]Link),
		docs:       make(map[registryKey]Docs),
	}
}

// SetNamespace assigns a curie namespace prefix to a server context.
func (r *Registry) SetNamespace(server, namespace string) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.namespaces[server] = namespace
}

// Register appends link templates for a relation.  Registration order is
// preserved and reflected in resolution order.
func (r *Registry) Register(server, relation string, templates ...Link) {
	key := registryKey{server, relation}

	r.lock.Lock()
	defer r.lock.Unlock()
	r.links[key] = append(r.links[key], templates...)
}

// RegisterDocs assigns curie documentation metadata to a relation.
func (r *Registry) RegisterDocs(server, relation string, docs Docs) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.docs[registryKey{server, relation}] = docs
}

func (r *Registry) Links(server, relation string) []Link {
	r.lock.RLock()
	defer r.lock.RUnlock()

	registered := r.links[registryKey{server, relation}]
	if len(registered) == 0 {
		return nil
	}

	templates := make([]Link, len(registered))
	copy(templates, registered)
	return templates
}

func (r *Registry) Docs(server, relation string) (Docs, bool) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	docs, ok := r.docs[registryKey{server, relation}]
	return docs, ok
}

// Normalize prefixes the server's curie namespace onto unqualified relation
// names.  Relations that already carry a namespace pass through unchanged,
// as do all relations for servers without a namespace.
func (r *Registry) Normalize(server, relation string) string {
	if strings.Contains(relation, ":") {
		return relation
	}

	r.lock.RLock()
	defer r.lock.RUnlock()

	if namespace := r.namespaces[server]; len(namespace) > 0 {
		return namespace + ":" + relation
	}

	return relation
}
