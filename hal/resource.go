package hal

import (
	"encoding/json"
	"strings"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/metrics"
	"github.com/go-kit/kit/metrics/discard"
	"github.com/segmentio/ksuid"

	"github.com/halware/halcommon/logging"
)

const (
	// CuriesRelation is the reserved relation string for curie
	// documentation links.  Curie links live only at the root of a
	// resource tree and are always serialized as an array.
	CuriesRelation = "curies"
)

// Options configures a new root Resource.
type Options struct {
	// Server is the server context passed to the Linker on every resolution.
	Server string

	// Params are the request parameters links are resolved against,
	// typically the path variables of the incoming request.
	Params map[string]string

	// Linker resolves relation names.  A nil Linker is permitted; only
	// override-only links can resolve in that case.
	Linker Linker

	// Logger receives diagnostics for unresolvable relations.  If unset,
	// logging.DefaultLogger() is used.
	Logger log.Logger

	// Unresolvable is incremented for each candidate link that cannot be
	// resolved.  Optional.
	Unresolvable metrics.Counter

	// Body is the resource's own state, merged into the serialized output
	// alongside _links and _embedded.  It must marshal to a JSON object.
	Body interface{}
}

// tree indexes every resource in one response's tree by id.  Nested
// resources reach the root through this index rather than through owning
// back-references; the tree's lifetime is bounded by the response.
type tree struct {
	rootID string
	nodes  map[string]*Resource
}

func (t *tree) root() *Resource {
	return t.nodes[t.rootID]
}

// Resource is one node in a response's HAL tree.  A Resource is not safe for
// concurrent use, which is never needed: each HTTP response builds its own tree.
type Resource struct {
	id     string
	tree   *tree
	server string
	params map[string]string

	linker       Linker
	logger       log.Logger
	unresolvable metrics.Counter

	body   interface{}
	links  map[string]interface{}
	embeds map[string]interface{}

	detached bool
}

// New constructs the root Resource of a response tree.
func New(o Options) *Resource {
	r := &Resource{
		id:           ksuid.New().String(),
		server:       o.Server,
		params:       o.Params,
		linker:       o.Linker,
		logger:       o.Logger,
		unresolvable: o.Unresolvable,
		body:         o.Body,
		links:        make(map[string]interface{}),
		embeds:       make(map[string]interface{}),
	}

	if r.logger == nil {
		r.logger = logging.DefaultLogger()
	}

	if r.unresolvable == nil {
		r.unresolvable = discard.NewCounter()
	}

	r.tree = &tree{
		rootID: r.id,
		nodes:  map[string]*Resource{r.id: r},
	}

	return r
}

// ID returns this resource's identifier within its tree.
func (r *Resource) ID() string {
	return r.id
}

// Root returns the root of this resource's tree.  A detached placeholder
// is its own root.
func (r *Resource) Root() *Resource {
	return r.tree.root()
}

// Detached tests whether this resource is a placeholder returned by a failed
// Embed.  Detached resources accept further calls but never serialize.
func (r *Resource) Detached() bool {
	return r.detached
}

// SetBody replaces the resource's own state.
func (r *Resource) SetBody(body interface{}) {
	r.body = body
}

// Body returns the resource's own state.
func (r *Resource) Body() interface{} {
	return r.body
}

// Link resolves a relation and attaches every well-formed candidate to this
// resource's _links collection.  Candidates missing a relation string or an
// href are logged and skipped; Link never fails.
func (r *Resource) Link(relation string, o Override) {
	for _, candidate := range Resolve(r.linker, r.server, relation, r.params, o) {
		if !candidate.resolved() {
			r.diagnose(relation, candidate)
			continue
		}

		if candidate.Docs != nil {
			r.AddDocs(candidate.Docs.Name, candidate.Docs.Href)
		}

		r.links[candidate.Rel] = appendLinkSlot(r.links[candidate.Rel], candidate)
	}
}

// Embed resolves a relation and, when the first candidate is well-formed,
// creates a child Resource scoped to value, attaches it under _embedded, and
// returns it for chained linking and embedding.  Only the first candidate is
// consulted, unlike Link which iterates all of them.
//
// When the first candidate cannot be resolved, Embed logs the diagnostic and
// returns a detached placeholder so callers can chain without nil checks;
// the placeholder never appears in serialized output.
func (r *Resource) Embed(relation string, value interface{}, o Override) *Resource {
	candidate := Resolve(r.linker, r.server, relation, r.params, o)[0]
	if !candidate.resolved() {
		r.diagnose(relation, candidate)

		placeholder := New(Options{
			Server:       r.server,
			Params:       r.params,
			Linker:       r.linker,
			Logger:       r.logger,
			Unresolvable: r.unresolvable,
			Body:         value,
		})

		placeholder.detached = true
		return placeholder
	}

	child := &Resource{
		id:           ksuid.New().String(),
		tree:         r.tree,
		server:       r.server,
		params:       r.params,
		linker:       r.linker,
		logger:       r.logger,
		unresolvable: r.unresolvable,
		body:         value,
		links:        make(map[string]interface{}),
		embeds:       make(map[string]interface{}),
	}

	r.tree.nodes[child.id] = child
	if candidate.Docs != nil {
		r.AddDocs(candidate.Docs.Name, candidate.Docs.Href)
	}

	r.embeds[candidate.Rel] = appendEmbedSlot(r.embeds[candidate.Rel], child, candidate.Array)
	return child
}

// AddDocs adds a curie documentation link at the root of this resource's
// tree.  Curie links are deduplicated by name: the first registration for a
// given name wins, no matter which resource in the tree registered it.
func (r *Resource) AddDocs(name, href string) {
	root := r.Root()

	existing, _ := root.links[CuriesRelation].([]Link)
	for _, curie := range existing {
		if curie.Name == name {
			return
		}
	}

	root.links[CuriesRelation] = append(existing, Link{
		Relation:  CuriesRelation,
		Rel:       CuriesRelation,
		Name:      name,
		Href:      href,
		Templated: strings.Contains(href, "{rel}"),
	})
}

// Filter prunes this resource's links and embeds in place.  Links are removed
// when linkPred rejects them, except curie links, which are never removed.
// Embeds are removed when embedPred rejects them.  A nil predicate keeps
// everything.  Pruning operates per relation bucket: rejecting one link under
// a relation leaves that relation's other links intact.
func (r *Resource) Filter(linkPred func(rel string, link Link) bool, embedPred func(rel string, embedded *Resource) bool) {
	if linkPred != nil {
		for rel, slot := range r.links {
			if rel == CuriesRelation {
				continue
			}

			switch current := slot.(type) {
			case Link:
				if !linkPred(rel, current) {
					delete(r.links, rel)
				}

			case []Link:
				kept := make([]Link, 0, len(current))
				for _, link := range current {
					if linkPred(rel, link) {
						kept = append(kept, link)
					}
				}

				if len(kept) == 0 {
					delete(r.links, rel)
				} else {
					r.links[rel] = kept
				}
			}
		}
	}

	if embedPred != nil {
		for rel, slot := range r.embeds {
			switch current := slot.(type) {
			case *Resource:
				if !embedPred(rel, current) {
					delete(r.embeds, rel)
				}

			case []*Resource:
				kept := make([]*Resource, 0, len(current))
				for _, embedded := range current {
					if embedPred(rel, embedded) {
						kept = append(kept, embedded)
					}
				}

				if len(kept) == 0 {
					delete(r.embeds, rel)
				} else {
					r.embeds[rel] = kept
				}
			}
		}
	}
}

// Links returns the links filed under a relation string as a slice,
// regardless of whether the underlying slot holds a single link or an array.
func (r *Resource) Links(rel string) []Link {
	switch current := r.links[rel].(type) {
	case Link:
		return []Link{current}
	case []Link:
		return current
	default:
		return nil
	}
}

// Embeds returns the resources embedded under a relation string as a slice,
// regardless of whether the underlying slot holds a single resource or an array.
func (r *Resource) Embeds(rel string) []*Resource {
	switch current := r.embeds[rel].(type) {
	case *Resource:
		return []*Resource{current}
	case []*Resource:
		return current
	default:
		return nil
	}
}

// MarshalJSON serializes this resource in HAL+JSON shape: the body's fields
// merged with _links and _embedded.  The curies slot is always array-shaped,
// and detached placeholders are dropped from _embedded.
func (r *Resource) MarshalJSON() ([]byte, error) {
	output := make(map[string]interface{})

	if r.body != nil {
		data, err := json.Marshal(r.body)
		if err != nil {
			return nil, err
		}

		if err := json.Unmarshal(data, &output); err != nil {
			return nil, err
		}
	}

	if len(r.links) > 0 {
		links := make(map[string]interface{}, len(r.links))
		for rel, slot := range r.links {
			if rel == CuriesRelation {
				if single, ok := slot.(Link); ok {
					slot = []Link{single}
				}
			}

			links[rel] = slot
		}

		output["_links"] = links
	}

	if embeds := r.serializableEmbeds(); len(embeds) > 0 {
		output["_embedded"] = embeds
	}

	return json.Marshal(output)
}

func (r *Resource) serializableEmbeds() map[string]interface{} {
	embeds := make(map[string]interface{}, len(r.embeds))
	for rel, slot := range r.embeds {
		switch current := slot.(type) {
		case *Resource:
			if !current.detached {
				embeds[rel] = current
			}

		case []*Resource:
			kept := make([]*Resource, 0, len(current))
			for _, embedded := range current {
				if !embedded.detached {
					kept = append(kept, embedded)
				}
			}

			if len(kept) > 0 {
				embeds[rel] = kept
			}
		}
	}

	return embeds
}

func (r *Resource) diagnose(relation string, candidate Link) {
	r.unresolvable.Add(1.0)
	logging.Debug(r.logger).Log(
		logging.MessageKey(), "unresolvable relation",
		"relation", relation,
		"rel", candidate.Rel,
		"href", candidate.Href,
		"server", r.server,
	)
}

// appendLinkSlot implements the array-normalization rule for links: a slot
// starts as a single value and becomes an ordered sequence on the second
// insertion, or immediately when the candidate requests array form.
func appendLinkSlot(existing interface{}, candidate Link) interface{} {
	switch current := existing.(type) {
	case Link:
		return []Link{current, candidate}
	case []Link:
		return append(current, candidate)
	default:
		if candidate.Array {
			return []Link{candidate}
		}

		return candidate
	}
}

func appendEmbedSlot(existing interface{}, embedded *Resource, forceArray bool) interface{} {
	switch current := existing.(type) {
	case *Resource:
		return []*Resource{current, embedded}
	case []*Resource:
		return append(current, embedded)
	default:
		if forceArray {
			return []*Resource{embedded}
		}

		return embedded
	}
}
