package hal

import (
	"encoding/json"
	"net/url"
)

// Docs is the curie documentation metadata a Linker can associate
// with a relation.
type Docs struct {
	Name string `json:"name"`
	Href string `json:"href"`
}

// URLPatch is a partial URL.  Overrides may supply one in place of a string
// href, in which case the resolved href is parsed and the non-empty fields
// of the patch replace the corresponding URL components.
type URLPatch struct {
	Scheme   string `json:"scheme,omitempty"`
	Host     string `json:"host,omitempty"`
	Path     string `json:"path,omitempty"`
	RawQuery string `json:"query,omitempty"`
	Fragment string `json:"fragment,omitempty"`
}

func (p *URLPatch) apply(u *url.URL) {
	if len(p.Scheme) > 0 {
		u.Scheme = p.Scheme
	}

	if len(p.Host) > 0 {
		u.Host = p.Host
	}

	if len(p.Path) > 0 {
		u.Path = p.Path
	}

	if len(p.RawQuery) > 0 {
		u.RawQuery = p.RawQuery
	}

	if len(p.Fragment) > 0 {
		u.Fragment = p.Fragment
	}
}

// Link is a fully resolved hyperlink.  Linkers also use this type for the
// templates they register: in a template, Href may contain RFC 6570 URI
// template expressions, and ID may name a request parameter whose value
// identifies the linked entity.
type Link struct {
	// Relation is the relation name the link was resolved under, prior
	// to any namespacing.
	Relation string

	// Rel is the final relation string the link is filed under in the
	// enclosing resource's _links collection.
	Rel string

	// Href is the link target.  In templates this is a URI template
	// expanded against Params during resolution.
	Href string

	// Name is the HAL secondary key, used chiefly by curie links.
	Name string

	// Title is the optional human-readable HAL title.
	Title string

	// ID identifies the linked entity.  When a template's ID names a key
	// present in Params, resolution replaces it with that parameter's value.
	ID string

	// Params are the parameters the href was (or will be) expanded with.
	Params map[string]string

	// Array forces the link's slot to hold an ordered sequence even when
	// this is the only link under its relation string.
	Array bool

	// Templated marks hrefs that still contain URI template expressions.
	Templated bool

	// Server is the server context the link was resolved under.
	Server string

	// Docs is the documentation metadata attached during resolution, if any.
	Docs *Docs
}

// resolved tests whether this link has everything it needs to be attached
// to a resource.
func (l Link) resolved() bool {
	return len(l.Rel) > 0 && len(l.Href) > 0
}

// halLink is the wire shape of a HAL link object.
type halLink struct {
	Href      string `json:"href"`
	Name      string `json:"name,omitempty"`
	Title     string `json:"title,omitempty"`
	Templated bool   `json:"templated,omitempty"`
}

func (l Link) MarshalJSON() ([]byte, error) {
	return json.Marshal(halLink{
		Href:      l.Href,
		Name:      l.Name,
		Title:     l.Title,
		Templated: l.Templated,
	})
}

// Override carries caller-supplied values that take precedence over both the
// base candidate and any linker-registered template during resolution.
// The zero value of each field means "not supplied".
type Override struct {
	// Rel supplies the final relation string verbatim, bypassing the
	// server's relation namespacing entirely.
	Rel string

	// Href replaces the template href.  URI template expressions in an
	// override href are still expanded against the resolved params.
	Href string

	// HrefPatch patches individual URL components of the resolved href.
	// It is applied after template expansion.
	HrefPatch *URLPatch

	// ID replaces the template's entity identifier.
	ID string

	// Name replaces the HAL name.
	Name string

	// Title replaces the HAL title.
	Title string

	// Params, when non-nil, replaces the resolved params outright.  When
	// nil, the base and template params are unioned instead.
	Params map[string]string

	// Array forces array form for the link's slot.
	Array bool
}
