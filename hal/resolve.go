package hal

import (
	"net/url"
	"strings"

	"github.com/jtacoma/uritemplates"
)

// Resolve produces the candidate links for a relation.  Candidates appear in
// the linker's registration order.  When the linker has no templates for the
// relation (or there is no linker at all), a single empty placeholder template
// is used so that override-only links still resolve.
//
// Each candidate is the field-wise merge of a base candidate, one linker
// template, and the override, in that order of increasing precedence.
func Resolve(linker Linker, server, relation string, params map[string]string, o Override) []Link {
	var templates []Link
	if linker != nil {
		templates = linker.Links(server, relation)
	}

	if len(templates) == 0 {
		templates = []Link{{}}
	}

	candidates := make([]Link, 0, len(templates))
	for _, template := range templates {
		candidates = append(candidates, merge(linker, server, relation, params, template, o))
	}

	return candidates
}

func merge(linker Linker, server, relation string, params map[string]string, template Link, o Override) Link {
	merged := Link{
		Relation: relation,
		Server:   server,
	}

	// an explicit override params mapping wins outright; otherwise the base
	// and template params are unioned, with template entries taking precedence
	if o.Params != nil {
		merged.Params = o.Params
	} else {
		merged.Params = unionParams(params, template.Params)
	}

	if len(template.Relation) > 0 {
		merged.Relation = template.Relation
	}

	merged.Href = template.Href
	merged.ID = template.ID
	merged.Name = template.Name
	merged.Title = template.Title
	merged.Array = template.Array

	if len(o.Href) > 0 {
		merged.Href = o.Href
	}

	if len(o.ID) > 0 {
		merged.ID = o.ID
	}

	if len(o.Name) > 0 {
		merged.Name = o.Name
	}

	if len(o.Title) > 0 {
		merged.Title = o.Title
	}

	if o.Array {
		merged.Array = true
	}

	// when ID names a param key, it resolves to that parameter's value
	if len(merged.ID) > 0 {
		if value, ok := merged.Params[merged.ID]; ok {
			merged.ID = value
		}
	}

	// an explicit override relation bypasses the server's namespacing
	if len(o.Rel) > 0 {
		merged.Rel = o.Rel
	} else if linker != nil {
		merged.Rel = linker.Normalize(server, merged.Relation)
	} else {
		merged.Rel = merged.Relation
	}

	if linker != nil {
		if docs, ok := linker.Docs(server, relation); ok {
			merged.Docs = &docs
		}
	}

	merged.Href = expandHref(merged.Href, merged.Params)
	if o.HrefPatch != nil {
		merged.Href = patchHref(merged.Href, o.HrefPatch)
	}

	return merged
}

func unionParams(base, template map[string]string) map[string]string {
	if len(base) == 0 && len(template) == 0 {
		return nil
	}

	union := make(map[string]string, len(base)+len(template))
	for key, value := range base {
		union[key] = value
	}

	for key, value := range template {
		union[key] = value
	}

	return union
}

// expandHref substitutes URI template expressions with parameter values.
// Hrefs without expressions, and hrefs that fail to parse or expand, pass
// through unchanged.
func expandHref(href string, params map[string]string) string {
	if len(href) == 0 || !strings.Contains(href, "{") {
		return href
	}

	template, err := uritemplates.Parse(href)
	if err != nil {
		return href
	}

	values := make(map[string]interface{}, len(params))
	for key, value := range params {
		values[key] = value
	}

	expanded, err := template.Expand(values)
	if err != nil {
		return href
	}

	return expanded
}

func patchHref(href string, patch *URLPatch) string {
	parsed, err := url.Parse(href)
	if err != nil {
		parsed = new(url.URL)
	}

	patch.apply(parsed)
	return parsed.String()
}
