package hal

import (
	"encoding/json"
	"testing"

	"github.com/go-kit/kit/metrics/generic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halware/halcommon/logging"
)

func newTestResource(t *testing.T, linker Linker) *Resource {
	t.Helper()
	return New(Options{
		Server: testServer,
		Params: map[string]string{"widgetID": "123"},
		Linker: linker,
		Logger: logging.NewTestLogger(nil, t),
	})
}

func marshalResource(t *testing.T, r *Resource) map[string]interface{} {
	t.Helper()

	data, err := json.Marshal(r)
	require.NoError(t, err)

	var output map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &output))
	return output
}

func TestLink(t *testing.T) {
	var (
		assert = assert.New(t)
		linker = newTestRegistry()
		r      = newTestResource(t, linker)
	)

	linker.Register(testServer, "widget", Link{Href: "/widgets/{widgetID}"})

	r.Link("widget", Override{})
	links := r.Links("app:widget")
	require.Len(t, links, 1)
	assert.Equal("/widgets/123", links[0].Href)
}

func TestLinkSecondValueConvertsToArray(t *testing.T) {
	var (
		assert = assert.New(t)
		linker = newTestRegistry()
		r      = newTestResource(t, linker)
	)

	linker.Register(testServer, "widget", Link{Href: "/widgets/{widgetID}"})

	r.Link("widget", Override{})
	_, single := r.links["app:widget"].(Link)
	assert.True(single)

	r.Link("widget", Override{Href: "/widgets/other"})
	links := r.Links("app:widget")
	require.Len(t, links, 2)
	assert.Equal("/widgets/123", links[0].Href)
	assert.Equal("/widgets/other", links[1].Href)
}

func TestLinkExplicitArray(t *testing.T) {
	var (
		assert = assert.New(t)
		linker = newTestRegistry()
		r      = newTestResource(t, linker)
	)

	linker.Register(testServer, "items", Link{Href: "/items", Array: true})

	r.Link("items", Override{})
	_, isArray := r.links["app:items"].([]Link)
	assert.True(isArray)
}

func TestLinkAllCandidates(t *testing.T) {
	var (
		assert = assert.New(t)
		linker = newTestRegistry()
		r      = newTestResource(t, linker)
	)

	linker.Register(testServer, "widget",
		Link{Href: "/widgets/{widgetID}"},
		Link{Href: "/v2/widgets/{widgetID}"},
	)

	r.Link("widget", Override{})
	links := r.Links("app:widget")
	require.Len(t, links, 2)
	assert.Equal("/widgets/123", links[0].Href)
	assert.Equal("/v2/widgets/123", links[1].Href)
}

func TestLinkUnresolvable(t *testing.T) {
	var (
		assert  = assert.New(t)
		counter = generic.NewCounter("unresolvable")
		linker  = newTestRegistry()

		r = New(Options{
			Server:       testServer,
			Linker:       linker,
			Logger:       logging.NewTestLogger(nil, t),
			Unresolvable: counter,
		})
	)

	// nothing registered and no override href: the placeholder candidate
	// has no href, so the link is skipped without error
	r.Link("nosuchrelation", Override{})
	assert.Empty(r.links)
	assert.Equal(float64(1), counter.Value())
}

func TestLinkAttachesDocs(t *testing.T) {
	var (
		assert = assert.New(t)
		linker = newTestRegistry()
		r      = newTestResource(t, linker)
	)

	linker.Register(testServer, "widget", Link{Href: "/widgets/{widgetID}"})
	linker.RegisterDocs(testServer, "widget", Docs{Name: "app", Href: "/docs/{rel}"})

	r.Link("widget", Override{})

	curies, ok := r.links[CuriesRelation].([]Link)
	require.True(t, ok)
	require.Len(t, curies, 1)
	assert.Equal("app", curies[0].Name)
	assert.Equal("/docs/{rel}", curies[0].Href)
	assert.True(curies[0].Templated)
}

func TestEmbed(t *testing.T) {
	var (
		assert = assert.New(t)
		linker = newTestRegistry()
		r      = newTestResource(t, linker)
	)

	linker.Register(testServer, "parts", Link{Href: "/widgets/{widgetID}/parts"})

	child := r.Embed("parts", map[string]interface{}{"count": 2}, Override{})
	require.NotNil(t, child)
	assert.False(child.Detached())
	assert.Equal(r, child.Root())

	embedded := r.Embeds("app:parts")
	require.Len(t, embedded, 1)
	assert.Equal(child, embedded[0])
}

func TestEmbedFirstCandidateOnly(t *testing.T) {
	var (
		assert = assert.New(t)
		linker = newTestRegistry()
		r      = newTestResource(t, linker)
	)

	// the second template carries a different relation, which would be
	// visible if Embed consulted more than the first candidate
	linker.Register(testServer, "parts",
		Link{Href: "/widgets/{widgetID}/parts"},
		Link{Href: "/v2/widgets/{widgetID}/parts", Relation: "v2parts"},
	)

	r.Embed("parts", nil, Override{})
	assert.Len(r.Embeds("app:parts"), 1)
	assert.Empty(r.Embeds("app:v2parts"))
}

func TestEmbedUnresolvable(t *testing.T) {
	var (
		assert = assert.New(t)
		linker = newTestRegistry()
		r      = newTestResource(t, linker)
	)

	child := r.Embed("nosuchrelation", map[string]interface{}{"orphan": true}, Override{})
	require.NotNil(t, child)
	assert.True(child.Detached())
	assert.Equal(child, child.Root())
	assert.Empty(r.embeds)

	// chained calls on the placeholder must not panic or attach anything
	child.Link("widget", Override{Href: "/somewhere"})
	grandchild := child.Embed("nosuchrelation", nil, Override{})
	assert.NotNil(grandchild)

	output := marshalResource(t, r)
	assert.NotContains(output, "_embedded")
}

func TestEmbedSecondValueConvertsToArray(t *testing.T) {
	var (
		assert = assert.New(t)
		linker = newTestRegistry()
		r      = newTestResource(t, linker)
	)

	linker.Register(testServer, "parts", Link{Href: "/widgets/{widgetID}/parts"})

	first := r.Embed("parts", map[string]interface{}{"n": 1}, Override{})
	second := r.Embed("parts", map[string]interface{}{"n": 2}, Override{})

	embedded := r.Embeds("app:parts")
	require.Len(t, embedded, 2)
	assert.Equal(first, embedded[0])
	assert.Equal(second, embedded[1])
}

func TestAddDocsDeduplicates(t *testing.T) {
	var (
		assert = assert.New(t)
		linker = newTestRegistry()
		r      = newTestResource(t, linker)
	)

	linker.Register(testServer, "parts", Link{Href: "/widgets/{widgetID}/parts"})
	child := r.Embed("parts", nil, Override{})

	r.AddDocs("foo", "/docs/foo")
	r.AddDocs("foo", "/docs/foo")
	child.AddDocs("foo", "/docs/elsewhere")

	// one curie at the root, none on the child
	curies, ok := r.links[CuriesRelation].([]Link)
	require.True(t, ok)
	require.Len(t, curies, 1)
	assert.Equal("/docs/foo", curies[0].Href)
	assert.NotContains(child.links, CuriesRelation)

	// distinct names accumulate
	child.AddDocs("bar", "/docs/bar")
	curies, _ = r.links[CuriesRelation].([]Link)
	assert.Len(curies, 2)
}

func TestFilter(t *testing.T) {
	var (
		assert = assert.New(t)
		linker = newTestRegistry()
		r      = newTestResource(t, linker)
	)

	linker.Register(testServer, "keep", Link{Href: "/keep"})
	linker.Register(testServer, "drop", Link{Href: "/drop"})
	linker.Register(testServer, "mixed",
		Link{Href: "/mixed/keep"},
		Link{Href: "/mixed/drop"},
	)

	linker.Register(testServer, "parts", Link{Href: "/parts"})
	linker.RegisterDocs(testServer, "keep", Docs{Name: "app", Href: "/docs/{rel}"})

	r.Link("keep", Override{})
	r.Link("drop", Override{})
	r.Link("mixed", Override{})
	keep := r.Embed("parts", map[string]interface{}{"keep": true}, Override{})
	r.Embed("parts", map[string]interface{}{"keep": false}, Override{})

	r.Filter(
		func(rel string, link Link) bool {
			return rel != "app:drop" && link.Href != "/mixed/drop"
		},
		func(rel string, embedded *Resource) bool {
			return embedded == keep
		},
	)

	assert.NotContains(r.links, "app:drop")
	assert.Len(r.Links("app:keep"), 1)
	assert.Len(r.Links("app:mixed"), 1)
	assert.Contains(r.links, CuriesRelation)

	embedded := r.Embeds("app:parts")
	require.Len(t, embedded, 1)
	assert.Equal(keep, embedded[0])
}

func TestMarshalJSON(t *testing.T) {
	var (
		assert = assert.New(t)
		linker = newTestRegistry()

		r = New(Options{
			Server: testServer,
			Params: map[string]string{"widgetID": "123"},
			Linker: linker,
			Logger: logging.NewTestLogger(nil, t),
			Body:   map[string]interface{}{"name": "sprocket", "size": 3},
		})
	)

	linker.Register(testServer, "widget", Link{Href: "/widgets/{widgetID}"})
	linker.RegisterDocs(testServer, "widget", Docs{Name: "app", Href: "/docs/{rel}"})

	r.Link("widget", Override{})
	child := r.Embed("widget", map[string]interface{}{"name": "gear"}, Override{})
	child.Link("widget", Override{Rel: "self", Href: "/widgets/123/gear"})

	data, err := json.Marshal(r)
	require.NoError(t, err)

	assert.JSONEq(
		`{
			"name": "sprocket",
			"size": 3,
			"_links": {
				"curies": [
					{"name": "app", "href": "/docs/{rel}", "templated": true}
				],
				"app:widget": {"href": "/widgets/123"}
			},
			"_embedded": {
				"app:widget": {
					"name": "gear",
					"_links": {
						"self": {"href": "/widgets/123/gear"}
					}
				}
			}
		}`,
		string(data),
	)
}

func TestMarshalJSONCuriesAlwaysArray(t *testing.T) {
	var (
		assert = assert.New(t)
		r      = newTestResource(t, newTestRegistry())
	)

	r.AddDocs("app", "/docs/{rel}")

	output := marshalResource(t, r)
	links, ok := output["_links"].(map[string]interface{})
	require.True(t, ok)

	_, isArray := links[CuriesRelation].([]interface{})
	assert.True(isArray)
}

func TestMarshalJSONEmpty(t *testing.T) {
	var (
		assert = assert.New(t)
		r      = newTestResource(t, newTestRegistry())
	)

	data, err := json.Marshal(r)
	require.NoError(t, err)
	assert.JSONEq(`{}`, string(data))
}

func TestMarshalJSONNonObjectBody(t *testing.T) {
	assert := assert.New(t)
	r := New(Options{Body: "just a string"})

	data, err := json.Marshal(r)
	assert.Error(err)
	assert.Empty(data)
}

func TestSetBody(t *testing.T) {
	var (
		assert = assert.New(t)
		r      = New(Options{})
	)

	assert.Nil(r.Body())
	r.SetBody(map[string]interface{}{"a": 1})
	assert.NotNil(r.Body())

	output := marshalResource(t, r)
	assert.Equal(float64(1), output["a"])
}
