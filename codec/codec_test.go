package codec

import (
	"bytes"
	"errors"
	"math"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/c360studio/semactivity/activity"
	"github.com/c360studio/semactivity/document"
	"github.com/c360studio/semactivity/schema"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEvent struct{ *document.Document }

var eventFactory = schema.NewFactory("event", func(d *document.Document) (*testEvent, error) {
	return &testEvent{d}, nil
})

type testModule struct {
	name     string
	models   []*schema.Model
	bindings map[string]string
	register func(r *Registrar)
}

func (m *testModule) Name() string { return m.name }

func (m *testModule) Register(r *Registrar) error {
	r.Model(m.models...)
	for tag, id := range m.bindings {
		r.Bind(tag, id)
	}
	if m.register != nil {
		m.register(r)
	}
	return nil
}

func eventModule() *testModule {
	return &testModule{
		name: "events",
		models: []*schema.Model{
			schema.NewModel("event").Parent(activity.TagObject).Property(schema.KindNumber, "capacity").Factory(eventFactory).Build(),
			schema.NewModel("gathering").Parent(activity.TagObject).Text(activity.PropStartTime).Build(),
		},
		bindings: map[string]string{"gathering": "event"},
	}
}

func newCodec(t *testing.T, opts ...Option) *Codec {
	t.Helper()
	c, err := New(opts...)
	require.NoError(t, err)
	return c
}

func decode(t *testing.T, c *Codec, js string) document.Typed {
	t.Helper()
	doc, err := c.Decode([]byte(js), nil)
	require.NoError(t, err)
	return doc
}

func TestRoundTripActivity(t *testing.T) {
	c := newCodec(t)

	note := document.NewBuilder().
		ObjectType("note").
		ID(activity.NewID()).
		Text(activity.PropContent, "<p>Hello &amp; welcome</p>").
		Build()
	image := document.NewBuilder().
		Set(activity.PropURL, "https://example.org/a.png").
		Set(activity.PropWidth, int64(640)).
		Set(activity.PropDuration, 90*time.Second).
		Set(activity.PropMimeType, document.MediaType{Type: "image/png"}).
		Build()
	title := document.NewLangTextBuilder().Set("en", "Hello").Set("fr", "Bonjour").Build()

	ab := activity.NewActivity().
		Verb(activity.VerbPost).
		Actor(document.LinkTo("acct:alice@example.org")).
		Object(document.LinkObject(note)).
		Published(time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC))
	ab.LinkURI(activity.PropTags, "https://example.org/tags/a")
	ab.LinkURI(activity.PropTags, "https://example.org/tags/b")
	ab.Set(activity.PropTitle, title)
	ab.Set(activity.PropImage, image)
	ab.Set("extension", map[string]any{"k": "v"})
	orig, err := ab.Build()
	require.NoError(t, err)
	// Unknown extension values decode to generic documents; compare the rest.
	origDoc := orig.Template().Remove("extension").Build()

	data, err := c.Encode(orig)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<p>Hello &amp; welcome</p>", "HTML is not escaped")

	got := decode(t, c, string(data))
	a, ok := got.(*activity.Activity)
	require.True(t, ok, "got %T", got)
	assert.True(t, a.Template().Remove("extension").Build().Equal(origDoc))

	ext := a.Embedded("extension")
	require.NotNil(t, ext)
	s, _ := ext.String("k")
	assert.Equal(t, "v", s)

	img := a.Embedded(activity.PropImage)
	dur, ok := img.Duration(activity.PropDuration)
	require.True(t, ok)
	assert.Equal(t, 90*time.Second, dur)
}

func TestRoundTripCollection(t *testing.T) {
	c := newCodec(t)
	first := document.NewBuilder().ObjectType("note").Text(activity.PropContent, "one").Build()
	second := document.NewBuilder().ObjectType("note").Text(activity.PropContent, "two").Build()
	orig, err := activity.NewCollection().Add(first, second).Build()
	require.NoError(t, err)

	data, err := c.Encode(orig)
	require.NoError(t, err)

	got, err := DecodeAs[*activity.Collection](c, data)
	require.NoError(t, err)
	assert.True(t, got.Doc().Equal(orig.Doc()))
	total, _ := got.TotalItems()
	assert.Equal(t, int64(2), total)
	require.Len(t, got.Documents(), 2)
	assert.Equal(t, "two", got.Documents()[1].LangText(activity.PropContent).Text())
}

func TestTypeTagWinsOverHint(t *testing.T) {
	c := newCodec(t)
	js := `{"objectType":"activity","verb":"post","actor":"acct:a@example.org","object":"urn:note:1"}`

	doc := decode(t, c, js)
	a, ok := doc.(*activity.Activity)
	require.True(t, ok, "got %T", doc)
	assert.Equal(t, "post", a.Verb().ID())
	assert.Equal(t, document.ShapeSimple, a.Object().Shape())

	generic, err := DecodeAs[*document.Document](c, []byte(js))
	require.NoError(t, err)
	assert.Equal(t, "activity", generic.ObjectType().ID())
}

func TestShapeSniffing(t *testing.T) {
	c := newCodec(t)

	tests := []struct {
		name string
		js   string
		want reflect.Type
	}{
		{"verb and actor", `{"verb":"post","actor":"a","object":"b"}`, activityType},
		{"verb and target only", `{"verb":"join","target":"urn:group"}`, activityType},
		{"items", `{"items":[{"content":"x"}]}`, collectionType},
		{"activity check first", `{"verb":"post","actor":"a","items":[]}`, activityType},
		{"verb alone", `{"verb":"post"}`, genericType},
		{"null actor", `{"verb":"post","actor":null}`, genericType},
		{"tag disables sniffing", `{"objectType":"note","verb":"post","actor":"a"}`, genericType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := decode(t, c, tt.js)
			assert.Equal(t, tt.want, reflect.TypeOf(doc))
		})
	}
}

func TestUnknownTagResilience(t *testing.T) {
	c := newCodec(t)

	doc := decode(t, c, `{"objectType":"totally-unregistered-xyz","published":"2024-01-02T03:04:05Z"}`)
	d, ok := doc.(*document.Document)
	require.True(t, ok, "got %T", doc)
	assert.Equal(t, "totally-unregistered-xyz", d.ObjectType().ID())

	// The fallback model still types inherited object properties.
	_, ok = d.Time(activity.PropPublished)
	assert.True(t, ok)

	obj := decode(t, c, `{"objectType":{"id":"urn:types:custom","displayName":"Custom"},"x":1}`)
	tv := obj.Doc().ObjectType()
	require.Equal(t, document.ShapeObject, tv.Shape())
	assert.Equal(t, "urn:types:custom", tv.ID())
	assert.Equal(t, []string{"objectType", "x"}, obj.Doc().Names())
}

func TestModelInheritance(t *testing.T) {
	c := newCodec(t, WithModules(eventModule()))

	doc := decode(t, c, `{"objectType":"event","published":"2024-05-06T07:08:09.5Z","capacity":40}`)
	ev, ok := doc.(*testEvent)
	require.True(t, ok, "got %T", doc)
	published, ok := ev.Time(activity.PropPublished)
	require.True(t, ok, "published must decode through the parent model")
	assert.Equal(t, 500*time.Millisecond, time.Duration(published.Nanosecond()))
	n, _ := ev.Int("capacity")
	assert.Equal(t, int64(40), n)
}

func TestTagPrefersFactoryModel(t *testing.T) {
	c := newCodec(t, WithModules(eventModule()))

	doc := decode(t, c, `{"objectType":"gathering","startTime":"2024-05-06T07:00:00Z"}`)
	ev, ok := doc.(*testEvent)
	require.True(t, ok, "got %T", doc)
	_, ok = ev.Time(activity.PropStartTime)
	assert.True(t, ok, "the factory's model declares startTime as date-time")
}

func TestStaticHints(t *testing.T) {
	c := newCodec(t, WithModules(eventModule()))

	t.Run("special type binds directly", func(t *testing.T) {
		a, err := DecodeAs[*activity.Activity](c, []byte(`{"actor":"a"}`))
		require.NoError(t, err)
		assert.Equal(t, "a", a.Actor().URI())
	})

	t.Run("registered type used when untagged", func(t *testing.T) {
		ev, err := DecodeAs[*testEvent](c, []byte(`{"capacity":"12"}`))
		require.Error(t, err, "capacity is declared as a number")
		assert.Nil(t, ev)

		ev, err = DecodeAs[*testEvent](c, []byte(`{"capacity":12}`))
		require.NoError(t, err)
		n, _ := ev.Int("capacity")
		assert.Equal(t, int64(12), n)
	})

	t.Run("mismatch", func(t *testing.T) {
		_, err := DecodeAs[*testEvent](c, []byte(`{"objectType":"activity"}`))
		assert.True(t, errors.Is(err, ErrTypeMismatch), "got %v", err)
	})
}

func TestLinkKindArrays(t *testing.T) {
	c := newCodec(t)

	doc := decode(t, c, `{"objectType":"note","tags":["a",{"id":"b"}],"matrix":[[1,2],[3]]}`)
	tags := doc.Doc().Link(activity.PropTags)
	require.NotNil(t, tags)
	require.Equal(t, document.ShapeArray, tags.Shape())
	items := tags.Items()
	assert.Equal(t, "a", items[0].URI())
	assert.Equal(t, "b", items[1].Object().ID())

	assert.Equal(t, []any{[]any{int64(1), int64(2)}, []any{int64(3)}}, doc.Doc().List("matrix"))

	_, err := c.Decode([]byte(`{"tags":["a",["b"]]}`), nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformed))
	var de *DecodeError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "$.tags[1]", de.Path)
}

func TestDecodeErrors(t *testing.T) {
	c := newCodec(t)

	tests := []struct {
		name string
		js   string
		want error
	}{
		{"invalid json", `{"a":`, ErrMalformed},
		{"not an object", `[1,2]`, ErrMalformed},
		{"trailing data", `{} {}`, ErrMalformed},
		{"array type tag", `{"objectType":["a"]}`, ErrMalformed},
		{"boolean type tag", `{"objectType":true}`, ErrMalformed},
		{"bad date-time", `{"published":"yesterday"}`, ErrMalformed},
		{"link as number", `{"author":7}`, ErrMalformed},
		{"language map value", `{"summary":{"en":1}}`, ErrMalformed},
		{"negative total", `{"objectType":"collection","totalItems":-1}`, ErrConstruction},
		{"factory rejects", `{"objectType":"collection","totalItems":1.5}`, activity.ErrInvalidCollection},
		{"too deep", `{"a":` + strings.Repeat("[", 300) + strings.Repeat("]", 300) + `}`, ErrMalformed},
		{"duration overflow", `{"objectType":"mediaLink","duration":1e300}`, ErrMalformed},
		{"duration past max", `{"objectType":"mediaLink","duration":9223372037}`, ErrMalformed},
		{"iso duration overflow", `{"objectType":"mediaLink","duration":"PT9223372037S"}`, ErrMalformed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Decode([]byte(tt.js), nil)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestPrimitiveRule(t *testing.T) {
	c := newCodec(t)
	doc := decode(t, c, `{"n":3,"f":2.5,"big":1e3,"b":false,"s":"x","gone":null}`).Doc()

	assert.Equal(t, []string{"n", "f", "big", "b", "s"}, doc.Names())
	v, _ := doc.Get("n")
	assert.Equal(t, int64(3), v)
	v, _ = doc.Get("f")
	assert.Equal(t, 2.5, v)
	v, _ = doc.Get("big")
	assert.Equal(t, int64(1000), v)
	b, ok := doc.Bool("b")
	assert.True(t, ok)
	assert.False(t, b)

	dup := decode(t, c, `{"a":1,"b":2,"a":3}`).Doc()
	assert.Equal(t, []string{"a", "b"}, dup.Names(), "a repeated member keeps its first position")
	v, _ = dup.Get("a")
	assert.Equal(t, int64(3), v, "the last repeated value wins")
}

func TestEncodeOrderAndPretty(t *testing.T) {
	doc := document.NewBuilder().Set("z", int64(1)).Set("a", "x").Build()

	data, err := newCodec(t).Encode(doc)
	require.NoError(t, err)
	assert.Equal(t, `{"z":1,"a":"x"}`, string(data))

	pretty, err := newCodec(t, WithPretty(true)).Encode(doc)
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"z\": 1,\n  \"a\": \"x\"\n}", string(pretty))

	_, err = newCodec(t).Encode(nil)
	assert.True(t, errors.Is(err, ErrUnsupported))
}

func TestEncodeTypedCollections(t *testing.T) {
	c := newCodec(t)
	inner := document.NewBuilder().ID("urn:note:1").Build()
	doc := document.NewBuilder().
		Set("refs", []*document.Document{inner}).
		Set("links", []*document.Link{document.LinkTo("http://a")}).
		Set("m", map[string]any{"k": inner, "a": int64(1)}).
		Set("byName", map[string]*document.Document{"n": inner}).
		Set("waits", [1]time.Duration{time.Minute}).
		Set("raw", []byte("hi")).
		Build()

	data, err := c.Encode(doc)
	require.NoError(t, err)
	assert.Equal(t,
		`{"refs":[{"id":"urn:note:1"}],"links":["http://a"],"m":{"a":1,"k":{"id":"urn:note:1"}},`+
			`"byName":{"n":{"id":"urn:note:1"}},"waits":["PT1M"],"raw":"aGk="}`,
		string(data))

	refs := decode(t, c, string(data)).Doc().List("refs")
	require.Len(t, refs, 1)
	ref, ok := refs[0].(document.Typed)
	require.True(t, ok, "got %T", refs[0])
	assert.Equal(t, "urn:note:1", ref.Doc().ID())
}

type point struct{ X, Y int }

func TestWriterAndAdapterOverrides(t *testing.T) {
	c := newCodec(t,
		WithWriter(reflect.TypeFor[point](), func(v any) (any, error) {
			p := v.(point)
			return strings.Repeat("*", p.X+p.Y), nil
		}),
		WithAdapter(schema.KindDateTime, AdapterFunc(func(d *Decoder, v any) (any, error) {
			return "raw:" + v.(string), nil
		})),
	)

	data, err := c.Encode(document.NewBuilder().Set("p", point{1, 2}).Build())
	require.NoError(t, err)
	assert.Equal(t, `{"p":"***"}`, string(data))

	doc := decode(t, c, `{"published":"2024-01-01T00:00:00Z"}`)
	s, _ := doc.Doc().String(activity.PropPublished)
	assert.Equal(t, "raw:2024-01-01T00:00:00Z", s)
}

func TestCharset(t *testing.T) {
	c := newCodec(t, WithCharset("utf-16le"))
	assert.Equal(t, "utf-16le", c.Charset())
	doc := document.NewBuilder().Text(activity.PropContent, "héllo").Build()

	var buf bytes.Buffer
	require.NoError(t, c.Write(&buf, doc))
	assert.NotContains(t, buf.String(), "héllo")

	got, err := ReadAs[*document.Document](c, &buf)
	require.NoError(t, err)
	assert.True(t, got.Equal(doc))

	_, err = New(WithCharset("no-such-charset"))
	assert.Error(t, err)
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := newCodec(t, WithMetrics(reg))
	// A second codec on the same registry shares the collectors.
	other := newCodec(t, WithMetrics(reg))

	decode(t, c, `{"verb":"post","actor":"a"}`)
	decode(t, other, `{"objectType":"nope"}`)
	_, err := c.Decode([]byte(`{"objectType":false}`), nil)
	require.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.metrics.decoded.WithLabelValues(activity.TagActivity)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.metrics.decoded.WithLabelValues(schema.GenericFactoryID)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.metrics.sniffed.WithLabelValues(activity.TagActivity)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.metrics.unknownTags))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.metrics.errors.WithLabelValues("decode", "malformed")))
}

func TestModuleRegistry(t *testing.T) {
	m := &testModule{name: "codec-test-registry"}
	require.NoError(t, RegisterModule(m))
	assert.Error(t, RegisterModule(m), "duplicate names are rejected")

	got, ok := LookupModule("codec-test-registry")
	require.True(t, ok)
	assert.Same(t, m, got)
	assert.Contains(t, ModuleNames(), "codec-test-registry")

	_, err := ResolveModules("codec-test-registry", "missing")
	assert.Error(t, err)
}

func TestModuleContributions(t *testing.T) {
	kind := schema.Kind("rating")
	mod := &testModule{
		name:   "ratings",
		models: []*schema.Model{schema.NewModel("review").Parent(activity.TagObject).Property(kind, "rating").Build()},
		register: func(r *Registrar) {
			r.Adapter(kind, AdapterFunc(func(d *Decoder, v any) (any, error) {
				s, ok := v.(string)
				if !ok {
					return nil, d.Malformed("rating must be a string")
				}
				return len(s), nil
			}))
		},
	}
	c := newCodec(t, WithModules(mod))

	doc := decode(t, c, `{"objectType":"review","rating":"****"}`)
	v, _ := doc.Doc().Get("rating")
	assert.Equal(t, 4, v)

	_, ok := c.Schema().Model("review")
	assert.True(t, ok)
	_, ok = activity.Schema().Model("review")
	assert.False(t, ok, "the base schema is not modified")
}

func TestTemplateOverrideKeepsFactory(t *testing.T) {
	mod := &testModule{
		name:   "witnesses",
		models: []*schema.Model{activity.ActivityModel().Template().Link("witness").Build()},
	}
	c := newCodec(t, WithModules(mod))

	m, ok := c.Schema().Model(activity.TagActivity)
	require.True(t, ok)
	assert.Equal(t, schema.KindLink, m.KindOf("witness"))

	tagged := decode(t, c, `{"objectType":"activity","verb":"post","witness":"acct:bob@example.org"}`)
	a, ok := tagged.(*activity.Activity)
	require.True(t, ok, "got %T", tagged)
	assert.Equal(t, "acct:bob@example.org", a.Doc().Link("witness").URI())

	sniffed := decode(t, c, `{"verb":"post","actor":"a","object":"o"}`)
	assert.IsType(t, &activity.Activity{}, sniffed)
}

func TestDuration(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"PT0S", 0},
		{"PT1H30M", 90 * time.Minute},
		{"P1DT2H", 26 * time.Hour},
		{"P2W", 14 * 24 * time.Hour},
		{"PT0.5S", 500 * time.Millisecond},
		{"PT1,5S", 1500 * time.Millisecond},
		{"-PT5M", -5 * time.Minute},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDuration(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			back, err := ParseDuration(FormatDuration(got))
			require.NoError(t, err)
			assert.Equal(t, got, back)
		})
	}

	for _, bad := range []string{"", "P", "PT", "1H", "P1Y", "P1M", "PT1X", "P1DT", "PT9223372037S", "-PT9223372037S", "P106752D"} {
		_, err := ParseDuration(bad)
		assert.Error(t, err, bad)
	}

	assert.Equal(t, "P1DT2H3M4.5S", FormatDuration(26*time.Hour+3*time.Minute+4500*time.Millisecond))
	assert.Equal(t, "-P106751DT23H47M16.854775808S", FormatDuration(math.MinInt64))
	assert.Equal(t, "P106751DT23H47M16.854775807S", FormatDuration(math.MaxInt64))

	got, err := ParseDuration("PT90M")
	require.NoError(t, err)
	assert.Equal(t, 90*time.Minute, got)
}
