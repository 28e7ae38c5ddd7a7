package graph

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/c360studio/semactivity/activity"
	"github.com/c360studio/semactivity/codec"
	"github.com/c360studio/semactivity/document"
	"github.com/c360studio/semactivity/vocabulary/activitystreams"
	"github.com/c360studio/semstreams/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildActivity(t *testing.T) *activity.Activity {
	t.Helper()
	note := document.NewBuilder().
		ID("urn:note:1").
		ObjectType("note").
		Text(activity.PropContent, "hello").
		Build()
	b := activity.NewActivity().
		Verb(activity.VerbPost).
		Actor(document.LinkTo("acct:alice@example.org")).
		Object(document.LinkObject(note)).
		Published(time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC))
	b.ID("urn:activity:1")
	b.LinkURI(activity.PropTags, "urn:tag:a")
	b.LinkURI(activity.PropTags, "urn:tag:b")
	b.Set("mood", "happy")
	a, err := b.Build()
	require.NoError(t, err)
	return a
}

func find(triples []message.Triple, subject, predicate string) []any {
	var out []any
	for _, tr := range triples {
		if tr.Subject == subject && tr.Predicate == predicate {
			out = append(out, tr.Object)
		}
	}
	return out
}

func TestTriples(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	triples := Triples(buildActivity(t), now)

	const subj = "urn:activity:1"
	assert.Equal(t, []any{activitystreams.ClassIRI("activity")}, find(triples, subj, activitystreams.ObjectType))
	assert.Equal(t, []any{activitystreams.ClassIRI("post")}, find(triples, subj, activitystreams.ActivityVerb))
	assert.Equal(t, []any{"acct:alice@example.org"}, find(triples, subj, activitystreams.ActivityActor))
	assert.Equal(t, []any{"urn:note:1"}, find(triples, subj, activitystreams.ActivityObject))
	assert.Equal(t, []any{"urn:tag:a", "urn:tag:b"}, find(triples, subj, activitystreams.ObjectTag))
	assert.Equal(t, []any{"2024-02-03T04:05:06Z"}, find(triples, subj, activitystreams.ObjectPublished))
	assert.Equal(t, []any{"happy"}, find(triples, subj, "activity.extension.mood"))

	// The embedded note is its own entity.
	assert.Equal(t, []any{"hello"}, find(triples, "urn:note:1", activitystreams.ObjectContent))

	for _, tr := range triples {
		assert.Equal(t, Source, tr.Source)
		assert.Equal(t, now, tr.Timestamp)
		assert.Equal(t, 1.0, tr.Confidence)
		assert.NotEqual(t, activitystreams.ObjectID, tr.Predicate, "ids are subjects, not triples")
	}
}

func TestAnonymousDocumentsGetURNSubjects(t *testing.T) {
	inner := document.NewBuilder().Set("k", int64(1)).Build()
	doc := document.NewBuilder().Set("inner", inner).Build()

	subject, triples := Flatten(doc, time.Now())
	require.Len(t, triples, 2)
	assert.True(t, strings.HasPrefix(subject, "urn:uuid:"))

	var ref any
	for _, tr := range triples {
		if tr.Subject == subject {
			ref = tr.Object
		}
	}
	require.NotNil(t, ref)
	assert.NotEqual(t, subject, ref)
	assert.Equal(t, []any{int64(1)}, find(triples, ref.(string), "activity.extension.k"))
}

func TestExtensionPredicate(t *testing.T) {
	tests := map[string]string{
		"mood":         "activity.extension.mood",
		"likeCount":    "activity.extension.like_count",
		"x-custom":     "activity.extension.x_custom",
		"http://a/b#c": "activity.extension.http_a_b_c",
		"--":           "activity.extension.unnamed",
	}
	for in, want := range tests {
		assert.Equal(t, want, ExtensionPredicate(in), in)
	}
	assert.Equal(t, activitystreams.ActivityActor, PredicateFor(activity.PropActor))
}

func TestDocumentPayload(t *testing.T) {
	c, err := codec.New()
	require.NoError(t, err)
	a := buildActivity(t)

	p, err := NewDocumentPayload(c, a, time.Now().UTC())
	require.NoError(t, err)
	require.NoError(t, p.Validate())
	assert.Equal(t, "urn:activity:1", p.EntityID())
	assert.Equal(t, DocumentType, p.Schema())
	assert.NotEmpty(t, p.Triples())

	data, err := json.Marshal(p)
	require.NoError(t, err)
	var back DocumentPayload
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, p.EntityID(), back.EntityID())

	doc, err := back.Decode(c)
	require.NoError(t, err)
	got, ok := doc.(*activity.Activity)
	require.True(t, ok, "got %T", doc)
	assert.True(t, got.Doc().Equal(a.Doc()))

	assert.Error(t, (&DocumentPayload{}).Validate())
	assert.Error(t, (&DocumentPayload{EntityID_: "x"}).Validate())
}
