// Package graph flattens documents into semstreams triples for knowledge
// graph ingestion.
package graph

import (
	"regexp"
	"strings"
	"time"

	"github.com/c360studio/semactivity/activity"
	"github.com/c360studio/semactivity/codec"
	"github.com/c360studio/semactivity/document"
	"github.com/c360studio/semactivity/vocabulary/activitystreams"
	"github.com/c360studio/semstreams/message"
)

// Source is recorded on every triple produced here.
const Source = "semactivity.graph"

// ExtensionPrefix prefixes predicates for properties outside the vocabulary.
const ExtensionPrefix = "activity.extension."

var nonPredicateChars = regexp.MustCompile(`[^a-z0-9_]+`)

// ExtensionPredicate returns the predicate used for an unmapped property.
// The name is snake-cased so the predicate stays three-level dotted.
func ExtensionPredicate(property string) string {
	var sb strings.Builder
	for i, r := range property {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				sb.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		sb.WriteRune(r)
	}
	name := strings.Trim(nonPredicateChars.ReplaceAllString(sb.String(), "_"), "_")
	if name == "" {
		name = "unnamed"
	}
	return ExtensionPrefix + name
}

// PredicateFor maps a wire property to its predicate.
func PredicateFor(property string) string {
	if p, ok := activitystreams.PredicateFor(property); ok {
		return p
	}
	return ExtensionPredicate(property)
}

// EntityID returns the subject used for doc: its id, or a fresh URN for an
// anonymous document.
func EntityID(doc document.Typed) string {
	if id := doc.Doc().ID(); id != "" {
		return id
	}
	return activity.NewID()
}

// Triples flattens doc and every embedded document into triples. Embedded
// documents become their own subjects, referenced by entity id.
func Triples(doc document.Typed, now time.Time) []message.Triple {
	_, triples := Flatten(doc, now)
	return triples
}

// Flatten is Triples that also returns the subject chosen for doc.
func Flatten(doc document.Typed, now time.Time) (string, []message.Triple) {
	f := &flattener{now: now}
	subject := f.entity(doc.Doc())
	return subject, f.out
}

type flattener struct {
	now time.Time
	out []message.Triple
}

// entity emits the triples of d and returns its subject.
func (f *flattener) entity(d *document.Document) string {
	subject := EntityID(d)
	d.Range(func(name string, value any) bool {
		if name == document.PropID {
			return true
		}
		f.values(subject, PredicateFor(name), value)
		return true
	})
	return subject
}

func (f *flattener) values(subject, predicate string, v any) {
	switch x := v.(type) {
	case *document.Link:
		switch x.Shape() {
		case document.ShapeSimple:
			f.emit(subject, predicate, x.URI())
		case document.ShapeObject:
			f.emit(subject, predicate, f.entity(x.Object()))
		default:
			for _, item := range x.Items() {
				f.values(subject, predicate, item)
			}
		}
	case *document.TypeValue:
		if x.Shape() == document.ShapeObject {
			f.entity(x.Object())
		}
		f.emit(subject, predicate, activitystreams.ClassIRI(x.ID()))
	case *document.LangText:
		if x.Shape() == document.ShapeSimple {
			f.emit(subject, predicate, x.Text())
			return
		}
		for _, lang := range x.Languages() {
			s, _ := x.Get(lang)
			f.emit(subject, predicate, s)
		}
	case document.Typed:
		f.emit(subject, predicate, f.entity(x.Doc()))
	case []any:
		for _, item := range x {
			f.values(subject, predicate, item)
		}
	case time.Time:
		f.emit(subject, predicate, x.Format(time.RFC3339))
	case time.Duration:
		f.emit(subject, predicate, codec.FormatDuration(x))
	case document.MediaType:
		f.emit(subject, predicate, x.String())
	case nil:
	default:
		f.emit(subject, predicate, x)
	}
}

func (f *flattener) emit(subject, predicate string, object any) {
	f.out = append(f.out, message.Triple{
		Subject:    subject,
		Predicate:  predicate,
		Object:     object,
		Source:     Source,
		Timestamp:  f.now,
		Confidence: 1.0,
	})
}
