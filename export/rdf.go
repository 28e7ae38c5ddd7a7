package export

import (
	"fmt"
	"io"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/c360studio/semactivity/document"
	"github.com/c360studio/semactivity/graph"
	"github.com/c360studio/semactivity/vocabulary/activitystreams"
	"github.com/c360studio/semstreams/message"
	"github.com/c360studio/semstreams/vocabulary"
)

// Source is recorded on triples generated by the exporter.
const Source = "semactivity.rdf-export"

// EntityNamespace prefixes subjects whose id is not already an IRI.
const EntityNamespace = "urn:semactivity:entity:"

// ExtensionNamespace prefixes predicates outside the registered vocabulary.
const ExtensionNamespace = "urn:semactivity:extension:"

// Format specifies the output serialization format.
type Format string

const (
	// FormatTurtle produces Turtle (.ttl) output.
	FormatTurtle Format = "turtle"

	// FormatNTriples produces N-Triples (.nt) output.
	FormatNTriples Format = "ntriples"

	// FormatJSONLD produces JSON-LD (.jsonld) output.
	FormatJSONLD Format = "jsonld"
)

// ParseFormat accepts a format name or one of its common aliases.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "turtle", "ttl":
		return FormatTurtle, nil
	case "ntriples", "n-triples", "nt":
		return FormatNTriples, nil
	case "jsonld", "json-ld":
		return FormatJSONLD, nil
	}
	return "", fmt.Errorf("unsupported format: %s", s)
}

// Entity is one subject with its class IRIs and remaining triples.
type Entity struct {
	ID      string
	Classes []string
	Triples []message.Triple
}

// Category classifies the entity for type alignment.
func (e Entity) Category() Category {
	hasVerb := false
	for _, t := range e.Triples {
		if t.Predicate == activitystreams.ActivityVerb {
			hasVerb = true
			break
		}
	}
	return Classify(e.Classes, hasVerb)
}

// RDFExporter exports documents to RDF with configurable ontology profiles.
type RDFExporter struct {
	asserter *TypeAsserter
	entities []*Entity
	index    map[string]*Entity
	prefixes map[string]string
}

// NewRDFExporter creates a new RDF exporter with the specified profile.
func NewRDFExporter(profile Profile) *RDFExporter {
	return &RDFExporter{
		asserter: NewTypeAsserter(profile),
		index:    make(map[string]*Entity),
		prefixes: defaultPrefixes(),
	}
}

// defaultPrefixes returns the standard namespace prefixes for RDF export.
func defaultPrefixes() map[string]string {
	return map[string]string{
		"rdf":  "http://www.w3.org/1999/02/22-rdf-syntax-ns#",
		"xsd":  "http://www.w3.org/2001/XMLSchema#",
		"dc":   "http://purl.org/dc/terms/",
		"skos": "http://www.w3.org/2004/02/skos/core#",
		"prov": "http://www.w3.org/ns/prov#",
		"bfo":  "http://purl.obolibrary.org/obo/",
		"cco":  "http://www.ontologyrepository.com/CommonCoreOntologies/",
		"as":   activitystreams.Namespace,
	}
}

// Entities returns the collected entities in insertion order.
func (e *RDFExporter) Entities() []Entity {
	out := make([]Entity, len(e.entities))
	for i, ent := range e.entities {
		out[i] = *ent
	}
	return out
}

// AddDocument flattens doc and adds its entities, the document itself first.
func (e *RDFExporter) AddDocument(doc document.Typed, now time.Time) string {
	subject, triples := graph.Flatten(doc, now)
	e.entity(subject)
	e.AddTriples(triples)
	return subject
}

// AddTriples groups triples by subject. Object type triples become entity
// classes.
func (e *RDFExporter) AddTriples(triples []message.Triple) {
	for _, t := range triples {
		ent := e.entity(t.Subject)
		if t.Predicate == activitystreams.ObjectType {
			if s, ok := t.Object.(string); ok {
				ent.Classes = append(ent.Classes, s)
				continue
			}
		}
		ent.Triples = append(ent.Triples, t)
	}
}

func (e *RDFExporter) entity(id string) *Entity {
	if ent, ok := e.index[id]; ok {
		return ent
	}
	ent := &Entity{ID: id}
	e.index[id] = ent
	e.entities = append(e.entities, ent)
	return ent
}

// types returns the declared classes followed by the profile's alignment.
func (e *RDFExporter) types(ent *Entity) []string {
	types := append([]string(nil), ent.Classes...)
	return append(types, e.asserter.GetTypeIRIs(ent.Category())...)
}

// Export serializes all entities to the specified format.
func (e *RDFExporter) Export(format Format) (string, error) {
	switch format {
	case FormatTurtle:
		return e.toTurtle(), nil
	case FormatNTriples:
		return e.toNTriples(), nil
	case FormatJSONLD:
		return e.toJSONLD(), nil
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}

// Write exports to w.
func (e *RDFExporter) Write(w io.Writer, format Format) error {
	out, err := e.Export(format)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}

func (e *RDFExporter) toTurtle() string {
	w := NewTurtleWriter()
	for k, v := range e.prefixes {
		w.SetPrefix(k, v)
	}
	w.WritePrefixes()

	for _, ent := range e.entities {
		types := e.types(ent)
		if len(types) == 0 && len(ent.Triples) == 0 {
			continue
		}
		w.WriteSubject(e.SubjectIRI(ent.ID))
		for i, typeIRI := range types {
			w.WriteType(typeIRI, i == len(types)-1 && len(ent.Triples) == 0)
		}
		for i, t := range ent.Triples {
			w.WritePredicate(PredicateIRI(t.Predicate), e.term(t), i == len(ent.Triples)-1)
		}
		w.WriteBlank()
	}
	return w.String()
}

func (e *RDFExporter) toNTriples() string {
	w := NewNTriplesWriter()
	for _, ent := range e.entities {
		subject := e.SubjectIRI(ent.ID)
		for _, typeIRI := range e.types(ent) {
			w.WriteTypeTriple(subject, typeIRI)
		}
		for _, t := range ent.Triples {
			w.WriteTriple(subject, PredicateIRI(t.Predicate), e.term(t))
		}
	}
	return w.String()
}

func (e *RDFExporter) toJSONLD() string {
	w := NewJSONLDWriter()
	w.SetContext(e.prefixes)
	for _, ent := range e.entities {
		props := make(map[string]any)
		for _, t := range ent.Triples {
			key := PredicateIRI(t.Predicate)
			val := formatObjectJSONLD(e.term(t))
			switch prev := props[key].(type) {
			case nil:
				props[key] = val
			case []any:
				props[key] = append(prev, val)
			default:
				props[key] = []any{prev, val}
			}
		}
		w.AddNode(e.SubjectIRI(ent.ID), e.types(ent), props)
	}
	return w.String()
}

// SubjectIRI converts an entity id to an IRI. Ids with a scheme are kept.
func (e *RDFExporter) SubjectIRI(id string) string {
	if hasScheme(id) {
		return id
	}
	return EntityNamespace + url.PathEscape(id)
}

// PredicateIRI returns the standard IRI registered for a predicate, or an
// extension IRI for unregistered ones.
func PredicateIRI(predicate string) string {
	if meta := vocabulary.GetPredicateMetadata(predicate); meta != nil && meta.StandardIRI != "" {
		return meta.StandardIRI
	}
	return ExtensionNamespace + strings.TrimPrefix(predicate, graph.ExtensionPrefix)
}

// Term is a typed RDF object.
type Term struct {
	IRI      string
	Value    any
	Datatype string
}

// term decides how a triple object is rendered. Strings become IRIs when
// they name a known entity or fill a reference-valued predicate.
func (e *RDFExporter) term(t message.Triple) Term {
	s, ok := t.Object.(string)
	if !ok {
		return Term{Value: t.Object}
	}
	if _, known := e.index[s]; known {
		return Term{IRI: e.SubjectIRI(s)}
	}
	var dataType string
	if meta := vocabulary.GetPredicateMetadata(t.Predicate); meta != nil {
		dataType = meta.DataType
	}
	switch dataType {
	case "entity_id", "array":
		if hasScheme(s) {
			return Term{IRI: s}
		}
	case "datetime":
		if _, err := time.Parse(time.RFC3339, s); err == nil {
			return Term{Value: s, Datatype: "dateTime"}
		}
	}
	return Term{Value: s}
}

// hasScheme reports whether s starts with an IRI scheme.
func hasScheme(s string) bool {
	i := strings.IndexByte(s, ':')
	if i <= 0 {
		return false
	}
	for j, r := range s[:i] {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case j > 0 && (r >= '0' && r <= '9' || r == '+' || r == '-' || r == '.'):
		default:
			return false
		}
	}
	return !strings.ContainsAny(s, " \t\n<>\"{}|\\^`")
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
