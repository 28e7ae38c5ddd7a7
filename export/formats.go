package export

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

const xsdNamespace = "http://www.w3.org/2001/XMLSchema#"

// FormatInfo provides metadata about an export format.
type FormatInfo struct {
	// Name is the format identifier.
	Name Format

	// MIMEType is the standard MIME type.
	MIMEType string

	// Extension is the file extension (with dot).
	Extension string

	// Description describes the format.
	Description string
}

// FormatRegistry contains metadata for all supported formats.
var FormatRegistry = map[Format]FormatInfo{
	FormatTurtle: {
		Name:        FormatTurtle,
		MIMEType:    "text/turtle",
		Extension:   ".ttl",
		Description: "Turtle - Terse RDF Triple Language",
	},
	FormatNTriples: {
		Name:        FormatNTriples,
		MIMEType:    "application/n-triples",
		Extension:   ".nt",
		Description: "N-Triples - Line-based RDF format",
	},
	FormatJSONLD: {
		Name:        FormatJSONLD,
		MIMEType:    "application/ld+json",
		Extension:   ".jsonld",
		Description: "JSON-LD - JSON for Linked Data",
	},
}

// GetFormatInfo returns metadata for a format.
func GetFormatInfo(format Format) (FormatInfo, bool) {
	info, ok := FormatRegistry[format]
	return info, ok
}

// TurtleWriter writes RDF in Turtle format.
type TurtleWriter struct {
	prefixes map[string]string
	sb       strings.Builder
}

// NewTurtleWriter creates a new Turtle writer with default prefixes.
func NewTurtleWriter() *TurtleWriter {
	return &TurtleWriter{prefixes: defaultPrefixes()}
}

// SetPrefix sets a namespace prefix.
func (w *TurtleWriter) SetPrefix(prefix, iri string) {
	w.prefixes[prefix] = iri
}

// WritePrefixes writes prefix declarations in sorted order.
func (w *TurtleWriter) WritePrefixes() {
	for _, prefix := range sortedKeys(w.prefixes) {
		fmt.Fprintf(&w.sb, "@prefix %s: <%s> .\n", prefix, w.prefixes[prefix])
	}
	w.sb.WriteString("\n")
}

// WriteSubject starts a new subject block.
func (w *TurtleWriter) WriteSubject(iri string) {
	fmt.Fprintf(&w.sb, "<%s>\n", iri)
}

// WriteType writes a type assertion.
func (w *TurtleWriter) WriteType(typeIRI string, last bool) {
	fmt.Fprintf(&w.sb, "    a <%s>%s\n", typeIRI, terminator(last))
}

// WritePredicate writes a predicate-object pair.
func (w *TurtleWriter) WritePredicate(predicateIRI string, object Term, last bool) {
	fmt.Fprintf(&w.sb, "    <%s> %s%s\n", predicateIRI, formatObject(object), terminator(last))
}

// WriteBlank writes a blank line for readability.
func (w *TurtleWriter) WriteBlank() {
	w.sb.WriteString("\n")
}

// String returns the accumulated Turtle output.
func (w *TurtleWriter) String() string {
	return w.sb.String()
}

func terminator(last bool) string {
	if last {
		return " ."
	}
	return " ;"
}

// NTriplesWriter writes RDF in N-Triples format.
type NTriplesWriter struct {
	sb strings.Builder
}

// NewNTriplesWriter creates a new N-Triples writer.
func NewNTriplesWriter() *NTriplesWriter {
	return &NTriplesWriter{}
}

// WriteTriple writes a single triple.
func (w *NTriplesWriter) WriteTriple(subject, predicate string, object Term) {
	fmt.Fprintf(&w.sb, "<%s> <%s> %s .\n", subject, predicate, formatObjectNTriples(object))
}

// WriteTypeTriple writes a type assertion triple.
func (w *NTriplesWriter) WriteTypeTriple(subject, typeIRI string) {
	fmt.Fprintf(&w.sb, "<%s> <%s> <%s> .\n", subject, defaultPrefixes()["rdf"]+"type", typeIRI)
}

// String returns the accumulated N-Triples output.
func (w *NTriplesWriter) String() string {
	return w.sb.String()
}

// JSONLDDocument represents a JSON-LD document structure.
type JSONLDDocument struct {
	Context map[string]any `json:"@context"`
	Graph   []JSONLDNode   `json:"@graph"`
}

// JSONLDNode represents a node in a JSON-LD graph.
type JSONLDNode struct {
	ID         string         `json:"@id"`
	Type       []string       `json:"@type,omitempty"`
	Properties map[string]any `json:"-"`
}

// MarshalJSON flattens Properties next to @id and @type.
func (n JSONLDNode) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(n.Properties)+2)
	m["@id"] = n.ID
	if len(n.Type) > 0 {
		m["@type"] = n.Type
	}
	for k, v := range n.Properties {
		m[k] = v
	}
	return json.Marshal(m)
}

// UnmarshalJSON collects every non-keyword member into Properties.
func (n *JSONLDNode) UnmarshalJSON(data []byte) error {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	*n = JSONLDNode{Properties: make(map[string]any)}
	for k, v := range m {
		switch k {
		case "@id":
			n.ID, _ = v.(string)
		case "@type":
			switch t := v.(type) {
			case string:
				n.Type = []string{t}
			case []any:
				for _, s := range t {
					if s, ok := s.(string); ok {
						n.Type = append(n.Type, s)
					}
				}
			}
		default:
			n.Properties[k] = v
		}
	}
	return nil
}

// JSONLDWriter writes RDF in JSON-LD format.
type JSONLDWriter struct {
	doc JSONLDDocument
}

// NewJSONLDWriter creates a new JSON-LD writer.
func NewJSONLDWriter() *JSONLDWriter {
	return &JSONLDWriter{
		doc: JSONLDDocument{
			Context: make(map[string]any),
			Graph:   make([]JSONLDNode, 0),
		},
	}
}

// SetContext sets the @context with prefixes.
func (w *JSONLDWriter) SetContext(prefixes map[string]string) {
	for k, v := range prefixes {
		w.doc.Context[k] = v
	}
}

// AddNode adds a node to the graph.
func (w *JSONLDWriter) AddNode(id string, types []string, properties map[string]any) {
	w.doc.Graph = append(w.doc.Graph, JSONLDNode{
		ID:         id,
		Type:       types,
		Properties: properties,
	})
}

// String returns the JSON-LD output.
func (w *JSONLDWriter) String() string {
	data, err := json.MarshalIndent(w.doc, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(data)
}

// ParseJSONLD reads a document produced by JSONLDWriter.
func ParseJSONLD(data []byte) (*JSONLDDocument, error) {
	var doc JSONLDDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// lexical returns the literal form and XSD datatype local name of a value.
func lexical(v any) (string, string) {
	switch x := v.(type) {
	case string:
		return x, ""
	case int:
		return strconv.Itoa(x), "integer"
	case int32:
		return strconv.FormatInt(int64(x), 10), "integer"
	case int64:
		return strconv.FormatInt(x, 10), "integer"
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32), "decimal"
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), "decimal"
	case bool:
		return strconv.FormatBool(x), "boolean"
	default:
		return fmt.Sprint(x), ""
	}
}

// formatObject formats an object term for Turtle output.
func formatObject(t Term) string {
	if t.IRI != "" {
		return "<" + t.IRI + ">"
	}
	s, dt := lexical(t.Value)
	if t.Datatype != "" {
		dt = t.Datatype
	}
	if dt == "" {
		return fmt.Sprintf("\"%s\"", escapeString(s))
	}
	return fmt.Sprintf("\"%s\"^^xsd:%s", escapeString(s), dt)
}

// formatObjectNTriples formats an object term for N-Triples output.
func formatObjectNTriples(t Term) string {
	if t.IRI != "" {
		return "<" + t.IRI + ">"
	}
	s, dt := lexical(t.Value)
	if t.Datatype != "" {
		dt = t.Datatype
	}
	if dt == "" {
		return fmt.Sprintf("\"%s\"", escapeString(s))
	}
	return fmt.Sprintf("\"%s\"^^<%s%s>", escapeString(s), xsdNamespace, dt)
}

// formatObjectJSONLD formats an object term as a JSON-LD value.
func formatObjectJSONLD(t Term) any {
	if t.IRI != "" {
		return map[string]any{"@id": t.IRI}
	}
	if t.Datatype != "" {
		s, _ := lexical(t.Value)
		return map[string]any{"@value": s, "@type": "xsd:" + t.Datatype}
	}
	switch t.Value.(type) {
	case string, bool, int, int32, int64, float32, float64:
		return t.Value
	}
	s, _ := lexical(t.Value)
	return s
}

// escapeString escapes special characters in strings for RDF serialization.
func escapeString(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	s = strings.ReplaceAll(s, "\n", "\\n")
	s = strings.ReplaceAll(s, "\r", "\\r")
	s = strings.ReplaceAll(s, "\t", "\\t")
	return s
}
