// Package activitystreams provides vocabulary predicates for activity
// documents.
//
// Each wire property of the built-in object, activity and collection types
// has a three-level dotted predicate (domain.category.property) registered
// with the semstreams vocabulary in init(). Predicates carry an IRI mapping
// for RDF export: standard ontologies where one fits, otherwise the
// Activity Streams namespace.
//
// # Usage
//
// Import the package to register predicates, then map document properties:
//
//	pred, ok := activitystreams.PredicateFor("published")
//	// pred == activitystreams.ObjectPublished
//	meta := vocabulary.GetPredicateMetadata(pred)
//	// meta.StandardIRI == vocabulary.ProvGeneratedAtTime
//
// # IRI Mappings
//
//   - id → dc:identifier
//   - displayName → skos:prefLabel
//   - title → dc:title
//   - author → prov:wasAttributedTo
//   - published → prov:generatedAtTime
//   - objectType → rdf:type
//
// Other properties use https://www.w3.org/ns/activitystreams#.
package activitystreams
