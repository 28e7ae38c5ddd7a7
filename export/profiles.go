// Package export serializes activity documents as RDF, with optional
// PROV-O, BFO and CCO type alignment.
package export

import (
	"github.com/c360studio/semactivity/vocabulary/activitystreams"
	"github.com/c360studio/semstreams/message"
	"github.com/c360studio/semstreams/vocabulary"
	"github.com/c360studio/semstreams/vocabulary/bfo"
	"github.com/c360studio/semstreams/vocabulary/cco"
)

// Profile determines which ontology type assertions are included in the export.
type Profile string

const (
	// ProfileMinimal includes Activity Streams classes and PROV-O alignment.
	ProfileMinimal Profile = "minimal"

	// ProfileBFO includes BFO type assertions plus minimal profile.
	ProfileBFO Profile = "bfo"

	// ProfileCCO includes CCO type assertions plus BFO profile.
	ProfileCCO Profile = "cco"
)

// ProfileConfig contains configuration for an export profile.
type ProfileConfig struct {
	Name        Profile
	Description string

	IncludePROV bool
	IncludeBFO  bool
	IncludeCCO  bool
}

// Profiles contains the configuration for all available export profiles.
var Profiles = map[Profile]ProfileConfig{
	ProfileMinimal: {
		Name:        ProfileMinimal,
		Description: "Activity Streams classes with PROV-O alignment",
		IncludePROV: true,
	},
	ProfileBFO: {
		Name:        ProfileBFO,
		Description: "BFO type assertions plus minimal profile",
		IncludePROV: true,
		IncludeBFO:  true,
	},
	ProfileCCO: {
		Name:        ProfileCCO,
		Description: "Full CCO/BFO/PROV-O alignment",
		IncludePROV: true,
		IncludeBFO:  true,
		IncludeCCO:  true,
	},
}

// GetProfileConfig returns the configuration for a profile. Unknown profiles
// fall back to minimal.
func GetProfileConfig(profile Profile) ProfileConfig {
	if config, ok := Profiles[profile]; ok {
		return config
	}
	return Profiles[ProfileMinimal]
}

// Category is the coarse role an entity plays for alignment purposes.
type Category string

const (
	CategoryActivity   Category = "activity"
	CategoryAgent      Category = "agent"
	CategoryCollection Category = "collection"
	CategoryEntity     Category = "entity"
)

// agentClasses are the object types treated as agents.
var agentClasses = map[string]bool{
	activitystreams.ClassIRI("person"):       true,
	activitystreams.ClassIRI("organization"): true,
	activitystreams.ClassIRI("group"):        true,
	activitystreams.ClassIRI("application"):  true,
	activitystreams.ClassIRI("service"):      true,
}

// Classify derives the category of an entity from its class IRIs. hasVerb
// marks entities that carry a verb but no explicit activity class.
func Classify(classIRIs []string, hasVerb bool) Category {
	for _, c := range classIRIs {
		switch {
		case c == activitystreams.ClassIRI("activity"):
			return CategoryActivity
		case c == activitystreams.ClassIRI("collection"):
			return CategoryCollection
		case agentClasses[c]:
			return CategoryAgent
		}
	}
	if hasVerb {
		return CategoryActivity
	}
	return CategoryEntity
}

// TypeAsserter generates alignment type assertions for entities based on profile.
type TypeAsserter struct {
	profile ProfileConfig
}

// NewTypeAsserter creates a new type asserter for the given profile.
func NewTypeAsserter(profile Profile) *TypeAsserter {
	return &TypeAsserter{profile: GetProfileConfig(profile)}
}

// Profile returns the resolved profile configuration.
func (t *TypeAsserter) Profile() ProfileConfig {
	return t.profile
}

// GetTypeIRIs returns the alignment classes for a category.
func (t *TypeAsserter) GetTypeIRIs(category Category) []string {
	h := GetTypeHierarchy(category)
	types := make([]string, 0, 3)
	if t.profile.IncludePROV && h.PROVClass != "" {
		types = append(types, h.PROVClass)
	}
	if t.profile.IncludeBFO && h.BFOClass != "" {
		types = append(types, h.BFOClass)
	}
	if t.profile.IncludeCCO && h.CCOClass != "" {
		types = append(types, h.CCOClass)
	}
	return types
}

// TypeTriples returns type triples for an entity under the given profile.
func TypeTriples(entityID string, category Category, profile Profile) []message.Triple {
	typeIRIs := NewTypeAsserter(profile).GetTypeIRIs(category)
	triples := make([]message.Triple, 0, len(typeIRIs))
	for _, typeIRI := range typeIRIs {
		triples = append(triples, message.Triple{
			Subject:    entityID,
			Predicate:  activitystreams.ObjectType,
			Object:     typeIRI,
			Source:     Source,
			Confidence: 1.0,
		})
	}
	return triples
}

// TypeHierarchy is the alignment of one category across ontologies.
type TypeHierarchy struct {
	PROVClass string
	BFOClass  string
	CCOClass  string
}

var hierarchies = map[Category]TypeHierarchy{
	CategoryActivity: {
		PROVClass: vocabulary.ProvActivity,
		BFOClass:  bfo.Process,
		CCOClass:  cco.ActOfCommunication,
	},
	CategoryAgent: {
		PROVClass: vocabulary.ProvAgent,
		BFOClass:  bfo.IndependentContinuant,
		CCOClass:  cco.Person,
	},
	CategoryCollection: {
		PROVClass: vocabulary.ProvEntity,
		BFOClass:  bfo.GenericallyDependentContinuant,
		CCOClass:  cco.InformationContentEntity,
	},
	CategoryEntity: {
		PROVClass: vocabulary.ProvEntity,
		BFOClass:  bfo.GenericallyDependentContinuant,
		CCOClass:  cco.InformationContentEntity,
	},
}

// GetTypeHierarchy returns the full type hierarchy for a category.
func GetTypeHierarchy(category Category) TypeHierarchy {
	return hierarchies[category]
}

// ClassDescriptions provides human-readable descriptions for alignment classes.
var ClassDescriptions = map[string]string{
	vocabulary.ProvEntity:              "Thing with fixed aspects",
	vocabulary.ProvActivity:            "Something that occurs over time",
	vocabulary.ProvAgent:               "Something bearing responsibility",
	bfo.Process:                        "Events that unfold over time",
	bfo.IndependentContinuant:          "Entities that can exist on their own",
	bfo.GenericallyDependentContinuant: "Information patterns that can be copied",
	cco.ActOfCommunication:             "Information transmission",
	cco.Person:                         "Human agent",
	cco.InformationContentEntity:       "Root class for information entities",
}
