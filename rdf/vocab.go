package rdf

// Well-known vocabulary IRIs used across extraction and storage.
const (
	// PredType is rdf:type.
	PredType = "http://www.w3.org/1999/02/22-rdf-syntax-ns#type"

	// PredLabel is rdfs:label, the predicate carrying an entity's
	// human-readable name. Label objects feed the semantic candidate index.
	PredLabel = "http://www.w3.org/2000/01/rdf-schema#label"

	// PredComment is rdfs:comment.
	PredComment = "http://www.w3.org/2000/01/rdf-schema#comment"
)

// LabelPredicates are the predicates whose literal objects are treated as
// entity names for candidate retrieval.
var LabelPredicates = map[string]bool{
	PredLabel: true,
	"http://xmlns.com/foaf/0.1/name": true,
	"https://schema.org/name":        true,
}
