// Package classifier decides whether a group message is an offer or a
// query, and for which category.
//
// A Classifier runs an ignore gate, then an optional remote strategy, then
// the local keyword heuristic. Unclassifiable input yields nil, never an
// error: the bot stays silent on anything it cannot place.
package classifier

// Result is a successful classification.
type Result struct {
	Category         string  `json:"category"`
	Subcategory      *string `json:"subcategory,omitempty"`
	ListingType      string  `json:"listing_type"`
	Contact          *string `json:"contact,omitempty"`
	PropertyType     *string `json:"property_type,omitempty"`
	GenderPreference *string `json:"gender_preference,omitempty"`
	PropertySource   *string `json:"property_source,omitempty"`
}

// Strategy names used in logs and metrics.
const (
	StrategyGate      = "gate"
	StrategyRemote    = "remote"
	StrategyHeuristic = "heuristic"
)
