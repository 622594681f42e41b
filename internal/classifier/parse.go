package classifier

import (
	"strings"

	"github.com/tbourn/go-society-bot/internal/contact"
	"github.com/tbourn/go-society-bot/internal/domain"
)

// Parsed is the outcome of reading a remote response. It is one of
// Fields, Ignored, Malformed or Unavailable.
type Parsed interface{ parsed() }

// Fields is a well-formed classification.
type Fields struct{ Result Result }

// Ignored means the remote judged the message irrelevant.
type Ignored struct{}

// Malformed means the response did not follow the grammar.
type Malformed struct{ Reason string }

// Unavailable means no response was obtained (error, timeout, budget).
type Unavailable struct{ Err error }

func (Fields) parsed()      {}
func (Ignored) parsed()     {}
func (Malformed) parsed()   {}
func (Unavailable) parsed() {}

const noneSentinel = "none"

// ParseResponse reads a "KEY: value" per line response. Keys are
// case-insensitive; values equal to "none" or empty are absent. A category
// outside cat collapses to Ignored; a missing or invalid TYPE is Malformed.
func ParseResponse(resp string, cat *Catalog) Parsed {
	fields := map[string]string{}
	for _, line := range strings.Split(resp, "\n") {
		k, v, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		k = strings.ToUpper(strings.TrimSpace(k))
		v = strings.Trim(strings.ToLower(strings.TrimSpace(v)), `"'`+"`")
		if _, seen := fields[k]; !seen {
			fields[k] = v
		}
	}
	if len(fields) == 0 {
		return Malformed{Reason: "no fields"}
	}

	category, ok := fields["CATEGORY"]
	if !ok {
		return Malformed{Reason: "missing category"}
	}
	if category == "ignore" || category == noneSentinel || !cat.Has(category) {
		return Ignored{}
	}

	var res Result
	res.Category = category
	switch fields["TYPE"] {
	case domain.ListingOffer, domain.ListingQuery:
		res.ListingType = fields["TYPE"]
	default:
		return Malformed{Reason: "invalid type"}
	}

	if v := optional(fields["SUBCATEGORY"]); v != "" {
		res.Subcategory = domain.Str(normalizeSubcategory(v))
	}
	if v := optional(fields["CONTACT"]); v != "" {
		// The remote echoes numbers in whatever format the poster used.
		res.Contact = contact.Ptr(v)
	}
	switch optional(fields["PROPERTY_TYPE"]) {
	case domain.PropertySale:
		res.PropertyType = domain.Str(domain.PropertySale)
	case domain.PropertyRent:
		res.PropertyType = domain.Str(domain.PropertyRent)
	}
	switch optional(fields["GENDER"]) {
	case domain.GenderMale:
		res.GenderPreference = domain.Str(domain.GenderMale)
	case domain.GenderFemale:
		res.GenderPreference = domain.Str(domain.GenderFemale)
	}
	return Fields{Result: res}
}

func optional(v string) string {
	if v == noneSentinel || v == "null" || v == "n/a" {
		return ""
	}
	return v
}
