package classifier

import (
	"regexp"
	"strings"

	"github.com/tbourn/go-society-bot/internal/contact"
	"github.com/tbourn/go-society-bot/internal/domain"
)

type keywordRef struct {
	category int
	query    bool
}

// Heuristic is the local keyword scorer. It is safe for concurrent use.
type Heuristic struct {
	catalog *Catalog

	queryInd *phraseSet
	offerInd *phraseSet

	keywords *phraseSet
	refs     [][]keywordRef // parallel to keywords.phrases

	rent, sale    *phraseSet
	male, female  *phraseSet
	roommate      *phraseSet
	owner, broker *phraseSet
}

// NewHeuristic builds the phrase matchers for cat.
func NewHeuristic(cat *Catalog) *Heuristic {
	h := &Heuristic{
		catalog:  cat,
		queryInd: newPhraseSet(cat.QueryIndicators),
		offerInd: newPhraseSet(cat.OfferIndicators),
		rent:     newPhraseSet(cat.Attributes.RentCues),
		sale:     newPhraseSet(cat.Attributes.SaleCues),
		male:     newPhraseSet(cat.Attributes.MaleCues),
		female:   newPhraseSet(cat.Attributes.FemaleCues),
		roommate: newPhraseSet(cat.Attributes.RoommateCues),
		owner:    newPhraseSet(cat.Attributes.OwnerCues),
		broker:   newPhraseSet(cat.Attributes.BrokerCues),
	}

	// One automaton over every category keyword; each phrase maps back to
	// the (category, list) pairs it belongs to.
	index := map[string]int{}
	var phrases []string
	add := func(kw string, ref keywordRef) {
		i, ok := index[kw]
		if !ok {
			i = len(phrases)
			index[kw] = i
			phrases = append(phrases, kw)
			h.refs = append(h.refs, nil)
		}
		for _, r := range h.refs[i] {
			if r == ref {
				return
			}
		}
		h.refs[i] = append(h.refs[i], ref)
	}
	for ci, c := range cat.Categories {
		for _, kw := range c.OfferKeywords {
			add(kw, keywordRef{category: ci})
		}
		for _, kw := range c.QueryKeywords {
			add(kw, keywordRef{category: ci, query: true})
		}
	}
	h.keywords = newPhraseSet(phrases)
	return h
}

// Classify scores text locally. It returns nil when the listing type or
// the category cannot be resolved.
func (h *Heuristic) Classify(text string) *Result {
	lower := strings.ToLower(text)
	phone := contact.Ptr(text)

	listingType := h.listingType(text, lower, phone != nil)
	if listingType == "" {
		return nil
	}
	ci, sub, ok := h.category(lower)
	if !ok {
		return nil
	}
	res := &Result{
		Category:    h.catalog.Categories[ci].Name,
		Subcategory: sub,
		ListingType: listingType,
		Contact:     phone,
	}
	h.refine(res, lower)
	return res
}

func (h *Heuristic) listingType(text, lower string, hasContact bool) string {
	q := h.queryInd.count(lower)
	o := h.offerInd.count(lower)
	if strings.Contains(text, "?") {
		q += 2
	}
	if hasContact {
		o++
	}
	switch {
	case q > o:
		return domain.ListingQuery
	case o > 0:
		return domain.ListingOffer
	}
	return ""
}

// category returns the index of the strictly best-scoring category and its
// first subcategory pattern hit.
func (h *Heuristic) category(lower string) (int, *string, bool) {
	scores := make([]int, len(h.catalog.Categories))
	for _, i := range h.keywords.hits(lower) {
		for _, ref := range h.refs[i] {
			scores[ref.category] += 2
		}
	}

	best, bestScore := -1, 0
	var bestSub *string
	for ci, c := range h.catalog.Categories {
		score := scores[ci]
		var sub *string
		for _, re := range c.subPatterns {
			m := re.FindString(lower)
			if m == "" {
				continue
			}
			score++
			if sub == nil {
				s := normalizeSubcategory(m)
				sub = &s
			}
		}
		if score > bestScore {
			best, bestScore, bestSub = ci, score, sub
		}
	}
	if best < 0 || bestScore < h.catalog.CategoryThreshold {
		return 0, nil, false
	}
	return best, bestSub, true
}

// refine fills attribute fields the strategy left empty.
func (h *Heuristic) refine(res *Result, lower string) {
	isProperty := res.Category == "property"
	if isProperty && res.PropertyType == nil {
		rent, sale := h.rent.count(lower), h.sale.count(lower)
		switch {
		case rent > sale:
			res.PropertyType = domain.Str(domain.PropertyRent)
		case sale > rent:
			res.PropertyType = domain.Str(domain.PropertySale)
		}
	}
	if res.GenderPreference == nil && (isProperty || h.roommate.count(lower) > 0) {
		// Female cues contain the male ones as substrings ("female only"),
		// so they are checked first.
		if h.female.count(lower) > 0 {
			res.GenderPreference = domain.Str(domain.GenderFemale)
		} else if h.male.count(lower) > 0 {
			res.GenderPreference = domain.Str(domain.GenderMale)
		}
	}
	if isProperty && res.PropertySource == nil {
		if h.owner.count(lower) > 0 {
			res.PropertySource = domain.Str(domain.SourceOwner)
		} else if h.broker.count(lower) > 0 {
			res.PropertySource = domain.Str(domain.SourceBroker)
		}
	}
}

var digitGap = regexp.MustCompile(`(\d)\s+([a-z])`)

// normalizeSubcategory lowercases a pattern hit and joins a count to its
// unit, so "2 BHK" and "2bhk" are stored alike.
func normalizeSubcategory(m string) string {
	m = strings.Join(strings.Fields(strings.ToLower(m)), " ")
	return digitGap.ReplaceAllString(m, "$1$2")
}
