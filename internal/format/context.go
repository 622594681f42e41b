package format

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/tbourn/go-society-bot/internal/contact"
	"github.com/tbourn/go-society-bot/internal/domain"
)

type categoryContext struct {
	searchVerb   string
	searcherWord string
	upsellHook   string
	tipsTitle    string
	tips         []string
}

var goodsCategories = map[string]bool{"property": true, "furniture": true, "vehicle": true}

var (
	goodsContext = categoryContext{
		searchVerb:   "searching for",
		searcherWord: "buyers",
		upsellHook:   "Why pay ₹500+ to a broker when you can get direct contacts",
		tipsTitle:    "Pro Tips to Get the Best Deal",
		tips: []string{
			"💰 Compare quotes: _multiple contacts = better negotiation power_",
			"📅 Ask about flexibility: _flexible timing = lower rates_",
			"🔍 Check hidden costs: _maintenance, deposit, parking_",
			"🏠 Always visit first: _never commit without seeing it_",
			"🤝 Mention you're from the society: _trust = better price_",
		},
	}
	roommateContext = categoryContext{
		searchVerb:   "looking for",
		searcherWord: "people",
		upsellHook:   "Find the right match faster with verified contacts",
		tipsTitle:    "Tips for Finding the Right Roommate",
		tips: []string{
			"🗣️ Talk first: _a quick call reveals a lot about compatibility_",
			"📅 Discuss habits: _sleep schedule, guests, cleanliness_",
			"💰 Clarify expenses: _rent split, bills, food, WiFi_",
			"📋 Set expectations: _agree on rules before moving in_",
			"🏠 Visit the place: _see the room and common areas first_",
		},
	}
	serviceContext = categoryContext{
		searchVerb:   "looking for",
		searcherWord: "people",
		upsellHook:   "Skip the hassle of asking around and get verified contacts instantly",
		tipsTitle:    "Tips to Get the Best Service",
		tips: []string{
			"📞 Call multiple: _compare rates before committing_",
			"⭐ Ask for references: _past work speaks louder than words_",
			"💰 Negotiate upfront: _agree on pricing before work starts_",
			"📋 Get it in writing: _scope of work + timeline + payment terms_",
			"🤝 Mention you're from the society: _community trust = better service_",
		},
	}
)

func contextFor(s Search) categoryContext {
	sub := domain.Val(s.Subcategory)
	switch {
	case strings.Contains(sub, "roommate") || strings.Contains(sub, "flatmate"):
		return roommateContext
	case goodsCategories[s.Category]:
		cc := goodsContext
		if domain.Val(s.PropertyType) == domain.PropertyRent {
			cc.searcherWord = "tenants"
		}
		return cc
	}
	return serviceContext
}

// Prices like 17000, 17,000 or 17k.
var pricePattern = regexp.MustCompile(`(\d{1,3}),?(\d{3})\b|\b(\d{1,2})[kK]\b`)

// AveragePriceK averages the prices quoted in msgs and returns it in
// thousands. Only values in 2,000..500,000 count; phone numbers are
// masked out first.
func AveragePriceK(msgs []string) (int, bool) {
	var sum, n int
	for _, m := range msgs {
		for _, g := range pricePattern.FindAllStringSubmatch(contact.Mask(m), -1) {
			var price int
			switch {
			case g[1] != "" && g[2] != "":
				price, _ = strconv.Atoi(g[1] + g[2])
			case g[3] != "":
				k, _ := strconv.Atoi(g[3])
				price = k * 1000
			}
			if price >= 2000 && price <= 500000 {
				sum += price
				n++
			}
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / n / 1000, true
}

var (
	familyPattern   = regexp.MustCompile(`(?i)famil(y|ies)`)
	bachelorPattern = regexp.MustCompile(`(?i)bachelors?|single`)
)

// Preference reports whether msgs lean towards families or bachelors.
func Preference(msgs []string) string {
	var family, bachelor int
	for _, m := range msgs {
		if familyPattern.MatchString(m) {
			family++
		}
		if bachelorPattern.MatchString(m) {
			bachelor++
		}
	}
	switch {
	case family > bachelor:
		return "family preferred"
	case bachelor > family:
		return "bachelor friendly"
	}
	return ""
}
