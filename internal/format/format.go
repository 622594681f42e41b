// Package format renders the bot's user-facing copy: group hooks, the free
// preview, the paid reveal and the payment flow messages. Every function is
// deterministic and keeps no state.
package format

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/tbourn/go-society-bot/internal/config"
	"github.com/tbourn/go-society-bot/internal/contact"
	"github.com/tbourn/go-society-bot/internal/domain"
	"github.com/tbourn/go-society-bot/internal/transport"
)

// Catalog is the category information the formatter needs.
type Catalog interface {
	Emoji(category string) string
	Names() []string
}

// Options configures a Formatter.
type Options struct {
	BotUsername string
	FreeLeads   int
	Tiers       []config.Tier

	// TitleLocale controls category display names; Und means English.
	TitleLocale language.Tag
}

// Formatter assembles messages from templates.
type Formatter struct {
	catalog Catalog
	opts    Options
}

// New returns a Formatter over cat.
func New(cat Catalog, opts Options) *Formatter {
	if opts.TitleLocale == language.Und {
		opts.TitleLocale = language.English
	}
	return &Formatter{catalog: cat, opts: opts}
}

// Reply is rendered text plus its inline buttons.
type Reply struct {
	Text    string
	Buttons [][]transport.Button
}

// Search is the subject of a hook or a reveal.
type Search struct {
	Category         string
	Subcategory      *string
	PropertyType     *string
	GenderPreference *string
}

// SearchOf returns the search frozen in a lead request.
func SearchOf(r domain.LeadRequest) Search {
	return Search{
		Category:         r.Category,
		Subcategory:      r.Subcategory,
		PropertyType:     r.PropertyType,
		GenderPreference: r.GenderPreference,
	}
}

// Label builds "[gender] (subcategory|category) [for sale|for rent]".
func Label(s Search) string {
	parts := make([]string, 0, 3)
	switch domain.Val(s.GenderPreference) {
	case domain.GenderFemale, domain.GenderMale:
		parts = append(parts, *s.GenderPreference)
	}
	if sub := domain.Val(s.Subcategory); sub != "" {
		parts = append(parts, sub)
	} else {
		parts = append(parts, strings.ReplaceAll(s.Category, "_", " "))
	}
	switch domain.Val(s.PropertyType) {
	case domain.PropertySale:
		parts = append(parts, "for sale")
	case domain.PropertyRent:
		parts = append(parts, "for rent")
	}
	return strings.Join(parts, " ")
}

// DisplayName returns a category name for humans, e.g. "Ac Repair".
func (f *Formatter) DisplayName(category string) string {
	// Casers are stateful; one per call.
	return cases.Title(f.opts.TitleLocale).String(strings.ReplaceAll(category, "_", " "))
}

// DeepLink opens the private chat on a lead request.
func (f *Formatter) DeepLink(requestID uint64) string {
	return fmt.Sprintf("https://t.me/%s?start=leads_%d", f.opts.BotUsername, requestID)
}

// Hook is the data behind a group hook message.
type Hook struct {
	Search
	RequestID uint64
	Total     int64
	Recent7d  int64
	Samples   []string
}

// QueryHook answers someone searching: how many offers exist. ok is false
// when there is nothing to show.
func (f *Formatter) QueryHook(h Hook) (Reply, bool) {
	if h.Total <= 0 {
		return Reply{}, false
	}
	label := escape(Label(h.Search))

	var details []string
	if h.Category == "property" {
		if k, ok := AveragePriceK(h.Samples); ok {
			details = append(details, fmt.Sprintf("starting ~%dk", k))
		}
	}
	if p := Preference(h.Samples); p != "" {
		details = append(details, p)
	}

	lines := []string{fmt.Sprintf("%s *%d verified contacts available for %s!*", f.catalog.Emoji(h.Category), h.Total, label)}
	if len(details) > 0 {
		lines = append(lines, "\n📌 _"+strings.Join(details, " · ")+"_")
	}
	switch {
	case h.Recent7d > 0 && h.Recent7d < h.Total:
		lines = append(lines, fmt.Sprintf("\n⚡ _%d new this week, act fast!_", h.Recent7d))
	case h.Recent7d > 0:
		lines = append(lines, "\n⚡ _All posted this week!_")
	}
	lines = append(lines, "\n👇 _Tap below to get contacts directly in your DM_")

	return Reply{
		Text:    strings.Join(lines, "\n"),
		Buttons: [][]transport.Button{{{Text: "📲 Get contacts", URL: f.DeepLink(h.RequestID)}}},
	}, true
}

// OfferHook answers someone offering: how many people are searching.
func (f *Formatter) OfferHook(h Hook) (Reply, bool) {
	if h.Total <= 0 {
		return Reply{}, false
	}
	cc := contextFor(h.Search)
	people := cc.searcherWord
	if h.Total == 1 {
		people = "person"
	}

	lines := []string{fmt.Sprintf("🚨 *%d %s already %s %s!*", h.Total, people, cc.searchVerb, escape(Label(h.Search)))}
	if h.Recent7d > 0 {
		lines = append(lines, fmt.Sprintf("\n🔥 _%d searched just this week!_", h.Recent7d))
	}
	lines = append(lines,
		"\n💬 _Get their details and close the deal before someone else does_",
		"\n👇 _Tap below to connect now_",
	)

	return Reply{
		Text:    strings.Join(lines, "\n"),
		Buttons: [][]transport.Button{{{Text: "📲 Connect now", URL: f.DeepLink(h.RequestID)}}},
	}, true
}

// FreePreview renders the first, free contacts.
func (f *Formatter) FreePreview(s Search, leads []domain.Listing) string {
	if len(leads) == 0 {
		return "😔 No contacts available right now. Check back soon!"
	}
	noun := "contacts"
	if len(leads) == 1 {
		noun = "contact"
	}
	lines := []string{
		fmt.Sprintf("🎁 *FREE Preview: %d %s for \"%s\":*", len(leads), noun, escape(Label(s))),
		"",
	}
	for _, l := range leads {
		lines = append(lines, "👤 "+card(l))
	}
	return strings.Join(lines, "\n")
}

// Upsell pitches the paid tiers for the contacts beyond the free preview.
// ok is false when nothing remains to sell.
func (f *Formatter) Upsell(s Search, total int64, requestID uint64) (Reply, bool) {
	remaining := total - int64(f.opts.FreeLeads)
	if remaining <= 0 || len(f.opts.Tiers) == 0 {
		return Reply{}, false
	}
	cc := contextFor(s)
	lines := []string{
		"━━━━━━━━━━━━━━━━━━━━━━━━━━━━",
		fmt.Sprintf("\n🔥 *%d more people are waiting to connect!*", remaining),
		fmt.Sprintf("\n_%s for just ₹%d!_", cc.upsellHook, f.opts.Tiers[0].Price),
		"\n✅ Verified contacts with phone numbers",
		"✅ Direct connection, no middleman",
		"✅ Updated this week",
		"\n👇 *Unlock now, contacts delivered in seconds:*",
	}
	var rows [][]transport.Button
	for _, t := range f.opts.Tiers {
		rows = append(rows, []transport.Button{{Text: TierButton(t), Data: BuyData(t.Code, requestID)}})
	}
	return Reply{Text: strings.Join(lines, "\n"), Buttons: rows}, true
}

// TierButton is the label of a tier's buy button.
func TierButton(t config.Tier) string {
	if t.Tips {
		return fmt.Sprintf("💎 %d contacts + tips · ₹%d", t.Leads, t.Price)
	}
	return fmt.Sprintf("🔓 %d contacts · ₹%d", t.Leads, t.Price)
}

// PaidReveal renders the purchased contacts. An empty window points the
// buyer to manual follow-up.
func (f *Formatter) PaidReveal(s Search, leads []domain.Listing, tips bool) string {
	if len(leads) == 0 {
		return fmt.Sprintf("😔 *No additional contacts for \"%s\" right now.*\n\n"+
			"Your payment is recorded. An admin will follow up with you personally.", escape(Label(s)))
	}
	cc := contextFor(s)
	lines := []string{
		fmt.Sprintf("🎉 *You're in! Here are your %d contacts for \"%s\":*", len(leads), escape(Label(s))),
		"",
	}
	for i, l := range leads {
		lines = append(lines, strconv.Itoa(i+1)+". "+card(l))
	}
	if tips {
		lines = append(lines, "\n🧠 *"+cc.tipsTitle+":*\n")
		lines = append(lines, cc.tips...)
	}
	lines = append(lines, "\n💙 _Thanks for using Society Ka Bot! Search again anytime._")
	return strings.Join(lines, "\n")
}

// card renders one lead as a name line and a detail line.
func card(l domain.Listing) string {
	name := "Someone"
	switch {
	case domain.Val(l.Username) != "":
		name = "@" + *l.Username
	case domain.Val(l.FirstName) != "":
		name = *l.FirstName
	}
	head := "*" + escape(name) + "*"
	if c := domain.Val(l.Contact); c != "" {
		head += " · 📞 " + c
	}
	if src := domain.Val(l.PropertySource); src != "" {
		head += " · 🏷️ " + src
	}
	return head + "\n   _" + escape(ShortDetail(l.Message)) + "_"
}

// ShortDetail masks phone numbers and keeps the first ten words.
func ShortDetail(msg string) string {
	const maxWords = 10
	words := strings.Fields(contact.Mask(msg))
	if len(words) <= maxWords {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:maxWords], " ") + "…"
}

// BuyData is the callback payload of a tier button.
func BuyData(tier string, requestID uint64) string {
	return fmt.Sprintf("buy_%s_%d", tier, requestID)
}

// escape protects user-provided text from Markdown interpretation.
func escape(s string) string {
	return mdEscaper.Replace(s)
}

var mdEscaper = strings.NewReplacer("_", "\\_", "*", "\\*", "`", "\\`", "[", "\\[")

// UPILink builds a upi://pay intent for a manual payment.
func UPILink(vpa, payee string, amount int64, note string) string {
	q := url.Values{}
	q.Set("pa", vpa)
	q.Set("pn", payee)
	q.Set("am", strconv.FormatInt(amount, 10))
	q.Set("cu", "INR")
	q.Set("tn", note)
	return "upi://pay?" + q.Encode()
}
