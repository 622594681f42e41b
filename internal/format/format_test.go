package format

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tbourn/go-society-bot/internal/config"
	"github.com/tbourn/go-society-bot/internal/domain"
)

type stubCatalog struct{}

func (stubCatalog) Emoji(c string) string {
	if c == "property" {
		return "🏠"
	}
	return "📌"
}

func (stubCatalog) Names() []string {
	return []string{"property", "maid", "ac_repair", "tutor"}
}

func newFormatter() *Formatter {
	return New(stubCatalog{}, Options{
		BotUsername: "society_bot",
		FreeLeads:   2,
		Tiers: []config.Tier{
			{Code: "t1", Price: 59, Leads: 5},
			{Code: "t2", Price: 199, Leads: 15, Tips: true},
		},
	})
}

func TestLabel(t *testing.T) {
	cases := []struct {
		s    Search
		want string
	}{
		{Search{Category: "property", Subcategory: domain.Str("2bhk"), PropertyType: domain.Str("rent")}, "2bhk for rent"},
		{Search{Category: "property", Subcategory: domain.Str("roommate"), GenderPreference: domain.Str("female")}, "female roommate"},
		{Search{Category: "ac_repair"}, "ac repair"},
		{Search{Category: "property", PropertyType: domain.Str("sale")}, "property for sale"},
		{Search{Category: "maid", GenderPreference: domain.Str("other")}, "maid"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Label(tc.s))
	}
}

func TestDisplayName(t *testing.T) {
	f := newFormatter()
	assert.Equal(t, "Ac Repair", f.DisplayName("ac_repair"))
	assert.Equal(t, "Property", f.DisplayName("property"))
}

func TestQueryHook(t *testing.T) {
	f := newFormatter()
	h := Hook{
		Search:    Search{Category: "property", Subcategory: domain.Str("2bhk"), PropertyType: domain.Str("rent")},
		RequestID: 42,
		Total:     5,
		Recent7d:  2,
		Samples: []string{
			"2bhk for rent 18k, family only, call 9876543210",
			"2bhk available 22,000 per month for families",
		},
	}
	r, ok := f.QueryHook(h)
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(r.Text, "🏠 *5 verified contacts available for 2bhk for rent!*"))
	assert.Contains(t, r.Text, "📌 _starting ~20k · family preferred_")
	assert.Contains(t, r.Text, "⚡ _2 new this week, act fast!_")
	require.Len(t, r.Buttons, 1)
	assert.Equal(t, "https://t.me/society_bot?start=leads_42", r.Buttons[0][0].URL)

	h.Recent7d = 5
	r, _ = f.QueryHook(h)
	assert.Contains(t, r.Text, "All posted this week!")

	h.Total = 0
	_, ok = f.QueryHook(h)
	assert.False(t, ok)
}

func TestQueryHook_NoDetailsForServices(t *testing.T) {
	f := newFormatter()
	r, ok := f.QueryHook(Hook{Search: Search{Category: "maid"}, Total: 3, Samples: []string{"maid 8k per month"}})
	require.True(t, ok)
	assert.NotContains(t, r.Text, "starting")
	assert.NotContains(t, r.Text, "⚡")
}

func TestOfferHook(t *testing.T) {
	f := newFormatter()
	r, ok := f.OfferHook(Hook{Search: Search{Category: "maid"}, RequestID: 7, Total: 1})
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(r.Text, "🚨 *1 person already looking for maid!*"))
	assert.NotContains(t, r.Text, "this week")
	assert.Equal(t, "https://t.me/society_bot?start=leads_7", r.Buttons[0][0].URL)

	r, _ = f.OfferHook(Hook{Search: Search{Category: "property", PropertyType: domain.Str("rent")}, Total: 4, Recent7d: 3})
	assert.Contains(t, r.Text, "*4 tenants already searching for property for rent!*")
	assert.Contains(t, r.Text, "🔥 _3 searched just this week!_")
}

func TestFreePreviewAndReveal(t *testing.T) {
	f := newFormatter()
	s := Search{Category: "maid", Subcategory: domain.Str("cook")}
	leads := []domain.Listing{
		{Username: domain.Str("sunita_k"), Contact: domain.Str("9876543210"), Message: "Cook available for morning and evening, call 98765 43210 anytime please ask"},
		{FirstName: domain.Str("Ravi"), Contact: domain.Str("9123456780"), Message: "Experienced cook"},
		{Contact: domain.Str("9000000001"), Message: "cook"},
	}

	preview := f.FreePreview(s, leads[:1])
	assert.Contains(t, preview, `1 contact for "cook"`)
	assert.Contains(t, preview, `*@sunita\_k* · 📞 9876543210`)
	assert.NotContains(t, preview, "98765 43210")
	assert.Contains(t, preview, "…")

	reveal := f.PaidReveal(s, leads, false)
	assert.Contains(t, reveal, "Here are your 3 contacts")
	assert.Contains(t, reveal, "2. *Ravi* · 📞 9123456780")
	assert.Contains(t, reveal, "3. *Someone*")
	assert.NotContains(t, reveal, "Tips")

	withTips := f.PaidReveal(s, leads, true)
	assert.Contains(t, withTips, "Tips to Get the Best Service")
	assert.Contains(t, withTips, "Search again anytime")

	assert.Contains(t, f.FreePreview(s, nil), "No contacts available")
	empty := f.PaidReveal(s, nil, true)
	assert.Contains(t, empty, "Your payment is recorded")
	assert.Contains(t, empty, "follow up")
	assert.NotContains(t, empty, "not been charged")
}

func TestCard_ShowsPropertySource(t *testing.T) {
	c := card(domain.Listing{FirstName: domain.Str("Amit"), Contact: domain.Str("9876543210"), PropertySource: domain.Str("owner"), Message: "2bhk"})
	assert.Contains(t, c, "🏷️ owner")
}

func TestUpsell(t *testing.T) {
	f := newFormatter()
	r, ok := f.Upsell(Search{Category: "property"}, 9, 42)
	require.True(t, ok)
	assert.Contains(t, r.Text, "*7 more people are waiting to connect!*")
	assert.Contains(t, r.Text, "₹59!")
	require.Len(t, r.Buttons, 2)
	assert.Equal(t, "buy_t1_42", r.Buttons[0][0].Data)
	assert.Equal(t, "🔓 5 contacts · ₹59", r.Buttons[0][0].Text)
	assert.Equal(t, "💎 15 contacts + tips · ₹199", r.Buttons[1][0].Text)

	_, ok = f.Upsell(Search{Category: "property"}, 2, 42)
	assert.False(t, ok)
}

func TestShortDetail(t *testing.T) {
	assert.Equal(t, "plumber", ShortDetail("  plumber \n"))
	assert.Equal(t, "one two three four five six seven eight nine ten…",
		ShortDetail("one two three four five six seven eight nine ten eleven"))
	assert.Equal(t, "call ••••••••••", ShortDetail("call +91 98765 43210"))
}

func TestAveragePriceK(t *testing.T) {
	k, ok := AveragePriceK([]string{"rent 17k", "rent 17,000", "rent 20000 only"})
	require.True(t, ok)
	assert.Equal(t, 18, k)

	_, ok = AveragePriceK([]string{"call 9876543210", "1k deposit", "flat 1 crore"})
	assert.False(t, ok)

	_, ok = AveragePriceK(nil)
	assert.False(t, ok)
}

func TestPreference(t *testing.T) {
	assert.Equal(t, "family preferred", Preference([]string{"Families only", "any"}))
	assert.Equal(t, "bachelor friendly", Preference([]string{"bachelors ok", "single working man"}))
	assert.Equal(t, "", Preference([]string{"family", "bachelor"}))
}

func TestUPILink(t *testing.T) {
	got := UPILink("society@upi", "Society Bot", 59, "claim 3")
	assert.Equal(t, "upi://pay?am=59&cu=INR&pa=society%40upi&pn=Society+Bot&tn=claim+3", got)
}

func TestPaymentMessages(t *testing.T) {
	f := newFormatter()
	t2 := config.Tier{Code: "t2", Price: 199, Leads: 15, Tips: true}

	r := f.PaymentLink(t2, "https://rzp.io/l/abc")
	assert.Contains(t, r.Text, "Payment Required: ₹199")
	assert.Contains(t, r.Text, "negotiation tips")
	assert.Equal(t, "https://rzp.io/l/abc", r.Buttons[0][0].URL)

	r = f.ManualPayment(t2, 3, "society@upi", "upi://pay?x")
	assert.Contains(t, r.Text, "`society@upi`")
	assert.Contains(t, r.Text, "upi://pay?x")
	assert.Equal(t, "paid_3", r.Buttons[0][0].Data)

	assert.Contains(t, f.ClaimSubmitted(3), "Payment Claimed")

	c := domain.PaymentClaim{ID: 3, UserID: 77, RequestID: 9, Amount: 49, Tier: "t1", Status: domain.ClaimPending}
	r = f.AdminReview(c, "@user_1")
	assert.Contains(t, r.Text, "New Payment Claim")
	assert.Contains(t, r.Text, "₹49")
	assert.Contains(t, r.Text, `@user\_1`)
	assert.Equal(t, "approve_3", r.Buttons[0][0].Data)
	assert.Equal(t, "reject_3", r.Buttons[0][1].Data)

	c.Status = domain.ClaimApproved
	assert.Equal(t, "✅ Claim #3 approved (₹49, t1).", f.AdminDecided(c, true))
	assert.Equal(t, "ℹ️ Claim #3 was already approved.", f.AdminDecided(c, false))
	c.Status = domain.ClaimRejected
	assert.True(t, strings.HasPrefix(f.AdminDecided(c, true), "❌"))

	assert.True(t, strings.HasPrefix(f.Approved("x"), "✅ *Payment Approved!*"))
	assert.Contains(t, f.Rejected(3), "claim #3")
	assert.NotEmpty(t, f.PaymentUnavailable())
	assert.Contains(t, f.LinkExpired(), "expired")
}

func TestStatsAndHelp(t *testing.T) {
	f := newFormatter()
	assert.Equal(t, "📊 No active listings yet.", f.Stats(0, nil))
	got := f.Stats(5, []CategoryCount{{Category: "property", Count: 3}, {Category: "ac_repair", Count: 2}})
	assert.Equal(t, "📊 *Active Listings*: 5\n\n🏠 Property: 3\n📌 Ac Repair: 2", got)

	help := f.Help()
	assert.Contains(t, help, "/stats")
	assert.Contains(t, help, "🏠 Property | 📌 Maid | 📌 Ac Repair\n📌 Tutor")
}
