package format

import (
	"fmt"
	"strings"

	"github.com/tbourn/go-society-bot/internal/config"
	"github.com/tbourn/go-society-bot/internal/domain"
	"github.com/tbourn/go-society-bot/internal/transport"
)

// Callback payloads for the payment buttons.
func PaidData(claimID uint64) string    { return fmt.Sprintf("paid_%d", claimID) }
func ApproveData(claimID uint64) string { return fmt.Sprintf("approve_%d", claimID) }
func RejectData(claimID uint64) string  { return fmt.Sprintf("reject_%d", claimID) }

func tierSummary(t config.Tier) string {
	if t.Tips {
		return fmt.Sprintf("%d verified contacts + negotiation tips", t.Leads)
	}
	return fmt.Sprintf("%d verified contacts", t.Leads)
}

// PaymentLink asks the user to pay through a hosted payment page.
func (f *Formatter) PaymentLink(t config.Tier, payURL string) Reply {
	text := fmt.Sprintf("💳 *Payment Required: ₹%d*\n\n🎟️ %s\n\n_Contacts arrive here as soon as the payment is confirmed._",
		t.Price, tierSummary(t))
	return Reply{
		Text:    text,
		Buttons: [][]transport.Button{{{Text: fmt.Sprintf("💳 Pay ₹%d", t.Price), URL: payURL}}},
	}
}

// ManualPayment gives UPI instructions and the "I have paid" button.
func (f *Formatter) ManualPayment(t config.Tier, claimID uint64, vpa, upiLink string) Reply {
	lines := []string{
		fmt.Sprintf("💳 *Payment Required: ₹%d*", t.Price),
		"",
		"🎟️ " + tierSummary(t),
		"",
		fmt.Sprintf("1️⃣ Pay ₹%d to UPI ID `%s`", t.Price, vpa),
		"   or open: " + upiLink,
		"2️⃣ Tap *I have paid* below.",
		"",
		"_An admin verifies the payment and your contacts arrive here._",
	}
	return Reply{
		Text:    strings.Join(lines, "\n"),
		Buttons: [][]transport.Button{{{Text: "✅ I have paid", Data: PaidData(claimID)}}},
	}
}

// ClaimSubmitted acknowledges a manual payment claim.
func (f *Formatter) ClaimSubmitted(claimID uint64) string {
	return fmt.Sprintf("⏳ *Payment Claimed*\n\nClaim #%d is with our team for verification. Your contacts arrive here once it is approved.", claimID)
}

// AdminReview is the card an admin approves or rejects.
func (f *Formatter) AdminReview(c domain.PaymentClaim, requester string) Reply {
	if requester == "" {
		requester = "unknown"
	}
	lines := []string{
		fmt.Sprintf("🧾 *New Payment Claim* #%d", c.ID),
		"",
		fmt.Sprintf("👤 User: %s (`%d`)", escape(requester), c.UserID),
		fmt.Sprintf("💰 Amount: ₹%d", c.Amount),
		fmt.Sprintf("🎟️ Tier: %s", c.Tier),
		fmt.Sprintf("🔎 Request: #%d", c.RequestID),
	}
	return Reply{
		Text: strings.Join(lines, "\n"),
		Buttons: [][]transport.Button{{
			{Text: "✅ Approve", Data: ApproveData(c.ID)},
			{Text: "❌ Reject", Data: RejectData(c.ID)},
		}},
	}
}

// AdminDecided replaces the review card once a claim is settled.
func (f *Formatter) AdminDecided(c domain.PaymentClaim, applied bool) string {
	icon := "✅"
	if c.Status == domain.ClaimRejected {
		icon = "❌"
	}
	if !applied {
		return fmt.Sprintf("ℹ️ Claim #%d was already %s.", c.ID, c.Status)
	}
	return fmt.Sprintf("%s Claim #%d %s (₹%d, %s).", icon, c.ID, c.Status, c.Amount, c.Tier)
}

// Approved prefixes a reveal with the approval notice.
func (f *Formatter) Approved(reveal string) string {
	return "✅ *Payment Approved!*\n\n" + reveal
}

// Rejected tells the claimant the payment could not be verified.
func (f *Formatter) Rejected(claimID uint64) string {
	return fmt.Sprintf("❌ *Payment Not Verified*\n\nWe could not verify the payment for claim #%d. If you believe this is a mistake, please contact the group admin.", claimID)
}

// PaymentUnavailable is shown when the provider cannot be reached.
func (f *Formatter) PaymentUnavailable() string {
	return "⚠️ The payment system is temporarily unavailable. Please try again in a few minutes."
}

// LinkExpired is shown for unknown lead requests and claims.
func (f *Formatter) LinkExpired() string {
	return "⌛ This link has expired or is invalid. Please search again from the group."
}

// CategoryCount is one line of the stats message.
type CategoryCount struct {
	Category string
	Count    int64
}

// Stats lists active listings per category.
func (f *Formatter) Stats(total int64, counts []CategoryCount) string {
	if total == 0 {
		return "📊 No active listings yet."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "📊 *Active Listings*: %d\n\n", total)
	for _, c := range counts {
		fmt.Fprintf(&b, "%s %s: %d\n", f.catalog.Emoji(c.Category), f.DisplayName(c.Category), c.Count)
	}
	return strings.TrimRight(b.String(), "\n")
}

// Help explains the bot and lists the known categories.
func (f *Formatter) Help() string {
	var b strings.Builder
	b.WriteString("🏠 *Housing Society Bot*\n\n")
	b.WriteString("I automatically match your queries with relevant listings!\n\n")
	b.WriteString("*How it works:*\n")
	b.WriteString("1. When someone posts about selling something or offering a service, I save it.\n")
	b.WriteString("2. When you ask for something (e.g. \"need plumber\"), I show you matching contacts.\n\n")
	b.WriteString("*Examples:*\n")
	b.WriteString("• \"Selling 2BHK flat, 50L, contact 9876543210\"\n")
	b.WriteString("• \"Need electrician urgently\"\n")
	b.WriteString("• \"Maid chahiye for morning work\"\n")
	b.WriteString("• \"Anyone selling used sofa?\"\n\n")
	b.WriteString("*Commands:*\n")
	b.WriteString("/stats - Show active listing count\n")
	b.WriteString("/help - Show this message\n\n")
	b.WriteString("*Categories I understand:*\n")

	names := f.catalog.Names()
	for i := 0; i < len(names); i += 3 {
		end := min(i+3, len(names))
		row := make([]string, 0, 3)
		for _, n := range names[i:end] {
			row = append(row, f.catalog.Emoji(n)+" "+f.DisplayName(n))
		}
		b.WriteString(strings.Join(row, " | "))
		b.WriteByte('\n')
	}
	return strings.TrimRight(b.String(), "\n")
}
