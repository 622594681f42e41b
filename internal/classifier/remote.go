package classifier

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// Completer sends a prompt to a text model and returns its reply.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// ErrBudgetExhausted is reported when the per-second call budget is spent.
var ErrBudgetExhausted = errors.New("classifier: remote budget exhausted")

// Remote classifies through a Completer under a timeout and a rate budget.
type Remote struct {
	completer Completer
	catalog   *Catalog
	timeout   time.Duration
	limiter   *rate.Limiter
}

// NewRemote returns a remote strategy. rps <= 0 disables the budget.
func NewRemote(c Completer, cat *Catalog, timeout time.Duration, rps float64) *Remote {
	r := &Remote{completer: c, catalog: cat, timeout: timeout}
	if rps > 0 {
		burst := int(rps)
		if burst < 1 {
			burst = 1
		}
		r.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
	return r
}

// Classify never blocks longer than the configured timeout and never
// returns an error; failures come back as Unavailable or Malformed.
func (r *Remote) Classify(ctx context.Context, text string) Parsed {
	if r.limiter != nil && !r.limiter.Allow() {
		return Unavailable{Err: ErrBudgetExhausted}
	}
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	resp, err := r.completer.Complete(ctx, r.Prompt(text))
	if err != nil {
		return Unavailable{Err: err}
	}
	return ParseResponse(resp, r.catalog)
}

// Prompt renders the instruction for text.
func (r *Remote) Prompt(text string) string {
	var b strings.Builder
	b.WriteString("You are a message classifier for a housing society group chat.\n")
	b.WriteString("Classify the following message into ONE category and identify if it's an OFFER or QUERY.\n\n")
	b.WriteString("Categories:\n")
	for _, c := range r.catalog.Categories {
		b.WriteString("- ")
		b.WriteString(c.Name)
		if c.Description != "" {
			b.WriteString(": ")
			b.WriteString(c.Description)
		}
		b.WriteByte('\n')
	}
	b.WriteString("- ignore: greetings, general chat, unrelated messages\n\n")
	b.WriteString("Message: \"")
	b.WriteString(strings.ReplaceAll(text, "\"", "'"))
	b.WriteString("\"\n\n")
	b.WriteString(`Respond in EXACTLY this format (nothing else):
CATEGORY: <category>
TYPE: <offer or query>
SUBCATEGORY: <optional specific item like "2bhk", "cook", etc or "none">
PROPERTY_TYPE: <sale, rent or "none">
GENDER: <male, female or "none">
CONTACT: <phone number if found, or "none">

If the message is general chat/greeting/unrelated, respond:
CATEGORY: ignore
TYPE: none
SUBCATEGORY: none
PROPERTY_TYPE: none
GENDER: none
CONTACT: none
`)
	return b.String()
}
