package classifier

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-society-bot/internal/contact"
	"github.com/tbourn/go-society-bot/internal/observability"
)

// Classifier combines the ignore gate, an optional remote strategy and the
// local heuristic. It holds no mutable state besides the matchers and the
// remote budget, and is safe for concurrent use.
type Classifier struct {
	catalog   *Catalog
	heuristic *Heuristic
	remote    *Remote
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithRemote enables the remote strategy ahead of the heuristic.
func WithRemote(r *Remote) Option {
	return func(c *Classifier) { c.remote = r }
}

// New builds a classifier over cat (the embedded catalog when nil).
func New(cat *Catalog, opts ...Option) *Classifier {
	if cat == nil {
		cat = DefaultCatalog()
	}
	c := &Classifier{catalog: cat, heuristic: NewHeuristic(cat)}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Catalog returns the catalog in use.
func (c *Classifier) Catalog() *Catalog { return c.catalog }

// Ignored reports whether text is too short or social noise.
func (c *Classifier) Ignored(text string) bool {
	t := strings.TrimSpace(text)
	if utf8.RuneCountInString(t) < c.catalog.MinLength {
		return true
	}
	for _, re := range c.catalog.ignore {
		if re.MatchString(t) {
			return true
		}
	}
	return false
}

// Classify returns the classification of text, or nil when the message is
// noise or cannot be placed.
func (c *Classifier) Classify(ctx context.Context, text string) *Result {
	res, strategy := c.classify(ctx, text)
	outcome := "classified"
	if res == nil {
		outcome = "ignored"
	}
	observability.Classifications.WithLabelValues(strategy, outcome).Inc()
	return res
}

func (c *Classifier) classify(ctx context.Context, text string) (*Result, string) {
	if c.Ignored(text) {
		return nil, StrategyGate
	}

	if c.remote != nil {
		switch p := c.remote.Classify(ctx, text).(type) {
		case Fields:
			res := p.Result
			if res.Contact == nil {
				res.Contact = contact.Ptr(text)
			}
			c.heuristic.refine(&res, strings.ToLower(text))
			return &res, StrategyRemote
		case Ignored:
			log.Ctx(ctx).Debug().Msg("remote classifier judged message irrelevant; trying heuristic")
		case Malformed:
			log.Ctx(ctx).Debug().Str("reason", p.Reason).Msg("malformed remote classification")
		case Unavailable:
			log.Ctx(ctx).Warn().Err(p.Err).Msg("remote classifier unavailable")
		}
	}

	return c.heuristic.Classify(text), StrategyHeuristic
}
