package classifier

import (
	"sync"

	ahocorasick "github.com/cloudflare/ahocorasick"
)

// phraseSet counts how many distinct phrases of a fixed list occur in a
// text, in one pass. The underlying matcher keeps per-search state, so
// searches are serialized.
type phraseSet struct {
	mu      sync.Mutex
	matcher *ahocorasick.Matcher
	phrases []string
}

func newPhraseSet(phrases []string) *phraseSet {
	uniq := dedupe(phrases)
	ps := &phraseSet{phrases: uniq}
	if len(uniq) > 0 {
		ps.matcher = ahocorasick.NewStringMatcher(uniq)
	}
	return ps
}

// hits returns the indices of the phrases found in lower.
func (p *phraseSet) hits(lower string) []int {
	if p.matcher == nil || lower == "" {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.matcher.Match([]byte(lower))
}

// count returns the number of distinct phrases found in lower.
func (p *phraseSet) count(lower string) int {
	return len(p.hits(lower))
}

func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok || s == "" {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
