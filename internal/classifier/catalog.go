package classifier

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// Category is one entry of the closed category set.
type Category struct {
	Name                string   `yaml:"name"`
	Emoji               string   `yaml:"emoji"`
	Description         string   `yaml:"description"`
	OfferKeywords       []string `yaml:"offer_keywords"`
	QueryKeywords       []string `yaml:"query_keywords"`
	SubcategoryPatterns []string `yaml:"subcategory_patterns"`

	subPatterns []*regexp.Regexp
}

// Attributes holds the cue phrases for attribute refinement.
type Attributes struct {
	RentCues     []string `yaml:"rent_cues"`
	SaleCues     []string `yaml:"sale_cues"`
	MaleCues     []string `yaml:"male_cues"`
	FemaleCues   []string `yaml:"female_cues"`
	RoommateCues []string `yaml:"roommate_cues"`
	OwnerCues    []string `yaml:"owner_cues"`
	BrokerCues   []string `yaml:"broker_cues"`
}

// Catalog is the keyword and pattern configuration behind classification.
type Catalog struct {
	MinLength         int        `yaml:"min_length"`
	CategoryThreshold int        `yaml:"category_threshold"`
	Categories        []Category `yaml:"categories"`
	QueryIndicators   []string   `yaml:"query_indicators"`
	OfferIndicators   []string   `yaml:"offer_indicators"`
	IgnorePatterns    []string   `yaml:"ignore_patterns"`
	Attributes        Attributes `yaml:"attributes"`

	ignore []*regexp.Regexp
	byName map[string]int
}

// DefaultCatalog returns the embedded catalog.
func DefaultCatalog() *Catalog {
	c, err := ParseCatalog(defaultCatalog)
	if err != nil {
		panic(fmt.Sprintf("classifier: embedded catalog: %v", err))
	}
	return c
}

// LoadCatalog reads a catalog file, or returns the embedded one when path
// is empty.
func LoadCatalog(path string) (*Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultCatalog(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("classifier: read catalog: %w", err)
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes and validates a YAML catalog. Keywords are
// lowercased; patterns are compiled case-insensitively.
func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("classifier: parse catalog: %w", err)
	}
	if len(c.Categories) == 0 {
		return nil, errors.New("classifier: catalog has no categories")
	}
	if c.MinLength <= 0 {
		c.MinLength = 5
	}
	if c.CategoryThreshold <= 0 {
		c.CategoryThreshold = 2
	}

	c.byName = make(map[string]int, len(c.Categories))
	for i := range c.Categories {
		cat := &c.Categories[i]
		cat.Name = strings.ToLower(strings.TrimSpace(cat.Name))
		if cat.Name == "" || cat.Name == "ignore" {
			return nil, fmt.Errorf("classifier: invalid category name %q", cat.Name)
		}
		if _, dup := c.byName[cat.Name]; dup {
			return nil, fmt.Errorf("classifier: duplicate category %q", cat.Name)
		}
		c.byName[cat.Name] = i
		cat.OfferKeywords = lowerAll(cat.OfferKeywords)
		cat.QueryKeywords = lowerAll(cat.QueryKeywords)
		for _, p := range cat.SubcategoryPatterns {
			re, err := regexp.Compile("(?i)" + p)
			if err != nil {
				return nil, fmt.Errorf("classifier: %s pattern %q: %w", cat.Name, p, err)
			}
			cat.subPatterns = append(cat.subPatterns, re)
		}
	}
	for _, p := range c.IgnorePatterns {
		re, err := regexp.Compile("(?i)" + p)
		if err != nil {
			return nil, fmt.Errorf("classifier: ignore pattern %q: %w", p, err)
		}
		c.ignore = append(c.ignore, re)
	}
	c.QueryIndicators = lowerAll(c.QueryIndicators)
	c.OfferIndicators = lowerAll(c.OfferIndicators)
	a := &c.Attributes
	for _, l := range []*[]string{&a.RentCues, &a.SaleCues, &a.MaleCues, &a.FemaleCues, &a.RoommateCues, &a.OwnerCues, &a.BrokerCues} {
		*l = lowerAll(*l)
	}
	return &c, nil
}

// Has reports whether name is a known category.
func (c *Catalog) Has(name string) bool {
	_, ok := c.byName[name]
	return ok
}

// Category returns the named category.
func (c *Catalog) Category(name string) (Category, bool) {
	i, ok := c.byName[name]
	if !ok {
		return Category{}, false
	}
	return c.Categories[i], true
}

// Emoji returns the category emoji, or a generic pin.
func (c *Catalog) Emoji(name string) string {
	if cat, ok := c.Category(name); ok && cat.Emoji != "" {
		return cat.Emoji
	}
	return "📌"
}

// Names lists category names in catalog order.
func (c *Catalog) Names() []string {
	out := make([]string, len(c.Categories))
	for i, cat := range c.Categories {
		out[i] = cat.Name
	}
	return out
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}
