// Package classify infers the connection category (cable, fiber, cellular,
// dsl) of a link from the ISP name reported by the identity providers. The
// match is a case-insensitive substring scan over an ordered rule table, so
// earlier rules win when a name matches several categories.
package classify

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ChiefGyk3D/netpulse/pkg/models"
)

// Rule maps one connection category to the ISP-name keywords that identify it.
type Rule struct {
	Type     models.ConnectionType `yaml:"type"`
	Keywords []string              `yaml:"keywords"`
}

// DefaultRules returns the built-in rule table. Order matters: a cellular
// match outranks fiber, fiber outranks cable, cable outranks dsl.
func DefaultRules() []Rule {
	return []Rule{
		{Type: models.ConnectionCellular, Keywords: []string{
			"mobile", "cellular", "wireless", "lte", "5g",
			"t-mobile", "verizon wireless", "at&t mobility",
		}},
		{Type: models.ConnectionFiber, Keywords: []string{
			"fiber", "fios", "att fiber", "google fiber",
		}},
		{Type: models.ConnectionCable, Keywords: []string{
			"cable", "comcast", "xfinity", "spectrum", "cox", "charter",
		}},
		{Type: models.ConnectionDSL, Keywords: []string{
			"dsl", "centurylink", "frontier",
		}},
	}
}

// Classifier matches ISP names against an ordered rule table.
type Classifier struct {
	rules []Rule
}

// New builds a classifier from the given rules. Keywords are normalized to
// lower case; rule order is preserved.
func New(rules []Rule) *Classifier {
	normalized := make([]Rule, 0, len(rules))
	for _, r := range rules {
		keywords := make([]string, 0, len(r.Keywords))
		for _, kw := range r.Keywords {
			keywords = append(keywords, strings.ToLower(strings.TrimSpace(kw)))
		}
		normalized = append(normalized, Rule{Type: r.Type, Keywords: keywords})
	}
	return &Classifier{rules: normalized}
}

// Default returns a classifier over the built-in rule table.
func Default() *Classifier {
	return New(DefaultRules())
}

// Classify maps an ISP name to its connection category. Unmatched or empty
// names classify as unknown; classification never fails.
func (c *Classifier) Classify(ispName string) models.ConnectionType {
	name := strings.ToLower(strings.TrimSpace(ispName))
	if name == "" {
		return models.ConnectionUnknown
	}
	for _, r := range c.rules {
		for _, kw := range r.Keywords {
			if kw != "" && strings.Contains(name, kw) {
				return r.Type
			}
		}
	}
	return models.ConnectionUnknown
}

// LoadRules reads an ordered rule table from a YAML file, for deployments
// whose regional carriers the built-in keywords do not cover.
func LoadRules(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var rules []Rule
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("parse rules file %s: %w", path, err)
	}
	if err := validate(rules); err != nil {
		return nil, fmt.Errorf("invalid rules file %s: %w", path, err)
	}
	return rules, nil
}

func validate(rules []Rule) error {
	if len(rules) == 0 {
		return fmt.Errorf("no rules defined")
	}
	for i, r := range rules {
		switch r.Type {
		case models.ConnectionCable, models.ConnectionCellular, models.ConnectionFiber, models.ConnectionDSL:
		default:
			return fmt.Errorf("rule %d: unknown connection type %q", i, r.Type)
		}
		if len(r.Keywords) == 0 {
			return fmt.Errorf("rule %d (%s): no keywords", i, r.Type)
		}
		for _, kw := range r.Keywords {
			if strings.TrimSpace(kw) == "" {
				return fmt.Errorf("rule %d (%s): empty keyword", i, r.Type)
			}
		}
	}
	return nil
}
