// Package filter decides which scraped speeches belong to the corpus.
//
// Rules come in two dictionaries, include and exclude, mapping a field
// selector to a list of values. A selector is a plain field name for exact
// matching, or "<field>_substring" for substring matching. All rules must
// pass for a record to be kept.
package filter

import (
	"fmt"
	"strings"

	"presidency_scraper/internal/models"
)

// SubstringSuffix marks a selector with substring-match semantics.
const SubstringSuffix = "_substring"

// Rule is one include or exclude check against a single field.
type Rule struct {
	Field     string
	Substring bool
	Values    []string
}

// Rules holds a parsed include/exclude pair, read-only for the life of a
// crawl.
type Rules struct {
	Include []Rule
	Exclude []Rule
}

// Parse validates and converts raw rule dictionaries. A selector whose base
// field name is not a known metadata field is a configuration error.
func Parse(include, exclude map[string][]string) (Rules, error) {
	var r Rules
	var err error
	if r.Include, err = parseSet("include", include); err != nil {
		return Rules{}, err
	}
	if r.Exclude, err = parseSet("exclude", exclude); err != nil {
		return Rules{}, err
	}
	return r, nil
}

func parseSet(name string, raw map[string][]string) ([]Rule, error) {
	rules := make([]Rule, 0, len(raw))
	for selector, values := range raw {
		field := strings.TrimSuffix(selector, SubstringSuffix)
		if !models.KnownField(field) {
			return nil, fmt.Errorf("%s selector %q references unknown field %q", name, selector, field)
		}
		rules = append(rules, Rule{
			Field:     field,
			Substring: strings.HasSuffix(selector, SubstringSuffix),
			Values:    values,
		})
	}
	return rules, nil
}

// Accepts reports whether the record survives every include and every
// exclude rule. Evaluation stops at the first failing rule. Empty rule sets
// accept everything.
func (r Rules) Accepts(s models.Speech) bool {
	for _, rule := range r.Include {
		value := s.Field(rule.Field)
		if rule.Substring {
			// Every listed value must occur in the field.
			for _, v := range rule.Values {
				if !strings.Contains(value, v) {
					return false
				}
			}
		} else if len(rule.Values) > 0 && !contains(rule.Values, value) {
			// An empty value list only requires the field to exist,
			// which every extracted record satisfies.
			return false
		}
	}

	for _, rule := range r.Exclude {
		value := s.Field(rule.Field)
		if rule.Substring {
			for _, v := range rule.Values {
				if strings.Contains(value, v) {
					return false
				}
			}
		} else if contains(rule.Values, value) {
			return false
		}
	}

	return true
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
