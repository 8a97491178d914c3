package filter_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"presidency_scraper/internal/filter"
	"presidency_scraper/internal/models"
)

func speech() models.Speech {
	return models.Speech{
		Text:       "My fellow citizens...",
		Date:       "November 4, 2008",
		Title:      "Remarks in Columbus, Ohio",
		Speaker:    "Barack Obama",
		Citation:   "Barack Obama, Remarks in Columbus, Ohio, The American Presidency Project",
		State:      "Ohio",
		City:       "Columbus",
		Categories: "Elections and Transitions, Campaign Documents",
	}
}

func mustParse(t *testing.T, include, exclude map[string][]string) filter.Rules {
	t.Helper()
	rules, err := filter.Parse(include, exclude)
	require.NoError(t, err)
	return rules
}

func TestParseRejectsUnknownFields(t *testing.T) {
	_, err := filter.Parse(map[string][]string{"president": {"x"}}, nil)
	assert.Error(t, err)

	_, err = filter.Parse(nil, map[string][]string{"body_substring": {"x"}})
	assert.Error(t, err)

	// The substring suffix itself must resolve to a known field.
	_, err = filter.Parse(map[string][]string{"title_substring": {"x"}}, nil)
	assert.NoError(t, err)
}

func TestEmptyRulesAcceptEverything(t *testing.T) {
	rules := mustParse(t, nil, nil)
	assert.True(t, rules.Accepts(speech()))
	assert.True(t, rules.Accepts(models.Speech{}))
}

func TestIncludeExactMatch(t *testing.T) {
	rules := mustParse(t, map[string][]string{
		"speaker": {"Barack Obama", "John McCain"},
	}, nil)

	assert.True(t, rules.Accepts(speech()))

	other := speech()
	other.Speaker = "Sarah Palin"
	assert.False(t, rules.Accepts(other))
}

func TestIncludeEmptyValueListAlwaysPasses(t *testing.T) {
	rules := mustParse(t, map[string][]string{"speaker": {}}, nil)
	assert.True(t, rules.Accepts(speech()))
}

func TestIncludeSubstringRequiresAllValues(t *testing.T) {
	rules := mustParse(t, map[string][]string{
		"title_substring": {"Remarks", "Columbus"},
	}, nil)
	assert.True(t, rules.Accepts(speech()))

	rules = mustParse(t, map[string][]string{
		"title_substring": {"Remarks", "Cleveland"},
	}, nil)
	assert.False(t, rules.Accepts(speech()))
}

func TestExcludeExactMatch(t *testing.T) {
	rules := mustParse(t, nil, map[string][]string{
		"state": {"Ohio"},
	})
	assert.False(t, rules.Accepts(speech()))

	other := speech()
	other.State = "Iowa"
	assert.True(t, rules.Accepts(other))
}

func TestExcludeSubstringRejectsOnAnyValue(t *testing.T) {
	rules := mustParse(t, nil, map[string][]string{
		"title_substring": {"Press Release"},
	})

	pressRelease := speech()
	pressRelease.Title = "Press Release on Jobs"
	assert.False(t, rules.Accepts(pressRelease))

	remarks := speech()
	remarks.Title = "Remarks on Jobs"
	assert.True(t, rules.Accepts(remarks))
}

func TestRulesComposeWithAnd(t *testing.T) {
	rules := mustParse(t,
		map[string][]string{
			"speaker":         {"Barack Obama"},
			"title_substring": {"Remarks"},
		},
		map[string][]string{
			"title_substring": {"Press Release"},
		})

	assert.True(t, rules.Accepts(speech()))

	wrongSpeaker := speech()
	wrongSpeaker.Speaker = "Mitt Romney"
	assert.False(t, rules.Accepts(wrongSpeaker))

	excluded := speech()
	excluded.Title = "Remarks in a Press Release"
	assert.False(t, rules.Accepts(excluded))
}

func TestAcceptsIsPure(t *testing.T) {
	rules := mustParse(t,
		map[string][]string{"speaker": {"Barack Obama"}},
		map[string][]string{"title_substring": {"Press Release"}})

	rec := speech()
	first := rules.Accepts(rec)
	for i := 0; i < 100; i++ {
		assert.Equal(t, first, rules.Accepts(rec))
	}
}
