package cli

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idilsaglam/grocer/internal/model"
	"github.com/idilsaglam/grocer/internal/ui"
)

func TestItemLines_TruncatesLongNamesByWidth(t *testing.T) {
	ui.SetTheme("classic")
	ui.SetColorForcing(false, true)
	t.Cleanup(func() { ui.SetTheme("classic") })

	long := strings.Repeat("a", 56) + "éclair crème fraîche"
	lines := itemLines([]model.Item{{Name: long}, {Name: "crème fraîche"}})
	require.Len(t, lines, 2)

	prefix := "  " + ui.Current().BoxUnchecked + " "
	got := strings.TrimPrefix(lines[0], prefix)
	assert.True(t, utf8.ValidString(got), "truncated name is valid UTF-8: %q", got)
	assert.True(t, strings.HasSuffix(got, "..."))
	assert.LessOrEqual(t, runewidth.StringWidth(got), 60)
	assert.True(t, strings.HasPrefix(got, strings.Repeat("a", 56)+"é"))

	assert.Equal(t, prefix+"crème fraîche", lines[1])
}

func TestCategoryAndName(t *testing.T) {
	cases := map[string]struct {
		args []string
		want string
	}{
		"plain":               {[]string{"produce", "green", "beans"}, "green beans"},
		"double quoted":       {[]string{"produce", `"green`, `beans"`}, "green beans"},
		"single quoted":       {[]string{"produce", "'kiwi'"}, "kiwi"},
		"trailing apostrophe": {[]string{"pantry", "kids'"}, "kids'"},
		"inner apostrophe":    {[]string{"pantry", "don't", "stop"}, "don't stop"},
		"unmatched quotes":    {[]string{"pantry", `"kiwi'`}, `"kiwi'`},
		"quotes kept inside":  {[]string{"pantry", `"6" subs"`}, `6" subs`},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			cat, got, err := categoryAndName("add", tc.args)
			require.NoError(t, err)
			assert.Equal(t, tc.args[0], cat)
			assert.Equal(t, tc.want, got)
		})
	}

	_, _, err := categoryAndName("add", []string{"produce", `""`})
	assert.Error(t, err)
}
