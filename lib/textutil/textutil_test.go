package textutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSafeFilename(t *testing.T) {
	testCases := []struct {
		name     string
		expected string
	}{
		{name: "Bayern Munich", expected: "Bayern Munich"},
		{name: "  Brighton   and Hove Albion \n", expected: "Brighton and Hove Albion"},
		{name: "AC/DC United", expected: "AC-DC United"},
		{name: `Back\Slash`, expected: "Back-Slash"},
		{name: "Atlético Madrid", expected: "Atlético Madrid"},
		{name: "..", expected: "_"},
		{name: "", expected: "_"},
	}

	for _, test := range testCases {
		require.Equal(t, test.expected, SafeFilename(test.name), test.name)
	}
}

func TestSuggest(t *testing.T) {
	candidates := []string{"premier-league", "la-liga", "la-liga-2", "bundesliga", "serie-a"}

	best, ok := Suggest("premier-leage", candidates, 0.85)
	require.True(t, ok)
	require.Equal(t, "premier-league", best)

	best, ok = Suggest("Bundesliga", candidates, 0.85)
	require.True(t, ok)
	require.Equal(t, "bundesliga", best)

	_, ok = Suggest("zzzzzz", candidates, 0.85)
	require.False(t, ok)
}

func TestNormalizeName(t *testing.T) {
	require.Equal(t, "premierleague", NormalizeName("  Premier League\t"))
}
