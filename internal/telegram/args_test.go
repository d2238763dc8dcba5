package telegram

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smart-pantry/internal/search"
)

func TestParseIndex(t *testing.T) {
	i, err := parseIndex(" 2 ", 3)
	require.NoError(t, err)
	assert.Equal(t, 1, i)

	for _, arg := range []string{"0", "4", "x", ""} {
		_, err := parseIndex(arg, 3)
		assert.ErrorIs(t, err, errBadArgs, "arg %q", arg)
	}

	_, err = parseIndex("1", 0)
	assert.ErrorContains(t, err, "empty")
}

func TestParseNumbers(t *testing.T) {
	n, err := parseNumbers("1 2 7", 3)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 6}, n)

	_, err = parseNumbers("1 2", 3)
	assert.ErrorIs(t, err, errBadArgs)
	_, err = parseNumbers("1 a", 2)
	assert.ErrorIs(t, err, errBadArgs)
}

func TestParseCookArgs(t *testing.T) {
	req, err := parseCookArgs("strict time=45 max=6 units=imperial vegan no-nuts")
	require.NoError(t, err)
	assert.Equal(t, search.Request{
		Restrictions:       "vegan no-nuts",
		StrictMode:         true,
		MaxCookTimeMinutes: 45,
		MaxIngredients:     6,
		Measurement:        search.Standard,
	}, req)
	assert.Equal(t, search.ModeGenerative, req.Mode())

	req, err = parseCookArgs("")
	require.NoError(t, err)
	assert.Equal(t, search.Request{}, req)

	_, err = parseCookArgs("time=soon")
	assert.ErrorIs(t, err, errBadArgs)
}

func TestParseRating(t *testing.T) {
	stars, title, comment, err := parseRating("4 Mushroom Risotto | creamy")
	require.NoError(t, err)
	assert.Equal(t, 4, stars)
	assert.Equal(t, "Mushroom Risotto", title)
	assert.Equal(t, "creamy", comment)

	_, _, comment, err = parseRating("5 Soup")
	require.NoError(t, err)
	assert.Empty(t, comment)

	_, _, _, err = parseRating("5")
	assert.ErrorIs(t, err, errBadArgs)
	_, _, _, err = parseRating("great soup")
	assert.ErrorIs(t, err, errBadArgs)
}

func TestSplitFieldsAndURL(t *testing.T) {
	assert.Equal(t, []string{"Eggs", "Dairy", "12"}, splitFields(" Eggs |Dairy| 12 "))
	assert.True(t, isURL("https://example.com"))
	assert.False(t, isURL("/search"))
}
