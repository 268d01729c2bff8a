package match_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/portfolio-engine/match"
	"github.com/warp/portfolio-engine/tabular"
)

// =============================================================================
// SIMILARITY
// =============================================================================

func TestSimilarity_IdenticalAndEmpty(t *testing.T) {
	assert.Equal(t, 1.0, match.Similarity("Phoenix Migration", "phoenix migration"))
	assert.Equal(t, 1.0, match.Similarity("  abc ", "ABC"))
	assert.Equal(t, 0.0, match.Similarity("", "anything"))
	assert.Equal(t, 0.0, match.Similarity("anything", ""))
}

func TestSimilarity_KnownRatio(t *testing.T) {
	// GIVEN: Two 4-char strings differing in one character
	// THEN: Ratio is 2*3/(4+4) = 0.75

	assert.InDelta(t, 0.75, match.Similarity("abcd", "abce"), 1e-9)
}

func TestSimilarity_PrefixOverlap_ClearsThreshold(t *testing.T) {
	s := match.Similarity("Phoenix Migration", "Phoenix Migration Project")
	assert.Greater(t, s, match.DefaultThreshold)

	s = match.Similarity("Phoenix Migration", "Quarterly Tax Filing")
	assert.Less(t, s, match.DefaultThreshold)
}

// =============================================================================
// EXACT ROWS
// =============================================================================

func TestExactRows_NormalizedEquality_SourceOrder(t *testing.T) {
	// GIVEN: Rows whose keys differ only in case and whitespace
	// WHEN: Resolving an identity
	// THEN: All of them match, in source order

	table := tabular.New([]string{"key"}, [][]any{
		{" p-100 "},
		{"P-200"},
		{"P-100"},
		{nil},
		{"unknown"},
	})

	rows := match.ExactRows(table, "key", "P-100")
	assert.Equal(t, []int{0, 2}, rows)

	assert.Empty(t, match.ExactRows(table, "key", "P-999"))
	assert.Empty(t, match.ExactRows(table, "key", "unknown"))
}

func TestKeysEqual(t *testing.T) {
	assert.True(t, match.KeysEqual(" p-1", "P-1 "))
	assert.False(t, match.KeysEqual("p-1", "p-2"))
	assert.False(t, match.KeysEqual(nil, "p-1"))
	assert.False(t, match.KeysEqual("unknown", "unknown"))
}

// =============================================================================
// FUZZY RESOLUTION
// =============================================================================

func TestBestFuzzyRow_ThresholdMustBeExceeded(t *testing.T) {
	// GIVEN: A perfect match but a threshold of 1.0
	// WHEN: Resolving fuzzily
	// THEN: Nothing clears the bar (score must EXCEED the threshold)

	table := tabular.New([]string{"name"}, [][]any{{"Alpha"}})

	_, _, ok := match.BestFuzzyRow(table, "name", "Alpha", 1.0)
	assert.False(t, ok)

	row, score, ok := match.BestFuzzyRow(table, "name", "Alpha", 0.6)
	require.True(t, ok)
	assert.Equal(t, 0, row)
	assert.Equal(t, 1.0, score)
}

func TestBestFuzzyRow_Tie_FirstMaximalWins(t *testing.T) {
	// GIVEN: Two rows with identical names
	// WHEN: Resolving fuzzily
	// THEN: The earlier row wins the tie

	table := tabular.New([]string{"name"}, [][]any{
		{"Phoenix Migration"},
		{"Phoenix Migration"},
	})

	row, _, ok := match.BestFuzzyRow(table, "name", "Phoenix Migration", 0.6)
	require.True(t, ok)
	assert.Equal(t, 0, row)
}

func TestBestFuzzyRow_PicksHighestScore(t *testing.T) {
	table := tabular.New([]string{"name"}, [][]any{
		{"Quarterly Tax Filing"},
		{"Phoenix Migration Project"},
		{"Data Center Exit"},
	})

	row, _, ok := match.BestFuzzyRow(table, "name", "Phoenix Migration", 0.6)
	require.True(t, ok)
	assert.Equal(t, 1, row)
}

func TestFuzzyValues_DistinctRawSpellings(t *testing.T) {
	// GIVEN: Several raw spellings of the same project plus an unrelated one
	// WHEN: Collecting fuzzy-matched values
	// THEN: The related spellings come back once each, first-seen order

	table := tabular.New([]string{"id"}, [][]any{
		{"Phoenix Migration"},
		{"Phoenix Migration Phase 2"},
		{"Phoenix Migration"},
		{"Quarterly Tax Filing"},
	})

	vals := match.FuzzyValues(table, "id", "Phoenix Migration", 0.6)
	assert.Equal(t, []string{"Phoenix Migration", "Phoenix Migration Phase 2"}, vals)
}
