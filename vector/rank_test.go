package vector

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func doc(name string, emb ...float64) Document {
	return Document{Content: "content of " + name, Embedding: emb, Metadata: Metadata{Filename: name}}
}

func filenames(results []SearchResult) []string {
	names := make([]string, len(results))
	for i, r := range results {
		names[i] = r.Document.Metadata.Filename
	}
	return names
}

func fiveDocs() []Document {
	return []Document{
		doc("a.md", 1, 0),
		doc("b.md", 0, 1),
		doc("c.md", 1, 1),
		doc("d.md", -1, 0),
		doc("e.md", 2, 0.5),
	}
}

func TestRankTopKOfFive(t *testing.T) {
	results, err := Rank([]float64{1, 0}, fiveDocs(), DefaultTopK)
	require.NoError(t, err)

	require.Len(t, results, 3)
	assert.Equal(t, []string{"a.md", "e.md", "c.md"}, filenames(results))
	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].Score, results[i].Score)
	}
}

func TestRankFewerThanK(t *testing.T) {
	docs := []Document{doc("a.md", 1, 0), doc("b.md", 0, 1)}

	results, err := Rank([]float64{0, 1}, docs, 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"b.md", "a.md"}, filenames(results))
}

func TestRankEmpty(t *testing.T) {
	results, err := Rank([]float64{1, 0}, nil, 3)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestRankNonPositiveKKeepsAll(t *testing.T) {
	results, err := Rank([]float64{1, 0}, fiveDocs(), 0)
	require.NoError(t, err)
	assert.Len(t, results, 5)
}

func TestRankInvariantUnderQueryScaling(t *testing.T) {
	query := []float64{0.4, 0.9}
	scaled := []float64{40, 90}

	base, err := Rank(query, fiveDocs(), 5)
	require.NoError(t, err)
	got, err := Rank(scaled, fiveDocs(), 5)
	require.NoError(t, err)

	assert.Equal(t, filenames(base), filenames(got))
	for i := range base {
		assert.InDelta(t, base[i].Score, got[i].Score, 1e-12)
	}
}

func TestRankZeroVectorSortsLast(t *testing.T) {
	docs := []Document{doc("zero.md", 0, 0), doc("a.md", -1, 0), doc("b.md", 1, 0)}

	results, err := Rank([]float64{1, 0}, docs, 3)
	require.NoError(t, err)

	assert.Equal(t, []string{"b.md", "a.md", "zero.md"}, filenames(results))
	assert.True(t, math.IsNaN(results[2].Score))
}

func TestRankDimensionMismatch(t *testing.T) {
	docs := []Document{doc("a.md", 1, 0), doc("bad.md", 1, 0, 0)}

	_, err := Rank([]float64{1, 0}, docs, 3)
	require.ErrorIs(t, err, ErrDimensionMismatch)
	assert.Contains(t, err.Error(), "bad.md")
}

func TestMemoryStoreSearch(t *testing.T) {
	store := NewMemoryStore(fiveDocs())
	defer store.Close()

	require.NoError(t, store.Ready(context.Background()))
	assert.Equal(t, 5, store.Count())

	results, err := store.Search(context.Background(), []float64{0, 1}, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"b.md", "c.md"}, filenames(results))
}
