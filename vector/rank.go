package vector

import (
	"fmt"
	"math"
	"sort"
)

// DefaultTopK is the number of documents cited per answer.
const DefaultTopK = 3

// Rank scores every document against query and returns the topK best,
// highest score first. NaN scores sort last. topK <= 0 keeps every document.
func Rank(query []float64, docs []Document, topK int) ([]SearchResult, error) {
	results := make([]SearchResult, 0, len(docs))
	for i, doc := range docs {
		score, err := CosineSimilarity(query, doc.Embedding)
		if err != nil {
			return nil, fmt.Errorf("score document %d (%s): %w", i, doc.Metadata.Filename, err)
		}
		results = append(results, SearchResult{Document: doc, Score: score})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return ranksBefore(results[i].Score, results[j].Score)
	})

	if topK > 0 && len(results) > topK {
		results = results[:topK]
	}

	return results, nil
}

func ranksBefore(a, b float64) bool {
	if math.IsNaN(a) {
		return false
	}
	if math.IsNaN(b) {
		return true
	}
	return a > b
}
