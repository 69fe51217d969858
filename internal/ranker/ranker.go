// Package ranker scores document paragraphs against a query by keyword overlap.
package ranker

import (
	"sort"
	"strings"

	"repo-rag/internal/chunker"
	"repo-rag/internal/models"
)

// DefaultTopK is how many chunks reach the prompt when nothing else is configured.
const DefaultTopK = 2

// Rank returns up to topK chunks of docs that share at least one token with
// query, highest overlap first. Equal scores keep document order, then
// chunk order. The score is the raw size of the token-set intersection.
func Rank(query string, docs *models.DocumentSet, topK int) []models.ScoredChunk {
	if topK <= 0 || docs.Len() == 0 {
		return []models.ScoredChunk{}
	}

	queryTokens := Tokens(query)
	if len(queryTokens) == 0 {
		return []models.ScoredChunk{}
	}

	var scored []models.ScoredChunk
	for _, path := range docs.Paths() {
		text, _ := docs.Get(path)
		for _, chunk := range chunker.Chunks(path, text) {
			if n := overlap(queryTokens, Tokens(chunk.Text)); n > 0 {
				scored = append(scored, models.ScoredChunk{Chunk: chunk, MatchCount: n})
			}
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].MatchCount > scored[j].MatchCount
	})

	if len(scored) > topK {
		scored = scored[:topK]
	}
	if scored == nil {
		return []models.ScoredChunk{}
	}
	return scored
}

// Tokens lowercases text and returns its whitespace-separated words as a set.
func Tokens(text string) map[string]struct{} {
	fields := strings.Fields(strings.ToLower(text))
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}

func overlap(a, b map[string]struct{}) int {
	if len(b) < len(a) {
		a, b = b, a
	}
	n := 0
	for tok := range a {
		if _, ok := b[tok]; ok {
			n++
		}
	}
	return n
}
