package ranker

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"repo-rag/internal/models"
)

func docSet(pairs ...string) *models.DocumentSet {
	docs := models.NewDocumentSet()
	for i := 0; i+1 < len(pairs); i += 2 {
		docs.Add(pairs[i], pairs[i+1])
	}
	return docs
}

func TestRank_CatsAndFish(t *testing.T) {
	docs := docSet(
		"a.md", "cats are great\n\nfish swim",
		"b.md", "dogs bark",
	)

	got := Rank("cats fish", docs, 2)

	require.Len(t, got, 2)
	assert.Equal(t, "a.md", got[0].SourcePath)
	assert.Equal(t, 0, got[0].Index)
	assert.Equal(t, "a.md", got[1].SourcePath)
	assert.Equal(t, 1, got[1].Index)
	for _, sc := range got {
		assert.NotEqual(t, "b.md", sc.SourcePath)
	}
}

func TestRank_HigherScoreFirst(t *testing.T) {
	docs := docSet(
		"a.md", "fish swim\n\ncats and fish are friends",
		"b.md", "dogs bark",
	)

	got := Rank("cats fish", docs, 2)

	require.Len(t, got, 2)
	assert.Equal(t, models.ScoredChunk{
		Chunk:      models.Chunk{SourcePath: "a.md", Index: 1, Text: "cats and fish are friends"},
		MatchCount: 2,
	}, got[0])
	assert.Equal(t, 1, got[1].MatchCount)
	assert.Equal(t, 0, got[1].Index)
}

func TestRank_TiesKeepDocumentOrder(t *testing.T) {
	docs := docSet(
		"z.md", "go fast",
		"a.md", "go slow",
		"m.md", "go home\n\ngo away",
	)

	got := Rank("go", docs, 10)

	require.Len(t, got, 4)
	order := make([]string, len(got))
	for i, sc := range got {
		order[i] = fmt.Sprintf("%s#%d", sc.SourcePath, sc.Index)
	}
	assert.Equal(t, []string{"z.md#0", "a.md#0", "m.md#0", "m.md#1"}, order)
}

func TestRank_ZeroScoresExcluded(t *testing.T) {
	docs := docSet("b.md", "dogs bark")
	assert.Empty(t, Rank("cats fish", docs, 5))
}

func TestRank_EmptyInputs(t *testing.T) {
	assert.Empty(t, Rank("cats", models.NewDocumentSet(), 2))
	assert.Empty(t, Rank("cats", nil, 2))
	assert.Empty(t, Rank("   ", docSet("a.md", "cats"), 2))
	assert.Empty(t, Rank("cats", docSet("a.md", "cats"), 0))
}

func TestRank_CaseInsensitiveSetSemantics(t *testing.T) {
	docs := docSet("a.md", "Cats CATS cats")
	got := Rank("cats cats CATS", docs, 1)
	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].MatchCount, "duplicate tokens collapse")
}

func TestRank_Properties(t *testing.T) {
	words := []string{"alpha", "beta", "gamma", "delta", "epsilon", "zeta"}
	rng := rand.New(rand.NewSource(42))

	for trial := 0; trial < 50; trial++ {
		docs := models.NewDocumentSet()
		for d := 0; d < 5; d++ {
			text := ""
			for p := 0; p < 3; p++ {
				for w := 0; w < 4; w++ {
					text += words[rng.Intn(len(words))] + " "
				}
				text += "\n\n"
			}
			docs.Add(fmt.Sprintf("doc%d.txt", d), text)
		}
		query := words[rng.Intn(len(words))] + " " + words[rng.Intn(len(words))]
		topK := rng.Intn(6) + 1

		got := Rank(query, docs, topK)
		again := Rank(query, docs, topK)

		assert.LessOrEqual(t, len(got), topK)
		assert.Equal(t, got, again, "ranking is reproducible")
		for i, sc := range got {
			assert.Positive(t, sc.MatchCount)
			if i > 0 {
				assert.GreaterOrEqual(t, got[i-1].MatchCount, sc.MatchCount)
			}
		}
	}
}
