package chunker

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"repo-rag/internal/models"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"empty", "", []string{}},
		{"whitespace only", " \n\n\t\n\n ", []string{}},
		{"single paragraph trimmed", "  cats are great \n", []string{"cats are great"}},
		{"two paragraphs", "cats are great\n\nfish swim", []string{"cats are great", "fish swim"}},
		{"extra blank lines", "a\n\n\n\nb", []string{"a", "b"}},
		{"single newline kept", "line one\nline two", []string{"line one\nline two"}},
		{"crlf", "a\r\n\r\nb", []string{"a", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Split(tt.text))
		})
	}
}

func TestSplit_RoundTripSingleParagraph(t *testing.T) {
	original := "\n  a lone paragraph with words  \n"
	got := Split(original)
	assert.Len(t, got, 1)
	assert.Equal(t, "a lone paragraph with words", got[0])
}

func TestChunks(t *testing.T) {
	got := Chunks("a.md", "cats are great\n\nfish swim")
	assert.Equal(t, []models.Chunk{
		{SourcePath: "a.md", Index: 0, Text: "cats are great"},
		{SourcePath: "a.md", Index: 1, Text: "fish swim"},
	}, got)
}
