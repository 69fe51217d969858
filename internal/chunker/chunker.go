// Package chunker splits documents into paragraphs.
package chunker

import (
	"strings"

	"repo-rag/internal/models"
)

const paragraphSeparator = "\n\n"

// Split returns the trimmed, non-empty blank-line separated paragraphs of text, in order.
func Split(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	parts := strings.Split(text, paragraphSeparator)
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Chunks splits the document at path into indexed chunks.
func Chunks(path, text string) []models.Chunk {
	paragraphs := Split(text)
	chunks := make([]models.Chunk, len(paragraphs))
	for i, p := range paragraphs {
		chunks[i] = models.Chunk{SourcePath: path, Index: i, Text: p}
	}
	return chunks
}
