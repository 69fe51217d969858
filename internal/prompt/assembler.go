// Package prompt turns ranked chunks and repository details into the
// first-turn prompt.
package prompt

import (
	"fmt"
	"strings"

	"repo-rag/internal/models"
)

const (
	// DefaultPreamble instructs the model how to use the reference section.
	DefaultPreamble = "Answer the user's question based on the reference information below. " +
		"If the reference information contains relevant data, prefer it in your answer; " +
		"if it does not, you may answer from your own knowledge."

	// NoReference replaces the context when nothing was gathered.
	NoReference = "No relevant reference information."

	// Separator joins context segments.
	Separator = "\n---\n"

	// DefaultListingThreshold is the largest repository whose file list is
	// included in the manifest segment.
	DefaultListingThreshold = 50
)

// StaticContext is configured project information shown before ranked chunks.
type StaticContext struct {
	ProjectName        string
	ProjectDescription string
	Examples           []string
}

func (s StaticContext) empty() bool {
	return strings.TrimSpace(s.ProjectName) == "" &&
		strings.TrimSpace(s.ProjectDescription) == "" &&
		len(s.Examples) == 0
}

// AssembledContext is the ordered list of context segments: repository
// manifest, static context, then one segment per ranked chunk.
type AssembledContext struct {
	Segments []string
}

// String joins the segments, or returns NoReference when there are none.
func (c AssembledContext) String() string {
	if len(c.Segments) == 0 {
		return NoReference
	}
	return strings.Join(c.Segments, Separator)
}

// Assembler builds prompts. The zero value uses the defaults.
type Assembler struct {
	Preamble         string
	ListingThreshold int
}

// Assemble orders the context segments. repo and static may be nil.
func (a Assembler) Assemble(ranked []models.ScoredChunk, repo *models.RepositoryInfo, static *StaticContext) AssembledContext {
	var segments []string

	if repo != nil {
		segments = append(segments, a.manifestSegment(repo))
	}
	if static != nil && !static.empty() {
		segments = append(segments, staticSegment(static))
	}
	for _, sc := range ranked {
		segments = append(segments, fmt.Sprintf("From file '%s' (chunk %d):\n%s", sc.SourcePath, sc.Index, sc.Text))
	}

	return AssembledContext{Segments: segments}
}

// Build embeds the context and the raw query in the prompt template.
func (a Assembler) Build(query string, ctx AssembledContext) string {
	preamble := a.Preamble
	if strings.TrimSpace(preamble) == "" {
		preamble = DefaultPreamble
	}

	var sb strings.Builder
	sb.WriteString(preamble)
	sb.WriteString("\n\nReference information:\n")
	sb.WriteString(ctx.String())
	sb.WriteString("\n\nUser question:\n")
	sb.WriteString(query)

	return strings.TrimSpace(sb.String())
}

// Prompt is Assemble followed by Build.
func (a Assembler) Prompt(query string, ranked []models.ScoredChunk, repo *models.RepositoryInfo, static *StaticContext) string {
	return a.Build(query, a.Assemble(ranked, repo, static))
}

func (a Assembler) manifestSegment(repo *models.RepositoryInfo) string {
	threshold := a.ListingThreshold
	if threshold <= 0 {
		threshold = DefaultListingThreshold
	}

	var sb strings.Builder
	sb.WriteString("Git repository information:\n")
	fmt.Fprintf(&sb, "- Repository URL: %s\n", repo.URL)
	fmt.Fprintf(&sb, "- Local path: %s\n", repo.LocalPath)
	fmt.Fprintf(&sb, "- Total files: %d", repo.FileCount)

	if repo.FileCount > 0 && repo.FileCount <= threshold {
		sb.WriteString("\n- All files:\n  ")
		sb.WriteString(strings.Join(repo.FilePaths, "\n  "))
	}
	return sb.String()
}

func staticSegment(s *StaticContext) string {
	var lines []string
	if name := strings.TrimSpace(s.ProjectName); name != "" {
		lines = append(lines, "Project: "+name)
	}
	if desc := strings.TrimSpace(s.ProjectDescription); desc != "" {
		lines = append(lines, desc)
	}
	for i, ex := range s.Examples {
		lines = append(lines, fmt.Sprintf("Example %d:\n%s", i+1, strings.TrimSpace(ex)))
	}
	return strings.Join(lines, "\n\n")
}
