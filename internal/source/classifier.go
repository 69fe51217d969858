// Package source decides whether a query points at a Git repository.
package source

import (
	"regexp"
	"strings"

	"repo-rag/internal/models"
)

const gitSuffix = ".git"

var repoURLPattern = regexp.MustCompile(`https://github\.com/[a-zA-Z0-9_-]+/[a-zA-Z0-9_-]+(?:\.git)?`)

// triggerPhrases mark a query as repository-related even without a URL.
var triggerPhrases = []string{
	"git repo",
	"github",
	"git repository",
	"git仓库",
	"github仓库",
}

// Classify extracts the first repository URL in query, normalized to end in .git.
func Classify(query string) (models.RepositoryReference, bool) {
	match := repoURLPattern.FindString(query)
	if match == "" {
		return models.RepositoryReference{}, false
	}

	url := match
	if !strings.HasSuffix(url, gitSuffix) {
		url += gitSuffix
	}

	return models.RepositoryReference{
		URL:  url,
		Name: CanonicalName(url),
	}, true
}

// IsRepositoryRelated reports whether acquisition should be attempted for query.
func IsRepositoryRelated(query string) bool {
	if repoURLPattern.MatchString(query) {
		return true
	}

	lower := strings.ToLower(query)
	for _, phrase := range triggerPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

// CanonicalName returns the last path segment of a repository URL without
// its .git suffix. It is the on-disk directory key for the working copy.
func CanonicalName(url string) string {
	trimmed := strings.TrimSuffix(strings.TrimRight(url, "/"), gitSuffix)
	if i := strings.LastIndex(trimmed, "/"); i >= 0 {
		return trimmed[i+1:]
	}
	return trimmed
}
