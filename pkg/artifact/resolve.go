// Package artifact turns parsed code candidates into files under a project root.
package artifact

import (
	"fmt"
	"strings"

	"github.com/andrew/plandex-lite/pkg/models"
)

const fallbackExt = "txt"

// extensions maps a fence language tag to the extension used for synthesized
// filenames. Tags not listed here fall back to .txt.
var extensions = map[string]string{
	"ts":   "ts",
	"js":   "js",
	"py":   "py",
	"json": "json",
	"md":   "md",
	"txt":  "txt",
	"html": "html",
	"css":  "css",
	"sh":   "sh",
}

// Extension returns the file extension for a language tag and whether the tag is known.
func Extension(lang string) (string, bool) {
	ext, ok := extensions[strings.ToLower(strings.TrimSpace(lang))]
	return ext, ok
}

// SnippetName synthesizes the filename used for a candidate without a usable hint.
func SnippetName(ordinal int, ext string) string {
	return fmt.Sprintf("snippet_%d.%s", ordinal, ext)
}

// Resolve picks the relative filename for the candidate at the given 1-based
// ordinal: an explicit filename hint wins, then a known language tag, then
// snippet_<ordinal>.txt. Explicit hints are not deduplicated; two candidates
// naming the same file resolve to the same path and the later one wins on write.
func Resolve(c models.CodeCandidate, ordinal int) string {
	if hint := strings.TrimSpace(c.FilenameHint); hint != "" {
		return hint
	}
	if ext, ok := Extension(c.LanguageHint); ok {
		return SnippetName(ordinal, ext)
	}
	return SnippetName(ordinal, fallbackExt)
}

// ResolveAll resolves candidates in document order, numbering them from 1.
func ResolveAll(cands []models.CodeCandidate) []models.ResolvedArtifact {
	out := make([]models.ResolvedArtifact, 0, len(cands))
	for i, c := range cands {
		out = append(out, models.ResolvedArtifact{
			Filename: Resolve(c, i+1),
			Content:  c.Body,
		})
	}
	return out
}
