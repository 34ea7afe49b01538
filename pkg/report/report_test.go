package report

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrew/plandex-lite/pkg/models"
)

func TestAssembleSectionsInOrder(t *testing.T) {
	doc := Assemble(Input{
		RunID:        "run-1",
		Request:      "todo app",
		Plan:         "<think>hmm</think>1. do it",
		Architecture: "src/",
		Artifacts:    []models.ResolvedArtifact{{Filename: "src/a.ts", Content: "console.log(1)\n"}},
		Review:       "looks fine",
		Summary:      "ship it",
	})

	headings := []string{
		"# 🧱 Final Implementation",
		"## 📌 User Prompt\ntodo app",
		"## 📝 Plan\n1. do it",
		"## 🏗 Architecture\nsrc/",
		"## 💻 Code (excerpt)",
		"### src/a.ts\n```\nconsole.log(1)...\n```",
		"## 🔍 Review\nlooks fine",
		"## 📌 Next Steps\nship it",
		"_Run run-1_",
	}
	last := -1
	for _, h := range headings {
		idx := strings.Index(doc, h)
		require.GreaterOrEqual(t, idx, 0, "missing %q in:\n%s", h, doc)
		assert.Greater(t, idx, last, "%q out of order", h)
		last = idx
	}
	assert.NotContains(t, doc, "<think>")
}

func TestAssembleKeepsThinkTagsInCode(t *testing.T) {
	code := "const open = '<think>';\nconst close = '</think>';\n"
	doc := Assemble(Input{Artifacts: []models.ResolvedArtifact{{Filename: "tags.js", Content: code}}})
	assert.Contains(t, doc, "### tags.js\n```\n"+strings.TrimSpace(code)+"...\n```")
}

func TestAssembleTruncatesExcerpts(t *testing.T) {
	long := strings.Repeat("é", 250)
	doc := Assemble(Input{Artifacts: []models.ResolvedArtifact{{Filename: "big.txt", Content: long}}})
	assert.Contains(t, doc, strings.Repeat("é", ExcerptLimit)+"...")
	assert.NotContains(t, doc, strings.Repeat("é", ExcerptLimit+1))
}

func TestAssembleWithoutArtifacts(t *testing.T) {
	doc := Assemble(Input{Request: "x"})
	assert.Contains(t, doc, "_No code blocks were extracted._")
	assert.NotContains(t, doc, "_Run")
}

func TestAssembleUsesLongerFenceForNestedCode(t *testing.T) {
	doc := Assemble(Input{Artifacts: []models.ResolvedArtifact{{Filename: "README.md", Content: "```sh\nmake\n```\n"}}})
	assert.Contains(t, doc, "### README.md\n````\n```sh\nmake\n```...\n````")
}

func TestExcerpt(t *testing.T) {
	assert.Equal(t, "abc", Excerpt("abc", 10))
	assert.Equal(t, "ab", Excerpt("abc", 2))
}

func TestToHTML(t *testing.T) {
	html, err := ToHTML("# Title\n\n| a | b |\n|---|---|\n| 1 | 2 |\n\n```ts\nlet x = 1\n```\n<script>alert(1)</script>\n")
	require.NoError(t, err)
	assert.Contains(t, html, "<h1>Title</h1>")
	assert.Contains(t, html, "<table>")
	assert.Contains(t, html, `<code class="language-ts">`)
	assert.NotContains(t, html, "<script>alert(1)</script>")
	assert.True(t, strings.HasPrefix(html, "<!DOCTYPE html>"))
}

func TestPDFPath(t *testing.T) {
	assert.Equal(t, "/p/REPORT.pdf", PDFPath("/p/REPORT.md"))
}
