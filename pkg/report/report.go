// Package report assembles the markdown summary of a pipeline run.
package report

import (
	"fmt"
	"strings"

	"github.com/andrew/plandex-lite/pkg/markdown"
	"github.com/andrew/plandex-lite/pkg/models"
)

// ExcerptLimit is the number of characters of each artifact shown in the report.
const ExcerptLimit = 200

// Input carries the stage outputs that make up a report.
type Input struct {
	RunID        string
	Request      string
	Plan         string
	Architecture string
	Artifacts    []models.ResolvedArtifact
	Review       string
	Summary      string
}

// Assemble renders the report document.
func Assemble(in Input) string {
	var b strings.Builder
	b.WriteString("# 🧱 Final Implementation\n\n")
	section(&b, "📌 User Prompt", in.Request)
	section(&b, "📝 Plan", in.Plan)
	section(&b, "🏗 Architecture", in.Architecture)

	b.WriteString("## 💻 Code (excerpt)\n")
	if len(in.Artifacts) == 0 {
		b.WriteString("\n_No code blocks were extracted._\n")
	}
	for _, a := range in.Artifacts {
		code := strings.TrimSpace(Excerpt(a.Content, ExcerptLimit)) + "..."
		fence := fenceFor(code)
		fmt.Fprintf(&b, "\n### %s\n%s\n%s\n%s\n", a.Filename, fence, code, fence)
	}
	b.WriteString("\n")

	section(&b, "🔍 Review", in.Review)
	section(&b, "📌 Next Steps", in.Summary)

	if in.RunID != "" {
		fmt.Fprintf(&b, "---\n_Run %s_\n", in.RunID)
	}
	return b.String()
}

func section(b *strings.Builder, title, body string) {
	fmt.Fprintf(b, "## %s\n%s\n\n", title, markdown.StripThinking(body))
}

// Excerpt returns at most limit characters of s.
func Excerpt(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

// fenceFor returns a backtick fence longer than any backtick run in code.
func fenceFor(code string) string {
	longest, run := 0, 0
	for _, r := range code {
		if r == '`' {
			run++
			if run > longest {
				longest = run
			}
			continue
		}
		run = 0
	}
	if longest < 3 {
		return "```"
	}
	return strings.Repeat("`", longest+1)
}
