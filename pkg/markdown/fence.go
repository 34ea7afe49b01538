// Package markdown extracts fenced code blocks from model output.
package markdown

import (
	"regexp"
	"strings"

	"github.com/andrew/plandex-lite/pkg/models"
)

const (
	fenceChar    = '`'
	minFenceSize = 3
	filePrefix   = "file:"
)

var (
	thinkRe        = regexp.MustCompile(`(?s)<think>.*?</think>`)
	leadingThinkRe = regexp.MustCompile(`^\s*<think>(?s:.*?)</think>`)
)

// Parse scans markdown for fenced code regions and returns one candidate per
// terminated fence, in document order. A fence left open at the end of the
// input is dropped rather than reported as an error.
//
// Line endings are normalized first, so candidate bodies only contain "\n".
func Parse(markdown string) []models.CodeCandidate {
	text := strings.ReplaceAll(markdown, "\r\n", "\n")
	lines := strings.SplitAfter(text, "\n")

	var (
		out  []models.CodeCandidate
		open bool
		size int
		cur  models.CodeCandidate
		body strings.Builder
	)

	for _, raw := range lines {
		line := strings.TrimSuffix(raw, "\n")
		if !open {
			n, info, ok := openingFence(line)
			if !ok {
				continue
			}
			open, size = true, n
			cur = infoHints(info)
			body.Reset()
			continue
		}
		if closingFence(line, size) {
			cur.Body = body.String()
			out = append(out, cur)
			open = false
			continue
		}
		body.WriteString(line)
		body.WriteByte('\n')
	}
	return out
}

// StripThinking removes every <think>...</think> region and trims the
// remaining text. It is meant for prose; use TrimReasoning before Parse.
func StripThinking(text string) string {
	return strings.TrimSpace(thinkRe.ReplaceAllString(text, ""))
}

// TrimReasoning drops a <think>...</think> preamble that reasoning models put
// before their answer. Text after the preamble is returned untouched, so think
// tags quoted inside code blocks survive.
func TrimReasoning(text string) string {
	return leadingThinkRe.ReplaceAllString(text, "")
}

// openingFence reports whether line opens a fence, returning the marker
// length and the info string that follows it.
func openingFence(line string) (int, string, bool) {
	trimmed := strings.TrimLeft(line, " \t")
	n := countFence(trimmed)
	if n < minFenceSize {
		return 0, "", false
	}
	info := trimmed[n:]
	// a backtick inside the info string means this is inline code, not a fence
	if strings.ContainsRune(info, fenceChar) {
		return 0, "", false
	}
	return n, strings.TrimSpace(info), true
}

func closingFence(line string, size int) bool {
	trimmed := strings.TrimSpace(line)
	n := countFence(trimmed)
	return n >= size && n == len(trimmed)
}

func countFence(s string) int {
	n := 0
	for n < len(s) && s[n] == fenceChar {
		n++
	}
	return n
}

// infoHints interprets the text after an opening marker.
func infoHints(info string) models.CodeCandidate {
	switch {
	case strings.HasPrefix(info, filePrefix):
		return models.CodeCandidate{FilenameHint: strings.TrimSpace(info[len(filePrefix):])}
	case info != "" && !strings.ContainsAny(info, " \t"):
		return models.CodeCandidate{LanguageHint: strings.ToLower(info)}
	default:
		return models.CodeCandidate{}
	}
}
