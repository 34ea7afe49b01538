package markdown

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrew/plandex-lite/pkg/models"
)

func TestParseFileHint(t *testing.T) {
	got := Parse("```file:src/a.ts\nconsole.log(1)\n```")
	require.Len(t, got, 1)
	assert.Equal(t, models.CodeCandidate{FilenameHint: "src/a.ts", Body: "console.log(1)\n"}, got[0])
}

func TestParseLanguageHint(t *testing.T) {
	got := Parse("Here you go:\n\n```PY\nprint(1)\n```\n")
	require.Len(t, got, 1)
	assert.Equal(t, "py", got[0].LanguageHint)
	assert.Empty(t, got[0].FilenameHint)
	assert.Equal(t, "print(1)\n", got[0].Body)
}

func TestParseNoHints(t *testing.T) {
	for _, in := range []string{"```\nplain\n```", "```ts extra words\nplain\n```"} {
		got := Parse(in)
		require.Len(t, got, 1, in)
		assert.Equal(t, models.CodeCandidate{Body: "plain\n"}, got[0], in)
	}
}

func TestParseKeepsDocumentOrder(t *testing.T) {
	md := strings.Join([]string{
		"# Code",
		"```file:a.go",
		"package a",
		"```",
		"some prose",
		"```js",
		"let b = 1",
		"```",
		"  ```",
		"  indented",
		"  ```",
	}, "\n")

	got := Parse(md)
	require.Len(t, got, 3)
	assert.Equal(t, "a.go", got[0].FilenameHint)
	assert.Equal(t, "js", got[1].LanguageHint)
	assert.Equal(t, "  indented\n", got[2].Body)
}

func TestParseDropsUnterminatedFence(t *testing.T) {
	got := Parse("```py\nok\n```\n\n```ts\nconst broken = true\n")
	require.Len(t, got, 1)
	assert.Equal(t, "ok\n", got[0].Body)

	assert.Empty(t, Parse("```file:x.ts\nnever closed"))
	assert.Empty(t, Parse(""))
}

func TestParseNormalizesCRLF(t *testing.T) {
	got := Parse("```sh\r\necho hi\r\necho bye\r\n```\r\n")
	require.Len(t, got, 1)
	assert.Equal(t, "echo hi\necho bye\n", got[0].Body)
	assert.NotContains(t, got[0].Body, "\r")
}

func TestParseLongerFenceContainsShorterOne(t *testing.T) {
	md := "````file:README.md\n# Usage\n```bash\nmake run\n```\n````\n"
	got := Parse(md)
	require.Len(t, got, 1)
	assert.Equal(t, "README.md", got[0].FilenameHint)
	assert.Equal(t, "# Usage\n```bash\nmake run\n```\n", got[0].Body)
}

func TestParseIgnoresInlineCode(t *testing.T) {
	got := Parse("```inline``` code in prose\n```txt\nreal\n```")
	require.Len(t, got, 1)
	assert.Equal(t, "real\n", got[0].Body)
}

func TestParseEmptyBodyAndBlankFilename(t *testing.T) {
	got := Parse("```file:   \n```")
	require.Len(t, got, 1)
	assert.Empty(t, got[0].FilenameHint)
	assert.Empty(t, got[0].Body)
}

func TestParseIsRestartable(t *testing.T) {
	md := "```ts\na\n```\n```\nb\n```"
	assert.Equal(t, Parse(md), Parse(md))
}

func TestStripThinking(t *testing.T) {
	in := "<think>\nlet me reason\n```ts\nnope\n```\n</think>\n\nFinal answer"
	assert.Equal(t, "Final answer", StripThinking(in))
	assert.Equal(t, "plain", StripThinking("  plain \n"))
}

func TestTrimReasoningOnlyDropsPreamble(t *testing.T) {
	in := "  <think>\n```ts\ndraft\n```\n</think>\n```file:x.ts\nfinal\n```\n"
	got := Parse(TrimReasoning(in))
	require.Len(t, got, 1)
	assert.Equal(t, "x.ts", got[0].FilenameHint)

	quoted := "```file:a.js\nconst open = '<think>';\n```\n```file:b.js\nb\n```\n```file:c.js\nconst close = '</think>';\n```\n"
	assert.Equal(t, quoted, TrimReasoning(quoted))
	got = Parse(TrimReasoning(quoted))
	require.Len(t, got, 3)
	assert.Equal(t, "const open = '<think>';\n", got[0].Body)
	assert.Equal(t, "const close = '</think>';\n", got[2].Body)
}
