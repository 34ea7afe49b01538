package report

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var md = goldmark.New(goldmark.WithExtensions(extension.GFM))

var page = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
  <head>
    <meta charset="utf-8">
    <style>
      body { font-family: Arial, sans-serif; padding: 20px; }
      pre { background: #f4f4f4; padding: 10px; border-radius: 6px; }
      code { font-family: monospace; color: #c7254e; }
      h1,h2,h3 { color: #333; }
    </style>
  </head>
  <body>{{.}}</body>
</html>
`))

// ToHTML converts a markdown report into a standalone HTML page.
func ToHTML(source string) (string, error) {
	var body bytes.Buffer
	if err := md.Convert([]byte(source), &body); err != nil {
		return "", fmt.Errorf("convert markdown: %w", err)
	}
	var out bytes.Buffer
	// goldmark escapes raw HTML by default, so its output is trusted here
	if err := page.Execute(&out, template.HTML(body.String())); err != nil {
		return "", fmt.Errorf("render html: %w", err)
	}
	return out.String(), nil
}
