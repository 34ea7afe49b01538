package report

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// A4 in inches
var (
	a4Width  = 8.27
	a4Height = 11.69
)

// PDFOptions configures the headless browser used for rendering.
type PDFOptions struct {
	// Bin is the Chrome/Chromium executable; empty lets rod find or download one.
	Bin string
	// ControlURL connects to an already running browser instead of launching one.
	ControlURL string
}

// PDFPath returns the PDF path that sits next to a markdown file.
func PDFPath(markdownPath string) string {
	return strings.TrimSuffix(markdownPath, ".md") + ".pdf"
}

// RenderPDF converts the markdown file at markdownPath into an A4 PDF next to
// it and returns the PDF path.
func RenderPDF(ctx context.Context, markdownPath string, opts PDFOptions) (string, error) {
	source, err := os.ReadFile(markdownPath)
	if err != nil {
		return "", fmt.Errorf("read report: %w", err)
	}
	html, err := ToHTML(string(source))
	if err != nil {
		return "", err
	}

	controlURL := opts.ControlURL
	if controlURL == "" {
		l := launcher.New().Headless(true)
		if opts.Bin != "" {
			l = l.Bin(opts.Bin)
		}
		controlURL, err = l.Launch()
		if err != nil {
			return "", fmt.Errorf("launch chrome: %w", err)
		}
		defer l.Cleanup()
	}

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return "", fmt.Errorf("connect to chrome: %w", err)
	}
	defer browser.Close()

	pg, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return "", fmt.Errorf("open page: %w", err)
	}
	if err := pg.SetDocumentContent(html); err != nil {
		return "", fmt.Errorf("set content: %w", err)
	}
	stream, err := pg.PDF(&proto.PagePrintToPDF{
		PrintBackground: true,
		PaperWidth:      &a4Width,
		PaperHeight:     &a4Height,
	})
	if err != nil {
		return "", fmt.Errorf("print pdf: %w", err)
	}
	data, err := io.ReadAll(stream)
	if err != nil {
		return "", fmt.Errorf("read pdf stream: %w", err)
	}

	out := PDFPath(markdownPath)
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return "", fmt.Errorf("write pdf: %w", err)
	}
	return out, nil
}
