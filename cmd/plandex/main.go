package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/andrew/plandex-lite/pkg/artifact"
	"github.com/andrew/plandex-lite/pkg/config"
	"github.com/andrew/plandex-lite/pkg/llm"
	"github.com/andrew/plandex-lite/pkg/logging"
	"github.com/andrew/plandex-lite/pkg/pipeline"
	"github.com/andrew/plandex-lite/pkg/report"
)

const usage = `plandex "<what you want the project to do>"`

var (
	boldGreen  = color.New(color.FgGreen, color.Bold).SprintFunc()
	boldCyan   = color.New(color.FgCyan, color.Bold).SprintFunc()
	boldYellow = color.New(color.FgYellow, color.Bold).SprintFunc()
	boldRed    = color.New(color.FgRed, color.Bold).SprintFunc()
)

var stageTitles = map[pipeline.Stage]string{
	pipeline.StagePlanner:    "📝 Plan",
	pipeline.StageArchitect:  "🏗 Architecture",
	pipeline.StageCoder:      "💻 Coder output (raw)",
	pipeline.StageReviewer:   "🔍 Reviewer",
	pipeline.StageSummarizer: "📌 Summary & Next Steps",
}

type flags struct {
	configPath string
	model      string
	endpoint   string
	transport  string
	outDir     string
	timeout    time.Duration
	dryRun     bool
	pdf        bool
	chrome     string
	render     bool
	verbose    bool
}

func newRootCmd() *cobra.Command {
	var f flags
	cmd := &cobra.Command{
		Use:   usage,
		Short: "Plan, design, code, review and summarize a project with a local model",
		Long: `plandex sends your request through five roles (planner, architect, coder,
reviewer, summarizer) on an Ollama-compatible backend, saves the code blocks
the coder produces under a folder named after the request, and writes a
REPORT.md next to them.`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args, f)
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.configPath, "config", "", "YAML config file (default ./"+config.DefaultFile+" if present)")
	fl.StringVar(&f.model, "model", "", "model name")
	fl.StringVar(&f.endpoint, "endpoint", "", "chat endpoint URL")
	fl.StringVar(&f.transport, "transport", "", "backend transport: http or sdk")
	fl.StringVar(&f.outDir, "out", "", "directory under which the project folder is created")
	fl.DurationVar(&f.timeout, "timeout", 0, "per-request timeout (0 waits forever)")
	fl.BoolVar(&f.dryRun, "dry-run", false, "report the files that would be written without writing them")
	fl.BoolVar(&f.pdf, "pdf", false, "also render REPORT.pdf with headless Chrome")
	fl.StringVar(&f.chrome, "chrome", "", "Chrome/Chromium executable used by --pdf")
	fl.BoolVar(&f.render, "render", false, "render stage output as formatted markdown")
	fl.BoolVarP(&f.verbose, "verbose", "v", false, "enable debug logging")
	return cmd
}

func loadConfig(cmd *cobra.Command, f flags) (config.Config, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return config.Config{}, err
	}
	changed := cmd.Flags().Changed
	if changed("model") {
		cfg.Model = f.model
	}
	if changed("endpoint") {
		cfg.Endpoint = f.endpoint
	}
	if changed("transport") {
		cfg.Transport = f.transport
	}
	if changed("out") {
		cfg.OutDir = f.outDir
	}
	if changed("timeout") {
		cfg.Timeout = f.timeout
	}
	if changed("dry-run") {
		cfg.DryRun = f.dryRun
	}
	if changed("pdf") {
		cfg.PDF = f.pdf
	}
	if changed("chrome") {
		cfg.Chrome = f.chrome
	}
	if changed("render") {
		cfg.Render = f.render
	}
	if changed("verbose") {
		cfg.Verbose = f.verbose
	}
	return cfg, cfg.Validate()
}

func run(cmd *cobra.Command, args []string, f flags) error {
	request := strings.TrimSpace(strings.Join(args, " "))
	if request == "" {
		return fmt.Errorf("usage: %s", usage)
	}

	cfg, err := loadConfig(cmd, f)
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.Verbose)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := llm.NewClient(cfg.ClientOptions(), logger)
	if err != nil {
		return err
	}
	defer client.Close()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s %s\n", boldGreen("📌 User Prompt:"), request)
	fmt.Fprintf(out, "Using model: %s via %s (%s)\n", boldCyan(cfg.Model), cfg.Endpoint, cfg.Transport)

	printer := newStagePrinter(cfg.Render)
	orch := pipeline.New(client,
		pipeline.WithBaseDir(cfg.OutDir),
		pipeline.WithDryRun(cfg.DryRun),
		pipeline.WithLogger(logger),
		pipeline.WithObserver(func(stage pipeline.Stage, output string, ok bool) {
			title := stageTitles[stage]
			if !ok {
				fmt.Fprintf(out, "\n%s\n", boldYellow("⚠️ "+title+": backend returned nothing"))
			}
			fmt.Fprintf(out, "\n%s\n%s\n", boldCyan(title+":"), printer(output))
		}),
	)

	result, err := orch.Execute(ctx, request)
	if err != nil {
		return describe(err)
	}

	printFiles(out, result, cfg.DryRun)

	if cfg.PDF && !cfg.DryRun {
		pdfPath, err := report.RenderPDF(ctx, result.ReportPath, report.PDFOptions{Bin: cfg.Chrome})
		if err != nil {
			logger.Warn("failed to generate PDF", zap.Error(err))
		} else {
			fmt.Fprintf(out, "📄 PDF report saved: %s\n", pdfPath)
		}
	}

	fmt.Fprintln(out, boldGreen("\n✅ Plandex-lite finished."))
	return nil
}

func printFiles(out io.Writer, result *pipeline.Run, dryRun bool) {
	if len(result.Written) == 0 {
		fmt.Fprintln(out, boldYellow("\n⚠️ No code blocks found in coder output."))
	} else {
		verb := "💾 Saved files"
		if dryRun {
			verb = "(dry-run) 💾 Would save files"
		}
		fmt.Fprintf(out, "\n%s under %q:\n", boldGreen(verb), result.Root)
		for _, f := range result.Written {
			fmt.Fprintf(out, " - %s\n", f.AbsolutePath)
		}
	}
	if dryRun {
		fmt.Fprintf(out, "(dry-run) 📝 Would save markdown report: %s\n", result.ReportPath)
		return
	}
	fmt.Fprintf(out, "\n📝 Markdown report saved: %s\n", result.ReportPath)
}

// newStagePrinter returns the formatter for stage output: glamour-rendered
// markdown when render is set and a renderer can be built, raw text otherwise.
func newStagePrinter(render bool) func(string) string {
	raw := func(s string) string { return s }
	if !render {
		return raw
	}
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
	if err != nil {
		return raw
	}
	return func(s string) string {
		rendered, err := r.Render(s)
		if err != nil {
			return s
		}
		return rendered
	}
}

// describe adds user-facing context to the errors that abort a run.
func describe(err error) error {
	var escape *artifact.PathEscapeError
	if errors.As(err, &escape) {
		return fmt.Errorf("refusing to write outside the project folder: %w", err)
	}
	var werr *artifact.WriteError
	if errors.As(err, &werr) {
		return fmt.Errorf("could not save generated files: %w", err)
	}
	return err
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", boldRed("❌"), err)
		os.Exit(1)
	}
}
