package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/andrew/plandex-lite/pkg/artifact"
	"github.com/andrew/plandex-lite/pkg/config"
	"github.com/andrew/plandex-lite/pkg/llm"
	"github.com/andrew/plandex-lite/pkg/logging"
	"github.com/andrew/plandex-lite/pkg/markdown"
	"github.com/andrew/plandex-lite/pkg/models"
	"github.com/andrew/plandex-lite/pkg/pipeline"
)

var (
	boldGreen = color.New(color.FgGreen, color.Bold).SprintFunc()
	boldCyan  = color.New(color.FgCyan, color.Bold).SprintFunc()
	faint     = color.New(color.Faint).SprintFunc()
)

func newRootCmd() *cobra.Command {
	var (
		configPath string
		role       string
		extract    bool
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:           "role-chat",
		Short:         "Talk to a single plandex role, one prompt at a time",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			r := models.RoleName(role)
			if !r.Valid() {
				return fmt.Errorf("unknown role %q (want one of %v)", role, models.AllRoles())
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			logger, err := logging.New(verbose || cfg.Verbose)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			client, err := llm.NewClient(cfg.ClientOptions(), logger)
			if err != nil {
				return err
			}
			defer client.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			fmt.Fprintln(cmd.OutOrStdout(), boldGreen("🦙 Plandex "+string(r)))
			fmt.Fprintf(cmd.OutOrStdout(), "Using model: %s\n", boldCyan(cfg.Model))
			fmt.Fprintln(cmd.OutOrStdout(), "Type your message and press Enter. Type 'exit' or press Ctrl+C to quit.")
			fmt.Fprintln(cmd.OutOrStdout())
			return chat(ctx, client, r, extract, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "YAML config file")
	cmd.Flags().StringVar(&role, "role", string(models.RolePlanner), "role to talk to")
	cmd.Flags().BoolVar(&extract, "extract", false, "list the files that would be extracted from each reply")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	return cmd
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// chat reads one prompt per line and sends each as its own single-turn
// request; the backend keeps no history between turns.
func chat(ctx context.Context, client llm.Client, role models.RoleName, extract bool, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	system := pipeline.RolePrompt(role)

	for {
		fmt.Fprint(out, boldGreen("You: "))
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if strings.EqualFold(input, "exit") {
			break
		}
		if input == "" {
			continue
		}

		fmt.Fprint(out, boldCyan("Assistant: "))
		res, ok := llm.Ask(ctx, client, system, input)
		if !ok {
			fmt.Fprintln(out, "(no response)")
			fmt.Fprintln(out, "\nMake sure Ollama is running with: ollama serve")
			continue
		}
		fmt.Fprintln(out, res.Content)

		if extract {
			for i, a := range artifact.ResolveAll(markdown.Parse(markdown.TrimReasoning(res.Content))) {
				fmt.Fprintf(out, "%s\n", faint(fmt.Sprintf("  [%d] %s (%d bytes)", i+1, a.Filename, len(a.Content))))
			}
		}
		fmt.Fprintln(out)
	}
	return scanner.Err()
}
