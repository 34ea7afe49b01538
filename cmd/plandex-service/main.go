package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/andrew/plandex-lite/pkg/artifact"
	"github.com/andrew/plandex-lite/pkg/config"
	"github.com/andrew/plandex-lite/pkg/llm"
	"github.com/andrew/plandex-lite/pkg/logging"
	"github.com/andrew/plandex-lite/pkg/pipeline"
)

// RunRequest is the body accepted by POST /run
type RunRequest struct {
	Request string `json:"request"`
	DryRun  bool   `json:"dry_run,omitempty"`
}

// RunResponse describes a finished pipeline run
type RunResponse struct {
	RunID        string   `json:"run_id"`
	ProjectRoot  string   `json:"project_root"`
	Files        []string `json:"files"`
	Report       string   `json:"report"`
	FailedStages []string `json:"failed_stages,omitempty"`
	DryRun       bool     `json:"dry_run,omitempty"`
	ProcessingMs int64    `json:"processing_ms"`
}

func newRootCmd() *cobra.Command {
	var (
		port       int
		configPath string
		verbose    bool
	)
	cmd := &cobra.Command{
		Use:           "plandex-service",
		Short:         "Serve pipeline runs over HTTP",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), port, configPath, verbose)
		},
	}
	cmd.Flags().IntVar(&port, "port", 8080, "port to listen on")
	cmd.Flags().StringVar(&configPath, "config", "", "YAML config file")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	return cmd
}

func serve(ctx context.Context, port int, configPath string, verbose bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	logger, err := logging.New(verbose || cfg.Verbose)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := llm.NewClient(cfg.ClientOptions(), logger)
	if err != nil {
		return fmt.Errorf("initializing backend client: %w", err)
	}
	defer client.Close()

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: newHandler(client, cfg, logger),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting plandex service", zap.Int("port", port))
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for interrupt signal or a listener failure
	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("HTTP server error: %w", err)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", zap.Error(err))
	}
	return nil
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newHandler serves POST /run. Runs are executed one at a time; requests
// arriving during a run wait for it to finish.
func newHandler(client llm.Client, cfg config.Config, logger *zap.Logger) http.Handler {
	var mu sync.Mutex
	mux := http.NewServeMux()

	mux.HandleFunc("/run", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req RunRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if req.Request == "" {
			http.Error(w, "request is required", http.StatusBadRequest)
			return
		}

		mu.Lock()
		defer mu.Unlock()

		start := time.Now()
		dryRun := cfg.DryRun || req.DryRun
		orch := pipeline.New(client,
			pipeline.WithBaseDir(cfg.OutDir),
			pipeline.WithDryRun(dryRun),
			pipeline.WithLogger(logger),
		)
		run, err := orch.Execute(r.Context(), req.Request)
		if err != nil {
			status := http.StatusInternalServerError
			var escape *artifact.PathEscapeError
			if errors.As(err, &escape) {
				status = http.StatusUnprocessableEntity
			}
			logger.Warn("run failed", zap.String("request", req.Request), zap.Error(err))
			http.Error(w, fmt.Sprintf("Error running pipeline: %v", err), status)
			return
		}

		resp := RunResponse{
			RunID:        run.ID,
			ProjectRoot:  run.Root,
			Files:        make([]string, 0, len(run.Written)),
			Report:       run.ReportPath,
			DryRun:       dryRun,
			ProcessingMs: time.Since(start).Milliseconds(),
		}
		for _, f := range run.Written {
			resp.Files = append(resp.Files, f.AbsolutePath)
		}
		for _, s := range run.Failed {
			resp.FailedStages = append(resp.FailedStages, s.String())
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			logger.Error("encoding response", zap.Error(err))
		}
	})

	return mux
}
