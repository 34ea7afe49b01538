// Package pipeline runs the planner → architect → coder → reviewer →
// summarizer sequence and materializes the coder's files.
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/andrew/plandex-lite/pkg/artifact"
	"github.com/andrew/plandex-lite/pkg/llm"
	"github.com/andrew/plandex-lite/pkg/markdown"
	"github.com/andrew/plandex-lite/pkg/models"
	"github.com/andrew/plandex-lite/pkg/report"
)

// ReportName is the file written at the project root once all stages ran.
const ReportName = "REPORT.md"

// Observer is notified after every stage with its recorded output. ok is
// false when the backend returned nothing and the placeholder was used.
type Observer func(stage Stage, output string, ok bool)

// Run is the state of one pipeline execution.
type Run struct {
	ID      string
	Request string
	Root    string
	Stage   Stage
	// Failed lists the stages whose backend call returned nothing.
	Failed     []Stage
	Candidates []models.CodeCandidate
	Artifacts  []models.ResolvedArtifact
	Written    []models.WrittenFile
	ReportPath string

	outputs map[Stage]string
}

// Output returns the text recorded for stage, or "" if it has not run.
func (r *Run) Output(s Stage) string {
	return r.outputs[s]
}

// Done reports whether every stage has executed.
func (r *Run) Done() bool {
	return r.Stage == StageDone
}

// Orchestrator sequences the role calls against a single backend.
type Orchestrator struct {
	client   llm.Client
	baseDir  string
	dryRun   bool
	logger   *zap.Logger
	observer Observer
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithBaseDir sets the directory under which project roots are created.
func WithBaseDir(dir string) Option {
	return func(o *Orchestrator) { o.baseDir = dir }
}

// WithDryRun reports file writes instead of performing them.
func WithDryRun(dryRun bool) Option {
	return func(o *Orchestrator) { o.dryRun = dryRun }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithObserver registers a callback invoked after each stage.
func WithObserver(fn Observer) Option {
	return func(o *Orchestrator) { o.observer = fn }
}

// New creates an orchestrator that talks to client.
func New(client llm.Client, opts ...Option) *Orchestrator {
	o := &Orchestrator{client: client, baseDir: ".", logger: zap.NewNop()}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Start prepares a run for request without calling the backend.
func (o *Orchestrator) Start(request string) (*Run, error) {
	root, err := artifact.ProjectRoot(o.baseDir, request)
	if err != nil {
		return nil, fmt.Errorf("project root: %w", err)
	}
	return &Run{
		ID:      uuid.NewString(),
		Request: request,
		Root:    root,
		Stage:   StagePlanner,
		outputs: make(map[Stage]string),
	}, nil
}

// Execute runs every stage for request and writes the report. Backend
// failures are replaced by placeholders; sandbox and filesystem failures abort.
func (o *Orchestrator) Execute(ctx context.Context, request string) (*Run, error) {
	r, err := o.Start(request)
	if err != nil {
		return nil, err
	}
	o.logger.Info("pipeline started", zap.String("run", r.ID), zap.String("root", r.Root), zap.Bool("dry_run", o.dryRun))

	for !r.Done() {
		if err := o.Step(ctx, r); err != nil {
			return r, err
		}
	}
	if err := o.writeReport(r); err != nil {
		return r, err
	}
	o.logger.Info("pipeline finished", zap.String("run", r.ID), zap.Int("files", len(r.Written)), zap.Int("failed_stages", len(r.Failed)))
	return r, nil
}

// Step executes the current stage of r and advances it. Only the coder stage
// can fail, when its files cannot be placed or written.
func (o *Orchestrator) Step(ctx context.Context, r *Run) error {
	stage := r.Stage
	if stage == StageDone {
		return nil
	}

	log := o.logger.With(zap.String("run", r.ID), zap.Stringer("stage", stage))
	log.Debug("calling backend")
	res, ok := llm.Ask(ctx, o.client, RolePrompt(stage.Role()), stage.Prompt(r))
	output := res.Content
	if !ok {
		output = stage.Placeholder()
		r.Failed = append(r.Failed, stage)
		log.Warn("backend returned nothing, using placeholder", zap.String("placeholder", output))
	} else {
		log.Debug("stage completed", zap.String("model", res.ModelID), zap.Int("chars", len(output)))
	}
	r.outputs[stage] = output
	if o.observer != nil {
		o.observer(stage, output, ok)
	}

	if stage == StageCoder {
		if err := o.materialize(r, output, log); err != nil {
			return err
		}
	}
	r.Stage = Next(stage)
	return nil
}

// materialize extracts the coder's code blocks and writes them under the
// project root. Every path is sandboxed before the first write.
func (o *Orchestrator) materialize(r *Run, coderOutput string, log *zap.Logger) error {
	r.Candidates = markdown.Parse(markdown.TrimReasoning(coderOutput))
	if len(r.Candidates) == 0 {
		log.Warn("no code blocks found in coder output")
		return nil
	}
	r.Artifacts = artifact.ResolveAll(r.Candidates)

	placed, err := artifact.PlaceAll(r.Root, r.Artifacts)
	if err != nil {
		return err
	}
	written, err := o.writer(r).Write(placed)
	r.Written = written
	if err != nil {
		return err
	}
	log.Info("code blocks saved", zap.Int("files", len(written)))
	return nil
}

func (o *Orchestrator) writeReport(r *Run) error {
	doc := report.Assemble(report.Input{
		RunID:        r.ID,
		Request:      r.Request,
		Plan:         r.Output(StagePlanner),
		Architecture: r.Output(StageArchitect),
		Artifacts:    r.Artifacts,
		Review:       r.Output(StageReviewer),
		Summary:      r.Output(StageSummarizer),
	})
	path := filepath.Join(r.Root, ReportName)
	if _, err := o.writer(r).Write([]models.PlacedArtifact{{Path: path, Content: doc}}); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	r.ReportPath = path
	return nil
}

func (o *Orchestrator) writer(r *Run) *artifact.Writer {
	return artifact.NewWriter(r.Root, artifact.WithDryRun(o.dryRun), artifact.WithLogger(o.logger))
}

// DryRun reports whether the orchestrator only simulates writes.
func (o *Orchestrator) DryRun() bool { return o.dryRun }
