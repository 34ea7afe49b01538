package pipeline

import (
	"fmt"

	"github.com/andrew/plandex-lite/pkg/models"
)

// Stage is one state of the pipeline state machine.
type Stage int

const (
	StagePlanner Stage = iota
	StageArchitect
	StageCoder
	StageReviewer
	StageSummarizer
	StageDone
)

// Stages lists the stages that call the backend, in execution order.
func Stages() []Stage {
	return []Stage{StagePlanner, StageArchitect, StageCoder, StageReviewer, StageSummarizer}
}

// Next is the transition function: each stage advances to exactly one
// successor and StageDone is terminal.
func Next(s Stage) Stage {
	if s < StagePlanner || s >= StageDone {
		return StageDone
	}
	return s + 1
}

func (s Stage) String() string {
	if s == StageDone {
		return "done"
	}
	if r := s.Role(); r != "" {
		return string(r)
	}
	return fmt.Sprintf("Stage(%d)", int(s))
}

// Role returns the persona that runs the stage.
func (s Stage) Role() models.RoleName {
	switch s {
	case StagePlanner:
		return models.RolePlanner
	case StageArchitect:
		return models.RoleArchitect
	case StageCoder:
		return models.RoleCoder
	case StageReviewer:
		return models.RoleReviewer
	case StageSummarizer:
		return models.RoleSummarizer
	}
	return ""
}

// Placeholder is the text recorded for the stage when the backend returns nothing.
func (s Stage) Placeholder() string {
	switch s {
	case StagePlanner:
		return "No plan returned."
	case StageArchitect:
		return "No architecture returned."
	case StageCoder:
		return "No coder output."
	case StageReviewer:
		return "No review."
	case StageSummarizer:
		return "No summary."
	}
	return ""
}

const (
	architectSuffix = "Make a folder/file layout and list the primary files needed."
	coderSuffix     = "Now implement the code required. Produce runnable TypeScript/Node code. Use triple-backtick blocks with a filename hint as described."
)

// Prompt builds the user prompt for the stage from the outputs recorded so far.
func (s Stage) Prompt(r *Run) string {
	switch s {
	case StagePlanner:
		return r.Request
	case StageArchitect:
		return r.Output(StagePlanner) + "\n\n" + architectSuffix
	case StageCoder:
		return r.Output(StageArchitect) + "\n\n" + coderSuffix
	case StageReviewer:
		return fmt.Sprintf("User request: %s\n\nArchitecture:\n%s\n\nCoder output:\n%s",
			r.Request, r.Output(StageArchitect), r.Output(StageCoder))
	case StageSummarizer:
		return r.Output(StagePlanner) + "\n\n" + r.Output(StageArchitect) + "\n\n" + r.Output(StageReviewer)
	}
	return ""
}
