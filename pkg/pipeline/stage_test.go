package pipeline

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/andrew/plandex-lite/pkg/models"
)

func TestNextWalksStagesInOrder(t *testing.T) {
	var seen []Stage
	for s := StagePlanner; s != StageDone; s = Next(s) {
		seen = append(seen, s)
	}
	assert.Equal(t, Stages(), seen)
	assert.Equal(t, StageDone, Next(StageDone))
	assert.Equal(t, StageDone, Next(Stage(-1)))
}

func TestStageRolesAndPlaceholders(t *testing.T) {
	roles := make([]models.RoleName, 0, len(Stages()))
	for _, s := range Stages() {
		roles = append(roles, s.Role())
		assert.NotEmpty(t, s.Placeholder(), s.String())
		assert.NotEmpty(t, RolePrompt(s.Role()), s.String())
	}
	assert.Equal(t, models.AllRoles(), roles)
	assert.Equal(t, "No plan returned.", StagePlanner.Placeholder())
	assert.Equal(t, "No coder output.", StageCoder.Placeholder())
	assert.Equal(t, "done", StageDone.String())
	assert.Empty(t, StageDone.Role())
}

func TestStagePrompts(t *testing.T) {
	r := &Run{Request: "todo app", outputs: map[Stage]string{
		StagePlanner:   "PLAN",
		StageArchitect: "ARCH",
		StageCoder:     "CODE",
		StageReviewer:  "REVIEW",
	}}

	assert.Equal(t, "todo app", StagePlanner.Prompt(r))
	assert.True(t, strings.HasPrefix(StageArchitect.Prompt(r), "PLAN\n\nMake a folder/file layout"))
	assert.True(t, strings.HasPrefix(StageCoder.Prompt(r), "ARCH\n\nNow implement the code required."))
	assert.Equal(t, "User request: todo app\n\nArchitecture:\nARCH\n\nCoder output:\nCODE", StageReviewer.Prompt(r))
	assert.Equal(t, "PLAN\n\nARCH\n\nREVIEW", StageSummarizer.Prompt(r))
}

func TestRoleNameValid(t *testing.T) {
	assert.True(t, models.RoleCoder.Valid())
	assert.False(t, models.RoleName("janitor").Valid())
}
