package artifact

import (
	"path/filepath"
	"regexp"
	"strings"
)

const (
	// DefaultProjectName is used when a request has no usable characters
	DefaultProjectName = "plandex-project"
	maxProjectName     = 30
)

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// ProjectName derives a directory name from a free-text request: lower-cased,
// runs of other characters collapsed to "-", trimmed and cut to 30 characters.
func ProjectName(request string) string {
	name := nonAlnum.ReplaceAllString(strings.ToLower(request), "-")
	name = strings.Trim(name, "-")
	if len(name) > maxProjectName {
		name = name[:maxProjectName]
	}
	if name == "" {
		return DefaultProjectName
	}
	return name
}

// ProjectRoot returns the absolute project directory for request under baseDir.
func ProjectRoot(baseDir, request string) (string, error) {
	return filepath.Abs(filepath.Join(baseDir, ProjectName(request)))
}
