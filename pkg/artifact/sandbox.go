package artifact

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/andrew/plandex-lite/pkg/models"
)

// leadingEscape matches a leading run of dot segments and separators such as
// "../../", "./" or "/".
var leadingEscape = regexp.MustCompile(`^(\.*/)+`)

// PathEscapeError reports a filename that would land outside the project root.
type PathEscapeError struct {
	Root string
	Name string
}

func (e *PathEscapeError) Error() string {
	return fmt.Sprintf("path %q escapes project root %s", e.Name, e.Root)
}

// Sanitize normalizes a relative filename before it is joined onto a root:
// backslashes become slashes, surrounding whitespace is trimmed and leading
// parent/root references are stripped. An empty result is replaced by
// snippet_<ordinal>.txt.
func Sanitize(name string, ordinal int) string {
	clean := strings.ReplaceAll(strings.TrimSpace(name), `\`, "/")
	clean = strings.TrimSpace(leadingEscape.ReplaceAllString(clean, ""))
	if clean == "" || clean == "." || clean == ".." {
		return SnippetName(ordinal, fallbackExt)
	}
	return clean
}

// Sandbox returns the absolute path for name under root. Names that still
// escape the root after sanitizing (for example "src/../../x"), or that reach
// outside it through a symlink, fail with *PathEscapeError.
func Sandbox(root, name string, ordinal int) (string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolve project root %s: %w", root, err)
	}
	rel := Sanitize(name, ordinal)
	target := filepath.Join(absRoot, filepath.FromSlash(rel))
	if !within(absRoot, target) {
		return "", &PathEscapeError{Root: absRoot, Name: name}
	}

	realRoot, err := realPath(absRoot)
	if err != nil {
		return "", fmt.Errorf("resolve project root %s: %w", absRoot, err)
	}
	realTarget, err := realPath(target)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", target, err)
	}
	if !within(realRoot, realTarget) {
		return "", &PathEscapeError{Root: absRoot, Name: name}
	}
	return target, nil
}

// PlaceAll sandboxes every artifact under root. It fails on the first escaping
// name, before anything is written.
func PlaceAll(root string, arts []models.ResolvedArtifact) ([]models.PlacedArtifact, error) {
	out := make([]models.PlacedArtifact, 0, len(arts))
	for i, a := range arts {
		p, err := Sandbox(root, a.Filename, i+1)
		if err != nil {
			return nil, err
		}
		out = append(out, models.PlacedArtifact{Path: p, Content: a.Content})
	}
	return out, nil
}

// within reports whether child is strictly below parent.
func within(parent, child string) bool {
	rel, err := filepath.Rel(filepath.Clean(parent), filepath.Clean(child))
	if err != nil || rel == "." {
		return false
	}
	rel = filepath.ToSlash(rel)
	return rel != ".." && !strings.HasPrefix(rel, "../")
}

// maxLinkHops bounds how many dangling symlinks realPath follows by hand.
const maxLinkHops = 40

// realPath resolves symlinks in the deepest existing ancestor of p and
// re-appends the part that does not exist yet. A dangling symlink is followed
// through its link text, so a link pointing at a missing path outside the
// root still resolves outside it.
func realPath(p string) (string, error) {
	for hops := 0; ; hops++ {
		existing, rest, err := deepestExisting(p)
		if err != nil {
			return "", err
		}
		resolved, err := filepath.EvalSymlinks(existing)
		if err == nil {
			return filepath.Join(append([]string{resolved}, rest...)...), nil
		}
		if !errors.Is(err, fs.ErrNotExist) || hops >= maxLinkHops {
			return "", err
		}
		// every ancestor of existing resolved, so existing itself is the dangling link
		target, linkErr := os.Readlink(existing)
		if linkErr != nil {
			return "", err
		}
		if !filepath.IsAbs(target) {
			dir, dirErr := filepath.EvalSymlinks(filepath.Dir(existing))
			if dirErr != nil {
				return "", dirErr
			}
			target = filepath.Join(dir, target)
		}
		p = filepath.Join(append([]string{target}, rest...)...)
	}
}

// deepestExisting splits p into its deepest ancestor that exists (without
// following a final symlink) and the missing components below it.
func deepestExisting(p string) (string, []string, error) {
	existing := filepath.Clean(p)
	var rest []string
	for {
		_, err := os.Lstat(existing)
		if err == nil {
			return existing, rest, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", nil, err
		}
		parent := filepath.Dir(existing)
		if parent == existing {
			return existing, rest, nil
		}
		rest = append([]string{filepath.Base(existing)}, rest...)
		existing = parent
	}
}
