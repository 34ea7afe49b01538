package models

// CodeCandidate is one fenced code region found in a markdown document.
// Empty hints mean the info string did not provide them.
type CodeCandidate struct {
	FilenameHint string `json:"filename_hint,omitempty"`
	LanguageHint string `json:"language_hint,omitempty"`
	Body         string `json:"body"`
}

// ResolvedArtifact is a candidate with its final relative filename
type ResolvedArtifact struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
}

// PlacedArtifact is an artifact whose path has been sandboxed under a project root
type PlacedArtifact struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// WrittenFile records a file persisted by the writer, or one that would have
// been persisted when DryRun is set
type WrittenFile struct {
	AbsolutePath string `json:"absolute_path"`
	DryRun       bool   `json:"dry_run,omitempty"`
}
