package models

// Role represents the role of a message sender
type Role string

const (
	// RoleUser represents a message from the user
	RoleUser Role = "user"
	// RoleAssistant represents a message from the assistant
	RoleAssistant Role = "assistant"
	// RoleSystem represents a system message
	RoleSystem Role = "system"
)

// Message represents a chat message. Order matters when a slice of them is
// sent to the backend: the system message goes first, the user message second.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ChatResult is the outcome of one backend call. It is only meaningful when
// the accompanying ok flag returned by the client is true.
type ChatResult struct {
	ModelID string `json:"model"`
	Content string `json:"content"`
	Done    bool   `json:"done"`
}

// RoleName selects the persona (and system prompt) for one pipeline stage
type RoleName string

const (
	RolePlanner    RoleName = "planner"
	RoleArchitect  RoleName = "architect"
	RoleCoder      RoleName = "coder"
	RoleReviewer   RoleName = "reviewer"
	RoleSummarizer RoleName = "summarizer"
)

// AllRoles returns every role in pipeline order
func AllRoles() []RoleName {
	return []RoleName{RolePlanner, RoleArchitect, RoleCoder, RoleReviewer, RoleSummarizer}
}

// Valid reports whether r is one of the known roles
func (r RoleName) Valid() bool {
	for _, known := range AllRoles() {
		if r == known {
			return true
		}
	}
	return false
}
