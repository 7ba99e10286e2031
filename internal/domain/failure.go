package domain

// TestFailure represents a failed execution
type TestFailure struct {
	Class       string `json:"class"`
	Method      string `json:"method"`
	DisplayName string `json:"display_name"`
	Variant     int    `json:"variant"`
	Source      string `json:"source,omitempty"`
	Message     string `json:"message"`
	Output      string `json:"output,omitempty"`
	Resolved    bool   `json:"resolved,omitempty"` // Track if the failure is marked as resolved
}
