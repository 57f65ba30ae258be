// Package resultboard defines the core domain types shared by the catalog,
// the announcement pipeline and the HTTP layer. It has no external dependencies.
package resultboard

// Program is one competition item, e.g. "Dance Solo" in the "Senior" section.
type Program struct {
	Key         string   `json:"key"`
	ProgramName string   `json:"program_name"`
	Section     string   `json:"section"`
	Read        bool     `json:"read"`
	Results     []Result `json:"results"`
}

// Result is a single ranked placing within a program.
type Result struct {
	Position int     `json:"position"`
	Grade    string  `json:"grade"`
	Name     string  `json:"name"`
	Team     string  `json:"team"`
	ChestNo  string  `json:"chest_no"`
	PhotoURL *string `json:"photo_url"`
}

type MessageType string

const (
	MessageDisplayProgram MessageType = "DISPLAY_PROGRAM"
	MessageDisplayResult  MessageType = "DISPLAY_RESULT"
)
