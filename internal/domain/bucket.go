package domain

// DisplayMode selects how a bucket's findings are presented downstream.
type DisplayMode string

const (
	DisplaySummary DisplayMode = "summary"
	DisplayTable   DisplayMode = "table"
	DisplayList    DisplayMode = "list"
)

// ValidDisplayMode reports whether value belongs to the closed mode set.
func ValidDisplayMode(value string) bool {
	switch DisplayMode(value) {
	case DisplaySummary, DisplayTable, DisplayList:
		return true
	}
	return false
}

// FindingsColumn describes one column of a custom agent's findings table.
// Key is the slugified JSON key derived from Name.
type FindingsColumn struct {
	Name        string `yaml:"name" json:"name"`
	Key         string `yaml:"-" json:"key"`
	Description string `yaml:"description" json:"description"`
}

// RiskBucket is a named risk dimension with its own threshold. The
// Instructions payload is forwarded to the reasoner verbatim and never
// interpreted locally.
type RiskBucket struct {
	ID               string
	DisplayName      string
	Description      string
	Instructions     string
	DefaultThreshold RiskLevel

	// Optional buckets may legitimately be absent from an assessment,
	// e.g. intent when no PR metadata exists.
	Optional bool

	// Custom marks user-defined buckets loaded from agent files.
	Custom  bool
	Display DisplayMode
	Icon    string
	Columns []FindingsColumn
}
