// Package ports defines the interfaces between the application core and
// external adapters. The pipeline depends on these abstractions rather
// than on concrete HTTP clients, config files, or CLI frameworks.
package ports

import (
	"context"

	"github.com/doeshing/whatif-advisor/internal/domain"
)

// ConfigProvider loads the latest configuration from persistent storage.
// Implementations typically read from ~/.whatif-advisor/config.yaml.
type ConfigProvider interface {
	Load(context.Context) (domain.Config, error)
}

// CompletionRequest is one reasoner invocation: a system prompt carrying
// the schema and bucket instructions, and a user prompt carrying the
// What-If text plus contextual inputs.
type CompletionRequest struct {
	System string
	User   string
}

// Reasoner is the external natural-language analysis collaborator. The
// returned text is untrusted and must be structurally validated before use.
type Reasoner interface {
	Name() string
	Complete(context.Context, CompletionRequest) (string, error)
}

// ReasonerFactory builds reasoner instances for configured model definitions.
type ReasonerFactory interface {
	ForModel(domain.ModelDefinition) (Reasoner, error)
}

// Logger provides structured logging for the application layer.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, err error, fields map[string]interface{})
}
