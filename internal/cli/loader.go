package cli

import (
	_ "embed"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"gopkg.in/yaml.v3"

	"github.com/flaek-labs/flaek-go/internal/graph"
)

//go:embed flow_schema.cue
var flowSchemaCUE string

// LoadError represents an error that occurred while loading a flow document.
type LoadError struct {
	Code    string
	Message string
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// flowFile is the on-disk YAML shape of a flow document.
type flowFile struct {
	Name        string       `yaml:"name"`
	Description string       `yaml:"description"`
	Version     string       `yaml:"version"`
	Nodes       []graph.Node `yaml:"nodes"`
	Edges       []graph.Edge `yaml:"edges"`
}

// LoadFlow reads a flow document from path, validates it against the flow
// schema, and returns the graph it describes. Schema validation happens
// before any structural checks so a malformed document fails with a field
// level message instead of a compile error.
func LoadFlow(path string) (*graph.Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("flow file not found: %s", path)}
		}
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error reading flow file: %v", err)}
	}

	// Decode once into a generic document for schema validation and once
	// into the typed form the compiler consumes.
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &LoadError{Code: ErrCodeParseFailed, Message: fmt.Sprintf("parsing flow YAML: %v", err)}
	}
	if err := validateFlowSchema(raw); err != nil {
		return nil, err
	}

	var file flowFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, &LoadError{Code: ErrCodeParseFailed, Message: fmt.Sprintf("parsing flow YAML: %v", err)}
	}

	g := &graph.Graph{Nodes: file.Nodes, Edges: file.Edges}
	if file.Name != "" || file.Description != "" || file.Version != "" {
		g.Metadata = &graph.Metadata{
			Name:        file.Name,
			Description: file.Description,
			Version:     file.Version,
		}
	}
	return g, nil
}

// validateFlowSchema unifies the document with the embedded #Flow schema.
func validateFlowSchema(doc map[string]any) error {
	ctx := cuecontext.New()

	schemaVal := ctx.CompileString(flowSchemaCUE)
	if err := schemaVal.Err(); err != nil {
		return &LoadError{Code: ErrCodeSchemaFailed, Message: fmt.Sprintf("compiling flow schema: %v", err)}
	}
	schema := schemaVal.LookupPath(cue.ParsePath("#Flow"))
	if err := schema.Err(); err != nil {
		return &LoadError{Code: ErrCodeSchemaFailed, Message: fmt.Sprintf("looking up flow schema: %v", err)}
	}

	docVal := ctx.Encode(doc)
	if err := docVal.Err(); err != nil {
		return &LoadError{Code: ErrCodeSchemaFailed, Message: fmt.Sprintf("encoding flow document: %v", err)}
	}

	if err := schema.Unify(docVal).Validate(cue.Concrete(true)); err != nil {
		return &LoadError{
			Code:    ErrCodeSchemaFailed,
			Message: fmt.Sprintf("flow document does not match schema: %v", cueerrors.Sanitize(cueerrors.Promote(err, ""))),
		}
	}
	return nil
}

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric      = "E001" // Generic/unknown error
	ErrCodeNotFound     = "E002" // Path not found
	ErrCodeParseFailed  = "E003" // YAML parse error
	ErrCodeSchemaFailed = "E004" // Flow schema violation
	ErrCodeWriteFailed  = "E005" // File write error

	// Compilation and lint errors
	ErrCodeCompileFailed = "E101" // Graph validation or cycle detection failed
	ErrCodeLintFailed    = "E102" // Lint pass reported errors

	// Run errors
	ErrCodeContextFailed = "E110" // Context resolution failed
	ErrCodeWalletFailed  = "E111" // Keypair could not be loaded
	ErrCodeRunFailed     = "E112" // Execution failed
	ErrCodeConfigFailed  = "E113" // Network config could not be loaded
	ErrCodeStoreFailed   = "E114" // Job store error
)
