package manifest

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Manifest is the declarative description of one orchestration setup: the
// pipeline's stages, scoped context values, optional function overrides,
// and the initial input.
type Manifest struct {
	// Name identifies the pipeline in traces and logs.
	Name string `yaml:"name"`

	// Functions optionally refines registered callables, e.g. installing
	// defaults without touching code.
	Functions []FunctionDecl `yaml:"functions,omitempty"`

	// Context holds scoped values keyed by scope name.
	Context ContextDecl `yaml:"context,omitempty"`

	// Pipeline is the ordered stage list.
	Pipeline []StageDecl `yaml:"pipeline"`

	// Input is the first stage's upstream value.
	Input any `yaml:"input,omitempty"`
}

// FunctionDecl refines one registered callable.
type FunctionDecl struct {
	Module string      `yaml:"module"`
	Name   string      `yaml:"name"`
	Params []ParamDecl `yaml:"params,omitempty"`
}

// Identity returns the "module.name" handle the declaration refers to.
func (f FunctionDecl) Identity() string {
	if f.Module == "" {
		return f.Name
	}
	return f.Module + "." + f.Name
}

// ParamDecl refines one parameter of a declared function. A non-nil
// Default makes the parameter optional.
type ParamDecl struct {
	Name    string `yaml:"name"`
	Type    string `yaml:"type,omitempty"`
	Default any    `yaml:"default,omitempty"`
}

// ContextDecl holds the scoped context values.
type ContextDecl struct {
	Local   map[string]any `yaml:"local,omitempty"`
	Private map[string]any `yaml:"private,omitempty"`
	Public  map[string]any `yaml:"public,omitempty"`
}

// StageDecl is one pipeline stage: either a single function reference or
// a parallel group. Exactly one of the two fields is set.
type StageDecl struct {
	Fn       string   `yaml:"fn,omitempty"`
	Parallel []string `yaml:"parallel,omitempty"`
}

// Load reads, decodes, and schema-validates a manifest file.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{Code: ErrCodeNotFound, Message: fmt.Sprintf("reading manifest: %v", err)}
	}
	return Parse(data)
}

// Parse decodes and schema-validates manifest bytes.
func Parse(data []byte) (*Manifest, error) {
	// Decode to a generic tree first so the CUE schema sees exactly what
	// was written, including unknown fields.
	var tree any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return nil, &Error{Code: ErrCodeDecodeFailed, Message: fmt.Sprintf("decoding manifest: %v", err)}
	}
	if err := validateSchema(tree); err != nil {
		return nil, err
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, &Error{Code: ErrCodeDecodeFailed, Message: fmt.Sprintf("decoding manifest: %v", err)}
	}
	return &m, nil
}
