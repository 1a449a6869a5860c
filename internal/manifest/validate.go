package manifest

import (
	_ "embed"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

//go:embed schema.cue
var schemaCUE string

// Error code constants - unified across loading, schema validation, and
// resolution.
const (
	ErrCodeGeneric      = "E001" // Generic/unknown error
	ErrCodeNotFound     = "E002" // Manifest file not found or unreadable
	ErrCodeDecodeFailed = "E003" // YAML decode failed
	ErrCodeSchema       = "E004" // Schema violation

	// Resolution errors
	ErrCodeUnknownFunction = "E101" // Stage or declaration names an unregistered function
	ErrCodeUnknownParam    = "E102" // Declaration names a parameter the callable lacks
	ErrCodeBadValue        = "E103" // Context or default value cannot be converted
	ErrCodeBadStage        = "E104" // Stage sets both fn and parallel, or neither
)

// Error is a manifest loading or resolution error with a stable code.
type Error struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *Error) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// validateSchema unifies the decoded manifest tree with the embedded CUE
// schema. Uses the CUE SDK's Go API directly (not CLI subprocess).
func validateSchema(tree any) error {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE)
	if err := schema.Err(); err != nil {
		return &Error{Code: ErrCodeGeneric, Message: fmt.Sprintf("compiling schema: %v", err)}
	}
	def := schema.LookupPath(cue.ParsePath("#Manifest"))
	if err := def.Err(); err != nil {
		return &Error{Code: ErrCodeGeneric, Message: fmt.Sprintf("schema has no #Manifest: %v", err)}
	}

	data := ctx.Encode(tree)
	if err := data.Err(); err != nil {
		return &Error{Code: ErrCodeSchema, Message: fmt.Sprintf("encoding manifest: %v", err)}
	}

	unified := def.Unify(data)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return schemaError(err)
	}
	return nil
}

// schemaError extracts position info from CUE validation errors.
func schemaError(err error) error {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return &Error{Code: ErrCodeSchema, Message: err.Error()}
	}

	first := errs[0]
	e := &Error{Code: ErrCodeSchema, Message: first.Error()}
	if positions := cueerrors.Positions(first); len(positions) > 0 {
		e.Pos = positions[0]
	}
	return e
}
