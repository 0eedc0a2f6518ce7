package pipeline

import (
	"github.com/funvibe/asc/internal/ast"
	"github.com/funvibe/asc/internal/diagnostics"
	"github.com/funvibe/asc/internal/ir"
	"github.com/funvibe/asc/internal/token"
)

// Processor is one stage of the pipeline.
type Processor interface {
	Process(ctx *PipelineContext) *PipelineContext
}

// PipelineContext carries the state of one compilation between stages.
type PipelineContext struct {
	SourceCode string
	FilePath   string

	// ExtraBuiltins are added to the root scope (from asc.yaml).
	ExtraBuiltins []string

	Tokens  []token.Token
	AstRoot *ast.Program
	IR      ir.Defs
	Output  []byte

	Errors []*diagnostics.DiagnosticError
}

func NewPipelineContext(sourceCode string) *PipelineContext {
	return &PipelineContext{SourceCode: sourceCode}
}

// AddError records err, filling in the file path when missing.
func (ctx *PipelineContext) AddError(err *diagnostics.DiagnosticError) {
	if err.File == "" {
		err.File = ctx.FilePath
	}
	ctx.Errors = append(ctx.Errors, err)
}

// Failed reports whether any stage has recorded an error.
func (ctx *PipelineContext) Failed() bool {
	return len(ctx.Errors) > 0
}

// ErrorList returns the diagnostics as plain errors.
func (ctx *PipelineContext) ErrorList() []error {
	errs := make([]error, len(ctx.Errors))
	for i, e := range ctx.Errors {
		errs[i] = e
	}
	return errs
}
