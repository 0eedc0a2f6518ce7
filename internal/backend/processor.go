package backend

import (
	"errors"

	"github.com/funvibe/asc/internal/diagnostics"
	"github.com/funvibe/asc/internal/ir"
	"github.com/funvibe/asc/internal/lexer"
	"github.com/funvibe/asc/internal/parser"
	"github.com/funvibe/asc/internal/pipeline"
	"github.com/funvibe/asc/internal/scope"
	"github.com/funvibe/asc/internal/token"
)

// CompileProcessor lowers ctx.AstRoot into ctx.IR.
type CompileProcessor struct{}

func (p *CompileProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	// A broken program is never lowered
	if ctx.AstRoot == nil || ctx.Failed() {
		return ctx
	}

	defs, err := ir.CompileWith(ctx.AstRoot, ir.Options{ExtraBuiltins: ctx.ExtraBuiltins})
	if err != nil {
		ctx.AddError(compileDiagnostic(err))
		return ctx
	}
	ctx.IR = defs
	return ctx
}

func compileDiagnostic(err error) *diagnostics.DiagnosticError {
	var tok token.Token
	cause := err
	var cerr *ir.CompileError
	if errors.As(err, &cerr) {
		tok, cause = cerr.Token, cerr.Err
	}

	var dup *scope.DuplicateNameError
	var unresolved *scope.UnresolvedNameError
	switch {
	case errors.As(err, &dup):
		return diagnostics.NewError(diagnostics.ErrC001, tok, "%s is already defined in this scope", dup.Name)
	case errors.As(err, &unresolved):
		return diagnostics.NewError(diagnostics.ErrC002, tok, "%s is not defined", unresolved.Name)
	}
	// The position lives in tok; the message is the bare cause
	return diagnostics.NewError(diagnostics.ErrC003, tok, cause.Error())
}

// EmitProcessor encodes ctx.IR into ctx.Output with Backend.
type EmitProcessor struct {
	Backend Backend
}

// NewEmitProcessor creates a new pipeline step for the given backend
func NewEmitProcessor(b Backend) *EmitProcessor {
	return &EmitProcessor{Backend: b}
}

func (p *EmitProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.IR == nil || ctx.Failed() {
		return ctx
	}
	out, err := p.Backend.Emit(ctx.IR)
	if err != nil {
		ctx.AddError(diagnostics.NewError(diagnostics.ErrD001, token.Token{}, "encoding %s output: %v", p.Backend.Name(), err))
		return ctx
	}
	ctx.Output = out
	return ctx
}

// NewPipeline wires lexer, parser, lowering and emission. With a nil
// backend the pipeline stops after lowering.
func NewPipeline(b Backend) *pipeline.Pipeline {
	front := parsePipeline().With(&CompileProcessor{})
	if b == nil {
		return front
	}
	return front.With(NewEmitProcessor(b))
}

func parsePipeline() *pipeline.Pipeline {
	return pipeline.New(&lexer.LexerProcessor{}, &parser.ParserProcessor{})
}

// Parse runs only the front end, leaving the resolved tree in AstRoot.
func Parse(filePath, source string) *pipeline.PipelineContext {
	ctx := pipeline.NewPipelineContext(source)
	ctx.FilePath = filePath
	return parsePipeline().Run(ctx)
}

// Run compiles one source text. Every call gets its own context and scope
// chain, so calls may run concurrently.
func Run(b Backend, filePath, source string, extraBuiltins []string) *pipeline.PipelineContext {
	ctx := pipeline.NewPipelineContext(source)
	ctx.FilePath = filePath
	ctx.ExtraBuiltins = extraBuiltins
	return NewPipeline(b).Run(ctx)
}
