package parser

import (
	"github.com/funvibe/asc/internal/diagnostics"
	"github.com/funvibe/asc/internal/pipeline"
	"github.com/funvibe/asc/internal/token"
)

type ParserProcessor struct{}

func (pp *ParserProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.Tokens == nil {
		ctx.AddError(diagnostics.NewError(diagnostics.ErrP001, token.Token{}, "no tokens to parse"))
		return ctx
	}
	p := New(ctx.Tokens, ctx)
	ctx.AstRoot = p.ParseProgram()
	return ctx
}
