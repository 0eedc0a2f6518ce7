package lexer

import (
	"github.com/funvibe/asc/internal/pipeline"
)

type LexerProcessor struct{}

func (lp *LexerProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	ctx.Tokens = Tokenize(ctx.SourceCode)
	return ctx
}
