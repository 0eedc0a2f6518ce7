package pipeline

// ProcessorFunc lets a plain function act as a pipeline stage.
type ProcessorFunc func(ctx *PipelineContext) *PipelineContext

func (f ProcessorFunc) Process(ctx *PipelineContext) *PipelineContext { return f(ctx) }

// Pipeline is an ordered list of stages sharing one PipelineContext.
type Pipeline struct {
	processors []Processor
}

func New(processors ...Processor) *Pipeline {
	return &Pipeline{processors: processors}
}

// With returns a new pipeline running p's stages followed by extra.
// p itself is left unchanged.
func (p *Pipeline) With(extra ...Processor) *Pipeline {
	steps := make([]Processor, 0, len(p.processors)+len(extra))
	steps = append(steps, p.processors...)
	steps = append(steps, extra...)
	return &Pipeline{processors: steps}
}

// Len is the number of stages.
func (p *Pipeline) Len() int { return len(p.processors) }

// Run passes ctx through every stage in order. Stages check ctx.Failed()
// themselves: the lexer and parser keep going so that every syntax error is
// reported, lowering and emission skip a failed context.
func (p *Pipeline) Run(ctx *PipelineContext) *PipelineContext {
	for _, processor := range p.processors {
		ctx = processor.Process(ctx)
	}
	return ctx
}
