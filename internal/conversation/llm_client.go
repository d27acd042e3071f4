package conversation

import "context"

// GenerateRequest is one model invocation: an engineered prompt plus the
// stored dialogue history replayed verbatim.
type GenerateRequest struct {
	Prompt  string
	History []Turn
}

// GenerateResult carries the model's answer. Exactly one of Text or
// FunctionCall is meaningful; a native function-call part wins over text.
type GenerateResult struct {
	Text         string
	FunctionCall *FunctionCall
}

// LLMClient abstracts the language model. An error return means the model is
// unavailable; callers must surface that explicitly, never as an empty answer.
type LLMClient interface {
	Generate(ctx context.Context, req GenerateRequest) (GenerateResult, error)
}
