package domain

import "context"

// Generator is the natural-language generation contract shared between
// layers. Implementations receive one text prompt and return free-form
// text that may embed structured JSON; the core consumes the text only.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Name() string
}
