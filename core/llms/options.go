// Package llms holds the provider independent vocabulary for one-shot
// language model prompts.
package llms

const (
	DefaultInstructions = "You are a concise podcast co-host. Answer in one to three sentences that are easy to speak aloud."
	DefaultTemperature  = 0.5
	// FallbackReply replaces an empty model reply so that the avatar always
	// has something to say.
	FallbackReply = "No reply."
)

type PromptOptions struct {
	Instructions string
	Temperature  float64
	Model        string
}

type PromptOption func(*PromptOptions)

// NewPromptOptions applies opts on top of the default instructions and
// temperature. An empty Model selects the client's model.
func NewPromptOptions(opts ...PromptOption) PromptOptions {
	options := PromptOptions{Instructions: DefaultInstructions, Temperature: DefaultTemperature}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}

func WithInstructions(instructions string) PromptOption {
	return func(o *PromptOptions) {
		if instructions != "" {
			o.Instructions = instructions
		}
	}
}

func WithTemperature(temperature float64) PromptOption {
	return func(o *PromptOptions) { o.Temperature = temperature }
}

func WithModel(model string) PromptOption {
	return func(o *PromptOptions) { o.Model = model }
}
