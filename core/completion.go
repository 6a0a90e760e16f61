package orchestration

import (
	"context"
	"errors"
)

// completion normalises every failure of the completion client into a
// CompletionError.
type completion struct {
	client CompletionClient
}

func (c completion) Complete(ctx context.Context, text string) (string, error) {
	if c.client == nil {
		return "", &CompletionError{Body: "no completion client configured"}
	}

	reply, err := c.client.Complete(ctx, text)
	if err != nil {
		return "", asCompletionError(err)
	}
	return reply, nil
}

func asCompletionError(err error) *CompletionError {
	var completionErr *CompletionError
	if errors.As(err, &completionErr) {
		return completionErr
	}

	var response interface {
		ResponseStatus() int
		ResponseBody() string
	}
	if errors.As(err, &response) {
		return &CompletionError{Status: response.ResponseStatus(), Body: response.ResponseBody(), Err: err}
	}

	return &CompletionError{Body: err.Error(), Err: err}
}
