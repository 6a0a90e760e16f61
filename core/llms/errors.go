package llms

import "fmt"

// APIError is a non-2xx response of a model provider. Body is the provider's
// response body, verbatim when available.
type APIError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: status %d: %s", e.Provider, e.StatusCode, e.Body)
}

func (e *APIError) ResponseStatus() int  { return e.StatusCode }
func (e *APIError) ResponseBody() string { return e.Body }
