package provider

import "fmt"

// APIError represents an error returned by a provider's HTTP API.
type APIError struct {
	Provider   string
	StatusCode int
	Message    string
	Err        error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s API error (status %d): %s", e.Provider, e.StatusCode, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s API error: %s (%v)", e.Provider, e.Message, e.Err)
	}
	return fmt.Sprintf("%s API error: %s", e.Provider, e.Message)
}

// Unwrap returns the underlying error.
func (e *APIError) Unwrap() error {
	return e.Err
}
