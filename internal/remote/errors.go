package remote

import "fmt"

// ServerError means the backend answered with a non-2xx status. Detail is
// taken from the response body's "error" field when present.
type ServerError struct {
	Status int
	Detail string
}

func (e *ServerError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("server error (status %d)", e.Status)
	}
	return fmt.Sprintf("server error (status %d): %s", e.Status, e.Detail)
}

// NetworkError means no response was received at all: connectivity or
// transport failure, as opposed to a server-side rejection.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return "network error: " + e.Err.Error()
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}
