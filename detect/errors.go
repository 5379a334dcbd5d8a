package detect

import "fmt"

// TransportError means the request never completed against the service.
// DNS failures, refused connections and resets are not told apart.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("detection service unreachable: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ServiceError means the service answered but did not produce a result.
// Message is what the user should see.
type ServiceError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("detection failed (status %d): %s: %v", e.StatusCode, e.Message, e.Err)
	}
	return fmt.Sprintf("detection failed (status %d): %s", e.StatusCode, e.Message)
}

func (e *ServiceError) Unwrap() error { return e.Err }
