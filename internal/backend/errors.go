package backend

import "fmt"

// Kind classifies import call failures.
type Kind string

const (
	// KindAuthRejected means the backend refused the bearer token (401/403).
	KindAuthRejected Kind = "auth_rejected"
	// KindBackendError covers every other non-2xx response.
	KindBackendError Kind = "backend_error"
	// KindNetworkError covers connection failures and timeouts.
	KindNetworkError Kind = "network_error"
)

// TransportError is a failed import call. Status and Body are zero for
// network-level failures.
type TransportError struct {
	Kind   Kind
	Status int
	Body   string
	Err    error
}

func (e *TransportError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("import request failed (%s): %v", e.Kind, e.Err)
	case e.Body != "":
		return fmt.Sprintf("import request failed (%s): status %d: %s", e.Kind, e.Status, e.Body)
	default:
		return fmt.Sprintf("import request failed (%s): status %d", e.Kind, e.Status)
	}
}

func (e *TransportError) Unwrap() error { return e.Err }

// AuthError is a failed authentication attempt: rejected credentials, a
// transport failure during login, or a 200 response with no token in it.
type AuthError struct {
	Status int
	Body   string
	Err    error
}

func (e *AuthError) Error() string {
	switch {
	case e.Err != nil && e.Status != 0:
		return fmt.Sprintf("authentication failed: status %d: %v", e.Status, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("authentication failed: %v", e.Err)
	default:
		return fmt.Sprintf("authentication failed: status %d: %s", e.Status, e.Body)
	}
}

func (e *AuthError) Unwrap() error { return e.Err }
