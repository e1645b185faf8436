package integration

import "fmt"

// ConnectError is the typed failure raised by Connect. Reason is a
// human-readable diagnostic (invalid key, unreachable host, unsupported
// platform) the agent can relay verbatim.
type ConnectError struct {
	IntegrationID string
	Reason        string
	Err           error
}

func (e *ConnectError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("connect %s: %s: %v", e.IntegrationID, e.Reason, e.Err)
	}
	return fmt.Sprintf("connect %s: %s", e.IntegrationID, e.Reason)
}

func (e *ConnectError) Unwrap() error { return e.Err }

// Connectf builds a ConnectError with a formatted reason.
func Connectf(integrationID string, err error, format string, args ...any) *ConnectError {
	return &ConnectError{
		IntegrationID: integrationID,
		Reason:        fmt.Sprintf(format, args...),
		Err:           err,
	}
}
