package domain

import "fmt"

// RemoteQueryError is a non-success response from a read endpoint. The body is
// kept verbatim so the cause is diagnosable from the log line alone.
type RemoteQueryError struct {
    Endpoint   string
    StatusCode int
    Body       string
}

func (e *RemoteQueryError) Error() string {
    return fmt.Sprintf("%s status=%d body=%s", e.Endpoint, e.StatusCode, e.Body)
}

// RemoteWriteError is a failed create/update/complete/delete against Todoist.
// StatusCode is zero when the failure happened below HTTP (dial, timeout).
type RemoteWriteError struct {
    Op         string
    StatusCode int
    Err        error
}

func (e *RemoteWriteError) Error() string { return fmt.Sprintf("todoist %s: %v", e.Op, e.Err) }
func (e *RemoteWriteError) Unwrap() error { return e.Err }

// ConfigError names a required configuration key that is missing.
type ConfigError struct {
    Key string
}

func (e *ConfigError) Error() string { return fmt.Sprintf("config: missing required key %q", e.Key) }
