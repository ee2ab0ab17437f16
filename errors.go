package galangal

import "fmt"

// ConfigError reports invalid or unusable client configuration: missing
// credentials, unreadable key material, a bad host key blob, or an invalid
// wildcard.
type ConfigError struct {
	Msg string
	Err error
}

func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *ConfigError) Unwrap() error { return e.Err }

// ConnectionError reports a transport-level failure during connect or
// reconnect. Addr names the target as user@host:port.
type ConnectionError struct {
	Addr string
	Err  error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connecting to %s: %v", e.Addr, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// NotFoundError reports a strict-mode existence check that failed. Side is
// "local" or "remote".
type NotFoundError struct {
	Path string
	Side string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s path not found or not the expected type: %s", e.Side, e.Path)
}

// AlreadyExistsError reports a destination name collision under the
// OverwriteNever policy.
type AlreadyExistsError struct {
	Path string
}

func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("file already exists: %s", e.Path)
}

// StateError reports an operation that is illegal in the client's current
// connection state, such as changing the connect timeout while a session is
// active.
type StateError struct {
	Msg string
}

func (e *StateError) Error() string { return e.Msg }
