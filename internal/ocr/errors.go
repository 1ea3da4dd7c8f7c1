package ocr

import "fmt"

// The client surfaces every failure as one of four typed errors so the
// HTTP boundary can match them exhaustively with errors.As instead of
// inspecting provider strings.

// ConfigurationError reports an unusable client configuration, such as
// an empty API key.
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("ocr configuration: %s", e.Message)
}

// FileError reports a failure reading the local staged file before it
// ever reaches the provider.
type FileError struct {
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("ocr file %s: %v", e.Path, e.Err)
}

func (e *FileError) Unwrap() error { return e.Err }

// NetworkError reports a transport-level failure or timeout while
// talking to the provider.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("ocr network %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// APIError reports a non-2xx answer from the provider, carrying the
// HTTP status and whatever detail payload came with it.
type APIError struct {
	StatusCode int
	Details    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("ocr api status %d: %s", e.StatusCode, e.Details)
}
