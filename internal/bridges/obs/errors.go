package obs

import (
	"errors"
	"fmt"
)

// Domain errors for the obs bridge package.
var (
	// ErrNotConnected is returned when a request is made while disconnected.
	ErrNotConnected = errors.New("obs: not connected")

	// ErrConnectionFailed is returned when the WebSocket cannot be opened or
	// the handshake does not complete.
	ErrConnectionFailed = errors.New("obs: connection failed")

	// ErrAuthRequired is returned when the server requires a password.
	ErrAuthRequired = errors.New("obs: server requires authentication")

	// ErrTimeout is returned when a request receives no response in time.
	ErrTimeout = errors.New("obs: request timed out")

	// ErrClosed is returned for requests made after Close.
	ErrClosed = errors.New("obs: client closed")

	// ErrProtocol is returned when the server sends an unexpected message.
	ErrProtocol = errors.New("obs: protocol error")
)

// RequestError is a request the server processed and rejected.
type RequestError struct {
	RequestType string
	Code        int
	Comment     string
}

func (e *RequestError) Error() string {
	if e.Comment == "" {
		return fmt.Sprintf("obs: %s failed", e.RequestType)
	}
	return fmt.Sprintf("obs: %s failed: %s", e.RequestType, e.Comment)
}

// StatusCode returns the obs-websocket request status code.
func (e *RequestError) StatusCode() int {
	return e.Code
}
