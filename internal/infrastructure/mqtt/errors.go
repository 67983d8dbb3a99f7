package mqtt

import "errors"

// Sentinel errors returned by the event and command transport. Wrapped
// errors keep these reachable through errors.Is.
var (
	// ErrNotConnected means the broker link is down; event publishes are
	// dropped by the caller and commands are not received until reconnect.
	ErrNotConnected = errors.New("mqtt: broker not connected")

	// ErrConnectionFailed means the broker did not accept the initial
	// connection within the configured timeout.
	ErrConnectionFailed = errors.New("mqtt: broker connection failed")

	// ErrPublishFailed wraps any failure sending a scene event or status.
	ErrPublishFailed = errors.New("mqtt: publish failed")

	// ErrSubscribeFailed wraps any failure registering a command topic.
	ErrSubscribeFailed = errors.New("mqtt: subscribe failed")

	// ErrUnsubscribeFailed wraps any failure dropping a command topic.
	ErrUnsubscribeFailed = errors.New("mqtt: unsubscribe failed")

	// ErrInvalidQoS rejects QoS levels other than 0, 1 or 2.
	ErrInvalidQoS = errors.New("mqtt: QoS must be 0, 1 or 2")

	// ErrInvalidTopic rejects an empty topic.
	ErrInvalidTopic = errors.New("mqtt: empty topic")

	// ErrTimeout means the broker did not acknowledge a publish, subscribe
	// or unsubscribe in time. It is always wrapped together with the
	// operation's own sentinel.
	ErrTimeout = errors.New("mqtt: broker acknowledgement timed out")
)
