package lglcd

import "errors"

// Domain errors for the LG display bridge package.
var (
	// ErrNotConnected is returned when an operation requires a connection
	// but the transport is not connected to the display.
	ErrNotConnected = errors.New("lglcd: not connected to display")

	// ErrConnectionFailed is returned when the connection to the display fails.
	ErrConnectionFailed = errors.New("lglcd: connection to display failed")

	// ErrUnexpectedReply is returned when a reply frame does not echo the
	// opcode of the request it should answer.
	ErrUnexpectedReply = errors.New("lglcd: unexpected reply opcode")

	// ErrNegativeAck is returned when the display answers a command with NG.
	ErrNegativeAck = errors.New("lglcd: display rejected command")

	// ErrShortReply is returned when a reply frame is too short to carry
	// the expected payload.
	ErrShortReply = errors.New("lglcd: reply frame too short")

	// ErrDecodingFailed is returned when a reply payload cannot be decoded.
	ErrDecodingFailed = errors.New("lglcd: decoding failed")

	// ErrUnknownProperty is returned when a property name does not map to
	// a protocol command.
	ErrUnknownProperty = errors.New("lglcd: unknown property")

	// ErrInvalidValue is returned when a control value cannot be encoded
	// for the target property.
	ErrInvalidValue = errors.New("lglcd: invalid control value")

	// ErrControlRejected is returned when a control write fails after all
	// permitted retries.
	ErrControlRejected = errors.New("lglcd: control rejected by display")

	// ErrControlUnavailable is returned when a control is invoked while its
	// backing property has no live value.
	ErrControlUnavailable = errors.New("lglcd: control unavailable")

	// ErrTimeout is returned when a command exchange exceeds the watchdog limit.
	ErrTimeout = errors.New("lglcd: command timed out")
)
