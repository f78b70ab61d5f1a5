package lglcd

import (
	"fmt"
)

// Wire framing for the RS-232C control protocol.
//
// A request is an ASCII line:
//
//	<opcode> <set-id> <payload>\r
//
// e.g. "ka 01 FF\r". The reply echoes the second opcode character, the set
// ID, an OK/NG acknowledgement, the payload, and a literal 'x' terminator:
//
//	<c2> <set-id> OK<data>x
//
// e.g. "a 01 OK01x". Reply offsets used by the decoders are fixed: the
// acknowledgement occupies [5:7] and payload data starts at offset 7.
const (
	// frameTerminator ends every reply frame.
	frameTerminator = 'x'

	// ackOffset is the index of the OK/NG acknowledgement in a reply.
	ackOffset = 5

	// payloadOffset is the index of the first payload character in a reply.
	payloadOffset = 7

	ackOK = "OK"
	ackNG = "NG"
)

// minReplyLen is the shortest well-formed reply: "a 01 OKx".
const minReplyLen = payloadOffset + 1

// EncodeRequest builds the wire form of a command request.
//
// Parameters:
//   - opcode: two-character command code (e.g. "ka")
//   - monitorID: two-character set ID (e.g. "01")
//   - payload: request data, "FF" for a status read
//
// Returns:
//   - []byte: the framed request including the trailing carriage return
func EncodeRequest(opcode, monitorID, payload string) []byte {
	return []byte(fmt.Sprintf("%s %s %s\r", opcode, monitorID, payload))
}

// ParseReply validates a reply frame against the request opcode and returns
// the frame as a string for offset-based decoding.
//
// Validation steps:
//  1. Length and terminator checks (ErrShortReply)
//  2. Opcode echo: frame[0] must equal the second opcode character
//     (ErrUnexpectedReply)
//  3. Acknowledgement: "OK" accepted, "NG" rejected (ErrNegativeAck) unless
//     allowNG is set, in which case the caller sees the NG frame
//
// allowNG exists for the fan status command, where NG is a valid reading on
// fanless panels rather than a failure.
func ParseReply(opcode string, frame []byte, allowNG bool) (string, bool, error) {
	if len(frame) < minReplyLen {
		return "", false, fmt.Errorf("%w: got %d bytes", ErrShortReply, len(frame))
	}
	if frame[len(frame)-1] != frameTerminator {
		return "", false, fmt.Errorf("%w: missing terminator", ErrShortReply)
	}

	if frame[0] != opcode[1] {
		return "", false, fmt.Errorf("%w: sent %q, reply echoed %q", ErrUnexpectedReply, opcode, string(frame[0]))
	}

	raw := string(frame)
	switch raw[ackOffset : ackOffset+2] {
	case ackOK:
		return raw, false, nil
	case ackNG:
		if allowNG {
			return raw, true, nil
		}
		return "", false, fmt.Errorf("%w: %q", ErrNegativeAck, raw)
	default:
		return "", false, fmt.Errorf("%w: malformed acknowledgement in %q", ErrDecodingFailed, raw)
	}
}
