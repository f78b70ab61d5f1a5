package lglcd

import (
	"fmt"
	"strconv"
	"strings"
)

// decodeReply extracts property values from a validated reply frame.
//
// The raw frame string includes the echo, set ID, acknowledgement and
// terminator; decoders index into it with the protocol's fixed offsets.
// Most commands yield a single property; tile settings and network
// configuration fan out into several.
//
// ng reports that the frame carried an NG acknowledgement which the caller
// chose to accept (fan status on fanless panels).
func decodeReply(cmd Command, raw, monitorID string, ng bool) (map[string]string, error) {
	if ng {
		if cmd.Property == PropFanStatus {
			return map[string]string{PropFanStatus: ValueNotSupported}, nil
		}
		return nil, fmt.Errorf("%w: %q", ErrNegativeAck, raw)
	}

	switch cmd.Kind {
	case kindHexInt:
		v, err := hexField(raw, payloadOffset, 2)
		if err != nil {
			return nil, err
		}
		if cmd.Property == PropColorTemperature {
			return single(cmd, strconv.Itoa(colorTempToUI(v))), nil
		}
		return single(cmd, strconv.Itoa(v)), nil

	case kindTemperature:
		v, err := hexField(raw, payloadOffset, 2)
		if err != nil {
			return nil, err
		}
		return single(cmd, strconv.Itoa(v)), nil

	case kindEnum:
		code, err := field(raw, payloadOffset, 2)
		if err != nil {
			return nil, err
		}
		if cmd.Property == PropInput {
			src, ok := inputByCode[strings.ToUpper(code)]
			if !ok {
				return nil, fmt.Errorf("%w: unknown input code %q", ErrDecodingFailed, code)
			}
			return single(cmd, src.Name), nil
		}
		v, ok := cmd.Enum[strings.ToUpper(code)]
		if !ok {
			return nil, fmt.Errorf("%w: %s has no value for code %q", ErrDecodingFailed, cmd.Property, code)
		}
		return single(cmd, v), nil

	case kindEnumWide:
		code, err := field(raw, payloadOffset, 4)
		if err != nil {
			return nil, err
		}
		v, ok := cmd.Enum[code]
		if !ok {
			return nil, fmt.Errorf("%w: %s has no value for code %q", ErrDecodingFailed, cmd.Property, code)
		}
		return single(cmd, v), nil

	case kindSubEnum:
		code, err := field(raw, payloadOffset+2, 2)
		if err != nil {
			return nil, err
		}
		v, ok := cmd.Enum[strings.ToUpper(code)]
		if !ok {
			return nil, fmt.Errorf("%w: %s has no value for code %q", ErrDecodingFailed, cmd.Property, code)
		}
		return single(cmd, v), nil

	case kindSubHexInt:
		v, err := hexField(raw, payloadOffset+2, 2)
		if err != nil {
			return nil, err
		}
		return single(cmd, strconv.Itoa(v)), nil

	case kindSerial:
		v, err := field(raw, payloadOffset, 12)
		if err != nil {
			return nil, err
		}
		return single(cmd, v), nil

	case kindVersion:
		v, err := field(raw, payloadOffset, 6)
		if err != nil {
			return nil, err
		}
		groups := make([]string, 0, 3)
		for i := 0; i < len(v); i += 2 {
			groups = append(groups, v[i:i+2])
		}
		return single(cmd, strings.Join(groups, ".")), nil

	case kindTime:
		return decodeTime(cmd, raw)

	case kindDate:
		return decodeDate(cmd, raw)

	case kindTileSettings:
		return decodeTileSettings(raw)

	case kindNetwork:
		return decodeNetwork(raw)

	case kindInputList:
		body, err := priorityBody(raw)
		if err != nil {
			return nil, err
		}
		list, err := ParsePriorityCodes(body)
		if err != nil {
			return nil, err
		}
		return single(cmd, list.String()), nil

	case kindReboot:
		expected := fmt.Sprintf("%c %s OK01x", cmd.Opcode[1], monitorID)
		if raw != expected {
			return nil, fmt.Errorf("%w: reboot ack %q, expected %q", ErrDecodingFailed, raw, expected)
		}
		return single(cmd, "Ok"), nil

	default:
		return nil, fmt.Errorf("%w: no decoder for %s", ErrDecodingFailed, cmd.Property)
	}
}

// single wraps a one-property decode result.
func single(cmd Command, value string) map[string]string {
	return map[string]string{cmd.Property: value}
}

// field slices width characters at offset, guarding against short frames.
func field(raw string, offset, width int) (string, error) {
	if len(raw) < offset+width {
		return "", fmt.Errorf("%w: need %d bytes, got %d", ErrShortReply, offset+width, len(raw))
	}
	return raw[offset : offset+width], nil
}

// hexField parses the field at offset as a hexadecimal integer.
func hexField(raw string, offset, width int) (int, error) {
	s, err := field(raw, offset, width)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseInt(s, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not hex: %w", ErrDecodingFailed, s, err)
	}
	return int(v), nil
}

// decodeTime renders the hour/minute hex pairs as a 12-hour clock.
//
// Hour zero renders as 12 PM and hours above twelve wrap into the PM range,
// matching the panel's on-screen clock. "173B00" decodes to "11:59 PM".
func decodeTime(cmd Command, raw string) (map[string]string, error) {
	hour, err := hexField(raw, payloadOffset, 2)
	if err != nil {
		return nil, err
	}
	minute, err := hexField(raw, payloadOffset+2, 2)
	if err != nil {
		return nil, err
	}
	if _, err := hexField(raw, payloadOffset+4, 2); err != nil {
		return nil, err
	}

	suffix := "AM"
	switch {
	case hour == 0:
		hour = 12
		suffix = "PM"
	case hour > 12:
		hour -= 12
		suffix = "PM"
	}

	return single(cmd, fmt.Sprintf("%d:%02d %s", hour, minute, suffix)), nil
}

// decodeDate renders the year-offset/month/day hex pairs as M/D/YYYY.
// The year field counts from 2010, so "0c011F" decodes to "1/31/2022".
func decodeDate(cmd Command, raw string) (map[string]string, error) {
	yearOffset, err := hexField(raw, payloadOffset, 2)
	if err != nil {
		return nil, err
	}
	month, err := hexField(raw, payloadOffset+2, 2)
	if err != nil {
		return nil, err
	}
	day, err := hexField(raw, payloadOffset+4, 2)
	if err != nil {
		return nil, err
	}

	return single(cmd, fmt.Sprintf("%d/%d/%d", month, day, dateYearBase+yearOffset)), nil
}

// decodeTileSettings splits the reply into on/off state, grid columns and
// rows, in that wire order. Columns and rows arrive as hex and are reported
// in decimal.
func decodeTileSettings(raw string) (map[string]string, error) {
	modeCode, err := field(raw, payloadOffset, 2)
	if err != nil {
		return nil, err
	}
	cols, err := hexField(raw, payloadOffset+2, 2)
	if err != nil {
		return nil, err
	}
	rows, err := hexField(raw, payloadOffset+4, 2)
	if err != nil {
		return nil, err
	}
	mode, ok := tileModeValues[modeCode]
	if !ok {
		return nil, fmt.Errorf("%w: tile mode code %q", ErrDecodingFailed, modeCode)
	}

	return map[string]string{
		PropTileColumns: strconv.Itoa(cols),
		PropTileRows:    strconv.Itoa(rows),
		PropTileMode:    mode,
	}, nil
}

// decodeNetwork parses the space-separated network report. The last four
// fields are the IP address, subnet mask, gateway and DNS server, each a
// run of three-decimal-digit octet groups: "172000001001" is 172.0.1.1.
func decodeNetwork(raw string) (map[string]string, error) {
	const bodyOffset = 10
	if len(raw) < bodyOffset+2 {
		return nil, fmt.Errorf("%w: network reply %q", ErrShortReply, raw)
	}

	fields := strings.Fields(raw[bodyOffset : len(raw)-1])
	if len(fields) < 4 {
		return nil, fmt.Errorf("%w: network reply has %d fields, need 4", ErrDecodingFailed, len(fields))
	}
	last := fields[len(fields)-4:]

	keys := []string{PropIPAddress, PropSubnetMask, PropGateway, PropDNSServer}
	out := make(map[string]string, 4)
	for i, token := range last {
		addr, err := decodeOctets(token)
		if err != nil {
			return nil, err
		}
		out[keys[i]] = addr
	}
	return out, nil
}

// decodeOctets converts a run of three-decimal-digit groups into a dotted
// address, stripping leading zeros from each octet.
func decodeOctets(token string) (string, error) {
	if len(token) == 0 || len(token)%3 != 0 {
		return "", fmt.Errorf("%w: octet group %q", ErrDecodingFailed, token)
	}
	parts := make([]string, 0, len(token)/3)
	for i := 0; i < len(token); i += 3 {
		octet, err := strconv.Atoi(token[i : i+3])
		if err != nil {
			return "", fmt.Errorf("%w: octet %q: %w", ErrDecodingFailed, token[i:i+3], err)
		}
		parts = append(parts, strconv.Itoa(octet))
	}
	return strings.Join(parts, "."), nil
}

// priorityBody extracts the input priority payload between the
// acknowledgement and the terminator.
func priorityBody(raw string) (string, error) {
	if len(raw) < payloadOffset+1 {
		return "", fmt.Errorf("%w: priority reply %q", ErrShortReply, raw)
	}
	return raw[payloadOffset : len(raw)-1], nil
}
