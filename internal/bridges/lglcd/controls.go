package lglcd

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ControlType classifies how a writable property is presented.
type ControlType string

const (
	ControlSwitch   ControlType = "switch"
	ControlSlider   ControlType = "slider"
	ControlDropdown ControlType = "dropdown"
	ControlButton   ControlType = "button"
)

// Control describes one writable property and its current state.
type Control struct {
	Property string      `json:"property"`
	Type     ControlType `json:"type"`
	Label    string      `json:"label"`
	Value    string      `json:"value,omitempty"`
	Min      int         `json:"min,omitempty"`
	Max      int         `json:"max,omitempty"`
	Options  []string    `json:"options,omitempty"`
}

// controlDef is the static shape of one control; current value and dynamic
// option lists are filled in at build time.
type controlDef struct {
	property string
	ctrlType ControlType
	min, max int
	enum     map[string]string
}

// controlDefs lists writable properties in presentation order.
var controlDefs = []controlDef{
	{property: PropPower, ctrlType: ControlSwitch, enum: powerValues},
	{property: PropInput, ctrlType: ControlDropdown},
	{property: PropAspectRatio, ctrlType: ControlDropdown, enum: aspectValues},
	{property: PropPictureMode, ctrlType: ControlDropdown, enum: pictureModeValues},
	{property: PropEnergySaving, ctrlType: ControlDropdown, enum: energySavingValues},
	{property: PropBacklight, ctrlType: ControlSlider, max: 100},
	{property: PropContrast, ctrlType: ControlSlider, max: 100},
	{property: PropBrightness, ctrlType: ControlSlider, max: 100},
	{property: PropSharpness, ctrlType: ControlSlider, max: 100},
	{property: PropScreenColor, ctrlType: ControlSlider, max: 100},
	{property: PropTint, ctrlType: ControlDropdown, enum: tintValues},
	{property: PropColorTemperature, ctrlType: ControlSlider, min: colorTempUIMin, max: colorTempUIMax},
	{property: PropBalance, ctrlType: ControlSlider, max: 100},
	{property: PropSoundMode, ctrlType: ControlDropdown, enum: soundModeValues},
	{property: PropVolume, ctrlType: ControlSlider, max: 100},
	{property: PropMute, ctrlType: ControlSwitch, enum: muteValues},
	{property: PropPowerManagement, ctrlType: ControlDropdown, enum: powerManagementValues},
	{property: PropDPM, ctrlType: ControlDropdown, enum: dpmValues},
	{property: PropFailoverMode, ctrlType: ControlDropdown, enum: failoverModeValues},
	{property: PropInputPriority, ctrlType: ControlDropdown},
	{property: PropTileMode, ctrlType: ControlSwitch, enum: tileModeValues},
	{property: PropTileColumns, ctrlType: ControlSlider, min: 1, max: 15},
	{property: PropTileRows, ctrlType: ControlSlider, min: 1, max: 15},
	{property: PropTileID, ctrlType: ControlSlider, min: 1, max: 225},
	{property: PropNaturalMode, ctrlType: ControlSwitch, enum: naturalModeValues},
	{property: PropNoSignalPowerOff, ctrlType: ControlSwitch, enum: noSignalPowerOffValues},
	{property: PropNoIRPowerOff, ctrlType: ControlSwitch, enum: noIRPowerOffValues},
	{property: PropDate, ctrlType: ControlButton},
	{property: PropTime, ctrlType: ControlButton},
	{property: PropReboot, ctrlType: ControlButton},
}

// buildControls assembles the current control list from cached state.
//
// A property whose cached value is absent or expired produces no control,
// so a panel that rejects a command simply loses that knob instead of
// presenting a dead one. Buttons are always offered.
func buildControls(cache *propertyCache, priority *PriorityList) []Control {
	controls := make([]Control, 0, len(controlDefs))
	for _, def := range controlDefs {
		ctrl := Control{
			Property: def.property,
			Type:     def.ctrlType,
			Label:    controlLabel(def.property),
			Min:      def.min,
			Max:      def.max,
		}

		if def.ctrlType != ControlButton {
			value, ok := cache.Value(def.property)
			if !ok || value == ValueNA {
				continue
			}
			ctrl.Value = value
		}

		switch def.property {
		case PropInput:
			ctrl.Options = selectableInputNames()
		case PropInputPriority:
			if priority == nil {
				continue
			}
			opts := priority.SelectableNames()
			if len(opts) == 0 {
				continue
			}
			ctrl.Options = opts
		default:
			if def.enum != nil {
				ctrl.Options = enumOptions(def.enum)
			}
		}

		controls = append(controls, ctrl)
	}
	return controls
}

// controlLabel derives a display label from a property name.
func controlLabel(property string) string {
	if label, ok := controlLabels[property]; ok {
		return label
	}
	words := strings.Split(property, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

var controlLabels = map[string]string{
	PropDPM:              "DPM",
	PropColorTemperature: "Color Temperature (K)",
	PropTileID:           "Tile ID",
	PropNoIRPowerOff:     "No IR Power Off",
}

// enumOptions returns an enum table's names ordered by wire code.
func enumOptions(enum map[string]string) []string {
	codes := make([]string, 0, len(enum))
	for code := range enum {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	options := make([]string, len(codes))
	for i, code := range codes {
		options[i] = enum[code]
	}
	return options
}

// selectableInputNames returns the input sources a user may switch to.
// Play via URL is launched from the panel itself and cannot be selected
// over the wire, so it never appears in the dropdown.
func selectableInputNames() []string {
	names := make([]string, 0, len(inputSources))
	for _, src := range inputSources {
		if src.Name == PlayViaURLName {
			continue
		}
		names = append(names, src.Name)
	}
	return names
}

// encodeControlPayload turns a user-supplied value into the wire payload
// for a write command.
//
// Returns:
//   - string: Hex payload for the request frame
//   - error: ErrUnknownProperty for non-writable properties, ErrInvalidValue
//     for values outside the property's domain
func encodeControlPayload(property, value string) (string, error) {
	switch property {
	case PropTileColumns, PropTileRows:
		// Tile geometry fields share the tile settings opcode; the bridge
		// composes the full frame from cached neighbours.
		return encodeHexInt(property, value, 1, 15)
	case PropTileID:
		return encodeHexInt(property, value, 1, 225)
	case PropTileMode:
		code, ok := reverseLookup(tileModeValues, value)
		if !ok {
			return "", fmt.Errorf("%w: %q for %s", ErrInvalidValue, value, property)
		}
		return code, nil
	}

	cmd, ok := commandByProperty[property]
	if !ok || !cmd.Control {
		if property != PropReboot {
			return "", fmt.Errorf("%w: %q is not writable", ErrUnknownProperty, property)
		}
		cmd = rebootCommand
	}

	switch property {
	case PropColorTemperature:
		kelvin, err := strconv.Atoi(value)
		if err != nil {
			return "", fmt.Errorf("%w: color temperature %q", ErrInvalidValue, value)
		}
		return fmt.Sprintf("%02x", colorTempToDevice(kelvin)), nil
	case PropInput:
		src, ok := inputByName[value]
		if !ok || src.Name == PlayViaURLName {
			return "", fmt.Errorf("%w: input %q", ErrInvalidValue, value)
		}
		return src.Code, nil
	case PropInputPriority:
		// The priority order changes only through the reorder operations,
		// which serialise the validated list themselves. A raw value here
		// would go to the panel unchecked.
		return "", fmt.Errorf("%w: %s accepts only reorder actions", ErrInvalidValue, PropInputPriority)
	case PropDate:
		return encodeDate(value)
	case PropTime:
		return encodeTime(value)
	case PropReboot:
		return rebootCommand.Request, nil
	}

	switch cmd.Kind {
	case kindHexInt:
		return encodeHexInt(property, value, 0, 100)
	case kindTileSettings:
		// Tile geometry writes back as one combined frame.
		return "", fmt.Errorf("%w: %q is written per field", ErrUnknownProperty, property)
	case kindEnum, kindEnumWide:
		code, ok := reverseLookup(cmd.Enum, value)
		if !ok {
			return "", fmt.Errorf("%w: %q for %s", ErrInvalidValue, value, property)
		}
		return code, nil
	case kindSubEnum:
		code, ok := reverseLookup(cmd.Enum, value)
		if !ok {
			return "", fmt.Errorf("%w: %q for %s", ErrInvalidValue, value, property)
		}
		sub, _, _ := strings.Cut(cmd.Request, " ")
		return sub + " " + code, nil
	}

	return "", fmt.Errorf("%w: %q", ErrUnknownProperty, property)
}

// encodeHexInt validates an integer value and renders it as a two-digit
// hex payload.
func encodeHexInt(property, value string, min, max int) (string, error) {
	n, err := strconv.Atoi(value)
	if err != nil || n < min || n > max {
		return "", fmt.Errorf("%w: %q for %s (range %d-%d)", ErrInvalidValue, value, property, min, max)
	}
	return fmt.Sprintf("%02x", n), nil
}

// encodeDate parses "M/D/YYYY" into the device's year/month/day hex triple.
// Years are stored as an offset from 2010.
func encodeDate(value string) (string, error) {
	parts := strings.Split(value, "/")
	if len(parts) != 3 {
		return "", fmt.Errorf("%w: date %q", ErrInvalidValue, value)
	}
	month, err1 := strconv.Atoi(parts[0])
	day, err2 := strconv.Atoi(parts[1])
	year, err3 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil || err3 != nil ||
		month < 1 || month > 12 || day < 1 || day > 31 || year < dateYearBase {
		return "", fmt.Errorf("%w: date %q", ErrInvalidValue, value)
	}
	return fmt.Sprintf("%02x%02x%02x", year-dateYearBase, month, day), nil
}

// encodeTime parses "HH:MM AM/PM" into the device's 24-hour hex pair plus
// a zero seconds field.
func encodeTime(value string) (string, error) {
	fields := strings.Fields(value)
	if len(fields) != 2 {
		return "", fmt.Errorf("%w: time %q", ErrInvalidValue, value)
	}
	clock, meridiem := fields[0], strings.ToUpper(fields[1])

	hs, ms, ok := strings.Cut(clock, ":")
	if !ok {
		return "", fmt.Errorf("%w: time %q", ErrInvalidValue, value)
	}
	hour, err1 := strconv.Atoi(hs)
	minute, err2 := strconv.Atoi(ms)
	if err1 != nil || err2 != nil || hour < 1 || hour > 12 || minute < 0 || minute > 59 {
		return "", fmt.Errorf("%w: time %q", ErrInvalidValue, value)
	}

	switch meridiem {
	case "AM":
		if hour == 12 {
			hour = 0
		}
	case "PM":
		if hour != 12 {
			hour += 12
		}
	default:
		return "", fmt.Errorf("%w: time %q", ErrInvalidValue, value)
	}

	return fmt.Sprintf("%02x%02x00", hour, minute), nil
}
