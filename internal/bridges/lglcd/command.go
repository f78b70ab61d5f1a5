package lglcd

// replyKind selects the decoding rule applied to a command's reply payload.
type replyKind int

const (
	// kindHexInt decodes the two hex characters at [7:9] as an integer.
	kindHexInt replyKind = iota

	// kindEnum looks up the two characters at [7:9] in the command's table.
	kindEnum

	// kindEnumWide looks up the four characters at [7:11].
	kindEnumWide

	// kindSubEnum looks up the two characters at [9:11]; the characters at
	// [7:9] echo the subcommand.
	kindSubEnum

	// kindSubHexInt decodes the two hex characters at [9:11] as an integer.
	kindSubHexInt

	// kindSerial takes the raw characters at [7:19].
	kindSerial

	// kindVersion re-punctuates the characters at [7:13] into dot-separated
	// two-character groups.
	kindVersion

	// kindTime renders the three hex pairs at [7:13] as a 12-hour clock.
	kindTime

	// kindDate renders the three hex pairs at [7:13] as M/D/YYYY with the
	// year offset from 2010.
	kindDate

	// kindTileSettings splits [7:13] into on/off state, columns and rows.
	kindTileSettings

	// kindNetwork parses the space-separated fields after [10:] into
	// IP, subnet mask, gateway and DNS.
	kindNetwork

	// kindInputList parses consecutive two-character source codes into a
	// rank-ordered priority list.
	kindInputList

	// kindReboot accepts only the fixed acknowledgement literal.
	kindReboot

	// kindTemperature decodes the two hex characters at [7:9] as degrees
	// Celsius.
	kindTemperature
)

// Command describes one protocol operation: its property key, two-character
// opcode, default request payload and reply decoding rule.
type Command struct {
	Property string
	Opcode   string
	Request  string // payload for a status read, usually "FF"
	Kind     replyKind
	Enum     map[string]string // lookup table for kindEnum variants

	// Monitor marks commands polled every interval regardless of settings.
	Monitor bool

	// Control marks commands with a writable form. Controllable commands
	// are only polled when configuration management is enabled.
	Control bool
}

// commands is the full protocol table.
//
// Opcodes follow the LG RS-232C control reference. "sn"-style commands carry
// a subcommand in the request payload and echo it at [7:9] of the reply.
var commands = []Command{
	{Property: PropPower, Opcode: "ka", Request: "FF", Kind: kindEnum, Enum: powerValues, Monitor: true, Control: true},
	{Property: PropInput, Opcode: "xb", Request: "FF", Kind: kindEnum, Monitor: true, Control: true},
	{Property: PropAspectRatio, Opcode: "kc", Request: "FF", Kind: kindEnum, Enum: aspectValues, Control: true},
	{Property: PropPictureMode, Opcode: "dx", Request: "FF", Kind: kindEnum, Enum: pictureModeValues, Control: true},
	{Property: PropEnergySaving, Opcode: "jq", Request: "FF", Kind: kindEnum, Enum: energySavingValues, Control: true},
	{Property: PropBacklight, Opcode: "mg", Request: "FF", Kind: kindHexInt, Control: true},
	{Property: PropContrast, Opcode: "kg", Request: "FF", Kind: kindHexInt, Control: true},
	{Property: PropBrightness, Opcode: "kh", Request: "FF", Kind: kindHexInt, Control: true},
	{Property: PropSharpness, Opcode: "kk", Request: "FF", Kind: kindHexInt, Control: true},
	{Property: PropScreenColor, Opcode: "ki", Request: "FF", Kind: kindHexInt, Control: true},
	{Property: PropTint, Opcode: "kj", Request: "FF", Kind: kindEnum, Enum: tintValues, Control: true},
	{Property: PropColorTemperature, Opcode: "xu", Request: "FF", Kind: kindHexInt, Control: true},
	{Property: PropBalance, Opcode: "kt", Request: "FF", Kind: kindHexInt, Control: true},
	{Property: PropSoundMode, Opcode: "dy", Request: "FF", Kind: kindEnum, Enum: soundModeValues, Control: true},
	{Property: PropVolume, Opcode: "kf", Request: "FF", Kind: kindHexInt, Control: true},
	{Property: PropMute, Opcode: "ke", Request: "FF", Kind: kindEnum, Enum: muteValues, Control: true},
	{Property: PropIRLock, Opcode: "km", Request: "FF", Kind: kindEnum, Enum: irLockValues, Monitor: true},
	{Property: PropFanStatus, Opcode: "dw", Request: "FF", Kind: kindEnum, Enum: fanStatusValues, Monitor: true},
	{Property: PropLampFault, Opcode: "dp", Request: "FF", Kind: kindEnum, Enum: lampFaultValues, Monitor: true},
	{Property: PropElapsedTime, Opcode: "dl", Request: "FF", Kind: kindHexInt, Monitor: true},
	{Property: PropTemperature, Opcode: "dn", Request: "FF", Kind: kindTemperature, Monitor: true},
	{Property: PropSerialNumber, Opcode: "fy", Request: "FF", Kind: kindSerial, Monitor: true},
	{Property: PropSoftwareVersion, Opcode: "fz", Request: "FF", Kind: kindVersion, Monitor: true},
	{Property: PropPowerManagement, Opcode: "sn", Request: "0c FF", Kind: kindSubEnum, Enum: powerManagementValues, Control: true},
	{Property: PropDPM, Opcode: "fj", Request: "FF", Kind: kindEnum, Enum: dpmValues, Control: true},
	{Property: PropFailoverMode, Opcode: "mi", Request: "FF", Kind: kindEnum, Enum: failoverModeValues, Control: true},
	{Property: PropInputPriority, Opcode: "my", Request: "FF", Kind: kindInputList, Control: true},
	{Property: PropTileSettings, Opcode: "dd", Request: "FF", Kind: kindTileSettings, Control: true},
	{Property: PropTileID, Opcode: "di", Request: "FF", Kind: kindHexInt, Control: true},
	{Property: PropNaturalMode, Opcode: "dj", Request: "FF", Kind: kindEnum, Enum: naturalModeValues, Control: true},
	{Property: PropNaturalSize, Opcode: "sn", Request: "85 FF", Kind: kindSubHexInt, Monitor: true},
	{Property: PropDate, Opcode: "fa", Request: "FF", Kind: kindDate, Control: true},
	{Property: PropTime, Opcode: "fx", Request: "FF", Kind: kindTime, Control: true},
	{Property: PropSyncStatus, Opcode: "su", Request: "FF", Kind: kindEnumWide, Enum: syncStatusValues, Monitor: true},
	{Property: PropNetwork, Opcode: "sn", Request: "82 FF", Kind: kindNetwork, Monitor: true},
	{Property: PropLanguage, Opcode: "fi", Request: "FF", Kind: kindEnum, Enum: languageValues, Monitor: true},
	{Property: PropNoSignalPowerOff, Opcode: "fg", Request: "FF", Kind: kindEnum, Enum: noSignalPowerOffValues, Control: true},
	{Property: PropNoIRPowerOff, Opcode: "mn", Request: "FF", Kind: kindEnum, Enum: noIRPowerOffValues, Control: true},
	{Property: PropBrightnessSize, Opcode: "cd", Request: "FF", Kind: kindEnum, Enum: brightnessSizeValues, Monitor: true},
}

// rebootCommand is write-only and never polled.
var rebootCommand = Command{
	Property: PropReboot,
	Opcode:   "tn",
	Request:  "01",
	Kind:     kindReboot,
	Control:  true,
}

// commandByProperty resolves a property key to its command.
var commandByProperty = func() map[string]Command {
	m := make(map[string]Command, len(commands)+1)
	for _, c := range commands {
		m[c.Property] = c
	}
	m[rebootCommand.Property] = rebootCommand
	return m
}()

// pollSet returns the commands visited once per polling interval.
// Controllable commands are skipped when configuration management is off.
func pollSet(configManagement bool) []Command {
	out := make([]Command, 0, len(commands))
	for _, c := range commands {
		if c.Monitor || (configManagement && c.Control) {
			out = append(out, c)
		}
	}
	return out
}
