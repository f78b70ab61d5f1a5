package lglcd

import "fmt"

// Property keys exposed in snapshots, API paths and MQTT payloads.
//
// Keys decoded from a single command share the command's property name;
// compound replies (tile settings, network) fan out into several keys.
const (
	PropPower            = "power"
	PropInput            = "input"
	PropAspectRatio      = "aspect_ratio"
	PropPictureMode      = "picture_mode"
	PropEnergySaving     = "energy_saving"
	PropBacklight        = "backlight"
	PropContrast         = "contrast"
	PropBrightness       = "brightness"
	PropSharpness        = "sharpness"
	PropScreenColor      = "screen_color"
	PropTint             = "tint"
	PropColorTemperature = "color_temperature"
	PropBalance          = "balance"
	PropSoundMode        = "sound_mode"
	PropVolume           = "volume"
	PropMute             = "mute"
	PropIRLock           = "ir_lock"
	PropFanStatus        = "fan_status"
	PropLampFault        = "lamp_fault"
	PropElapsedTime      = "elapsed_time"
	PropTemperature      = "temperature"
	PropSerialNumber     = "serial_number"
	PropSoftwareVersion  = "software_version"
	PropPowerManagement  = "power_management"
	PropDPM              = "dpm"
	PropFailoverMode     = "failover_mode"
	PropInputPriority    = "input_priority"
	PropTileSettings     = "tile_settings"
	PropTileMode         = "tile_mode"
	PropTileColumns      = "tile_columns"
	PropTileRows         = "tile_rows"
	PropTileID           = "tile_id"
	PropNaturalMode      = "natural_mode"
	PropNaturalSize      = "natural_size"
	PropDate             = "date"
	PropTime             = "time"
	PropSyncStatus       = "sync_status"
	PropNetwork          = "network"
	PropIPAddress        = "ip_address"
	PropSubnetMask       = "subnet_mask"
	PropGateway          = "gateway"
	PropDNSServer        = "dns_server"
	PropLanguage         = "language"
	PropNoSignalPowerOff = "no_signal_power_off"
	PropNoIRPowerOff     = "no_ir_power_off"
	PropBrightnessSize   = "brightness_size"
	PropReboot           = "reboot"
)

// ValueNA marks a property whose cached value has expired or was never read.
const ValueNA = "N/A"

// ValueNotSupported is reported for the fan status when the panel answers NG,
// which on fanless models is a valid reading rather than a failure.
const ValueNotSupported = "Not Supported"

// InputSource describes one selectable input. Most digital inputs carry two
// wire encodings (DTV and PC label space); Code is the canonical one and Alt
// the fallback tried when the panel rejects the first.
type InputSource struct {
	Name string
	Code string
	Alt  string
}

// PlayViaURLName is the web playback pseudo-input. It can be reported as the
// active input but is excluded from priority reordering and dropdowns.
const PlayViaURLName = "Play via URL"

// inputSources is the full input table in panel order.
var inputSources = []InputSource{
	{Name: "AV", Code: "20"},
	{Name: "Component", Code: "40"},
	{Name: "RGB", Code: "60"},
	{Name: "DVI-D", Code: "80", Alt: "70"},
	{Name: "HDMI1", Code: "90", Alt: "A0"},
	{Name: "HDMI2", Code: "91", Alt: "A1"},
	{Name: "HDMI3", Code: "92", Alt: "A2"},
	{Name: "OPS", Code: "98", Alt: "A8"},
	{Name: "DisplayPort", Code: "C0", Alt: "D0"},
	{Name: "SuperSign webOS Player", Code: "E0"},
	{Name: "Others", Code: "E1"},
	{Name: "Multi Screen", Code: "E2"},
	{Name: PlayViaURLName, Code: "E3"},
}

// inputByCode resolves either encoding of an input to its source entry.
var inputByCode = func() map[string]InputSource {
	m := make(map[string]InputSource, len(inputSources)*2)
	for _, s := range inputSources {
		m[s.Code] = s
		if s.Alt != "" {
			m[s.Alt] = s
		}
	}
	return m
}()

// inputByName resolves a display name back to its source entry.
var inputByName = func() map[string]InputSource {
	m := make(map[string]InputSource, len(inputSources))
	for _, s := range inputSources {
		m[s.Name] = s
	}
	return m
}()

// Enum tables for single-byte reply payloads. The two hex characters at the
// payload offset index directly into these maps.
var (
	powerValues = map[string]string{
		"00": "Off",
		"01": "On",
	}

	aspectValues = map[string]string{
		"01": "4:3",
		"02": "16:9",
		"04": "Zoom",
		"06": "Set By Program",
		"09": "Just Scan",
		"10": "Cinema Zoom 1",
	}

	pictureModeValues = map[string]string{
		"00": "Vivid",
		"01": "Standard",
		"02": "Cinema",
		"03": "Sport",
		"04": "Game",
		"05": "Expert 1",
		"06": "Expert 2",
		"08": "APS",
	}

	energySavingValues = map[string]string{
		"00": "Off",
		"01": "Minimum",
		"02": "Medium",
		"03": "Maximum",
		"04": "Auto",
		"05": "Screen Off",
	}

	soundModeValues = map[string]string{
		"01": "Standard",
		"02": "Music",
		"03": "Cinema",
		"04": "Sport",
		"05": "Game",
	}

	muteValues = map[string]string{
		"00": "On",
		"01": "Off",
	}

	irLockValues = map[string]string{
		"00": "Off",
		"01": "On",
	}

	fanStatusValues = map[string]string{
		"00": "Faulty",
		"01": "Ok",
	}

	lampFaultValues = map[string]string{
		"00": "Faulty",
		"01": "Ok",
	}

	failoverModeValues = map[string]string{
		"00": "Off",
		"01": "Auto",
		"02": "Manual",
	}

	tileModeValues = map[string]string{
		"00": "Off",
		"01": "On",
	}

	naturalModeValues = map[string]string{
		"00": "Off",
		"01": "On",
	}

	dpmValues = map[string]string{
		"00": "Off",
		"01": "5 Seconds",
		"02": "10 Seconds",
		"03": "15 Seconds",
		"04": "1 Minute",
		"05": "3 Minutes",
		"06": "5 Minutes",
		"07": "10 Minutes",
	}

	powerManagementValues = map[string]string{
		"00": "Power Off",
		"01": "Sustain Aspect Ratio",
		"02": "Screen Off",
		"03": "Screen Off Always",
		"04": "Screen Off And Backlight On",
	}

	noSignalPowerOffValues = map[string]string{
		"00": "Off",
		"01": "On",
	}

	noIRPowerOffValues = map[string]string{
		"00": "Off",
		"01": "On",
	}

	brightnessSizeValues = map[string]string{
		"00": "Off",
		"01": "Small",
		"02": "Medium",
		"03": "Large",
	}

	languageValues = map[string]string{
		"00": "Czech",
		"01": "Danish",
		"02": "German",
		"03": "English",
		"04": "Spanish",
		"05": "Greek",
		"06": "French",
		"07": "Italian",
		"08": "Dutch",
		"09": "Norwegian",
		"0A": "Portuguese",
		"0B": "Portuguese (Brazil)",
		"0C": "Russian",
		"0D": "Finnish",
		"0E": "Swedish",
		"0F": "Korean",
		"10": "Chinese",
		"11": "Japanese",
	}

	// syncStatusValues indexes on the four-character payload at [7:11].
	syncStatusValues = map[string]string{
		"0000": "Slave",
		"0001": "Master",
	}
)

// tintValues maps the panel's 0x00-0x64 tint steps onto the on-screen
// R50..G50 scale: 0x00 is full red bias, 0x32 the neutral midpoint, 0x64
// full green bias.
var tintValues = func() map[string]string {
	m := make(map[string]string, 101)
	for i := 0; i <= 100; i++ {
		code := fmt.Sprintf("%02X", i)
		switch {
		case i < 50:
			m[code] = fmt.Sprintf("R%d", 50-i)
		case i == 50:
			m[code] = "0"
		default:
			m[code] = fmt.Sprintf("G%d", i-50)
		}
	}
	return m
}()

// dateYearBase is the year the panel's date field counts from.
const dateYearBase = 2010

// Color temperature rescaling bounds. The panel reports a raw step in
// [0, 100]; the UI works in Kelvin.
const (
	colorTempDeviceMin = 0
	colorTempDeviceMax = 100
	colorTempUIMin     = 3200
	colorTempUIMax     = 13000
)

// colorTempToUI converts a raw panel step to Kelvin. An out-of-range or
// unreadable raw value maps to 0.
func colorTempToUI(raw int) int {
	if raw < colorTempDeviceMin || raw > colorTempDeviceMax {
		return 0
	}
	span := colorTempUIMax - colorTempUIMin
	return colorTempUIMin + raw*span/(colorTempDeviceMax-colorTempDeviceMin)
}

// colorTempToDevice converts a Kelvin value to the nearest raw panel step,
// clamping to the writable range.
func colorTempToDevice(kelvin int) int {
	if kelvin <= colorTempUIMin {
		return colorTempDeviceMin
	}
	if kelvin >= colorTempUIMax {
		return colorTempDeviceMax
	}
	span := colorTempUIMax - colorTempUIMin
	return (kelvin - colorTempUIMin) * (colorTempDeviceMax - colorTempDeviceMin) / span
}

// reverseLookup finds the wire code for a display value in an enum table.
func reverseLookup(table map[string]string, value string) (string, bool) {
	for code, v := range table {
		if v == value {
			return code, true
		}
	}
	return "", false
}
