package lglcd

import (
	"errors"
	"testing"
)

func TestDecodeReply_SingleProperty(t *testing.T) {
	tests := []struct {
		name     string
		property string
		raw      string
		want     string
	}{
		{
			name:     "power on",
			property: PropPower,
			raw:      "a 01 OK01x",
			want:     "On",
		},
		{
			name:     "input hdmi1 primary code",
			property: PropInput,
			raw:      "b 01 OK90x",
			want:     "HDMI1",
		},
		{
			name:     "input hdmi1 alternate code",
			property: PropInput,
			raw:      "b 01 OKA0x",
			want:     "HDMI1",
		},
		{
			name:     "backlight hex integer",
			property: PropBacklight,
			raw:      "g 01 OK4bx",
			want:     "75",
		},
		{
			name:     "volume zero",
			property: PropVolume,
			raw:      "f 01 OK00x",
			want:     "0",
		},
		{
			name:     "color temperature rescaled to kelvin",
			property: PropColorTemperature,
			raw:      "u 01 OK32x",
			want:     "8100",
		},
		{
			name:     "temperature celsius",
			property: PropTemperature,
			raw:      "n 01 OK26x",
			want:     "38",
		},
		{
			name:     "elapsed time hours",
			property: PropElapsedTime,
			raw:      "l 01 OKffx",
			want:     "255",
		},
		{
			name:     "serial number verbatim",
			property: PropSerialNumber,
			raw:      "y 01 OK902MXCD0S692x",
			want:     "902MXCD0S692",
		},
		{
			name:     "software version dotted",
			property: PropSoftwareVersion,
			raw:      "z 01 OK030205x",
			want:     "03.02.05",
		},
		{
			name:     "power management subcommand value",
			property: PropPowerManagement,
			raw:      "n 01 OK0c01x",
			want:     "Sustain Aspect Ratio",
		},
		{
			name:     "natural size subcommand integer",
			property: PropNaturalSize,
			raw:      "n 01 OK8532x",
			want:     "50",
		},
		{
			name:     "sync status wide enum",
			property: PropSyncStatus,
			raw:      "u 01 OK0001x",
			want:     "Master",
		},
		{
			name:     "time before midnight",
			property: PropTime,
			raw:      "x 01 OK173B00x",
			want:     "11:59 PM",
		},
		{
			name:     "time hour zero renders noon",
			property: PropTime,
			raw:      "x 01 OK003B00x",
			want:     "12:59 PM",
		},
		{
			name:     "time morning",
			property: PropTime,
			raw:      "x 01 OK091E00x",
			want:     "9:30 AM",
		},
		{
			name:     "date year offset from 2010",
			property: PropDate,
			raw:      "a 01 OK0c011Fx",
			want:     "1/31/2022",
		},
		{
			name:     "tint neutral midpoint",
			property: PropTint,
			raw:      "j 01 OK32x",
			want:     "0",
		},
		{
			name:     "tint full red bias",
			property: PropTint,
			raw:      "j 01 OK00x",
			want:     "R50",
		},
		{
			name:     "language enum",
			property: PropLanguage,
			raw:      "i 01 OK03x",
			want:     "English",
		},
		{
			name:     "priority list keeps play via url rank",
			property: PropInputPriority,
			raw:      "y 01 OK90E380C0x",
			want:     "HDMI1 > Play via URL > DVI-D > DisplayPort",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := commandByProperty[tt.property]
			values, err := decodeReply(cmd, tt.raw, "01", false)
			if err != nil {
				t.Fatalf("decodeReply() unexpected error: %v", err)
			}
			if got := values[tt.property]; got != tt.want {
				t.Errorf("%s = %q, want %q", tt.property, got, tt.want)
			}
		})
	}
}

func TestDecodeReply_TileSettings(t *testing.T) {
	cmd := commandByProperty[PropTileSettings]
	values, err := decodeReply(cmd, "d 01 OK010304x", "01", false)
	if err != nil {
		t.Fatalf("decodeReply() unexpected error: %v", err)
	}

	want := map[string]string{
		PropTileMode:    "On",
		PropTileColumns: "3",
		PropTileRows:    "4",
	}
	for prop, expected := range want {
		if values[prop] != expected {
			t.Errorf("%s = %q, want %q", prop, values[prop], expected)
		}
	}
}

func TestDecodeReply_Network(t *testing.T) {
	cmd := commandByProperty[PropNetwork]
	raw := "n 01 OK84 172000001001 255255255000 172000001254 008008008008x"

	values, err := decodeReply(cmd, raw, "01", false)
	if err != nil {
		t.Fatalf("decodeReply() unexpected error: %v", err)
	}

	want := map[string]string{
		PropIPAddress:  "172.0.1.1",
		PropSubnetMask: "255.255.255.0",
		PropGateway:    "172.0.1.254",
		PropDNSServer:  "8.8.8.8",
	}
	for prop, expected := range want {
		if values[prop] != expected {
			t.Errorf("%s = %q, want %q", prop, values[prop], expected)
		}
	}
}

func TestDecodeReply_FanStatusNegativeAck(t *testing.T) {
	// On fanless panels NG is a reading, not a failure.
	cmd := commandByProperty[PropFanStatus]
	values, err := decodeReply(cmd, "w 01 NG01x", "01", true)
	if err != nil {
		t.Fatalf("decodeReply() unexpected error: %v", err)
	}
	if got := values[PropFanStatus]; got != ValueNotSupported {
		t.Errorf("fan_status = %q, want %q", got, ValueNotSupported)
	}
}

func TestDecodeReply_NegativeAckOtherCommand(t *testing.T) {
	cmd := commandByProperty[PropPower]
	if _, err := decodeReply(cmd, "a 01 NG01x", "01", true); !errors.Is(err, ErrNegativeAck) {
		t.Errorf("decodeReply() error = %v, want ErrNegativeAck", err)
	}
}

func TestDecodeReply_Reboot(t *testing.T) {
	values, err := decodeReply(rebootCommand, "n 01 OK01x", "01", false)
	if err != nil {
		t.Fatalf("decodeReply() unexpected error: %v", err)
	}
	if got := values[PropReboot]; got != "Ok" {
		t.Errorf("reboot = %q, want %q", got, "Ok")
	}

	if _, err := decodeReply(rebootCommand, "n 01 OK02x", "01", false); !errors.Is(err, ErrDecodingFailed) {
		t.Errorf("unexpected ack accepted: %v", err)
	}
}

func TestDecodeReply_Errors(t *testing.T) {
	tests := []struct {
		name     string
		property string
		raw      string
		wantErr  error
	}{
		{
			name:     "unknown input code",
			property: PropInput,
			raw:      "b 01 OKZZx",
			wantErr:  ErrDecodingFailed,
		},
		{
			name:     "unknown enum code",
			property: PropPictureMode,
			raw:      "x 01 OK7Fx",
			wantErr:  ErrDecodingFailed,
		},
		{
			name:     "payload not hex",
			property: PropBacklight,
			raw:      "g 01 OKZZx",
			wantErr:  ErrDecodingFailed,
		},
		{
			name:     "truncated payload",
			property: PropSerialNumber,
			raw:      "y 01 OK902x",
			wantErr:  ErrShortReply,
		},
		{
			name:     "network missing fields",
			property: PropNetwork,
			raw:      "n 01 OK84 172000001001x",
			wantErr:  ErrDecodingFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := commandByProperty[tt.property]
			if _, err := decodeReply(cmd, tt.raw, "01", false); !errors.Is(err, tt.wantErr) {
				t.Errorf("decodeReply() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
