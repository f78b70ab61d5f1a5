package lglcd

import (
	"errors"
	"testing"
)

func TestEncodeRequest(t *testing.T) {
	tests := []struct {
		name      string
		opcode    string
		monitorID string
		payload   string
		want      string
	}{
		{
			name:      "power status read",
			opcode:    "ka",
			monitorID: "01",
			payload:   "FF",
			want:      "ka 01 FF\r",
		},
		{
			name:      "subcommand read",
			opcode:    "sn",
			monitorID: "01",
			payload:   "82 FF",
			want:      "sn 01 82 FF\r",
		},
		{
			name:      "volume write",
			opcode:    "kf",
			monitorID: "0A",
			payload:   "1e",
			want:      "kf 0A 1e\r",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := string(EncodeRequest(tt.opcode, tt.monitorID, tt.payload))
			if got != tt.want {
				t.Errorf("EncodeRequest() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseReply(t *testing.T) {
	tests := []struct {
		name    string
		opcode  string
		frame   string
		allowNG bool
		wantRaw string
		wantNG  bool
		wantErr error
	}{
		{
			name:    "ok reply",
			opcode:  "ka",
			frame:   "a 01 OK01x",
			wantRaw: "a 01 OK01x",
		},
		{
			name:    "reference frame",
			opcode:  "dw",
			frame:   "w 01 OK00x",
			wantRaw: "w 01 OK00x",
		},
		{
			name:    "negative ack",
			opcode:  "ka",
			frame:   "a 01 NG01x",
			wantErr: ErrNegativeAck,
		},
		{
			name:    "negative ack allowed",
			opcode:  "dw",
			frame:   "w 01 NG01x",
			allowNG: true,
			wantRaw: "w 01 NG01x",
			wantNG:  true,
		},
		{
			name:    "opcode echo mismatch",
			opcode:  "ka",
			frame:   "b 01 OK01x",
			wantErr: ErrUnexpectedReply,
		},
		{
			name:    "too short",
			opcode:  "ka",
			frame:   "a 01x",
			wantErr: ErrShortReply,
		},
		{
			name:    "missing terminator",
			opcode:  "ka",
			frame:   "a 01 OK01",
			wantErr: ErrShortReply,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, ng, err := ParseReply(tt.opcode, []byte(tt.frame), tt.allowNG)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ParseReply() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseReply() unexpected error: %v", err)
			}
			if raw != tt.wantRaw {
				t.Errorf("raw = %q, want %q", raw, tt.wantRaw)
			}
			if ng != tt.wantNG {
				t.Errorf("ng = %v, want %v", ng, tt.wantNG)
			}
		})
	}
}
