package lglcd

import (
	"testing"
)

func TestPropertyCache_SuccessResetsFailures(t *testing.T) {
	c := newPropertyCache(3)

	c.RecordSuccess(PropPower, map[string]string{PropPower: "On"})
	c.RecordFailure(PropPower)
	c.RecordFailure(PropPower)
	if got := c.FailureCount(PropPower); got != 2 {
		t.Fatalf("FailureCount() = %d, want 2", got)
	}

	c.RecordSuccess(PropPower, map[string]string{PropPower: "Off"})
	if got := c.FailureCount(PropPower); got != 0 {
		t.Errorf("FailureCount() after success = %d, want 0", got)
	}
	if v, _ := c.Value(PropPower); v != "Off" {
		t.Errorf("Value() = %q, want %q", v, "Off")
	}
}

func TestPropertyCache_ExpiryAtLifetime(t *testing.T) {
	c := newPropertyCache(3)
	c.RecordSuccess(PropVolume, map[string]string{PropVolume: "30"})

	for i := 0; i < 2; i++ {
		if expired := c.RecordFailure(PropVolume); expired {
			t.Fatalf("expired after %d failures, lifetime is 3", i+1)
		}
		if v, _ := c.Value(PropVolume); v != "30" {
			t.Fatalf("value lost before lifetime: %q", v)
		}
	}

	if expired := c.RecordFailure(PropVolume); !expired {
		t.Fatal("third failure should expire the value")
	}
	if v, _ := c.Value(PropVolume); v != ValueNA {
		t.Errorf("Value() after expiry = %q, want %q", v, ValueNA)
	}
	if got := c.FailureCount(PropVolume); got != 0 {
		t.Errorf("FailureCount() after expiry = %d, want 0", got)
	}
	if c.Live(PropVolume) {
		t.Error("Live() = true for expired property")
	}
}

func TestPropertyCache_GroupInvalidation(t *testing.T) {
	tests := []struct {
		name    string
		command string
		seed    map[string]string
		expired []string
	}{
		{
			name:    "network quad",
			command: PropNetwork,
			seed: map[string]string{
				PropIPAddress:  "172.0.1.1",
				PropSubnetMask: "255.255.255.0",
				PropGateway:    "172.0.1.254",
				PropDNSServer:  "8.8.8.8",
			},
			expired: []string{PropIPAddress, PropSubnetMask, PropGateway, PropDNSServer},
		},
		{
			name:    "tile settings drag natural size along",
			command: PropTileSettings,
			seed: map[string]string{
				PropTileColumns: "3",
				PropTileRows:    "2",
				PropTileMode:    "On",
				PropTileID:      "4",
				PropNaturalMode: "On",
				PropNaturalSize: "50",
			},
			expired: []string{PropTileColumns, PropTileRows, PropTileMode, PropTileID, PropNaturalMode, PropNaturalSize},
		},
		{
			name:    "date drags time along",
			command: PropDate,
			seed: map[string]string{
				PropDate: "1/31/2022",
				PropTime: "11:59 PM",
			},
			expired: []string{PropDate, PropTime},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newPropertyCache(1)
			c.RecordSuccess(tt.command, tt.seed)

			if !c.RecordFailure(tt.command) {
				t.Fatal("RecordFailure() should expire at lifetime 1")
			}
			for _, prop := range tt.expired {
				if v, _ := c.Value(prop); v != ValueNA {
					t.Errorf("%s = %q after group expiry, want %q", prop, v, ValueNA)
				}
			}
		})
	}
}

func TestPropertyCache_RemoveDeletesEntirely(t *testing.T) {
	c := newPropertyCache(2)
	c.RecordSuccess(PropTileSettings, map[string]string{PropTileID: "4", PropNaturalMode: "On"})

	c.Remove(PropTileID, PropNaturalMode)

	if _, ok := c.Value(PropTileID); ok {
		t.Error("removed property still present")
	}
	if len(c.Snapshot()) != 0 {
		t.Errorf("Snapshot() has %d entries after removal, want 0", len(c.Snapshot()))
	}
}

func TestPropertyCache_Clear(t *testing.T) {
	c := newPropertyCache(2)
	c.RecordSuccess(PropPower, map[string]string{PropPower: "On"})
	c.RecordFailure(PropVolume)

	c.Clear()

	if len(c.Snapshot()) != 0 {
		t.Error("Snapshot() not empty after Clear()")
	}
	if got := c.FailureCount(PropVolume); got != 0 {
		t.Errorf("FailureCount() = %d after Clear(), want 0", got)
	}
}
