package ndisc

import (
	"errors"
	"net/netip"
	"testing"
	"time"
)

var testSender = netip.MustParseAddr("fe80::1")

// Captured advertisement: 180s router lifetime, one /64 prefix, one RDNSS
// server, one search domain, source link-layer address.
func sampleAdvert(flags byte) []byte {
	adv := []byte{
		// fixed header
		0x86, 0x00, 0xde, 0x83, 0x40, flags, 0x00, 0xb4,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		// Prefix Information, length 32
		0x03, 0x04, 0x40, 0xc0, 0x00, 0x00, 0x01, 0xf4,
		0x00, 0x00, 0x01, 0xb8, 0x00, 0x00, 0x00, 0x00,
		0x20, 0x01, 0x0d, 0xb8, 0xde, 0xad, 0xbe, 0xef,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		// RDNSS, length 24
		0x19, 0x03, 0x00, 0x00, 0x00, 0x00, 0x00, 0x3c,
		0x20, 0x01, 0x0d, 0xb8, 0xde, 0xad, 0xbe, 0xef,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x01,
		// DNSSL, length 24: "lab.intra"
		0x1f, 0x03, 0x00, 0x00, 0x00, 0x00, 0x00, 0x3c,
		0x03, 0x6c, 0x61, 0x62, 0x05, 0x69, 0x6e, 0x74,
		0x72, 0x61, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		// Source link-layer address, length 8
		0x01, 0x01, 0x78, 0x2b, 0xcb, 0xb3, 0x6d, 0x53,
	}
	return adv
}

func mustParse(t *testing.T, buf []byte) *RouterAdvertisement {
	t.Helper()
	ra, err := ParseRouterAdvertisement(buf, testSender, time.Now())
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	return ra
}

func TestParseFixedHeader(t *testing.T) {
	now := time.Now()
	ra, err := ParseRouterAdvertisement(sampleAdvert(0xc0), testSender, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if ra.Sender() != testSender {
		t.Errorf("Sender() = %v, want %v", ra.Sender(), testSender)
	}
	if !ra.Managed() || !ra.OtherConfig() {
		t.Errorf("flags 0xc0: Managed()=%v OtherConfig()=%v, want both true", ra.Managed(), ra.OtherConfig())
	}
	if ra.Flags() != FlagManaged|FlagOther {
		t.Errorf("Flags() = 0x%02x, want 0x%02x", ra.Flags(), FlagManaged|FlagOther)
	}
	if hops, ok := ra.HopLimit(); !ok || hops != 64 {
		t.Errorf("HopLimit() = %d, %v, want 64, true", hops, ok)
	}
	if ra.RouterLifetime() != 180*time.Second {
		t.Errorf("RouterLifetime() = %v, want 180s", ra.RouterLifetime())
	}
	if got, want := ra.LifetimeDeadline(), now.Add(180*time.Second); !got.Equal(want) {
		t.Errorf("LifetimeDeadline() = %v, want %v", got, want)
	}
	if ra.Preference() != PreferenceMedium {
		t.Errorf("Preference() = %v, want medium", ra.Preference())
	}
	if _, ok := ra.ReachableTime(); ok {
		t.Error("ReachableTime(): zero wire value should read as absent")
	}
	if _, ok := ra.RetransmitTimer(); ok {
		t.Error("RetransmitTimer(): zero wire value should read as absent")
	}
	if _, ok := ra.MTU(); ok {
		t.Error("MTU(): no MTU option, should read as absent")
	}
}

func TestParseUnspecifiedHopLimit(t *testing.T) {
	adv := sampleAdvert(0)
	adv[4] = 0
	ra := mustParse(t, adv)

	if _, ok := ra.HopLimit(); ok {
		t.Error("HopLimit(): zero wire value should read as absent")
	}
}

func TestParseReachableAndRetransmit(t *testing.T) {
	adv := sampleAdvert(0)
	adv[8], adv[9], adv[10], adv[11] = 0x00, 0x00, 0x75, 0x30 // 30000 ms
	adv[12], adv[13], adv[14], adv[15] = 0x00, 0x00, 0x03, 0xe8 // 1000 ms
	ra := mustParse(t, adv)

	if d, ok := ra.ReachableTime(); !ok || d != 30*time.Second {
		t.Errorf("ReachableTime() = %v, %v, want 30s, true", d, ok)
	}
	if d, ok := ra.RetransmitTimer(); !ok || d != time.Second {
		t.Errorf("RetransmitTimer() = %v, %v, want 1s, true", d, ok)
	}
}

func TestParsePreference(t *testing.T) {
	tests := []struct {
		name  string
		flags byte
		want  Preference
	}{
		{"medium", 0x00, PreferenceMedium},
		{"high", 0x08, PreferenceHigh},
		{"low", 0x18, PreferenceLow},
		{"reserved decodes as medium", 0x10, PreferenceMedium},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ra := mustParse(t, sampleAdvert(tt.flags))
			if ra.Preference() != tt.want {
				t.Errorf("Preference() = %v, want %v", ra.Preference(), tt.want)
			}
		})
	}
}

func TestParseMTUOption(t *testing.T) {
	adv := append(sampleAdvert(0),
		0x05, 0x01, 0x00, 0x00, 0x00, 0x00, 0x05, 0xdc, // MTU 1500
	)
	ra := mustParse(t, adv)

	if mtu, ok := ra.MTU(); !ok || mtu != 1500 {
		t.Errorf("MTU() = %d, %v, want 1500, true", mtu, ok)
	}
}

func TestParseRejects(t *testing.T) {
	truncated := sampleAdvert(0)[:12]

	wrongType := sampleAdvert(0)
	wrongType[0] = 0x85

	wrongCode := sampleAdvert(0)
	wrongCode[1] = 1

	zeroLength := append(sampleAdvert(0), 0x03, 0x00)

	overrun := append(sampleAdvert(0), 0x01, 0x02, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00)

	badPrefixLen := sampleAdvert(0)
	badPrefixLen[18] = 0x90 // 144 > 128

	badMTULen := append(sampleAdvert(0),
		0x05, 0x02, 0x00, 0x00, 0x00, 0x00, 0x05, 0xdc,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	)

	badRDNSSLen := sampleAdvert(0)
	badRDNSSLen[49] = 0x02 // 16 bytes, no room for one address

	tests := []struct {
		name string
		buf  []byte
	}{
		{"truncated header", truncated},
		{"wrong ICMPv6 type", wrongType},
		{"nonzero code", wrongCode},
		{"zero-length option", zeroLength},
		{"option overruns buffer", overrun},
		{"prefix length over 128", badPrefixLen},
		{"bad MTU option length", badMTULen},
		{"bad RDNSS option length", badRDNSSLen},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRouterAdvertisement(tt.buf, testSender, time.Now())
			if !errors.Is(err, ErrMalformed) {
				t.Errorf("got %v, want ErrMalformed", err)
			}
		})
	}
}

func TestTimestampBases(t *testing.T) {
	now := time.Now()
	ra := mustParse(t, sampleAdvert(0))

	if ra.Timestamp().Before(now.Round(0)) {
		t.Errorf("Timestamp() = %v, before parse time %v", ra.Timestamp(), now)
	}
	// The wall timestamp must not carry a monotonic reading; the
	// monotonic one must.
	if got := ra.Timestamp(); got != got.Round(0) {
		t.Error("Timestamp() carries a monotonic clock reading")
	}
	if got := ra.MonotonicTimestamp(); got == got.Round(0) {
		t.Error("MonotonicTimestamp() lost its monotonic clock reading")
	}
}
