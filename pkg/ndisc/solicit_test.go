package ndisc

import (
	"bytes"
	"net"
	"testing"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

func TestBuildSolicitation(t *testing.T) {
	mac := net.HardwareAddr{0x41, 0x42, 0x43, 0x31, 0x32, 0x33}

	pkt, err := buildSolicitation(mac)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 4-byte ICMPv6 header, 4 reserved bytes, 8-byte source LLA option.
	if len(pkt) != 16 {
		t.Fatalf("packet length = %d, want 16", len(pkt))
	}
	if pkt[0] != icmpTypeRouterSolicitation || pkt[1] != 0 {
		t.Errorf("type/code = %d/%d, want %d/0", pkt[0], pkt[1], icmpTypeRouterSolicitation)
	}
	if pkt[8] != OptSourceLinkLayerAddress || pkt[9] != 1 {
		t.Errorf("option header = %d/%d, want %d/1", pkt[8], pkt[9], OptSourceLinkLayerAddress)
	}
	if !bytes.Equal(pkt[10:16], mac) {
		t.Errorf("option payload = %v, want %v", pkt[10:16], mac)
	}
}

func TestBuildSolicitationDecodes(t *testing.T) {
	mac := net.HardwareAddr{0xde, 0xad, 0xbe, 0xef, 0x00, 0x01}

	pkt, err := buildSolicitation(mac)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	p := gopacket.NewPacket(pkt, layers.LayerTypeICMPv6, gopacket.Default)
	rsLayer := p.Layer(layers.LayerTypeICMPv6RouterSolicitation)
	if rsLayer == nil {
		t.Fatalf("decode failed: %v", p.ErrorLayer())
	}

	rs := rsLayer.(*layers.ICMPv6RouterSolicitation)
	if len(rs.Options) != 1 {
		t.Fatalf("got %d options, want 1", len(rs.Options))
	}
	if rs.Options[0].Type != layers.ICMPv6OptSourceAddress {
		t.Errorf("option type = %d, want source link-layer address", rs.Options[0].Type)
	}
	if !bytes.Equal(rs.Options[0].Data, mac) {
		t.Errorf("option data = %v, want %v", rs.Options[0].Data, mac)
	}
}

func TestBuildSolicitationLongLinkAddr(t *testing.T) {
	// EUI-64 addresses are 8 bytes; the option pads to the next 8-octet
	// boundary.
	mac := net.HardwareAddr{1, 2, 3, 4, 5, 6, 7, 8}

	pkt, err := buildSolicitation(mac)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pkt) != 24 {
		t.Fatalf("packet length = %d, want 24", len(pkt))
	}
	if pkt[9] != 2 {
		t.Errorf("option length = %d units, want 2", pkt[9])
	}
}
