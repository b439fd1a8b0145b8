package ndisc

import (
	"fmt"
	"net"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

// buildSolicitation serializes a Router Solicitation with a source
// link-layer address option. The checksum stays zero; the kernel fills it
// in on raw ICMPv6 sockets.
func buildSolicitation(mac net.HardwareAddr) ([]byte, error) {
	icmpv6 := &layers.ICMPv6{
		TypeCode: layers.CreateICMPv6TypeCode(layers.ICMPv6TypeRouterSolicitation, 0),
	}

	rs := &layers.ICMPv6RouterSolicitation{}
	if len(mac) > 0 {
		rs.Options = append(rs.Options, layers.ICMPv6Option{
			Type: layers.ICMPv6OptSourceAddress,
			Data: mac,
		})
	}

	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{FixLengths: true}
	if err := gopacket.SerializeLayers(buf, opts, icmpv6, rs); err != nil {
		return nil, fmt.Errorf("serialize router solicitation: %w", err)
	}
	return buf.Bytes(), nil
}
