package ndisc

import (
	"fmt"
	"net"
	"net/netip"

	"golang.org/x/net/icmp"
	"golang.org/x/net/ipv6"
)

// Transport is the raw ICMPv6 seam between the client and the wire.
// Receive blocks until a datagram arrives or the transport is closed;
// Close unblocks it.
type Transport interface {
	Send(pkt []byte) error
	Receive() ([]byte, netip.Addr, error)
	Close() error
}

// TransportFunc opens a transport bound to an interface index. The client
// uses dialICMP6 unless a test substitutes its own.
type TransportFunc func(ifindex int) (Transport, error)

var (
	allNodesGroup  = net.IPAddr{IP: net.ParseIP("ff02::1")}
	allRoutersAddr = net.IPAddr{IP: net.ParseIP("ff02::2")}
)

type icmp6Transport struct {
	conn    *icmp.PacketConn
	pc      *ipv6.PacketConn
	ifindex int
	readBuf []byte
}

func dialICMP6(ifindex int) (Transport, error) {
	ifi, err := net.InterfaceByIndex(ifindex)
	if err != nil {
		return nil, fmt.Errorf("interface %d: %w", ifindex, err)
	}

	conn, err := icmp.ListenPacket("ip6:ipv6-icmp", "::")
	if err != nil {
		return nil, fmt.Errorf("open ICMPv6 socket: %w", err)
	}

	pc := conn.IPv6PacketConn()

	var filter ipv6.ICMPFilter
	filter.SetAll(true)
	filter.Accept(ipv6.ICMPTypeRouterAdvertisement)
	if err := pc.SetICMPFilter(&filter); err != nil {
		conn.Close()
		return nil, fmt.Errorf("set ICMP filter: %w", err)
	}

	if err := pc.SetControlMessage(ipv6.FlagHopLimit|ipv6.FlagInterface, true); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable control messages: %w", err)
	}

	// RFC 4861 §6.1.2: discovery packets carry hop limit 255.
	if err := pc.SetMulticastHopLimit(255); err != nil {
		conn.Close()
		return nil, fmt.Errorf("set multicast hop limit: %w", err)
	}
	if err := pc.SetMulticastInterface(ifi); err != nil {
		conn.Close()
		return nil, fmt.Errorf("set multicast interface: %w", err)
	}
	if err := pc.JoinGroup(ifi, &allNodesGroup); err != nil {
		conn.Close()
		return nil, fmt.Errorf("join all-nodes group: %w", err)
	}

	return &icmp6Transport{
		conn:    conn,
		pc:      pc,
		ifindex: ifindex,
		readBuf: make([]byte, 1500),
	}, nil
}

func (t *icmp6Transport) Send(pkt []byte) error {
	cm := &ipv6.ControlMessage{IfIndex: t.ifindex, HopLimit: 255}
	_, err := t.pc.WriteTo(pkt, cm, &allRoutersAddr)
	return err
}

// Receive drops datagrams that fail the RFC 4861 acceptance checks (wrong
// interface, hop limit not 255, sender not link-local) and keeps reading.
func (t *icmp6Transport) Receive() ([]byte, netip.Addr, error) {
	for {
		n, cm, src, err := t.pc.ReadFrom(t.readBuf)
		if err != nil {
			return nil, netip.Addr{}, err
		}
		if cm != nil {
			if cm.IfIndex != 0 && cm.IfIndex != t.ifindex {
				continue
			}
			if cm.HopLimit != 255 {
				continue
			}
		}

		sender, ok := senderAddr(src)
		if !ok || !sender.IsLinkLocalUnicast() {
			continue
		}

		out := make([]byte, n)
		copy(out, t.readBuf[:n])
		return out, sender, nil
	}
}

func (t *icmp6Transport) Close() error {
	return t.conn.Close()
}

func senderAddr(src net.Addr) (netip.Addr, bool) {
	ipAddr, ok := src.(*net.IPAddr)
	if !ok {
		return netip.Addr{}, false
	}
	addr, ok := netip.AddrFromSlice(ipAddr.IP)
	if !ok {
		return netip.Addr{}, false
	}
	return addr.Unmap(), true
}
