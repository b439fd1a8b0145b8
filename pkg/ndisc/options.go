package ndisc

import (
	"encoding/binary"
	"fmt"
	"net"
	"net/netip"
	"strings"
	"time"
)

// Option cursor. The chain was bounds-checked at parse time, so movement
// cannot fail; typed accessors below are only valid while the cursor sits
// on an option of the matching type.

// RewindOptions positions the cursor on the first option and reports
// whether the advertisement carries any.
func (ra *RouterAdvertisement) RewindOptions() bool {
	if len(ra.opts) == 0 {
		ra.cur = -1
		return false
	}
	ra.cur = 0
	return true
}

// NextOption advances past the current option; false when exhausted.
func (ra *RouterAdvertisement) NextOption() bool {
	if ra.cur < 0 || ra.cur >= len(ra.opts) {
		return false
	}
	ra.cur += int(ra.opts[ra.cur+1]) * 8
	return ra.cur < len(ra.opts)
}

// OptionType returns the current option's type tag, or 0 when the cursor
// is not on an option.
func (ra *RouterAdvertisement) OptionType() uint8 {
	if ra.cur < 0 || ra.cur >= len(ra.opts) {
		return 0
	}
	return ra.opts[ra.cur]
}

// OptionRaw returns the current option including its 2-octet type/length
// header, or nil when the cursor is not on an option.
func (ra *RouterAdvertisement) OptionRaw() []byte {
	if ra.cur < 0 || ra.cur >= len(ra.opts) {
		return nil
	}
	return ra.current()
}

func (ra *RouterAdvertisement) current() []byte {
	return ra.opts[ra.cur : ra.cur+int(ra.opts[ra.cur+1])*8]
}

func (ra *RouterAdvertisement) option(want uint8) ([]byte, error) {
	if ra.cur < 0 || ra.cur >= len(ra.opts) {
		return nil, fmt.Errorf("%w: cursor not on an option", ErrOptionMismatch)
	}
	if got := ra.opts[ra.cur]; got != want {
		return nil, fmt.Errorf("%w: option %d, want %d", ErrOptionMismatch, got, want)
	}
	return ra.current(), nil
}

type PrefixInformation struct {
	Prefix            netip.Prefix
	OnLink            bool
	Autonomous        bool
	ValidLifetime     time.Duration
	PreferredLifetime time.Duration
}

const (
	prefixFlagOnLink     = 0x80
	prefixFlagAutonomous = 0x40
)

func (ra *RouterAdvertisement) PrefixInformation() (PrefixInformation, error) {
	opt, err := ra.option(OptPrefixInformation)
	if err != nil {
		return PrefixInformation{}, err
	}

	addr := netip.AddrFrom16([16]byte(opt[16:32]))
	return PrefixInformation{
		Prefix:            netip.PrefixFrom(addr, int(opt[2])),
		OnLink:            opt[3]&prefixFlagOnLink != 0,
		Autonomous:        opt[3]&prefixFlagAutonomous != 0,
		ValidLifetime:     time.Duration(binary.BigEndian.Uint32(opt[4:8])) * time.Second,
		PreferredLifetime: time.Duration(binary.BigEndian.Uint32(opt[8:12])) * time.Second,
	}, nil
}

type RecursiveDNSServers struct {
	Addresses []netip.Addr
	Lifetime  time.Duration
}

func (ra *RouterAdvertisement) RecursiveDNSServers() (RecursiveDNSServers, error) {
	opt, err := ra.option(OptRDNSS)
	if err != nil {
		return RecursiveDNSServers{}, err
	}

	srv := RecursiveDNSServers{
		Lifetime: time.Duration(binary.BigEndian.Uint32(opt[4:8])) * time.Second,
	}
	for off := 8; off < len(opt); off += 16 {
		srv.Addresses = append(srv.Addresses, netip.AddrFrom16([16]byte(opt[off:off+16])))
	}
	return srv, nil
}

type DNSSearchList struct {
	Domains  []string
	Lifetime time.Duration
}

func (ra *RouterAdvertisement) DNSSearchList() (DNSSearchList, error) {
	opt, err := ra.option(OptDNSSL)
	if err != nil {
		return DNSSearchList{}, err
	}

	domains, err := parseDomainNames(opt[8:])
	if err != nil {
		return DNSSearchList{}, err
	}
	return DNSSearchList{
		Domains:  domains,
		Lifetime: time.Duration(binary.BigEndian.Uint32(opt[4:8])) * time.Second,
	}, nil
}

// LinkLayerAddress strips the option header from a source or target
// link-layer address option.
func (ra *RouterAdvertisement) LinkLayerAddress() (net.HardwareAddr, error) {
	if ra.cur < 0 || ra.cur >= len(ra.opts) {
		return nil, fmt.Errorf("%w: cursor not on an option", ErrOptionMismatch)
	}
	if t := ra.opts[ra.cur]; t != OptSourceLinkLayerAddress && t != OptTargetLinkLayerAddress {
		return nil, fmt.Errorf("%w: option %d, want link-layer address", ErrOptionMismatch, t)
	}
	opt := ra.current()
	return net.HardwareAddr(opt[2:]), nil
}

// parseDomainNames decodes RFC 1035 length-prefixed labels without
// compression. The region is zero-padded to the option's 8-octet boundary,
// so stray zero bytes after a terminating label are fine; anything else
// that desynchronizes is a malformed list.
func parseDomainNames(b []byte) ([]string, error) {
	var domains []string
	var labels []string

	for off := 0; off < len(b); {
		n := int(b[off])
		off++
		if n == 0 {
			if len(labels) > 0 {
				domains = append(domains, strings.Join(labels, "."))
				labels = nil
			}
			continue
		}
		if n > maxLabelLen {
			return nil, fmt.Errorf("%w: label length %d", ErrMalformedDomainList, n)
		}
		if off+n > len(b) {
			return nil, fmt.Errorf("%w: label overruns option", ErrMalformedDomainList)
		}
		labels = append(labels, string(b[off:off+n]))
		off += n
	}

	if len(labels) > 0 {
		return nil, fmt.Errorf("%w: unterminated domain", ErrMalformedDomainList)
	}
	if len(domains) == 0 {
		return nil, fmt.Errorf("%w: no domains", ErrMalformedDomainList)
	}
	return domains, nil
}
