package ndisc

import (
	"encoding/binary"
	"fmt"
	"net/netip"
	"time"
)

// RouterAdvertisement is an immutable snapshot of one received RA. It is
// owned by the callback invocation that delivered it; callers that need it
// longer copy the fields they care about.
type RouterAdvertisement struct {
	sender    netip.Addr
	wallTime  time.Time
	monoTime  time.Time
	hopLimit  uint8
	flags     uint8
	pref      Preference
	lifetime  time.Duration
	reachable time.Duration
	retrans   time.Duration
	mtu       uint32
	opts      []byte

	cur int // option cursor offset, -1 before RewindOptions
}

const (
	// RA flags octet.
	FlagManaged uint8 = 0x80
	FlagOther   uint8 = 0x40
)

// ParseRouterAdvertisement validates the fixed header and the structural
// integrity of the option chain. The checksum is assumed already verified
// by the kernel. now stamps the receive instant on both clock bases.
func ParseRouterAdvertisement(buf []byte, sender netip.Addr, now time.Time) (*RouterAdvertisement, error) {
	if len(buf) < advertHeaderLen {
		return nil, fmt.Errorf("%w: truncated header (%d bytes)", ErrMalformed, len(buf))
	}
	if buf[0] != icmpTypeRouterAdvertisement || buf[1] != 0 {
		return nil, fmt.Errorf("%w: type %d code %d", ErrMalformed, buf[0], buf[1])
	}

	raw := make([]byte, len(buf))
	copy(raw, buf)

	ra := &RouterAdvertisement{
		sender:    sender,
		wallTime:  now.Round(0),
		monoTime:  now,
		hopLimit:  raw[4],
		flags:     raw[5],
		lifetime:  time.Duration(binary.BigEndian.Uint16(raw[6:8])) * time.Second,
		reachable: time.Duration(binary.BigEndian.Uint32(raw[8:12])) * time.Millisecond,
		retrans:   time.Duration(binary.BigEndian.Uint32(raw[12:16])) * time.Millisecond,
		opts:      raw[advertHeaderLen:],
		cur:       -1,
	}

	ra.pref = Preference(raw[5]>>3) & 3
	if ra.pref == preferenceReserved {
		ra.pref = PreferenceMedium
	}

	if err := ra.validateOptions(); err != nil {
		return nil, err
	}
	return ra, nil
}

// validateOptions walks the whole chain once so that cursor movement can
// never desynchronize or run out of bounds afterwards. Structural length
// rules are enforced per type; DNSSL content is decoded lazily.
func (ra *RouterAdvertisement) validateOptions() error {
	for off := 0; off < len(ra.opts); {
		if len(ra.opts)-off < 2 {
			return fmt.Errorf("%w: truncated option at offset %d", ErrMalformed, off)
		}
		t := ra.opts[off]
		l := int(ra.opts[off+1]) * 8
		if l == 0 {
			return fmt.Errorf("%w: zero-length option %d", ErrMalformed, t)
		}
		if off+l > len(ra.opts) {
			return fmt.Errorf("%w: option %d overruns buffer", ErrMalformed, t)
		}

		switch t {
		case OptPrefixInformation:
			if l != 32 {
				return fmt.Errorf("%w: prefix option length %d", ErrMalformed, l)
			}
			if ra.opts[off+2] > 128 {
				return fmt.Errorf("%w: prefix length %d", ErrMalformed, ra.opts[off+2])
			}
		case OptMTU:
			if l != 8 {
				return fmt.Errorf("%w: MTU option length %d", ErrMalformed, l)
			}
			if ra.mtu == 0 {
				ra.mtu = binary.BigEndian.Uint32(ra.opts[off+4 : off+8])
			}
		case OptRDNSS:
			if l < 24 || (l-8)%16 != 0 {
				return fmt.Errorf("%w: RDNSS option length %d", ErrMalformed, l)
			}
		case OptDNSSL:
			if l < 16 {
				return fmt.Errorf("%w: DNSSL option length %d", ErrMalformed, l)
			}
		}

		off += l
	}
	return nil
}

func (ra *RouterAdvertisement) Sender() netip.Addr {
	return ra.sender
}

// Timestamp is the wall-clock receive instant.
func (ra *RouterAdvertisement) Timestamp() time.Time {
	return ra.wallTime
}

// MonotonicTimestamp carries the monotonic clock reading of the same
// instant, suitable for duration arithmetic across wall-clock steps.
func (ra *RouterAdvertisement) MonotonicTimestamp() time.Time {
	return ra.monoTime
}

// HopLimit reports false when the router did not advertise one (wire
// value 0).
func (ra *RouterAdvertisement) HopLimit() (uint8, bool) {
	return ra.hopLimit, ra.hopLimit != 0
}

func (ra *RouterAdvertisement) Flags() uint8 {
	return ra.flags & (FlagManaged | FlagOther)
}

func (ra *RouterAdvertisement) Managed() bool {
	return ra.flags&FlagManaged != 0
}

func (ra *RouterAdvertisement) OtherConfig() bool {
	return ra.flags&FlagOther != 0
}

func (ra *RouterAdvertisement) Preference() Preference {
	return ra.pref
}

// RouterLifetime is how long the sender is willing to act as a default
// router. Zero means it is not one.
func (ra *RouterAdvertisement) RouterLifetime() time.Duration {
	return ra.lifetime
}

// LifetimeDeadline derives the absolute expiry from the captured receive
// instant, not from the clock at query time.
func (ra *RouterAdvertisement) LifetimeDeadline() time.Time {
	return ra.wallTime.Add(ra.lifetime)
}

// Deadline anchors any advertised lifetime to the receive instant.
func (ra *RouterAdvertisement) Deadline(lifetime time.Duration) time.Time {
	return ra.wallTime.Add(lifetime)
}

// ReachableTime reports false when unspecified (wire value 0).
func (ra *RouterAdvertisement) ReachableTime() (time.Duration, bool) {
	return ra.reachable, ra.reachable != 0
}

// RetransmitTimer is the router's advertised retransmission interval;
// false when unspecified (wire value 0).
func (ra *RouterAdvertisement) RetransmitTimer() (time.Duration, bool) {
	return ra.retrans, ra.retrans != 0
}

// MTU reports false when no MTU option was present or it advertised 0.
func (ra *RouterAdvertisement) MTU() (uint32, bool) {
	return ra.mtu, ra.mtu != 0
}
