package events

import (
	"net/netip"
	"time"
)

// RouterUpdate is a detached snapshot of one received Router
// Advertisement. The ndisc advertisement handle is only valid during the
// client callback, so everything async consumers need is copied out here.
type RouterUpdate struct {
	Interface  string
	Ifindex    int
	InstanceID string

	Router     netip.Addr
	ReceivedAt time.Time

	Managed    bool
	Other      bool
	Preference string
	HopLimit   uint8  // 0 = not advertised
	MTU        uint32 // 0 = not advertised

	RouterLifetime   time.Duration
	LifetimeDeadline time.Time

	Prefixes      []PrefixUpdate
	DNSServers    []netip.Addr
	SearchDomains []string
}

type PrefixUpdate struct {
	Prefix         netip.Prefix
	OnLink         bool
	Autonomous     bool
	ValidUntil     time.Time
	PreferredUntil time.Time
}

type RouterError struct {
	Interface  string
	InstanceID string
	Message    string
}
