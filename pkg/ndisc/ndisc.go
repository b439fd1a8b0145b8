package ndisc

import "errors"

// ICMPv6 Neighbor Discovery option types (RFC 4861, RFC 8106).
const (
	OptSourceLinkLayerAddress uint8 = 1
	OptTargetLinkLayerAddress uint8 = 2
	OptPrefixInformation      uint8 = 3
	OptMTU                    uint8 = 5
	OptRDNSS                  uint8 = 25
	OptDNSSL                  uint8 = 31
)

const (
	icmpTypeRouterSolicitation  = 133
	icmpTypeRouterAdvertisement = 134

	// Fixed RA header: ICMPv6 type/code/checksum plus hop limit, flags,
	// router lifetime, reachable time and retransmit timer.
	advertHeaderLen = 16

	maxLabelLen = 63
)

// Router preference, a 2-bit field in the RA flags octet (RFC 4191).
type Preference uint8

const (
	PreferenceMedium Preference = 0
	PreferenceHigh   Preference = 1
	PreferenceLow    Preference = 3

	preferenceReserved Preference = 2
)

func (p Preference) String() string {
	switch p {
	case PreferenceHigh:
		return "high"
	case PreferenceLow:
		return "low"
	default:
		return "medium"
	}
}

var (
	// ErrMalformed rejects a whole datagram: bad type/code, truncated
	// header or a corrupt option chain.
	ErrMalformed = errors.New("malformed router advertisement")

	// ErrOptionMismatch reports a typed option accessor called while the
	// cursor is not on an option of the matching type.
	ErrOptionMismatch = errors.New("option type mismatch")

	// ErrMalformedDomainList is local to one DNSSL option; sibling
	// options of the same advertisement remain readable.
	ErrMalformedDomainList = errors.New("malformed domain search list")

	ErrStarted     = errors.New("client is soliciting")
	ErrNoInterface = errors.New("interface index not set")
	ErrNoLinkAddr  = errors.New("link-layer address not set")
)
