// Package ndisc implements the client side of IPv6 Neighbor Discovery
// router discovery (RFC 4861): it solicits routers on a link, parses
// Router Advertisements including their option chain (prefixes, RDNSS,
// DNSSL, MTU, link-layer addresses) and manages solicitation
// retransmission with RFC 4861 §6.3.7 backoff.
package ndisc
