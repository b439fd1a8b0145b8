package ndisc

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/netip"
	"sync"
	"time"

	"github.com/veesix-networks/ndiscd/pkg/logger"
)

type State uint8

const (
	Stopped State = iota
	Soliciting
)

func (s State) String() string {
	switch s {
	case Stopped:
		return "Stopped"
	case Soliciting:
		return "Soliciting"
	default:
		return fmt.Sprintf("State(%d)", s)
	}
}

type EventKind uint8

const (
	// EventRouterAdvert carries a validated advertisement. The
	// RouterAdvertisement handle is only valid for the duration of the
	// handler call.
	EventRouterAdvert EventKind = iota

	// EventError reports a transport send or receive failure. State is
	// unchanged and the solicitation schedule proceeds.
	EventError
)

type Event struct {
	Kind   EventKind
	Advert *RouterAdvertisement
	Err    error
}

// Handler receives client events synchronously from the dispatch context.
// It may call Stop or Start on the same client.
type Handler func(Event)

type Stats struct {
	SolicitationsSent uint64
	AdvertsReceived   uint64
	MalformedDrops    uint64
	SendErrors        uint64
}

// Client solicits routers on one interface and keeps soliciting on its own
// schedule after routers are known, so downstream configuration gets
// periodic re-confirmation.
type Client struct {
	mu        sync.Mutex
	state     State
	ifindex   int
	mac       net.HardwareAddr
	handler   Handler
	dial      TransportFunc
	transport Transport
	backoff   *backoff
	timer     *time.Timer
	gen       uint64 // run generation, fences stale timers and readers
	lastSent  time.Time
	stats     Stats
	log       *slog.Logger
}

func New() *Client {
	return &Client{
		dial:    dialICMP6,
		backoff: newBackoff(initialRetransmitTime, maxRetransmitTime, nil),
		log:     logger.Get(logger.NDisc),
	}
}

// SetInterfaceIndex, SetLinkAddr and SetHandler configure the client and
// are only valid while stopped. Configuration survives Stop.

func (c *Client) SetInterfaceIndex(ifindex int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Stopped {
		return ErrStarted
	}
	if ifindex <= 0 {
		return fmt.Errorf("invalid interface index %d", ifindex)
	}
	c.ifindex = ifindex
	return nil
}

func (c *Client) SetLinkAddr(mac net.HardwareAddr) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Stopped {
		return ErrStarted
	}
	if len(mac) == 0 {
		return errors.New("empty link-layer address")
	}
	c.mac = append(net.HardwareAddr(nil), mac...)
	return nil
}

func (c *Client) SetHandler(h Handler) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Stopped {
		return ErrStarted
	}
	c.handler = h
	return nil
}

// SetTransportFunc substitutes the transport factory; a testing seam.
func (c *Client) SetTransportFunc(dial TransportFunc) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Stopped {
		return ErrStarted
	}
	c.dial = dial
	return nil
}

// SetJitter substitutes the backoff jitter source (uniform in [0,1)).
func (c *Client) SetJitter(jitter func() float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Stopped {
		return ErrStarted
	}
	c.backoff = newBackoff(initialRetransmitTime, maxRetransmitTime, jitter)
	return nil
}

func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Client) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// Start opens the transport, sends an initial solicitation and arms the
// retransmission timer. No-op when already soliciting.
func (c *Client) Start() error {
	c.mu.Lock()
	if c.state == Soliciting {
		c.mu.Unlock()
		return nil
	}
	if c.ifindex <= 0 {
		c.mu.Unlock()
		return ErrNoInterface
	}
	if len(c.mac) == 0 {
		c.mu.Unlock()
		return ErrNoLinkAddr
	}

	t, err := c.dial(c.ifindex)
	if err != nil {
		c.mu.Unlock()
		return fmt.Errorf("open transport: %w", err)
	}

	c.transport = t
	c.state = Soliciting
	c.gen++
	gen := c.gen

	go c.readLoop(t, gen)

	ev := c.solicitLocked()
	c.armLocked(c.backoff.Next(), gen)
	h := c.handler
	c.mu.Unlock()

	if ev != nil && h != nil {
		h(*ev)
	}
	return nil
}

// Stop closes the transport, cancels the timer and resets retransmission
// state. Configuration is preserved so Start can be called again. Safe to
// call from within the handler.
func (c *Client) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == Stopped {
		return nil
	}

	c.gen++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	if c.transport != nil {
		c.transport.Close()
		c.transport = nil
	}
	c.backoff.Reset()
	c.stats = Stats{}
	c.state = Stopped
	return nil
}

func (c *Client) readLoop(t Transport, gen uint64) {
	for {
		buf, sender, err := t.Receive()
		if err != nil {
			c.mu.Lock()
			stale := gen != c.gen
			h := c.handler
			c.mu.Unlock()
			if stale || errors.Is(err, net.ErrClosed) || errors.Is(err, io.EOF) {
				return
			}
			c.log.Warn("receive failed", "error", err)
			if h != nil {
				h(Event{Kind: EventError, Err: fmt.Errorf("receive: %w", err)})
			}
			return
		}
		c.deliver(gen, buf, sender)
	}
}

// deliver validates one datagram and dispatches it. Malformed input is
// steady-state link noise: drop silently, no state change.
func (c *Client) deliver(gen uint64, buf []byte, sender netip.Addr) {
	ra, err := ParseRouterAdvertisement(buf, sender, time.Now())

	c.mu.Lock()
	if gen != c.gen || c.state != Soliciting {
		c.mu.Unlock()
		return
	}
	if err != nil {
		c.stats.MalformedDrops++
		c.mu.Unlock()
		c.log.Debug("dropping malformed datagram", "error", err, "sender", sender)
		return
	}

	c.stats.AdvertsReceived++

	// A valid RA reschedules solicitation rather than stopping it: prefer
	// the router's advertised retransmit timer, otherwise restart the
	// backoff sequence.
	c.backoff.Reset()
	next, ok := ra.RetransmitTimer()
	if !ok {
		next = c.backoff.Next()
	}
	c.armLocked(next, gen)

	h := c.handler
	c.mu.Unlock()

	if h != nil {
		h(Event{Kind: EventRouterAdvert, Advert: ra})
	}
}

func (c *Client) onTimeout(gen uint64) {
	c.mu.Lock()
	if gen != c.gen || c.state != Soliciting {
		c.mu.Unlock()
		return
	}

	ev := c.solicitLocked()
	c.armLocked(c.backoff.Next(), gen)
	h := c.handler
	c.mu.Unlock()

	if ev != nil && h != nil {
		h(*ev)
	}
}

// solicitLocked sends one Router Solicitation, fire-and-forget: a send
// failure becomes an error event and the next scheduled retry proceeds.
func (c *Client) solicitLocked() *Event {
	pkt, err := buildSolicitation(c.mac)
	if err == nil {
		err = c.transport.Send(pkt)
	}
	c.lastSent = time.Now()

	if err != nil {
		c.stats.SendErrors++
		c.log.Warn("solicitation send failed", "error", err)
		return &Event{Kind: EventError, Err: fmt.Errorf("send router solicitation: %w", err)}
	}

	c.stats.SolicitationsSent++
	c.log.Debug("sent router solicitation", "attempt", c.backoff.Attempts()+1)
	return nil
}

func (c *Client) armLocked(d time.Duration, gen uint64) {
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(d, func() { c.onTimeout(gen) })
}
