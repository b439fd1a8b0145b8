package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/vishvananda/netlink"

	"github.com/veesix-networks/ndiscd/pkg/config"
	"github.com/veesix-networks/ndiscd/pkg/events"
	"github.com/veesix-networks/ndiscd/pkg/events/local"
	"github.com/veesix-networks/ndiscd/pkg/logger"
	"github.com/veesix-networks/ndiscd/pkg/ndisc"
)

type ifaceClient struct {
	name       string
	ifindex    int
	instanceID string
	client     *ndisc.Client
}

// Daemon runs one discovery client per configured interface and fans
// advertisement snapshots out over the event bus to the router table and
// the metrics exporter.
type Daemon struct {
	cfg        *config.Config
	log        *slog.Logger
	bus        events.Bus
	table      *RouterTable
	tableSub   events.Subscription
	clients    []*ifaceClient
	metricsSrv *http.Server
}

func New(cfg *config.Config) (*Daemon, error) {
	d := &Daemon{
		cfg:   cfg,
		log:   logger.Get(logger.Daemon),
		bus:   local.NewBus(),
		table: NewRouterTable(),
	}
	d.tableSub = d.bus.Subscribe(events.TopicRouterUpdate, d.table.handleEvent)

	for _, name := range cfg.Discovery.Interfaces {
		link, err := netlink.LinkByName(name)
		if err != nil {
			return nil, fmt.Errorf("resolve interface %s: %w", name, err)
		}
		attrs := link.Attrs()

		ic := &ifaceClient{
			name:       name,
			ifindex:    attrs.Index,
			instanceID: uuid.New().String(),
			client:     ndisc.New(),
		}
		if err := ic.client.SetInterfaceIndex(attrs.Index); err != nil {
			return nil, fmt.Errorf("interface %s: %w", name, err)
		}
		if err := ic.client.SetLinkAddr(attrs.HardwareAddr); err != nil {
			return nil, fmt.Errorf("interface %s: %w", name, err)
		}
		if err := ic.client.SetHandler(d.handlerFor(ic)); err != nil {
			return nil, fmt.Errorf("interface %s: %w", name, err)
		}

		d.clients = append(d.clients, ic)
	}

	if cfg.Metrics.Address != "" {
		d.metricsSrv = newMetricsServer(cfg.Metrics.Address, d)
	}

	return d, nil
}

func (d *Daemon) Name() string {
	return "daemon"
}

func (d *Daemon) Start(ctx context.Context) error {
	for _, ic := range d.clients {
		if err := ic.client.Start(); err != nil {
			for _, started := range d.clients {
				if started == ic {
					break
				}
				started.client.Stop()
			}
			return fmt.Errorf("start discovery on %s: %w", ic.name, err)
		}
		d.log.Info("discovery started",
			"interface", ic.name,
			"ifindex", ic.ifindex,
			"instance_id", ic.instanceID,
		)
	}

	if d.metricsSrv != nil {
		go func() {
			if err := d.metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				d.log.Error("metrics server failed", "error", err)
			}
		}()
		d.log.Info("metrics exporter listening", "address", d.cfg.Metrics.Address)
	}

	return nil
}

func (d *Daemon) Stop(ctx context.Context) error {
	if d.metricsSrv != nil {
		if err := d.metricsSrv.Shutdown(ctx); err != nil {
			d.log.Warn("metrics server shutdown", "error", err)
		}
	}

	for _, ic := range d.clients {
		if err := ic.client.Stop(); err != nil {
			d.log.Warn("stop discovery", "interface", ic.name, "error", err)
		}
	}

	d.tableSub.Unsubscribe()
	return d.bus.Close()
}

// Routers exposes the current router table snapshot.
func (d *Daemon) Routers() []events.RouterUpdate {
	return d.table.Routers()
}

func (d *Daemon) handlerFor(ic *ifaceClient) ndisc.Handler {
	return func(ev ndisc.Event) {
		switch ev.Kind {
		case ndisc.EventRouterAdvert:
			update := d.snapshotAdvert(ic, ev.Advert)
			d.bus.Publish(events.TopicRouterUpdate, events.Event{
				Source: ic.name,
				Data:   update,
			})
		case ndisc.EventError:
			d.log.Warn("discovery error", "interface", ic.name, "error", ev.Err)
			d.bus.Publish(events.TopicRouterError, events.Event{
				Source: ic.name,
				Data: events.RouterError{
					Interface:  ic.name,
					InstanceID: ic.instanceID,
					Message:    ev.Err.Error(),
				},
			})
		}
	}
}

// snapshotAdvert copies everything out of the advertisement inside the
// callback; the handle must not be retained past it.
func (d *Daemon) snapshotAdvert(ic *ifaceClient, ra *ndisc.RouterAdvertisement) events.RouterUpdate {
	update := events.RouterUpdate{
		Interface:        ic.name,
		Ifindex:          ic.ifindex,
		InstanceID:       ic.instanceID,
		Router:           ra.Sender(),
		ReceivedAt:       ra.Timestamp(),
		Managed:          ra.Managed(),
		Other:            ra.OtherConfig(),
		Preference:       ra.Preference().String(),
		RouterLifetime:   ra.RouterLifetime(),
		LifetimeDeadline: ra.LifetimeDeadline(),
	}
	if hops, ok := ra.HopLimit(); ok {
		update.HopLimit = hops
	}
	if mtu, ok := ra.MTU(); ok {
		update.MTU = mtu
	}

	for more := ra.RewindOptions(); more; more = ra.NextOption() {
		switch ra.OptionType() {
		case ndisc.OptPrefixInformation:
			pi, err := ra.PrefixInformation()
			if err != nil {
				continue
			}
			update.Prefixes = append(update.Prefixes, events.PrefixUpdate{
				Prefix:         pi.Prefix,
				OnLink:         pi.OnLink,
				Autonomous:     pi.Autonomous,
				ValidUntil:     ra.Deadline(pi.ValidLifetime),
				PreferredUntil: ra.Deadline(pi.PreferredLifetime),
			})
		case ndisc.OptRDNSS:
			srv, err := ra.RecursiveDNSServers()
			if err != nil {
				continue
			}
			update.DNSServers = append(update.DNSServers, srv.Addresses...)
		case ndisc.OptDNSSL:
			sl, err := ra.DNSSearchList()
			if err != nil {
				// Localized failure: the rest of the advertisement
				// stays usable.
				d.log.Debug("unusable DNS search list",
					"interface", ic.name, "router", ra.Sender(), "error", err)
				continue
			}
			update.SearchDomains = append(update.SearchDomains, sl.Domains...)
		}
	}

	return update
}
