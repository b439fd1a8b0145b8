package daemon

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	descSolicitationsSent = prometheus.NewDesc(
		"ndiscd_solicitations_sent_total",
		"Router Solicitations sent on this interface.",
		[]string{"interface"}, nil,
	)
	descAdvertsReceived = prometheus.NewDesc(
		"ndiscd_router_advertisements_received_total",
		"Valid Router Advertisements received on this interface.",
		[]string{"interface"}, nil,
	)
	descMalformedDrops = prometheus.NewDesc(
		"ndiscd_malformed_datagrams_dropped_total",
		"Datagrams dropped during validation on this interface.",
		[]string{"interface"}, nil,
	)
	descSendErrors = prometheus.NewDesc(
		"ndiscd_send_errors_total",
		"Solicitation send failures on this interface.",
		[]string{"interface"}, nil,
	)
	descKnownRouters = prometheus.NewDesc(
		"ndiscd_known_routers",
		"Routers currently known on this interface.",
		[]string{"interface"}, nil,
	)
)

type collector struct {
	daemon *Daemon
}

func (c *collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- descSolicitationsSent
	ch <- descAdvertsReceived
	ch <- descMalformedDrops
	ch <- descSendErrors
	ch <- descKnownRouters
}

func (c *collector) Collect(ch chan<- prometheus.Metric) {
	for _, ic := range c.daemon.clients {
		stats := ic.client.Stats()
		ch <- prometheus.MustNewConstMetric(descSolicitationsSent,
			prometheus.CounterValue, float64(stats.SolicitationsSent), ic.name)
		ch <- prometheus.MustNewConstMetric(descAdvertsReceived,
			prometheus.CounterValue, float64(stats.AdvertsReceived), ic.name)
		ch <- prometheus.MustNewConstMetric(descMalformedDrops,
			prometheus.CounterValue, float64(stats.MalformedDrops), ic.name)
		ch <- prometheus.MustNewConstMetric(descSendErrors,
			prometheus.CounterValue, float64(stats.SendErrors), ic.name)
	}

	counts := c.daemon.table.CountByInterface()
	for _, ic := range c.daemon.clients {
		ch <- prometheus.MustNewConstMetric(descKnownRouters,
			prometheus.GaugeValue, float64(counts[ic.name]), ic.name)
	}
}

func newMetricsServer(addr string, d *Daemon) *http.Server {
	registry := prometheus.NewRegistry()
	registry.MustRegister(&collector{daemon: d})

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
