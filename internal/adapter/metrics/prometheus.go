package metrics

import (
	"net/http"

	"github.com/dayanaadylkhanova/device-readings/internal/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector counts ingestion events. It implements service.IngestObserver.
type Collector struct {
	reg       *prometheus.Registry
	devices   prometheus.Counter
	accepted  prometheus.Counter
	duplicate prometheus.Counter
}

var _ service.IngestObserver = (*Collector)(nil)

func New() *Collector {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Collector{
		reg: reg,
		devices: f.NewCounter(prometheus.CounterOpts{
			Name: "devices_registered_total",
			Help: "Devices created on first reference.",
		}),
		accepted: f.NewCounter(prometheus.CounterOpts{
			Name: "readings_accepted_total",
			Help: "Readings stored and folded into device aggregates.",
		}),
		duplicate: f.NewCounter(prometheus.CounterOpts{
			Name: "readings_duplicate_total",
			Help: "Readings ignored because the device already had one at that instant.",
		}),
	}
}

func (c *Collector) DeviceRegistered() { c.devices.Inc() }
func (c *Collector) ReadingAccepted()  { c.accepted.Inc() }
func (c *Collector) ReadingDuplicate() { c.duplicate.Inc() }

// Handler serves the collector's registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{Registry: c.reg})
}
