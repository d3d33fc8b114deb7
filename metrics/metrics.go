package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is what services, the index dispatcher and middleware report to.
type Recorder interface {
	RecordIndexSync(index, op string, err error)
	RecordIndexDropped(index string)
	RecordTransition(kind, status string)
	RecordHTTPStatus(statusCode int)
}

type Collector struct {
	indexSync    *prometheus.CounterVec
	indexFail    *prometheus.CounterVec
	indexDropped *prometheus.CounterVec
	transitions  *prometheus.CounterVec
	httpStatus   *prometheus.CounterVec
}

func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		indexSync: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "registry_index_sync_total",
			Help: "Search index operations that succeeded.",
		}, []string{"index", "op"}),
		indexFail: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "registry_index_sync_failures_total",
			Help: "Search index operations that failed.",
		}, []string{"index", "op"}),
		indexDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "registry_index_sync_dropped_total",
			Help: "Search index operations dropped because the queue was full.",
		}, []string{"index"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "registry_status_transitions_total",
			Help: "Lifecycle transitions by record kind and target status.",
		}, []string{"kind", "status"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "registry_http_status_total",
			Help: "HTTP responses by status code.",
		}, []string{"status_code"}),
	}

	reg.MustRegister(c.indexSync, c.indexFail, c.indexDropped, c.transitions, c.httpStatus)
	return c
}

func (c *Collector) RecordIndexSync(index, op string, err error) {
	if err != nil {
		c.indexFail.WithLabelValues(index, op).Inc()
		return
	}
	c.indexSync.WithLabelValues(index, op).Inc()
}

func (c *Collector) RecordIndexDropped(index string) {
	c.indexDropped.WithLabelValues(index).Inc()
}

func (c *Collector) RecordTransition(kind, status string) {
	c.transitions.WithLabelValues(kind, status).Inc()
}

func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// Handler exposes the registry for scraping.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Nop discards everything.
type Nop struct{}

func (Nop) RecordIndexSync(string, string, error) {}
func (Nop) RecordIndexDropped(string)             {}
func (Nop) RecordTransition(string, string)       {}
func (Nop) RecordHTTPStatus(int)                  {}
