package mongodb

import (
	"github.com/grafana/dskit/instrument"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var requestDuration = instrument.NewHistogramCollector(prometheus.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "mongoscan",
	Name:      "request_duration_seconds",
	Help:      "Time spent doing MongoDB requests.",
	Buckets:   []float64{.025, .05, .1, .25, .5, 1, 2},
}, []string{"operation", "status_code"}))

var documentsRead = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "mongoscan",
	Name:      "documents_read_total",
	Help:      "Total number of documents pulled from partition cursors.",
})

func init() {
	requestDuration.Register()
}
