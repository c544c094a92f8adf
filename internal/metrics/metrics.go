package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Registry struct {
	reg              *prometheus.Registry
	SalesRecorded    prometheus.Counter
	SalesUpdated     prometheus.Counter
	SalesDeleted     prometheus.Counter
	CatalogMutations prometheus.Counter
	StorageErrors    prometheus.Counter
	ChangelogEvents  prometheus.Counter
	SaleTotalUSD     prometheus.Histogram

	// Restore metrics
	RestoreTTRSec      prometheus.Gauge
	LastSnapshotAgeSec prometheus.Gauge
}

func NewRegistry() *Registry {
	r := prometheus.NewRegistry()
	recorded := prometheus.NewCounter(prometheus.CounterOpts{Name: "pos_sales_recorded_total"})
	updated := prometheus.NewCounter(prometheus.CounterOpts{Name: "pos_sales_updated_total"})
	deleted := prometheus.NewCounter(prometheus.CounterOpts{Name: "pos_sales_deleted_total"})
	catalogMut := prometheus.NewCounter(prometheus.CounterOpts{Name: "pos_catalog_mutations_total"})
	storageErrs := prometheus.NewCounter(prometheus.CounterOpts{Name: "pos_storage_errors_total"})
	clogEvents := prometheus.NewCounter(prometheus.CounterOpts{Name: "pos_changelog_events_total"})
	saleTotal := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "pos_sale_total_usd",
		Buckets: []float64{5, 10, 20, 50, 100, 250},
	})
	ttr := prometheus.NewGauge(prometheus.GaugeOpts{Name: "pos_restore_ttr_seconds"})
	snapAge := prometheus.NewGauge(prometheus.GaugeOpts{Name: "pos_last_snapshot_age_seconds"})

	r.MustRegister(recorded, updated, deleted, catalogMut, storageErrs, clogEvents, saleTotal, ttr, snapAge)
	return &Registry{
		reg:                r,
		SalesRecorded:      recorded,
		SalesUpdated:       updated,
		SalesDeleted:       deleted,
		CatalogMutations:   catalogMut,
		StorageErrors:      storageErrs,
		ChangelogEvents:    clogEvents,
		SaleTotalUSD:       saleTotal,
		RestoreTTRSec:      ttr,
		LastSnapshotAgeSec: snapAge,
	}
}

func (r *Registry) Handler() http.Handler { return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}) }
