// Package metrics implements the run's Prometheus metrics snapshot and the
// memory guardrail (SPEC_FULL.md §3/§5 domain-stack additions): a one-shot
// job has no long-lived /metrics scrape target, so the counters collected
// during a run are pushed once, at the end, to an optional pushgateway-style
// endpoint, mirroring a batch job's use of prometheus.Push rather than a
// server's /metrics handler.
package metrics

import (
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"github.com/taoky/tsumugu/traverse"
)

// Snapshot is the set of gauges pushed at the end of a run, one per
// RunResult counter (spec §3's "directories listed, files fetched, bytes
// transferred, files skipped, files deleted, retries issued").
type Snapshot struct {
	registry *prometheus.Registry
	Disk     *DiskStats

	dirsListed    prometheus.Gauge
	filesFetched  prometheus.Gauge
	bytesFetched  prometheus.Gauge
	filesSkipped  prometheus.Gauge
	filesDeleted  prometheus.Gauge
	retriesIssued prometheus.Gauge
}

func NewSnapshot() *Snapshot {
	s := &Snapshot{registry: prometheus.NewRegistry()}
	s.dirsListed = prometheus.NewGauge(prometheus.GaugeOpts{Name: "tsumugu_dirs_listed"})
	s.filesFetched = prometheus.NewGauge(prometheus.GaugeOpts{Name: "tsumugu_files_fetched"})
	s.bytesFetched = prometheus.NewGauge(prometheus.GaugeOpts{Name: "tsumugu_bytes_fetched"})
	s.filesSkipped = prometheus.NewGauge(prometheus.GaugeOpts{Name: "tsumugu_files_skipped"})
	s.filesDeleted = prometheus.NewGauge(prometheus.GaugeOpts{Name: "tsumugu_files_deleted"})
	s.retriesIssued = prometheus.NewGauge(prometheus.GaugeOpts{Name: "tsumugu_retries_issued"})
	s.registry.MustRegister(
		s.dirsListed, s.filesFetched, s.bytesFetched,
		s.filesSkipped, s.filesDeleted, s.retriesIssued,
	)
	s.Disk = NewDiskStats(s.registry)
	return s
}

// Fill copies a finished run's counters into the gauges.
func (s *Snapshot) Fill(r *traverse.RunResult) {
	s.dirsListed.Set(float64(r.DirsListed.Load()))
	s.filesFetched.Set(float64(r.FilesFetched.Load()))
	s.bytesFetched.Set(float64(r.BytesFetched.Load()))
	s.filesSkipped.Set(float64(r.FilesSkipped.Load()))
	s.filesDeleted.Set(float64(r.FilesDeleted.Load()))
	s.retriesIssued.Set(float64(r.RetriesIssued.Load()))
}

// Push sends the snapshot to addr as a single pushgateway batch, per
// SPEC_FULL.md §3: "a single prometheus.Push mirrors a batch job's use of
// the client". Returns nil without doing anything if addr is empty
// (--metrics-addr is optional).
func (s *Snapshot) Push(addr string) error {
	if addr == "" {
		return nil
	}
	// Grouped by a fresh run ID rather than a fixed instance label, so two
	// runs against the same pushgateway (e.g. mirroring several upstreams
	// from one cron fleet) each get their own series instead of the second
	// silently overwriting the first's batch.
	return push.New(addr, "tsumugu").Grouping("run", uuid.NewString()).Gatherer(s.registry).Push()
}
