package metrics

import (
	"github.com/lufia/iostat"
	"github.com/prometheus/client_golang/prometheus"
)

// DiskStats is a best-effort snapshot of the host's block-device counters,
// sampled once at the end of a run and folded into the same pushed batch as
// the run counters. Grounded on the teacher's ios.diskBlockStat: aistore
// polls per-mountpoint read/write byte and I/O-time counters to compute
// per-disk utilization for its placement decisions; tsumugu has no
// mountpoint-aware placement, so it keeps only the plain counters and
// exposes them for observability rather than feeding them back into any
// decision.
type DiskStats struct {
	readBytes  *prometheus.GaugeVec
	writeBytes *prometheus.GaugeVec
	ioTimeMs   *prometheus.GaugeVec
}

func NewDiskStats(registry *prometheus.Registry) *DiskStats {
	d := &DiskStats{
		readBytes:  prometheus.NewGaugeVec(prometheus.GaugeOpts{Name: "tsumugu_disk_read_bytes_total"}, []string{"disk"}),
		writeBytes: prometheus.NewGaugeVec(prometheus.GaugeOpts{Name: "tsumugu_disk_write_bytes_total"}, []string{"disk"}),
		ioTimeMs:   prometheus.NewGaugeVec(prometheus.GaugeOpts{Name: "tsumugu_disk_io_time_ms_total"}, []string{"disk"}),
	}
	registry.MustRegister(d.readBytes, d.writeBytes, d.ioTimeMs)
	return d
}

// Sample reads the current host-wide disk counters. Errors are swallowed:
// iostat support is platform-dependent (it has no implementation on some
// OSes) and a missing sample must never fail a sync run.
func (d *DiskStats) Sample() {
	drives, err := iostat.ReadDriveStats()
	if err != nil {
		return
	}
	const sectorSize = 512
	for _, drv := range drives {
		d.readBytes.WithLabelValues(drv.Name).Set(float64(drv.ReadSectorCount * sectorSize))
		d.writeBytes.WithLabelValues(drv.Name).Set(float64(drv.WriteSectorCount * sectorSize))
		d.ioTimeMs.WithLabelValues(drv.Name).Set(float64(drv.IoTime.Milliseconds()))
	}
}
