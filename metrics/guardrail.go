package metrics

import (
	"context"
	"os"
	"runtime"
	"time"

	"github.com/taoky/tsumugu/cmn"
)

// pollInterval is how often the guardrail samples process memory. A sync
// run is I/O-bound, not CPU-bound, so a few seconds of slack before
// detecting an overshoot is acceptable.
const pollInterval = 5 * time.Second

// Guardrail aborts the process when resident memory outgrows a configured
// ceiling. Grounded on the teacher's memsys.MMSA.MemPressure: aistore's
// memory manager polls sys.Mem() in a background goroutine and reclaims
// slabs as pressure rises through Low/Moderate/High/Extreme/OOM. tsumugu
// has no slab allocator of its own to reclaim from — its memory growth
// comes from in-flight listing bodies and the visited/ledger sets, not a
// pool it controls — so instead of a graduated pressure response it takes
// the teacher's terminal case only: past the ceiling, there is nothing left
// to reclaim, so it exits the way aistore's OOM tier does, rather than
// letting the Go runtime or OS OOM-killer pick the moment.
type Guardrail struct {
	ceiling int64
}

func NewGuardrail(ceilingBytes int64) *Guardrail {
	if ceilingBytes <= 0 {
		ceilingBytes = cmn.DefaultMemoryCeiling
	}
	return &Guardrail{ceiling: ceilingBytes}
}

// Run polls process memory until ctx is done. It never returns early on its
// own except by calling os.Exit when the ceiling is breached.
func (g *Guardrail) Run(ctx context.Context) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			g.check()
		}
	}
}

func (g *Guardrail) check() {
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)
	if int64(stats.Sys) <= g.ceiling {
		return
	}
	cmn.Log.Errorf("memory guardrail: process Sys=%d exceeds ceiling=%d, aborting", stats.Sys, g.ceiling)
	cmn.Log.Flush()
	osExit(cmn.ExitInternalPanic)
}

// osExit is a var so tests can stub it instead of actually terminating the
// process.
var osExit = os.Exit
