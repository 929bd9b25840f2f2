package metrics

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/taoky/tsumugu/cmn"
)

func TestGuardrailTripsPastCeiling(t *testing.T) {
	var exitCode int32 = -1
	old := osExit
	osExit = func(code int) { atomic.StoreInt32(&exitCode, int32(code)) }
	defer func() { osExit = old }()

	g := NewGuardrail(1) // one byte: any real process is already over it
	g.check()

	require.Equal(t, int32(cmn.ExitInternalPanic), atomic.LoadInt32(&exitCode))
}

func TestGuardrailDoesNotTripUnderCeiling(t *testing.T) {
	tripped := false
	old := osExit
	osExit = func(code int) { tripped = true }
	defer func() { osExit = old }()

	g := NewGuardrail(1 << 40) // 1 TiB: no test process approaches this
	g.check()

	require.False(t, tripped)
}

func TestNewGuardrailDefaultsCeiling(t *testing.T) {
	g := NewGuardrail(0)
	require.Greater(t, g.ceiling, int64(0))
}
