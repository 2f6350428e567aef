package monitoring

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePinger struct {
	err   error
	calls atomic.Int32
}

func (p *fakePinger) Ping(ctx context.Context) error {
	p.calls.Add(1)
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("ping without deadline")
	}
	return p.err
}

func TestHealthChecker_Check(t *testing.T) {
	p := &fakePinger{}
	hc, err := NewHealthChecker(p, "@every 1h")
	require.NoError(t, err)

	fixed := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	hc.now = func() time.Time { return fixed }

	assert.Equal(t, StatusUnknown, hc.Status().Status)

	hc.Check()
	assert.Equal(t, HealthStatus{Status: StatusOK, CheckedAt: fixed}, hc.Status())
	assert.True(t, hc.Status().Healthy())

	p.err = errors.New("server selection timeout")
	hc.Check()
	st := hc.Status()
	assert.Equal(t, StatusUnavailable, st.Status)
	assert.Equal(t, "server selection timeout", st.Error)
	assert.False(t, st.Healthy())

	p.err = nil
	hc.Check()
	assert.True(t, hc.Status().Healthy())
	assert.Equal(t, int32(3), p.calls.Load())
}

func TestHealthChecker_InvalidSchedule(t *testing.T) {
	_, err := NewHealthChecker(&fakePinger{}, "whenever")
	assert.Error(t, err)
}

func TestHealthChecker_RunChecksImmediately(t *testing.T) {
	p := &fakePinger{}
	hc, err := NewHealthChecker(p, "@every 1h")
	require.NoError(t, err)

	hc.Run()
	hc.Stop()

	assert.Equal(t, int32(1), p.calls.Load())
	assert.True(t, hc.Status().Healthy())
}
