package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type fakePinger struct {
	err error
}

func (p *fakePinger) PingContext(context.Context) error {
	return p.err
}

func TestHealthBasic(t *testing.T) {
	svc := NewHealthService(&fakePinger{}, newTestCache(), zerolog.Nop())

	status := svc.Basic()
	require.Equal(t, "OK", status.Status)
	require.False(t, status.Timestamp.IsZero())
}

func TestHealthDetailedHealthy(t *testing.T) {
	svc := NewHealthService(&fakePinger{}, newTestCache(), zerolog.Nop())

	status := svc.Detailed(context.Background())
	require.Equal(t, "healthy", status.Status)
	require.Equal(t, "connected", status.Database)
	require.False(t, svc.Degraded(status))
}

func TestHealthDetailedDegradedOnProbeFailure(t *testing.T) {
	svc := NewHealthService(&fakePinger{err: errors.New("connection refused")}, newTestCache(), zerolog.Nop())

	status := svc.Detailed(context.Background())
	require.Equal(t, "degraded", status.Status)
	require.Equal(t, "disconnected", status.Database)
	require.True(t, svc.Degraded(status))
}
