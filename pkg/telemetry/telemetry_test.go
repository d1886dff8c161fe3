package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisabledProviderIsInert(t *testing.T) {
	p, err := New(context.Background(), &Config{Enabled: false})
	require.NoError(t, err)

	ctx := context.Background()
	assert.NotPanics(t, func() {
		p.ReportStored(ctx)
		p.ReportDropped(ctx, "connection reset")
		p.ObserveReportDuration(ctx, 12*time.Millisecond)
		_, span := p.StartSpan(ctx, "report_failure")
		span.End()
	})
	assert.NoError(t, p.Shutdown(ctx))
}

func TestNilConfigDefaultsToDisabled(t *testing.T) {
	p, err := New(context.Background(), nil)
	require.NoError(t, err)
	assert.NoError(t, p.Shutdown(context.Background()))
}
