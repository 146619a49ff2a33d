package metrics

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstrumented(t *testing.T) {
	ctx := context.Background()
	c := NewCollectors(prometheus.NewRegistry())
	store := NewMemoryStore()
	s := NewInstrumented(store, c)

	s.Record(ctx, success("openai", 1.5, 0.9), "a.pdf")
	s.Record(ctx, failure("openai", 0.2, "boom"), "b.pdf")
	s.Record(ctx, success("mock", 0.01, 1), "c.pdf")

	assert.Equal(t, 1.0, testutil.ToFloat64(c.Extractions.WithLabelValues("openai", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Extractions.WithLabelValues("openai", "failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Extractions.WithLabelValues("mock", "success")))
	assert.Equal(t, 0.9, testutil.ToFloat64(c.Confidence.WithLabelValues("openai")))
	assert.Equal(t, 2, testutil.CollectAndCount(c.Duration))

	recent, err := s.Recent(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, recent, 3)
}

func TestCollectorsNilSafe(t *testing.T) {
	var c *Collectors
	assert.NotPanics(t, func() { c.Observe(success("mock", 1, 1)) })
}
