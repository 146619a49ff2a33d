package extractor

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/joseph-ayodele/invoice-tracker/internal/mocks"
)

func TestExtractWithMetricsSuccess(t *testing.T) {
	raw, m, err := ExtractWithMetrics(context.Background(), NewMock(), Request{})
	require.NoError(t, err)
	assert.NotEmpty(t, raw)
	assert.True(t, m.Success)
	assert.Equal(t, "mock", m.Provider)
	assert.GreaterOrEqual(t, m.ProcessingTime, 0.0)
	assert.Empty(t, m.ErrorMessage)
	overall, ok := m.Overall()
	assert.True(t, ok)
	assert.Equal(t, 1.0, overall)
}

func TestExtractWithMetricsFailureKeepsError(t *testing.T) {
	ctrl := gomock.NewController(t)
	boom := errors.New("boom")
	e := mocks.NewMockInvoiceExtractor(ctrl)
	e.EXPECT().ProviderName().Return("openai").AnyTimes()
	e.EXPECT().Extract(gomock.Any(), gomock.Any()).Return(nil, boom)

	raw, m, err := ExtractWithMetrics(context.Background(), e, Request{OCRText: "x"})
	assert.Same(t, boom, err)
	assert.Nil(t, raw)
	assert.False(t, m.Success)
	assert.Equal(t, "boom", m.ErrorMessage)
	assert.Equal(t, "openai", m.Provider)
	assert.Nil(t, m.Confidence)
}

func TestExtractWithMetricsWithoutEstimator(t *testing.T) {
	ctrl := gomock.NewController(t)
	e := mocks.NewMockInvoiceExtractor(ctrl)
	e.EXPECT().ProviderName().Return("plain").AnyTimes()
	e.EXPECT().Extract(gomock.Any(), gomock.Any()).Return(json.RawMessage(`{}`), nil)

	_, m, err := Measure(e).ExtractWithMetrics(context.Background(), Request{})
	require.NoError(t, err)
	assert.True(t, m.Success)
	assert.Nil(t, m.Confidence)
}

func TestMeasureKeepsMeasured(t *testing.T) {
	f := NewFallback(NewMock(), nil)
	assert.Same(t, f, Measure(f))
}

var (
	_ Measured            = (*Fallback)(nil)
	_ ConfidenceEstimator = (*OCRPattern)(nil)
)
