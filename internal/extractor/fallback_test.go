package extractor

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/joseph-ayodele/invoice-tracker/internal/common"
	"github.com/joseph-ayodele/invoice-tracker/internal/entity"
	"github.com/joseph-ayodele/invoice-tracker/internal/mocks"
	"github.com/joseph-ayodele/invoice-tracker/internal/ocr"
)

func failingPrimary(ctrl *gomock.Controller, err error) *mocks.MockInvoiceExtractor {
	e := mocks.NewMockInvoiceExtractor(ctrl)
	e.EXPECT().ProviderName().Return("llama_cloud").AnyTimes()
	e.EXPECT().Extract(gomock.Any(), gomock.Any()).Return(nil, err)
	return e
}

func TestFallbackPrimarySucceeds(t *testing.T) {
	ctrl := gomock.NewController(t)
	sink := mocks.NewMockSink(ctrl)

	f := NewFallback(NewMock(), nil, WithRecorder(sink))
	raw, m, err := f.ExtractWithFallback(context.Background(), Request{OCRText: ocr.DemoText})
	require.NoError(t, err)
	assert.NotEmpty(t, raw)
	assert.Equal(t, "mock", m.Provider)
	assert.Equal(t, "mock", f.PrimaryProviderName())
}

func TestFallbackUsesOCRPattern(t *testing.T) {
	ctrl := gomock.NewController(t)
	sink := mocks.NewMockSink(ctrl)
	sink.EXPECT().Record(gomock.Any(), gomock.Any(), "a.pdf").Do(
		func(_ context.Context, m entity.ExtractionMetrics, _ string) {
			assert.False(t, m.Success)
			assert.Equal(t, "llama_cloud", m.Provider)
			assert.Equal(t, "upstream down", m.ErrorMessage)
		})

	f := NewFallback(failingPrimary(ctrl, errors.New("upstream down")), nil, WithRecorder(sink))
	raw, m, err := f.ExtractWithFallback(context.Background(), Request{Filename: "a.pdf", OCRText: ocr.DemoText})
	require.NoError(t, err)
	assert.True(t, m.Success)
	assert.Equal(t, "tesseract_ocr", m.Provider)
	assert.Equal(t, "Proveedor Demo", decodeFlat(t, raw).Provider.Name)
}

func TestFallbackBothFail(t *testing.T) {
	ctrl := gomock.NewController(t)
	primaryErr := common.UpstreamError("cloud failed", nil)

	f := NewFallback(failingPrimary(ctrl, primaryErr), nil)
	_, m, err := f.ExtractWithFallback(context.Background(), Request{Data: []byte("%PDF")})
	require.Error(t, err)

	var ferr *FallbackError
	require.ErrorAs(t, err, &ferr)
	assert.ErrorIs(t, err, common.ErrUpstream)
	assert.ErrorIs(t, err, common.ErrInput)
	assert.Contains(t, err.Error(), "all extractors failed: primary: ")
	assert.Contains(t, err.Error(), "cloud failed")
	assert.Contains(t, err.Error(), ". fallback: ")
	assert.False(t, m.Success)
	assert.Equal(t, err.Error(), m.ErrorMessage)
}

func TestFallbackStopsOnCancel(t *testing.T) {
	ctrl := gomock.NewController(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fb := mocks.NewMockInvoiceExtractor(ctrl)
	fb.EXPECT().ProviderName().Return("tesseract_ocr").AnyTimes()

	f := NewFallback(failingPrimary(ctrl, context.Canceled), nil, WithFallbackExtractor(fb))
	_, err := f.Extract(ctx, Request{OCRText: ocr.DemoText})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFallbackRecordsFilenameFromContext(t *testing.T) {
	ctrl := gomock.NewController(t)
	sink := mocks.NewMockSink(ctrl)
	sink.EXPECT().Record(gomock.Any(), gomock.Any(), "from-ctx.pdf")

	ctx := common.WithFilename(context.Background(), "from-ctx.pdf")
	f := NewFallback(failingPrimary(ctrl, errors.New("down")), nil, WithRecorder(sink))
	_, m, err := f.ExtractWithFallback(ctx, Request{OCRText: ocr.DemoText})
	require.NoError(t, err)
	assert.True(t, m.Success)
}
